package testutil

import (
	"context"

	"github.com/netbill/netbill/internal/domain/discount"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/shopspring/decimal"
)

// InMemoryDiscountStore implements discount.Repository
type InMemoryDiscountStore struct {
	*InMemoryStore[*discount.Discount]
}

// NewInMemoryDiscountStore creates a new in-memory discount store
func NewInMemoryDiscountStore() *InMemoryDiscountStore {
	return &InMemoryDiscountStore{
		InMemoryStore: NewInMemoryStore[*discount.Discount](),
	}
}

func copyDiscount(d *discount.Discount) *discount.Discount {
	if d == nil {
		return nil
	}

	copied := *d
	return &copied
}

func (s *InMemoryDiscountStore) Create(ctx context.Context, d *discount.Discount) error {
	if d == nil {
		return ierr.NewError("discount cannot be nil").
			WithHint("Discount cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, d.ID, copyDiscount(d))
}

func (s *InMemoryDiscountStore) Get(ctx context.Context, id string) (*discount.Discount, error) {
	d, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("discount not found").
			WithHintf("Discount with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyDiscount(d), nil
}

func (s *InMemoryDiscountStore) GetByCode(ctx context.Context, code string) (*discount.Discount, error) {
	discounts, err := s.InMemoryStore.List(ctx, code, func(ctx context.Context, d *discount.Discount, filter interface{}) bool {
		return d.Code == filter.(string)
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(discounts) == 0 {
		return nil, ierr.NewError("discount code not found").
			WithHintf("Discount with code %s was not found", code).
			Mark(ierr.ErrNotFound)
	}
	return copyDiscount(discounts[0]), nil
}

func (s *InMemoryDiscountStore) List(ctx context.Context) ([]*discount.Discount, error) {
	discounts, err := s.InMemoryStore.List(ctx, nil, nil, func(i, j *discount.Discount) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	result := make([]*discount.Discount, 0, len(discounts))
	for _, d := range discounts {
		result = append(result, copyDiscount(d))
	}
	return result, nil
}

func (s *InMemoryDiscountStore) Update(ctx context.Context, d *discount.Discount) error {
	// Counters only move through IncrementUsage, matching the database
	// behaviour.
	err := s.InMemoryStore.Mutate(ctx, d.ID, func(existing *discount.Discount) (*discount.Discount, error) {
		updated := copyDiscount(d)
		updated.UsageCount = existing.UsageCount
		updated.RevenueGenerated = existing.RevenueGenerated
		return updated, nil
	})
	if err != nil {
		return ierr.NewError("discount not found").
			WithHintf("Discount with ID %s was not found", d.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryDiscountStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.NewError("discount not found").
			WithHintf("Discount with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryDiscountStore) IncrementUsage(ctx context.Context, id string, revenueDelta decimal.Decimal) error {
	err := s.InMemoryStore.Mutate(ctx, id, func(existing *discount.Discount) (*discount.Discount, error) {
		updated := copyDiscount(existing)
		updated.UsageCount++
		updated.RevenueGenerated = existing.RevenueGenerated.Add(revenueDelta.Round(0))
		return updated, nil
	})
	if err != nil {
		return ierr.NewError("discount not found").
			WithHintf("Discount with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
