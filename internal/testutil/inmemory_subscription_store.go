package testutil

import (
	"context"
	"time"

	"github.com/netbill/netbill/internal/domain/subscription"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}

	copied := *sub
	if sub.StartDate != nil {
		copied.StartDate = lo.ToPtr(*sub.StartDate)
	}
	if sub.EndDate != nil {
		copied.EndDate = lo.ToPtr(*sub.EndDate)
	}
	if sub.PromoCode != nil {
		copied.PromoCode = lo.ToPtr(*sub.PromoCode)
	}
	return &copied
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Subscription with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) ListByUser(ctx context.Context, userID string) ([]*subscription.Subscription, error) {
	return s.list(ctx, func(sub *subscription.Subscription) bool {
		return sub.UserID == userID
	})
}

func (s *InMemorySubscriptionStore) ListByConnection(ctx context.Context, userID, connectionID string) ([]*subscription.Subscription, error) {
	return s.list(ctx, func(sub *subscription.Subscription) bool {
		return sub.UserID == userID && sub.ConnectionID == connectionID
	})
}

func (s *InMemorySubscriptionStore) ListAll(ctx context.Context) ([]*subscription.Subscription, error) {
	return s.list(ctx, nil)
}

func (s *InMemorySubscriptionStore) list(ctx context.Context, match func(*subscription.Subscription) bool) ([]*subscription.Subscription, error) {
	subs, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, sub *subscription.Subscription, filter interface{}) bool {
		return match == nil || match(sub)
	}, func(i, j *subscription.Subscription) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	result := make([]*subscription.Subscription, 0, len(subs))
	for _, sub := range subs {
		result = append(result, copySubscription(sub))
	}
	return result, nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub)); err != nil {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription with ID %s was not found", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemorySubscriptionStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemorySubscriptionStore) TransitionStatus(ctx context.Context, id string, from, to types.SubscriptionStatus) error {
	return s.conditionalUpdate(ctx, id, from, func(sub *subscription.Subscription) {
		sub.Status = to
	})
}

func (s *InMemorySubscriptionStore) Activate(ctx context.Context, id string, from types.SubscriptionStatus, start, end time.Time) error {
	return s.conditionalUpdate(ctx, id, from, func(sub *subscription.Subscription) {
		sub.Status = types.SubscriptionStatusActive
		sub.StartDate = lo.ToPtr(start)
		sub.EndDate = lo.ToPtr(end)
	})
}

func (s *InMemorySubscriptionStore) conditionalUpdate(ctx context.Context, id string, from types.SubscriptionStatus, apply func(*subscription.Subscription)) error {
	conflict := ierr.NewError("subscription was modified concurrently").
		WithHintf("Subscription %s is no longer %s", id, from).
		Mark(ierr.ErrVersionConflict)

	err := s.InMemoryStore.Mutate(ctx, id, func(existing *subscription.Subscription) (*subscription.Subscription, error) {
		if existing.Status != from {
			return nil, conflict
		}
		updated := copySubscription(existing)
		apply(updated)
		updated.UpdatedAt = time.Now().UTC()
		return updated, nil
	})
	if err == nil {
		return nil
	}
	if ierr.IsVersionConflict(err) {
		return err
	}
	return ierr.NewError("subscription not found").
		WithHintf("Subscription with ID %s was not found", id).
		Mark(ierr.ErrNotFound)
}
