package service

import (
	"context"

	"github.com/netbill/netbill/internal/api/dto"
	"github.com/netbill/netbill/internal/cache"
	"github.com/netbill/netbill/internal/domain/discount"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/types"
	"github.com/samber/lo"
)

// DiscountService manages promo codes and their usage accounting.
type DiscountService interface {
	CreateDiscount(ctx context.Context, req dto.CreateDiscountRequest) (*dto.DiscountResponse, error)
	GetDiscount(ctx context.Context, id string) (*dto.DiscountResponse, error)
	UpdateDiscount(ctx context.Context, id string, req dto.UpdateDiscountRequest) (*dto.DiscountResponse, error)
	DeleteDiscount(ctx context.Context, id string) error
	ListDiscounts(ctx context.Context) (*dto.ListDiscountsResponse, error)
	ListActiveDiscounts(ctx context.Context) (*dto.ListDiscountsResponse, error)

	// ApplyDiscount is the counting entry point: it resolves the code,
	// computes the deduction and atomically bumps the usage and revenue
	// counters. Quoting during checkout never goes through here.
	ApplyDiscount(ctx context.Context, req dto.ApplyDiscountRequest) (*dto.ApplyDiscountResponse, error)
}

type discountService struct {
	ServiceParams
}

// NewDiscountService creates a new discount service
func NewDiscountService(params ServiceParams) DiscountService {
	return &discountService{
		ServiceParams: params,
	}
}

func (s *discountService) CreateDiscount(ctx context.Context, req dto.CreateDiscountRequest) (*dto.DiscountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.DiscountRepo.GetByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, ierr.NewError("discount code already exists").
			WithHintf("A discount with code %s already exists", req.Code).
			Mark(ierr.ErrAlreadyExists)
	}

	d := &discount.Discount{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DISCOUNT),
		Title:       req.Title,
		Code:        req.Code,
		Type:        req.Type,
		Value:       req.Value,
		Description: req.Description,
		IsActive:    lo.FromPtrOr(req.IsActive, true),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}

	if err := s.DiscountRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.Cache.DeleteByPrefix(ctx, cache.PrefixDiscount)
	s.Logger.Infow("created discount", "discount_id", d.ID, "code", d.Code)
	return &dto.DiscountResponse{Discount: d}, nil
}

func (s *discountService) GetDiscount(ctx context.Context, id string) (*dto.DiscountResponse, error) {
	d, err := s.DiscountRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.DiscountResponse{Discount: d}, nil
}

func (s *discountService) UpdateDiscount(ctx context.Context, id string, req dto.UpdateDiscountRequest) (*dto.DiscountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.DiscountRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Code != nil {
		d.Code = *req.Code
	}
	if req.Type != nil {
		d.Type = *req.Type
	}
	if req.Value != nil {
		d.Value = *req.Value
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	d.UpdatedBy = types.GetUserID(ctx)

	if err := s.DiscountRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	s.Cache.DeleteByPrefix(ctx, cache.PrefixDiscount)
	return &dto.DiscountResponse{Discount: d}, nil
}

func (s *discountService) DeleteDiscount(ctx context.Context, id string) error {
	if err := s.DiscountRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.DeleteByPrefix(ctx, cache.PrefixDiscount)
	s.Logger.Infow("deleted discount", "discount_id", id)
	return nil
}

func (s *discountService) ListDiscounts(ctx context.Context) (*dto.ListDiscountsResponse, error) {
	discounts, err := s.DiscountRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toListDiscountsResponse(discounts), nil
}

func (s *discountService) ListActiveDiscounts(ctx context.Context) (*dto.ListDiscountsResponse, error) {
	discounts, err := s.DiscountRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	active := lo.Filter(discounts, func(d *discount.Discount, _ int) bool {
		return d.IsActive
	})
	return toListDiscountsResponse(active), nil
}

func (s *discountService) ApplyDiscount(ctx context.Context, req dto.ApplyDiscountRequest) (*dto.ApplyDiscountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.DiscountRepo.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if !d.IsActive {
		return nil, ierr.NewError("discount code is not active").
			WithHintf("Discount code %s is not active", req.Code).
			Mark(ierr.ErrNotFound)
	}

	amount := req.OrderAmount.Round(0)
	discountAmount := d.DiscountAmount(amount)
	finalAmount := d.ApplyTo(amount)

	if err := s.DiscountRepo.IncrementUsage(ctx, d.ID, discountAmount); err != nil {
		return nil, err
	}

	s.Logger.Infow("applied discount",
		"discount_id", d.ID,
		"code", d.Code,
		"discount_amount", discountAmount,
		"final_amount", finalAmount)

	return &dto.ApplyDiscountResponse{
		Success:        true,
		DiscountCode:   d.Code,
		DiscountAmount: discountAmount,
		FinalAmount:    finalAmount,
	}, nil
}

func toListDiscountsResponse(discounts []*discount.Discount) *dto.ListDiscountsResponse {
	items := lo.Map(discounts, func(d *discount.Discount, _ int) *dto.DiscountResponse {
		return &dto.DiscountResponse{Discount: d}
	})
	return &dto.ListDiscountsResponse{Items: items, Total: len(items)}
}
