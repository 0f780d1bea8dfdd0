package dto

import (
	"github.com/netbill/netbill/internal/domain/discount"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/types"
	"github.com/netbill/netbill/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateDiscountRequest represents the request to create a promo code
type CreateDiscountRequest struct {
	Title       string             `json:"title" validate:"required"`
	Code        string             `json:"code" validate:"required"`
	Type        types.DiscountType `json:"type" validate:"required"`
	Value       decimal.Decimal    `json:"value"`
	Description string             `json:"description,omitempty"`
	IsActive    *bool              `json:"is_active,omitempty"`
}

// Validate validates the CreateDiscountRequest
func (r *CreateDiscountRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if !r.Value.IsPositive() {
		return ierr.NewError("value must be positive").
			WithHint("Please provide a positive discount value").
			Mark(ierr.ErrValidation)
	}
	if r.Type == types.DiscountTypePercentage && r.Value.GreaterThan(decimal.NewFromInt(100)) {
		return ierr.NewError("percentage value cannot exceed 100").
			WithHint("Percentage discounts must be between 0 and 100").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// UpdateDiscountRequest represents the request to update a promo code.
// Usage and revenue counters are not editable.
type UpdateDiscountRequest struct {
	Title       *string             `json:"title,omitempty"`
	Code        *string             `json:"code,omitempty"`
	Type        *types.DiscountType `json:"type,omitempty"`
	Value       *decimal.Decimal    `json:"value,omitempty"`
	Description *string             `json:"description,omitempty"`
	IsActive    *bool               `json:"is_active,omitempty"`
}

// Validate validates the UpdateDiscountRequest
func (r *UpdateDiscountRequest) Validate() error {
	if r.Title != nil && *r.Title == "" {
		return ierr.NewError("title cannot be empty").
			WithHint("Please provide a discount title").
			Mark(ierr.ErrValidation)
	}
	if r.Code != nil && *r.Code == "" {
		return ierr.NewError("code cannot be empty").
			WithHint("Please provide a discount code").
			Mark(ierr.ErrValidation)
	}
	if r.Type != nil {
		if err := r.Type.Validate(); err != nil {
			return err
		}
	}
	if r.Value != nil && !r.Value.IsPositive() {
		return ierr.NewError("value must be positive").
			WithHint("Please provide a positive discount value").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ApplyDiscountRequest represents the request to apply a promo code to an
// order amount. This is the counting entry point; quoting during checkout
// uses a silent lookup instead.
type ApplyDiscountRequest struct {
	Code        string          `json:"code" validate:"required"`
	OrderAmount decimal.Decimal `json:"order_amount"`
}

// Validate validates the ApplyDiscountRequest
func (r *ApplyDiscountRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.OrderAmount.IsNegative() {
		return ierr.NewError("order amount cannot be negative").
			WithHint("Order amount must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ApplyDiscountResponse represents the outcome of applying a promo code
type ApplyDiscountResponse struct {
	Success        bool            `json:"success"`
	DiscountCode   string          `json:"discount_code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

// DiscountResponse represents a discount in API responses
type DiscountResponse struct {
	*discount.Discount
}

// ListDiscountsResponse represents a discount listing
type ListDiscountsResponse struct {
	Items []*DiscountResponse `json:"items"`
	Total int                 `json:"total"`
}
