package dto

import (
	"github.com/netbill/netbill/internal/domain/subscription"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/types"
	"github.com/netbill/netbill/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents the request to open a payment order for a
// new subscription, or for an upgrade when sent to the upgrade route.
type CreateOrderRequest struct {
	ConnectionID string  `json:"connection_id" validate:"required"`
	PlanID       string  `json:"plan_id" validate:"required"`
	PromoCode    *string `json:"promo_code,omitempty"`
}

// Validate validates the CreateOrderRequest
func (r *CreateOrderRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// OrderResponse represents an opened payment order. Key is the public
// gateway key the client checkout widget needs.
type OrderResponse struct {
	OrderID     string          `json:"order_id"`
	Key         string          `json:"key"`
	Currency    string          `json:"currency"`
	PlanID      string          `json:"plan_id"`
	PlanName    string          `json:"plan_name"`
	PlanPrice   decimal.Decimal `json:"plan_price"`
	Discount    decimal.Decimal `json:"discount"`
	Credit      decimal.Decimal `json:"credit"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	PromoCode   *string         `json:"promo_code,omitempty"`
}

// VerifyPaymentRequest represents the payment proof returned by the gateway
// checkout together with the checkout intent it belongs to.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string  `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string  `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string  `json:"razorpay_signature" validate:"required"`
	ConnectionID      string  `json:"connection_id" validate:"required"`
	PlanID            string  `json:"plan_id" validate:"required"`
	PromoCode         *string `json:"promo_code,omitempty"`
}

// Validate validates the VerifyPaymentRequest
func (r *VerifyPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// AdminUpdateSubscriptionRequest represents an admin override edit of a
// subscription record
type AdminUpdateSubscriptionRequest struct {
	Plan      *string                   `json:"plan,omitempty"`
	PlanPrice *decimal.Decimal          `json:"plan_price,omitempty"`
	Status    *types.SubscriptionStatus `json:"status,omitempty"`
}

// Validate validates the AdminUpdateSubscriptionRequest
func (r *AdminUpdateSubscriptionRequest) Validate() error {
	if r.Plan != nil && *r.Plan == "" {
		return ierr.NewError("plan cannot be empty").
			WithHint("Please provide a plan name").
			Mark(ierr.ErrValidation)
	}
	if r.PlanPrice != nil && r.PlanPrice.IsNegative() {
		return ierr.NewError("plan price cannot be negative").
			WithHint("Plan price must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	if r.Status != nil {
		if err := r.Status.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	*subscription.Subscription
}

// VerifyPaymentResponse represents the outcome of a verified checkout
type VerifyPaymentResponse struct {
	Success      bool                  `json:"success"`
	Subscription *SubscriptionResponse `json:"subscription"`
}

// ListSubscriptionsResponse represents a subscription listing
type ListSubscriptionsResponse struct {
	Items []*SubscriptionResponse `json:"items"`
	Total int                     `json:"total"`
}
