package subscription

import (
	"time"

	"github.com/netbill/netbill/internal/types"
	"github.com/shopspring/decimal"
)

// Subscription is a billed instance of a plan attached to a connection.
// Plan name and price are snapshots taken at purchase time. StartDate and
// EndDate are set if and only if the status is Active or Expired; a Queued
// subscription has no dates until it is promoted.
type Subscription struct {
	ID              string                   `bson:"_id" json:"id"`
	UserID          string                   `bson:"user_id" json:"user_id"`
	ConnectionID    string                   `bson:"connection_id" json:"connection_id"`
	Plan            string                   `bson:"plan" json:"plan"`
	PlanPrice       decimal.Decimal          `bson:"plan_price" json:"plan_price"`
	FinalAmountPaid decimal.Decimal          `bson:"final_amount_paid" json:"final_amount_paid"`
	Duration        types.PlanDuration       `bson:"duration" json:"duration"`
	StartDate       *time.Time               `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate         *time.Time               `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Status          types.SubscriptionStatus `bson:"status" json:"status"`

	// Payment proof returned by the gateway and verified locally.
	RazorpayOrderID   string `bson:"razorpay_order_id" json:"razorpay_order_id"`
	RazorpayPaymentID string `bson:"razorpay_payment_id" json:"razorpay_payment_id"`
	RazorpaySignature string `bson:"razorpay_signature" json:"razorpay_signature"`

	PromoCode     *string         `bson:"promo_code,omitempty" json:"promo_code,omitempty"`
	CreditApplied decimal.Decimal `bson:"credit_applied" json:"credit_applied"`

	types.BaseModel `bson:",inline"`
}

// IsExpiredAt reports whether an Active subscription's period has lapsed.
func (s *Subscription) IsExpiredAt(now time.Time) bool {
	return s.Status == types.SubscriptionStatusActive &&
		s.EndDate != nil && s.EndDate.Before(now)
}
