package service

import (
	"context"
	"math"
	"time"

	"github.com/netbill/netbill/internal/domain/plan"
	"github.com/netbill/netbill/internal/domain/subscription"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Quote is the priced outcome of a checkout or upgrade request. All amounts
// are integral currency units, rounded half-up.
type Quote struct {
	PlanPrice   decimal.Decimal
	Credit      decimal.Decimal
	Discount    decimal.Decimal
	FinalAmount decimal.Decimal

	// PromoCode is set only when an active discount matched; a missing or
	// inactive code prices as if no code was sent.
	PromoCode *string
}

// PricingService computes payable amounts. It never writes: promo codes are
// resolved with a silent lookup so a quoted-then-abandoned checkout does not
// move the discount counters.
type PricingService interface {
	QuoteNewSubscription(ctx context.Context, p *plan.Plan, promoCode *string) (*Quote, error)
	QuoteUpgrade(ctx context.Context, current *subscription.Subscription, newPlan *plan.Plan, promoCode *string) (*Quote, error)
}

type pricingService struct {
	ServiceParams
}

// NewPricingService creates a new pricing service
func NewPricingService(params ServiceParams) PricingService {
	return &pricingService{
		ServiceParams: params,
	}
}

func (s *pricingService) QuoteNewSubscription(ctx context.Context, p *plan.Plan, promoCode *string) (*Quote, error) {
	quote := &Quote{
		PlanPrice:   p.Price,
		Credit:      decimal.Zero,
		Discount:    decimal.Zero,
		FinalAmount: p.Price.Round(0),
	}
	s.applyPromo(ctx, quote, p.Price.Round(0), promoCode)
	return quote, nil
}

func (s *pricingService) QuoteUpgrade(ctx context.Context, current *subscription.Subscription, newPlan *plan.Plan, promoCode *string) (*Quote, error) {
	if current.Status != types.SubscriptionStatusActive ||
		current.StartDate == nil || current.EndDate == nil {
		return nil, ierr.NewError("subscription is not upgradable").
			WithHint("Only an active subscription can be upgraded").
			Mark(ierr.ErrInvalidOperation)
	}

	credit := prorationCredit(current, time.Now().UTC())

	preDiscount := newPlan.Price.Round(0).Sub(credit)
	if preDiscount.IsNegative() {
		preDiscount = decimal.Zero
	}

	quote := &Quote{
		PlanPrice:   newPlan.Price,
		Credit:      credit,
		Discount:    decimal.Zero,
		FinalAmount: preDiscount,
	}
	s.applyPromo(ctx, quote, preDiscount, promoCode)
	return quote, nil
}

// applyPromo resolves the code silently and fills Discount/FinalAmount. An
// absent, unknown or inactive code leaves the amount unchanged.
func (s *pricingService) applyPromo(ctx context.Context, quote *Quote, amount decimal.Decimal, promoCode *string) {
	if promoCode == nil || *promoCode == "" {
		return
	}

	d, err := s.DiscountRepo.GetByCode(ctx, *promoCode)
	if err != nil || !d.IsActive {
		s.Logger.Debugw("promo code did not resolve to an active discount",
			"code", *promoCode)
		return
	}

	quote.Discount = d.DiscountAmount(amount)
	quote.FinalAmount = d.ApplyTo(amount)
	quote.PromoCode = lo.ToPtr(d.Code)
}

// prorationCredit values the unused remainder of the superseded
// subscription. Day counts are rounded up so a partially elapsed day still
// counts as remaining.
func prorationCredit(current *subscription.Subscription, now time.Time) decimal.Decimal {
	totalDays := ceilDays(current.EndDate.Sub(*current.StartDate))
	remainingDays := ceilDays(current.EndDate.Sub(now))
	if remainingDays < 0 {
		remainingDays = 0
	}
	if remainingDays > totalDays {
		remainingDays = totalDays
	}
	if totalDays <= 0 || remainingDays == 0 {
		return decimal.Zero
	}

	credit := current.PlanPrice.
		Mul(decimal.NewFromInt(remainingDays)).
		Div(decimal.NewFromInt(totalDays)).
		Round(0)
	if credit.IsNegative() {
		return decimal.Zero
	}
	if credit.GreaterThan(current.PlanPrice) {
		return current.PlanPrice.Round(0)
	}
	return credit
}

func ceilDays(d time.Duration) int64 {
	return int64(math.Ceil(d.Hours() / 24))
}
