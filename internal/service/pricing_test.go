package service

import (
	"testing"
	"time"

	"github.com/netbill/netbill/internal/domain/discount"
	"github.com/netbill/netbill/internal/domain/plan"
	"github.com/netbill/netbill/internal/domain/subscription"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/testutil"
	"github.com/netbill/netbill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PricingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PricingService
}

func TestPricingService(t *testing.T) {
	suite.Run(t, new(PricingServiceSuite))
}

func (s *PricingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPricingService(ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		Cache:        s.GetCache(),
		PlanRepo:     s.GetStores().PlanRepo,
		ConnRepo:     s.GetStores().ConnectionRepo,
		SubRepo:      s.GetStores().SubscriptionRepo,
		DiscountRepo: s.GetStores().DiscountRepo,
		Gateway:      s.GetGateway(),
	})
}

func (s *PricingServiceSuite) seedDiscount(code string, dType types.DiscountType, value int64, active bool) {
	err := s.GetStores().DiscountRepo.Create(s.GetContext(), &discount.Discount{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DISCOUNT),
		Title:     code,
		Code:      code,
		Type:      dType,
		Value:     decimal.NewFromInt(value),
		IsActive:  active,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	})
	s.NoError(err)
}

func (s *PricingServiceSuite) TestQuoteNewSubscriptionWithoutPromo() {
	p := &plan.Plan{Price: decimal.NewFromInt(999)}

	quote, err := s.service.QuoteNewSubscription(s.GetContext(), p, nil)
	s.NoError(err)
	s.True(quote.FinalAmount.Equal(decimal.NewFromInt(999)))
	s.True(quote.Discount.IsZero())
	s.True(quote.Credit.IsZero())
	s.Nil(quote.PromoCode)
}

func (s *PricingServiceSuite) TestQuoteNewSubscriptionWithPercentagePromo() {
	s.seedDiscount("SAVE20", types.DiscountTypePercentage, 20, true)
	p := &plan.Plan{Price: decimal.NewFromInt(999)}

	quote, err := s.service.QuoteNewSubscription(s.GetContext(), p, lo.ToPtr("SAVE20"))
	s.NoError(err)
	// 999 * 20% = 199.8, rounded half-up to 200
	s.True(quote.Discount.Equal(decimal.NewFromInt(200)), "got %s", quote.Discount)
	s.True(quote.FinalAmount.Equal(decimal.NewFromInt(799)), "got %s", quote.FinalAmount)
	s.Equal("SAVE20", lo.FromPtr(quote.PromoCode))
}

func (s *PricingServiceSuite) TestQuoteNewSubscriptionIgnoresInactivePromo() {
	s.seedDiscount("OLD", types.DiscountTypeFlat, 100, false)
	p := &plan.Plan{Price: decimal.NewFromInt(500)}

	quote, err := s.service.QuoteNewSubscription(s.GetContext(), p, lo.ToPtr("OLD"))
	s.NoError(err)
	s.True(quote.FinalAmount.Equal(decimal.NewFromInt(500)))
	s.True(quote.Discount.IsZero())
	s.Nil(quote.PromoCode)
}

func (s *PricingServiceSuite) TestQuoteNewSubscriptionIgnoresUnknownPromo() {
	p := &plan.Plan{Price: decimal.NewFromInt(500)}

	quote, err := s.service.QuoteNewSubscription(s.GetContext(), p, lo.ToPtr("NOPE"))
	s.NoError(err)
	s.True(quote.FinalAmount.Equal(decimal.NewFromInt(500)))
	s.Nil(quote.PromoCode)
}

func (s *PricingServiceSuite) TestQuoteNewSubscriptionClampsToZero() {
	s.seedDiscount("BIGFLAT", types.DiscountTypeFlat, 1000, true)
	p := &plan.Plan{Price: decimal.NewFromInt(300)}

	quote, err := s.service.QuoteNewSubscription(s.GetContext(), p, lo.ToPtr("BIGFLAT"))
	s.NoError(err)
	s.True(quote.FinalAmount.IsZero())
}

func (s *PricingServiceSuite) activeSubscription(price int64, elapsed, remaining time.Duration) *subscription.Subscription {
	now := time.Now().UTC()
	return &subscription.Subscription{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		PlanPrice: decimal.NewFromInt(price),
		Status:    types.SubscriptionStatusActive,
		StartDate: lo.ToPtr(now.Add(-elapsed)),
		EndDate:   lo.ToPtr(now.Add(remaining)),
	}
}

func (s *PricingServiceSuite) TestQuoteUpgradeProration() {
	// 30-day period at 600 with 10 days left values the remainder at 200.
	current := s.activeSubscription(600, 20*24*time.Hour, 10*24*time.Hour)
	newPlan := &plan.Plan{Price: decimal.NewFromInt(1000)}
	s.seedDiscount("FLAT100", types.DiscountTypeFlat, 100, true)

	quote, err := s.service.QuoteUpgrade(s.GetContext(), current, newPlan, lo.ToPtr("FLAT100"))
	s.NoError(err)
	s.True(quote.Credit.Equal(decimal.NewFromInt(200)), "got %s", quote.Credit)
	s.True(quote.Discount.Equal(decimal.NewFromInt(100)))
	s.True(quote.FinalAmount.Equal(decimal.NewFromInt(700)), "got %s", quote.FinalAmount)
}

func (s *PricingServiceSuite) TestQuoteUpgradeNoRemainingDays() {
	current := s.activeSubscription(600, 30*24*time.Hour, 0)
	newPlan := &plan.Plan{Price: decimal.NewFromInt(1000)}

	quote, err := s.service.QuoteUpgrade(s.GetContext(), current, newPlan, nil)
	s.NoError(err)
	s.True(quote.Credit.IsZero())
	s.True(quote.FinalAmount.Equal(decimal.NewFromInt(1000)))
}

func (s *PricingServiceSuite) TestQuoteUpgradeCreditNeverExceedsPlanPrice() {
	current := s.activeSubscription(600, time.Hour, 29*24*time.Hour)
	newPlan := &plan.Plan{Price: decimal.NewFromInt(1000)}

	quote, err := s.service.QuoteUpgrade(s.GetContext(), current, newPlan, nil)
	s.NoError(err)
	s.True(quote.Credit.LessThanOrEqual(decimal.NewFromInt(600)))
	s.True(quote.FinalAmount.GreaterThanOrEqual(decimal.Zero))
}

func (s *PricingServiceSuite) TestQuoteUpgradeCreditClampsFinalToZero() {
	// Credit larger than the cheaper target plan must not go negative.
	current := s.activeSubscription(900, 24*time.Hour, 29*24*time.Hour)
	newPlan := &plan.Plan{Price: decimal.NewFromInt(100)}

	quote, err := s.service.QuoteUpgrade(s.GetContext(), current, newPlan, nil)
	s.NoError(err)
	s.True(quote.FinalAmount.IsZero())
}

func (s *PricingServiceSuite) TestQuoteUpgradeRequiresActiveSubscription() {
	current := &subscription.Subscription{
		Status: types.SubscriptionStatusQueued,
	}
	newPlan := &plan.Plan{Price: decimal.NewFromInt(1000)}

	_, err := s.service.QuoteUpgrade(s.GetContext(), current, newPlan, nil)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PricingServiceSuite) TestQuotingDoesNotMoveDiscountCounters() {
	s.seedDiscount("SAVE20", types.DiscountTypePercentage, 20, true)
	p := &plan.Plan{Price: decimal.NewFromInt(999)}

	_, err := s.service.QuoteNewSubscription(s.GetContext(), p, lo.ToPtr("SAVE20"))
	s.NoError(err)

	d, err := s.GetStores().DiscountRepo.GetByCode(s.GetContext(), "SAVE20")
	s.NoError(err)
	s.Zero(d.UsageCount)
	s.True(d.RevenueGenerated.IsZero())
}
