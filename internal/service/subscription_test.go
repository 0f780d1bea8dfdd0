package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/netbill/netbill/internal/api/dto"
	"github.com/netbill/netbill/internal/domain/connection"
	"github.com/netbill/netbill/internal/domain/discount"
	"github.com/netbill/netbill/internal/domain/plan"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/testutil"
	"github.com/netbill/netbill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriptionService(ServiceParams{
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

func (s *SubscriptionServiceSuite) sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(s.GetGateway().SecretKey()))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *SubscriptionServiceSuite) seedPlan(price int64) *plan.Plan {
	p := &plan.Plan{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:      "Fiber Turbo",
		Type:      types.PlanTypeFibernet,
		Price:     decimal.NewFromInt(price),
		Duration:  types.PlanDurationMonthly,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), p))
	return p
}

func (s *SubscriptionServiceSuite) seedConnection() *connection.Connection {
	conn := &connection.Connection{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CONNECTION),
		UserID:    testutil.DefaultUserID,
		Name:      "Home Fiber",
		Type:      types.ConnectionTypeFiber,
		Status:    types.ConnectionStatusActive,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ConnectionRepo.Create(s.GetContext(), conn))
	return conn
}

// subscribe runs a full checkout against the fake gateway and returns the
// created subscription.
func (s *SubscriptionServiceSuite) subscribe(conn *connection.Connection, p *plan.Plan) *dto.SubscriptionResponse {
	order, err := s.service.CreateOrder(s.GetContext(), dto.CreateOrderRequest{
		ConnectionID: conn.ID,
		PlanID:       p.ID,
	})
	s.NoError(err)

	paymentID := "pay_" + types.GenerateUUID()
	resp, err := s.service.VerifyAndSubscribe(s.GetContext(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: s.sign(order.OrderID, paymentID),
		ConnectionID:      conn.ID,
		PlanID:            p.ID,
	})
	s.NoError(err)
	s.True(resp.Success)
	return resp.Subscription
}

func (s *SubscriptionServiceSuite) TestCreateOrder() {
	conn := s.seedConnection()
	p := s.seedPlan(999)

	order, err := s.service.CreateOrder(s.GetContext(), dto.CreateOrderRequest{
		ConnectionID: conn.ID,
		PlanID:       p.ID,
	})
	s.NoError(err)
	s.NotEmpty(order.OrderID)
	s.Equal(s.GetGateway().KeyID(), order.Key)
	s.True(order.FinalAmount.Equal(decimal.NewFromInt(999)))

	charged, ok := s.GetGateway().OrderAmount(order.OrderID)
	s.True(ok)
	s.True(charged.Equal(decimal.NewFromInt(999)))
}

func (s *SubscriptionServiceSuite) TestCreateOrderDeniedForStrangerConnection() {
	conn := s.seedConnection()
	conn.UserID = "user_somebody_else"
	// Reseed under a different owner.
	s.NoError(s.GetStores().ConnectionRepo.Delete(s.GetContext(), conn.ID))
	s.NoError(s.GetStores().ConnectionRepo.Create(s.GetContext(), conn))
	p := s.seedPlan(999)

	_, err := s.service.CreateOrder(s.GetContext(), dto.CreateOrderRequest{
		ConnectionID: conn.ID,
		PlanID:       p.ID,
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *SubscriptionServiceSuite) TestVerifyCreatesActiveSubscription() {
	conn := s.seedConnection()
	p := s.seedPlan(999)

	sub := s.subscribe(conn, p)
	s.Equal(types.SubscriptionStatusActive, sub.Status)
	s.Equal(p.Name, sub.Plan)
	s.True(sub.PlanPrice.Equal(decimal.NewFromInt(999)))
	s.True(sub.FinalAmountPaid.Equal(decimal.NewFromInt(999)))
	s.NotNil(sub.StartDate)
	s.NotNil(sub.EndDate)

	fresh, err := s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Equal(sub.ID, lo.FromPtr(fresh.CurrentSubscriptionID))
	s.Nil(fresh.QueuedSubscriptionID)
}

func (s *SubscriptionServiceSuite) TestVerifyRejectsBadSignatureWithoutWrites() {
	conn := s.seedConnection()
	p := s.seedPlan(999)

	_, err := s.service.VerifyAndSubscribe(s.GetContext(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   "order_test_1",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: "forged",
		ConnectionID:      conn.ID,
		PlanID:            p.ID,
	})
	s.Error(err)
	s.True(ierr.IsSignature(err))

	subs, err := s.GetStores().SubscriptionRepo.ListAll(s.GetContext())
	s.NoError(err)
	s.Empty(subs)

	fresh, err := s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Nil(fresh.CurrentSubscriptionID)
	s.Nil(fresh.QueuedSubscriptionID)
}

func (s *SubscriptionServiceSuite) TestSecondPurchaseIsQueued() {
	conn := s.seedConnection()
	p := s.seedPlan(999)

	first := s.subscribe(conn, p)

	conn, err := s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	s.NoError(err)
	second := s.subscribe(conn, p)

	s.Equal(types.SubscriptionStatusQueued, second.Status)
	s.Nil(second.StartDate)
	s.Nil(second.EndDate)

	fresh, err := s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Equal(first.ID, lo.FromPtr(fresh.CurrentSubscriptionID))
	s.Equal(second.ID, lo.FromPtr(fresh.QueuedSubscriptionID))
}

func (s *SubscriptionServiceSuite) TestVerifyAppliesPromo() {
	conn := s.seedConnection()
	p := s.seedPlan(999)
	s.NoError(s.GetStores().DiscountRepo.Create(s.GetContext(), &discount.Discount{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DISCOUNT),
		Title:     "Save 20",
		Code:      "SAVE20",
		Type:      types.DiscountTypePercentage,
		Value:     decimal.NewFromInt(20),
		IsActive:  true,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))

	order, err := s.service.CreateOrder(s.GetContext(), dto.CreateOrderRequest{
		ConnectionID: conn.ID,
		PlanID:       p.ID,
		PromoCode:    lo.ToPtr("SAVE20"),
	})
	s.NoError(err)
	s.True(order.FinalAmount.Equal(decimal.NewFromInt(799)))

	paymentID := "pay_" + types.GenerateUUID()
	resp, err := s.service.VerifyAndSubscribe(s.GetContext(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: s.sign(order.OrderID, paymentID),
		ConnectionID:      conn.ID,
		PlanID:            p.ID,
		PromoCode:         lo.ToPtr("SAVE20"),
	})
	s.NoError(err)
	s.True(resp.Subscription.FinalAmountPaid.Equal(decimal.NewFromInt(799)))
	s.Equal("SAVE20", lo.FromPtr(resp.Subscription.PromoCode))
}

func (s *SubscriptionServiceSuite) TestUpgradeSupersedesCurrentAndClearsQueued() {
	conn := s.seedConnection()
	basic := s.seedPlan(600)
	premium := s.seedPlan(1000)

	current := s.subscribe(conn, basic)
	conn, _ = s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	queued := s.subscribe(conn, basic)

	order, err := s.service.CreateUpgradeOrder(s.GetContext(), dto.CreateOrderRequest{
		ConnectionID: conn.ID,
		PlanID:       premium.ID,
	})
	s.NoError(err)
	s.True(order.Credit.GreaterThan(decimal.Zero))
	s.True(order.Credit.LessThanOrEqual(decimal.NewFromInt(600)))
	s.True(order.FinalAmount.Equal(decimal.NewFromInt(1000).Sub(order.Credit)))

	paymentID := "pay_" + types.GenerateUUID()
	resp, err := s.service.VerifyAndUpgrade(s.GetContext(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: s.sign(order.OrderID, paymentID),
		ConnectionID:      conn.ID,
		PlanID:            premium.ID,
	})
	s.NoError(err)

	upgraded := resp.Subscription
	s.Equal(types.SubscriptionStatusActive, upgraded.Status)
	s.True(upgraded.CreditApplied.Equal(order.Credit))

	superseded, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), current.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusExpired, superseded.Status)

	fresh, err := s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Equal(upgraded.ID, lo.FromPtr(fresh.CurrentSubscriptionID))
	s.Nil(fresh.QueuedSubscriptionID)

	// The discarded queued subscription stays behind as history.
	_, err = s.GetStores().SubscriptionRepo.Get(s.GetContext(), queued.ID)
	s.NoError(err)
}

func (s *SubscriptionServiceSuite) TestUpgradeRequiresActiveSubscription() {
	conn := s.seedConnection()
	p := s.seedPlan(1000)

	_, err := s.service.CreateUpgradeOrder(s.GetContext(), dto.CreateOrderRequest{
		ConnectionID: conn.ID,
		PlanID:       p.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestUpgradeRejectsBadSignatureWithoutWrites() {
	conn := s.seedConnection()
	basic := s.seedPlan(600)
	premium := s.seedPlan(1000)
	current := s.subscribe(conn, basic)

	_, err := s.service.VerifyAndUpgrade(s.GetContext(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   "order_test_x",
		RazorpayPaymentID: "pay_x",
		RazorpaySignature: "forged",
		ConnectionID:      conn.ID,
		PlanID:            premium.ID,
	})
	s.Error(err)
	s.True(ierr.IsSignature(err))

	untouched, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), current.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, untouched.Status)

	fresh, err := s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Equal(current.ID, lo.FromPtr(fresh.CurrentSubscriptionID))
}

func (s *SubscriptionServiceSuite) TestCancelWithQueuedPromotes() {
	conn := s.seedConnection()
	p := s.seedPlan(600)

	current := s.subscribe(conn, p)
	conn, _ = s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	queued := s.subscribe(conn, p)

	resp, err := s.service.CancelSubscription(s.GetContext(), current.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.Status)

	promoted, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), queued.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, promoted.Status)
	s.NotNil(promoted.StartDate)

	fresh, err := s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Equal(queued.ID, lo.FromPtr(fresh.CurrentSubscriptionID))
	s.Nil(fresh.QueuedSubscriptionID)
}

func (s *SubscriptionServiceSuite) TestCancelWithoutQueuedEndsCancelled() {
	conn := s.seedConnection()
	p := s.seedPlan(600)
	current := s.subscribe(conn, p)

	resp, err := s.service.CancelSubscription(s.GetContext(), current.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.Status)

	fresh, err := s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Nil(fresh.CurrentSubscriptionID)
}

func (s *SubscriptionServiceSuite) TestCancelQueuedSubscription() {
	conn := s.seedConnection()
	p := s.seedPlan(600)

	current := s.subscribe(conn, p)
	conn, _ = s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	queued := s.subscribe(conn, p)

	resp, err := s.service.CancelSubscription(s.GetContext(), queued.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.Status)

	fresh, err := s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Equal(current.ID, lo.FromPtr(fresh.CurrentSubscriptionID))
	s.Nil(fresh.QueuedSubscriptionID)
}

func (s *SubscriptionServiceSuite) TestCancelDeniedForStranger() {
	conn := s.seedConnection()
	p := s.seedPlan(600)
	current := s.subscribe(conn, p)

	otherCtx := types.SetUserID(s.GetContext(), "user_somebody_else")
	_, err := s.service.CancelSubscription(otherCtx, current.ID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *SubscriptionServiceSuite) TestCancelTerminalSubscriptionRejected() {
	conn := s.seedConnection()
	p := s.seedPlan(600)
	current := s.subscribe(conn, p)

	_, err := s.service.CancelSubscription(s.GetContext(), current.ID)
	s.NoError(err)

	_, err = s.service.CancelSubscription(s.GetContext(), current.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestListMySubscriptions() {
	conn := s.seedConnection()
	other := s.seedConnection()
	p := s.seedPlan(600)

	s.subscribe(conn, p)
	s.subscribe(other, p)

	all, err := s.service.ListMySubscriptions(s.GetContext(), "")
	s.NoError(err)
	s.Len(all.Items, 2)

	scoped, err := s.service.ListMySubscriptions(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Len(scoped.Items, 1)
	s.Equal(conn.ID, scoped.Items[0].ConnectionID)
}

func (s *SubscriptionServiceSuite) TestAdminUpdateRejectsCancelled() {
	conn := s.seedConnection()
	p := s.seedPlan(600)
	current := s.subscribe(conn, p)

	_, err := s.service.CancelSubscription(s.GetContext(), current.ID)
	s.NoError(err)

	_, err = s.service.AdminUpdateSubscription(s.GetContext(), current.ID, dto.AdminUpdateSubscriptionRequest{
		Plan: lo.ToPtr("Renamed"),
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestAdminUpdateSubscription() {
	conn := s.seedConnection()
	p := s.seedPlan(600)
	current := s.subscribe(conn, p)

	resp, err := s.service.AdminUpdateSubscription(s.GetContext(), current.ID, dto.AdminUpdateSubscriptionRequest{
		PlanPrice: lo.ToPtr(decimal.NewFromInt(550)),
	})
	s.NoError(err)
	s.True(resp.PlanPrice.Equal(decimal.NewFromInt(550)))
}
