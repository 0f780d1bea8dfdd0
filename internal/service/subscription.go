package service

import (
	"context"
	"time"

	"github.com/netbill/netbill/internal/api/dto"
	"github.com/netbill/netbill/internal/domain/connection"
	"github.com/netbill/netbill/internal/domain/plan"
	"github.com/netbill/netbill/internal/domain/subscription"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/integration/razorpay"
	"github.com/netbill/netbill/internal/types"
	"github.com/samber/lo"
)

// SubscriptionService handles checkout, upgrade, cancellation and the
// subscription history reads. Payment signature verification is the sole
// gate in front of every write: a rejected proof leaves no state behind.
type SubscriptionService interface {
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	VerifyAndSubscribe(ctx context.Context, req dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)

	CreateUpgradeOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	VerifyAndUpgrade(ctx context.Context, req dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)

	CancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ListMySubscriptions(ctx context.Context, connectionID string) (*dto.ListSubscriptionsResponse, error)

	ListAllSubscriptions(ctx context.Context) (*dto.ListSubscriptionsResponse, error)
	AdminUpdateSubscription(ctx context.Context, id string, req dto.AdminUpdateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	AdminCancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
	pricing PricingService
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
		pricing:       NewPricingService(params),
	}
}

func (s *subscriptionService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conn, p, err := s.checkoutTargets(ctx, req.ConnectionID, req.PlanID)
	if err != nil {
		return nil, err
	}

	quote, err := s.pricing.QuoteNewSubscription(ctx, p, req.PromoCode)
	if err != nil {
		return nil, err
	}

	return s.openOrder(ctx, conn, p, quote)
}

func (s *subscriptionService) CreateUpgradeOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conn, p, err := s.checkoutTargets(ctx, req.ConnectionID, req.PlanID)
	if err != nil {
		return nil, err
	}

	current, err := s.currentSubscription(ctx, conn)
	if err != nil {
		return nil, err
	}

	quote, err := s.pricing.QuoteUpgrade(ctx, current, p, req.PromoCode)
	if err != nil {
		return nil, err
	}

	return s.openOrder(ctx, conn, p, quote)
}

func (s *subscriptionService) VerifyAndSubscribe(ctx context.Context, req dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conn, p, err := s.checkoutTargets(ctx, req.ConnectionID, req.PlanID)
	if err != nil {
		return nil, err
	}

	// Nothing is written before this check passes.
	err = razorpay.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID,
		req.RazorpaySignature, s.Gateway.SecretKey())
	if err != nil {
		return nil, err
	}

	quote, err := s.pricing.QuoteNewSubscription(ctx, p, req.PromoCode)
	if err != nil {
		return nil, err
	}

	sub := s.newSubscription(ctx, conn, p, req, quote)

	if conn.CurrentSubscriptionID != nil {
		// An active plan is running; the new one waits in the queue.
		sub.Status = types.SubscriptionStatusQueued
		if err := s.SubRepo.Create(ctx, sub); err != nil {
			return nil, err
		}
		err = s.ConnRepo.SwapSubscriptions(ctx, conn.ID,
			conn.CurrentSubscriptionID, conn.CurrentSubscriptionID, lo.ToPtr(sub.ID))
	} else {
		sub.Status = types.SubscriptionStatusActive
		start, end := p.Duration.Period(time.Now().UTC())
		sub.StartDate = lo.ToPtr(start)
		sub.EndDate = lo.ToPtr(end)
		if err := s.SubRepo.Create(ctx, sub); err != nil {
			return nil, err
		}
		err = s.ConnRepo.SwapSubscriptions(ctx, conn.ID, nil, lo.ToPtr(sub.ID), nil)
	}
	if err != nil {
		return nil, s.compensate(ctx, sub.ID, err)
	}

	s.Logger.Infow("created subscription",
		"subscription_id", sub.ID,
		"connection_id", conn.ID,
		"status", sub.Status,
		"final_amount", sub.FinalAmountPaid)

	return &dto.VerifyPaymentResponse{
		Success:      true,
		Subscription: &dto.SubscriptionResponse{Subscription: sub},
	}, nil
}

func (s *subscriptionService) VerifyAndUpgrade(ctx context.Context, req dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conn, p, err := s.checkoutTargets(ctx, req.ConnectionID, req.PlanID)
	if err != nil {
		return nil, err
	}

	current, err := s.currentSubscription(ctx, conn)
	if err != nil {
		return nil, err
	}

	// Nothing is written before this check passes.
	err = razorpay.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID,
		req.RazorpaySignature, s.Gateway.SecretKey())
	if err != nil {
		return nil, err
	}

	quote, err := s.pricing.QuoteUpgrade(ctx, current, p, req.PromoCode)
	if err != nil {
		return nil, err
	}

	sub := s.newSubscription(ctx, conn, p, req, quote)
	sub.Status = types.SubscriptionStatusActive
	sub.CreditApplied = quote.Credit
	start, end := p.Duration.Period(time.Now().UTC())
	sub.StartDate = lo.ToPtr(start)
	sub.EndDate = lo.ToPtr(end)

	if err := s.SubRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	// The upgrade replaces the current subscription and discards any
	// queued one; the reference swap is the race gate.
	err = s.ConnRepo.SwapSubscriptions(ctx, conn.ID,
		conn.CurrentSubscriptionID, lo.ToPtr(sub.ID), nil)
	if err != nil {
		return nil, s.compensate(ctx, sub.ID, err)
	}

	err = s.SubRepo.TransitionStatus(ctx, current.ID,
		types.SubscriptionStatusActive, types.SubscriptionStatusExpired)
	if err != nil && !ierr.IsVersionConflict(err) {
		return nil, err
	}

	s.Logger.Infow("upgraded subscription",
		"connection_id", conn.ID,
		"superseded_subscription_id", current.ID,
		"subscription_id", sub.ID,
		"credit_applied", sub.CreditApplied)

	return &dto.VerifyPaymentResponse{
		Success:      true,
		Subscription: &dto.SubscriptionResponse{Subscription: sub},
	}, nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !types.IsAdmin(ctx) && sub.UserID != types.GetUserID(ctx) {
		return nil, ierr.NewError("subscription does not belong to the caller").
			WithHint("You do not have access to this subscription").
			Mark(ierr.ErrPermissionDenied)
	}
	return s.cancel(ctx, sub)
}

func (s *subscriptionService) ListMySubscriptions(ctx context.Context, connectionID string) (*dto.ListSubscriptionsResponse, error) {
	userID := types.GetUserID(ctx)

	var subs []*subscription.Subscription
	var err error
	if connectionID != "" {
		subs, err = s.SubRepo.ListByConnection(ctx, userID, connectionID)
	} else {
		subs, err = s.SubRepo.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return toListSubscriptionsResponse(subs), nil
}

func (s *subscriptionService) ListAllSubscriptions(ctx context.Context) (*dto.ListSubscriptionsResponse, error) {
	subs, err := s.SubRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toListSubscriptionsResponse(subs), nil
}

func (s *subscriptionService) AdminUpdateSubscription(ctx context.Context, id string, req dto.AdminUpdateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == types.SubscriptionStatusCancelled {
		return nil, ierr.NewError("cancelled subscriptions are immutable").
			WithHint("A cancelled subscription can no longer be edited").
			Mark(ierr.ErrInvalidOperation)
	}

	if req.Plan != nil {
		sub.Plan = *req.Plan
	}
	if req.PlanPrice != nil {
		sub.PlanPrice = *req.PlanPrice
	}
	if req.Status != nil {
		sub.Status = *req.Status
	}
	sub.UpdatedBy = types.GetUserID(ctx)

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) AdminCancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, sub)
}

// cancel moves a queued or active subscription to Cancelled and repairs the
// owning connection's references, promoting the queued subscription when an
// active one is cancelled. Cancelled is the single terminal state for this
// event; nothing rewrites it afterwards.
func (s *subscriptionService) cancel(ctx context.Context, sub *subscription.Subscription) (*dto.SubscriptionResponse, error) {
	switch sub.Status {
	case types.SubscriptionStatusQueued:
		err := s.SubRepo.TransitionStatus(ctx, sub.ID,
			types.SubscriptionStatusQueued, types.SubscriptionStatusCancelled)
		if err != nil {
			return nil, err
		}

		conn, err := s.ConnRepo.Get(ctx, sub.ConnectionID)
		if err == nil && lo.FromPtr(conn.QueuedSubscriptionID) == sub.ID {
			err = s.ConnRepo.SwapSubscriptions(ctx, conn.ID,
				conn.CurrentSubscriptionID, conn.CurrentSubscriptionID, nil)
			if err != nil && !ierr.IsVersionConflict(err) {
				return nil, err
			}
		}

	case types.SubscriptionStatusActive:
		err := s.SubRepo.TransitionStatus(ctx, sub.ID,
			types.SubscriptionStatusActive, types.SubscriptionStatusCancelled)
		if err != nil {
			return nil, err
		}

		conn, err := s.ConnRepo.Get(ctx, sub.ConnectionID)
		if err != nil {
			return nil, err
		}
		if lo.FromPtr(conn.CurrentSubscriptionID) == sub.ID {
			if conn.QueuedSubscriptionID != nil {
				if err := s.promoteAfterCancel(ctx, conn); err != nil {
					return nil, err
				}
			} else {
				err = s.ConnRepo.SwapSubscriptions(ctx, conn.ID,
					conn.CurrentSubscriptionID, nil, nil)
				if err != nil && !ierr.IsVersionConflict(err) {
					return nil, err
				}
			}
		}

	default:
		return nil, ierr.NewError("subscription cannot be cancelled").
			WithHintf("A %s subscription cannot be cancelled", sub.Status).
			Mark(ierr.ErrInvalidOperation)
	}

	s.Logger.Infow("cancelled subscription",
		"subscription_id", sub.ID,
		"connection_id", sub.ConnectionID)

	cancelled, err := s.SubRepo.Get(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: cancelled}, nil
}

func (s *subscriptionService) promoteAfterCancel(ctx context.Context, conn *connection.Connection) error {
	queued, err := s.SubRepo.Get(ctx, *conn.QueuedSubscriptionID)
	if err != nil {
		return err
	}

	if queued.Status == types.SubscriptionStatusQueued {
		start, end := queued.Duration.Period(time.Now().UTC())
		err := s.SubRepo.Activate(ctx, queued.ID, types.SubscriptionStatusQueued, start, end)
		if err != nil && !ierr.IsVersionConflict(err) {
			return err
		}
	}

	err = s.ConnRepo.SwapSubscriptions(ctx, conn.ID,
		conn.CurrentSubscriptionID, conn.QueuedSubscriptionID, nil)
	if err != nil && !ierr.IsVersionConflict(err) {
		return err
	}
	return nil
}

// checkoutTargets loads and authorizes the connection and plan a checkout
// request names.
func (s *subscriptionService) checkoutTargets(ctx context.Context, connectionID, planID string) (*connection.Connection, *plan.Plan, error) {
	conn, err := s.ConnRepo.Get(ctx, connectionID)
	if err != nil {
		return nil, nil, err
	}
	if !conn.IsOwnedBy(types.GetUserID(ctx)) {
		return nil, nil, ierr.NewError("connection does not belong to the caller").
			WithHint("You do not have access to this connection").
			Mark(ierr.ErrPermissionDenied)
	}

	p, err := s.PlanRepo.Get(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	return conn, p, nil
}

// currentSubscription loads the connection's active subscription, which an
// upgrade must supersede.
func (s *subscriptionService) currentSubscription(ctx context.Context, conn *connection.Connection) (*subscription.Subscription, error) {
	if conn.CurrentSubscriptionID == nil {
		return nil, ierr.NewError("connection has no active subscription").
			WithHint("Only a connection with an active subscription can be upgraded").
			Mark(ierr.ErrInvalidOperation)
	}
	return s.SubRepo.Get(ctx, *conn.CurrentSubscriptionID)
}

func (s *subscriptionService) openOrder(ctx context.Context, conn *connection.Connection, p *plan.Plan, quote *Quote) (*dto.OrderResponse, error) {
	receipt := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECEIPT)
	order, err := s.Gateway.CreateOrder(ctx, quote.FinalAmount, receipt, map[string]interface{}{
		"connection_id": conn.ID,
		"plan_id":       p.ID,
		"user_id":       conn.UserID,
	})
	if err != nil {
		return nil, err
	}

	return &dto.OrderResponse{
		OrderID:     order.ID,
		Key:         s.Gateway.KeyID(),
		Currency:    "INR",
		PlanID:      p.ID,
		PlanName:    p.Name,
		PlanPrice:   p.Price,
		Discount:    quote.Discount,
		Credit:      quote.Credit,
		FinalAmount: quote.FinalAmount,
		PromoCode:   quote.PromoCode,
	}, nil
}

func (s *subscriptionService) newSubscription(ctx context.Context, conn *connection.Connection, p *plan.Plan, req dto.VerifyPaymentRequest, quote *Quote) *subscription.Subscription {
	return &subscription.Subscription{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		UserID:            conn.UserID,
		ConnectionID:      conn.ID,
		Plan:              p.Name,
		PlanPrice:         p.Price,
		FinalAmountPaid:   quote.FinalAmount,
		Duration:          p.Duration,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpaySignature: req.RazorpaySignature,
		PromoCode:         quote.PromoCode,
		CreditApplied:     quote.Credit,
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
}

// compensate removes a subscription that was persisted before the
// connection update lost its race, keeping verify all-or-nothing.
func (s *subscriptionService) compensate(ctx context.Context, subID string, cause error) error {
	if delErr := s.SubRepo.Delete(ctx, subID); delErr != nil {
		s.Logger.Errorw("failed to roll back subscription after connection update failure",
			"subscription_id", subID,
			"error", delErr)
	}
	return cause
}

func toListSubscriptionsResponse(subs []*subscription.Subscription) *dto.ListSubscriptionsResponse {
	items := lo.Map(subs, func(sub *subscription.Subscription, _ int) *dto.SubscriptionResponse {
		return &dto.SubscriptionResponse{Subscription: sub}
	})
	return &dto.ListSubscriptionsResponse{Items: items, Total: len(items)}
}
