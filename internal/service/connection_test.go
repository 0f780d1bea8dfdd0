package service

import (
	"testing"
	"time"

	"github.com/netbill/netbill/internal/api/dto"
	"github.com/netbill/netbill/internal/domain/connection"
	"github.com/netbill/netbill/internal/domain/subscription"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/testutil"
	"github.com/netbill/netbill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ConnectionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ConnectionService
}

func TestConnectionService(t *testing.T) {
	suite.Run(t, new(ConnectionServiceSuite))
}

func (s *ConnectionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewConnectionService(ServiceParams{
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

func (s *ConnectionServiceSuite) addressRequest() dto.AddressRequest {
	return dto.AddressRequest{
		Name:    "Home",
		Phone:   "9999999999",
		Street:  "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
		Country: "India",
	}
}

func (s *ConnectionServiceSuite) seedConnection(userID string) *connection.Connection {
	conn := &connection.Connection{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CONNECTION),
		UserID:    userID,
		Name:      "Home Fiber",
		Type:      types.ConnectionTypeFiber,
		Status:    types.ConnectionStatusActive,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ConnectionRepo.Create(s.GetContext(), conn))
	return conn
}

func (s *ConnectionServiceSuite) seedSubscription(connID string, status types.SubscriptionStatus, start, end *time.Time) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		UserID:       testutil.DefaultUserID,
		ConnectionID: connID,
		Plan:         "Fiber 100",
		PlanPrice:    decimal.NewFromInt(600),
		Duration:     types.PlanDurationMonthly,
		Status:       status,
		StartDate:    start,
		EndDate:      end,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *ConnectionServiceSuite) setRefs(connID string, current, queued *string) {
	s.NoError(s.GetStores().ConnectionRepo.SwapSubscriptions(
		s.GetContext(), connID, nil, current, queued))
}

func (s *ConnectionServiceSuite) TestCreateConnection() {
	resp, err := s.service.CreateConnection(s.GetContext(), dto.CreateConnectionRequest{
		Name:    "Home Fiber",
		Type:    types.ConnectionTypeFiber,
		Address: s.addressRequest(),
	})
	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal(testutil.DefaultUserID, resp.UserID)
	s.Equal(types.ConnectionStatusActive, resp.Status)
	s.Nil(resp.Connection.CurrentSubscriptionID)
}

func (s *ConnectionServiceSuite) TestGetConnectionDeniedForStranger() {
	conn := s.seedConnection("user_somebody_else")

	_, err := s.service.GetConnection(s.GetContext(), conn.ID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *ConnectionServiceSuite) TestSweepExpiresAndPromotes() {
	now := time.Now().UTC()
	conn := s.seedConnection(testutil.DefaultUserID)
	current := s.seedSubscription(conn.ID, types.SubscriptionStatusActive,
		lo.ToPtr(now.AddDate(0, -1, 0)), lo.ToPtr(now.Add(-24*time.Hour)))
	queued := s.seedSubscription(conn.ID, types.SubscriptionStatusQueued, nil, nil)
	s.setRefs(conn.ID, lo.ToPtr(current.ID), lo.ToPtr(queued.ID))

	resp, err := s.service.ListConnections(s.GetContext())
	s.NoError(err)
	s.Len(resp.Items, 1)

	swept := resp.Items[0]
	s.Equal(queued.ID, lo.FromPtr(swept.Connection.CurrentSubscriptionID))
	s.Nil(swept.Connection.QueuedSubscriptionID)

	expired, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), current.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusExpired, expired.Status)

	promoted, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), queued.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, promoted.Status)
	s.NotNil(promoted.StartDate)
	s.NotNil(promoted.EndDate)
	s.WithinDuration(now, *promoted.StartDate, time.Minute)
	s.WithinDuration(now.AddDate(0, 1, 0), *promoted.EndDate, time.Minute)
}

func (s *ConnectionServiceSuite) TestSweepExpiresWithoutQueued() {
	now := time.Now().UTC()
	conn := s.seedConnection(testutil.DefaultUserID)
	current := s.seedSubscription(conn.ID, types.SubscriptionStatusActive,
		lo.ToPtr(now.AddDate(0, -1, 0)), lo.ToPtr(now.Add(-time.Hour)))
	s.setRefs(conn.ID, lo.ToPtr(current.ID), nil)

	resp, err := s.service.GetConnection(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Nil(resp.Connection.CurrentSubscriptionID)
	s.Nil(resp.Connection.QueuedSubscriptionID)

	expired, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), current.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusExpired, expired.Status)
}

func (s *ConnectionServiceSuite) TestSweepClearsCancelledReference() {
	conn := s.seedConnection(testutil.DefaultUserID)
	cancelled := s.seedSubscription(conn.ID, types.SubscriptionStatusCancelled, nil, nil)
	s.setRefs(conn.ID, lo.ToPtr(cancelled.ID), nil)

	resp, err := s.service.GetConnection(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Nil(resp.Connection.CurrentSubscriptionID)

	// The terminal status itself is never rewritten.
	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), cancelled.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, sub.Status)
}

func (s *ConnectionServiceSuite) TestSweepIsIdempotent() {
	now := time.Now().UTC()
	conn := s.seedConnection(testutil.DefaultUserID)
	current := s.seedSubscription(conn.ID, types.SubscriptionStatusActive,
		lo.ToPtr(now.AddDate(0, -1, 0)), lo.ToPtr(now.Add(-24*time.Hour)))
	queued := s.seedSubscription(conn.ID, types.SubscriptionStatusQueued, nil, nil)
	s.setRefs(conn.ID, lo.ToPtr(current.ID), lo.ToPtr(queued.ID))

	first, err := s.service.GetConnection(s.GetContext(), conn.ID)
	s.NoError(err)

	second, err := s.service.GetConnection(s.GetContext(), conn.ID)
	s.NoError(err)

	s.Equal(lo.FromPtr(first.Connection.CurrentSubscriptionID),
		lo.FromPtr(second.Connection.CurrentSubscriptionID))
	s.Nil(second.Connection.QueuedSubscriptionID)

	promoted, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), queued.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, promoted.Status)
	firstEnd := *promoted.EndDate

	// The promoted subscription's period must not move on later sweeps.
	_, err = s.service.GetConnection(s.GetContext(), conn.ID)
	s.NoError(err)
	again, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), queued.ID)
	s.NoError(err)
	s.True(firstEnd.Equal(*again.EndDate))
}

func (s *ConnectionServiceSuite) TestSweepLeavesFreshStateAlone() {
	now := time.Now().UTC()
	conn := s.seedConnection(testutil.DefaultUserID)
	current := s.seedSubscription(conn.ID, types.SubscriptionStatusActive,
		lo.ToPtr(now), lo.ToPtr(now.AddDate(0, 1, 0)))
	s.setRefs(conn.ID, lo.ToPtr(current.ID), nil)

	resp, err := s.service.GetConnection(s.GetContext(), conn.ID)
	s.NoError(err)
	s.Equal(current.ID, lo.FromPtr(resp.Connection.CurrentSubscriptionID))

	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), current.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.Status)
}

func (s *ConnectionServiceSuite) TestUpdateConnection() {
	conn := s.seedConnection(testutil.DefaultUserID)

	resp, err := s.service.UpdateConnection(s.GetContext(), conn.ID, dto.UpdateConnectionRequest{
		Name:   lo.ToPtr("Office Fiber"),
		Status: lo.ToPtr(types.ConnectionStatusInactive),
	})
	s.NoError(err)
	s.Equal("Office Fiber", resp.Name)
	s.Equal(types.ConnectionStatusInactive, resp.Status)
}

func (s *ConnectionServiceSuite) TestDeleteConnectionKeepsSubscriptionHistory() {
	now := time.Now().UTC()
	conn := s.seedConnection(testutil.DefaultUserID)
	sub := s.seedSubscription(conn.ID, types.SubscriptionStatusActive,
		lo.ToPtr(now), lo.ToPtr(now.AddDate(0, 1, 0)))
	s.setRefs(conn.ID, lo.ToPtr(sub.ID), nil)

	s.NoError(s.service.DeleteConnection(s.GetContext(), conn.ID))

	_, err := s.GetStores().ConnectionRepo.Get(s.GetContext(), conn.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	kept, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(sub.ID, kept.ID)
}

func (s *ConnectionServiceSuite) TestAdminSeesAllConnections() {
	s.seedConnection(testutil.DefaultUserID)
	s.seedConnection("user_somebody_else")

	resp, err := s.service.ListAllConnections(s.GetContext())
	s.NoError(err)
	s.Len(resp.Items, 2)
}
