package service

import (
	"context"
	"time"

	"github.com/netbill/netbill/internal/api/dto"
	"github.com/netbill/netbill/internal/domain/connection"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/types"
	"github.com/samber/lo"
)

// ConnectionService owns connection records and the lazy lifecycle sweep.
// Every read path runs the sweep first so expired subscriptions become
// visible and queued ones get promoted without a background scheduler.
type ConnectionService interface {
	CreateConnection(ctx context.Context, req dto.CreateConnectionRequest) (*dto.ConnectionResponse, error)
	GetConnection(ctx context.Context, id string) (*dto.ConnectionResponse, error)
	ListConnections(ctx context.Context) (*dto.ListConnectionsResponse, error)
	UpdateConnection(ctx context.Context, id string, req dto.UpdateConnectionRequest) (*dto.ConnectionResponse, error)
	DeleteConnection(ctx context.Context, id string) error

	ListAllConnections(ctx context.Context) (*dto.ListConnectionsResponse, error)

	// SweepConnection applies the idempotent expiry/promotion pass to one
	// connection and returns its fresh state.
	SweepConnection(ctx context.Context, conn *connection.Connection) (*connection.Connection, error)
}

type connectionService struct {
	ServiceParams
}

// NewConnectionService creates a new connection service
func NewConnectionService(params ServiceParams) ConnectionService {
	return &connectionService{
		ServiceParams: params,
	}
}

func (s *connectionService) CreateConnection(ctx context.Context, req dto.CreateConnectionRequest) (*dto.ConnectionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conn := &connection.Connection{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CONNECTION),
		UserID:    types.GetUserID(ctx),
		Name:      req.Name,
		Type:      req.Type,
		Address:   req.Address.ToAddress(),
		Status:    types.ConnectionStatusActive,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}

	if err := s.ConnRepo.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.Logger.Infow("created connection",
		"connection_id", conn.ID,
		"user_id", conn.UserID)
	return &dto.ConnectionResponse{Connection: conn}, nil
}

func (s *connectionService) GetConnection(ctx context.Context, id string) (*dto.ConnectionResponse, error) {
	conn, err := s.ownedConnection(ctx, id)
	if err != nil {
		return nil, err
	}

	conn, err = s.SweepConnection(ctx, conn)
	if err != nil {
		return nil, err
	}
	return s.toConnectionResponse(ctx, conn)
}

func (s *connectionService) ListConnections(ctx context.Context) (*dto.ListConnectionsResponse, error) {
	conns, err := s.ConnRepo.ListByUser(ctx, types.GetUserID(ctx))
	if err != nil {
		return nil, err
	}
	return s.sweepAndExpand(ctx, conns)
}

func (s *connectionService) ListAllConnections(ctx context.Context) (*dto.ListConnectionsResponse, error) {
	conns, err := s.ConnRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.sweepAndExpand(ctx, conns)
}

func (s *connectionService) UpdateConnection(ctx context.Context, id string, req dto.UpdateConnectionRequest) (*dto.ConnectionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conn, err := s.ownedConnection(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		conn.Name = *req.Name
	}
	if req.Type != nil {
		conn.Type = *req.Type
	}
	if req.Address != nil {
		conn.Address = req.Address.ToAddress()
	}
	if req.Status != nil {
		conn.Status = *req.Status
	}
	conn.UpdatedBy = types.GetUserID(ctx)

	if err := s.ConnRepo.Update(ctx, conn); err != nil {
		return nil, err
	}
	return &dto.ConnectionResponse{Connection: conn}, nil
}

func (s *connectionService) DeleteConnection(ctx context.Context, id string) error {
	if _, err := s.ownedConnection(ctx, id); err != nil {
		return err
	}

	// Referenced subscriptions stay behind as billing history.
	if err := s.ConnRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.Logger.Infow("deleted connection", "connection_id", id)
	return nil
}

// ownedConnection loads a connection and enforces that the caller owns it.
// Admins see every connection.
func (s *connectionService) ownedConnection(ctx context.Context, id string) (*connection.Connection, error) {
	conn, err := s.ConnRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !types.IsAdmin(ctx) && !conn.IsOwnedBy(types.GetUserID(ctx)) {
		return nil, ierr.NewError("connection does not belong to the caller").
			WithHint("You do not have access to this connection").
			Mark(ierr.ErrPermissionDenied)
	}
	return conn, nil
}

func (s *connectionService) sweepAndExpand(ctx context.Context, conns []*connection.Connection) (*dto.ListConnectionsResponse, error) {
	items := make([]*dto.ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		swept, err := s.SweepConnection(ctx, conn)
		if err != nil {
			return nil, err
		}
		resp, err := s.toConnectionResponse(ctx, swept)
		if err != nil {
			return nil, err
		}
		items = append(items, resp)
	}
	return &dto.ListConnectionsResponse{Items: items, Total: len(items)}, nil
}

func (s *connectionService) toConnectionResponse(ctx context.Context, conn *connection.Connection) (*dto.ConnectionResponse, error) {
	resp := &dto.ConnectionResponse{Connection: conn}
	if conn.CurrentSubscriptionID != nil {
		sub, err := s.SubRepo.Get(ctx, *conn.CurrentSubscriptionID)
		if err != nil {
			return nil, err
		}
		resp.CurrentSubscription = &dto.SubscriptionResponse{Subscription: sub}
	}
	if conn.QueuedSubscriptionID != nil {
		sub, err := s.SubRepo.Get(ctx, *conn.QueuedSubscriptionID)
		if err != nil {
			return nil, err
		}
		resp.QueuedSubscription = &dto.SubscriptionResponse{Subscription: sub}
	}
	return resp, nil
}

// SweepConnection expires a lapsed or cancelled current subscription and
// promotes the queued one. The pass is idempotent: terminal statuses are
// never rewritten, and a connection with no stale state produces no writes.
// Races with concurrent sweeps of the same connection are resolved by the
// conditional writes; the loser simply rereads the winner's result.
func (s *connectionService) SweepConnection(ctx context.Context, conn *connection.Connection) (*connection.Connection, error) {
	if conn.CurrentSubscriptionID == nil {
		return conn, nil
	}

	cur, err := s.SubRepo.Get(ctx, *conn.CurrentSubscriptionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	switch {
	case cur.IsExpiredAt(now):
		err := s.SubRepo.TransitionStatus(ctx, cur.ID,
			types.SubscriptionStatusActive, types.SubscriptionStatusExpired)
		if err != nil {
			if ierr.IsVersionConflict(err) {
				return s.ConnRepo.Get(ctx, conn.ID)
			}
			return nil, err
		}
	case cur.Status.IsTerminal():
		// Reference still points at a cancelled or expired subscription;
		// only the connection needs fixing up.
	default:
		return conn, nil
	}

	if conn.QueuedSubscriptionID != nil {
		if err := s.promoteQueued(ctx, conn, now); err != nil {
			if ierr.IsVersionConflict(err) {
				return s.ConnRepo.Get(ctx, conn.ID)
			}
			return nil, err
		}
	} else {
		err := s.ConnRepo.SwapSubscriptions(ctx, conn.ID, conn.CurrentSubscriptionID, nil, nil)
		if err != nil {
			if ierr.IsVersionConflict(err) {
				return s.ConnRepo.Get(ctx, conn.ID)
			}
			return nil, err
		}
	}

	s.Logger.Infow("swept connection",
		"connection_id", conn.ID,
		"expired_subscription_id", cur.ID,
		"promoted_subscription_id", lo.FromPtr(conn.QueuedSubscriptionID))

	return s.ConnRepo.Get(ctx, conn.ID)
}

// promoteQueued activates the queued subscription with a fresh period and
// installs it as the current one.
func (s *connectionService) promoteQueued(ctx context.Context, conn *connection.Connection, now time.Time) error {
	queued, err := s.SubRepo.Get(ctx, *conn.QueuedSubscriptionID)
	if err != nil {
		return err
	}

	if queued.Status == types.SubscriptionStatusQueued {
		start, end := queued.Duration.Period(now)
		err := s.SubRepo.Activate(ctx, queued.ID, types.SubscriptionStatusQueued, start, end)
		if err != nil && !ierr.IsVersionConflict(err) {
			return err
		}
	}

	return s.ConnRepo.SwapSubscriptions(ctx, conn.ID,
		conn.CurrentSubscriptionID, conn.QueuedSubscriptionID, nil)
}
