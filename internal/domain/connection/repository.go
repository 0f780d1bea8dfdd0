package connection

import (
	"context"
)

// Repository defines the interface for connection data access.
//
// SwapSubscriptions is the only way the current/queued references change.
// It is a conditional (compare-and-swap) write: the update applies only if
// the stored current reference still equals expectedCurrent, and returns
// ierr.ErrVersionConflict otherwise. Concurrent sweeps and checkouts against
// the same connection rely on this to avoid double promotion.
type Repository interface {
	Create(ctx context.Context, conn *Connection) error
	Get(ctx context.Context, id string) (*Connection, error)
	ListByUser(ctx context.Context, userID string) ([]*Connection, error)
	ListAll(ctx context.Context) ([]*Connection, error)
	Update(ctx context.Context, conn *Connection) error
	Delete(ctx context.Context, id string) error

	// SwapSubscriptions atomically replaces the subscription references on
	// the connection, guarded by the expected current reference.
	// expectedCurrent, newCurrent and newQueued may be nil to match or set
	// an empty reference.
	SwapSubscriptions(ctx context.Context, id string, expectedCurrent, newCurrent, newQueued *string) error
}
