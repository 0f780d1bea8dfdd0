package subscription

import (
	"context"
	"time"

	"github.com/netbill/netbill/internal/types"
)

// Repository defines the interface for subscription data access.
//
// TransitionStatus and Activate are conditional (compare-and-swap) writes:
// they apply only when the stored status still equals the expected
// pre-state and return ierr.ErrVersionConflict otherwise. All lifecycle
// transitions go through them; nothing overwrites a status unconditionally.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]*Subscription, error)
	ListByConnection(ctx context.Context, userID, connectionID string) ([]*Subscription, error)
	ListAll(ctx context.Context) ([]*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id string) error

	// TransitionStatus moves the subscription from the expected status to
	// the new one.
	TransitionStatus(ctx context.Context, id string, from, to types.SubscriptionStatus) error

	// Activate promotes a subscription from the expected status to Active
	// and stamps its billing period in the same write.
	Activate(ctx context.Context, id string, from types.SubscriptionStatus, start, end time.Time) error
}
