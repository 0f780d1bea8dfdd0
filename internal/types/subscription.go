package types

import (
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus represents the lifecycle state of a subscription.
// The legal transitions are Queued -> Active -> Expired, with Cancelled
// reachable from Queued or Active. Cancelled and Expired are terminal.
type SubscriptionStatus string

const (
	SubscriptionStatusQueued    SubscriptionStatus = "Queued"
	SubscriptionStatusActive    SubscriptionStatus = "Active"
	SubscriptionStatusExpired   SubscriptionStatus = "Expired"
	SubscriptionStatusCancelled SubscriptionStatus = "Cancelled"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusExpired || s == SubscriptionStatusCancelled
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusQueued,
		SubscriptionStatusActive,
		SubscriptionStatusExpired,
		SubscriptionStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHintf("Subscription status %s is not valid", s).
			Mark(ierr.ErrValidation)
	}
	return nil
}
