package testutil

import (
	"context"

	"github.com/netbill/netbill/internal/domain/connection"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/samber/lo"
)

// InMemoryConnectionStore implements connection.Repository
type InMemoryConnectionStore struct {
	*InMemoryStore[*connection.Connection]
}

// NewInMemoryConnectionStore creates a new in-memory connection store
func NewInMemoryConnectionStore() *InMemoryConnectionStore {
	return &InMemoryConnectionStore{
		InMemoryStore: NewInMemoryStore[*connection.Connection](),
	}
}

func copyConnection(c *connection.Connection) *connection.Connection {
	if c == nil {
		return nil
	}

	copied := *c
	if c.CurrentSubscriptionID != nil {
		copied.CurrentSubscriptionID = lo.ToPtr(*c.CurrentSubscriptionID)
	}
	if c.QueuedSubscriptionID != nil {
		copied.QueuedSubscriptionID = lo.ToPtr(*c.QueuedSubscriptionID)
	}
	return &copied
}

func refEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *InMemoryConnectionStore) Create(ctx context.Context, c *connection.Connection) error {
	if c == nil {
		return ierr.NewError("connection cannot be nil").
			WithHint("Connection cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, c.ID, copyConnection(c))
}

func (s *InMemoryConnectionStore) Get(ctx context.Context, id string) (*connection.Connection, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("connection not found").
			WithHintf("Connection with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyConnection(c), nil
}

func (s *InMemoryConnectionStore) ListByUser(ctx context.Context, userID string) ([]*connection.Connection, error) {
	return s.list(ctx, userID, func(ctx context.Context, c *connection.Connection, filter interface{}) bool {
		return c.UserID == filter.(string)
	})
}

func (s *InMemoryConnectionStore) ListAll(ctx context.Context) ([]*connection.Connection, error) {
	return s.list(ctx, nil, nil)
}

func (s *InMemoryConnectionStore) list(ctx context.Context, filter interface{}, filterFn FilterFunc[*connection.Connection]) ([]*connection.Connection, error) {
	conns, err := s.InMemoryStore.List(ctx, filter, filterFn, func(i, j *connection.Connection) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	result := make([]*connection.Connection, 0, len(conns))
	for _, c := range conns {
		result = append(result, copyConnection(c))
	}
	return result, nil
}

func (s *InMemoryConnectionStore) Update(ctx context.Context, c *connection.Connection) error {
	// Subscription references only move through SwapSubscriptions,
	// matching the database behaviour.
	err := s.InMemoryStore.Mutate(ctx, c.ID, func(existing *connection.Connection) (*connection.Connection, error) {
		updated := copyConnection(c)
		updated.CurrentSubscriptionID = existing.CurrentSubscriptionID
		updated.QueuedSubscriptionID = existing.QueuedSubscriptionID
		return updated, nil
	})
	if err != nil {
		return ierr.NewError("connection not found").
			WithHintf("Connection with ID %s was not found", c.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryConnectionStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.NewError("connection not found").
			WithHintf("Connection with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryConnectionStore) SwapSubscriptions(ctx context.Context, id string, expectedCurrent, newCurrent, newQueued *string) error {
	conflict := ierr.NewError("connection was modified concurrently").
		WithHintf("Subscription state on connection %s changed, retry the operation", id).
		Mark(ierr.ErrVersionConflict)

	err := s.InMemoryStore.Mutate(ctx, id, func(existing *connection.Connection) (*connection.Connection, error) {
		if !refEqual(existing.CurrentSubscriptionID, expectedCurrent) {
			return nil, conflict
		}
		updated := copyConnection(existing)
		updated.CurrentSubscriptionID = newCurrent
		updated.QueuedSubscriptionID = newQueued
		return updated, nil
	})
	if err == nil {
		return nil
	}
	if ierr.IsVersionConflict(err) {
		return err
	}
	return ierr.NewError("connection not found").
		WithHintf("Connection with ID %s was not found", id).
		Mark(ierr.ErrNotFound)
}
