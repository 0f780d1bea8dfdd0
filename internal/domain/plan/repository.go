package plan

import (
	"context"
)

// Repository defines the interface for plan catalog access. The catalog is
// read-only inside this service; plan management lives elsewhere.
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
}
