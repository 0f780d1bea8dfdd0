package discount

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for discount data access.
type Repository interface {
	Create(ctx context.Context, d *Discount) error
	Get(ctx context.Context, id string) (*Discount, error)
	GetByCode(ctx context.Context, code string) (*Discount, error)
	List(ctx context.Context) ([]*Discount, error)
	Update(ctx context.Context, d *Discount) error
	Delete(ctx context.Context, id string) error

	// IncrementUsage atomically bumps the usage counter by one and adds
	// revenueDelta to the revenue counter. Both counters only ever grow.
	IncrementUsage(ctx context.Context, id string, revenueDelta decimal.Decimal) error
}
