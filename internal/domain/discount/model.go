package discount

import (
	"github.com/netbill/netbill/internal/types"
	"github.com/shopspring/decimal"
)

// Discount represents a promotional code. UsageCount and RevenueGenerated
// are monotonic counters updated only through atomic increments, never by
// read-modify-write.
type Discount struct {
	ID          string             `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Code        string             `bson:"code" json:"code"`
	Type        types.DiscountType `bson:"type" json:"type"`
	Value       decimal.Decimal    `bson:"value" json:"value"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"is_active" json:"is_active"`

	UsageCount       int64           `bson:"usage_count" json:"usage_count"`
	RevenueGenerated decimal.Decimal `bson:"revenue_generated" json:"revenue_generated"`

	types.BaseModel `bson:",inline"`
}

// DiscountAmount calculates the deduction for a given order amount, rounded
// half-up to integral currency units. The caller clamps the final payable
// amount to zero.
func (d *Discount) DiscountAmount(orderAmount decimal.Decimal) decimal.Decimal {
	switch d.Type {
	case types.DiscountTypePercentage:
		return orderAmount.Mul(d.Value).Div(decimal.NewFromInt(100)).Round(0)
	case types.DiscountTypeFlat:
		return d.Value.Round(0)
	default:
		return decimal.Zero
	}
}

// ApplyTo returns the payable amount after deduction, clamped to zero.
func (d *Discount) ApplyTo(orderAmount decimal.Decimal) decimal.Decimal {
	final := orderAmount.Sub(d.DiscountAmount(orderAmount))
	if final.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return final
}
