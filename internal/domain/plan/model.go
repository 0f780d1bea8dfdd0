package plan

import (
	"github.com/netbill/netbill/internal/types"
	"github.com/shopspring/decimal"
)

// Plan represents a catalog offering. Subscriptions snapshot the plan name
// and price at purchase time, so later catalog edits never alter billed
// history.
type Plan struct {
	ID          string             `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Type        types.PlanType     `bson:"type" json:"type"`
	Speed       string             `bson:"speed,omitempty" json:"speed,omitempty"`
	DataQuota   string             `bson:"data_quota,omitempty" json:"data_quota,omitempty"`
	Price       decimal.Decimal    `bson:"price" json:"price"`
	Duration    types.PlanDuration `bson:"duration" json:"duration"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Features    []string           `bson:"features,omitempty" json:"features,omitempty"`

	types.BaseModel `bson:",inline"`
}
