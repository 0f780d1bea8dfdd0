package connection

import (
	"github.com/netbill/netbill/internal/types"
)

// Address is the service address embedded in a connection.
type Address struct {
	Name      string `bson:"name" json:"name"`
	Phone     string `bson:"phone" json:"phone"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	Pincode   string `bson:"pincode" json:"pincode"`
	Country   string `bson:"country" json:"country"`
	IsDefault bool   `bson:"is_default" json:"is_default"`
}

// Connection represents a user's service line that subscriptions attach to.
// At most one referenced subscription is Active (CurrentSubscriptionID) and
// at most one is Queued (QueuedSubscriptionID); a queued subscription can
// only exist while a current one is set.
type Connection struct {
	ID                    string                 `bson:"_id" json:"id"`
	UserID                string                 `bson:"user_id" json:"user_id"`
	Name                  string                 `bson:"name" json:"name"`
	Type                  types.ConnectionType   `bson:"type" json:"type"`
	Address               Address                `bson:"address" json:"address"`
	Status                types.ConnectionStatus `bson:"status" json:"status"`
	CurrentSubscriptionID *string                `bson:"current_subscription_id,omitempty" json:"current_subscription_id,omitempty"`
	QueuedSubscriptionID  *string                `bson:"queued_subscription_id,omitempty" json:"queued_subscription_id,omitempty"`

	types.BaseModel `bson:",inline"`
}

// IsOwnedBy reports whether the connection belongs to the given user.
func (c *Connection) IsOwnedBy(userID string) bool {
	return c.UserID == userID
}
