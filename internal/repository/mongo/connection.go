package mongo

import (
	"context"

	domainConnection "github.com/netbill/netbill/internal/domain/connection"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/logger"
	db "github.com/netbill/netbill/internal/mongo"
	"github.com/netbill/netbill/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const connectionCollection = "connections"

type connectionDoc struct {
	ID                    string                   `bson:"_id"`
	UserID                string                   `bson:"user_id"`
	Name                  string                   `bson:"name"`
	Type                  string                   `bson:"type"`
	Address               domainConnection.Address `bson:"address"`
	Status                string                   `bson:"status"`
	CurrentSubscriptionID *string                  `bson:"current_subscription_id,omitempty"`
	QueuedSubscriptionID  *string                  `bson:"queued_subscription_id,omitempty"`

	types.BaseModel `bson:",inline"`
}

func toConnectionDoc(c *domainConnection.Connection) *connectionDoc {
	return &connectionDoc{
		ID:                    c.ID,
		UserID:                c.UserID,
		Name:                  c.Name,
		Type:                  string(c.Type),
		Address:               c.Address,
		Status:                string(c.Status),
		CurrentSubscriptionID: c.CurrentSubscriptionID,
		QueuedSubscriptionID:  c.QueuedSubscriptionID,
		BaseModel:             c.BaseModel,
	}
}

func fromConnectionDoc(d *connectionDoc) *domainConnection.Connection {
	return &domainConnection.Connection{
		ID:                    d.ID,
		UserID:                d.UserID,
		Name:                  d.Name,
		Type:                  types.ConnectionType(d.Type),
		Address:               d.Address,
		Status:                types.ConnectionStatus(d.Status),
		CurrentSubscriptionID: d.CurrentSubscriptionID,
		QueuedSubscriptionID:  d.QueuedSubscriptionID,
		BaseModel:             d.BaseModel,
	}
}

type connectionRepository struct {
	coll   *mongo.Collection
	logger *logger.Logger
}

// NewConnectionRepository creates a MongoDB backed connection repository
func NewConnectionRepository(client *db.Client, logger *logger.Logger) domainConnection.Repository {
	return &connectionRepository{
		coll:   client.Collection(connectionCollection),
		logger: logger,
	}
}

func (r *connectionRepository) Create(ctx context.Context, conn *domainConnection.Connection) error {
	if _, err := r.coll.InsertOne(ctx, toConnectionDoc(conn)); err != nil {
		return wrapDBError(err, "Failed to create connection")
	}
	return nil
}

func (r *connectionRepository) Get(ctx context.Context, id string) (*domainConnection.Connection, error) {
	var doc connectionDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, wrapDBError(err, "Connection not found")
	}
	return fromConnectionDoc(&doc), nil
}

func (r *connectionRepository) ListByUser(ctx context.Context, userID string) ([]*domainConnection.Connection, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *connectionRepository) ListAll(ctx context.Context) ([]*domainConnection.Connection, error) {
	return r.list(ctx, bson.M{})
}

func (r *connectionRepository) list(ctx context.Context, filter bson.M) ([]*domainConnection.Connection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapDBError(err, "Failed to list connections")
	}
	defer cursor.Close(ctx)

	var docs []*connectionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapDBError(err, "Failed to decode connections")
	}

	conns := make([]*domainConnection.Connection, 0, len(docs))
	for _, doc := range docs {
		conns = append(conns, fromConnectionDoc(doc))
	}
	return conns, nil
}

func (r *connectionRepository) Update(ctx context.Context, conn *domainConnection.Connection) error {
	doc := toConnectionDoc(conn)
	update := bson.M{"$set": bson.M{
		"name":       doc.Name,
		"type":       doc.Type,
		"address":    doc.Address,
		"status":     doc.Status,
		"updated_at": doc.UpdatedAt,
		"updated_by": doc.UpdatedBy,
	}}
	// Subscription references are deliberately excluded; they move only
	// through SwapSubscriptions.
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": conn.ID}, update)
	if err != nil {
		return wrapDBError(err, "Failed to update connection")
	}
	if res.MatchedCount == 0 {
		return ierr.NewError("connection not found").
			WithHintf("Connection with ID %s was not found", conn.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *connectionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapDBError(err, "Failed to delete connection")
	}
	if res.DeletedCount == 0 {
		return ierr.NewError("connection not found").
			WithHintf("Connection with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *connectionRepository) SwapSubscriptions(ctx context.Context, id string, expectedCurrent, newCurrent, newQueued *string) error {
	// A nil expected reference matches documents where the field is null
	// or absent, so a freshly created connection passes the guard.
	filter := bson.M{
		"_id":                     id,
		"current_subscription_id": expectedCurrent,
	}

	set := bson.M{}
	unset := bson.M{}
	if newCurrent != nil {
		set["current_subscription_id"] = *newCurrent
	} else {
		unset["current_subscription_id"] = ""
	}
	if newQueued != nil {
		set["queued_subscription_id"] = *newQueued
	} else {
		unset["queued_subscription_id"] = ""
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return wrapDBError(err, "Failed to update connection subscriptions")
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing connection from a lost race on the
		// current reference.
		if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
			return wrapDBError(err, "Connection not found")
		}
		return ierr.NewError("connection was modified concurrently").
			WithHintf("Subscription state on connection %s changed, retry the operation", id).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}
