package mongo

import (
	"context"
	"time"

	domainSubscription "github.com/netbill/netbill/internal/domain/subscription"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/logger"
	db "github.com/netbill/netbill/internal/mongo"
	"github.com/netbill/netbill/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const subscriptionCollection = "subscriptions"

type subscriptionDoc struct {
	ID              string     `bson:"_id"`
	UserID          string     `bson:"user_id"`
	ConnectionID    string     `bson:"connection_id"`
	Plan            string     `bson:"plan"`
	PlanPrice       int64      `bson:"plan_price"`
	FinalAmountPaid int64      `bson:"final_amount_paid"`
	Duration        string     `bson:"duration"`
	StartDate       *time.Time `bson:"start_date,omitempty"`
	EndDate         *time.Time `bson:"end_date,omitempty"`
	Status          string     `bson:"status"`

	RazorpayOrderID   string `bson:"razorpay_order_id"`
	RazorpayPaymentID string `bson:"razorpay_payment_id"`
	RazorpaySignature string `bson:"razorpay_signature"`

	PromoCode     *string `bson:"promo_code,omitempty"`
	CreditApplied int64   `bson:"credit_applied"`

	types.BaseModel `bson:",inline"`
}

func toSubscriptionDoc(s *domainSubscription.Subscription) *subscriptionDoc {
	return &subscriptionDoc{
		ID:                s.ID,
		UserID:            s.UserID,
		ConnectionID:      s.ConnectionID,
		Plan:              s.Plan,
		PlanPrice:         toAmount(s.PlanPrice),
		FinalAmountPaid:   toAmount(s.FinalAmountPaid),
		Duration:          string(s.Duration),
		StartDate:         s.StartDate,
		EndDate:           s.EndDate,
		Status:            string(s.Status),
		RazorpayOrderID:   s.RazorpayOrderID,
		RazorpayPaymentID: s.RazorpayPaymentID,
		RazorpaySignature: s.RazorpaySignature,
		PromoCode:         s.PromoCode,
		CreditApplied:     toAmount(s.CreditApplied),
		BaseModel:         s.BaseModel,
	}
}

func fromSubscriptionDoc(d *subscriptionDoc) *domainSubscription.Subscription {
	return &domainSubscription.Subscription{
		ID:                d.ID,
		UserID:            d.UserID,
		ConnectionID:      d.ConnectionID,
		Plan:              d.Plan,
		PlanPrice:         fromAmount(d.PlanPrice),
		FinalAmountPaid:   fromAmount(d.FinalAmountPaid),
		Duration:          types.PlanDuration(d.Duration),
		StartDate:         d.StartDate,
		EndDate:           d.EndDate,
		Status:            types.SubscriptionStatus(d.Status),
		RazorpayOrderID:   d.RazorpayOrderID,
		RazorpayPaymentID: d.RazorpayPaymentID,
		RazorpaySignature: d.RazorpaySignature,
		PromoCode:         d.PromoCode,
		CreditApplied:     fromAmount(d.CreditApplied),
		BaseModel:         d.BaseModel,
	}
}

type subscriptionRepository struct {
	coll   *mongo.Collection
	logger *logger.Logger
}

// NewSubscriptionRepository creates a MongoDB backed subscription repository
func NewSubscriptionRepository(client *db.Client, logger *logger.Logger) domainSubscription.Repository {
	return &subscriptionRepository{
		coll:   client.Collection(subscriptionCollection),
		logger: logger,
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *domainSubscription.Subscription) error {
	if _, err := r.coll.InsertOne(ctx, toSubscriptionDoc(sub)); err != nil {
		return wrapDBError(err, "Failed to create subscription")
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*domainSubscription.Subscription, error) {
	var doc subscriptionDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, wrapDBError(err, "Subscription not found")
	}
	return fromSubscriptionDoc(&doc), nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID string) ([]*domainSubscription.Subscription, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *subscriptionRepository) ListByConnection(ctx context.Context, userID, connectionID string) ([]*domainSubscription.Subscription, error) {
	return r.list(ctx, bson.M{"user_id": userID, "connection_id": connectionID})
}

func (r *subscriptionRepository) ListAll(ctx context.Context) ([]*domainSubscription.Subscription, error) {
	return r.list(ctx, bson.M{})
}

func (r *subscriptionRepository) list(ctx context.Context, filter bson.M) ([]*domainSubscription.Subscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapDBError(err, "Failed to list subscriptions")
	}
	defer cursor.Close(ctx)

	var docs []*subscriptionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapDBError(err, "Failed to decode subscriptions")
	}

	subs := make([]*domainSubscription.Subscription, 0, len(docs))
	for _, doc := range docs {
		subs = append(subs, fromSubscriptionDoc(doc))
	}
	return subs, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *domainSubscription.Subscription) error {
	doc := toSubscriptionDoc(sub)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": sub.ID}, doc)
	if err != nil {
		return wrapDBError(err, "Failed to update subscription")
	}
	if res.MatchedCount == 0 {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription with ID %s was not found", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapDBError(err, "Failed to delete subscription")
	}
	if res.DeletedCount == 0 {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) TransitionStatus(ctx context.Context, id string, from, to types.SubscriptionStatus) error {
	update := bson.M{"$set": bson.M{
		"status":     string(to),
		"updated_at": time.Now().UTC(),
	}}
	return r.conditionalUpdate(ctx, id, from, update)
}

func (r *subscriptionRepository) Activate(ctx context.Context, id string, from types.SubscriptionStatus, start, end time.Time) error {
	update := bson.M{"$set": bson.M{
		"status":     string(types.SubscriptionStatusActive),
		"start_date": start,
		"end_date":   end,
		"updated_at": time.Now().UTC(),
	}}
	return r.conditionalUpdate(ctx, id, from, update)
}

// conditionalUpdate applies the update only when the stored status still
// equals the expected pre-state.
func (r *subscriptionRepository) conditionalUpdate(ctx context.Context, id string, from types.SubscriptionStatus, update bson.M) error {
	filter := bson.M{"_id": id, "status": string(from)}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return wrapDBError(err, "Failed to update subscription status")
	}
	if res.MatchedCount == 0 {
		if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
			return wrapDBError(err, "Subscription not found")
		}
		return ierr.NewError("subscription was modified concurrently").
			WithHintf("Subscription %s is no longer %s", id, from).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}
