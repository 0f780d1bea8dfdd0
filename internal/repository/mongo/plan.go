package mongo

import (
	"context"

	domainPlan "github.com/netbill/netbill/internal/domain/plan"
	"github.com/netbill/netbill/internal/logger"
	db "github.com/netbill/netbill/internal/mongo"
	"github.com/netbill/netbill/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const planCollection = "plans"

type planDoc struct {
	ID          string   `bson:"_id"`
	Name        string   `bson:"name"`
	Type        string   `bson:"type"`
	Speed       string   `bson:"speed,omitempty"`
	DataQuota   string   `bson:"data_quota,omitempty"`
	Price       int64    `bson:"price"`
	Duration    string   `bson:"duration"`
	Description string   `bson:"description,omitempty"`
	Features    []string `bson:"features,omitempty"`

	types.BaseModel `bson:",inline"`
}

func toPlanDoc(p *domainPlan.Plan) *planDoc {
	return &planDoc{
		ID:          p.ID,
		Name:        p.Name,
		Type:        string(p.Type),
		Speed:       p.Speed,
		DataQuota:   p.DataQuota,
		Price:       toAmount(p.Price),
		Duration:    string(p.Duration),
		Description: p.Description,
		Features:    p.Features,
		BaseModel:   p.BaseModel,
	}
}

func fromPlanDoc(d *planDoc) *domainPlan.Plan {
	return &domainPlan.Plan{
		ID:          d.ID,
		Name:        d.Name,
		Type:        types.PlanType(d.Type),
		Speed:       d.Speed,
		DataQuota:   d.DataQuota,
		Price:       fromAmount(d.Price),
		Duration:    types.PlanDuration(d.Duration),
		Description: d.Description,
		Features:    d.Features,
		BaseModel:   d.BaseModel,
	}
}

type planRepository struct {
	coll   *mongo.Collection
	logger *logger.Logger
}

// NewPlanRepository creates a MongoDB backed plan repository
func NewPlanRepository(client *db.Client, logger *logger.Logger) domainPlan.Repository {
	return &planRepository{
		coll:   client.Collection(planCollection),
		logger: logger,
	}
}

func (r *planRepository) Create(ctx context.Context, p *domainPlan.Plan) error {
	if _, err := r.coll.InsertOne(ctx, toPlanDoc(p)); err != nil {
		return wrapDBError(err, "Failed to create plan")
	}
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*domainPlan.Plan, error) {
	var doc planDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, wrapDBError(err, "Plan not found")
	}
	return fromPlanDoc(&doc), nil
}

func (r *planRepository) List(ctx context.Context) ([]*domainPlan.Plan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, wrapDBError(err, "Failed to list plans")
	}
	defer cursor.Close(ctx)

	var docs []*planDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapDBError(err, "Failed to decode plans")
	}

	plans := make([]*domainPlan.Plan, 0, len(docs))
	for _, doc := range docs {
		plans = append(plans, fromPlanDoc(doc))
	}
	return plans, nil
}
