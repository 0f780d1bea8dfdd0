package mongo

import (
	"context"

	domainDiscount "github.com/netbill/netbill/internal/domain/discount"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/logger"
	db "github.com/netbill/netbill/internal/mongo"
	"github.com/netbill/netbill/internal/types"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const discountCollection = "discounts"

type discountDoc struct {
	ID          string `bson:"_id"`
	Title       string `bson:"title"`
	Code        string `bson:"code"`
	Type        string `bson:"type"`
	Value       int64  `bson:"value"`
	Description string `bson:"description,omitempty"`
	IsActive    bool   `bson:"is_active"`

	UsageCount       int64 `bson:"usage_count"`
	RevenueGenerated int64 `bson:"revenue_generated"`

	types.BaseModel `bson:",inline"`
}

func toDiscountDoc(d *domainDiscount.Discount) *discountDoc {
	return &discountDoc{
		ID:               d.ID,
		Title:            d.Title,
		Code:             d.Code,
		Type:             string(d.Type),
		Value:            toAmount(d.Value),
		Description:      d.Description,
		IsActive:         d.IsActive,
		UsageCount:       d.UsageCount,
		RevenueGenerated: toAmount(d.RevenueGenerated),
		BaseModel:        d.BaseModel,
	}
}

func fromDiscountDoc(doc *discountDoc) *domainDiscount.Discount {
	return &domainDiscount.Discount{
		ID:               doc.ID,
		Title:            doc.Title,
		Code:             doc.Code,
		Type:             types.DiscountType(doc.Type),
		Value:            fromAmount(doc.Value),
		Description:      doc.Description,
		IsActive:         doc.IsActive,
		UsageCount:       doc.UsageCount,
		RevenueGenerated: fromAmount(doc.RevenueGenerated),
		BaseModel:        doc.BaseModel,
	}
}

type discountRepository struct {
	coll   *mongo.Collection
	logger *logger.Logger
}

// NewDiscountRepository creates a MongoDB backed discount repository
func NewDiscountRepository(client *db.Client, logger *logger.Logger) domainDiscount.Repository {
	return &discountRepository{
		coll:   client.Collection(discountCollection),
		logger: logger,
	}
}

func (r *discountRepository) Create(ctx context.Context, d *domainDiscount.Discount) error {
	if _, err := r.coll.InsertOne(ctx, toDiscountDoc(d)); err != nil {
		return wrapDBError(err, "Failed to create discount")
	}
	return nil
}

func (r *discountRepository) Get(ctx context.Context, id string) (*domainDiscount.Discount, error) {
	var doc discountDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, wrapDBError(err, "Discount not found")
	}
	return fromDiscountDoc(&doc), nil
}

func (r *discountRepository) GetByCode(ctx context.Context, code string) (*domainDiscount.Discount, error) {
	var doc discountDoc
	err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if err != nil {
		return nil, wrapDBError(err, "Discount code not found")
	}
	return fromDiscountDoc(&doc), nil
}

func (r *discountRepository) List(ctx context.Context) ([]*domainDiscount.Discount, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, wrapDBError(err, "Failed to list discounts")
	}
	defer cursor.Close(ctx)

	var docs []*discountDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapDBError(err, "Failed to decode discounts")
	}

	discounts := make([]*domainDiscount.Discount, 0, len(docs))
	for _, doc := range docs {
		discounts = append(discounts, fromDiscountDoc(doc))
	}
	return discounts, nil
}

func (r *discountRepository) Update(ctx context.Context, d *domainDiscount.Discount) error {
	doc := toDiscountDoc(d)
	update := bson.M{"$set": bson.M{
		"title":       doc.Title,
		"code":        doc.Code,
		"type":        doc.Type,
		"value":       doc.Value,
		"description": doc.Description,
		"is_active":   doc.IsActive,
		"updated_at":  doc.UpdatedAt,
		"updated_by":  doc.UpdatedBy,
	}}
	// Counters are deliberately excluded; they move only through
	// IncrementUsage.
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": d.ID}, update)
	if err != nil {
		return wrapDBError(err, "Failed to update discount")
	}
	if res.MatchedCount == 0 {
		return ierr.NewError("discount not found").
			WithHintf("Discount with ID %s was not found", d.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *discountRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapDBError(err, "Failed to delete discount")
	}
	if res.DeletedCount == 0 {
		return ierr.NewError("discount not found").
			WithHintf("Discount with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *discountRepository) IncrementUsage(ctx context.Context, id string, revenueDelta decimal.Decimal) error {
	update := bson.M{"$inc": bson.M{
		"usage_count":       int64(1),
		"revenue_generated": toAmount(revenueDelta),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return wrapDBError(err, "Failed to record discount usage")
	}
	if res.MatchedCount == 0 {
		return ierr.NewError("discount not found").
			WithHintf("Discount with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
