package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lagranja/livestock/internal/domain/faults"
	"github.com/lagranja/livestock/internal/domain/models"
)

type feedTypesRepo struct {
	coll        *mongo.Collection
	adjustments *mongo.Collection
}

func (r *feedTypesRepo) Insert(ctx context.Context, ft *models.FeedType) error {
	if ft.ID.IsZero() {
		ft.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, ft); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return faults.DuplicateKey("externalCode", ft.ExternalCode)
		}
		return fmt.Errorf("insert feed type: %w", err)
	}
	return nil
}

func (r *feedTypesRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.FeedType, error) {
	var ft models.FeedType
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ft)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, faults.NotFound("feed type")
	}
	if err != nil {
		return nil, fmt.Errorf("get feed type: %w", err)
	}
	return &ft, nil
}

func (r *feedTypesRepo) List(ctx context.Context) ([]models.FeedType, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list feed types: %w", err)
	}
	var fts []models.FeedType
	if err := cursor.All(ctx, &fts); err != nil {
		return nil, fmt.Errorf("decode feed types: %w", err)
	}
	return fts, nil
}

// Update sets the identity fields only; stockPounds and ledgerBaseline are
// left to AdjustStock and ApplyManualAdjustment.
func (r *feedTypesRepo) Update(ctx context.Context, ft *models.FeedType) error {
	update := bson.M{"$set": bson.M{
		"externalCode": ft.ExternalCode,
		"name":         ft.Name,
		"description":  ft.Description,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": ft.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return faults.DuplicateKey("externalCode", ft.ExternalCode)
		}
		return fmt.Errorf("update feed type: %w", err)
	}
	if res.MatchedCount == 0 {
		return faults.NotFound("feed type")
	}
	return nil
}

func (r *feedTypesRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete feed type: %w", err)
	}
	if res.DeletedCount == 0 {
		return faults.NotFound("feed type")
	}
	return nil
}

// AdjustStock applies delta through a single conditional update so that two
// concurrent decrements can never drive the balance negative. The filter
// admits the document only when stockPounds >= -delta at apply time.
func (r *feedTypesRepo) AdjustStock(ctx context.Context, id primitive.ObjectID, delta float64) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["stockPounds"] = bson.M{"$gte": -delta}
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"stockPounds": delta}})
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Distinguish a missing document from an unmet stock condition.
	err = r.coll.FindOne(ctx, bson.M{"_id": id}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return faults.NotFound("feed type")
	}
	if err != nil {
		return fmt.Errorf("adjust stock lookup: %w", err)
	}
	return faults.InsufficientStock("insufficient stock for requested dose")
}

// ApplyManualAdjustment moves stockPounds and the ledger baseline together,
// so manual restocks shift the invariant's reference point instead of
// registering as drift.
func (r *feedTypesRepo) ApplyManualAdjustment(ctx context.Context, id primitive.ObjectID, delta float64) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["stockPounds"] = bson.M{"$gte": -delta}
	}

	update := bson.M{"$inc": bson.M{"stockPounds": delta, "ledgerBaseline": delta}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("apply manual adjustment: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	err = r.coll.FindOne(ctx, bson.M{"_id": id}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return faults.NotFound("feed type")
	}
	if err != nil {
		return fmt.Errorf("apply manual adjustment lookup: %w", err)
	}
	return faults.InsufficientStock("write-off exceeds available stock")
}

func (r *feedTypesRepo) RecordAdjustment(ctx context.Context, adj *models.StockAdjustment) error {
	if adj.ID.IsZero() {
		adj.ID = primitive.NewObjectID()
	}
	if _, err := r.adjustments.InsertOne(ctx, adj); err != nil {
		return fmt.Errorf("insert stock adjustment: %w", err)
	}
	return nil
}
