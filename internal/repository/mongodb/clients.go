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

type clientsRepo struct {
	coll *mongo.Collection
}

func (r *clientsRepo) Insert(ctx context.Context, client *models.Client) error {
	if client.ID.IsZero() {
		client.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, client); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return faults.DuplicateKey("nationalId", client.NationalID)
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *clientsRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Client, error) {
	var client models.Client
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&client)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, faults.NotFound("client")
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &client, nil
}

func (r *clientsRepo) GetByNationalID(ctx context.Context, nationalID string) (*models.Client, error) {
	var client models.Client
	err := r.coll.FindOne(ctx, bson.M{"nationalId": nationalID}).Decode(&client)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, faults.NotFound("client")
	}
	if err != nil {
		return nil, fmt.Errorf("get client by national id: %w", err)
	}
	return &client, nil
}

func (r *clientsRepo) List(ctx context.Context) ([]models.Client, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	var clients []models.Client
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	return clients, nil
}

func (r *clientsRepo) Update(ctx context.Context, client *models.Client) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": client.ID}, client)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return faults.DuplicateKey("nationalId", client.NationalID)
		}
		return fmt.Errorf("update client: %w", err)
	}
	if res.MatchedCount == 0 {
		return faults.NotFound("client")
	}
	return nil
}

func (r *clientsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return faults.NotFound("client")
	}
	return nil
}
