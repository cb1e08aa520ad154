// Package mongodb implements the repository interfaces on the official
// MongoDB driver.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lagranja/livestock/internal/repository"
)

const (
	clientsColl     = "clients"
	feedTypesColl   = "feed_types"
	animalsColl     = "animals"
	adjustmentsColl = "stock_adjustments"
)

// Store implements repository.Store backed by one MongoDB database.
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	clients   *clientsRepo
	feedTypes *feedTypesRepo
	animals   *animalsRepo
}

// NewStore connects to MongoDB, verifies the connection and ensures the
// unique indexes the registries rely on.
func NewStore(ctx context.Context, uri string, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:    client,
		db:        db,
		clients:   &clientsRepo{coll: db.Collection(clientsColl)},
		feedTypes: &feedTypesRepo{coll: db.Collection(feedTypesColl), adjustments: db.Collection(adjustmentsColl)},
		animals:   &animalsRepo{coll: db.Collection(animalsColl)},
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := map[string]string{
		clientsColl:   "nationalId",
		feedTypesColl: "externalCode",
		animalsColl:   "tag",
	}

	for coll, field := range unique {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := s.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("index %s.%s: %w", coll, field, err)
		}
	}
	return nil
}

// Clients returns the client repository.
func (s *Store) Clients() repository.Clients { return s.clients }

// FeedTypes returns the feed-catalog repository.
func (s *Store) FeedTypes() repository.FeedTypes { return s.feedTypes }

// Animals returns the animal repository.
func (s *Store) Animals() repository.Animals { return s.animals }

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
