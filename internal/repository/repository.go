// Package repository declares the storage interfaces consumed by the
// services. Two implementations exist: mongodb for production and memory for
// tests and local runs without a database.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lagranja/livestock/internal/domain/models"
)

// Clients stores customer records. Insert and Update fail with a DuplicateKey
// fault when nationalId collides; Get fails with NotFound.
type Clients interface {
	Insert(ctx context.Context, client *models.Client) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Client, error)
	GetByNationalID(ctx context.Context, nationalID string) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// FeedTypes stores catalog entries and their stock balances.
type FeedTypes interface {
	Insert(ctx context.Context, ft *models.FeedType) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.FeedType, error)
	List(ctx context.Context) ([]models.FeedType, error)

	// Update writes the identity fields (externalCode, name, description)
	// only. The balance and its baseline are never replaced wholesale, so a
	// ledger write landing between a read and this update survives; all
	// stock movement goes through the delta operations below.
	Update(ctx context.Context, ft *models.FeedType) error

	Delete(ctx context.Context, id primitive.ObjectID) error

	// AdjustStock applies delta to stockPounds as one conditional update:
	// the write only matches when the resulting balance stays non-negative.
	// It fails with NotFound when the feed type is missing and with
	// InsufficientStock when the condition is unmet at apply time.
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta float64) error

	// ApplyManualAdjustment shifts stockPounds and ledgerBaseline together
	// by delta in one conditional update (balance must stay non-negative).
	// This is the restocking escape hatch; ledger writes use AdjustStock.
	ApplyManualAdjustment(ctx context.Context, id primitive.ObjectID, delta float64) error

	// RecordAdjustment persists the audit row for a manual stock edit.
	RecordAdjustment(ctx context.Context, adj *models.StockAdjustment) error
}

// Animals stores animal records and their embedded feeding history.
type Animals interface {
	Insert(ctx context.Context, animal *models.Animal) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Animal, error)
	List(ctx context.Context) ([]models.Animal, error)
	Update(ctx context.Context, animal *models.Animal) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// DeleteByClient removes every animal owned by the client and reports
	// how many were deleted. Used by the client-deletion cascade.
	DeleteByClient(ctx context.Context, clientID primitive.ObjectID) (int64, error)

	AppendEvent(ctx context.Context, animalID primitive.ObjectID, event models.FeedingEvent) error
	UpdateEvent(ctx context.Context, animalID primitive.ObjectID, event models.FeedingEvent) error
	RemoveEvent(ctx context.Context, animalID, eventID primitive.ObjectID) error
}

// Store bundles the three repositories behind one handle.
type Store interface {
	Clients() Clients
	FeedTypes() FeedTypes
	Animals() Animals
}
