package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lagranja/livestock/internal/domain/faults"
	"github.com/lagranja/livestock/internal/domain/models"
)

func TestAdjustStockConditional(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	ft := &models.FeedType{ExternalCode: "F-1", Name: "Starter", StockPounds: 50}
	require.NoError(t, store.FeedTypes().Insert(ctx, ft))

	require.NoError(t, store.FeedTypes().AdjustStock(ctx, ft.ID, -50))

	err := store.FeedTypes().AdjustStock(ctx, ft.ID, -0.01)
	assert.True(t, faults.IsKind(err, faults.KindInsufficientStock))

	err = store.FeedTypes().AdjustStock(ctx, primitive.NewObjectID(), 10)
	assert.True(t, faults.IsKind(err, faults.KindNotFound))

	got, err := store.FeedTypes().Get(ctx, ft.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.StockPounds)
}

func TestUpdateEventPreservesTimestamp(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	animal := &models.Animal{Tag: "P-001", Breed: models.BreedYork}
	require.NoError(t, store.Animals().Insert(ctx, animal))

	recordedAt := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	event := models.FeedingEvent{ID: primitive.NewObjectID(), FeedTypeID: primitive.NewObjectID(), DosePounds: 10, Timestamp: recordedAt}
	require.NoError(t, store.Animals().AppendEvent(ctx, animal.ID, event))

	event.DosePounds = 25
	event.Timestamp = time.Now()
	require.NoError(t, store.Animals().UpdateEvent(ctx, animal.ID, event))

	got, err := store.Animals().Get(ctx, animal.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, got.FeedingHistory[0].DosePounds)
	assert.Equal(t, recordedAt, got.FeedingHistory[0].Timestamp)
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	animal := &models.Animal{Tag: "P-001", Breed: models.BreedYork}
	require.NoError(t, store.Animals().Insert(ctx, animal))
	event := models.FeedingEvent{ID: primitive.NewObjectID(), FeedTypeID: primitive.NewObjectID(), DosePounds: 10}
	require.NoError(t, store.Animals().AppendEvent(ctx, animal.ID, event))

	first, err := store.Animals().Get(ctx, animal.ID)
	require.NoError(t, err)
	first.FeedingHistory[0].DosePounds = 999
	first.Tag = "mutated"

	second, err := store.Animals().Get(ctx, animal.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, second.FeedingHistory[0].DosePounds)
	assert.Equal(t, "P-001", second.Tag)
}
