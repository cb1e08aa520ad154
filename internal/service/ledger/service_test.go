package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lagranja/livestock/internal/domain/faults"
	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository/memory"
	"github.com/lagranja/livestock/internal/service/registry"
)

type fixture struct {
	ctx       context.Context
	store     *memory.Store
	ledger    *Service
	feedTypes *registry.FeedTypeService
	animals   *registry.AnimalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		ctx:       context.Background(),
		store:     store,
		ledger:    NewService(store, nil),
		feedTypes: registry.NewFeedTypeService(store, nil),
		animals:   registry.NewAnimalService(store, nil),
	}
}

func (f *fixture) feedType(t *testing.T, code, name string, stock float64) *models.FeedType {
	t.Helper()
	ft, err := f.feedTypes.Create(f.ctx, registry.FeedTypeInput{
		ExternalCode: code,
		Name:         name,
		Description:  name + " mix",
		StockPounds:  stock,
	})
	require.NoError(t, err)
	return ft
}

func (f *fixture) animal(t *testing.T, tag string) *models.AnimalView {
	t.Helper()
	animal, err := f.animals.Create(f.ctx, registry.AnimalInput{
		Tag:       tag,
		Breed:     models.BreedYork,
		AgeMonths: 6,
		WeightKg:  80,
	})
	require.NoError(t, err)
	return animal
}

func (f *fixture) stock(t *testing.T, id primitive.ObjectID) float64 {
	t.Helper()
	ft, err := f.store.FeedTypes().Get(f.ctx, id)
	require.NoError(t, err)
	return ft.StockPounds
}

func TestRecordFeedingLifecycle(t *testing.T) {
	f := newFixture(t)
	ft := f.feedType(t, "F-1", "Starter", 500)
	animal := f.animal(t, "P-001")

	view, err := f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), ft.ID.Hex(), 50)
	require.NoError(t, err)
	assert.Equal(t, 450.0, f.stock(t, ft.ID))
	require.Len(t, view.FeedingHistory, 1)
	assert.Equal(t, "Starter", view.FeedingHistory[0].NameSnapshot)
	assert.Equal(t, "Starter mix", view.FeedingHistory[0].DescriptionSnapshot)
	assert.False(t, view.FeedingHistory[0].Timestamp.IsZero())

	_, err = f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), ft.ID.Hex(), 20)
	require.NoError(t, err)
	assert.Equal(t, 430.0, f.stock(t, ft.ID))

	// Oversized dose is rejected atomically: no event, no debit.
	_, err = f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), ft.ID.Hex(), 500)
	require.True(t, faults.IsKind(err, faults.KindInsufficientStock))
	assert.Equal(t, 430.0, f.stock(t, ft.ID))

	got, err := f.store.Animals().Get(f.ctx, animal.ID)
	require.NoError(t, err)
	require.Len(t, got.FeedingHistory, 2)

	// Removing the first event returns its full dose.
	view, err = f.ledger.RemoveFeedingEvent(f.ctx, animal.ID.Hex(), got.FeedingHistory[0].ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 480.0, f.stock(t, ft.ID))
	assert.Len(t, view.FeedingHistory, 1)
}

func TestRecordFeedingValidation(t *testing.T) {
	f := newFixture(t)
	ft := f.feedType(t, "F-1", "Starter", 100)
	animal := f.animal(t, "P-001")

	_, err := f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), ft.ID.Hex(), 0)
	require.True(t, faults.IsKind(err, faults.KindInvalidInput))

	_, err = f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), ft.ID.Hex(), -5)
	require.True(t, faults.IsKind(err, faults.KindInvalidInput))

	_, err = f.ledger.RecordFeeding(f.ctx, primitive.NewObjectID().Hex(), ft.ID.Hex(), 10)
	require.True(t, faults.IsKind(err, faults.KindNotFound))

	_, err = f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), "not-a-hex-id", 10)
	require.True(t, faults.IsKind(err, faults.KindNotFound))

	assert.Equal(t, 100.0, f.stock(t, ft.ID))
}

func TestCorrectDoseConservesTotal(t *testing.T) {
	f := newFixture(t)
	ft := f.feedType(t, "F-1", "Starter", 500)
	animal := f.animal(t, "P-001")

	view, err := f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), ft.ID.Hex(), 50)
	require.NoError(t, err)
	eventID := view.FeedingHistory[0].ID.Hex()
	recordedAt := view.FeedingHistory[0].Timestamp

	up := 80.0
	view, err = f.ledger.CorrectFeedingEvent(f.ctx, animal.ID.Hex(), eventID, Correction{DosePounds: &up})
	require.NoError(t, err)
	assert.Equal(t, 420.0, f.stock(t, ft.ID))
	assert.Equal(t, 80.0, view.FeedingHistory[0].DosePounds)
	assert.Equal(t, recordedAt, view.FeedingHistory[0].Timestamp)

	down := 30.0
	view, err = f.ledger.CorrectFeedingEvent(f.ctx, animal.ID.Hex(), eventID, Correction{DosePounds: &down})
	require.NoError(t, err)
	assert.Equal(t, 470.0, f.stock(t, ft.ID))

	// stock + recorded dose always equals the original balance
	assert.Equal(t, 500.0, f.stock(t, ft.ID)+view.FeedingHistory[0].DosePounds)
}

func TestCorrectDoseInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ft := f.feedType(t, "F-1", "Starter", 60)
	animal := f.animal(t, "P-001")

	view, err := f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), ft.ID.Hex(), 50)
	require.NoError(t, err)
	eventID := view.FeedingHistory[0].ID.Hex()

	huge := 200.0
	_, err = f.ledger.CorrectFeedingEvent(f.ctx, animal.ID.Hex(), eventID, Correction{DosePounds: &huge})
	require.True(t, faults.IsKind(err, faults.KindInsufficientStock))

	assert.Equal(t, 10.0, f.stock(t, ft.ID))
	got, err := f.store.Animals().Get(f.ctx, animal.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.FeedingHistory[0].DosePounds)
}

func TestCorrectSwitchFeedType(t *testing.T) {
	f := newFixture(t)
	oldFt := f.feedType(t, "F-1", "Starter", 100)
	newFt := f.feedType(t, "F-2", "Grower", 100)
	animal := f.animal(t, "P-001")

	view, err := f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), oldFt.ID.Hex(), 40)
	require.NoError(t, err)
	eventID := view.FeedingHistory[0].ID.Hex()

	newID := newFt.ID.Hex()
	dose := 70.0
	view, err = f.ledger.CorrectFeedingEvent(f.ctx, animal.ID.Hex(), eventID, Correction{FeedTypeID: &newID, DosePounds: &dose})
	require.NoError(t, err)

	assert.Equal(t, 100.0, f.stock(t, oldFt.ID))
	assert.Equal(t, 30.0, f.stock(t, newFt.ID))

	event := view.FeedingHistory[0]
	assert.Equal(t, newFt.ID, event.FeedTypeID)
	assert.Equal(t, 70.0, event.DosePounds)
	assert.Equal(t, "Grower", event.NameSnapshot)
	assert.Equal(t, "Grower mix", event.DescriptionSnapshot)
}

func TestCorrectSwitchReversedWhenNewFeedShort(t *testing.T) {
	f := newFixture(t)
	oldFt := f.feedType(t, "F-1", "Starter", 100)
	newFt := f.feedType(t, "F-2", "Grower", 10)
	animal := f.animal(t, "P-001")

	view, err := f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), oldFt.ID.Hex(), 40)
	require.NoError(t, err)
	eventID := view.FeedingHistory[0].ID.Hex()

	newID := newFt.ID.Hex()
	dose := 70.0
	_, err = f.ledger.CorrectFeedingEvent(f.ctx, animal.ID.Hex(), eventID, Correction{FeedTypeID: &newID, DosePounds: &dose})
	require.True(t, faults.IsKind(err, faults.KindInsufficientStock))
	assert.Contains(t, err.Error(), "insufficient stock for new feed type")

	// Phase one was reversed: both balances and the event are untouched.
	assert.Equal(t, 60.0, f.stock(t, oldFt.ID))
	assert.Equal(t, 10.0, f.stock(t, newFt.ID))

	got, err := f.store.Animals().Get(f.ctx, animal.ID)
	require.NoError(t, err)
	assert.Equal(t, oldFt.ID, got.FeedingHistory[0].FeedTypeID)
	assert.Equal(t, 40.0, got.FeedingHistory[0].DosePounds)
}

func TestCorrectDanglingEventIsReadOnly(t *testing.T) {
	f := newFixture(t)
	ft := f.feedType(t, "F-1", "Starter", 100)
	animal := f.animal(t, "P-001")

	view, err := f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), ft.ID.Hex(), 40)
	require.NoError(t, err)
	eventID := view.FeedingHistory[0].ID.Hex()

	require.NoError(t, f.store.FeedTypes().Delete(f.ctx, ft.ID))

	dose := 10.0
	_, err = f.ledger.CorrectFeedingEvent(f.ctx, animal.ID.Hex(), eventID, Correction{DosePounds: &dose})
	require.True(t, faults.IsKind(err, faults.KindReadOnlyRecord))
}

func TestRemoveDanglingEventSkipsStockReturn(t *testing.T) {
	f := newFixture(t)
	ft := f.feedType(t, "F-1", "Starter", 100)
	other := f.feedType(t, "F-2", "Grower", 100)
	animal := f.animal(t, "P-001")

	view, err := f.ledger.RecordFeeding(f.ctx, animal.ID.Hex(), ft.ID.Hex(), 40)
	require.NoError(t, err)
	eventID := view.FeedingHistory[0].ID.Hex()

	require.NoError(t, f.store.FeedTypes().Delete(f.ctx, ft.ID))

	view, err = f.ledger.RemoveFeedingEvent(f.ctx, animal.ID.Hex(), eventID)
	require.NoError(t, err)
	assert.Empty(t, view.FeedingHistory)
	assert.Equal(t, 100.0, f.stock(t, other.ID))
}

func TestCorrectUnknownEvent(t *testing.T) {
	f := newFixture(t)
	f.feedType(t, "F-1", "Starter", 100)
	animal := f.animal(t, "P-001")

	dose := 10.0
	_, err := f.ledger.CorrectFeedingEvent(f.ctx, animal.ID.Hex(), primitive.NewObjectID().Hex(), Correction{DosePounds: &dose})
	require.True(t, faults.IsKind(err, faults.KindNotFound))
}
