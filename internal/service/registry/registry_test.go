package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lagranja/livestock/internal/domain/faults"
	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository"
	"github.com/lagranja/livestock/internal/repository/memory"
)

func validClient(nationalID string) ClientInput {
	return ClientInput{
		NationalID: nationalID,
		GivenNames: "Maria Elena",
		Surname:    "Gomez",
		Address:    "Vereda El Carmen",
		Phone:      "3001234567",
	}
}

func TestClientValidationMessages(t *testing.T) {
	svc := NewClientService(memory.NewStore(), nil)
	ctx := context.Background()

	in := validClient("1001")
	in.Phone = "12345"
	_, err := svc.Create(ctx, in)
	f := faults.As(err)
	require.NotNil(t, f)
	assert.Equal(t, faults.KindInvalidInput, f.Kind)
	assert.Equal(t, "phone", f.Field)
	assert.Equal(t, "phone must be exactly 10 digits", f.Message)

	// Ten characters is not enough; every character must be a digit.
	for _, phone := range []string{"-123456789", "+123456789", "123456.789", "30012345a7"} {
		in = validClient("1001")
		in.Phone = phone
		_, err = svc.Create(ctx, in)
		f = faults.As(err)
		require.NotNil(t, f, "phone %q must be rejected", phone)
		assert.Equal(t, "phone", f.Field)
	}

	in = validClient("1001")
	in.GivenNames = "Jo"
	_, err = svc.Create(ctx, in)
	f = faults.As(err)
	require.NotNil(t, f)
	assert.Equal(t, "givenNames", f.Field)
	assert.Equal(t, "given names must be at least 3 characters", f.Message)

	in = validClient("")
	_, err = svc.Create(ctx, in)
	f = faults.As(err)
	require.NotNil(t, f)
	assert.Equal(t, "nationalId", f.Field)
}

func TestClientDuplicateNationalID(t *testing.T) {
	svc := NewClientService(memory.NewStore(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, validClient("1001"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validClient("1001"))
	f := faults.As(err)
	require.NotNil(t, f)
	assert.Equal(t, faults.KindDuplicateKey, f.Kind)
	assert.Equal(t, "nationalId", f.Field)
}

func TestClientDeleteCascades(t *testing.T) {
	store := memory.NewStore()
	clients := NewClientService(store, nil)
	animals := NewAnimalService(store, nil)
	ctx := context.Background()

	owner, err := clients.Create(ctx, validClient("1001"))
	require.NoError(t, err)

	for _, tag := range []string{"P-001", "P-002"} {
		_, err := animals.Create(ctx, AnimalInput{
			Tag: tag, Breed: models.BreedHamp, AgeMonths: 4, WeightKg: 60,
			ClientID: owner.ID.Hex(),
		})
		require.NoError(t, err)
	}
	stray, err := animals.Create(ctx, AnimalInput{Tag: "P-003", Breed: models.BreedDuroc, AgeMonths: 8, WeightKg: 110})
	require.NoError(t, err)

	removed, err := clients.Delete(ctx, owner.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = clients.Get(ctx, owner.ID.Hex())
	assert.True(t, faults.IsKind(err, faults.KindNotFound))

	remaining, err := store.Animals().List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, stray.Tag, remaining[0].Tag)
}

func TestFeedTypeRestock(t *testing.T) {
	store := memory.NewStore()
	svc := NewFeedTypeService(store, nil)
	ctx := context.Background()

	ft, err := svc.Create(ctx, FeedTypeInput{ExternalCode: "F-1", Name: "Starter", StockPounds: 100})
	require.NoError(t, err)

	got, err := svc.Restock(ctx, ft.ID.Hex(), 50, "supplier delivery")
	require.NoError(t, err)
	assert.Equal(t, 150.0, got.StockPounds)
	assert.Equal(t, 150.0, got.LedgerBaseline)

	// A shrinkage write-off is a negative restock.
	got, err = svc.Restock(ctx, ft.ID.Hex(), -30, "spoiled bags")
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.StockPounds)

	adjustments := store.Adjustments()
	require.Len(t, adjustments, 2)
	assert.Equal(t, 50.0, adjustments[0].DeltaPounds)
	assert.Equal(t, "supplier delivery", adjustments[0].Reason)
	assert.Equal(t, -30.0, adjustments[1].DeltaPounds)

	_, err = svc.Restock(ctx, ft.ID.Hex(), -500, "bad count")
	require.True(t, faults.IsKind(err, faults.KindInvalidInput))

	_, err = svc.Restock(ctx, ft.ID.Hex(), 0, "")
	require.True(t, faults.IsKind(err, faults.KindInvalidInput))
}

func TestFeedTypeUpdateStockEditShiftsBaseline(t *testing.T) {
	store := memory.NewStore()
	svc := NewFeedTypeService(store, nil)
	ctx := context.Background()

	ft, err := svc.Create(ctx, FeedTypeInput{ExternalCode: "F-1", Name: "Starter", StockPounds: 100})
	require.NoError(t, err)

	newStock := 80.0
	got, err := svc.Update(ctx, ft.ID.Hex(), FeedTypeUpdate{StockPounds: &newStock})
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.StockPounds)
	assert.Equal(t, 80.0, got.LedgerBaseline)

	adjustments := store.Adjustments()
	require.Len(t, adjustments, 1)
	assert.Equal(t, -20.0, adjustments[0].DeltaPounds)

	negative := -1.0
	_, err = svc.Update(ctx, ft.ID.Hex(), FeedTypeUpdate{StockPounds: &negative})
	require.True(t, faults.IsKind(err, faults.KindInvalidInput))
}

func TestFeedTypeUpdatePartialFields(t *testing.T) {
	store := memory.NewStore()
	svc := NewFeedTypeService(store, nil)
	ctx := context.Background()

	ft, err := svc.Create(ctx, FeedTypeInput{ExternalCode: "F-1", Name: "Starter", Description: "initial", StockPounds: 100})
	require.NoError(t, err)

	name := "Starter Plus"
	got, err := svc.Update(ctx, ft.ID.Hex(), FeedTypeUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Starter Plus", got.Name)
	assert.Equal(t, "F-1", got.ExternalCode)
	assert.Equal(t, 100.0, got.StockPounds)
	assert.Empty(t, store.Adjustments())

	empty := ""
	_, err = svc.Update(ctx, ft.ID.Hex(), FeedTypeUpdate{Name: &empty})
	require.True(t, faults.IsKind(err, faults.KindInvalidInput))
}

// interceptStore wraps a store and fires a hook right before the feed-type
// identity update, standing in for a ledger write racing the catalog.
type interceptStore struct {
	repository.Store
	beforeFeedTypeUpdate func()
}

func (s *interceptStore) FeedTypes() repository.FeedTypes {
	return &interceptFeedTypes{FeedTypes: s.Store.FeedTypes(), before: s.beforeFeedTypeUpdate}
}

type interceptFeedTypes struct {
	repository.FeedTypes
	before func()
}

func (r *interceptFeedTypes) Update(ctx context.Context, ft *models.FeedType) error {
	if r.before != nil {
		r.before()
	}
	return r.FeedTypes.Update(ctx, ft)
}

func TestFeedTypeUpdateKeepsConcurrentLedgerWrite(t *testing.T) {
	store := memory.NewStore()
	wrapped := &interceptStore{Store: store}
	svc := NewFeedTypeService(wrapped, nil)
	ctx := context.Background()

	ft, err := svc.Create(ctx, FeedTypeInput{ExternalCode: "F-1", Name: "Starter", StockPounds: 100})
	require.NoError(t, err)

	// A feeding lands between the service's read and its catalog write.
	wrapped.beforeFeedTypeUpdate = func() {
		require.NoError(t, store.FeedTypes().AdjustStock(ctx, ft.ID, -30))
	}

	name := "Starter Plus"
	got, err := svc.Update(ctx, ft.ID.Hex(), FeedTypeUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Starter Plus", got.Name)
	assert.Equal(t, 70.0, got.StockPounds)
	assert.Equal(t, 100.0, got.LedgerBaseline)
}

func TestAnimalValidationAndOwnership(t *testing.T) {
	store := memory.NewStore()
	clients := NewClientService(store, nil)
	animals := NewAnimalService(store, nil)
	ctx := context.Background()

	_, err := animals.Create(ctx, AnimalInput{Tag: "P-001", Breed: 5, AgeMonths: 4, WeightKg: 60})
	f := faults.As(err)
	require.NotNil(t, f)
	assert.Equal(t, "breed", f.Field)
	assert.Equal(t, "breed must be 1 (York), 2 (Hamp) or 3 (Duroc)", f.Message)

	_, err = animals.Create(ctx, AnimalInput{
		Tag: "P-001", Breed: models.BreedYork, AgeMonths: 4, WeightKg: 60,
		ClientID: primitive.NewObjectID().Hex(),
	})
	require.True(t, faults.IsKind(err, faults.KindNotFound))

	owner, err := clients.Create(ctx, validClient("1001"))
	require.NoError(t, err)

	view, err := animals.Create(ctx, AnimalInput{
		Tag: "P-001", Breed: models.BreedYork, AgeMonths: 4, WeightKg: 60,
		ClientID: owner.ID.Hex(),
	})
	require.NoError(t, err)
	require.NotNil(t, view.Client)
	assert.Equal(t, "Maria Elena Gomez", view.Client.FullName())
	assert.Equal(t, "York", models.BreedName(view.Breed))

	_, err = animals.Create(ctx, AnimalInput{Tag: "P-001", Breed: models.BreedHamp, AgeMonths: 2, WeightKg: 30})
	require.True(t, faults.IsKind(err, faults.KindDuplicateKey))
}

func TestAnimalUpdateKeepsFeedingHistory(t *testing.T) {
	store := memory.NewStore()
	animals := NewAnimalService(store, nil)
	ctx := context.Background()

	view, err := animals.Create(ctx, AnimalInput{Tag: "P-001", Breed: models.BreedYork, AgeMonths: 4, WeightKg: 60})
	require.NoError(t, err)

	event := models.FeedingEvent{ID: primitive.NewObjectID(), FeedTypeID: primitive.NewObjectID(), DosePounds: 12}
	require.NoError(t, store.Animals().AppendEvent(ctx, view.ID, event))

	updated, err := animals.Update(ctx, view.ID.Hex(), AnimalInput{Tag: "P-001B", Breed: models.BreedDuroc, AgeMonths: 5, WeightKg: 72})
	require.NoError(t, err)
	assert.Equal(t, "P-001B", updated.Tag)
	require.Len(t, updated.FeedingHistory, 1)
	assert.Equal(t, 12.0, updated.FeedingHistory[0].DosePounds)
}
