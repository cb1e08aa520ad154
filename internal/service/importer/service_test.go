package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagranja/livestock/internal/domain/faults"
	"github.com/lagranja/livestock/internal/repository/memory"
	"github.com/lagranja/livestock/internal/service/registry"
)

func newImporter(store *memory.Store) *Service {
	clients := registry.NewClientService(store, nil)
	feedTypes := registry.NewFeedTypeService(store, nil)
	animals := registry.NewAnimalService(store, nil)
	return NewService(store, clients, feedTypes, animals, nil)
}

func TestImportClients(t *testing.T) {
	store := memory.NewStore()
	svc := newImporter(store)

	file := strings.Join([]string{
		"nationalId,givenNames,surname,address,phone",
		"1001,Maria Elena,Gomez,Vereda El Carmen,3001234567",
		"1002,Pedro,Diaz,,12345",
		"1003,Luisa,Marin,Finca La Loma,3109876543",
	}, "\n")

	result, err := svc.Import(context.Background(), "clients", strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "row 3: phone must be exactly 10 digits", result.Errors[0])

	clients, err := store.Clients().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestImportAnimalsResolvesOwnerByNationalID(t *testing.T) {
	store := memory.NewStore()
	svc := newImporter(store)
	ctx := context.Background()

	clientsSvc := registry.NewClientService(store, nil)
	owner, err := clientsSvc.Create(ctx, registry.ClientInput{
		NationalID: "1001", GivenNames: "Maria Elena", Surname: "Gomez", Phone: "3001234567",
	})
	require.NoError(t, err)

	file := strings.Join([]string{
		"tag,breed,ageMonths,weightKg,clientNationalId",
		"P-001,1,4,60.5,1001",
		"P-002,2,6,80,",
		"P-003,3,6,eighty,",
		"P-004,1,2,30,9999",
	}, "\n")

	result, err := svc.Import(ctx, "animals", strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "row 4:")
	assert.Contains(t, result.Errors[0], "weightKg must be a number")
	assert.Contains(t, result.Errors[1], "row 5:")
	assert.Contains(t, result.Errors[1], `no client with national id "9999"`)

	animals, err := store.Animals().List(ctx)
	require.NoError(t, err)
	require.Len(t, animals, 2)
	for _, animal := range animals {
		if animal.Tag == "P-001" {
			require.NotNil(t, animal.ClientID)
			assert.Equal(t, owner.ID, *animal.ClientID)
		}
		if animal.Tag == "P-002" {
			assert.Nil(t, animal.ClientID)
		}
	}
}

func TestImportFeedTypes(t *testing.T) {
	store := memory.NewStore()
	svc := newImporter(store)

	file := strings.Join([]string{
		"externalCode,name,description,stockPounds",
		"F-1,Starter,starter mix,500",
		"F-2,Grower,,not-a-number",
	}, "\n")

	result, err := svc.Import(context.Background(), "feedtypes", strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)

	feedTypes, err := store.FeedTypes().List(context.Background())
	require.NoError(t, err)
	require.Len(t, feedTypes, 1)
	assert.Equal(t, 500.0, feedTypes[0].StockPounds)
}

func TestImportRejectsBadInputs(t *testing.T) {
	svc := newImporter(memory.NewStore())
	ctx := context.Background()

	_, err := svc.Import(ctx, "tractors", strings.NewReader("a,b\n1,2"))
	require.True(t, faults.IsKind(err, faults.KindInvalidInput))

	_, err = svc.Import(ctx, "clients", strings.NewReader("nationalId,phone"))
	f := faults.As(err)
	require.NotNil(t, f)
	assert.Equal(t, "the CSV file is empty", f.Message)
}
