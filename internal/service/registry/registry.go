// Package registry implements the client, feed-catalog and animal
// registries: plain CRUD with field validation, unique-key surfacing and the
// client-deletion cascade. All balance-coupled mutations live in the ledger
// package, with one sanctioned exception: the catalog's explicit restock
// path, which shifts the ledger baseline and writes an audit row.
package registry

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lagranja/livestock/internal/domain/faults"
	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository"
)

var validate = validator.New()

// fieldMessages are the user-facing validation messages, keyed by struct
// field. They intentionally name the offending field rather than returning a
// generic failure.
var fieldMessages = map[string]string{
	"NationalID":   "national id is required",
	"GivenNames":   "given names must be at least 3 characters",
	"Surname":      "surname must be at least 3 characters",
	"Phone":        "phone must be exactly 10 digits",
	"ExternalCode": "external code is required",
	"Name":         "name is required",
	"StockPounds":  "stock must not be negative",
	"Tag":          "tag is required",
	"Breed":        "breed must be 1 (York), 2 (Hamp) or 3 (Duroc)",
	"AgeMonths":    "age must not be negative",
	"WeightKg":     "weight must not be negative",
}

var jsonFieldNames = map[string]string{
	"NationalID":   "nationalId",
	"GivenNames":   "givenNames",
	"Surname":      "surname",
	"Phone":        "phone",
	"ExternalCode": "externalCode",
	"Name":         "name",
	"StockPounds":  "stockPounds",
	"Tag":          "tag",
	"Breed":        "breed",
	"AgeMonths":    "ageMonths",
	"WeightKg":     "weightKg",
}

// checkInput runs validator tags over in and converts the first violation to
// a field-attributable InvalidInput fault.
func checkInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].StructField()
		msg, ok := fieldMessages[field]
		if !ok {
			msg = "invalid value"
		}
		name := jsonFieldNames[field]
		if name == "" {
			name = field
		}
		return faults.InvalidInput(name, msg)
	}
	return err
}

func parseID(id, entity string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, faults.NotFound(entity)
	}
	return oid, nil
}

// ResolveAnimal builds the API view of an animal: the owning client and
// every event's feed type are looked up, with nil standing in for dangling
// references. Snapshots on the events remain the fallback for display.
func ResolveAnimal(ctx context.Context, store repository.Store, animal *models.Animal) (*models.AnimalView, error) {
	view := &models.AnimalView{
		Animal:    *animal,
		FeedTypes: make(map[string]*models.FeedType),
	}

	if animal.ClientID != nil {
		client, err := store.Clients().Get(ctx, *animal.ClientID)
		if err != nil && !faults.IsKind(err, faults.KindNotFound) {
			return nil, err
		}
		view.Client = client
	}

	for _, event := range animal.FeedingHistory {
		key := event.FeedTypeID.Hex()
		if _, seen := view.FeedTypes[key]; seen {
			continue
		}
		ft, err := store.FeedTypes().Get(ctx, event.FeedTypeID)
		if err != nil {
			if faults.IsKind(err, faults.KindNotFound) {
				view.FeedTypes[key] = nil
				continue
			}
			return nil, err
		}
		view.FeedTypes[key] = ft
	}

	return view, nil
}
