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

type animalsRepo struct {
	coll *mongo.Collection
}

func (r *animalsRepo) Insert(ctx context.Context, animal *models.Animal) error {
	if animal.ID.IsZero() {
		animal.ID = primitive.NewObjectID()
	}
	if animal.FeedingHistory == nil {
		animal.FeedingHistory = []models.FeedingEvent{}
	}
	if _, err := r.coll.InsertOne(ctx, animal); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return faults.DuplicateKey("tag", animal.Tag)
		}
		return fmt.Errorf("insert animal: %w", err)
	}
	return nil
}

func (r *animalsRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Animal, error) {
	var animal models.Animal
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&animal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, faults.NotFound("animal")
	}
	if err != nil {
		return nil, fmt.Errorf("get animal: %w", err)
	}
	return &animal, nil
}

func (r *animalsRepo) List(ctx context.Context) ([]models.Animal, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}
	var animals []models.Animal
	if err := cursor.All(ctx, &animals); err != nil {
		return nil, fmt.Errorf("decode animals: %w", err)
	}
	return animals, nil
}

// Update replaces the animal's registry fields. The feeding history is left
// untouched so registry updates can never race with ledger writes.
func (r *animalsRepo) Update(ctx context.Context, animal *models.Animal) error {
	update := bson.M{"$set": bson.M{
		"tag":       animal.Tag,
		"breed":     animal.Breed,
		"ageMonths": animal.AgeMonths,
		"weightKg":  animal.WeightKg,
		"clientId":  animal.ClientID,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": animal.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return faults.DuplicateKey("tag", animal.Tag)
		}
		return fmt.Errorf("update animal: %w", err)
	}
	if res.MatchedCount == 0 {
		return faults.NotFound("animal")
	}
	return nil
}

func (r *animalsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete animal: %w", err)
	}
	if res.DeletedCount == 0 {
		return faults.NotFound("animal")
	}
	return nil
}

func (r *animalsRepo) DeleteByClient(ctx context.Context, clientID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"clientId": clientID})
	if err != nil {
		return 0, fmt.Errorf("delete animals by client: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *animalsRepo) AppendEvent(ctx context.Context, animalID primitive.ObjectID, event models.FeedingEvent) error {
	update := bson.M{"$push": bson.M{"feedingHistory": event}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": animalID}, update)
	if err != nil {
		return fmt.Errorf("append feeding event: %w", err)
	}
	if res.MatchedCount == 0 {
		return faults.NotFound("animal")
	}
	return nil
}

func (r *animalsRepo) UpdateEvent(ctx context.Context, animalID primitive.ObjectID, event models.FeedingEvent) error {
	filter := bson.M{"_id": animalID, "feedingHistory._id": event.ID}
	update := bson.M{"$set": bson.M{
		"feedingHistory.$.feedTypeId":          event.FeedTypeID,
		"feedingHistory.$.nameSnapshot":        event.NameSnapshot,
		"feedingHistory.$.descriptionSnapshot": event.DescriptionSnapshot,
		"feedingHistory.$.dosePounds":          event.DosePounds,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update feeding event: %w", err)
	}
	if res.MatchedCount == 0 {
		return faults.NotFound("feeding event")
	}
	return nil
}

func (r *animalsRepo) RemoveEvent(ctx context.Context, animalID, eventID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"feedingHistory": bson.M{"_id": eventID}}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": animalID}, update)
	if err != nil {
		return fmt.Errorf("remove feeding event: %w", err)
	}
	if res.MatchedCount == 0 {
		return faults.NotFound("animal")
	}
	if res.ModifiedCount == 0 {
		return faults.NotFound("feeding event")
	}
	return nil
}
