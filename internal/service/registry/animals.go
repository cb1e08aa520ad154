package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository"
)

// AnimalInput carries the fields accepted when creating or updating an
// animal. ClientID is optional; an empty string leaves the animal unowned.
type AnimalInput struct {
	Tag       string  `json:"tag" validate:"required"`
	Breed     int     `json:"breed" validate:"min=1,max=3"`
	AgeMonths int     `json:"ageMonths" validate:"gte=0"`
	WeightKg  float64 `json:"weightKg" validate:"gte=0"`
	ClientID  string  `json:"clientId"`
}

// AnimalService manages the animal registry. The feeding history embedded in
// each animal is owned by the ledger and never mutated here.
type AnimalService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewAnimalService wires an animal registry instance.
func NewAnimalService(store repository.Store, logger *zap.Logger) *AnimalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnimalService{store: store, logger: logger}
}

// Create registers a new animal with an empty feeding history.
func (s *AnimalService) Create(ctx context.Context, in AnimalInput) (*models.AnimalView, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	animal := &models.Animal{
		Tag:            in.Tag,
		Breed:          in.Breed,
		AgeMonths:      in.AgeMonths,
		WeightKg:       in.WeightKg,
		FeedingHistory: []models.FeedingEvent{},
	}
	if in.ClientID != "" {
		cid, err := parseID(in.ClientID, "client")
		if err != nil {
			return nil, err
		}
		if _, err := s.store.Clients().Get(ctx, cid); err != nil {
			return nil, err
		}
		animal.ClientID = &cid
	}

	if err := s.store.Animals().Insert(ctx, animal); err != nil {
		return nil, err
	}

	s.logger.Info("animal created",
		zap.String("animal_id", animal.ID.Hex()),
		zap.String("tag", animal.Tag))
	return ResolveAnimal(ctx, s.store, animal)
}

// Get fetches one animal with resolved references.
func (s *AnimalService) Get(ctx context.Context, id string) (*models.AnimalView, error) {
	oid, err := parseID(id, "animal")
	if err != nil {
		return nil, err
	}
	animal, err := s.store.Animals().Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	return ResolveAnimal(ctx, s.store, animal)
}

// List returns every animal with resolved references.
func (s *AnimalService) List(ctx context.Context) ([]*models.AnimalView, error) {
	animals, err := s.store.Animals().List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*models.AnimalView, 0, len(animals))
	for i := range animals {
		view, err := ResolveAnimal(ctx, s.store, &animals[i])
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Update overwrites an animal's registry fields, leaving its feeding history
// to the ledger.
func (s *AnimalService) Update(ctx context.Context, id string, in AnimalInput) (*models.AnimalView, error) {
	oid, err := parseID(id, "animal")
	if err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if _, err := s.store.Animals().Get(ctx, oid); err != nil {
		return nil, err
	}

	animal := &models.Animal{
		ID:        oid,
		Tag:       in.Tag,
		Breed:     in.Breed,
		AgeMonths: in.AgeMonths,
		WeightKg:  in.WeightKg,
	}
	if in.ClientID != "" {
		cid, err := parseID(in.ClientID, "client")
		if err != nil {
			return nil, err
		}
		if _, err := s.store.Clients().Get(ctx, cid); err != nil {
			return nil, err
		}
		animal.ClientID = &cid
	}

	if err := s.store.Animals().Update(ctx, animal); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an animal. Its feeding history disappears with it; stock is
// not returned, matching the paper process where a sold or dead animal's
// past consumption stays consumed.
func (s *AnimalService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "animal")
	if err != nil {
		return err
	}
	if err := s.store.Animals().Delete(ctx, oid); err != nil {
		return err
	}
	s.logger.Info("animal deleted", zap.String("animal_id", id))
	return nil
}
