// Package memory is a mutex-guarded in-memory implementation of the
// repository interfaces. It backs the service tests and local runs started
// with MONGODB_URI=memory, and mirrors the mongodb implementation's
// semantics: unique-field enforcement, conditional stock adjustment and
// NotFound/DuplicateKey faults.
package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lagranja/livestock/internal/domain/faults"
	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository"
)

// Store implements repository.Store with in-process maps.
type Store struct {
	mu          sync.Mutex
	clients     map[primitive.ObjectID]models.Client
	feedTypes   map[primitive.ObjectID]models.FeedType
	animals     map[primitive.ObjectID]models.Animal
	adjustments []models.StockAdjustment
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		clients:   make(map[primitive.ObjectID]models.Client),
		feedTypes: make(map[primitive.ObjectID]models.FeedType),
		animals:   make(map[primitive.ObjectID]models.Animal),
	}
}

// Clients returns the client repository.
func (s *Store) Clients() repository.Clients { return (*clientsRepo)(s) }

// FeedTypes returns the feed-catalog repository.
func (s *Store) FeedTypes() repository.FeedTypes { return (*feedTypesRepo)(s) }

// Animals returns the animal repository.
func (s *Store) Animals() repository.Animals { return (*animalsRepo)(s) }

// Adjustments returns a copy of the recorded manual stock adjustments.
func (s *Store) Adjustments() []models.StockAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StockAdjustment, len(s.adjustments))
	copy(out, s.adjustments)
	return out
}

type clientsRepo Store

func (r *clientsRepo) Insert(_ context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.clients {
		if existing.NationalID == client.NationalID {
			return faults.DuplicateKey("nationalId", client.NationalID)
		}
	}
	if client.ID.IsZero() {
		client.ID = primitive.NewObjectID()
	}
	r.clients[client.ID] = *client
	return nil
}

func (r *clientsRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[id]
	if !ok {
		return nil, faults.NotFound("client")
	}
	return &client, nil
}

func (r *clientsRepo) GetByNationalID(_ context.Context, nationalID string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, client := range r.clients {
		if client.NationalID == nationalID {
			c := client
			return &c, nil
		}
	}
	return nil, faults.NotFound("client")
}

func (r *clientsRepo) List(_ context.Context) ([]models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Client, 0, len(r.clients))
	for _, client := range r.clients {
		out = append(out, client)
	}
	return out, nil
}

func (r *clientsRepo) Update(_ context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ID]; !ok {
		return faults.NotFound("client")
	}
	for id, existing := range r.clients {
		if id != client.ID && existing.NationalID == client.NationalID {
			return faults.DuplicateKey("nationalId", client.NationalID)
		}
	}
	r.clients[client.ID] = *client
	return nil
}

func (r *clientsRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[id]; !ok {
		return faults.NotFound("client")
	}
	delete(r.clients, id)
	return nil
}

type feedTypesRepo Store

func (r *feedTypesRepo) Insert(_ context.Context, ft *models.FeedType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.feedTypes {
		if existing.ExternalCode == ft.ExternalCode {
			return faults.DuplicateKey("externalCode", ft.ExternalCode)
		}
	}
	if ft.ID.IsZero() {
		ft.ID = primitive.NewObjectID()
	}
	r.feedTypes[ft.ID] = *ft
	return nil
}

func (r *feedTypesRepo) Get(_ context.Context, id primitive.ObjectID) (*models.FeedType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ft, ok := r.feedTypes[id]
	if !ok {
		return nil, faults.NotFound("feed type")
	}
	return &ft, nil
}

func (r *feedTypesRepo) List(_ context.Context) ([]models.FeedType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.FeedType, 0, len(r.feedTypes))
	for _, ft := range r.feedTypes {
		out = append(out, ft)
	}
	return out, nil
}

func (r *feedTypesRepo) Update(_ context.Context, ft *models.FeedType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.feedTypes[ft.ID]
	if !ok {
		return faults.NotFound("feed type")
	}
	for id, other := range r.feedTypes {
		if id != ft.ID && other.ExternalCode == ft.ExternalCode {
			return faults.DuplicateKey("externalCode", ft.ExternalCode)
		}
	}
	// Identity fields only; the balance belongs to the delta operations.
	existing.ExternalCode = ft.ExternalCode
	existing.Name = ft.Name
	existing.Description = ft.Description
	r.feedTypes[ft.ID] = existing
	return nil
}

func (r *feedTypesRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.feedTypes[id]; !ok {
		return faults.NotFound("feed type")
	}
	delete(r.feedTypes, id)
	return nil
}

func (r *feedTypesRepo) AdjustStock(_ context.Context, id primitive.ObjectID, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ft, ok := r.feedTypes[id]
	if !ok {
		return faults.NotFound("feed type")
	}
	if ft.StockPounds+delta < 0 {
		return faults.InsufficientStock("insufficient stock for requested dose")
	}
	ft.StockPounds += delta
	r.feedTypes[id] = ft
	return nil
}

func (r *feedTypesRepo) ApplyManualAdjustment(_ context.Context, id primitive.ObjectID, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ft, ok := r.feedTypes[id]
	if !ok {
		return faults.NotFound("feed type")
	}
	if ft.StockPounds+delta < 0 {
		return faults.InsufficientStock("write-off exceeds available stock")
	}
	ft.StockPounds += delta
	ft.LedgerBaseline += delta
	r.feedTypes[id] = ft
	return nil
}

func (r *feedTypesRepo) RecordAdjustment(_ context.Context, adj *models.StockAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if adj.ID.IsZero() {
		adj.ID = primitive.NewObjectID()
	}
	r.adjustments = append(r.adjustments, *adj)
	return nil
}

type animalsRepo Store

func (r *animalsRepo) Insert(_ context.Context, animal *models.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.animals {
		if existing.Tag == animal.Tag {
			return faults.DuplicateKey("tag", animal.Tag)
		}
	}
	if animal.ID.IsZero() {
		animal.ID = primitive.NewObjectID()
	}
	if animal.FeedingHistory == nil {
		animal.FeedingHistory = []models.FeedingEvent{}
	}
	r.animals[animal.ID] = cloneAnimal(*animal)
	return nil
}

func (r *animalsRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	animal, ok := r.animals[id]
	if !ok {
		return nil, faults.NotFound("animal")
	}
	clone := cloneAnimal(animal)
	return &clone, nil
}

func (r *animalsRepo) List(_ context.Context) ([]models.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Animal, 0, len(r.animals))
	for _, animal := range r.animals {
		out = append(out, cloneAnimal(animal))
	}
	return out, nil
}

func (r *animalsRepo) Update(_ context.Context, animal *models.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.animals[animal.ID]
	if !ok {
		return faults.NotFound("animal")
	}
	for id, other := range r.animals {
		if id != animal.ID && other.Tag == animal.Tag {
			return faults.DuplicateKey("tag", animal.Tag)
		}
	}
	existing.Tag = animal.Tag
	existing.Breed = animal.Breed
	existing.AgeMonths = animal.AgeMonths
	existing.WeightKg = animal.WeightKg
	existing.ClientID = animal.ClientID
	r.animals[animal.ID] = existing
	return nil
}

func (r *animalsRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.animals[id]; !ok {
		return faults.NotFound("animal")
	}
	delete(r.animals, id)
	return nil
}

func (r *animalsRepo) DeleteByClient(_ context.Context, clientID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, animal := range r.animals {
		if animal.ClientID != nil && *animal.ClientID == clientID {
			delete(r.animals, id)
			count++
		}
	}
	return count, nil
}

func (r *animalsRepo) AppendEvent(_ context.Context, animalID primitive.ObjectID, event models.FeedingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	animal, ok := r.animals[animalID]
	if !ok {
		return faults.NotFound("animal")
	}
	animal.FeedingHistory = append(animal.FeedingHistory, event)
	r.animals[animalID] = animal
	return nil
}

func (r *animalsRepo) UpdateEvent(_ context.Context, animalID primitive.ObjectID, event models.FeedingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	animal, ok := r.animals[animalID]
	if !ok {
		return faults.NotFound("animal")
	}
	idx := animal.EventByID(event.ID)
	if idx < 0 {
		return faults.NotFound("feeding event")
	}
	// Timestamp is preserved; corrections never rewrite history dates.
	event.Timestamp = animal.FeedingHistory[idx].Timestamp
	animal.FeedingHistory[idx] = event
	r.animals[animalID] = animal
	return nil
}

func (r *animalsRepo) RemoveEvent(_ context.Context, animalID, eventID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	animal, ok := r.animals[animalID]
	if !ok {
		return faults.NotFound("animal")
	}
	idx := animal.EventByID(eventID)
	if idx < 0 {
		return faults.NotFound("feeding event")
	}
	animal.FeedingHistory = append(animal.FeedingHistory[:idx], animal.FeedingHistory[idx+1:]...)
	r.animals[animalID] = animal
	return nil
}

func cloneAnimal(a models.Animal) models.Animal {
	history := make([]models.FeedingEvent, len(a.FeedingHistory))
	copy(history, a.FeedingHistory)
	a.FeedingHistory = history
	if a.ClientID != nil {
		id := *a.ClientID
		a.ClientID = &id
	}
	return a
}
