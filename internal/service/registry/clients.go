package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository"
)

// ClientInput carries the fields accepted when creating or updating a client.
type ClientInput struct {
	NationalID string `json:"nationalId" validate:"required"`
	GivenNames string `json:"givenNames" validate:"required,min=3"`
	Surname    string `json:"surname" validate:"required,min=3"`
	Address    string `json:"address"`
	Phone      string `json:"phone" validate:"required,len=10,number"`
}

// ClientService manages the client registry.
type ClientService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewClientService wires a client registry instance.
func NewClientService(store repository.Store, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{store: store, logger: logger}
}

// Create registers a new client.
func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	client := &models.Client{
		NationalID: in.NationalID,
		GivenNames: in.GivenNames,
		Surname:    in.Surname,
		Address:    in.Address,
		Phone:      in.Phone,
	}
	if err := s.store.Clients().Insert(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("client created", zap.String("client_id", client.ID.Hex()))
	return client, nil
}

// Get fetches one client by id.
func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	oid, err := parseID(id, "client")
	if err != nil {
		return nil, err
	}
	return s.store.Clients().Get(ctx, oid)
}

// List returns every registered client.
func (s *ClientService) List(ctx context.Context) ([]models.Client, error) {
	return s.store.Clients().List(ctx)
}

// Update overwrites a client's fields.
func (s *ClientService) Update(ctx context.Context, id string, in ClientInput) (*models.Client, error) {
	oid, err := parseID(id, "client")
	if err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}

	client := &models.Client{
		ID:         oid,
		NationalID: in.NationalID,
		GivenNames: in.GivenNames,
		Surname:    in.Surname,
		Address:    in.Address,
		Phone:      in.Phone,
	}
	if err := s.store.Clients().Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Delete removes a client and cascade-deletes every animal it owns. No
// orphaned animal may survive the client. Returns the cascade count.
func (s *ClientService) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := parseID(id, "client")
	if err != nil {
		return 0, err
	}
	if _, err := s.store.Clients().Get(ctx, oid); err != nil {
		return 0, err
	}

	removed, err := s.store.Animals().DeleteByClient(ctx, oid)
	if err != nil {
		return 0, err
	}
	if err := s.store.Clients().Delete(ctx, oid); err != nil {
		return removed, err
	}

	s.logger.Info("client deleted with cascade",
		zap.String("client_id", id),
		zap.Int64("animals_removed", removed))
	return removed, nil
}
