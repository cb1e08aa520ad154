package registry

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/domain/faults"
	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository"
)

// FeedTypeInput carries the fields accepted when creating a catalog entry.
type FeedTypeInput struct {
	ExternalCode string  `json:"externalCode" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	StockPounds  float64 `json:"stockPounds" validate:"gte=0"`
}

// FeedTypeUpdate carries the optional fields of a catalog update. A non-nil
// StockPounds is a manual stock edit: it bypasses ledger accounting, shifts
// the ledger baseline by the same delta and is recorded as an adjustment.
type FeedTypeUpdate struct {
	ExternalCode *string  `json:"externalCode,omitempty"`
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	StockPounds  *float64 `json:"stockPounds,omitempty"`
}

// FeedTypeService manages the feed catalog.
type FeedTypeService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewFeedTypeService wires a feed-catalog service instance.
func NewFeedTypeService(store repository.Store, logger *zap.Logger) *FeedTypeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedTypeService{store: store, logger: logger, now: time.Now}
}

// Create registers a new feed type; the initial stock becomes the ledger
// baseline.
func (s *FeedTypeService) Create(ctx context.Context, in FeedTypeInput) (*models.FeedType, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}

	ft := &models.FeedType{
		ExternalCode:   in.ExternalCode,
		Name:           in.Name,
		Description:    in.Description,
		StockPounds:    in.StockPounds,
		LedgerBaseline: in.StockPounds,
	}
	if err := s.store.FeedTypes().Insert(ctx, ft); err != nil {
		return nil, err
	}

	s.logger.Info("feed type created",
		zap.String("feed_type_id", ft.ID.Hex()),
		zap.Float64("stock_lbs", ft.StockPounds))
	return ft, nil
}

// Get fetches one feed type by id.
func (s *FeedTypeService) Get(ctx context.Context, id string) (*models.FeedType, error) {
	oid, err := parseID(id, "feed type")
	if err != nil {
		return nil, err
	}
	return s.store.FeedTypes().Get(ctx, oid)
}

// List returns the whole catalog.
func (s *FeedTypeService) List(ctx context.Context) ([]models.FeedType, error) {
	return s.store.FeedTypes().List(ctx)
}

// Update applies a partial catalog update. Direct stock edits are permitted
// here as the sanctioned restocking escape hatch: the new value must still be
// non-negative, and the delta is written to the adjustment audit trail. The
// identity fields and the balance move through separate repository writes so
// the balance is never replaced with a value derived from a stale read.
func (s *FeedTypeService) Update(ctx context.Context, id string, in FeedTypeUpdate) (*models.FeedType, error) {
	oid, err := parseID(id, "feed type")
	if err != nil {
		return nil, err
	}
	if in.StockPounds != nil && *in.StockPounds < 0 {
		return nil, faults.InvalidInput("stockPounds", "stock must not be negative")
	}

	ft, err := s.store.FeedTypes().Get(ctx, oid)
	if err != nil {
		return nil, err
	}

	identityChanged := false
	if in.ExternalCode != nil {
		if *in.ExternalCode == "" {
			return nil, faults.InvalidInput("externalCode", "external code is required")
		}
		ft.ExternalCode = *in.ExternalCode
		identityChanged = true
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, faults.InvalidInput("name", "name is required")
		}
		ft.Name = *in.Name
		identityChanged = true
	}
	if in.Description != nil {
		ft.Description = *in.Description
		identityChanged = true
	}

	if identityChanged {
		if err := s.store.FeedTypes().Update(ctx, ft); err != nil {
			return nil, err
		}
	}

	if in.StockPounds != nil {
		if delta := *in.StockPounds - ft.StockPounds; delta != 0 {
			if err := s.store.FeedTypes().ApplyManualAdjustment(ctx, oid, delta); err != nil {
				if faults.IsKind(err, faults.KindInsufficientStock) {
					return nil, faults.InvalidInput("stockPounds", "stock edit exceeds available stock")
				}
				return nil, err
			}
			s.recordAdjustment(ctx, oid, delta, "catalog stock edit")
		}
	}

	return s.store.FeedTypes().Get(ctx, oid)
}

// Restock adds pounds to a feed type's stock outside the ledger. Negative
// deltas are allowed for shrinkage write-offs as long as the balance stays
// non-negative.
func (s *FeedTypeService) Restock(ctx context.Context, id string, pounds float64, reason string) (*models.FeedType, error) {
	if pounds == 0 {
		return nil, faults.InvalidInput("pounds", "restock amount must not be zero")
	}
	oid, err := parseID(id, "feed type")
	if err != nil {
		return nil, err
	}

	// One conditional update moves the stock and the invariant baseline
	// together, so the audit sees restocks as baseline shifts, not drift.
	if err := s.store.FeedTypes().ApplyManualAdjustment(ctx, oid, pounds); err != nil {
		if faults.IsKind(err, faults.KindInsufficientStock) {
			return nil, faults.InvalidInput("pounds", "write-off exceeds available stock")
		}
		return nil, err
	}

	s.recordAdjustment(ctx, oid, pounds, reason)
	s.logger.Info("feed type restocked",
		zap.String("feed_type_id", id),
		zap.Float64("delta_lbs", pounds))
	return s.store.FeedTypes().Get(ctx, oid)
}

// Delete removes a feed type. Feeding events that reference it keep their
// snapshots and become read-only history.
func (s *FeedTypeService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "feed type")
	if err != nil {
		return err
	}
	if err := s.store.FeedTypes().Delete(ctx, oid); err != nil {
		return err
	}
	s.logger.Info("feed type deleted", zap.String("feed_type_id", id))
	return nil
}

func (s *FeedTypeService) recordAdjustment(ctx context.Context, id primitive.ObjectID, delta float64, reason string) {
	adj := &models.StockAdjustment{
		FeedTypeID:  id,
		DeltaPounds: delta,
		Reason:      reason,
		AppliedAt:   s.now().UTC(),
	}
	if err := s.store.FeedTypes().RecordAdjustment(ctx, adj); err != nil {
		s.logger.Error("failed to record stock adjustment",
			zap.String("feed_type_id", id.Hex()),
			zap.Float64("delta_lbs", delta),
			zap.Error(err))
	}
}
