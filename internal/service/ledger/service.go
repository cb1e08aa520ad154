// Package ledger is the feed-inventory ledger: the only component allowed to
// couple an animal's feeding history to a feed type's stock balance. Every
// operation either commits both sides or leaves all balances untouched.
package ledger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/domain/faults"
	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository"
	"github.com/lagranja/livestock/internal/service/registry"
)

// Service implements the three ledger operations over the repository
// interfaces using a compensating-action protocol: the stock side is applied
// through conditional updates first, and rolled back if the history side
// cannot be persisted.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a ledger service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Correction carries the optional changes for CorrectFeedingEvent. Nil fields
// keep the event's current value.
type Correction struct {
	FeedTypeID *string  `json:"feedTypeId,omitempty"`
	DosePounds *float64 `json:"dosePounds,omitempty"`
}

// RecordFeeding decrements the feed type's stock by dose and appends a
// feeding event with name/description snapshots to the animal's history. On
// any failure neither side is mutated.
func (s *Service) RecordFeeding(ctx context.Context, animalID, feedTypeID string, dose float64) (*models.AnimalView, error) {
	if dose <= 0 {
		return nil, faults.InvalidInput("dosePounds", "dose must be greater than zero")
	}

	aid, err := parseID(animalID, "animal")
	if err != nil {
		return nil, err
	}
	fid, err := parseID(feedTypeID, "feed type")
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Animals().Get(ctx, aid); err != nil {
		return nil, err
	}
	ft, err := s.store.FeedTypes().Get(ctx, fid)
	if err != nil {
		return nil, err
	}

	// Conditional decrement: check and apply happen in one update, so a
	// concurrent recording cannot drive the balance negative.
	if err := s.store.FeedTypes().AdjustStock(ctx, fid, -dose); err != nil {
		return nil, err
	}

	event := models.FeedingEvent{
		ID:                  primitive.NewObjectID(),
		FeedTypeID:          fid,
		NameSnapshot:        ft.Name,
		DescriptionSnapshot: ft.Description,
		DosePounds:          dose,
		Timestamp:           s.now().UTC(),
	}

	if err := s.store.Animals().AppendEvent(ctx, aid, event); err != nil {
		s.compensate(ctx, fid, dose, "record feeding")
		return nil, err
	}

	s.logger.Info("feeding recorded",
		zap.String("animal_id", animalID),
		zap.String("feed_type_id", feedTypeID),
		zap.Float64("dose_lbs", dose))

	return s.view(ctx, aid)
}

// CorrectFeedingEvent adjusts an existing feeding event's dose and/or feed
// type, reconciling every affected stock balance. Events whose original feed
// type no longer exists are read-only.
func (s *Service) CorrectFeedingEvent(ctx context.Context, animalID, eventID string, corr Correction) (*models.AnimalView, error) {
	aid, err := parseID(animalID, "animal")
	if err != nil {
		return nil, err
	}
	eid, err := parseID(eventID, "feeding event")
	if err != nil {
		return nil, err
	}

	animal, err := s.store.Animals().Get(ctx, aid)
	if err != nil {
		return nil, err
	}
	idx := animal.EventByID(eid)
	if idx < 0 {
		return nil, faults.NotFound("feeding event")
	}
	event := animal.FeedingHistory[idx]

	// A dangling original reference makes the event permanently read-only,
	// regardless of what change was requested.
	oldFt, err := s.store.FeedTypes().Get(ctx, event.FeedTypeID)
	if err != nil {
		if faults.IsKind(err, faults.KindNotFound) {
			return nil, faults.ReadOnlyRecord()
		}
		return nil, err
	}

	newDose := event.DosePounds
	if corr.DosePounds != nil {
		newDose = *corr.DosePounds
	}
	if newDose <= 0 {
		return nil, faults.InvalidInput("dosePounds", "dose must be greater than zero")
	}

	targetID := event.FeedTypeID
	if corr.FeedTypeID != nil {
		targetID, err = parseID(*corr.FeedTypeID, "feed type")
		if err != nil {
			return nil, err
		}
	}

	if targetID == oldFt.ID {
		return s.adjustDose(ctx, aid, event, newDose)
	}
	return s.switchFeedType(ctx, aid, event, targetID, newDose)
}

// adjustDose handles a dosage-only correction against the event's current
// feed type by applying the delta to the balance.
func (s *Service) adjustDose(ctx context.Context, animalID primitive.ObjectID, event models.FeedingEvent, newDose float64) (*models.AnimalView, error) {
	delta := newDose - event.DosePounds
	if delta != 0 {
		// delta > 0 takes more stock (conditional); delta < 0 returns
		// stock and cannot fail the non-negativity invariant.
		if err := s.store.FeedTypes().AdjustStock(ctx, event.FeedTypeID, -delta); err != nil {
			return nil, err
		}
	}

	event.DosePounds = newDose
	if err := s.store.Animals().UpdateEvent(ctx, animalID, event); err != nil {
		if delta != 0 {
			s.compensate(ctx, event.FeedTypeID, delta, "dose correction")
		}
		return nil, err
	}

	s.logger.Info("feeding event corrected",
		zap.String("animal_id", animalID.Hex()),
		zap.String("event_id", event.ID.Hex()),
		zap.Float64("dose_lbs", newDose))

	return s.view(ctx, animalID)
}

// switchFeedType moves the event to a different feed type with the two-phase
// reconciliation: return the old dose first, verify the new feed can cover
// the new dose, and reverse the return if it cannot.
func (s *Service) switchFeedType(ctx context.Context, animalID primitive.ObjectID, event models.FeedingEvent, newFeedTypeID primitive.ObjectID, newDose float64) (*models.AnimalView, error) {
	newFt, err := s.store.FeedTypes().Get(ctx, newFeedTypeID)
	if err != nil {
		return nil, err
	}

	// Phase 1: tentatively return the old dose to the old feed type.
	if err := s.store.FeedTypes().AdjustStock(ctx, event.FeedTypeID, event.DosePounds); err != nil {
		return nil, err
	}

	// Phase 2: take the new dose from the new feed type; on failure undo
	// phase 1 so the old balance is exactly as before the call.
	if err := s.store.FeedTypes().AdjustStock(ctx, newFeedTypeID, -newDose); err != nil {
		s.compensate(ctx, event.FeedTypeID, -event.DosePounds, "feed type switch")
		if faults.IsKind(err, faults.KindInsufficientStock) {
			return nil, faults.InsufficientStock("insufficient stock for new feed type")
		}
		return nil, err
	}

	oldFeedTypeID := event.FeedTypeID
	oldDose := event.DosePounds
	event.FeedTypeID = newFt.ID
	event.DosePounds = newDose
	event.NameSnapshot = newFt.Name
	event.DescriptionSnapshot = newFt.Description

	if err := s.store.Animals().UpdateEvent(ctx, animalID, event); err != nil {
		s.compensate(ctx, newFeedTypeID, newDose, "feed type switch")
		s.compensate(ctx, oldFeedTypeID, -oldDose, "feed type switch")
		return nil, err
	}

	s.logger.Info("feeding event moved to new feed type",
		zap.String("animal_id", animalID.Hex()),
		zap.String("event_id", event.ID.Hex()),
		zap.String("feed_type_id", newFeedTypeID.Hex()),
		zap.Float64("dose_lbs", newDose))

	return s.view(ctx, animalID)
}

// RemoveFeedingEvent deletes a feeding event, returning its dose to the feed
// type's stock when the reference still resolves. A dangling reference means
// there is no balance to reconcile and the event is simply removed.
func (s *Service) RemoveFeedingEvent(ctx context.Context, animalID, eventID string) (*models.AnimalView, error) {
	aid, err := parseID(animalID, "animal")
	if err != nil {
		return nil, err
	}
	eid, err := parseID(eventID, "feeding event")
	if err != nil {
		return nil, err
	}

	animal, err := s.store.Animals().Get(ctx, aid)
	if err != nil {
		return nil, err
	}
	idx := animal.EventByID(eid)
	if idx < 0 {
		return nil, faults.NotFound("feeding event")
	}
	event := animal.FeedingHistory[idx]

	returned := false
	if _, err := s.store.FeedTypes().Get(ctx, event.FeedTypeID); err == nil {
		// Stock return must not be skipped while the feed type exists;
		// a failed return aborts the whole removal.
		if err := s.store.FeedTypes().AdjustStock(ctx, event.FeedTypeID, event.DosePounds); err != nil {
			return nil, err
		}
		returned = true
	} else if !faults.IsKind(err, faults.KindNotFound) {
		return nil, err
	}

	if err := s.store.Animals().RemoveEvent(ctx, aid, eid); err != nil {
		if returned {
			s.compensate(ctx, event.FeedTypeID, -event.DosePounds, "remove feeding event")
		}
		return nil, err
	}

	s.logger.Info("feeding event removed",
		zap.String("animal_id", animalID),
		zap.String("event_id", eventID),
		zap.Bool("stock_returned", returned))

	return s.view(ctx, aid)
}

// compensate rolls a stock balance back after a failed second phase. A failed
// compensation leaves drift that the nightly audit will surface.
func (s *Service) compensate(ctx context.Context, feedTypeID primitive.ObjectID, delta float64, op string) {
	if err := s.store.FeedTypes().AdjustStock(ctx, feedTypeID, delta); err != nil {
		s.logger.Error("stock compensation failed",
			zap.String("operation", op),
			zap.String("feed_type_id", feedTypeID.Hex()),
			zap.Float64("delta_lbs", delta),
			zap.Error(err))
	}
}

func (s *Service) view(ctx context.Context, animalID primitive.ObjectID) (*models.AnimalView, error) {
	animal, err := s.store.Animals().Get(ctx, animalID)
	if err != nil {
		return nil, err
	}
	return registry.ResolveAnimal(ctx, s.store, animal)
}

func parseID(id, entity string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, faults.NotFound(entity)
	}
	return oid, nil
}
