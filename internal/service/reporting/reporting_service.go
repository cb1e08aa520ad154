// Package reporting derives the consumption reports by scanning every
// animal's feeding history. Pure reads; no ledger invariants are touched.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository"
)

const dateLayout = "2006-01-02"

// unknownFeedName labels events whose feed type was deleted and whose
// snapshot is missing.
const unknownFeedName = "historical feed, no longer in catalog"

// Window is a half-open [From, To) reporting interval.
type Window struct {
	From time.Time
	To   time.Time
}

// ParseWindow builds a Window from optional YYYY-MM-DD bounds. The end date
// is inclusive of its whole calendar day; absent bounds default to an
// effectively unbounded interval.
func ParseWindow(startDate, endDate string) (Window, error) {
	w := Window{
		From: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2999, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	if startDate != "" {
		from, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return Window{}, fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
		w.From = from
	}
	if endDate != "" {
		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return Window{}, fmt.Errorf("invalid end date %q: %w", endDate, err)
		}
		w.To = end.Add(24 * time.Hour)
	}
	return w, nil
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.From) && ts.Before(w.To)
}

// Service exposes the three consumption reports.
type Service struct {
	store  repository.Store
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// TraceabilityByFeed flattens every feeding event in the window into
// (animal, client, feed, dose, date) rows, optionally filtered to a single
// feed type, ascending by date.
func (s *Service) TraceabilityByFeed(ctx context.Context, feedTypeID string, w Window) ([]models.TraceabilityRow, error) {
	animals, feedNames, clients, err := s.loadSources(ctx)
	if err != nil {
		return nil, err
	}

	var filter primitive.ObjectID
	if feedTypeID != "" {
		filter, err = primitive.ObjectIDFromHex(feedTypeID)
		if err != nil {
			return nil, fmt.Errorf("invalid feed type id %q: %w", feedTypeID, err)
		}
	}

	rows := []models.TraceabilityRow{}
	for _, animal := range animals {
		for _, event := range animal.FeedingHistory {
			if !w.Contains(event.Timestamp) {
				continue
			}
			if feedTypeID != "" && event.FeedTypeID != filter {
				continue
			}
			rows = append(rows, models.TraceabilityRow{
				AnimalTag:  animal.Tag,
				ClientName: clientName(animal, clients),
				FeedName:   resolveFeedName(event, feedNames),
				DosePounds: event.DosePounds,
				Date:       event.Timestamp,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	s.logger.Debug("traceability report generated", zap.Int("rows", len(rows)))
	return rows, nil
}

// ConsumptionByClient aggregates total dose, event count and distinct animal
// count per client, descending by total dose.
func (s *Service) ConsumptionByClient(ctx context.Context, w Window) ([]models.ClientConsumptionRow, error) {
	animals, _, clients, err := s.loadSources(ctx)
	if err != nil {
		return nil, err
	}

	type group struct {
		name    string
		total   float64
		events  int
		animals map[string]struct{}
	}
	groups := make(map[string]*group)

	for _, animal := range animals {
		key := ""
		if animal.ClientID != nil {
			key = animal.ClientID.Hex()
		}
		for _, event := range animal.FeedingHistory {
			if !w.Contains(event.Timestamp) {
				continue
			}
			g, ok := groups[key]
			if !ok {
				g = &group{name: clientName(animal, clients), animals: make(map[string]struct{})}
				groups[key] = g
			}
			g.total += event.DosePounds
			g.events++
			g.animals[animal.Tag] = struct{}{}
		}
	}

	rows := make([]models.ClientConsumptionRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, models.ClientConsumptionRow{
			ClientName:  g.name,
			TotalPounds: g.total,
			Events:      g.events,
			Animals:     len(g.animals),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TotalPounds > rows[j].TotalPounds })

	return rows, nil
}

// ConsumptionByFeed aggregates event count and total dose per resolved feed
// name with each group's percentage of the window's grand total, descending
// by total dose.
func (s *Service) ConsumptionByFeed(ctx context.Context, w Window) ([]models.FeedConsumptionRow, error) {
	animals, feedNames, _, err := s.loadSources(ctx)
	if err != nil {
		return nil, err
	}

	type group struct {
		events int
		total  float64
	}
	groups := make(map[string]*group)
	var grandTotal float64

	for _, animal := range animals {
		for _, event := range animal.FeedingHistory {
			if !w.Contains(event.Timestamp) {
				continue
			}
			name := resolveFeedName(event, feedNames)
			g, ok := groups[name]
			if !ok {
				g = &group{}
				groups[name] = g
			}
			g.events++
			g.total += event.DosePounds
			grandTotal += event.DosePounds
		}
	}

	rows := make([]models.FeedConsumptionRow, 0, len(groups))
	for name, g := range groups {
		pct := 0.0
		if grandTotal > 0 {
			pct = g.total * 100 / grandTotal
		}
		rows = append(rows, models.FeedConsumptionRow{
			FeedName:    name,
			Events:      g.events,
			TotalPounds: g.total,
			Percentage:  pct,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TotalPounds > rows[j].TotalPounds })

	return rows, nil
}

// loadSources snapshots the animals plus the lookup tables the reports need.
func (s *Service) loadSources(ctx context.Context) ([]models.Animal, map[primitive.ObjectID]string, map[primitive.ObjectID]models.Client, error) {
	animals, err := s.store.Animals().List(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load animals: %w", err)
	}

	feedTypes, err := s.store.FeedTypes().List(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load feed types: %w", err)
	}
	feedNames := make(map[primitive.ObjectID]string, len(feedTypes))
	for _, ft := range feedTypes {
		feedNames[ft.ID] = ft.Name
	}

	clientList, err := s.store.Clients().List(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load clients: %w", err)
	}
	clients := make(map[primitive.ObjectID]models.Client, len(clientList))
	for _, c := range clientList {
		clients[c.ID] = c
	}

	return animals, feedNames, clients, nil
}

// resolveFeedName prefers the live catalog name, falls back to the snapshot
// captured at recording time, then to the historical placeholder.
func resolveFeedName(event models.FeedingEvent, feedNames map[primitive.ObjectID]string) string {
	if name, ok := feedNames[event.FeedTypeID]; ok {
		return name
	}
	if event.NameSnapshot != "" {
		return event.NameSnapshot
	}
	return unknownFeedName
}

func clientName(animal models.Animal, clients map[primitive.ObjectID]models.Client) string {
	if animal.ClientID == nil {
		return ""
	}
	client, ok := clients[*animal.ClientID]
	if !ok {
		return ""
	}
	return client.FullName()
}
