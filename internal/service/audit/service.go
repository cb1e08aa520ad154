// Package audit reconciles the feed ledger. For every feed type it recomputes
//
//	drift = ledgerBaseline - sum(active doses referencing it) - stockPounds
//
// which must be zero as long as every stock change went through the ledger or
// the audited restock path. Nonzero drift is logged and reported; low
// balances trigger the optional webhook alert, and the consumption-by-feed
// report is mirrored to the optional spreadsheet.
package audit

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository"
	"github.com/lagranja/livestock/internal/repository/sheets"
	"github.com/lagranja/livestock/internal/service/reporting"
	"github.com/lagranja/livestock/pkg/clients/alerts"
)

// Float comparisons tolerate accumulated rounding from repeated $inc updates.
const driftTolerance = 1e-6

const exportRange = "Consumption!A:E"

// Finding is the audit verdict for one feed type.
type Finding struct {
	FeedTypeID   string  `json:"feedTypeId"`
	ExternalCode string  `json:"externalCode"`
	Name         string  `json:"name"`
	StockPounds  float64 `json:"stockPounds"`
	ActiveDoses  float64 `json:"activeDoses"`
	Baseline     float64 `json:"baseline"`
	Drift        float64 `json:"drift"`
	LowStock     bool    `json:"lowStock"`
}

// Service runs the ledger audit. Notifier and Exporter may be nil, disabling
// alerting and sheet export respectively.
type Service struct {
	store       repository.Store
	reporting   *reporting.Service
	notifier    alerts.Notifier
	exporter    sheets.Exporter
	lowStockLbs float64
	logger      *zap.Logger
}

// NewService wires an audit service instance.
func NewService(store repository.Store, reportingSvc *reporting.Service, notifier alerts.Notifier, exporter sheets.Exporter, lowStockLbs float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		reporting:   reportingSvc,
		notifier:    notifier,
		exporter:    exporter,
		lowStockLbs: lowStockLbs,
		logger:      logger,
	}
}

// Run executes one full audit pass and returns the per-feed-type findings.
func (s *Service) Run(ctx context.Context) ([]Finding, error) {
	feedTypes, err := s.store.FeedTypes().List(ctx)
	if err != nil {
		return nil, err
	}
	animals, err := s.store.Animals().List(ctx)
	if err != nil {
		return nil, err
	}

	activeDoses := make(map[string]float64)
	for _, animal := range animals {
		for _, event := range animal.FeedingHistory {
			activeDoses[event.FeedTypeID.Hex()] += event.DosePounds
		}
	}

	findings := make([]Finding, 0, len(feedTypes))
	for _, ft := range feedTypes {
		id := ft.ID.Hex()
		drift := ft.LedgerBaseline - activeDoses[id] - ft.StockPounds
		if math.Abs(drift) < driftTolerance {
			drift = 0
		}

		finding := Finding{
			FeedTypeID:   id,
			ExternalCode: ft.ExternalCode,
			Name:         ft.Name,
			StockPounds:  ft.StockPounds,
			ActiveDoses:  activeDoses[id],
			Baseline:     ft.LedgerBaseline,
			Drift:        drift,
			LowStock:     ft.StockPounds <= s.lowStockLbs,
		}
		findings = append(findings, finding)

		if drift != 0 {
			s.logger.Error("ledger drift detected",
				zap.String("feed_type_id", id),
				zap.String("external_code", ft.ExternalCode),
				zap.Float64("drift_lbs", drift),
				zap.Float64("stock_lbs", ft.StockPounds),
				zap.Float64("active_doses_lbs", activeDoses[id]))
		}

		if finding.LowStock {
			s.alertLowStock(ctx, ft)
		}
	}

	s.exportConsumption(ctx)

	s.logger.Info("ledger audit finished", zap.Int("feed_types", len(findings)))
	return findings, nil
}

func (s *Service) alertLowStock(ctx context.Context, ft models.FeedType) {
	if s.notifier == nil {
		return
	}

	alert := alerts.LowStockAlert{
		FeedTypeID:   ft.ID.Hex(),
		ExternalCode: ft.ExternalCode,
		Name:         ft.Name,
		StockPounds:  ft.StockPounds,
		Threshold:    s.lowStockLbs,
	}
	if err := s.notifier.SendLowStockAlert(ctx, alert); err != nil {
		s.logger.Error("failed to send low stock alert",
			zap.String("feed_type_id", ft.ID.Hex()),
			zap.Error(err))
	}
}

func (s *Service) exportConsumption(ctx context.Context) {
	if s.exporter == nil {
		return
	}

	rows, err := s.reporting.ConsumptionByFeed(ctx, reporting.Window{
		From: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2999, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		s.logger.Error("failed to build consumption report for export", zap.Error(err))
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, []interface{}{now, row.FeedName, row.Events, row.TotalPounds, row.Percentage})
	}

	if err := s.exporter.AppendRows(ctx, exportRange, values); err != nil {
		s.logger.Error("failed to export consumption report", zap.Error(err))
	}
}
