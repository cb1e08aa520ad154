package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/repository/memory"
	"github.com/lagranja/livestock/internal/service/ledger"
	"github.com/lagranja/livestock/internal/service/registry"
	"github.com/lagranja/livestock/internal/service/reporting"
	"github.com/lagranja/livestock/pkg/clients/alerts"
)

type capturedAlerts struct {
	sent []alerts.LowStockAlert
}

func (c *capturedAlerts) SendLowStockAlert(_ context.Context, alert alerts.LowStockAlert) error {
	c.sent = append(c.sent, alert)
	return nil
}

type capturedExport struct {
	ranges []string
	rows   [][][]interface{}
}

func (c *capturedExport) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	c.ranges = append(c.ranges, sheetRange)
	c.rows = append(c.rows, rows)
	return nil
}

func TestAuditBalancedLedger(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	feedTypes := registry.NewFeedTypeService(store, nil)
	animals := registry.NewAnimalService(store, nil)
	ledgerSvc := ledger.NewService(store, nil)

	ft, err := feedTypes.Create(ctx, registry.FeedTypeInput{ExternalCode: "F-1", Name: "Starter", StockPounds: 500})
	require.NoError(t, err)
	animal, err := animals.Create(ctx, registry.AnimalInput{Tag: "P-001", Breed: models.BreedYork, AgeMonths: 4, WeightKg: 60})
	require.NoError(t, err)

	_, err = ledgerSvc.RecordFeeding(ctx, animal.ID.Hex(), ft.ID.Hex(), 50)
	require.NoError(t, err)
	_, err = ledgerSvc.RecordFeeding(ctx, animal.ID.Hex(), ft.ID.Hex(), 20)
	require.NoError(t, err)

	// A restock moves stock and baseline together and must not read as drift.
	_, err = feedTypes.Restock(ctx, ft.ID.Hex(), 100, "supplier delivery")
	require.NoError(t, err)

	svc := NewService(store, reporting.NewService(store, nil), nil, nil, 10, nil)
	findings, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	finding := findings[0]
	assert.Equal(t, 0.0, finding.Drift)
	assert.Equal(t, 70.0, finding.ActiveDoses)
	assert.Equal(t, 530.0, finding.StockPounds)
	assert.Equal(t, 600.0, finding.Baseline)
	assert.False(t, finding.LowStock)
}

func TestAuditDetectsDrift(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	feedTypes := registry.NewFeedTypeService(store, nil)
	ft, err := feedTypes.Create(ctx, registry.FeedTypeInput{ExternalCode: "F-1", Name: "Starter", StockPounds: 500})
	require.NoError(t, err)

	// Simulate a half-committed ledger write: the stock was debited but no
	// feeding event was recorded against it.
	require.NoError(t, store.FeedTypes().AdjustStock(ctx, ft.ID, -25))

	svc := NewService(store, reporting.NewService(store, nil), nil, nil, 10, nil)
	findings, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 25.0, findings[0].Drift)
}

func TestAuditLowStockAlertAndExport(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	feedTypes := registry.NewFeedTypeService(store, nil)
	_, err := feedTypes.Create(ctx, registry.FeedTypeInput{ExternalCode: "F-1", Name: "Starter", StockPounds: 80})
	require.NoError(t, err)
	_, err = feedTypes.Create(ctx, registry.FeedTypeInput{ExternalCode: "F-2", Name: "Grower", StockPounds: 900})
	require.NoError(t, err)

	notifier := &capturedAlerts{}
	exporter := &capturedExport{}
	svc := NewService(store, reporting.NewService(store, nil), notifier, exporter, 100, nil)

	findings, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 2)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "F-1", notifier.sent[0].ExternalCode)
	assert.Equal(t, 80.0, notifier.sent[0].StockPounds)
	assert.Equal(t, 100.0, notifier.sent[0].Threshold)

	require.Len(t, exporter.ranges, 1)
	assert.Equal(t, "Consumption!A:E", exporter.ranges[0])
}
