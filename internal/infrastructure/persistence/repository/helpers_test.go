package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-drafts/pkg/clock"
	"github.com/garyjia/procurement-drafts/pkg/database"
)

var testNow = time.Date(2026, 3, 30, 9, 0, 0, 0, time.UTC)

type testStore struct {
	db        *sqlite.DB
	clock     *clock.FakeClock
	history   *HistoryRepository
	documents *DocumentRepository
	workflow  *WorkflowRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	logger := zap.NewNop()

	raw, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "procurement.db"), MaxOpenConns: 1}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	require.NoError(t, database.NewMigrator(raw, logger).Run())

	db := sqlite.NewDB(raw.DB, logger)
	clk := clock.NewFakeClock(testNow)
	history := NewHistoryRepository(db, clk, logger)
	return &testStore{
		db:        db,
		clock:     clk,
		history:   history,
		documents: NewDocumentRepository(db, history, clk, logger),
		workflow:  NewWorkflowRepository(db, history, clk, logger),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func samplePayload(status entity.DocumentStatus) *entity.DocumentPayload {
	docDate := testNow
	return &entity.DocumentPayload{
		DocumentHeader: entity.DocumentHeader{
			Kind:            entity.KindPurchaseRequisition,
			DocNo:           "PR-2026-0001",
			Status:          status,
			RequesterID:     "EMP-7",
			CostCenterID:    "CC-100",
			Purpose:         "Office chairs",
			DocDate:         &docDate,
			CurrencyCode:    "THB",
			ExchangeRate:    decPtr("1"),
			VATRate:         decPtr("7"),
			Subtotal:        dec("75850"),
			TaxAmount:       dec("5309.50"),
			GrandTotal:      dec("81159.50"),
			IsMulticurrency: false,
		},
		Items: []entity.RecordLine{
			{LineNo: 1, ItemID: "CHAIR", Description: "Chair", Quantity: dec("10"), UnitPrice: dec("5000"), Discount: "5%",
				DiscountAmount: dec("2500"), NetAmount: dec("47500"), StandardCost: decPtr("4800")},
			{LineNo: 2, Description: "Desk", Quantity: dec("3"), UnitPrice: dec("9450"), NetAmount: dec("28350")},
		},
	}
}
