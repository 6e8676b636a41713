package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mfgpilot/traceability/internal/domain"
)

func sampleResult() *domain.RecallSimulationResult {
	due := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	return &domain.RecallSimulationResult{
		SimulationID: uuid.New(),
		RootLP: domain.LicensePlate{
			ID:          uuid.New(),
			LPNumber:    "LP-ROOT",
			ProductName: "Widget",
			BatchNumber: "BATCH-1",
		},
		Summary: domain.RecallSummary{
			TotalAffectedLPs:    3,
			TotalQuantity:       decimal.NewFromInt(20),
			TotalEstimatedValue: decimal.RequireFromString("50.00"),
			AffectedWarehouses:  1,
			AffectedCustomers:   1,
			StatusBreakdown:     domain.StatusBreakdown{Available: 2, Shipped: 1},
		},
		Locations: []domain.LocationAnalysis{
			{WarehouseName: "Main DC", AffectedLPs: 3, TotalQuantity: decimal.NewFromInt(20)},
		},
		Customers: []domain.CustomerImpact{
			{CustomerName: "Acme", ContactEmail: "recalls@acme.example",
				ShippedQuantity: decimal.NewFromInt(10), ShipDate: due.AddDate(0, 0, -10),
				NotificationStatus: "pending"},
		},
		Financial: domain.FinancialImpact{
			ProductValue:       decimal.RequireFromString("50.00"),
			RetrievalCost:      decimal.RequireFromString("40.00"),
			DisposalCost:       decimal.RequireFromString("20.00"),
			LostRevenue:        decimal.RequireFromString("15.00"),
			TotalEstimatedCost: decimal.RequireFromString("125.00"),
			ConfidenceInterval: "±15%",
		},
		Regulatory: domain.RegulatoryInfo{
			ReportableToFDA:      true,
			ReportDueDate:        &due,
			ReportStatus:         "not_started",
			AffectedProductTypes: []string{"assembly"},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderWorkbookSheets(t *testing.T) {
	buf, err := renderWorkbook(sampleResult())
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer func() { _ = f.Close() }()

	want := []string{"Summary", "Locations", "Customers", "Financial", "Regulatory"}
	sheets := map[string]bool{}
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}
	for _, name := range want {
		if !sheets[name] {
			t.Fatalf("missing sheet %s, have %v", name, f.GetSheetList())
		}
	}
	if sheets["Sheet1"] {
		t.Fatalf("default sheet must be removed")
	}

	rows, err := f.GetRows("Customers")
	if err != nil {
		t.Fatalf("failed to read customers sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one customer, got %d rows", len(rows))
	}
	if rows[1][0] != "Acme" {
		t.Fatalf("unexpected customer row: %v", rows[1])
	}

	rows, err = f.GetRows("Financial")
	if err != nil {
		t.Fatalf("failed to read financial sheet: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("expected 6 financial rows, got %d", len(rows))
	}
}
