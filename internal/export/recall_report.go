package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mfgpilot/traceability/internal/domain"
	"github.com/mfgpilot/traceability/internal/recall"
)

// Service renders recall simulation results into downloadable XLSX reports.
// The report is built in memory and streamed to the caller; nothing is
// written to disk.
type Service struct {
	simulator *recall.Simulator
}

func NewService(simulator *recall.Simulator) *Service {
	return &Service{simulator: simulator}
}

// BuildRecallReport runs a simulation and renders its workbook. The returned
// file name embeds the root LP number and the simulation timestamp.
func (s *Service) BuildRecallReport(ctx context.Context, req recall.Request) (*bytes.Buffer, string, error) {
	result, err := s.simulator.Simulate(ctx, req)
	if err != nil {
		return nil, "", err
	}

	buf, err := renderWorkbook(result)
	if err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("recall_%s_%s.xlsx", result.RootLP.LPNumber, result.CreatedAt.Format("20060102_150405"))
	return buf, name, nil
}

func renderWorkbook(result *domain.RecallSimulationResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeSummarySheet(f, result); err != nil {
		return nil, err
	}
	if err := writeLocationsSheet(f, result.Locations); err != nil {
		return nil, err
	}
	if err := writeCustomersSheet(f, result.Customers); err != nil {
		return nil, err
	}
	if err := writeFinancialSheet(f, result.Financial); err != nil {
		return nil, err
	}
	if err := writeRegulatorySheet(f, result.Regulatory); err != nil {
		return nil, err
	}

	// Drop the default sheet that excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to finalize workbook: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func writeSummarySheet(f *excelize.File, result *domain.RecallSimulationResult) error {
	rows := [][]any{
		{"Simulation ID", result.SimulationID.String()},
		{"Created At", result.CreatedAt.Format(time.RFC3339)},
		{"Root LP", result.RootLP.LPNumber},
		{"Product", result.RootLP.ProductName},
		{"Batch", result.RootLP.BatchNumber},
		{"Total Affected LPs", result.Summary.TotalAffectedLPs},
		{"Total Quantity", result.Summary.TotalQuantity.String()},
		{"Total Estimated Value", result.Summary.TotalEstimatedValue.String()},
		{"Affected Warehouses", result.Summary.AffectedWarehouses},
		{"Affected Customers", result.Summary.AffectedCustomers},
		{"Available", result.Summary.StatusBreakdown.Available},
		{"In Production", result.Summary.StatusBreakdown.InProduction},
		{"Shipped", result.Summary.StatusBreakdown.Shipped},
		{"Consumed", result.Summary.StatusBreakdown.Consumed},
		{"Quarantine", result.Summary.StatusBreakdown.Quarantine},
	}
	return writeSheet(f, "Summary", nil, rows)
}

func writeLocationsSheet(f *excelize.File, locations []domain.LocationAnalysis) error {
	headers := []any{"Warehouse", "Affected LPs", "Total Quantity"}
	rows := make([][]any, 0, len(locations))
	for _, loc := range locations {
		rows = append(rows, []any{loc.WarehouseName, loc.AffectedLPs, loc.TotalQuantity.String()})
	}
	return writeSheet(f, "Locations", headers, rows)
}

func writeCustomersSheet(f *excelize.File, customers []domain.CustomerImpact) error {
	headers := []any{"Customer", "Contact Email", "Shipped Quantity", "Ship Date", "Notification Status"}
	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []any{
			c.CustomerName,
			c.ContactEmail,
			c.ShippedQuantity.String(),
			c.ShipDate.Format("2006-01-02"),
			c.NotificationStatus,
		})
	}
	return writeSheet(f, "Customers", headers, rows)
}

func writeFinancialSheet(f *excelize.File, financial domain.FinancialImpact) error {
	rows := [][]any{
		{"Product Value", financial.ProductValue.String()},
		{"Retrieval Cost", financial.RetrievalCost.String()},
		{"Disposal Cost", financial.DisposalCost.String()},
		{"Lost Revenue", financial.LostRevenue.String()},
		{"Total Estimated Cost", financial.TotalEstimatedCost.String()},
		{"Confidence Interval", financial.ConfidenceInterval},
	}
	return writeSheet(f, "Financial", nil, rows)
}

func writeRegulatorySheet(f *excelize.File, regulatory domain.RegulatoryInfo) error {
	due := ""
	if regulatory.ReportDueDate != nil {
		due = regulatory.ReportDueDate.Format("2006-01-02")
	}
	rows := [][]any{
		{"Reportable To FDA", regulatory.ReportableToFDA},
		{"Report Due Date", due},
		{"Report Status", regulatory.ReportStatus},
	}
	for _, t := range regulatory.AffectedProductTypes {
		rows = append(rows, []any{"Affected Product Type", t})
	}
	return writeSheet(f, "Regulatory", nil, rows)
}

func writeSheet(f *excelize.File, name string, headers []any, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	rowIndex := 1
	if headers != nil {
		cell, _ := excelize.CoordinatesToCellName(1, rowIndex)
		if err := f.SetSheetRow(name, cell, &headers); err != nil {
			return fmt.Errorf("failed to write header row on %s: %w", name, err)
		}
		rowIndex++
	}
	for _, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, rowIndex)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row on %s: %w", name, err)
		}
		rowIndex++
	}
	return nil
}
