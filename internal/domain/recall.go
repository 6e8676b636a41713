package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusBreakdown counts affected LPs per lifecycle status.
type StatusBreakdown struct {
	Available    int `json:"available"`
	InProduction int `json:"in_production"`
	Shipped      int `json:"shipped"`
	Consumed     int `json:"consumed"`
	Quarantine   int `json:"quarantine"`
}

// Count returns the breakdown slot for the given status.
func (b StatusBreakdown) Count(s LPStatus) int {
	switch s {
	case LPStatusAvailable:
		return b.Available
	case LPStatusInProduction:
		return b.InProduction
	case LPStatusShipped:
		return b.Shipped
	case LPStatusConsumed:
		return b.Consumed
	case LPStatusQuarantine:
		return b.Quarantine
	}
	return 0
}

// RecallSummary aggregates the deduplicated affected set of a simulation.
type RecallSummary struct {
	TotalAffectedLPs    int             `json:"total_affected_lps"`
	TotalQuantity       decimal.Decimal `json:"total_quantity"`
	TotalEstimatedValue decimal.Decimal `json:"total_estimated_value"`
	AffectedWarehouses  int             `json:"affected_warehouses"`
	AffectedCustomers   int             `json:"affected_customers"`
	StatusBreakdown     StatusBreakdown `json:"status_breakdown"`
}

// LocationAnalysis is the per-warehouse slice of the affected set, sorted by
// total quantity descending so the largest exposure surfaces first.
type LocationAnalysis struct {
	WarehouseName string          `json:"warehouse_name"`
	AffectedLPs   int             `json:"affected_lps"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// CustomerImpact is the per-customer slice of shipped affected inventory.
type CustomerImpact struct {
	CustomerName       string          `json:"customer_name"`
	ContactEmail       string          `json:"contact_email"`
	ShippedQuantity    decimal.Decimal `json:"shipped_quantity"`
	ShipDate           time.Time       `json:"ship_date"`
	NotificationStatus string          `json:"notification_status"`
}

// FinancialImpact estimates recall cost. All figures derive from configured
// per-unit cost rates and the margin factor; the confidence interval is a
// descriptive band stating that the rates are estimates, not a statistical
// computation.
type FinancialImpact struct {
	ProductValue       decimal.Decimal `json:"product_value"`
	RetrievalCost      decimal.Decimal `json:"retrieval_cost"`
	DisposalCost       decimal.Decimal `json:"disposal_cost"`
	LostRevenue        decimal.Decimal `json:"lost_revenue"`
	TotalEstimatedCost decimal.Decimal `json:"total_estimated_cost"`
	ConfidenceInterval string          `json:"confidence_interval"`
}

// RegulatoryInfo is the reportability determination for a simulation.
type RegulatoryInfo struct {
	ReportableToFDA      bool       `json:"reportable_to_fda"`
	ReportDueDate        *time.Time `json:"report_due_date,omitempty"`
	ReportStatus         string     `json:"report_status"`
	AffectedProductTypes []string   `json:"affected_product_types"`
}

// RecallSimulationResult is the decision-support report produced by one
// simulation. It is computed fresh on every call and never persisted; no
// inventory record is touched.
type RecallSimulationResult struct {
	SimulationID  uuid.UUID          `json:"simulation_id"`
	RootLP        LicensePlate       `json:"root_lp"`
	BackwardTrace *TraceResult       `json:"backward_trace"`
	ForwardTrace  *TraceResult       `json:"forward_trace"`
	Summary       RecallSummary      `json:"summary"`
	Locations     []LocationAnalysis `json:"locations"`
	Customers     []CustomerImpact   `json:"customers"`
	Financial     FinancialImpact    `json:"financial"`
	Regulatory    RegulatoryInfo     `json:"regulatory"`
	ExecutionMs   int64              `json:"execution_time_ms"`
	CreatedAt     time.Time          `json:"created_at"`
}
