package recall

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfgpilot/traceability/internal/domain"
)

// aggregate computes the summary, location, customer, financial and
// regulatory sections over the deduplicated affected set. Any missing
// reference data fails the whole report.
func (s *Simulator) aggregate(ctx context.Context, root domain.LicensePlate, affected []domain.LicensePlate, includeNotifications bool) (*domain.RecallSimulationResult, error) {
	result := &domain.RecallSimulationResult{}

	var (
		totalQty   = decimal.Zero
		totalValue = decimal.Zero
		breakdown  domain.StatusBreakdown
		shipped    []domain.LicensePlate
	)
	warehouseIDs := map[uuid.UUID]bool{}
	for _, lp := range affected {
		totalQty = totalQty.Add(lp.Quantity)
		totalValue = totalValue.Add(lp.Value())
		warehouseIDs[lp.WarehouseID] = true
		switch lp.Status {
		case domain.LPStatusAvailable:
			breakdown.Available++
		case domain.LPStatusInProduction:
			breakdown.InProduction++
		case domain.LPStatusShipped:
			breakdown.Shipped++
			shipped = append(shipped, lp)
		case domain.LPStatusConsumed:
			breakdown.Consumed++
		case domain.LPStatusQuarantine:
			breakdown.Quarantine++
		}
	}

	locations, err := s.locationAnalysis(ctx, affected)
	if err != nil {
		return nil, err
	}

	var (
		customers   []domain.CustomerImpact
		lostRevenue = decimal.Zero
		earliest    *time.Time
	)
	if len(shipped) > 0 {
		customers, lostRevenue, earliest, err = s.customerAnalysis(ctx, shipped)
		if err != nil {
			return nil, err
		}
	}

	result.Summary = domain.RecallSummary{
		TotalAffectedLPs:    len(affected),
		TotalQuantity:       totalQty,
		TotalEstimatedValue: totalValue,
		AffectedWarehouses:  len(warehouseIDs),
		AffectedCustomers:   len(customers),
		StatusBreakdown:     breakdown,
	}
	result.Locations = locations
	if !includeNotifications {
		// Suppress the notification list, not the fact that customers are
		// affected.
		customers = nil
	}
	result.Customers = customers

	retrieval := s.cfg.RetrievalCostRate.Mul(totalQty)
	disposal := s.cfg.DisposalCostRate.Mul(totalQty)
	result.Financial = domain.FinancialImpact{
		ProductValue:       totalValue,
		RetrievalCost:      retrieval,
		DisposalCost:       disposal,
		LostRevenue:        lostRevenue,
		TotalEstimatedCost: totalValue.Add(retrieval).Add(disposal).Add(lostRevenue),
		ConfidenceInterval: s.cfg.ConfidenceInterval,
	}
	result.Regulatory = s.regulatory(affected, totalValue, earliest)

	return result, nil
}

// locationAnalysis groups the affected set by warehouse. A warehouse id with
// no name on record is a referential integrity failure, not something to
// paper over in a recall report.
func (s *Simulator) locationAnalysis(ctx context.Context, affected []domain.LicensePlate) ([]domain.LocationAnalysis, error) {
	idSet := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, 4)
	for _, lp := range affected {
		if !idSet[lp.WarehouseID] {
			idSet[lp.WarehouseID] = true
			ids = append(ids, lp.WarehouseID)
		}
	}

	warehouses, err := s.repo.GetWarehouses(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading warehouses: %w", err)
	}

	type bucket struct {
		name string
		lps  int
		qty  decimal.Decimal
	}
	buckets := map[uuid.UUID]*bucket{}
	for _, lp := range affected {
		b, ok := buckets[lp.WarehouseID]
		if !ok {
			wh, known := warehouses[lp.WarehouseID]
			if !known {
				return nil, fmt.Errorf("%w: warehouse %s referenced by %s is unknown", domain.ErrAggregationFailure, lp.WarehouseID, lp.LPNumber)
			}
			b = &bucket{name: wh.Name, qty: decimal.Zero}
			buckets[lp.WarehouseID] = b
		}
		b.lps++
		b.qty = b.qty.Add(lp.Quantity)
	}

	locations := make([]domain.LocationAnalysis, 0, len(buckets))
	for _, b := range buckets {
		locations = append(locations, domain.LocationAnalysis{
			WarehouseName: b.name,
			AffectedLPs:   b.lps,
			TotalQuantity: b.qty,
		})
	}
	sort.Slice(locations, func(i, j int) bool {
		if c := locations[i].TotalQuantity.Cmp(locations[j].TotalQuantity); c != 0 {
			return c > 0
		}
		return locations[i].WarehouseName < locations[j].WarehouseName
	})
	return locations, nil
}

// customerAnalysis loads shipment records for the shipped subset and groups
// them per customer. Lost revenue and the earliest ship date come from the
// shipment records, so the financial and regulatory sections hold whether or
// not the caller asked for the notification list.
func (s *Simulator) customerAnalysis(ctx context.Context, shipped []domain.LicensePlate) ([]domain.CustomerImpact, decimal.Decimal, *time.Time, error) {
	ids := make([]uuid.UUID, len(shipped))
	unitValue := make(map[uuid.UUID]decimal.Decimal, len(shipped))
	for i, lp := range shipped {
		ids[i] = lp.ID
		unitValue[lp.ID] = lp.UnitValue
	}

	shipments, err := s.repo.GetShipmentsOf(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, nil, fmt.Errorf("loading shipments: %w", err)
	}

	lostRevenue := decimal.Zero
	var earliest *time.Time
	buckets := map[uuid.UUID]*domain.CustomerImpact{}
	for _, sh := range shipments {
		lostRevenue = lostRevenue.Add(sh.ShippedQuantity.Mul(unitValue[sh.LPID]).Mul(s.cfg.MarginFactor))
		if earliest == nil || sh.ShipDate.Before(*earliest) {
			d := sh.ShipDate
			earliest = &d
		}

		b, ok := buckets[sh.CustomerID]
		if !ok {
			buckets[sh.CustomerID] = &domain.CustomerImpact{
				CustomerName:       sh.CustomerName,
				ContactEmail:       sh.ContactEmail,
				ShippedQuantity:    sh.ShippedQuantity,
				ShipDate:           sh.ShipDate,
				NotificationStatus: sh.NotificationStatus,
			}
			continue
		}
		b.ShippedQuantity = b.ShippedQuantity.Add(sh.ShippedQuantity)
		if sh.ShipDate.Before(b.ShipDate) {
			b.ShipDate = sh.ShipDate
		}
	}

	customers := make([]domain.CustomerImpact, 0, len(buckets))
	for _, b := range buckets {
		customers = append(customers, *b)
	}
	sort.Slice(customers, func(i, j int) bool {
		if !customers[i].ShipDate.Equal(customers[j].ShipDate) {
			return customers[i].ShipDate.After(customers[j].ShipDate)
		}
		return customers[i].CustomerName < customers[j].CustomerName
	})
	return customers, lostRevenue, earliest, nil
}

// regulatory determines reportability. The due date only exists when the
// recall is reportable and at least one affected LP has shipped.
func (s *Simulator) regulatory(affected []domain.LicensePlate, totalValue decimal.Decimal, earliestShip *time.Time) domain.RegulatoryInfo {
	types := map[string]bool{}
	for _, lp := range affected {
		types[lp.ProductType] = true
	}
	productTypes := make([]string, 0, len(types))
	for t := range types {
		productTypes = append(productTypes, t)
	}
	sort.Strings(productTypes)

	reportable := totalValue.GreaterThan(s.cfg.ReportableValueThreshold)
	if !reportable {
		for _, t := range s.cfg.AlwaysReportableProductTypes {
			if types[t] {
				reportable = true
				break
			}
		}
	}

	info := domain.RegulatoryInfo{
		ReportableToFDA:      reportable,
		ReportStatus:         "not_started",
		AffectedProductTypes: productTypes,
	}
	if reportable && earliestShip != nil {
		due := earliestShip.AddDate(0, 0, s.cfg.ResponseWindowDays)
		info.ReportDueDate = &due
	}
	return info
}
