package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mfgpilot/traceability/internal/domain"
)

// lineageRepository implements LineageRepository over Postgres.
type lineageRepository struct {
	pool *pgxpool.Pool
}

// NewLineageRepository creates a Postgres-backed lineage repository.
func NewLineageRepository(pool *pgxpool.Pool) LineageRepository {
	return &lineageRepository{pool: pool}
}

// Numeric columns are selected as text and parsed into decimals so quantity
// and value arithmetic stays exact end to end.
const lpColumns = `
	id, lp_number, product_id, product_name, product_type, batch_number,
	quantity::text, uom, status, warehouse_id, expiry_date, unit_value::text`

func (r *lineageRepository) GetLP(ctx context.Context, id uuid.UUID) (domain.LicensePlate, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+lpColumns+` FROM license_plates WHERE id = $1`, id)
	lp, err := scanLP(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LicensePlate{}, fmt.Errorf("%w: lp %s", domain.ErrNotFound, id)
		}
		return domain.LicensePlate{}, fmt.Errorf("%w: get lp %s: %v", domain.ErrStoreUnavailable, id, err)
	}
	return lp, nil
}

func (r *lineageRepository) GetLPByBatch(ctx context.Context, batchNumber string) (domain.LicensePlate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+lpColumns+` FROM license_plates WHERE batch_number = $1 ORDER BY lp_number LIMIT 1`,
		batchNumber)
	lp, err := scanLP(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LicensePlate{}, fmt.Errorf("%w: batch %s", domain.ErrNotFound, batchNumber)
		}
		return domain.LicensePlate{}, fmt.Errorf("%w: get lp by batch %s: %v", domain.ErrStoreUnavailable, batchNumber, err)
	}
	return lp, nil
}

func (r *lineageRepository) GetLPsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.LicensePlate, error) {
	if len(ids) == 0 {
		return []domain.LicensePlate{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT`+lpColumns+` FROM license_plates WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: get lps by ids: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	plates := make([]domain.LicensePlate, 0, len(ids))
	for rows.Next() {
		lp, err := scanLP(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan lp: %v", domain.ErrStoreUnavailable, err)
		}
		plates = append(plates, lp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: get lps by ids: %v", domain.ErrStoreUnavailable, err)
	}
	return plates, nil
}

const linkColumns = `
	id, input_lp_id, output_lp_id, quantity_consumed::text, operation_type,
	linked_at, reference, is_reversed`

func (r *lineageRepository) GetOutputsOf(ctx context.Context, inputIDs []uuid.UUID, includeReversed bool) ([]domain.GenealogyLink, error) {
	return r.queryLinks(ctx,
		`SELECT`+linkColumns+` FROM genealogy_links
		 WHERE input_lp_id = ANY($1) AND (is_reversed = false OR $2)
		 ORDER BY linked_at`,
		inputIDs, includeReversed)
}

func (r *lineageRepository) GetInputsOf(ctx context.Context, outputIDs []uuid.UUID, includeReversed bool) ([]domain.GenealogyLink, error) {
	return r.queryLinks(ctx,
		`SELECT`+linkColumns+` FROM genealogy_links
		 WHERE output_lp_id = ANY($1) AND (is_reversed = false OR $2)
		 ORDER BY linked_at`,
		outputIDs, includeReversed)
}

func (r *lineageRepository) queryLinks(ctx context.Context, sql string, ids []uuid.UUID, includeReversed bool) ([]domain.GenealogyLink, error) {
	if len(ids) == 0 {
		return []domain.GenealogyLink{}, nil
	}

	rows, err := r.pool.Query(ctx, sql, ids, includeReversed)
	if err != nil {
		return nil, fmt.Errorf("%w: query genealogy links: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	links := []domain.GenealogyLink{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan genealogy link: %v", domain.ErrStoreUnavailable, err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query genealogy links: %v", domain.ErrStoreUnavailable, err)
	}
	return links, nil
}

func (r *lineageRepository) GetShipmentsOf(ctx context.Context, lpIDs []uuid.UUID) ([]domain.ShipmentRecord, error) {
	if len(lpIDs) == 0 {
		return []domain.ShipmentRecord{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, lp_id, customer_id, customer_name, contact_email,
		        shipped_quantity::text, ship_date, notification_status
		 FROM shipments WHERE lp_id = ANY($1) ORDER BY ship_date`,
		lpIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: get shipments: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	shipments := []domain.ShipmentRecord{}
	for rows.Next() {
		var (
			s       domain.ShipmentRecord
			qtyText string
		)
		if err := rows.Scan(&s.ID, &s.LPID, &s.CustomerID, &s.CustomerName, &s.ContactEmail,
			&qtyText, &s.ShipDate, &s.NotificationStatus); err != nil {
			return nil, fmt.Errorf("%w: scan shipment: %v", domain.ErrStoreUnavailable, err)
		}
		s.ShippedQuantity, err = decimal.NewFromString(qtyText)
		if err != nil {
			return nil, fmt.Errorf("%w: shipment %s quantity: %v", domain.ErrStoreUnavailable, s.ID, err)
		}
		shipments = append(shipments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: get shipments: %v", domain.ErrStoreUnavailable, err)
	}
	return shipments, nil
}

func (r *lineageRepository) GetWarehouses(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Warehouse, error) {
	warehouses := make(map[uuid.UUID]domain.Warehouse, len(ids))
	if len(ids) == 0 {
		return warehouses, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM warehouses WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: get warehouses: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var w domain.Warehouse
		if err := rows.Scan(&w.ID, &w.Name); err != nil {
			return nil, fmt.Errorf("%w: scan warehouse: %v", domain.ErrStoreUnavailable, err)
		}
		warehouses[w.ID] = w
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: get warehouses: %v", domain.ErrStoreUnavailable, err)
	}
	return warehouses, nil
}

func (r *lineageRepository) GetLinksByReference(ctx context.Context, reference string) ([]domain.GenealogyLink, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT`+linkColumns+` FROM genealogy_links
		 WHERE reference = $1 AND is_reversed = false
		 ORDER BY linked_at`,
		reference)
	if err != nil {
		return nil, fmt.Errorf("%w: get links by reference %s: %v", domain.ErrStoreUnavailable, reference, err)
	}
	defer rows.Close()

	links := []domain.GenealogyLink{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan genealogy link: %v", domain.ErrStoreUnavailable, err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: get links by reference %s: %v", domain.ErrStoreUnavailable, reference, err)
	}
	return links, nil
}

func scanLP(row pgx.Row) (domain.LicensePlate, error) {
	var (
		lp            domain.LicensePlate
		quantityText  string
		unitValueText string
		status        string
		expiry        *time.Time
	)
	if err := row.Scan(&lp.ID, &lp.LPNumber, &lp.ProductID, &lp.ProductName, &lp.ProductType,
		&lp.BatchNumber, &quantityText, &lp.UOM, &status, &lp.WarehouseID, &expiry, &unitValueText); err != nil {
		return domain.LicensePlate{}, err
	}

	var err error
	lp.Quantity, err = decimal.NewFromString(quantityText)
	if err != nil {
		return domain.LicensePlate{}, fmt.Errorf("lp %s quantity: %w", lp.ID, err)
	}
	lp.UnitValue, err = decimal.NewFromString(unitValueText)
	if err != nil {
		return domain.LicensePlate{}, fmt.Errorf("lp %s unit_value: %w", lp.ID, err)
	}
	lp.Status = domain.LPStatus(status)
	lp.ExpiryDate = expiry
	return lp, nil
}

func scanLink(rows pgx.Rows) (domain.GenealogyLink, error) {
	var (
		link    domain.GenealogyLink
		qtyText string
		opType  string
	)
	if err := rows.Scan(&link.ID, &link.InputLPID, &link.OutputLPID, &qtyText, &opType,
		&link.LinkedAt, &link.Reference, &link.IsReversed); err != nil {
		return domain.GenealogyLink{}, err
	}

	var err error
	link.QuantityConsumed, err = decimal.NewFromString(qtyText)
	if err != nil {
		return domain.GenealogyLink{}, fmt.Errorf("link %s quantity_consumed: %w", link.ID, err)
	}
	link.OperationType = domain.LinkOperation(opType)
	return link, nil
}
