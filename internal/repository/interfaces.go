package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/mfgpilot/traceability/internal/domain"
)

// LineageRepository is the read-only contract the trace engine requires from
// the lineage store. Edge queries are batched: one call answers a whole BFS
// frontier, so the round-trip count is bounded by max depth rather than graph
// size. No write operations are exposed.
type LineageRepository interface {
	// GetLP returns the LP with the given id, or domain.ErrNotFound.
	GetLP(ctx context.Context, id uuid.UUID) (domain.LicensePlate, error)

	// GetLPByBatch returns the LP carrying the given batch number, or
	// domain.ErrNotFound.
	GetLPByBatch(ctx context.Context, batchNumber string) (domain.LicensePlate, error)

	// GetLPsByIDs returns snapshots for every id that exists. Missing ids
	// are silently absent from the result.
	GetLPsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.LicensePlate, error)

	// GetOutputsOf returns every genealogy link whose input LP is in the
	// given set (forward traversal, one call per depth level).
	GetOutputsOf(ctx context.Context, inputIDs []uuid.UUID, includeReversed bool) ([]domain.GenealogyLink, error)

	// GetInputsOf returns every genealogy link whose output LP is in the
	// given set (backward traversal).
	GetInputsOf(ctx context.Context, outputIDs []uuid.UUID, includeReversed bool) ([]domain.GenealogyLink, error)

	// GetShipmentsOf returns shipment records for the given LPs.
	GetShipmentsOf(ctx context.Context, lpIDs []uuid.UUID) ([]domain.ShipmentRecord, error)

	// GetWarehouses resolves warehouse ids to named records.
	GetWarehouses(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Warehouse, error)

	// GetLinksByReference returns every non-reversed link created under the
	// given work-order or process reference.
	GetLinksByReference(ctx context.Context, reference string) ([]domain.GenealogyLink, error)
}
