package lploader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"

	"github.com/mfgpilot/traceability/internal/domain"
	"github.com/mfgpilot/traceability/internal/repository"
)

// LPLoader batches license-plate snapshot loads. Traversal asks for one
// frontier of LP ids at a time; the loader collapses those into a single
// repository round trip per batch window.
type LPLoader struct {
	Loader *dataloader.Loader
}

// NewLPLoader creates a loader backed by the lineage repository.
func NewLPLoader(repo repository.LineageRepository) *LPLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]uuid.UUID, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				return []*dataloader.Result{{Error: fmt.Errorf("invalid UUID: %w", err)}}
			}
			ids[i] = id
		}

		plates, err := repo.GetLPsByIDs(ctx, ids)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Map id -> LP so results line up with the requested key order.
		plateMap := make(map[uuid.UUID]domain.LicensePlate)
		for _, lp := range plates {
			plateMap[lp.ID] = lp
		}

		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if lp, ok := plateMap[id]; ok {
				results[i] = &dataloader.Result{Data: lp}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &LPLoader{Loader: loader}
}
