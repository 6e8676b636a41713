package recall

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mfgpilot/traceability/internal/domain"
	"github.com/mfgpilot/traceability/internal/repository"
	"github.com/mfgpilot/traceability/internal/trace"
)

// Request describes one recall simulation.
type Request struct {
	LPID                 *uuid.UUID
	BatchNumber          string
	MaxDepth             int
	IncludeShipped       bool
	IncludeReversed      bool
	IncludeNotifications bool
}

// Simulator composes a backward and a forward trace into a recall impact
// report. The simulation never mutates inventory and never returns a partial
// report: if either sub-trace or any aggregation input fails, the whole call
// fails.
type Simulator struct {
	repo     repository.LineageRepository
	traceSvc *trace.Service
	cfg      Config
	now      func() time.Time
}

// NewSimulator creates a recall simulator.
func NewSimulator(repo repository.LineageRepository, traceSvc *trace.Service, cfg Config) *Simulator {
	return &Simulator{
		repo:     repo,
		traceSvc: traceSvc,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Simulate runs both traces from the root concurrently, merges the affected
// sets and computes the aggregation reports.
func (s *Simulator) Simulate(ctx context.Context, req Request) (*domain.RecallSimulationResult, error) {
	start := s.now()

	root, err := s.resolveRoot(ctx, req)
	if err != nil {
		return nil, err
	}
	rootID := root.ID

	traceReq := trace.Request{
		LPID:            &rootID,
		MaxDepth:        req.MaxDepth,
		IncludeShipped:  req.IncludeShipped,
		IncludeReversed: req.IncludeReversed,
	}

	// Both traces are independent read-only computations; fork them and let
	// the first failure cancel the sibling.
	var backward, forward *domain.TraceResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r := traceReq
		r.Direction = domain.TraceBackward
		var err error
		backward, err = s.traceSvc.Trace(gctx, r)
		return err
	})
	g.Go(func() error {
		r := traceReq
		r.Direction = domain.TraceForward
		var err error
		forward, err = s.traceSvc.Trace(gctx, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recall simulation for %s: %w", rootID, err)
	}

	// A partial trace is acceptable for an exploratory trace call, never for
	// a recall report.
	if backward.TimedOut {
		return nil, fmt.Errorf("%w: backward trace from %s", domain.ErrPartialTraceTimeout, rootID)
	}
	if forward.TimedOut {
		return nil, fmt.Errorf("%w: forward trace from %s", domain.ErrPartialTraceTimeout, rootID)
	}

	affected := unionAffected(root, backward.Nodes, forward.Nodes)

	report, err := s.aggregate(ctx, root, affected, req.IncludeNotifications)
	if err != nil {
		return nil, err
	}

	report.SimulationID = uuid.New()
	report.RootLP = root
	report.BackwardTrace = backward
	report.ForwardTrace = forward
	report.CreatedAt = s.now()
	report.ExecutionMs = time.Since(start).Milliseconds()

	log.Printf("[RECALL] simulation %s root %s affected %d lps in %dms",
		report.SimulationID, root.LPNumber, report.Summary.TotalAffectedLPs, report.ExecutionMs)
	return report, nil
}

func (s *Simulator) resolveRoot(ctx context.Context, req Request) (domain.LicensePlate, error) {
	if req.LPID == nil && req.BatchNumber == "" {
		return domain.LicensePlate{}, fmt.Errorf("%w: either lp_id or batch_number is required", domain.ErrInvalidInput)
	}
	if req.MaxDepth <= 0 {
		return domain.LicensePlate{}, fmt.Errorf("%w: max_depth must be positive, got %d", domain.ErrInvalidInput, req.MaxDepth)
	}
	if req.LPID != nil {
		return s.repo.GetLP(ctx, *req.LPID)
	}
	return s.repo.GetLPByBatch(ctx, req.BatchNumber)
}

// unionAffected merges root and both trace node sets, deduplicated by LP id.
// An LP present in both traces contributes exactly once.
func unionAffected(root domain.LicensePlate, backward, forward []domain.TraceNode) []domain.LicensePlate {
	seen := map[uuid.UUID]bool{root.ID: true}
	affected := []domain.LicensePlate{root}
	for _, nodes := range [][]domain.TraceNode{backward, forward} {
		for _, node := range nodes {
			if seen[node.LP.ID] {
				continue
			}
			seen[node.LP.ID] = true
			affected = append(affected, node.LP)
		}
	}
	return affected
}
