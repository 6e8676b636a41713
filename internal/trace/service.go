package trace

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mfgpilot/traceability/internal/domain"
	"github.com/mfgpilot/traceability/internal/repository"
	"github.com/mfgpilot/traceability/internal/traversal"
)

// DefaultMaxDepth bounds a trace when the caller does not specify one.
const DefaultMaxDepth = 20

// Request describes one trace. The root is identified by LP id or by batch
// number; exactly one must be present (the LP id wins when both are given).
type Request struct {
	Direction       domain.TraceDirection
	LPID            *uuid.UUID
	BatchNumber     string
	MaxDepth        int
	IncludeShipped  bool
	IncludeReversed bool
}

// Service is the public entry point for forward and backward traces.
type Service struct {
	repo   repository.LineageRepository
	engine *traversal.Engine
}

// NewService creates a trace service over the given lineage store.
func NewService(repo repository.LineageRepository) *Service {
	return &Service{
		repo:   repo,
		engine: traversal.NewEngine(repo),
	}
}

// Trace runs a single forward or backward trace and builds the nested tree.
func (s *Service) Trace(ctx context.Context, req Request) (*domain.TraceResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	root, err := s.resolveRoot(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Traverse(ctx, root, traversal.Options{
		Direction:       req.Direction,
		MaxDepth:        req.MaxDepth,
		IncludeShipped:  req.IncludeShipped,
		IncludeReversed: req.IncludeReversed,
	})
	if err != nil {
		return nil, err
	}

	return &domain.TraceResult{
		RootLP:    root,
		Direction: req.Direction,
		Tree:      BuildTree(root, req.Direction, result.Nodes),
		Nodes:     result.Nodes,
		Summary:   Summarize(result.Nodes, result.Truncated),
		TimedOut:  result.TimedOut,
	}, nil
}

// FullTreeResult carries both sides of the lineage of one LP.
type FullTreeResult struct {
	RootLP      domain.LicensePlate `json:"root_lp"`
	Ancestors   *domain.TraceResult `json:"ancestors"`
	Descendants *domain.TraceResult `json:"descendants"`
}

// FullTree traces both directions from the same root concurrently.
func (s *Service) FullTree(ctx context.Context, req Request) (*FullTreeResult, error) {
	backward := req
	backward.Direction = domain.TraceBackward
	forward := req
	forward.Direction = domain.TraceForward

	if err := validate(backward); err != nil {
		return nil, err
	}

	root, err := s.resolveRoot(ctx, req)
	if err != nil {
		return nil, err
	}
	id := root.ID
	backward.LPID, backward.BatchNumber = &id, ""
	forward.LPID, forward.BatchNumber = &id, ""

	var ancestors, descendants *domain.TraceResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ancestors, err = s.Trace(gctx, backward)
		return err
	})
	g.Go(func() error {
		var err error
		descendants, err = s.Trace(gctx, forward)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &FullTreeResult{RootLP: root, Ancestors: ancestors, Descendants: descendants}, nil
}

// WorkOrderGenealogy groups the genealogy links recorded under one work-order
// or process reference by operation type.
type WorkOrderGenealogy struct {
	Reference string                 `json:"reference"`
	Consume   []domain.GenealogyLink `json:"consume"`
	Output    []domain.GenealogyLink `json:"output"`
	Split     []domain.GenealogyLink `json:"split"`
	Merge     []domain.GenealogyLink `json:"merge"`
}

// WorkOrderGenealogy returns every non-reversed link created under the given
// reference, grouped by how it was produced.
func (s *Service) WorkOrderGenealogy(ctx context.Context, reference string) (*WorkOrderGenealogy, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", domain.ErrInvalidInput)
	}

	links, err := s.repo.GetLinksByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	result := &WorkOrderGenealogy{
		Reference: reference,
		Consume:   []domain.GenealogyLink{},
		Output:    []domain.GenealogyLink{},
		Split:     []domain.GenealogyLink{},
		Merge:     []domain.GenealogyLink{},
	}
	for _, link := range links {
		switch link.OperationType {
		case domain.LinkOperationConsume:
			result.Consume = append(result.Consume, link)
		case domain.LinkOperationOutput:
			result.Output = append(result.Output, link)
		case domain.LinkOperationSplit:
			result.Split = append(result.Split, link)
		case domain.LinkOperationMerge:
			result.Merge = append(result.Merge, link)
		}
	}
	return result, nil
}

func validate(req Request) error {
	if !req.Direction.Valid() {
		return fmt.Errorf("%w: direction must be forward or backward, got %q", domain.ErrInvalidInput, req.Direction)
	}
	if req.LPID == nil && strings.TrimSpace(req.BatchNumber) == "" {
		return fmt.Errorf("%w: either lp_id or batch_number is required", domain.ErrInvalidInput)
	}
	if req.MaxDepth <= 0 {
		return fmt.Errorf("%w: max_depth must be positive, got %d", domain.ErrInvalidInput, req.MaxDepth)
	}
	return nil
}

func (s *Service) resolveRoot(ctx context.Context, req Request) (domain.LicensePlate, error) {
	if req.LPID != nil {
		return s.repo.GetLP(ctx, *req.LPID)
	}
	return s.repo.GetLPByBatch(ctx, strings.TrimSpace(req.BatchNumber))
}
