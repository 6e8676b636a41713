package traversal

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"

	"github.com/mfgpilot/traceability/internal/domain"
	"github.com/mfgpilot/traceability/internal/middleware"
	"github.com/mfgpilot/traceability/internal/repository"
)

// Options bound one traversal.
type Options struct {
	Direction       domain.TraceDirection
	MaxDepth        int
	IncludeShipped  bool
	IncludeReversed bool
}

// Result is the flat outcome of one traversal. Nodes excludes the root.
// TimedOut is set when the context deadline expired mid-level: the nodes
// gathered so far are returned with Truncated set instead of failing, and it
// is the caller's decision whether a partial trace is acceptable.
type Result struct {
	Nodes     []domain.TraceNode
	Truncated bool
	TimedOut  bool
}

// Engine walks the lineage graph breadth first, one full frontier per
// round trip to the store. The visited set guards against cycles and against
// fan-in duplication: a node is expanded once no matter how many paths reach
// it, which bounds diamond-shaped genealogies to O(nodes) rather than
// O(paths).
type Engine struct {
	repo repository.LineageRepository
}

// NewEngine creates a traversal engine over the given lineage store.
func NewEngine(repo repository.LineageRepository) *Engine {
	return &Engine{repo: repo}
}

// Traverse expands the lineage graph from root in the configured direction.
// The root itself is not part of the result.
func (e *Engine) Traverse(ctx context.Context, root domain.LicensePlate, opts Options) (*Result, error) {
	if !opts.Direction.Valid() {
		return nil, fmt.Errorf("%w: unknown direction %q", domain.ErrInvalidInput, opts.Direction)
	}
	if opts.MaxDepth <= 0 {
		return nil, fmt.Errorf("%w: max depth must be positive, got %d", domain.ErrInvalidInput, opts.MaxDepth)
	}

	visited := map[uuid.UUID]*domain.TraceNode{root.ID: nil}
	var order []uuid.UUID
	frontier := []uuid.UUID{root.ID}
	depth := 0
	truncated := false
	timedOut := false

	for len(frontier) > 0 && depth < opts.MaxDepth {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				timedOut = true
				truncated = true
				break
			}
			return nil, fmt.Errorf("traverse %s from %s at depth %d: %w", opts.Direction, root.ID, depth, err)
		}

		links, err := e.fetchEdges(ctx, frontier, opts)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				timedOut = true
				truncated = true
				break
			}
			return nil, fmt.Errorf("traverse %s from %s at depth %d: %w", opts.Direction, root.ID, depth, err)
		}

		var next []uuid.UUID
		for i := range links {
			edge := links[i]
			neighbor := neighborID(edge, opts.Direction)

			if existing, seen := visited[neighbor]; seen {
				// Cycle or fan-in: keep the node, remember the extra edge as
				// provenance. Edges looping back to the root are dropped.
				if existing != nil {
					recordEdge(existing, edge, depth+1)
				}
				continue
			}

			node := &domain.TraceNode{
				Depth:    depth + 1,
				Edge:     &edge,
				Relation: opts.Direction,
			}
			visited[neighbor] = node
			order = append(order, neighbor)
			next = append(next, neighbor)
		}

		if err := e.loadSnapshots(ctx, next, visited); err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				timedOut = true
				truncated = true
				// Nodes without a snapshot cannot be reported; drop the
				// level that was being hydrated.
				for _, id := range next {
					delete(visited, id)
				}
				order = order[:len(order)-len(next)]
				break
			}
			return nil, fmt.Errorf("traverse %s from %s at depth %d: %w", opts.Direction, root.ID, depth, err)
		}

		frontier = next
		depth++
	}

	if depth == opts.MaxDepth && len(frontier) > 0 {
		truncated = true
	}

	nodes := make([]domain.TraceNode, 0, len(order))
	for _, id := range order {
		node := visited[id]
		if node == nil {
			continue
		}
		if !opts.IncludeShipped && node.LP.Status == domain.LPStatusShipped {
			// Shipped LPs are traversed through but filtered from the
			// result when the caller wants in-house inventory only.
			continue
		}
		nodes = append(nodes, *node)
	}

	return &Result{Nodes: nodes, Truncated: truncated, TimedOut: timedOut}, nil
}

func (e *Engine) fetchEdges(ctx context.Context, frontier []uuid.UUID, opts Options) ([]domain.GenealogyLink, error) {
	if opts.Direction == domain.TraceForward {
		return e.repo.GetOutputsOf(ctx, frontier, opts.IncludeReversed)
	}
	return e.repo.GetInputsOf(ctx, frontier, opts.IncludeReversed)
}

// loadSnapshots hydrates freshly discovered nodes in one batch, preferring
// the request-scoped dataloader when one is attached to the context.
func (e *Engine) loadSnapshots(ctx context.Context, ids []uuid.UUID, visited map[uuid.UUID]*domain.TraceNode) error {
	if len(ids) == 0 {
		return nil
	}

	loaded := make(map[uuid.UUID]domain.LicensePlate, len(ids))
	if loader := middleware.LPLoaderFromContext(ctx); loader != nil {
		keys := make(dataloader.Keys, len(ids))
		for i, id := range ids {
			keys[i] = dataloader.StringKey(id.String())
		}

		thunk := loader.LoadMany(ctx, keys)
		results, errs := thunk()
		if len(errs) > 0 {
			return errs[0]
		}
		for i, r := range results {
			if r != nil {
				if lp, ok := r.(domain.LicensePlate); ok {
					loaded[ids[i]] = lp
				}
			}
		}
	} else {
		plates, err := e.repo.GetLPsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, lp := range plates {
			loaded[lp.ID] = lp
		}
	}

	for _, id := range ids {
		lp, ok := loaded[id]
		if !ok {
			// Edge references an LP the store no longer returns; keep the
			// node so provenance is not lost, with only the id filled in.
			log.Printf("[TRACE] lp %s referenced by genealogy but missing from store", id)
			lp = domain.LicensePlate{ID: id}
		}
		visited[id].LP = lp
	}
	return nil
}

// recordEdge attaches an extra incoming edge to an already-visited node. If
// the edge arrives at the same depth as the node's first-reaching edge and is
// more recent, it becomes the primary edge and the old one moves to the
// alternates; otherwise it is recorded as an alternate path.
func recordEdge(node *domain.TraceNode, edge domain.GenealogyLink, depth int) {
	if node.Edge != nil && depth == node.Depth && edge.LinkedAt.After(node.Edge.LinkedAt) {
		node.AlternatePaths = append(node.AlternatePaths, *node.Edge)
		node.Edge = &edge
		return
	}
	node.AlternatePaths = append(node.AlternatePaths, edge)
}

func neighborID(edge domain.GenealogyLink, dir domain.TraceDirection) uuid.UUID {
	if dir == domain.TraceForward {
		return edge.OutputLPID
	}
	return edge.InputLPID
}

