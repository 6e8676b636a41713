package trace

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfgpilot/traceability/internal/domain"
)

type stubLineageRepo struct {
	plates  map[uuid.UUID]domain.LicensePlate
	links   []domain.GenealogyLink
	refs    map[string][]domain.GenealogyLink
	linkErr error
}

func (s *stubLineageRepo) GetLP(ctx context.Context, id uuid.UUID) (domain.LicensePlate, error) {
	lp, ok := s.plates[id]
	if !ok {
		return domain.LicensePlate{}, fmt.Errorf("%w: lp %s", domain.ErrNotFound, id)
	}
	return lp, nil
}

func (s *stubLineageRepo) GetLPByBatch(ctx context.Context, batchNumber string) (domain.LicensePlate, error) {
	for _, lp := range s.plates {
		if lp.BatchNumber == batchNumber {
			return lp, nil
		}
	}
	return domain.LicensePlate{}, fmt.Errorf("%w: batch %s", domain.ErrNotFound, batchNumber)
}

func (s *stubLineageRepo) GetLPsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.LicensePlate, error) {
	var plates []domain.LicensePlate
	for _, id := range ids {
		if lp, ok := s.plates[id]; ok {
			plates = append(plates, lp)
		}
	}
	return plates, nil
}

func (s *stubLineageRepo) GetOutputsOf(ctx context.Context, inputIDs []uuid.UUID, includeReversed bool) ([]domain.GenealogyLink, error) {
	return s.selectLinks(inputIDs, includeReversed, true)
}

func (s *stubLineageRepo) GetInputsOf(ctx context.Context, outputIDs []uuid.UUID, includeReversed bool) ([]domain.GenealogyLink, error) {
	return s.selectLinks(outputIDs, includeReversed, false)
}

func (s *stubLineageRepo) selectLinks(ids []uuid.UUID, includeReversed, byInput bool) ([]domain.GenealogyLink, error) {
	if s.linkErr != nil {
		return nil, s.linkErr
	}
	idSet := map[uuid.UUID]bool{}
	for _, id := range ids {
		idSet[id] = true
	}
	var links []domain.GenealogyLink
	for _, link := range s.links {
		if link.IsReversed && !includeReversed {
			continue
		}
		side := link.OutputLPID
		if byInput {
			side = link.InputLPID
		}
		if idSet[side] {
			links = append(links, link)
		}
	}
	return links, nil
}

func (s *stubLineageRepo) GetShipmentsOf(ctx context.Context, lpIDs []uuid.UUID) ([]domain.ShipmentRecord, error) {
	return []domain.ShipmentRecord{}, nil
}

func (s *stubLineageRepo) GetWarehouses(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Warehouse, error) {
	return map[uuid.UUID]domain.Warehouse{}, nil
}

func (s *stubLineageRepo) GetLinksByReference(ctx context.Context, reference string) ([]domain.GenealogyLink, error) {
	return s.refs[reference], nil
}

func testPlate(number, batch string) domain.LicensePlate {
	return domain.LicensePlate{
		ID:          uuid.New(),
		LPNumber:    number,
		BatchNumber: batch,
		Quantity:    decimal.NewFromInt(5),
		Status:      domain.LPStatusAvailable,
	}
}

func testLink(input, output domain.LicensePlate) domain.GenealogyLink {
	return domain.GenealogyLink{
		ID:            uuid.New(),
		InputLPID:     input.ID,
		OutputLPID:    output.ID,
		OperationType: domain.LinkOperationConsume,
		LinkedAt:      time.Now(),
	}
}

func TestTraceValidation(t *testing.T) {
	service := NewService(&stubLineageRepo{plates: map[uuid.UUID]domain.LicensePlate{}})
	id := uuid.New()

	cases := []struct {
		name string
		req  Request
	}{
		{"bad direction", Request{Direction: "up", LPID: &id, MaxDepth: 5}},
		{"missing root", Request{Direction: domain.TraceForward, MaxDepth: 5}},
		{"zero depth", Request{Direction: domain.TraceForward, LPID: &id}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Trace(context.Background(), tc.req); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestTraceUnknownRoot(t *testing.T) {
	service := NewService(&stubLineageRepo{plates: map[uuid.UUID]domain.LicensePlate{}})
	id := uuid.New()

	_, err := service.Trace(context.Background(), Request{
		Direction: domain.TraceForward, LPID: &id, MaxDepth: 5,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTraceResolvesRootByBatch(t *testing.T) {
	root := testPlate("LP-1", "BATCH-42")
	child := testPlate("LP-2", "BATCH-43")
	repo := &stubLineageRepo{
		plates: map[uuid.UUID]domain.LicensePlate{root.ID: root, child.ID: child},
		links:  []domain.GenealogyLink{testLink(root, child)},
	}
	service := NewService(repo)

	result, err := service.Trace(context.Background(), Request{
		Direction:      domain.TraceForward,
		BatchNumber:    "BATCH-42",
		MaxDepth:       DefaultMaxDepth,
		IncludeShipped: true,
	})
	if err != nil {
		t.Fatalf("trace returned error: %v", err)
	}
	if result.RootLP.ID != root.ID {
		t.Fatalf("expected root resolved by batch, got %s", result.RootLP.LPNumber)
	}
	if result.Summary.TotalNodes != 1 || result.Summary.MaxDepthReached != 1 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if len(result.Tree.Children) != 1 || result.Tree.Children[0].Node.LP.ID != child.ID {
		t.Fatalf("expected one child under root")
	}
}

func TestTraceLPIDWinsOverBatch(t *testing.T) {
	byID := testPlate("LP-1", "BATCH-A")
	byBatch := testPlate("LP-2", "BATCH-B")
	repo := &stubLineageRepo{
		plates: map[uuid.UUID]domain.LicensePlate{byID.ID: byID, byBatch.ID: byBatch},
	}
	service := NewService(repo)

	result, err := service.Trace(context.Background(), Request{
		Direction:   domain.TraceForward,
		LPID:        &byID.ID,
		BatchNumber: "BATCH-B",
		MaxDepth:    5,
	})
	if err != nil {
		t.Fatalf("trace returned error: %v", err)
	}
	if result.RootLP.ID != byID.ID {
		t.Fatalf("expected lp_id to win over batch_number")
	}
}

func TestTraceShippedParentKeepsChildInTree(t *testing.T) {
	a := testPlate("LP-A", "B1")
	b := testPlate("LP-B", "B2")
	b.Status = domain.LPStatusShipped
	c := testPlate("LP-C", "B3")
	repo := &stubLineageRepo{
		plates: map[uuid.UUID]domain.LicensePlate{a.ID: a, b.ID: b, c.ID: c},
		links:  []domain.GenealogyLink{testLink(a, b), testLink(b, c)},
	}
	service := NewService(repo)

	result, err := service.Trace(context.Background(), Request{
		Direction:      domain.TraceForward,
		LPID:           &a.ID,
		MaxDepth:       DefaultMaxDepth,
		IncludeShipped: false,
	})
	if err != nil {
		t.Fatalf("trace returned error: %v", err)
	}

	// B is filtered out; C must still hang off the tree, not just be counted.
	if result.Summary.TotalNodes != 1 {
		t.Fatalf("expected 1 node in summary, got %d", result.Summary.TotalNodes)
	}
	if len(result.Tree.Children) != 1 {
		t.Fatalf("expected C attached under root, got %d children", len(result.Tree.Children))
	}
	child := result.Tree.Children[0]
	if child.Node.LP.ID != c.ID {
		t.Fatalf("expected C under root, got %s", child.Node.LP.LPNumber)
	}
	if child.Node.Edge == nil || child.Node.Edge.InputLPID != b.ID {
		t.Fatalf("expected provenance edge through the filtered parent kept")
	}
}

func TestFullTreeTracesBothDirections(t *testing.T) {
	raw := testPlate("LP-RAW", "B1")
	root := testPlate("LP-ROOT", "B2")
	child := testPlate("LP-CHILD", "B3")
	repo := &stubLineageRepo{
		plates: map[uuid.UUID]domain.LicensePlate{raw.ID: raw, root.ID: root, child.ID: child},
		links:  []domain.GenealogyLink{testLink(raw, root), testLink(root, child)},
	}
	service := NewService(repo)

	result, err := service.FullTree(context.Background(), Request{
		LPID:           &root.ID,
		MaxDepth:       DefaultMaxDepth,
		IncludeShipped: true,
	})
	if err != nil {
		t.Fatalf("full tree returned error: %v", err)
	}
	if result.Ancestors.Summary.TotalNodes != 1 || result.Ancestors.Nodes[0].LP.ID != raw.ID {
		t.Fatalf("expected raw on the ancestor side")
	}
	if result.Descendants.Summary.TotalNodes != 1 || result.Descendants.Nodes[0].LP.ID != child.ID {
		t.Fatalf("expected child on the descendant side")
	}
}

func TestFullTreeStoreErrorFailsBothSides(t *testing.T) {
	root := testPlate("LP-ROOT", "B1")
	repo := &stubLineageRepo{
		plates:  map[uuid.UUID]domain.LicensePlate{root.ID: root},
		linkErr: fmt.Errorf("%w: boom", domain.ErrStoreUnavailable),
	}
	service := NewService(repo)

	_, err := service.FullTree(context.Background(), Request{
		LPID: &root.ID, MaxDepth: 5,
	})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestWorkOrderGenealogyGroupsByOperation(t *testing.T) {
	a := testPlate("LP-A", "B1")
	b := testPlate("LP-B", "B2")
	consume := testLink(a, b)
	consume.Reference = "WO-100"
	split := testLink(a, b)
	split.Reference = "WO-100"
	split.OperationType = domain.LinkOperationSplit
	repo := &stubLineageRepo{
		refs: map[string][]domain.GenealogyLink{"WO-100": {consume, split}},
	}
	service := NewService(repo)

	result, err := service.WorkOrderGenealogy(context.Background(), "WO-100")
	if err != nil {
		t.Fatalf("work order genealogy returned error: %v", err)
	}
	if len(result.Consume) != 1 || len(result.Split) != 1 || len(result.Output) != 0 || len(result.Merge) != 0 {
		t.Fatalf("unexpected grouping: %+v", result)
	}
}

func TestWorkOrderGenealogyRequiresReference(t *testing.T) {
	service := NewService(&stubLineageRepo{})
	if _, err := service.WorkOrderGenealogy(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
