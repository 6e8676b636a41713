package trace

import (
	"sort"

	"github.com/google/uuid"

	"github.com/mfgpilot/traceability/internal/domain"
)

// BuildTree nests the flat node set under the root. Each node hangs under the
// parent on its first-reaching edge; nodes reached by several parents appear
// once, with the remaining parents already recorded on AlternatePaths by the
// traversal engine. A node whose first-reaching parent is absent from the
// node set (a shipped LP filtered from the result) attaches under the root
// with its provenance edge intact, so every counted node is reachable in the
// tree. Children are ordered by LP number so output is stable.
func BuildTree(root domain.LicensePlate, direction domain.TraceDirection, nodes []domain.TraceNode) *domain.TraceTree {
	children := make(map[uuid.UUID][]*domain.TraceTree)
	byID := make(map[uuid.UUID]*domain.TraceTree, len(nodes))

	for i := range nodes {
		node := nodes[i]
		tree := &domain.TraceTree{Node: node}
		byID[node.LP.ID] = tree

		parent := parentID(node, direction)
		children[parent] = append(children[parent], tree)
	}

	var orphans []*domain.TraceTree
	for parent, group := range children {
		if parent == root.ID {
			continue
		}
		if _, ok := byID[parent]; !ok {
			orphans = append(orphans, group...)
			delete(children, parent)
		}
	}
	children[root.ID] = append(children[root.ID], orphans...)

	for _, group := range children {
		sort.Slice(group, func(i, j int) bool {
			return group[i].Node.LP.LPNumber < group[j].Node.LP.LPNumber
		})
	}

	var attach func(id uuid.UUID) []*domain.TraceTree
	attach = func(id uuid.UUID) []*domain.TraceTree {
		group := children[id]
		for _, child := range group {
			child.Children = attach(child.Node.LP.ID)
		}
		return group
	}

	rootTree := &domain.TraceTree{
		Node: domain.TraceNode{LP: root, Depth: 0, Relation: direction},
	}
	rootTree.Children = attach(root.ID)
	return rootTree
}

// Summarize computes the flat summary of a trace. TotalNodes excludes the
// root; MaxDepthReached reflects the nodes actually included.
func Summarize(nodes []domain.TraceNode, truncated bool) domain.TraceSummary {
	maxDepth := 0
	for _, node := range nodes {
		if node.Depth > maxDepth {
			maxDepth = node.Depth
		}
	}
	return domain.TraceSummary{
		TotalNodes:      len(nodes),
		MaxDepthReached: maxDepth,
		Truncated:       truncated,
	}
}

// parentID returns the node the edge was followed from: the input side on a
// forward trace, the output side on a backward trace.
func parentID(node domain.TraceNode, direction domain.TraceDirection) uuid.UUID {
	if node.Edge == nil {
		return uuid.Nil
	}
	if direction == domain.TraceForward {
		return node.Edge.InputLPID
	}
	return node.Edge.OutputLPID
}
