package domain

// TraceDirection selects which side of the lineage graph a trace walks.
type TraceDirection string

const (
	// TraceForward walks descendants: everything produced, directly or
	// transitively, using the root LP.
	TraceForward TraceDirection = "forward"
	// TraceBackward walks ancestors: everything consumed to produce the
	// root LP.
	TraceBackward TraceDirection = "backward"
)

// Valid reports whether d is a known direction.
func (d TraceDirection) Valid() bool {
	return d == TraceForward || d == TraceBackward
}

// TraceNode is one LP reached during a traversal: its snapshot, the depth at
// which it was first reached, the edge that reached it first, and every other
// edge that also reached it (diamond-shaped provenance). Nodes are transient;
// they exist only for the duration of one trace call.
type TraceNode struct {
	LP             LicensePlate    `json:"lp"`
	Depth          int             `json:"depth"`
	Edge           *GenealogyLink  `json:"edge,omitempty"`
	AlternatePaths []GenealogyLink `json:"alternate_paths,omitempty"`
	Relation       TraceDirection  `json:"relation"`
}

// TraceTree is the nested form of a trace: each node carries the children it
// directly reached. A node with multiple parents appears once, under its
// first-reached parent; the other parents are kept on AlternatePaths.
type TraceTree struct {
	Node     TraceNode    `json:"node"`
	Children []*TraceTree `json:"children,omitempty"`
}

// TraceSummary describes the flat shape of a trace result. TotalNodes
// excludes the root. MaxDepthReached is the greatest depth actually observed,
// not the configured bound.
type TraceSummary struct {
	TotalNodes      int  `json:"total_nodes"`
	MaxDepthReached int  `json:"max_depth_reached"`
	Truncated       bool `json:"truncated"`
}

// TraceResult is the full answer to one forward or backward trace.
type TraceResult struct {
	RootLP    LicensePlate   `json:"root_lp"`
	Direction TraceDirection `json:"direction"`
	Tree      *TraceTree     `json:"trace_tree"`
	Nodes     []TraceNode    `json:"nodes"`
	Summary   TraceSummary   `json:"summary"`
	// TimedOut marks a trace whose deadline expired mid-level. The nodes
	// present are complete up to the last fully expanded depth.
	TimedOut bool `json:"timed_out,omitempty"`
}
