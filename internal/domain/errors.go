package domain

import "errors"

// Error taxonomy for trace and recall operations. Callers map these to
// transport status codes; everything else is treated as internal.
var (
	// ErrNotFound indicates the root LP could not be resolved.
	ErrNotFound = errors.New("license plate not found")

	// ErrInvalidInput indicates a malformed request (missing root identifier,
	// non-positive max depth, conflicting flags).
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable indicates the lineage store failed to answer a
	// query. Traces are not retried internally; the caller may retry the
	// whole operation.
	ErrStoreUnavailable = errors.New("lineage store unavailable")

	// ErrPartialTraceTimeout indicates a traversal deadline expired
	// mid-level. A plain trace still returns the nodes gathered so far with
	// Truncated set; a recall simulation converts this into a hard failure.
	ErrPartialTraceTimeout = errors.New("trace deadline exceeded")

	// ErrAggregationFailure indicates recall aggregation could not complete
	// because supporting data (shipments, warehouses) was missing or
	// unreadable.
	ErrAggregationFailure = errors.New("aggregation failure")
)
