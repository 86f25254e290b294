package graph

import "github.com/graphlore/graphlore/internal/types"

// Graph database error codes. Connection and query failures are surfaced to
// the pipeline as STORAGE_FAILED through the graph store; these finer codes
// stay available for callers that talk to the client directly.
const (
	ErrCodeConnectionFailed types.ErrorCode = "GRAPH_CONNECTION_FAILED"
	ErrCodeConnectionClosed types.ErrorCode = "GRAPH_CONNECTION_CLOSED"
	ErrCodeInvalidConfig    types.ErrorCode = "GRAPH_INVALID_CONFIG"
	ErrCodeQueryFailed      types.ErrorCode = "GRAPH_QUERY_FAILED"
	ErrCodeWriteFailed      types.ErrorCode = "GRAPH_WRITE_FAILED"
)
