// Package store persists processing results. The vector store holds chunks
// and embeddings in SQLite with the sqlite-vec extension; the graph store
// mirrors sources, chunks and extracted relations into Neo4j. The hybrid
// storer writes to both concurrently.
package store

import (
	"context"

	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/types"
)

// Storer persists the chunks and relations of one processing result.
// Implementations must be thread-safe for concurrent access.
type Storer interface {
	// Name returns the storer identifier used in per-sink results.
	Name() string

	// Store persists the result for the given source. Chunks without
	// embeddings are stored too; they simply never match similarity search.
	Store(ctx context.Context, src *source.DataSource, result *source.ProcessingResult) (*StoreResult, error)

	// Health returns the health status of the backing store.
	Health(ctx context.Context) types.HealthStatus
}

// StoreResult reports what one Store call persisted, per sink.
type StoreResult struct {
	ChunksStored    int                   `json:"chunks_stored"`
	RelationsStored int                   `json:"relations_stored"`
	Sinks           map[string]SinkResult `json:"sinks,omitempty"`
}

// SinkResult is the per-sink outcome of a hybrid write.
type SinkResult struct {
	ChunksStored    int    `json:"chunks_stored"`
	RelationsStored int    `json:"relations_stored"`
	Error           string `json:"error,omitempty"`
}

// NewStoreResult creates an empty StoreResult.
func NewStoreResult() *StoreResult {
	return &StoreResult{Sinks: make(map[string]SinkResult)}
}

// AddSink records a sink outcome and folds its counts into the totals.
func (r *StoreResult) AddSink(name string, sink SinkResult) *StoreResult {
	if r.Sinks == nil {
		r.Sinks = make(map[string]SinkResult)
	}
	r.Sinks[name] = sink
	r.ChunksStored += sink.ChunksStored
	r.RelationsStored += sink.RelationsStored
	return r
}

// NewStorageError wraps a persistence failure. Storage failures are
// retryable.
func NewStorageError(message string, cause error) *types.CodedError {
	err := types.WrapError(types.STORAGE_FAILED, message, cause)
	err.Retryable = true
	return err
}
