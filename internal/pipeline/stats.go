package pipeline

import "sync/atomic"

// Stats tracks ingestion counters for one orchestrator instance. All fields
// are updated atomically so concurrent batch workers can share it.
type Stats struct {
	sourcesProcessed    atomic.Int64
	sourcesFailed       atomic.Int64
	sourcesSkipped      atomic.Int64
	chunksExtracted     atomic.Int64
	relationsExtracted  atomic.Int64
	embeddingsGenerated atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	SourcesProcessed    int64 `json:"sources_processed"`
	SourcesFailed       int64 `json:"sources_failed"`
	SourcesSkipped      int64 `json:"sources_skipped"`
	ChunksExtracted     int64 `json:"chunks_extracted"`
	RelationsExtracted  int64 `json:"relations_extracted"`
	EmbeddingsGenerated int64 `json:"embeddings_generated"`
}

// Snapshot returns a consistent-enough copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		SourcesProcessed:    s.sourcesProcessed.Load(),
		SourcesFailed:       s.sourcesFailed.Load(),
		SourcesSkipped:      s.sourcesSkipped.Load(),
		ChunksExtracted:     s.chunksExtracted.Load(),
		RelationsExtracted:  s.relationsExtracted.Load(),
		EmbeddingsGenerated: s.embeddingsGenerated.Load(),
	}
}
