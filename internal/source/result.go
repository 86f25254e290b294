package source

import (
	"time"

	"github.com/graphlore/graphlore/internal/types"
)

// ProcessingResult is the aggregate outcome of running one DataSource through
// the pipeline. When Success is false, Chunks and Relations may be partially
// populated but must not be treated as durably stored.
type ProcessingResult struct {
	SourceID     types.ID             `json:"source_id"`
	Success      bool                 `json:"success"`
	Chunks       []*ProcessedChunk    `json:"chunks,omitempty"`
	Relations    []*ExtractedRelation `json:"relations,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
	FailedStage  string               `json:"failed_stage,omitempty"`
	Metadata     map[string]any       `json:"metadata,omitempty"`
	CompletedAt  time.Time            `json:"completed_at"`
}

// NewProcessingResult creates a successful empty result for the given source.
func NewProcessingResult(sourceID types.ID) *ProcessingResult {
	return &ProcessingResult{
		SourceID:    sourceID,
		Success:     true,
		Metadata:    make(map[string]any),
		CompletedAt: time.Now(),
	}
}

// FailedResult creates a failed result carrying the stage and error message.
func FailedResult(sourceID types.ID, stage string, err error) *ProcessingResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &ProcessingResult{
		SourceID:     sourceID,
		Success:      false,
		ErrorMessage: msg,
		FailedStage:  stage,
		Metadata:     make(map[string]any),
		CompletedAt:  time.Now(),
	}
}

// WithChunks sets the extracted chunks.
// Returns the result for method chaining.
func (r *ProcessingResult) WithChunks(chunks []*ProcessedChunk) *ProcessingResult {
	r.Chunks = chunks
	return r
}

// WithRelations sets the extracted relations.
// Returns the result for method chaining.
func (r *ProcessingResult) WithRelations(relations []*ExtractedRelation) *ProcessingResult {
	r.Relations = relations
	return r
}

// WithMetadata sets a metadata entry on the result.
// Returns the result for method chaining.
func (r *ProcessingResult) WithMetadata(key string, value any) *ProcessingResult {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
	return r
}

// ChunkCount returns the number of extracted chunks.
func (r *ProcessingResult) ChunkCount() int {
	return len(r.Chunks)
}

// RelationCount returns the number of extracted relations.
func (r *ProcessingResult) RelationCount() int {
	return len(r.Relations)
}
