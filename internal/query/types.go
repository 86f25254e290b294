// Package query runs the GraphRAG query lifecycle: merge prior-turn
// context, retrieve candidate chunks from the vector and graph stores,
// synthesize an answer, and cache the response for follow-up queries.
package query

import (
	"time"

	"github.com/graphlore/graphlore/internal/types"
)

// Request is a natural-language query against ingested sources.
type Request struct {
	// Question is the natural-language question text.
	Question string `json:"question"`

	// SourceIDs restricts retrieval to the given sources. Every listed
	// source must exist and be active; any unknown or inactive source
	// aborts the whole query.
	SourceIDs []string `json:"source_ids,omitempty"`

	// Timeout caps the whole query lifecycle. Zero uses the orchestrator
	// default.
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxResults caps retrieved chunks. Zero uses the orchestrator default.
	MaxResults int `json:"max_results,omitempty"`

	// IncludeEvidence requests evidence anchors in the response.
	IncludeEvidence bool `json:"include_evidence,omitempty"`

	// ContextQueryID continues a prior query: its cached summary, related
	// entities and next actions are stuffed into the question as context
	// blocks before retrieval.
	ContextQueryID string `json:"context_query_id,omitempty"`
}

// Validate checks that the request is processable.
func (r Request) Validate() error {
	if r.Question == "" {
		return types.NewError(types.QUERY_PROCESSING_ERROR, "question cannot be empty")
	}
	return nil
}

// Entity is a graph entity related to the answer.
type Entity struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// EvidenceAnchor points at a stored chunk backing the answer.
type EvidenceAnchor struct {
	ChunkID    string  `json:"chunk_id"`
	SourceID   string  `json:"source_id"`
	Title      string  `json:"title,omitempty"`
	Ref        string  `json:"ref"`
	Similarity float64 `json:"similarity"`
}

// Response is the complete structured answer to one query.
type Response struct {
	QueryID         string           `json:"query_id"`
	Summary         string           `json:"summary"`
	RelatedEntities []Entity         `json:"related_entities,omitempty"`
	Evidence        []EvidenceAnchor `json:"evidence,omitempty"`
	NextActions     []string         `json:"next_actions,omitempty"`
	Confidence      float64          `json:"confidence"`
	ProcessingTime  time.Duration    `json:"processing_time"`
}

// EventType discriminates streaming events.
type EventType string

const (
	EventTextDelta EventType = "text_delta"
	EventStatus    EventType = "status"
	EventEntity    EventType = "entity"
	EventMetadata  EventType = "metadata"
	EventDone      EventType = "done"
	EventError     EventType = "error"
)

// Event is one element of a streamed query response. Exactly one of the
// payload fields is set, matching Type.
type Event struct {
	Type         EventType       `json:"type"`
	Delta        string          `json:"delta,omitempty"`
	Status       string          `json:"status,omitempty"`
	Entity       *Entity         `json:"entity,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
	Response     *Response       `json:"response,omitempty"`
	ErrorCode    types.ErrorCode `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}
