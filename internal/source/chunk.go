package source

import (
	"fmt"
	"time"

	"github.com/graphlore/graphlore/internal/types"
)

// ChunkType classifies what a processed chunk represents.
type ChunkType string

const (
	ChunkTypeText            ChunkType = "TEXT"
	ChunkTypeCodeFunction    ChunkType = "CODE_FUNCTION"
	ChunkTypeCodeClass       ChunkType = "CODE_CLASS"
	ChunkTypeCodeModule      ChunkType = "CODE_MODULE"
	ChunkTypeSQLTable        ChunkType = "SQL_TABLE"
	ChunkTypeSQLSchema       ChunkType = "SQL_SCHEMA"
	ChunkTypeAPIEndpoint     ChunkType = "API_ENDPOINT"
	ChunkTypeDocumentSection ChunkType = "DOCUMENT_SECTION"
)

// String returns the string representation of ChunkType.
func (ct ChunkType) String() string {
	return string(ct)
}

// IsValid checks if the ChunkType is a known value.
func (ct ChunkType) IsValid() bool {
	switch ct {
	case ChunkTypeText, ChunkTypeCodeFunction, ChunkTypeCodeClass,
		ChunkTypeCodeModule, ChunkTypeSQLTable, ChunkTypeSQLSchema,
		ChunkTypeAPIEndpoint, ChunkTypeDocumentSection:
		return true
	default:
		return false
	}
}

// ProcessedChunk is one text span produced by a transformer. The embedding is
// populated by a later pipeline stage; it is either nil or has the embedding
// provider's fixed dimensionality. Chunks are never mutated after storage.
type ProcessedChunk struct {
	ID        types.ID       `json:"id"`
	SourceID  types.ID       `json:"source_id"`
	Type      ChunkType      `json:"chunk_type"`
	Content   string         `json:"content"`
	Title     string         `json:"title,omitempty"`
	Summary   string         `json:"summary,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float64      `json:"embedding,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewChunk creates a ProcessedChunk owned by the given source.
func NewChunk(sourceID types.ID, chunkType ChunkType, content string) *ProcessedChunk {
	return &ProcessedChunk{
		ID:        types.NewID(),
		SourceID:  sourceID,
		Type:      chunkType,
		Content:   content,
		Metadata:  make(map[string]any),
		CreatedAt: time.Now(),
	}
}

// WithTitle sets the chunk title.
// Returns the chunk for method chaining.
func (c *ProcessedChunk) WithTitle(title string) *ProcessedChunk {
	c.Title = title
	return c
}

// WithSummary sets the chunk summary.
// Returns the chunk for method chaining.
func (c *ProcessedChunk) WithSummary(summary string) *ProcessedChunk {
	c.Summary = summary
	return c
}

// WithMetadata sets a metadata entry on the chunk.
// Returns the chunk for method chaining.
func (c *ProcessedChunk) WithMetadata(key string, value any) *ProcessedChunk {
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	c.Metadata[key] = value
	return c
}

// WithEmbedding sets the embedding vector for the chunk.
// Returns the chunk for method chaining.
func (c *ProcessedChunk) WithEmbedding(embedding []float64) *ProcessedChunk {
	c.Embedding = embedding
	return c
}

// HasEmbedding reports whether an embedding has been attached.
func (c *ProcessedChunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// Validate validates the ProcessedChunk fields.
func (c *ProcessedChunk) Validate() error {
	if err := c.ID.Validate(); err != nil {
		return fmt.Errorf("invalid chunk ID: %w", err)
	}
	if err := c.SourceID.Validate(); err != nil {
		return fmt.Errorf("invalid chunk source ID: %w", err)
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid chunk type: %s", c.Type)
	}
	if c.Content == "" {
		return fmt.Errorf("chunk content cannot be empty")
	}
	return nil
}
