package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphlore/graphlore/internal/source"
)

// GenericTransformer accepts every source and size-chunks its content into
// plain text chunks. Registered last, it makes transformer selection total.
type GenericTransformer struct {
	opts ChunkOptions
}

// NewGenericTransformer creates a GenericTransformer with default chunking
// options.
func NewGenericTransformer() *GenericTransformer {
	return &GenericTransformer{opts: ChunkOptions{ChunkSize: DefaultChunkSize, Overlap: DefaultChunkOverlap}}
}

// WithChunkOptions overrides the chunking options.
// Returns the transformer for method chaining.
func (t *GenericTransformer) WithChunkOptions(opts ChunkOptions) *GenericTransformer {
	t.opts = opts
	return t
}

// Name returns the transformer identifier.
func (t *GenericTransformer) Name() string { return "generic" }

// CanHandle always reports true.
func (t *GenericTransformer) CanHandle(src *source.DataSource) bool {
	return true
}

// Transform size-chunks the content into text chunks.
func (t *GenericTransformer) Transform(ctx context.Context, src *source.DataSource, content string) (*source.ProcessingResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewTransformError(fmt.Sprintf("source %s has no content", src.Name), nil)
	}

	result := source.NewProcessingResult(src.ID)
	for i, piece := range ChunkBySize(content, t.opts) {
		result.Chunks = append(result.Chunks,
			source.NewChunk(src.ID, source.ChunkTypeText, piece).
				WithMetadata("piece", i))
	}
	result.WithMetadata("transformer", t.Name())
	return result, nil
}
