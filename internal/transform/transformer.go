// Package transform splits loaded text into semantically meaningful chunks
// and extracts structural relations. Transformers are selected through an
// ordered first-match registry mirroring the loader registry; the generic
// transformer sits last and accepts everything, so selection is total for
// any loaded source.
package transform

import (
	"context"

	"github.com/graphlore/graphlore/internal/source"
)

// Transformer turns loaded raw text into chunks and relations.
// Implementations must be safe for concurrent use. A transformer must never
// silently drop content: every non-empty input produces at least one chunk.
type Transformer interface {
	// Name returns a short identifier for logging and diagnostics.
	Name() string

	// CanHandle reports whether this transformer applies to the source.
	CanHandle(src *source.DataSource) bool

	// Transform splits content into chunks and extracts relations.
	Transform(ctx context.Context, src *source.DataSource, content string) (*source.ProcessingResult, error)
}
