// Package loader resolves DataSources to raw text. Loaders are selected
// through an ordered first-match registry so that format-aware loaders
// (document, code, SQL, web) take precedence over the generic file and
// inline-content fallbacks.
package loader

import (
	"context"

	"github.com/graphlore/graphlore/internal/source"
)

// Loader produces raw text from a data source.
// Implementations must be safe for concurrent use.
type Loader interface {
	// Name returns a short identifier for logging and diagnostics.
	Name() string

	// CanHandle reports whether this loader can load the given source.
	CanHandle(src *source.DataSource) bool

	// Load resolves the source to text. Loaders may annotate the source's
	// metadata (e.g. detected language, document title) as a side effect.
	Load(ctx context.Context, src *source.DataSource) (string, error)
}
