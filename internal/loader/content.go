package loader

import (
	"context"

	"github.com/graphlore/graphlore/internal/source"
)

// ContentLoader is the terminal fallback for sources carrying inline content.
type ContentLoader struct{}

// NewContentLoader creates a ContentLoader.
func NewContentLoader() *ContentLoader {
	return &ContentLoader{}
}

// Name returns the loader identifier.
func (l *ContentLoader) Name() string { return "content" }

// CanHandle reports true for any source with inline content.
func (l *ContentLoader) CanHandle(src *source.DataSource) bool {
	return src.Content != ""
}

// Load returns the source's inline content as-is.
func (l *ContentLoader) Load(ctx context.Context, src *source.DataSource) (string, error) {
	return src.Content, nil
}
