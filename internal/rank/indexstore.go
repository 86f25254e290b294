package rank

import (
	"context"
	"strings"

	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/store"
	"github.com/graphlore/graphlore/internal/types"
)

// IndexStorer maintains the local full-text index as a storage sink, so
// ingestion keeps it in sync with the vector and graph stores.
type IndexStorer struct {
	index *Index
}

// NewIndexStorer wraps an index as a store.Storer.
func NewIndexStorer(index *Index) *IndexStorer {
	return &IndexStorer{index: index}
}

// Name returns the storer identifier used in per-sink results.
func (s *IndexStorer) Name() string { return "fulltext" }

// Store indexes one document per source path, concatenating the chunk
// contents. Path-less sources (inline content) are skipped; the vector
// store still carries them.
func (s *IndexStorer) Store(ctx context.Context, src *source.DataSource, result *source.ProcessingResult) (*store.StoreResult, error) {
	out := store.NewStoreResult()
	if src.Path == "" || len(result.Chunks) == 0 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	var content strings.Builder
	for _, chunk := range result.Chunks {
		content.WriteString(chunk.Content)
		content.WriteString("\n")
	}
	lang := src.StringMetadata("language")

	if err := s.index.IndexFile(src.Path, lang, content.String()); err != nil {
		return out, store.NewStorageError("failed to index source", err)
	}
	out.AddSink(s.Name(), store.SinkResult{ChunksStored: len(result.Chunks)})
	return out, nil
}

// Health reports healthy while the index answers doc counts.
func (s *IndexStorer) Health(ctx context.Context) types.HealthStatus {
	if _, err := s.index.DocCount(); err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("fulltext index")
}
