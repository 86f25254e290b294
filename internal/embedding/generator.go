package embedding

import (
	"context"
	"log/slog"
	"strings"

	"github.com/graphlore/graphlore/internal/source"
)

// Generator attaches embeddings to processed chunks. Batches go to the
// provider first; when a batch call fails the generator retries each text
// individually so one bad input cannot sink its batch. Chunks whose
// individual embedding also fails keep a nil embedding and stay in the
// pipeline.
type Generator struct {
	embedder  Embedder
	batchSize int
	logger    *slog.Logger
}

// NewGenerator creates a Generator over the given embedder.
func NewGenerator(embedder Embedder, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		embedder:  embedder,
		batchSize: DefaultBatchSize,
		logger:    logger.With("component", "embedding_generator"),
	}
}

// WithBatchSize overrides the provider call batch size.
// Returns the generator for method chaining.
func (g *Generator) WithBatchSize(size int) *Generator {
	if size > 0 {
		g.batchSize = size
	}
	return g
}

// GenerateForChunks embeds the chunks in place and returns how many received
// an embedding. Per-chunk provider failures are tolerated; only context
// cancellation aborts the run.
func (g *Generator) GenerateForChunks(ctx context.Context, chunks []*source.ProcessedChunk) (int, error) {
	embedded := 0
	for start := 0; start < len(chunks); start += g.batchSize {
		if err := ctx.Err(); err != nil {
			return embedded, err
		}
		end := start + g.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = EmbeddingText(chunk)
		}

		vecs, err := g.embedder.EmbedBatch(ctx, texts)
		if err == nil {
			for i, chunk := range batch {
				chunk.WithEmbedding(vecs[i])
				embedded++
			}
			continue
		}
		if ctx.Err() != nil {
			return embedded, ctx.Err()
		}

		g.logger.Warn("batch embedding failed, retrying per chunk",
			"batch_size", len(batch), "error", err)
		for i, chunk := range batch {
			vec, itemErr := g.embedder.Embed(ctx, texts[i])
			if itemErr != nil {
				if ctx.Err() != nil {
					return embedded, ctx.Err()
				}
				g.logger.Warn("chunk embedding failed, continuing without vector",
					"chunk_id", chunk.ID, "error", itemErr)
				continue
			}
			chunk.WithEmbedding(vec)
			embedded++
		}
	}
	return embedded, nil
}

// EmbeddingText builds the text actually sent to the provider: title and
// summary prepended to the content so section context survives chunking.
func EmbeddingText(chunk *source.ProcessedChunk) string {
	var parts []string
	if chunk.Title != "" {
		parts = append(parts, chunk.Title)
	}
	if chunk.Summary != "" {
		parts = append(parts, chunk.Summary)
	}
	parts = append(parts, chunk.Content)
	return strings.Join(parts, "\n\n")
}
