// Package pipeline orchestrates ingestion: load, transform, embed, store.
// Each source moves through the stages independently; failures are captured
// in the ProcessingResult and never escape as errors or panics.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	"github.com/graphlore/graphlore/internal/embedding"
	"github.com/graphlore/graphlore/internal/loader"
	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/store"
	"github.com/graphlore/graphlore/internal/transform"
)

// Stage names reported in ProcessingResult.FailedStage and logs.
const (
	StageCreated      = "created"
	StageLoading      = "loading"
	StageTransforming = "transforming"
	StageEmbedding    = "embedding"
	StageStoring      = "storing"
	StageDone         = "done"
	StageFailed       = "failed"
)

// DefaultConcurrency is the batch worker limit when none is configured.
const DefaultConcurrency = 5

// Orchestrator runs sources through the ingestion stages. The vector store
// doubles as the source catalog used for content-hash dedup.
type Orchestrator struct {
	loaders      *loader.Registry
	transformers *transform.Registry
	generator    *embedding.Generator
	storer       store.Storer
	catalog      *store.VectorStore
	logger       *slog.Logger
	concurrency  int
	force        bool

	stats Stats
}

// NewOrchestrator creates an orchestrator. The catalog may be nil, which
// disables content-hash dedup.
func NewOrchestrator(
	loaders *loader.Registry,
	transformers *transform.Registry,
	generator *embedding.Generator,
	storer store.Storer,
	catalog *store.VectorStore,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		loaders:      loaders,
		transformers: transformers,
		generator:    generator,
		storer:       storer,
		catalog:      catalog,
		logger:       logger.With("component", "pipeline"),
		concurrency:  DefaultConcurrency,
	}
}

// WithConcurrency overrides the batch worker limit.
// Returns the orchestrator for method chaining.
func (o *Orchestrator) WithConcurrency(n int) *Orchestrator {
	if n > 0 {
		o.concurrency = n
	}
	return o
}

// WithForce disables content-hash dedup so unchanged sources are
// re-ingested.
// Returns the orchestrator for method chaining.
func (o *Orchestrator) WithForce(force bool) *Orchestrator {
	o.force = force
	return o
}

// Stats returns a snapshot of the orchestrator's counters.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}

// Process runs one source through all stages. It always returns a result:
// stage errors and panics become failed results carrying the stage name.
func (o *Orchestrator) Process(ctx context.Context, src *source.DataSource) (result *source.ProcessingResult) {
	stage := StageCreated
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("stage panicked",
				"source", src.Name, "stage", stage, "panic", r)
			result = source.FailedResult(src.ID, stage, fmt.Errorf("panic: %v", r))
			o.stats.sourcesFailed.Add(1)
		}
	}()

	log := o.logger.With("source", src.Name, "source_id", src.ID)

	if err := src.Validate(); err != nil {
		o.stats.sourcesFailed.Add(1)
		return source.FailedResult(src.ID, stage, err)
	}

	// Loading.
	stage = StageLoading
	log.Debug("stage transition", "stage", stage)
	ldr, err := o.loaders.GetLoader(src)
	if err != nil {
		o.stats.sourcesFailed.Add(1)
		return source.FailedResult(src.ID, stage, err)
	}
	content, err := ldr.Load(ctx, src)
	if err != nil {
		o.stats.sourcesFailed.Add(1)
		return source.FailedResult(src.ID, stage, err)
	}

	contentHash := hashContent(content)
	if skipped := o.checkDuplicate(ctx, src, contentHash, log); skipped != nil {
		return skipped
	}

	// Transforming.
	stage = StageTransforming
	log.Debug("stage transition", "stage", stage)
	tr, err := o.transformers.GetTransformer(src)
	if err != nil {
		o.stats.sourcesFailed.Add(1)
		return source.FailedResult(src.ID, stage, err)
	}
	result, err = tr.Transform(ctx, src, content)
	if err != nil {
		o.stats.sourcesFailed.Add(1)
		return source.FailedResult(src.ID, stage, err)
	}
	o.stats.chunksExtracted.Add(int64(result.ChunkCount()))
	o.stats.relationsExtracted.Add(int64(result.RelationCount()))

	// Embedding. Per-chunk failures are tolerated; missing vectors are not
	// an ingestion failure.
	stage = StageEmbedding
	log.Debug("stage transition", "stage", stage, "chunks", result.ChunkCount())
	if o.generator != nil {
		embedded, err := o.generator.GenerateForChunks(ctx, result.Chunks)
		if err != nil {
			o.stats.sourcesFailed.Add(1)
			return source.FailedResult(src.ID, stage, err)
		}
		o.stats.embeddingsGenerated.Add(int64(embedded))
		result.WithMetadata("chunks_embedded", embedded)
	}

	// Storing.
	stage = StageStoring
	log.Debug("stage transition", "stage", stage)
	if o.storer != nil {
		storeResult, err := o.storer.Store(ctx, src, result)
		if err != nil {
			o.stats.sourcesFailed.Add(1)
			failed := source.FailedResult(src.ID, stage, err)
			if storeResult != nil {
				failed.WithMetadata("sinks", storeResult.Sinks)
			}
			return failed
		}
		result.WithMetadata("chunks_stored", storeResult.ChunksStored)
	}
	if o.catalog != nil {
		if err := o.catalog.RecordSource(ctx, src, contentHash); err != nil {
			log.Warn("failed to record source in catalog", "error", err)
		}
	}

	stage = StageDone
	log.Info("source processed",
		"chunks", result.ChunkCount(), "relations", result.RelationCount())
	o.stats.sourcesProcessed.Add(1)
	result.WithMetadata("content_hash", contentHash)
	return result
}

// checkDuplicate returns a skipped result when the path was already ingested
// with identical content, unless force is set. A changed hash clears the old
// chunks before re-ingestion.
func (o *Orchestrator) checkDuplicate(ctx context.Context, src *source.DataSource, contentHash string, log *slog.Logger) *source.ProcessingResult {
	if o.catalog == nil || src.Path == "" {
		return nil
	}
	existing, err := o.catalog.LookupSourceByPath(ctx, src.Path)
	if err != nil {
		log.Warn("catalog lookup failed, continuing without dedup", "error", err)
		return nil
	}
	if existing == nil {
		return nil
	}
	if existing.ContentHash == contentHash && !o.force {
		log.Debug("source unchanged, skipping", "hash", contentHash)
		o.stats.sourcesSkipped.Add(1)
		return source.NewProcessingResult(existing.ID).
			WithMetadata("skipped", true).
			WithMetadata("content_hash", contentHash)
	}
	// Re-ingesting under the original source identity.
	src.ID = existing.ID
	if err := o.catalog.DeleteChunksForSource(ctx, existing.ID); err != nil {
		log.Warn("failed to clear previous chunks", "error", err)
	}
	return nil
}

// ProcessBatch runs sources through Process with bounded concurrency.
// The returned slice preserves input order regardless of completion order.
func (o *Orchestrator) ProcessBatch(ctx context.Context, sources []*source.DataSource) []*source.ProcessingResult {
	results := make([]*source.ProcessingResult, len(sources))
	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src *source.DataSource) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = o.Process(ctx, src)
		}(i, src)
	}
	wg.Wait()
	return results
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
