package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/graphlore/graphlore/internal/contextpack"
	"github.com/graphlore/graphlore/internal/embedding"
	"github.com/graphlore/graphlore/internal/graph"
	"github.com/graphlore/graphlore/internal/rank"
	"github.com/graphlore/graphlore/internal/store"
	"github.com/graphlore/graphlore/internal/types"
)

const (
	// DefaultTimeout is the wall-clock cap on one query lifecycle.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults caps retrieved chunks per query.
	DefaultMaxResults = 10

	// DefaultFulltextIndex is the graph-side fulltext index queried for
	// related entities.
	DefaultFulltextIndex = "chunk_fulltext"

	// DefaultContextBudget is the token budget of the file context pack
	// included in the synthesis prompt.
	DefaultContextBudget = 1500
)

// SimilaritySearcher is the vector retrieval surface the orchestrator
// needs. *store.VectorStore satisfies it.
type SimilaritySearcher interface {
	SearchSimilar(ctx context.Context, embedding []float64, limit int) ([]store.ChunkHit, error)
}

// SourceCatalog resolves source IDs to catalog records for validation.
// *store.VectorStore satisfies it.
type SourceCatalog interface {
	LookupSource(ctx context.Context, id types.ID) (*store.SourceRecord, error)
}

// Orchestrator runs the query lifecycle: validation, optional context
// merge, retrieval, synthesis, and cache+persist.
type Orchestrator struct {
	embedder      embedding.Embedder
	vectors       SimilaritySearcher
	catalog       SourceCatalog
	graph         graph.Client
	completer     Completer
	index         *rank.Index
	cache         *Cache
	logger        *slog.Logger
	timeout       time.Duration
	maxResults    int
	contextBudget int
	fulltextIndex string
}

// NewOrchestrator wires the query orchestrator. The graph client is
// optional; without one, entity retrieval and persistence are skipped.
func NewOrchestrator(embedder embedding.Embedder, vectors SimilaritySearcher, catalog SourceCatalog, graphClient graph.Client, completer Completer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		embedder:      embedder,
		vectors:       vectors,
		catalog:       catalog,
		graph:         graphClient,
		completer:     completer,
		cache:         NewCache(0),
		logger:        logger.With("component", "query"),
		timeout:       DefaultTimeout,
		maxResults:    DefaultMaxResults,
		contextBudget: DefaultContextBudget,
		fulltextIndex: DefaultFulltextIndex,
	}
}

// WithIndex attaches the local full-text index. When set, ranked file
// candidates are assembled into a budgeted context pack for synthesis.
// Returns the orchestrator for method chaining.
func (o *Orchestrator) WithIndex(index *rank.Index) *Orchestrator {
	o.index = index
	return o
}

// WithTimeout sets the default per-query timeout.
// Returns the orchestrator for method chaining.
func (o *Orchestrator) WithTimeout(d time.Duration) *Orchestrator {
	if d > 0 {
		o.timeout = d
	}
	return o
}

// WithMaxResults sets the default retrieval cap.
// Returns the orchestrator for method chaining.
func (o *Orchestrator) WithMaxResults(n int) *Orchestrator {
	if n > 0 {
		o.maxResults = n
	}
	return o
}

// Cache exposes the response cache, used for continuation lookups and by
// callers that seed prior responses.
func (o *Orchestrator) Cache() *Cache {
	return o.cache
}

// Query runs one complete query and returns the structured answer.
// Failures surface as coded errors: QUERY_INVALID_SOURCE for source
// validation, QUERY_TIMEOUT when the deadline expires, and
// QUERY_PROCESSING_ERROR for everything else.
func (o *Orchestrator) Query(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, o.requestTimeout(req))
	defer cancel()

	start := time.Now()
	resp, err := o.run(ctx, req, nil)
	if err != nil {
		return nil, o.classify(err)
	}
	resp.ProcessingTime = time.Since(start)

	persisted := false
	o.finish(ctx, resp, &persisted)
	return resp, nil
}

func (o *Orchestrator) requestTimeout(req Request) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	return o.timeout
}

// classify maps an internal failure to the boundary error taxonomy.
// Source-validation errors pass through; deadline expiry becomes
// QUERY_TIMEOUT; everything else becomes QUERY_PROCESSING_ERROR.
func (o *Orchestrator) classify(err error) error {
	if types.CodeOf(err) == types.QUERY_INVALID_SOURCE {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.WrapError(types.QUERY_TIMEOUT, "query exceeded its deadline", err)
	}
	return types.WrapError(types.QUERY_PROCESSING_ERROR, "query processing failed", err)
}

// run executes the lifecycle. When emit is non-nil, progress events are
// streamed through it.
func (o *Orchestrator) run(ctx context.Context, req Request, emit func(Event)) (*Response, error) {
	queryID := types.NewID()
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = o.maxResults
	}

	if err := o.validateSources(ctx, req.SourceIDs); err != nil {
		return nil, err
	}

	question := req.Question
	if req.ContextQueryID != "" {
		if prior, ok := o.cache.Get(req.ContextQueryID); ok {
			question = continuationBlocks(prior) + "\n" + req.Question
			o.logger.Debug("merged prior query context",
				"query_id", queryID,
				"context_query_id", req.ContextQueryID)
		}
	}

	o.emitStatus(emit, "retrieval")
	hits, err := o.retrieveChunks(ctx, question, req.SourceIDs, maxResults)
	if err != nil {
		return nil, err
	}
	entities := o.retrieveEntities(ctx, req.Question, maxResults)
	for i := range entities {
		o.emitEntity(emit, entities[i])
	}
	pack := o.fileContext(req.Question, maxResults)

	o.emitStatus(emit, "synthesis")
	prompt := buildPrompt(question, hits, entities, pack)
	summary, err := o.synthesize(ctx, prompt, emit)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		QueryID:         queryID.String(),
		Summary:         summary,
		RelatedEntities: entities,
		Confidence:      confidenceFor(hits),
	}
	if req.IncludeEvidence {
		resp.Evidence = o.evidenceFor(ctx, hits)
	}
	resp.NextActions = nextActions(resp)
	return resp, nil
}

// validateSources checks every requested source against the catalog.
// Any unknown or inactive source aborts the whole query.
func (o *Orchestrator) validateSources(ctx context.Context, sourceIDs []string) error {
	if len(sourceIDs) == 0 || o.catalog == nil {
		return nil
	}
	for _, raw := range sourceIDs {
		id, err := types.ParseID(raw)
		if err != nil {
			return types.WrapError(types.QUERY_INVALID_SOURCE,
				fmt.Sprintf("invalid source id %q", raw), err)
		}
		rec, err := o.catalog.LookupSource(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return types.NewError(types.QUERY_INVALID_SOURCE,
				fmt.Sprintf("unknown source %s", raw))
		}
		if !rec.IsActive {
			return types.NewError(types.QUERY_INVALID_SOURCE,
				fmt.Sprintf("source %s is inactive", raw))
		}
	}
	return nil
}

// retrieveChunks embeds the question and runs vector similarity search,
// filtered to the requested sources when given.
func (o *Orchestrator) retrieveChunks(ctx context.Context, question string, sourceIDs []string, limit int) ([]store.ChunkHit, error) {
	if o.embedder == nil || o.vectors == nil {
		return nil, nil
	}
	vec, err := o.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	hits, err := o.vectors.SearchSimilar(ctx, vec, limit)
	if err != nil {
		return nil, err
	}
	if len(sourceIDs) == 0 {
		return hits, nil
	}
	allowed := make(map[string]bool, len(sourceIDs))
	for _, id := range sourceIDs {
		allowed[id] = true
	}
	filtered := hits[:0]
	for _, hit := range hits {
		if allowed[hit.Chunk.SourceID.String()] {
			filtered = append(filtered, hit)
		}
	}
	return filtered, nil
}

// retrieveEntities asks the graph fulltext index for related entities.
// Graph retrieval is best-effort: a failure degrades the answer but does
// not fail the query.
func (o *Orchestrator) retrieveEntities(ctx context.Context, question string, limit int) []Entity {
	if o.graph == nil {
		return nil
	}
	result, err := o.graph.FulltextSearch(ctx, o.fulltextIndex, question, limit)
	if err != nil {
		o.logger.Warn("graph entity retrieval failed", "error", err)
		return nil
	}
	var entities []Entity
	seen := make(map[string]bool)
	for _, record := range result.Records {
		name := entityName(record)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		score, _ := record["score"].(float64)
		entities = append(entities, Entity{Name: name, Score: score})
	}
	return entities
}

// entityName extracts a display name from a fulltext record. Records
// carry either a node property map or a flat name column.
func entityName(record map[string]any) string {
	if name, ok := record["name"].(string); ok {
		return name
	}
	node, ok := record["node"].(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"name", "title", "id"} {
		if v, ok := node[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// synthesize generates the answer, streaming deltas when both the
// completer and the caller support it.
func (o *Orchestrator) synthesize(ctx context.Context, prompt string, emit func(Event)) (string, error) {
	if o.completer == nil {
		return "", types.NewError(types.QUERY_PROCESSING_ERROR, "no completer configured")
	}
	if emit != nil {
		if streamer, ok := o.completer.(StreamingCompleter); ok {
			return streamer.StreamComplete(ctx, prompt, func(delta string) {
				emit(Event{Type: EventTextDelta, Delta: delta})
			})
		}
	}
	return o.completer.Complete(ctx, prompt)
}

// evidenceFor builds evidence anchors from chunk hits, resolving each
// chunk's source path through the catalog for the ref handle.
func (o *Orchestrator) evidenceFor(ctx context.Context, hits []store.ChunkHit) []EvidenceAnchor {
	paths := make(map[string]string)
	anchors := make([]EvidenceAnchor, 0, len(hits))
	for _, hit := range hits {
		sourceID := hit.Chunk.SourceID.String()
		path, cached := paths[sourceID]
		if !cached && o.catalog != nil {
			if rec, err := o.catalog.LookupSource(ctx, hit.Chunk.SourceID); err == nil && rec != nil {
				path = rec.Path
			}
			paths[sourceID] = path
		}
		ref := refFor(path, hit.Chunk.Title)
		anchors = append(anchors, EvidenceAnchor{
			ChunkID:    hit.Chunk.ID.String(),
			SourceID:   sourceID,
			Title:      hit.Chunk.Title,
			Ref:        ref,
			Similarity: 1 - hit.Distance,
		})
	}
	return anchors
}

// fileContext ranks file candidates from the local full-text index and
// packs them into the prompt's token budget. Best-effort: index failures
// degrade the answer, they do not fail the query.
func (o *Orchestrator) fileContext(question string, limit int) contextpack.ContextPack {
	if o.index == nil {
		return contextpack.ContextPack{}
	}
	fileHits, err := o.index.Search(question, limit)
	if err != nil {
		o.logger.Warn("fulltext file retrieval failed", "error", err)
		return contextpack.ContextPack{}
	}
	nodes := rank.RankFiles(fileHits, question, limit)
	return contextpack.Build(nodes, o.contextBudget, "answer", "", nil, nil)
}

// refFor builds the anchor ref. Chunks from path-less sources (inline
// content, URLs) fall back to the chunk title.
func refFor(path, title string) string {
	if path != "" {
		return rank.RefHandle(path)
	}
	return title
}

// confidenceFor derives a coarse confidence from the best similarity
// distance. No hits means low but nonzero confidence.
func confidenceFor(hits []store.ChunkHit) float64 {
	if len(hits) == 0 {
		return 0.2
	}
	best := hits[0].Distance
	for _, hit := range hits[1:] {
		if hit.Distance < best {
			best = hit.Distance
		}
	}
	c := 1 - best
	if c < 0.2 {
		c = 0.2
	}
	if c > 0.99 {
		c = 0.99
	}
	return c
}

// nextActions suggests follow-ups from the answer's evidence and
// entities.
func nextActions(resp *Response) []string {
	var actions []string
	for i, anchor := range resp.Evidence {
		if i >= 3 {
			break
		}
		actions = append(actions, fmt.Sprintf("Inspect %s", anchor.Ref))
	}
	for i, entity := range resp.RelatedEntities {
		if i >= 2 {
			break
		}
		actions = append(actions, fmt.Sprintf("Explore entity %q", entity.Name))
	}
	return actions
}

// finish performs the post-completion cache+persist side effect exactly
// once per completed query; persisted guards against double writes.
func (o *Orchestrator) finish(ctx context.Context, resp *Response, persisted *bool) {
	if *persisted {
		return
	}
	*persisted = true

	o.cache.Put(resp)

	if o.graph == nil {
		return
	}
	_, err := o.graph.Write(ctx, `
		MERGE (q:Query {id: $id})
		SET q.summary = $summary,
		    q.confidence = $confidence,
		    q.answered_at = datetime()`,
		map[string]any{
			"id":         resp.QueryID,
			"summary":    resp.Summary,
			"confidence": resp.Confidence,
		})
	if err != nil {
		o.logger.Warn("failed to persist query", "query_id", resp.QueryID, "error", err)
	}
}

func (o *Orchestrator) emitStatus(emit func(Event), status string) {
	if emit != nil {
		emit(Event{Type: EventStatus, Status: status})
	}
}

func (o *Orchestrator) emitEntity(emit func(Event), entity Entity) {
	if emit != nil {
		emit(Event{Type: EventEntity, Entity: &entity})
	}
}
