package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlore/graphlore/internal/embedding"
	"github.com/graphlore/graphlore/internal/graph"
	"github.com/graphlore/graphlore/internal/rank"
	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/store"
	"github.com/graphlore/graphlore/internal/types"
)

type fakeVectors struct {
	hits []store.ChunkHit
	err  error
}

func (f *fakeVectors) SearchSimilar(ctx context.Context, embedding []float64, limit int) ([]store.ChunkHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

type fakeCatalog struct {
	records map[types.ID]*store.SourceRecord
}

func (f *fakeCatalog) LookupSource(ctx context.Context, id types.ID) (*store.SourceRecord, error) {
	return f.records[id], nil
}

func chunkHit(sourceID types.ID, title, content string, distance float64) store.ChunkHit {
	chunk := source.NewChunk(sourceID, source.ChunkTypeText, content).WithTitle(title)
	return store.ChunkHit{Chunk: chunk, Distance: distance}
}

func newTestOrchestrator(completer Completer, vectors SimilaritySearcher, catalog SourceCatalog, client graph.Client) *Orchestrator {
	return NewOrchestrator(embedding.NewMockEmbedder(8), vectors, catalog, client, completer, nil)
}

func TestQueryReturnsStructuredAnswer(t *testing.T) {
	sourceID := types.NewID()
	vectors := &fakeVectors{hits: []store.ChunkHit{
		chunkHit(sourceID, "Setup", "run make install", 0.1),
		chunkHit(sourceID, "Usage", "run the binary", 0.3),
	}}
	catalog := &fakeCatalog{records: map[types.ID]*store.SourceRecord{
		sourceID: {ID: sourceID, Path: "docs/setup.md", IsActive: true},
	}}
	completer := &MockCompleter{Answer: "Run make install first."}

	o := newTestOrchestrator(completer, vectors, catalog, nil)
	resp, err := o.Query(context.Background(), Request{
		Question:        "how do I install?",
		IncludeEvidence: true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.QueryID)
	assert.Equal(t, "Run make install first.", resp.Summary)
	assert.InDelta(t, 0.9, resp.Confidence, 0.001)
	assert.Greater(t, resp.ProcessingTime, time.Duration(0))
	require.Len(t, resp.Evidence, 2)
	assert.Equal(t, "ref://file/docs/setup.md", resp.Evidence[0].Ref)
	assert.Equal(t, sourceID.String(), resp.Evidence[0].SourceID)
	assert.InDelta(t, 0.9, resp.Evidence[0].Similarity, 0.001)

	// The completed query is cached under its ID.
	cached, ok := o.Cache().Get(resp.QueryID)
	require.True(t, ok)
	assert.Equal(t, resp.Summary, cached.Summary)
}

func TestQueryValidatesSources(t *testing.T) {
	active := types.NewID()
	inactive := types.NewID()
	catalog := &fakeCatalog{records: map[types.ID]*store.SourceRecord{
		active:   {ID: active, IsActive: true},
		inactive: {ID: inactive, IsActive: false},
	}}
	o := newTestOrchestrator(&MockCompleter{Answer: "ok"}, &fakeVectors{}, catalog, nil)

	tests := []struct {
		name      string
		sourceIDs []string
	}{
		{"unknown source", []string{types.NewID().String()}},
		{"inactive source", []string{inactive.String()}},
		{"malformed id", []string{"not-a-uuid"}},
		{"one bad aborts all", []string{active.String(), inactive.String()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Query(context.Background(), Request{
				Question:  "anything",
				SourceIDs: tt.sourceIDs,
			})
			require.Error(t, err)
			assert.Equal(t, types.QUERY_INVALID_SOURCE, types.CodeOf(err))
		})
	}

	// All-active passes validation.
	resp, err := o.Query(context.Background(), Request{
		Question:  "anything",
		SourceIDs: []string{active.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Summary)
}

func TestQueryTimeoutCode(t *testing.T) {
	completer := &MockCompleter{Answer: "late", Delay: 500 * time.Millisecond}
	o := newTestOrchestrator(completer, &fakeVectors{}, nil, nil)

	_, err := o.Query(context.Background(), Request{
		Question: "slow question",
		Timeout:  30 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Equal(t, types.QUERY_TIMEOUT, types.CodeOf(err))
}

func TestQueryProcessingErrorCode(t *testing.T) {
	completer := &MockCompleter{Err: errors.New("model unavailable")}
	o := newTestOrchestrator(completer, &fakeVectors{}, nil, nil)

	_, err := o.Query(context.Background(), Request{Question: "q"})
	require.Error(t, err)
	assert.Equal(t, types.QUERY_PROCESSING_ERROR, types.CodeOf(err))
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestQueryEmptyQuestion(t *testing.T) {
	o := newTestOrchestrator(&MockCompleter{Answer: "ok"}, &fakeVectors{}, nil, nil)
	_, err := o.Query(context.Background(), Request{})
	require.Error(t, err)
}

func TestContinuationCapsEntitiesAndActions(t *testing.T) {
	completer := &MockCompleter{Answer: "continued"}
	o := newTestOrchestrator(completer, &fakeVectors{}, nil, nil)

	prior := &Response{
		QueryID: types.NewID().String(),
		Summary: "prior summary text",
	}
	for i := 0; i < 10; i++ {
		prior.RelatedEntities = append(prior.RelatedEntities, Entity{Name: fmt.Sprintf("entity-%d", i)})
	}
	for i := 0; i < 7; i++ {
		prior.NextActions = append(prior.NextActions, fmt.Sprintf("action-%d", i))
	}
	o.Cache().Put(prior)

	_, err := o.Query(context.Background(), Request{
		Question:       "follow up",
		ContextQueryID: prior.QueryID,
	})
	require.NoError(t, err)

	prompts := completer.Prompts()
	require.Len(t, prompts, 1)
	prompt := prompts[0]

	assert.Contains(t, prompt, "prior summary text")
	for i := 0; i < 8; i++ {
		assert.Contains(t, prompt, fmt.Sprintf("entity-%d", i))
	}
	assert.NotContains(t, prompt, "entity-8")
	assert.NotContains(t, prompt, "entity-9")
	for i := 0; i < 5; i++ {
		assert.Contains(t, prompt, fmt.Sprintf("action-%d", i))
	}
	assert.NotContains(t, prompt, "action-5")
	assert.Contains(t, prompt, "follow up")
}

func TestContinuationUnknownIDIsFresh(t *testing.T) {
	completer := &MockCompleter{Answer: "fresh"}
	o := newTestOrchestrator(completer, &fakeVectors{}, nil, nil)

	resp, err := o.Query(context.Background(), Request{
		Question:       "hello",
		ContextQueryID: types.NewID().String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", resp.Summary)

	prompts := completer.Prompts()
	require.Len(t, prompts, 1)
	assert.NotContains(t, prompts[0], "Previous answer")
}

func TestQueryFiltersHitsBySource(t *testing.T) {
	wanted := types.NewID()
	other := types.NewID()
	vectors := &fakeVectors{hits: []store.ChunkHit{
		chunkHit(wanted, "Keep", "kept content", 0.1),
		chunkHit(other, "Drop", "dropped content", 0.2),
	}}
	catalog := &fakeCatalog{records: map[types.ID]*store.SourceRecord{
		wanted: {ID: wanted, Path: "keep.md", IsActive: true},
		other:  {ID: other, Path: "drop.md", IsActive: true},
	}}
	completer := &MockCompleter{Answer: "ok"}

	o := newTestOrchestrator(completer, vectors, catalog, nil)
	resp, err := o.Query(context.Background(), Request{
		Question:        "q",
		SourceIDs:       []string{wanted.String()},
		IncludeEvidence: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Evidence, 1)
	assert.Equal(t, wanted.String(), resp.Evidence[0].SourceID)

	prompts := completer.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "kept content")
	assert.NotContains(t, prompts[0], "dropped content")
}

func TestQueryRelatedEntitiesFromGraph(t *testing.T) {
	client := graph.NewMockClient()
	require.NoError(t, client.Connect(context.Background()))
	client.QueryResults = []graph.QueryResult{{
		Columns: []string{"node", "score"},
		Records: []map[string]any{
			{"node": map[string]any{"name": "Login"}, "score": 2.5},
			{"node": map[string]any{"name": "Session"}, "score": 1.5},
			{"node": map[string]any{"name": "Login"}, "score": 1.0},
		},
	}}

	o := newTestOrchestrator(&MockCompleter{Answer: "ok"}, &fakeVectors{}, nil, client)
	resp, err := o.Query(context.Background(), Request{Question: "auth"})
	require.NoError(t, err)

	require.Len(t, resp.RelatedEntities, 2)
	assert.Equal(t, "Login", resp.RelatedEntities[0].Name)
	assert.Equal(t, 2.5, resp.RelatedEntities[0].Score)
	assert.Equal(t, "Session", resp.RelatedEntities[1].Name)

	// The completed query is persisted as a graph node.
	found := false
	for _, q := range client.Queries() {
		if strings.Contains(q, "MERGE (q:Query") {
			found = true
		}
	}
	assert.True(t, found, "query node should be persisted")
}

func TestGraphFailureDegradesNotFails(t *testing.T) {
	client := graph.NewMockClient()
	require.NoError(t, client.Connect(context.Background()))
	client.SearchErr = errors.New("index offline")

	o := newTestOrchestrator(&MockCompleter{Answer: "ok"}, &fakeVectors{}, nil, client)
	resp, err := o.Query(context.Background(), Request{Question: "q"})
	require.NoError(t, err)
	assert.Empty(t, resp.RelatedEntities)
	assert.Equal(t, "ok", resp.Summary)
}

func TestQueryIncludesRankedFileContext(t *testing.T) {
	idx, err := rank.NewMemoryIndex()
	require.NoError(t, err)
	defer idx.Close()
	require.NoError(t, idx.IndexFile("src/auth/login.go", "go", "func Login() handles the login flow"))
	require.NoError(t, idx.IndexFile("docs/deploy.md", "markdown", "deployment instructions"))

	completer := &MockCompleter{Answer: "ok"}
	o := newTestOrchestrator(completer, &fakeVectors{}, nil, nil).WithIndex(idx)

	_, err = o.Query(context.Background(), Request{Question: "login"})
	require.NoError(t, err)

	prompts := completer.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "ref://file/src/auth/login.go")
	assert.NotContains(t, prompts[0], "deploy.md")
}

func TestConfidenceFor(t *testing.T) {
	assert.Equal(t, 0.2, confidenceFor(nil))
	hits := []store.ChunkHit{
		{Distance: 0.4},
		{Distance: 0.25},
	}
	assert.InDelta(t, 0.75, confidenceFor(hits), 0.001)
	assert.Equal(t, 0.2, confidenceFor([]store.ChunkHit{{Distance: 0.95}}))
	assert.Equal(t, 0.99, confidenceFor([]store.ChunkHit{{Distance: -0.5}}))
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(2)
	first := &Response{QueryID: "a"}
	c.Put(first)
	c.Put(&Response{QueryID: "b"})
	c.Put(&Response{QueryID: "c"})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get("c")
	assert.True(t, ok)
}
