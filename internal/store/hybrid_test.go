package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/types"
)

func sampleResult(t *testing.T) (*source.DataSource, *source.ProcessingResult) {
	t.Helper()
	src := source.NewDataSource("schema.sql", source.SourceTypeSQL).WithPath("schema.sql")
	result := source.NewProcessingResult(src.ID).
		WithChunks([]*source.ProcessedChunk{
			source.NewChunk(src.ID, source.ChunkTypeSQLTable, "CREATE TABLE users (id INT)").WithTitle("users"),
		}).
		WithRelations([]*source.ExtractedRelation{
			source.NewRelation(src.ID, "users", "teams", source.RelationReferences),
		})
	return src, result
}

func TestHybridStoreBothSucceed(t *testing.T) {
	vector := NewMockStorer("vector")
	graphSink := NewMockStorer("graph")
	hybrid := NewHybridStorer(nil, vector, graphSink)

	src, result := sampleResult(t)
	out, err := hybrid.Store(context.Background(), src, result)
	require.NoError(t, err)

	assert.Equal(t, 2, out.ChunksStored)
	assert.Equal(t, 2, out.RelationsStored)
	assert.Len(t, out.Sinks, 2)
	assert.Equal(t, 1, vector.Attempts())
	assert.Equal(t, 1, graphSink.Attempts())
}

func TestHybridStoreOneFailsBothAttempted(t *testing.T) {
	vector := NewMockStorer("vector")
	vector.StoreErr = errors.New("disk full")
	graphSink := NewMockStorer("graph")
	hybrid := NewHybridStorer(nil, vector, graphSink)

	src, result := sampleResult(t)
	out, err := hybrid.Store(context.Background(), src, result)
	require.Error(t, err)
	assert.Equal(t, types.STORAGE_FAILED, types.CodeOf(err))
	assert.Contains(t, err.Error(), "vector")

	// The failure of one sink must not stop the other write.
	assert.Equal(t, 1, vector.Attempts())
	assert.Equal(t, 1, graphSink.Attempts())
	assert.Len(t, graphSink.Stored(), 1)

	require.NotNil(t, out)
	assert.NotEmpty(t, out.Sinks["vector"].Error)
	assert.Empty(t, out.Sinks["graph"].Error)
	assert.Equal(t, 1, out.Sinks["graph"].ChunksStored)
}

func TestHybridStoreNoSinks(t *testing.T) {
	hybrid := NewHybridStorer(nil)
	src, result := sampleResult(t)
	_, err := hybrid.Store(context.Background(), src, result)
	assert.Error(t, err)
}

func TestHybridHealthAggregation(t *testing.T) {
	vector := NewMockStorer("vector")
	graphSink := NewMockStorer("graph")
	hybrid := NewHybridStorer(nil, vector, graphSink)
	assert.True(t, hybrid.Health(context.Background()).IsHealthy())
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(NewMockStorer("vector"))
	registry.Register(NewMockStorer("hybrid"))

	s, err := registry.Get("hybrid")
	require.NoError(t, err)
	assert.Equal(t, "hybrid", s.Name())

	_, err = registry.Get("missing")
	require.Error(t, err)
	assert.Equal(t, types.STORAGE_FAILED, types.CodeOf(err))

	assert.ElementsMatch(t, []string{"vector", "hybrid"}, registry.Names())
}
