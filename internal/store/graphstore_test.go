package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlore/graphlore/internal/graph"
)

func TestGraphStoreWritesNodesAndRelations(t *testing.T) {
	client := graph.NewMockClient()
	require.NoError(t, client.Connect(context.Background()))
	gs := NewGraphStore(client, nil)

	src, result := sampleResult(t)
	out, err := gs.Store(context.Background(), src, result)
	require.NoError(t, err)

	sink := out.Sinks["graph"]
	assert.Equal(t, 1, sink.ChunksStored)
	assert.Equal(t, 1, sink.RelationsStored)

	relations := client.Relations()
	require.Len(t, relations, 1)
	assert.Equal(t, "users", relations[0].From)
	assert.Equal(t, "teams", relations[0].To)
	assert.Equal(t, "REFERENCES", relations[0].Type)

	// Source merge plus one chunk write.
	assert.Len(t, client.Queries(), 2)
}

func TestGraphStoreRelationIdempotent(t *testing.T) {
	client := graph.NewMockClient()
	require.NoError(t, client.Connect(context.Background()))
	gs := NewGraphStore(client, nil)

	src, result := sampleResult(t)
	_, err := gs.Store(context.Background(), src, result)
	require.NoError(t, err)
	_, err = gs.Store(context.Background(), src, result)
	require.NoError(t, err)

	assert.Len(t, client.Relations(), 1)
}

func TestGraphStorePropagatesWriteFailure(t *testing.T) {
	client := graph.NewMockClient()
	client.WriteErr = errors.New("neo4j down")
	gs := NewGraphStore(client, nil)

	src, result := sampleResult(t)
	_, err := gs.Store(context.Background(), src, result)
	assert.Error(t, err)
}
