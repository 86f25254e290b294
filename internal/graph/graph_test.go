package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlore/graphlore/internal/types"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty uri", func(c *Config) { c.URI = "" }},
		{"empty username", func(c *Config) { c.Username = "" }},
		{"empty password", func(c *Config) { c.Password = "" }},
		{"zero timeout", func(c *Config) { c.ConnectionTimeout = 0 }},
		{"zero retry time", func(c *Config) { c.MaxTransactionRetryTime = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bad := DefaultConfig()
			tc.mutate(&bad)
			err := bad.Validate()
			require.Error(t, err)
			assert.Equal(t, ErrCodeInvalidConfig, types.CodeOf(err))
		})
	}
}

func TestNewNeo4jClientRejectsBadConfig(t *testing.T) {
	_, err := NewNeo4jClient(Config{})
	assert.Error(t, err)
}

func TestNeo4jClientNotConnected(t *testing.T) {
	client, err := NewNeo4jClient(DefaultConfig())
	require.NoError(t, err)

	assert.True(t, client.Health(context.Background()).IsUnhealthy())

	_, err = client.Query(context.Background(), "RETURN 1", nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeConnectionClosed, types.CodeOf(err))

	assert.NoError(t, client.Close(context.Background()))
}

func TestNeo4jConnectHonorsCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URI = "bolt://127.0.0.1:1" // nothing listening
	cfg.ConnectionTimeout = time.Second
	client, err := NewNeo4jClient(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = client.Connect(ctx)
	require.Error(t, err)
	assert.Equal(t, ErrCodeConnectionFailed, types.CodeOf(err))
}

func TestSanitizeRelType(t *testing.T) {
	assert.Equal(t, "CALLS", sanitizeRelType("CALLS"))
	assert.Equal(t, "DROPTABLE", sanitizeRelType("DROP TABLE;--"))
	assert.Equal(t, "RELATED_TO", sanitizeRelType("!!!"))
}

func TestMockClientLifecycle(t *testing.T) {
	mock := NewMockClient()
	ctx := context.Background()

	assert.True(t, mock.Health(ctx).IsUnhealthy())
	require.NoError(t, mock.Connect(ctx))
	assert.True(t, mock.Health(ctx).IsHealthy())

	id, err := mock.CreateNode(ctx, []string{"Chunk"}, map[string]any{"content": "hello graph"})
	require.NoError(t, err)
	assert.Equal(t, "node-1", id)

	require.NoError(t, mock.MergeEntityRelation(ctx, "users", "teams", "REFERENCES", nil))
	require.NoError(t, mock.MergeEntityRelation(ctx, "users", "teams", "REFERENCES", nil))
	assert.Len(t, mock.Relations(), 1, "repeated merges should be idempotent")

	result, err := mock.FulltextSearch(ctx, "chunk_fulltext", "hello", 10)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 1.0, result.Records[0]["score"])
}

func TestMockClientQueuedResults(t *testing.T) {
	mock := NewMockClient()
	mock.QueryResults = []QueryResult{
		{Records: []map[string]any{{"n": 1}}},
		{Records: []map[string]any{{"n": 2}}},
	}

	first, err := mock.Query(context.Background(), "RETURN 1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Records[0]["n"])

	second, err := mock.Query(context.Background(), "RETURN 2", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Records[0]["n"])

	assert.Len(t, mock.Queries(), 2)
}
