package rank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlore/graphlore/internal/source"
)

func TestRefHandleExactFormat(t *testing.T) {
	assert.Equal(t, "ref://file/src/a.py", RefHandle("src/a.py"))
	assert.Equal(t, "ref://file/src/a.py#L1-L100", RefHandleRange("src/a.py", 1, 100))
}

func TestRankFilesPathBoost(t *testing.T) {
	hits := []FileHit{
		{Path: "lib/other/thing.go", Lang: "go", Score: 9.0},
		{Path: "lib/auth/login.go", Lang: "go", Score: 1.0},
	}
	nodes := RankFiles(hits, "login flow", 0)
	require.Len(t, nodes, 2)

	// The verbatim path match outranks the higher base score.
	assert.Equal(t, "lib/auth/login.go", nodes[0].Path)
	assert.Greater(t, nodes[0].Score, nodes[1].Score)

	// Boosted score strictly exceeds the normalized base alone.
	assert.Greater(t, nodes[0].Score, 1.0/9.0+roleBoost("lib/auth/login.go"))
}

func TestRankFilesStableTieOrder(t *testing.T) {
	hits := []FileHit{
		{Path: "a/one.md", Lang: "markdown", Score: 5.0},
		{Path: "a/two.md", Lang: "markdown", Score: 5.0},
		{Path: "a/three.md", Lang: "markdown", Score: 5.0},
	}
	nodes := RankFiles(hits, "unrelated", 0)
	require.Len(t, nodes, 3)
	assert.Equal(t, "a/one.md", nodes[0].Path)
	assert.Equal(t, "a/two.md", nodes[1].Path)
	assert.Equal(t, "a/three.md", nodes[2].Path)
}

func TestRankFilesLimit(t *testing.T) {
	hits := []FileHit{
		{Path: "a.go", Score: 3},
		{Path: "b.go", Score: 2},
		{Path: "c.go", Score: 1},
	}
	nodes := RankFiles(hits, "", 2)
	require.Len(t, nodes, 2)
	assert.Equal(t, "a.go", nodes[0].Path)
}

func TestRoleBoostClamped(t *testing.T) {
	assert.Equal(t, maxRoleBoost, roleBoost("src/internal/pkg/lib/cmd/alpha.go"))
	assert.Equal(t, -maxRoleBoost, roleBoost("vendor/tests/node_modules/x.go"))
}

func TestRankFilesPathMatchBeatsDeepRolePath(t *testing.T) {
	hits := []FileHit{
		{Path: "src/internal/pkg/lib/cmd/alpha.go", Lang: "go", Score: 5.0},
		{Path: "vendor/tests/login.go", Lang: "go", Score: 0.5},
	}
	nodes := RankFiles(hits, "login", 0)
	require.Len(t, nodes, 2)
	assert.Equal(t, "vendor/tests/login.go", nodes[0].Path,
		"a path match outranks any unmatched hit, however favorable its directories")
}

func TestRankFilesRoleBoost(t *testing.T) {
	hits := []FileHit{
		{Path: "vendor/dep/x.go", Lang: "go", Score: 2.0},
		{Path: "internal/x.go", Lang: "go", Score: 2.0},
	}
	nodes := RankFiles(hits, "", 0)
	require.Len(t, nodes, 2)
	assert.Equal(t, "internal/x.go", nodes[0].Path)
}

func TestRankFilesPopulatesSummaryAndRef(t *testing.T) {
	nodes := RankFiles([]FileHit{{Path: "src/app/main.go", Lang: "go", Score: 1}}, "", 0)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Go file main.go in src/app.", nodes[0].Summary)
	assert.Equal(t, "ref://file/src/app/main.go", nodes[0].Ref)
}

func TestFileSummary(t *testing.T) {
	assert.Equal(t, "Python file a.py in src.", FileSummary("src/a.py", "python"))
	assert.Equal(t, "Source file notes.xyz.", FileSummary("notes.xyz", ""))
	assert.Equal(t, "kotlin file App.kt in app.", FileSummary("app/App.kt", "kotlin"))
}

func TestQueryTermsDropShortTokens(t *testing.T) {
	assert.Equal(t, []string{"login", "handler"}, queryTerms(`Login "handler" a`))
}

func TestIndexSearch(t *testing.T) {
	idx, err := NewMemoryIndex()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.IndexFile("src/auth/login.go", "go", "func Login(user string) error { return nil }"))
	require.NoError(t, idx.IndexFile("docs/setup.md", "markdown", "installation and setup instructions"))

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	hits, err := idx.Search("login", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "src/auth/login.go", hits[0].Path)
	assert.Equal(t, "go", hits[0].Lang)
	assert.Greater(t, hits[0].Score, 0.0)

	require.NoError(t, idx.Remove("src/auth/login.go"))
	hits, err = idx.Search("login", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexStorer(t *testing.T) {
	idx, err := NewMemoryIndex()
	require.NoError(t, err)
	defer idx.Close()
	storer := NewIndexStorer(idx)

	src := source.NewFileSource("pkg/server/handler.go")
	src.WithMetadata("language", "go")
	result := source.NewProcessingResult(src.ID)
	result.WithChunks([]*source.ProcessedChunk{
		source.NewChunk(src.ID, source.ChunkTypeCodeFunction, "func HandleRequest() routes requests"),
	})

	out, err := storer.Store(context.Background(), src, result)
	require.NoError(t, err)
	assert.Equal(t, 1, out.ChunksStored)

	hits, err := idx.Search("routes", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "pkg/server/handler.go", hits[0].Path)
	assert.Equal(t, "go", hits[0].Lang)

	assert.True(t, storer.Health(context.Background()).IsHealthy())

	// Path-less sources are skipped, not failed.
	inline := source.NewDataSource("notes", source.SourceTypeDocument).WithContent("inline")
	out, err = storer.Store(context.Background(), inline, result)
	require.NoError(t, err)
	assert.Zero(t, out.ChunksStored)
}
