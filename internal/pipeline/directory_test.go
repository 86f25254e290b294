package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlore/graphlore/internal/store"
)

func collectNames(t *testing.T, root string, opts DirectoryOptions) []string {
	t.Helper()
	sources, err := CollectSources(root, opts)
	require.NoError(t, err)
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name
	}
	return names
}

func TestCollectSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "# hi")
	writeFile(t, dir, "main.go", "package main")
	writeFile(t, dir, "schema.sql", "CREATE TABLE t (id INT)")
	writeFile(t, dir, "data.bin", "\x00\x01")
	writeFile(t, dir, ".hidden", "secret")
	writeFile(t, dir, ".git/config", "[core]")
	writeFile(t, dir, "node_modules/pkg/index.js", "x")

	names := collectNames(t, dir, DirectoryOptions{})
	assert.ElementsMatch(t, []string{"readme.md", "main.go", "schema.sql"}, names)
}

func TestCollectSourcesIncludeExclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# a")
	writeFile(t, dir, "b.go", "package b")
	writeFile(t, dir, "c_test.go", "package b")

	names := collectNames(t, dir, DirectoryOptions{Include: []string{"*.go"}})
	assert.ElementsMatch(t, []string{"b.go", "c_test.go"}, names)

	names = collectNames(t, dir, DirectoryOptions{
		Include: []string{"*.go"},
		Exclude: []string{"*_test.go"},
	})
	assert.ElementsMatch(t, []string{"b.go"}, names)
}

func TestCollectSourcesGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "build/\n*.log\n")
	writeFile(t, dir, "keep.md", "# keep")
	writeFile(t, dir, "build/out.md", "# generated")
	writeFile(t, dir, "debug.log", "noise")

	names := collectNames(t, dir, DirectoryOptions{RespectGitignore: true})
	assert.ElementsMatch(t, []string{"keep.md"}, names)

	// Without the flag the gitignore is not consulted. *.log classifies as
	// unknown and is dropped unless IncludeUnknown is set.
	names = collectNames(t, dir, DirectoryOptions{IncludeUnknown: true})
	assert.Contains(t, names, "build/out.md")
	assert.Contains(t, names, "debug.log")
}

func TestProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "# doc\n\nwords")
	writeFile(t, dir, "app.py", "def main():\n    pass\n")

	o := newTestOrchestrator(t, store.NewMockStorer("mock"))
	results, err := o.ProcessDirectory(context.Background(), dir, DirectoryOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, result := range results {
		assert.True(t, result.Success, "error: %s", result.ErrorMessage)
	}
}

func TestWatcherReingestsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "# v1\n\nfirst")

	storer := store.NewMockStorer("mock")
	o := newTestOrchestrator(t, storer)

	w, err := NewWatcher(o, DirectoryOptions{}, nil)
	require.NoError(t, err)
	w.WithDebounce(20 * time.Millisecond)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	writeFile(t, dir, "doc.md", "# v2\n\nsecond")

	require.Eventually(t, func() bool {
		return len(storer.Stored()) >= 1
	}, 3*time.Second, 20*time.Millisecond, "watcher should re-ingest %s", path)

	cancel()
	<-done
}
