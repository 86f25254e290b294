package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FirstMatchWins(t *testing.T) {
	reg := NewRegistry(nil)

	code := source.NewDataSource("main.go", source.SourceTypeCode).WithPath("main.go")
	l, err := reg.GetLoader(code)
	require.NoError(t, err)
	assert.Equal(t, "code", l.Name())

	doc := source.NewDataSource("guide.md", source.SourceTypeDocument).WithPath("guide.md")
	l, err = reg.GetLoader(doc)
	require.NoError(t, err)
	assert.Equal(t, "document", l.Name())

	// Unknown type with a path falls through to the generic file loader.
	unknown := source.NewDataSource("data.bin", source.SourceTypeUnknown).WithPath("data.bin")
	l, err = reg.GetLoader(unknown)
	require.NoError(t, err)
	assert.Equal(t, "file", l.Name())

	// Inline-only unknown content falls through to the content loader.
	inline := source.NewDataSource("blob", source.SourceTypeUnknown).WithContent("raw text")
	l, err = reg.GetLoader(inline)
	require.NoError(t, err)
	assert.Equal(t, "content", l.Name())
}

func TestRegistry_NoLoaderFound(t *testing.T) {
	reg := NewRegistry(nil)

	// No path, no content: nothing can handle it.
	src := source.NewDataSource("void", source.SourceTypeUnknown)
	_, err := reg.GetLoader(src)
	require.Error(t, err)
	assert.Equal(t, types.LOADER_NOT_FOUND, types.CodeOf(err))
}

type fakeLoader struct{ name string }

func (f *fakeLoader) Name() string                             { return f.name }
func (f *fakeLoader) CanHandle(src *source.DataSource) bool    { return true }
func (f *fakeLoader) Load(ctx context.Context, src *source.DataSource) (string, error) {
	return "", errors.New("not implemented")
}

func TestRegistry_RegisterPrepends(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(&fakeLoader{name: "custom"})

	// The prepended loader now shadows everything.
	src := source.NewDataSource("guide.md", source.SourceTypeDocument).WithPath("guide.md")
	l, err := reg.GetLoader(src)
	require.NoError(t, err)
	assert.Equal(t, "custom", l.Name())
	assert.Equal(t, "custom", reg.Loaders()[0].Name())
}

func TestFileLoader_ReadsAndDecodesLatin1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latin1.txt")
	// 0xE9 is 'é' in Latin-1 and invalid as a standalone UTF-8 byte.
	require.NoError(t, os.WriteFile(path, []byte{'c', 'a', 'f', 0xE9}, 0o644))

	src := source.NewDataSource("latin1.txt", source.SourceTypeDocument).WithPath(path)
	text, err := NewFileLoader().Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestFileLoader_MissingFile(t *testing.T) {
	src := source.NewDataSource("gone", source.SourceTypeUnknown).WithPath("/does/not/exist")
	_, err := NewFileLoader().Load(context.Background(), src)
	require.Error(t, err)
	assert.Equal(t, types.LOAD_FAILED, types.CodeOf(err))
}

func TestContentLoader(t *testing.T) {
	src := source.NewDataSource("inline", source.SourceTypeDocument).WithContent("hello world")
	text, err := NewContentLoader().Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestCodeLoader_AnnotatesLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(path, []byte("def main():\n    pass\n"), 0o644))

	src := source.NewFileSource(path)
	text, err := NewCodeLoader().Load(context.Background(), src)
	require.NoError(t, err)
	assert.Contains(t, text, "def main")
	assert.Equal(t, "python", src.StringMetadata("language"))
}

func TestWebLoader_ExtractsTextAndTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	page := `<html><head><title>Docs Home</title><style>body{}</style></head>` +
		`<body><h1>Welcome</h1><p>Read the guide.</p><script>alert(1)</script></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))

	src := source.NewFileSource(path)
	text, err := NewWebLoader().Load(context.Background(), src)
	require.NoError(t, err)
	assert.Contains(t, text, "Welcome")
	assert.Contains(t, text, "Read the guide.")
	assert.NotContains(t, text, "alert")
	assert.Equal(t, "Docs Home", src.StringMetadata("title"))
}

func TestDocumentLoader_RejectsLegacyDoc(t *testing.T) {
	src := source.NewDataSource("old.doc", source.SourceTypeDocument).WithPath("old.doc")
	_, err := NewDocumentLoader().Load(context.Background(), src)
	require.Error(t, err)
	assert.Equal(t, types.LOAD_FAILED, types.CodeOf(err))
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "go", DetectLanguage("cmd/main.go"))
	assert.Equal(t, "typescript", DetectLanguage("app/index.TSX"))
	assert.Equal(t, "", DetectLanguage("notes.md"))
}
