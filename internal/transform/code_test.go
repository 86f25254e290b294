package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlore/graphlore/internal/source"
)

const goSample = `package sample

// Greeter says hello.
type Greeter struct {
	Base
}

// Greet returns a greeting.
func (g *Greeter) Greet(name string) string {
	return format(name)
}

func format(name string) string {
	return "hello " + name
}
`

func TestCodeTransformerGo(t *testing.T) {
	src := source.NewDataSource("sample.go", source.SourceTypeCode).
		WithPath("pkg/sample.go").
		WithMetadata("language", "go")

	result, err := NewCodeTransformer().Transform(context.Background(), src, goSample)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Chunks, 3)

	byTitle := make(map[string]*source.ProcessedChunk)
	for _, chunk := range result.Chunks {
		byTitle[chunk.Title] = chunk
	}

	greeter := byTitle["Greeter"]
	require.NotNil(t, greeter)
	assert.Equal(t, source.ChunkTypeCodeClass, greeter.Type)
	assert.Equal(t, "Greeter says hello.", greeter.Summary)

	greet := byTitle["Greeter.Greet"]
	require.NotNil(t, greet)
	assert.Equal(t, source.ChunkTypeCodeFunction, greet.Type)
	assert.Equal(t, []string{"name"}, greet.Metadata["parameters"])
	assert.Contains(t, greet.Content, "func (g *Greeter) Greet")

	var calls, inherits []string
	for _, rel := range result.Relations {
		switch rel.Type {
		case source.RelationCalls:
			calls = append(calls, rel.FromEntity+"->"+rel.ToEntity)
		case source.RelationInherits:
			inherits = append(inherits, rel.FromEntity+"->"+rel.ToEntity)
		}
	}
	assert.Contains(t, calls, "Greeter.Greet->format")
	assert.Contains(t, inherits, "Greeter->Base")
}

func TestCodeTransformerPython(t *testing.T) {
	src := source.NewDataSource("app.py", source.SourceTypeCode).
		WithPath("app.py").
		WithMetadata("language", "python")

	content := `def helper(x):
    """Do the small thing."""
    return x + 1

class Worker(BaseWorker):
    def run(self):
        return helper(1)

def main():
    w = Worker()
    w.run()
`
	result, err := NewCodeTransformer().Transform(context.Background(), src, content)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 3)

	assert.Equal(t, "helper", result.Chunks[0].Title)
	assert.Equal(t, source.ChunkTypeCodeFunction, result.Chunks[0].Type)
	assert.Equal(t, "Do the small thing.", result.Chunks[0].Summary)
	assert.Equal(t, "Worker", result.Chunks[1].Title)
	assert.Equal(t, source.ChunkTypeCodeClass, result.Chunks[1].Type)
	assert.Equal(t, "main", result.Chunks[2].Title)

	var inherits, calls []string
	for _, rel := range result.Relations {
		switch rel.Type {
		case source.RelationInherits:
			inherits = append(inherits, rel.ToEntity)
		case source.RelationCalls:
			calls = append(calls, rel.FromEntity+"->"+rel.ToEntity)
		}
	}
	assert.Contains(t, inherits, "BaseWorker")
	assert.Contains(t, calls, "main->Worker")
	assert.Contains(t, calls, "main->w.run")
}

func TestCodeTransformerMalformedNeverFails(t *testing.T) {
	inputs := []string{
		"func broken( {{{",
		"package \n\nfunc }{",
		"this is not code at all",
		"def broken(:\n  pass",
	}
	for _, content := range inputs {
		src := source.NewDataSource("broken.go", source.SourceTypeCode).
			WithPath("broken.go").
			WithMetadata("language", "go")

		result, err := NewCodeTransformer().Transform(context.Background(), src, content)
		require.NoError(t, err, "input %q", content)
		require.True(t, result.Success)
		require.NotEmpty(t, result.Chunks, "input %q", content)
		assert.Equal(t, source.ChunkTypeCodeModule, result.Chunks[0].Type)
		assert.Equal(t, true, result.Chunks[0].Metadata["generic_fallback"])
	}
}

func TestCodeTransformerFallbackLineBlocks(t *testing.T) {
	var content string
	for i := 0; i < 120; i++ {
		content += "some unparseable line\n"
	}
	src := source.NewDataSource("big.rb", source.SourceTypeCode).WithPath("big.rb")

	result, err := NewCodeTransformer().Transform(context.Background(), src, content)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 3)
	assert.Equal(t, 1, result.Chunks[0].Metadata["start_line"])
	assert.Equal(t, 50, result.Chunks[0].Metadata["end_line"])
	assert.Equal(t, 51, result.Chunks[1].Metadata["start_line"])
}

func TestCodeTransformerEmptyContent(t *testing.T) {
	src := source.NewDataSource("empty.go", source.SourceTypeCode).WithPath("empty.go")
	_, err := NewCodeTransformer().Transform(context.Background(), src, "  \n ")
	assert.Error(t, err)
}
