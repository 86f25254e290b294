package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlore/graphlore/internal/source"
)

func TestDocumentTransformerMarkdownSections(t *testing.T) {
	src := source.NewDataSource("guide.md", source.SourceTypeDocument).WithPath("docs/guide.md")
	content := "intro text\n\n# Setup\n\ninstall things\n\n## Details\n\nmore words\n\n# Usage\n\nrun it"

	result, err := NewDocumentTransformer().Transform(context.Background(), src, content)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 4)

	assert.Equal(t, "", result.Chunks[0].Title)
	assert.Equal(t, "Setup", result.Chunks[1].Title)
	assert.Equal(t, 1, result.Chunks[1].Metadata["section_level"])
	assert.Equal(t, "Details", result.Chunks[2].Title)
	assert.Equal(t, 2, result.Chunks[2].Metadata["section_level"])
	assert.Equal(t, "Usage", result.Chunks[3].Title)

	for _, chunk := range result.Chunks {
		assert.Equal(t, source.ChunkTypeDocumentSection, chunk.Type)
		assert.Equal(t, src.ID, chunk.SourceID)
	}
}

func TestDocumentTransformerInlineMarkdown(t *testing.T) {
	src := source.NewDataSource("notes", source.SourceTypeDocument).
		WithContent("# Heading\n\nbody")

	result, err := NewDocumentTransformer().Transform(context.Background(), src, src.Content)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "Heading", result.Chunks[0].Title)
}

func TestDocumentTransformerPlainText(t *testing.T) {
	src := source.NewDataSource("readme.txt", source.SourceTypeDocument).
		WithPath("readme.txt").
		WithMetadata("title", "Readme")

	result, err := NewDocumentTransformer().Transform(context.Background(), src, "plain words only")
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, source.ChunkTypeText, result.Chunks[0].Type)
	assert.Equal(t, "Readme", result.Chunks[0].Title)
}

func TestDocumentTransformerEmptyContent(t *testing.T) {
	src := source.NewDataSource("empty.md", source.SourceTypeDocument).WithPath("empty.md")
	_, err := NewDocumentTransformer().Transform(context.Background(), src, "   ")
	assert.Error(t, err)
}

func TestDocumentTransformerLargeSectionSplit(t *testing.T) {
	src := source.NewDataSource("big.md", source.SourceTypeDocument).WithPath("big.md")
	content := "# Big\n\n" + words(300)

	result, err := NewDocumentTransformer().
		WithChunkOptions(ChunkOptions{ChunkSize: 100, Overlap: 10}).
		Transform(context.Background(), src, content)
	require.NoError(t, err)
	assert.True(t, len(result.Chunks) > 1)
	for _, chunk := range result.Chunks {
		assert.Equal(t, "Big", chunk.Title)
	}
}

func TestSplitSectionsNoHeaders(t *testing.T) {
	sections := splitSections("just text")
	require.Len(t, sections, 1)
	assert.Equal(t, "just text", sections[0].body)
	assert.Equal(t, "", sections[0].title)
}
