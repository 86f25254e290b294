package transform

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunkBySizeEmpty(t *testing.T) {
	assert.Nil(t, ChunkBySize("", ChunkOptions{}))
	assert.Nil(t, ChunkBySize("   \n\t  ", ChunkOptions{}))
}

func TestChunkBySizeSingleChunk(t *testing.T) {
	chunks := ChunkBySize("one two three", ChunkOptions{ChunkSize: 512, Overlap: 50})
	require.Len(t, chunks, 1)
	assert.Equal(t, "one two three", chunks[0])
}

func TestChunkBySizeOverlapCarry(t *testing.T) {
	chunks := ChunkBySize(words(25), ChunkOptions{ChunkSize: 10, Overlap: 3})
	require.Len(t, chunks, 3)

	// Each chunk after the first starts with the previous chunk's tail.
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		cur := strings.Fields(chunks[i])
		tail := prev[len(prev)-3:]
		assert.Equal(t, tail, cur[:3], "chunk %d should carry the previous tail", i)
	}
}

func TestChunkBySizeReconstruction(t *testing.T) {
	original := words(1200)
	opts := ChunkOptions{ChunkSize: 100, Overlap: 20}
	chunks := ChunkBySize(original, opts)
	require.True(t, len(chunks) > 1)

	var rebuilt []string
	for i, chunk := range chunks {
		fields := strings.Fields(chunk)
		if i > 0 {
			fields = fields[opts.Overlap:]
		}
		rebuilt = append(rebuilt, fields...)
	}
	assert.Equal(t, strings.Fields(original), rebuilt)
}

func TestChunkBySizeMaxLength(t *testing.T) {
	chunks := ChunkBySize(words(3000), ChunkOptions{ChunkSize: 512, Overlap: 50})
	for i, chunk := range chunks {
		n := len(strings.Fields(chunk))
		assert.LessOrEqual(t, n, 512+50, "chunk %d exceeds size plus overlap", i)
	}
}

func TestChunkOptionsNormalize(t *testing.T) {
	opts := ChunkOptions{ChunkSize: 0, Overlap: -1}.Normalize()
	assert.Equal(t, DefaultChunkSize, opts.ChunkSize)
	assert.Equal(t, 0, opts.Overlap)

	opts = ChunkOptions{ChunkSize: 10, Overlap: 99}.Normalize()
	assert.Equal(t, 9, opts.Overlap)
}
