package transform

import "strings"

// DefaultChunkSize is the target chunk size in words.
const DefaultChunkSize = 512

// DefaultChunkOverlap is the number of tail words carried into the next
// chunk to preserve context across chunk boundaries.
const DefaultChunkOverlap = 50

// ChunkOptions controls the size chunker. Sizes are in words.
type ChunkOptions struct {
	ChunkSize int
	Overlap   int
}

// Normalize clamps the options to sane values: positive size, overlap
// strictly smaller than size.
func (o ChunkOptions) Normalize() ChunkOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.Overlap >= o.ChunkSize {
		o.Overlap = o.ChunkSize - 1
	}
	return o
}

// ChunkBySize splits text into word-windowed chunks. Every chunk after the
// first starts with the last Overlap words of its predecessor, so the
// non-overlapping portions of consecutive chunks concatenate back to the
// original word sequence with no gaps. Empty input yields no chunks;
// any non-empty input yields at least one.
func ChunkBySize(text string, opts ChunkOptions) []string {
	opts = opts.Normalize()
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(words); start += opts.ChunkSize {
		end := start + opts.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		carry := start - opts.Overlap
		if carry < 0 {
			carry = 0
		}
		chunks = append(chunks, strings.Join(words[carry:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
