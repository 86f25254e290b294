package transform

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/graphlore/graphlore/internal/source"
)

// headerLine matches a markdown ATX header at the start of a line.
var headerLine = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// DocumentTransformer splits documents into section chunks. Markdown is
// split on header boundaries with each section further size-chunked; plain
// text goes straight through the size chunker.
type DocumentTransformer struct {
	opts ChunkOptions
}

// NewDocumentTransformer creates a DocumentTransformer with default
// chunking options.
func NewDocumentTransformer() *DocumentTransformer {
	return &DocumentTransformer{opts: ChunkOptions{ChunkSize: DefaultChunkSize, Overlap: DefaultChunkOverlap}}
}

// WithChunkOptions overrides the chunking options.
// Returns the transformer for method chaining.
func (t *DocumentTransformer) WithChunkOptions(opts ChunkOptions) *DocumentTransformer {
	t.opts = opts
	return t
}

// Name returns the transformer identifier.
func (t *DocumentTransformer) Name() string { return "document" }

// CanHandle reports true for document- and web-typed sources.
func (t *DocumentTransformer) CanHandle(src *source.DataSource) bool {
	return src.Type == source.SourceTypeDocument || src.Type == source.SourceTypeWeb
}

// Transform splits the document into section chunks. Every non-empty input
// produces at least one chunk.
func (t *DocumentTransformer) Transform(ctx context.Context, src *source.DataSource, content string) (*source.ProcessingResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewTransformError(fmt.Sprintf("document %s has no content", src.Name), nil)
	}

	result := source.NewProcessingResult(src.ID)

	// Inline content carries no extension, so header presence decides.
	if (isMarkdown(src.Path) || src.Path == "") && headerLine.MatchString(content) {
		for _, sec := range splitSections(content) {
			for i, piece := range ChunkBySize(sec.body, t.opts) {
				chunk := source.NewChunk(src.ID, source.ChunkTypeDocumentSection, piece).
					WithTitle(sec.title).
					WithMetadata("section_level", sec.level).
					WithMetadata("piece", i)
				result.Chunks = append(result.Chunks, chunk)
			}
		}
	} else {
		for i, piece := range ChunkBySize(content, t.opts) {
			chunk := source.NewChunk(src.ID, source.ChunkTypeText, piece).
				WithMetadata("piece", i)
			if title := src.StringMetadata("title"); title != "" && i == 0 {
				chunk.WithTitle(title)
			}
			result.Chunks = append(result.Chunks, chunk)
		}
	}

	if len(result.Chunks) == 0 {
		// Whitespace-heavy but non-empty input still gets one chunk.
		result.Chunks = append(result.Chunks,
			source.NewChunk(src.ID, source.ChunkTypeText, strings.TrimSpace(content)))
	}
	result.WithMetadata("transformer", t.Name())
	return result, nil
}

// section is a markdown span between two header boundaries.
type section struct {
	title string
	level int
	body  string
}

// splitSections cuts markdown at header lines. Content before the first
// header becomes an untitled preamble section.
func splitSections(content string) []section {
	matches := headerLine.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return []section{{body: content}}
	}

	var sections []section
	if head := strings.TrimSpace(content[:matches[0][0]]); head != "" {
		sections = append(sections, section{body: head})
	}
	for i, m := range matches {
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(content[m[0]:end])
		if body == "" {
			continue
		}
		sections = append(sections, section{
			title: strings.TrimSpace(content[m[4]:m[5]]),
			level: m[3] - m[2],
			body:  body,
		})
	}
	return sections
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}
