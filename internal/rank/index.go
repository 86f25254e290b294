package rank

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// FileDocument is what the local full-text index stores per file.
type FileDocument struct {
	Path    string `json:"path"`
	Lang    string `json:"lang"`
	Content string `json:"content"`
}

// Index is the local bleve full-text index that supplies base scores to the
// ranker without a round trip to the graph database.
type Index struct {
	index bleve.Index
}

// indexMapping builds the bleve mapping: content analyzed for full-text
// search, path and lang as stored keywords.
func indexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = standard.Name
	contentField.Store = false
	docMapping.AddFieldMappingsAt("content", contentField)

	pathField := bleve.NewTextFieldMapping()
	pathField.Analyzer = keyword.Name
	pathField.Store = true
	docMapping.AddFieldMappingsAt("path", pathField)

	langField := bleve.NewTextFieldMapping()
	langField.Analyzer = keyword.Name
	langField.Store = true
	docMapping.AddFieldMappingsAt("lang", langField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = docMapping
	m.DefaultAnalyzer = standard.Name
	return m
}

// OpenIndex opens the index at path, creating it when absent.
func OpenIndex(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == nil {
		return &Index{index: idx}, nil
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	idx, err = bleve.New(path, indexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index %s: %w", path, err)
	}
	return &Index{index: idx}, nil
}

// NewMemoryIndex creates an in-memory index, used in tests and one-shot
// runs.
func NewMemoryIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{index: idx}, nil
}

// IndexFile adds or replaces a file document keyed by path.
func (i *Index) IndexFile(path, lang, content string) error {
	return i.index.Index(path, FileDocument{Path: path, Lang: lang, Content: content})
}

// Remove deletes a file document.
func (i *Index) Remove(path string) error {
	return i.index.Delete(path)
}

// Search returns the files matching the query with bleve relevance scores.
func (i *Index) Search(query string, limit int) ([]FileHit, error) {
	if limit <= 0 {
		limit = 10
	}
	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("content")

	req := bleve.NewSearchRequest(matchQuery)
	req.Size = limit
	req.Fields = []string{"path", "lang"}

	result, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]FileHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		path, _ := hit.Fields["path"].(string)
		lang, _ := hit.Fields["lang"].(string)
		if path == "" {
			path = hit.ID
		}
		hits = append(hits, FileHit{Path: path, Lang: lang, Score: hit.Score})
	}
	return hits, nil
}

// DocCount returns the number of indexed files.
func (i *Index) DocCount() (uint64, error) {
	return i.index.DocCount()
}

// Close closes the underlying index.
func (i *Index) Close() error {
	return i.index.Close()
}
