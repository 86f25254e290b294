// Package source defines the ingestion data model: data sources, the chunks
// and relations extracted from them, and the per-source processing result.
package source

import (
	"fmt"
	"time"

	"github.com/graphlore/graphlore/internal/types"
)

// SourceType is the semantic content type of a data source. It drives loader
// and transformer selection.
type SourceType string

const (
	SourceTypeDocument SourceType = "DOCUMENT"
	SourceTypeCode     SourceType = "CODE"
	SourceTypeSQL      SourceType = "SQL"
	SourceTypeAPI      SourceType = "API"
	SourceTypeConfig   SourceType = "CONFIG"
	SourceTypeWeb      SourceType = "WEB"
	SourceTypeUnknown  SourceType = "UNKNOWN"
)

// String returns the string representation of SourceType.
func (st SourceType) String() string {
	return string(st)
}

// IsValid checks if the SourceType is a known value.
func (st SourceType) IsValid() bool {
	switch st {
	case SourceTypeDocument, SourceTypeCode, SourceTypeSQL, SourceTypeAPI,
		SourceTypeConfig, SourceTypeWeb, SourceTypeUnknown:
		return true
	default:
		return false
	}
}

// DataSource describes one unit of content entering the pipeline. Exactly one
// of Path or Content must eventually resolve to text. Metadata is free-form
// and may be extended by loaders (e.g. detected language); all other fields
// are immutable after creation.
type DataSource struct {
	ID        types.ID       `json:"id"`
	Name      string         `json:"name"`
	Type      SourceType     `json:"type"`
	Path      string         `json:"source_path,omitempty"`
	Content   string         `json:"content,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewDataSource creates a DataSource with a fresh ID.
func NewDataSource(name string, sourceType SourceType) *DataSource {
	return &DataSource{
		ID:        types.NewID(),
		Name:      name,
		Type:      sourceType,
		Metadata:  make(map[string]any),
		CreatedAt: time.Now(),
	}
}

// NewFileSource creates a DataSource backed by a file on disk, classifying
// its type from the path.
func NewFileSource(path string) *DataSource {
	src := NewDataSource(path, Classify(path))
	src.Path = path
	return src
}

// WithPath sets the filesystem path for the source.
// Returns the source for method chaining.
func (s *DataSource) WithPath(path string) *DataSource {
	s.Path = path
	return s
}

// WithContent sets inline content for the source.
// Returns the source for method chaining.
func (s *DataSource) WithContent(content string) *DataSource {
	s.Content = content
	return s
}

// WithMetadata sets a metadata entry on the source.
// Returns the source for method chaining.
func (s *DataSource) WithMetadata(key string, value any) *DataSource {
	if s.Metadata == nil {
		s.Metadata = make(map[string]any)
	}
	s.Metadata[key] = value
	return s
}

// StringMetadata retrieves a string metadata value by key.
// Returns empty string if the key is absent or not a string.
func (s *DataSource) StringMetadata(key string) string {
	if v, ok := s.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// Validate validates the DataSource fields.
func (s *DataSource) Validate() error {
	if err := s.ID.Validate(); err != nil {
		return fmt.Errorf("invalid source ID: %w", err)
	}
	if s.Name == "" {
		return fmt.Errorf("source name cannot be empty")
	}
	if !s.Type.IsValid() {
		return fmt.Errorf("invalid source type: %s", s.Type)
	}
	if s.Path == "" && s.Content == "" {
		return fmt.Errorf("source must have either a path or inline content")
	}
	return nil
}
