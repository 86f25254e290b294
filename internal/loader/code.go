package loader

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/graphlore/graphlore/internal/source"
)

// languageByExtension maps code file extensions to language names used by
// the transformers and the ranker.
var languageByExtension = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".rb":    "ruby",
	".rs":    "rust",
	".c":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".h":     "c",
	".hpp":   "cpp",
	".cs":    "csharp",
	".kt":    "kotlin",
	".swift": "swift",
	".php":   "php",
}

// DetectLanguage returns the language for a code file path, or empty string.
func DetectLanguage(path string) string {
	return languageByExtension[strings.ToLower(filepath.Ext(path))]
}

// CodeLoader loads code sources and records the detected language in the
// source metadata for the transformer stage.
type CodeLoader struct{}

// NewCodeLoader creates a CodeLoader.
func NewCodeLoader() *CodeLoader {
	return &CodeLoader{}
}

// Name returns the loader identifier.
func (l *CodeLoader) Name() string { return "code" }

// CanHandle reports true for code-typed sources.
func (l *CodeLoader) CanHandle(src *source.DataSource) bool {
	return src.Type == source.SourceTypeCode && (src.Path != "" || src.Content != "")
}

// Load reads the code file and annotates the detected language.
func (l *CodeLoader) Load(ctx context.Context, src *source.DataSource) (string, error) {
	if lang := DetectLanguage(src.Path); lang != "" {
		src.WithMetadata("language", lang)
	}
	if src.Path == "" {
		return src.Content, nil
	}
	return readTextFile(src.Path)
}

// SQLLoader loads SQL sources.
type SQLLoader struct{}

// NewSQLLoader creates a SQLLoader.
func NewSQLLoader() *SQLLoader {
	return &SQLLoader{}
}

// Name returns the loader identifier.
func (l *SQLLoader) Name() string { return "sql" }

// CanHandle reports true for SQL-typed sources.
func (l *SQLLoader) CanHandle(src *source.DataSource) bool {
	return src.Type == source.SourceTypeSQL && (src.Path != "" || src.Content != "")
}

// Load reads the SQL file.
func (l *SQLLoader) Load(ctx context.Context, src *source.DataSource) (string, error) {
	src.WithMetadata("language", "sql")
	if src.Path == "" {
		return src.Content, nil
	}
	return readTextFile(src.Path)
}
