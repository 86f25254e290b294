package source

import (
	"path/filepath"
	"strings"
)

// extensionTypes maps lowercase file extensions to source types. Unlisted
// extensions classify as UNKNOWN.
var extensionTypes = map[string]SourceType{
	".md":       SourceTypeDocument,
	".markdown": SourceTypeDocument,
	".txt":      SourceTypeDocument,
	".rst":      SourceTypeDocument,
	".pdf":      SourceTypeDocument,
	".docx":     SourceTypeDocument,
	".doc":      SourceTypeDocument,

	".go":    SourceTypeCode,
	".py":    SourceTypeCode,
	".js":    SourceTypeCode,
	".jsx":   SourceTypeCode,
	".ts":    SourceTypeCode,
	".tsx":   SourceTypeCode,
	".java":  SourceTypeCode,
	".rb":    SourceTypeCode,
	".rs":    SourceTypeCode,
	".c":     SourceTypeCode,
	".cc":    SourceTypeCode,
	".cpp":   SourceTypeCode,
	".h":     SourceTypeCode,
	".hpp":   SourceTypeCode,
	".cs":    SourceTypeCode,
	".kt":    SourceTypeCode,
	".swift": SourceTypeCode,
	".php":   SourceTypeCode,

	".sql": SourceTypeSQL,
	".ddl": SourceTypeSQL,

	".yaml": SourceTypeConfig,
	".yml":  SourceTypeConfig,
	".json": SourceTypeConfig,
	".toml": SourceTypeConfig,
	".ini":  SourceTypeConfig,
	".env":  SourceTypeConfig,

	".html": SourceTypeWeb,
	".htm":  SourceTypeWeb,
}

// apiNameMarkers are filename substrings that mark a spec-style API
// description regardless of extension.
var apiNameMarkers = []string{"openapi", "swagger", "api-spec", "apispec"}

// Classify maps a file path or name to its semantic content type. It is a
// total function: any input, including empty or extensionless paths, yields a
// valid SourceType (falling back to UNKNOWN).
func Classify(path string) SourceType {
	base := strings.ToLower(filepath.Base(path))

	// API specs are named, not extension-typed (openapi.yaml, swagger.json).
	for _, marker := range apiNameMarkers {
		if strings.Contains(base, marker) {
			return SourceTypeAPI
		}
	}

	ext := strings.ToLower(filepath.Ext(base))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return SourceTypeUnknown
}
