package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want SourceType
	}{
		{"docs/guide.md", SourceTypeDocument},
		{"README.MD", SourceTypeDocument},
		{"notes.txt", SourceTypeDocument},
		{"manual.pdf", SourceTypeDocument},
		{"report.docx", SourceTypeDocument},
		{"internal/pipeline/orchestrator.go", SourceTypeCode},
		{"scripts/migrate.py", SourceTypeCode},
		{"web/app.tsx", SourceTypeCode},
		{"db/schema.sql", SourceTypeSQL},
		{"tables.DDL", SourceTypeSQL},
		{"config.yaml", SourceTypeConfig},
		{"settings.toml", SourceTypeConfig},
		{"package.json", SourceTypeConfig},
		{"index.html", SourceTypeWeb},
		{"page.htm", SourceTypeWeb},
		{"openapi.yaml", SourceTypeAPI},
		{"swagger.json", SourceTypeAPI},
		{"service-api-spec.yml", SourceTypeAPI},
		{"binary.bin", SourceTypeUnknown},
		{"Makefile", SourceTypeUnknown},
		{"", SourceTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path))
		})
	}
}

func TestClassify_CaseInsensitiveExtension(t *testing.T) {
	assert.Equal(t, SourceTypeCode, Classify("Main.GO"))
	assert.Equal(t, SourceTypeSQL, Classify("Schema.SQL"))
}

func TestNewFileSource_ClassifiesType(t *testing.T) {
	src := NewFileSource("pkg/server/handler.go")
	assert.Equal(t, SourceTypeCode, src.Type)
	assert.Equal(t, "pkg/server/handler.go", src.Path)
	assert.NoError(t, src.Validate())
}
