package loader

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/graphlore/graphlore/internal/source"
)

// FileLoader is the generic path-backed fallback. It reads any source with a
// filesystem path, attempting a Latin-1 fallback decode when the bytes are
// not valid UTF-8.
type FileLoader struct{}

// NewFileLoader creates a FileLoader.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Name returns the loader identifier.
func (l *FileLoader) Name() string { return "file" }

// CanHandle reports true for any source with a path.
func (l *FileLoader) CanHandle(src *source.DataSource) bool {
	return src.Path != ""
}

// Load reads the file at the source's path.
func (l *FileLoader) Load(ctx context.Context, src *source.DataSource) (string, error) {
	return readTextFile(src.Path)
}

// readTextFile reads a file and decodes it as UTF-8, falling back to Latin-1
// when the content is not valid UTF-8. Only a file that cannot be read at all
// produces an error.
func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", NewLoadError(fmt.Sprintf("failed to read %s", path), err)
	}
	return decodeText(data), nil
}

// decodeText interprets raw bytes as UTF-8, or as Latin-1 when invalid.
// Latin-1 maps every byte to a rune, so the fallback never fails.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
