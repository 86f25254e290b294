package loader

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/graphlore/graphlore/internal/source"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DocumentLoader loads document sources: markdown and plain text directly,
// PDF via pdfcpu content extraction, and DOCX via the embedded document XML.
type DocumentLoader struct{}

// NewDocumentLoader creates a DocumentLoader.
func NewDocumentLoader() *DocumentLoader {
	return &DocumentLoader{}
}

// Name returns the loader identifier.
func (l *DocumentLoader) Name() string { return "document" }

// CanHandle reports true for document-typed sources.
func (l *DocumentLoader) CanHandle(src *source.DataSource) bool {
	return src.Type == source.SourceTypeDocument && (src.Path != "" || src.Content != "")
}

// Load resolves the document to text. Binary formats that cannot be
// extracted produce a LOAD_FAILED error rather than empty text.
func (l *DocumentLoader) Load(ctx context.Context, src *source.DataSource) (string, error) {
	if src.Path == "" {
		return src.Content, nil
	}

	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".pdf":
		return l.loadPDF(src)
	case ".docx":
		return l.loadDOCX(src)
	case ".doc":
		return "", NewLoadError(
			fmt.Sprintf("legacy .doc format is not supported, convert %s to .docx", src.Path), nil)
	default:
		return readTextFile(src.Path)
	}
}

// pdfTextOp matches literal strings fed to the Tj/TJ text-showing operators
// in a PDF content stream.
var pdfTextOp = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)

// loadPDF validates the PDF and extracts text from its page content streams.
func (l *DocumentLoader) loadPDF(src *source.DataSource) (string, error) {
	pdfCtx, err := api.ReadContextFile(src.Path)
	if err != nil {
		return "", NewLoadError(fmt.Sprintf("failed to read PDF %s", src.Path), err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return "", NewLoadError(fmt.Sprintf("invalid PDF %s", src.Path), err)
	}

	outDir, err := os.MkdirTemp("", "graphlore-pdf-*")
	if err != nil {
		return "", NewLoadError("failed to create extraction dir", err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(src.Path, outDir, nil, nil); err != nil {
		return "", NewLoadError(fmt.Sprintf("failed to extract content from %s", src.Path), err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", NewLoadError("failed to read extraction dir", err)
	}

	var b strings.Builder
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}
		for _, match := range pdfTextOp.FindAllStringSubmatch(string(data), -1) {
			text := unescapePDFString(match[1])
			if strings.TrimSpace(text) == "" {
				continue
			}
			b.WriteString(text)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", NewLoadError(
			fmt.Sprintf("no extractable text in PDF %s (image-only or encoded streams)", src.Path), nil)
	}
	src.WithMetadata("page_count", pdfCtx.PageCount)
	return text, nil
}

// unescapePDFString resolves the escape sequences PDF literal strings use.
func unescapePDFString(s string) string {
	replacer := strings.NewReplacer(
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
	)
	return replacer.Replace(s)
}

// docxText matches the shape of WordprocessingML run text elements.
type docxText struct {
	Value string `xml:",chardata"`
}

// loadDOCX pulls paragraph text out of the document part of a DOCX archive.
func (l *DocumentLoader) loadDOCX(src *source.DataSource) (string, error) {
	archive, err := zip.OpenReader(src.Path)
	if err != nil {
		return "", NewLoadError(fmt.Sprintf("failed to open DOCX %s", src.Path), err)
	}
	defer archive.Close()

	var docFile *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", NewLoadError(fmt.Sprintf("%s has no word/document.xml part", src.Path), nil)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", NewLoadError("failed to open document part", err)
	}
	defer rc.Close()

	var b strings.Builder
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", NewLoadError("failed to parse document XML", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				var t docxText
				if err := decoder.DecodeElement(&t, &el); err == nil {
					b.WriteString(t.Value)
				}
			}
		case xml.EndElement:
			// Paragraph boundaries become newlines.
			if el.Name.Local == "p" {
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
