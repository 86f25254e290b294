package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/graphlore/graphlore/internal/source"
	"golang.org/x/net/html"
)

// WebLoader loads web sources: HTML files on disk and remote URLs. The page
// title lands in the source metadata; scripts and styles are dropped.
type WebLoader struct {
	client *http.Client
}

// NewWebLoader creates a WebLoader with a 30 second fetch timeout.
func NewWebLoader() *WebLoader {
	return &WebLoader{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the loader identifier.
func (l *WebLoader) Name() string { return "web" }

// CanHandle reports true for web-typed sources and any source whose path is
// an http(s) URL.
func (l *WebLoader) CanHandle(src *source.DataSource) bool {
	if src.Type == source.SourceTypeWeb && (src.Path != "" || src.Content != "") {
		return true
	}
	return isURL(src.Path)
}

// Load fetches or reads the HTML and reduces it to text.
func (l *WebLoader) Load(ctx context.Context, src *source.DataSource) (string, error) {
	var raw string
	switch {
	case isURL(src.Path):
		fetched, err := l.fetch(ctx, src.Path)
		if err != nil {
			return "", err
		}
		raw = fetched
	case src.Path != "":
		read, err := readTextFile(src.Path)
		if err != nil {
			return "", err
		}
		raw = read
	default:
		raw = src.Content
	}

	if strings.ToLower(filepath.Ext(src.Path)) == ".html" ||
		strings.ToLower(filepath.Ext(src.Path)) == ".htm" ||
		isURL(src.Path) || looksLikeHTML(raw) {
		title, text, err := extractHTMLText(raw)
		if err != nil {
			return "", NewLoadError("failed to parse HTML", err)
		}
		if title != "" {
			src.WithMetadata("title", title)
		}
		return text, nil
	}
	return raw, nil
}

// fetch retrieves a URL with the loader's client.
func (l *WebLoader) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", NewLoadError(fmt.Sprintf("failed to create request for %s", url), err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", NewLoadError(fmt.Sprintf("failed to fetch %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", NewLoadError(fmt.Sprintf("HTTP %d fetching %s", resp.StatusCode, url), nil)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewLoadError(fmt.Sprintf("failed to read response from %s", url), err)
	}
	return decodeText(body), nil
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func looksLikeHTML(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// extractHTMLText returns the page title and the visible text of an HTML
// document, skipping script, style, and noscript subtrees.
func extractHTMLText(content string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", "", err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", "", err
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return title, strings.Join(parts, " "), nil
}
