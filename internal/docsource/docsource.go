// Package docsource loads quotation documents as plain text: UTF-8 files
// from a directory, or remote pages fetched over HTTP with HTML stripped.
// PDFs are out of scope; they must arrive already converted to text.
package docsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/httputil"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
)

// textExtensions are the file types LoadDir picks up.
var textExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".md":   true,
}

// Loader reads quotation documents from the local filesystem or remote URLs.
type Loader struct {
	http *httputil.Client
	log  *logger.Logger
}

// New builds a Loader. httpClient may be nil when only LoadDir is used.
func New(httpClient *httputil.Client, log *logger.Logger) *Loader {
	return &Loader{
		http: httpClient,
		log:  log.WithField("component", "docsource"),
	}
}

// LoadDir reads every text document in dir, sorted by file name so batches
// assemble in a stable order. An empty directory is an error: a comparison
// with nothing to compare is a caller mistake worth surfacing early.
func (l *Loader) LoadDir(dir string) ([]contracts.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read documents dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if textExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no text documents found in %s", dir)
	}

	docs := make([]contracts.Document, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", name, err)
		}
		docs = append(docs, contracts.Document{Name: name, Text: string(data)})
	}

	l.log.WithFields(map[string]interface{}{
		"dir":   dir,
		"count": len(docs),
	}).Info("Documents loaded")

	return docs, nil
}

// Fetch downloads one remote document. HTML responses are reduced to their
// visible text; everything else passes through as-is.
func (l *Loader) Fetch(ctx context.Context, url string) (contracts.Document, error) {
	if l.http == nil {
		return contracts.Document{}, fmt.Errorf("fetch %s: no HTTP client configured", url)
	}

	resp, err := l.http.Get(ctx, url)
	if err != nil {
		return contracts.Document{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return contracts.Document{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc := contracts.Document{Name: documentName(url)}

	if isHTML(resp.Header.Get("Content-Type")) {
		text, err := stripHTML(resp.Body)
		if err != nil {
			return contracts.Document{}, fmt.Errorf("parse %s: %w", url, err)
		}
		doc.Text = text
	} else {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return contracts.Document{}, fmt.Errorf("read %s: %w", url, err)
		}
		doc.Text = string(body)
	}

	l.log.WithFields(map[string]interface{}{
		"url":   url,
		"bytes": len(doc.Text),
	}).Info("Document fetched")

	return doc, nil
}

// FetchAll downloads every URL in order. One bad URL fails the whole set;
// remote batches are deliberate configurations, not best-effort scrapes.
func (l *Loader) FetchAll(ctx context.Context, urls []string) ([]contracts.Document, error) {
	docs := make([]contracts.Document, 0, len(urls))
	for _, url := range urls {
		doc, err := l.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func isHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}

// stripHTML extracts the visible text of an HTML page. Script and style
// bodies are dropped; block boundaries collapse to single newlines so the
// extraction model sees roughly the layout a reader would.
func stripHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	root.Find("*").Each(func(i int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		b.WriteString(text)
		b.WriteString("\n")
	})

	text := strings.TrimSpace(b.String())
	if text == "" {
		// Fallback for pages without leaf elements.
		text = strings.TrimSpace(root.Text())
	}
	return text, nil
}

// documentName derives a stable document name from the URL path.
func documentName(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx < len(trimmed)-1 {
		return trimmed[idx+1:]
	}
	return trimmed
}
