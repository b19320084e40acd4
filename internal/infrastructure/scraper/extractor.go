package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsIngest/internal/apperr"
	"NewsIngest/internal/ports"
)

var contentSelectors = []string{
	".article-content",
	".content",
	".story",
	".main-article",
	"article",
}

var junkSelectors = []string{
	"script", "style", "iframe", "noscript", "header", "footer",
	".ad", ".advertisement", ".sponsored",
	".nav", ".navigation", ".menu",
	".social", ".share",
}

// Extractor downloads an article page and pulls out its main text for the
// rewrite prompt. Regional news sites use a handful of known content
// containers; anything else falls back to the page body.
type Extractor struct {
	client *http.Client
}

var _ ports.ContentExtractor = (*Extractor)(nil)

// NewExtractor wires an HTTP client with a bounded timeout.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Extractor{client: client}
}

// Extract fetches the page and returns the cleaned article text.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", apperr.NewFetch(pageURL, err)
	}
	req.Header.Set("User-Agent", "NewsIngest/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", apperr.NewFetch(pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.NewFetch(pageURL, fmt.Errorf("unexpected status %s", resp.Status))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", apperr.NewParse(pageURL, err)
	}

	return extractText(doc), nil
}

func extractText(doc *goquery.Document) string {
	doc.Find(strings.Join(junkSelectors, ", ")).Remove()

	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if text := normalize(sel.Text()); text != "" {
				return text
			}
		}
	}

	return normalize(doc.Find("body").Text())
}

func normalize(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n")
}
