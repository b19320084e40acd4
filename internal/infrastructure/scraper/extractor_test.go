package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NewsIngest/internal/apperr"
)

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtractPicksContentContainer(t *testing.T) {
	t.Parallel()

	server := serveHTML(t, `<html><body>
		<header>Site navigation</header>
		<div class="article-content">
			<p>First paragraph.</p>
			<p>Second paragraph.</p>
		</div>
		<footer>Copyright</footer>
	</body></html>`)

	extractor := NewExtractor(server.Client())
	text, err := extractor.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if !strings.Contains(text, "First paragraph.") || !strings.Contains(text, "Second paragraph.") {
		t.Fatalf("content lost: %q", text)
	}
	if strings.Contains(text, "Site navigation") || strings.Contains(text, "Copyright") {
		t.Fatalf("chrome must be stripped: %q", text)
	}
}

func TestExtractStripsJunkInsideContent(t *testing.T) {
	t.Parallel()

	server := serveHTML(t, `<html><body>
		<article>
			<p>Real story text.</p>
			<script>trackPageview();</script>
			<div class="advertisement">Buy now</div>
			<div class="share">Share on socials</div>
		</article>
	</body></html>`)

	extractor := NewExtractor(server.Client())
	text, err := extractor.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if !strings.Contains(text, "Real story text.") {
		t.Fatalf("content lost: %q", text)
	}
	for _, junk := range []string{"trackPageview", "Buy now", "Share on socials"} {
		if strings.Contains(text, junk) {
			t.Fatalf("junk %q survived: %q", junk, text)
		}
	}
}

func TestExtractFallsBackToBody(t *testing.T) {
	t.Parallel()

	server := serveHTML(t, `<html><body><div><p>Plain page text.</p></div></body></html>`)

	extractor := NewExtractor(server.Client())
	text, err := extractor.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Plain page text.") {
		t.Fatalf("body fallback failed: %q", text)
	}
}

func TestExtractNon200Status(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	extractor := NewExtractor(server.Client())
	_, err := extractor.Extract(context.Background(), server.URL)

	var fetchErr *apperr.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestNormalizeCollapsesBlankLines(t *testing.T) {
	t.Parallel()

	got := normalize("  first line  \n\n\n   second line\n")
	if got != "first line\nsecond line" {
		t.Fatalf("got %q", got)
	}
}
