package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsIngest/internal/config"
	"NewsIngest/internal/feed"
	"NewsIngest/internal/infrastructure/fetcher"
)

func feedDocument(link string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><title>item</title><link>%s</link></item>
</channel></rss>`, link)
}

func TestFeedSourceMergesInConfigOrder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			_, _ = w.Write([]byte(feedDocument("https://x/a")))
		case "/b":
			_, _ = w.Write([]byte(feedDocument("https://x/b")))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	registry := feed.NewRegistry()
	registry.Register(NewRSSParser())

	source := NewFeedSource(fetcher.New(server.Client()), registry, []config.Feed{
		{Name: "A", URL: server.URL + "/a", Parser: "rss"},
		{Name: "B", URL: server.URL + "/b", Parser: "rss"},
	}, nil)

	candidates, err := source.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].SourceLink != "https://x/a" || candidates[1].SourceLink != "https://x/b" {
		t.Fatalf("merge must preserve config order, got %s then %s",
			candidates[0].SourceLink, candidates[1].SourceLink)
	}
	if candidates[0].Source != "A" {
		t.Fatalf("unexpected source tag: %s", candidates[0].Source)
	}
}

func TestFeedSourceSkipsFailingFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/down":
			w.WriteHeader(http.StatusInternalServerError)
		case "/broken":
			_, _ = w.Write([]byte("not xml at all"))
		default:
			_, _ = w.Write([]byte(feedDocument("https://x/ok")))
		}
	}))
	defer server.Close()

	registry := feed.NewRegistry()
	registry.Register(NewRSSParser())

	source := NewFeedSource(fetcher.New(server.Client()), registry, []config.Feed{
		{Name: "Down", URL: server.URL + "/down", Parser: "rss"},
		{Name: "Broken", URL: server.URL + "/broken", Parser: "rss"},
		{Name: "Unregistered", URL: server.URL + "/ok", Parser: "nope"},
		{Name: "OK", URL: server.URL + "/ok", Parser: "rss"},
	}, nil)

	candidates, err := source.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected only the healthy feed's candidate, got %d", len(candidates))
	}
	if candidates[0].SourceLink != "https://x/ok" {
		t.Fatalf("unexpected candidate: %s", candidates[0].SourceLink)
	}
}
