package parser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/feed"
	"NewsIngest/internal/infrastructure/fetcher"
	"NewsIngest/internal/ports"
)

// FeedSource implements CandidateSource by fetching every configured feed and
// dispatching each document to its registered parser. Fetches fan out
// concurrently; the merged batch preserves config order so deduplication
// stays reproducible.
type FeedSource struct {
	fetcher  *fetcher.Client
	registry *feed.Registry
	feeds    []config.Feed
	logger   *slog.Logger
}

var _ ports.CandidateSource = (*FeedSource)(nil)

// NewFeedSource wires the fetch client and parser registry with config-defined feeds.
func NewFeedSource(client *fetcher.Client, reg *feed.Registry, feeds []config.Feed, log *slog.Logger) *FeedSource {
	return &FeedSource{
		fetcher:  client,
		registry: reg,
		feeds:    feeds,
		logger:   log,
	}
}

// FetchAll retrieves and parses all feeds. A failing or malformed source is
// logged and skipped; it never aborts the cycle.
func (s *FeedSource) FetchAll(ctx context.Context) ([]domain.Candidate, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("parser registry is not configured")
	}

	s.debug("fetch all feeds", "feeds", len(s.feeds))

	// One slot per feed keeps the merged output in config order regardless
	// of fetch completion order.
	batches := make([][]domain.Candidate, len(s.feeds))

	var wg sync.WaitGroup
	for i, f := range s.feeds {
		wg.Add(1)
		go func(i int, f config.Feed) {
			defer wg.Done()
			batches[i] = s.fetchOne(ctx, f)
		}(i, f)
	}
	wg.Wait()

	var merged []domain.Candidate
	for _, batch := range batches {
		merged = append(merged, batch...)
	}

	s.debug("feed source done", "total_candidates", len(merged))
	return merged, nil
}

func (s *FeedSource) fetchOne(ctx context.Context, f config.Feed) []domain.Candidate {
	strategy, err := s.registry.Resolve(f.Parser)
	if err != nil {
		s.warn("skip feed", "feed", f.Name, "error", err)
		return nil
	}

	raw, err := s.fetcher.Fetch(ctx, f.URL)
	if err != nil {
		s.warn("skip feed", "feed", f.Name, "error", err)
		return nil
	}

	candidates, err := strategy.Parse(f.Name, raw)
	if err != nil {
		s.warn("skip feed", "feed", f.Name, "error", err)
		return nil
	}

	s.debug("feed produced candidates", "feed", f.Name, "count", len(candidates))
	return candidates
}

func (s *FeedSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *FeedSource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
