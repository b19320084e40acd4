package ports

import (
	"context"
	"time"

	"NewsIngest/internal/domain"
)

// CandidateSource pulls fresh article candidates from all configured feeds.
type CandidateSource interface {
	FetchAll(ctx context.Context) ([]domain.Candidate, error)
}

// ScanFilter narrows Scan results. Zero values mean "no constraint".
type ScanFilter struct {
	Status domain.Status
	Limit  int
}

// ArticleStore is the durable mapping from article identity to record.
// Create enforces source-link uniqueness; MarkProcessed and MarkFailed are
// guarded transitions out of the pending state. Reads never block writers.
type ArticleStore interface {
	Create(ctx context.Context, cand domain.Candidate) (domain.Article, error)
	MarkProcessed(ctx context.Context, id, rewritten string, seo *domain.SEOData) error
	MarkFailed(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Article, error)
	FindBySourceLink(ctx context.Context, link string) (domain.Article, bool, error)
	Scan(ctx context.Context, filter ScanFilter) ([]domain.Article, error)
}

// Rewriter submits raw article content to the external rewrite service and
// returns the polished version.
type Rewriter interface {
	Rewrite(ctx context.Context, content string) (string, error)
}

// ContentExtractor fetches the full article page and extracts its main text.
type ContentExtractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// Scheduler drives recurring sweeps.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
