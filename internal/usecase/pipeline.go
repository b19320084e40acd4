package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"NewsIngest/internal/apperr"
	"NewsIngest/internal/dedupe"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
	"NewsIngest/internal/seo"
	"NewsIngest/internal/sitemap"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source    ports.CandidateSource
	Store     ports.ArticleStore
	Rewriter  ports.Rewriter
	Extractor ports.ContentExtractor
	SEO       *seo.Generator
	Exporter  *sitemap.Exporter
	Logger    *slog.Logger

	MaxContentChars  int
	RewriteBatchSize int
	SitemapDir       string
}

// Pipeline implements the ingestion, rewrite, and export sweeps. Per-item
// failures are logged and skipped; only a failure to read or write the record
// collection itself aborts a sweep, and the next scheduled sweep retries from
// scratch.
type Pipeline struct {
	source    ports.CandidateSource
	store     ports.ArticleStore
	rewriter  ports.Rewriter
	extractor ports.ContentExtractor
	seo       *seo.Generator
	exporter  *sitemap.Exporter
	logger    *slog.Logger

	maxContentChars  int
	rewriteBatchSize int
	sitemapDir       string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:           deps.Source,
		store:            deps.Store,
		rewriter:         deps.Rewriter,
		extractor:        deps.Extractor,
		seo:              deps.SEO,
		exporter:         deps.Exporter,
		logger:           logger,
		maxContentChars:  deps.MaxContentChars,
		rewriteBatchSize: deps.RewriteBatchSize,
		sitemapDir:       deps.SitemapDir,
	}
}

// Ingest runs one scrape-normalize-dedupe-persist pass. All feed batches are
// merged and deduplicated against a single snapshot of the record set before
// any write, so two sources carrying the same link cannot produce two
// records.
func (p *Pipeline) Ingest(ctx context.Context) error {
	candidates, err := p.source.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch feeds: %w", err)
	}

	snapshot, err := p.store.Scan(ctx, ports.ScanFilter{})
	if err != nil {
		return fmt.Errorf("snapshot records: %w", err)
	}

	fresh := dedupe.Filter(candidates, dedupe.KnownLinks(snapshot))

	created := 0
	for _, cand := range fresh {
		if _, err := p.store.Create(ctx, cand); err != nil {
			var dup *apperr.DuplicateKeyError
			if errors.As(err, &dup) {
				// Dedup ran against a consistent snapshot, so this means a
				// competing writer; the record exists either way.
				p.logger.Warn("candidate already stored", "link", cand.SourceLink)
				continue
			}
			p.logger.Error("create record", "link", cand.SourceLink, "error", err)
			continue
		}
		created++
	}

	p.logger.Info("ingest sweep done",
		"candidates", len(candidates),
		"new", len(fresh),
		"created", created)
	return nil
}

// RewritePending submits pending records to the rewrite service, strictly one
// at a time to respect the service's rate limits. A failed record is marked
// failed and the sweep moves on; there is no automatic retry.
func (p *Pipeline) RewritePending(ctx context.Context) error {
	if p.rewriter == nil {
		p.logger.Debug("no rewriter configured, skipping sweep")
		return nil
	}

	pending, err := p.store.Scan(ctx, ports.ScanFilter{
		Status: domain.StatusPending,
		Limit:  p.rewriteBatchSize,
	})
	if err != nil {
		return fmt.Errorf("scan pending: %w", err)
	}

	processed, failed := 0, 0
	for _, rec := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if p.rewriteOne(ctx, rec) {
			processed++
		} else {
			failed++
		}
	}

	p.logger.Info("rewrite sweep done",
		"pending", len(pending),
		"processed", processed,
		"failed", failed)
	return nil
}

func (p *Pipeline) rewriteOne(ctx context.Context, rec domain.Article) bool {
	content := p.sourceContent(ctx, rec)

	rewritten, err := p.rewriter.Rewrite(ctx, truncateRunes(content, p.maxContentChars))
	if err != nil {
		p.logger.Warn("rewrite failed", "id", rec.ID, "title", rec.Title, "error", err)
		if mErr := p.store.MarkFailed(ctx, rec.ID); mErr != nil {
			p.logger.Error("mark failed", "id", rec.ID, "error", mErr)
		}
		return false
	}

	seoData := p.seo.Derive(rec)
	if err := p.store.MarkProcessed(ctx, rec.ID, rewritten, seoData); err != nil {
		p.logger.Error("mark processed", "id", rec.ID, "error", err)
		return false
	}

	p.logger.Info("article processed", "id", rec.ID, "title", rec.Title)
	return true
}

// sourceContent picks what goes into the rewrite prompt: scraped feed
// content when present, else the full page pulled from the source link, else
// the feed description.
func (p *Pipeline) sourceContent(ctx context.Context, rec domain.Article) string {
	if rec.RawContent != "" {
		return rec.RawContent
	}

	if p.extractor != nil {
		text, err := p.extractor.Extract(ctx, rec.SourceLink)
		if err != nil {
			p.logger.Warn("extract full article", "id", rec.ID, "error", err)
		} else if text != "" {
			return text
		}
	}

	return rec.Description
}

// Export derives both sitemap documents from the current record set and
// writes them atomically.
func (p *Pipeline) Export(ctx context.Context) error {
	records, err := p.store.Scan(ctx, ports.ScanFilter{})
	if err != nil {
		return fmt.Errorf("scan records: %w", err)
	}

	standard, err := p.exporter.Build(records)
	if err != nil {
		return err
	}
	news, err := p.exporter.BuildNews(records)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(filepath.Join(p.sitemapDir, "sitemap.xml"), standard); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(p.sitemapDir, "sitemap-news.xml"), news); err != nil {
		return err
	}

	p.logger.Info("export sweep done", "records", len(records))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
