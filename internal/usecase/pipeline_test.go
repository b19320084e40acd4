package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/infrastructure/storage"
	"NewsIngest/internal/ports"
	"NewsIngest/internal/seo"
	"NewsIngest/internal/sitemap"
)

type fakeSource struct {
	batches [][]domain.Candidate
	calls   int
}

func (f *fakeSource) FetchAll(ctx context.Context) ([]domain.Candidate, error) {
	batch := f.batches[0]
	if len(f.batches) > 1 {
		f.batches = f.batches[1:]
	}
	f.calls++
	return batch, nil
}

type fakeRewriter struct {
	failFor  map[string]error
	rewrites []string
	inFlight int
	maxSeen  int
}

func (f *fakeRewriter) Rewrite(ctx context.Context, content string) (string, error) {
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	defer func() { f.inFlight-- }()

	if err, ok := f.failFor[content]; ok {
		return "", err
	}
	f.rewrites = append(f.rewrites, content)
	return "rewritten: " + content, nil
}

func newTestPipeline(t *testing.T, source ports.CandidateSource, rewriter ports.Rewriter) (*Pipeline, ports.ArticleStore, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewFileStore(filepath.Join(dir, "articles.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	p := NewPipeline(PipelineDeps{
		Source:           source,
		Store:            store,
		Rewriter:         rewriter,
		SEO:              seo.NewGenerator("https://news.example.com", "Example News", []string{"odisha"}),
		Exporter:         sitemap.NewExporter("https://news.example.com", "Example News", "en", 0),
		MaxContentChars:  1000,
		RewriteBatchSize: 50,
		SitemapDir:       dir,
	})
	return p, store, dir
}

func candidate(title, link string) domain.Candidate {
	return domain.Candidate{
		Title:      title,
		SourceLink: link,
		Content:    "body of " + title,
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	t.Parallel()

	source := &fakeSource{batches: [][]domain.Candidate{{
		candidate("one", "https://src/1"),
		candidate("two", "https://src/2"),
	}}}
	p, store, _ := newTestPipeline(t, source, nil)
	ctx := context.Background()

	if err := p.Ingest(ctx); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if err := p.Ingest(ctx); err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	records, err := store.Scan(ctx, ports.ScanFilter{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("repeated ingest of the same feed must not duplicate, got %d records", len(records))
	}
}

func TestIngestKeepsFirstTitleForDuplicateLink(t *testing.T) {
	t.Parallel()

	source := &fakeSource{batches: [][]domain.Candidate{{
		candidate("first headline", "https://src/same"),
		candidate("second headline", "https://src/same"),
	}}}
	p, store, _ := newTestPipeline(t, source, nil)
	ctx := context.Background()

	if err := p.Ingest(ctx); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	records, err := store.Scan(ctx, ports.ScanFilter{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record for a repeated link, got %d", len(records))
	}
	if records[0].Title != "first headline" {
		t.Fatalf("first occurrence must win, got title %q", records[0].Title)
	}
}

func TestIngestSkipsLinksFromEarlierSweeps(t *testing.T) {
	t.Parallel()

	source := &fakeSource{batches: [][]domain.Candidate{
		{candidate("day one", "https://src/story")},
		{candidate("day two rerun", "https://src/story"), candidate("fresh", "https://src/fresh")},
	}}
	p, store, _ := newTestPipeline(t, source, nil)
	ctx := context.Background()

	if err := p.Ingest(ctx); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if err := p.Ingest(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	records, err := store.Scan(ctx, ports.ScanFilter{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records across sweeps, got %d", len(records))
	}
	if records[0].Title != "day one" {
		t.Fatalf("existing record must keep its original title, got %q", records[0].Title)
	}
}

func TestRewritePendingIsolatesFailures(t *testing.T) {
	t.Parallel()

	source := &fakeSource{batches: [][]domain.Candidate{{
		candidate("good one", "https://src/1"),
		candidate("bad", "https://src/2"),
		candidate("good two", "https://src/3"),
	}}}
	rewriter := &fakeRewriter{failFor: map[string]error{
		"body of bad": errors.New("service unavailable"),
	}}
	p, store, _ := newTestPipeline(t, source, rewriter)
	ctx := context.Background()

	if err := p.Ingest(ctx); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := p.RewritePending(ctx); err != nil {
		t.Fatalf("rewrite sweep: %v", err)
	}

	records, err := store.Scan(ctx, ports.ScanFilter{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	byTitle := map[string]domain.Article{}
	for _, rec := range records {
		byTitle[rec.Title] = rec
	}

	for _, title := range []string{"good one", "good two"} {
		rec := byTitle[title]
		if rec.Status != domain.StatusProcessed {
			t.Fatalf("%q should be processed, got %s", title, rec.Status)
		}
		if !strings.HasPrefix(rec.RewrittenContent, "rewritten: ") {
			t.Fatalf("%q missing rewritten content", title)
		}
		if rec.SEO == nil {
			t.Fatalf("%q missing seo metadata", title)
		}
		if rec.SEO.Canonical != "https://news.example.com/article/"+rec.ID {
			t.Fatalf("unexpected canonical url %q", rec.SEO.Canonical)
		}
	}

	bad := byTitle["bad"]
	if bad.Status != domain.StatusFailed {
		t.Fatalf("failing record should be marked failed, got %s", bad.Status)
	}
	if bad.RewrittenContent != "" || bad.SEO != nil {
		t.Fatalf("failed record must not carry rewrite output")
	}
	if rewriter.maxSeen != 1 {
		t.Fatalf("rewrite calls must be serial, saw %d in flight", rewriter.maxSeen)
	}
}

func TestRewritePendingSkipsNonPending(t *testing.T) {
	t.Parallel()

	source := &fakeSource{batches: [][]domain.Candidate{{
		candidate("done already", "https://src/1"),
		candidate("still pending", "https://src/2"),
	}}}
	rewriter := &fakeRewriter{}
	p, store, _ := newTestPipeline(t, source, rewriter)
	ctx := context.Background()

	if err := p.Ingest(ctx); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := p.RewritePending(ctx); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if err := p.RewritePending(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	// Two records, one rewrite each; the second sweep finds nothing pending.
	if len(rewriter.rewrites) != 2 {
		t.Fatalf("processed records must not be rewritten again, got %d calls", len(rewriter.rewrites))
	}

	pending, err := store.Scan(ctx, ports.ScanFilter{Status: domain.StatusPending})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending records, got %d", len(pending))
	}
}

func TestRewritePendingWithoutRewriterIsANoOp(t *testing.T) {
	t.Parallel()

	source := &fakeSource{batches: [][]domain.Candidate{{
		candidate("waits", "https://src/1"),
	}}}
	p, store, _ := newTestPipeline(t, source, nil)
	ctx := context.Background()

	if err := p.Ingest(ctx); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := p.RewritePending(ctx); err != nil {
		t.Fatalf("sweep without rewriter: %v", err)
	}

	pending, err := store.Scan(ctx, ports.ScanFilter{Status: domain.StatusPending})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("record should stay pending, got %d pending", len(pending))
	}
}

func TestExportWritesBothSitemaps(t *testing.T) {
	t.Parallel()

	source := &fakeSource{batches: [][]domain.Candidate{{
		candidate("published", "https://src/1"),
	}}}
	p, _, dir := newTestPipeline(t, source, &fakeRewriter{})
	ctx := context.Background()

	if err := p.Ingest(ctx); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := p.RewritePending(ctx); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := p.Export(ctx); err != nil {
		t.Fatalf("export: %v", err)
	}

	standard, err := os.ReadFile(filepath.Join(dir, "sitemap.xml"))
	if err != nil {
		t.Fatalf("read sitemap: %v", err)
	}
	if !strings.Contains(string(standard), "<loc>https://news.example.com/article/") {
		t.Fatalf("sitemap missing article url:\n%s", standard)
	}

	news, err := os.ReadFile(filepath.Join(dir, "sitemap-news.xml"))
	if err != nil {
		t.Fatalf("read news sitemap: %v", err)
	}
	if !strings.Contains(string(news), "<news:is_based_on>https://src/1</news:is_based_on>") {
		t.Fatalf("news sitemap missing source link:\n%s", news)
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	if got := truncateRunes("hello", 0); got != "hello" {
		t.Fatalf("zero max must disable truncation, got %q", got)
	}
	if got := truncateRunes("hello", 3); got != "hel" {
		t.Fatalf("got %q", got)
	}
	if got := truncateRunes("日本語テスト", 3); got != "日本語" {
		t.Fatalf("must cut on rune boundaries, got %q", got)
	}
}
