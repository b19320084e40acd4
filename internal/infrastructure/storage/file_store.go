package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsIngest/internal/apperr"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

// FileStore persists the full record collection as one JSON array, the way
// the site's data/articles.json works. Every mutation rewrites the file via
// a temp file and rename, so readers of the file never observe a partial
// collection. In-process, a RWMutex keeps mutations serialized while scans
// take only the shared lock.
type FileStore struct {
	path string
	now  func() time.Time

	mu      sync.RWMutex
	records []domain.Article
	byLink  map[string]int
	byID    map[string]int
}

var _ ports.ArticleStore = (*FileStore)(nil)

// NewFileStore loads the collection from path, starting empty when the file
// does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		now:    time.Now,
		byLink: map[string]int{},
		byID:   map[string]int{},
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.records); err != nil {
			return nil, fmt.Errorf("decode store file %s: %w", path, err)
		}
	}

	for i, rec := range s.records {
		s.byLink[rec.SourceLink] = i
		s.byID[rec.ID] = i
	}

	return s, nil
}

// Create allocates an ID and persists a new pending record. A known source
// link yields a DuplicateKeyError.
func (s *FileStore) Create(ctx context.Context, cand domain.Candidate) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byLink[cand.SourceLink]; ok {
		return domain.Article{}, apperr.NewDuplicateKey(cand.SourceLink)
	}

	createdAt := s.now().UTC()
	publishedAt := cand.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = createdAt
	}

	rec := domain.Article{
		ID:          uuid.NewString(),
		SourceLink:  cand.SourceLink,
		Title:       cand.Title,
		Description: cand.Description,
		RawContent:  cand.Content,
		Thumbnail:   cand.Thumbnail,
		Category:    cand.Category,
		Creator:     cand.Creator,
		Source:      cand.Source,
		Status:      domain.StatusPending,
		PublishedAt: publishedAt,
		CreatedAt:   createdAt,
	}

	s.records = append(s.records, rec)
	s.byLink[rec.SourceLink] = len(s.records) - 1
	s.byID[rec.ID] = len(s.records) - 1

	if err := s.persist(); err != nil {
		s.rollbackLast()
		return domain.Article{}, err
	}

	return rec, nil
}

// MarkProcessed transitions pending -> processed, storing the rewritten
// content and derived SEO block.
func (s *FileStore) MarkProcessed(ctx context.Context, id, rewritten string, seo *domain.SEOData) error {
	return s.transition(id, domain.StatusProcessed, func(rec *domain.Article) {
		rec.RewrittenContent = rewritten
		rec.SEO = seo
		rec.ProcessedAt = s.now().UTC()
	})
}

// MarkFailed transitions pending -> failed. The scraped content stays intact.
func (s *FileStore) MarkFailed(ctx context.Context, id string) error {
	return s.transition(id, domain.StatusFailed, nil)
}

func (s *FileStore) transition(id string, to domain.Status, apply func(*domain.Article)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}

	prev := s.records[idx]
	if prev.Status != domain.StatusPending {
		return apperr.NewInvalidTransition(id, string(prev.Status), string(to))
	}

	rec := &s.records[idx]
	rec.Status = to
	if apply != nil {
		apply(rec)
	}

	if err := s.persist(); err != nil {
		s.records[idx] = prev
		return err
	}

	return nil
}

// Get returns one record by ID.
func (s *FileStore) Get(ctx context.Context, id string) (domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return domain.Article{}, apperr.ErrNotFound
	}
	return s.records[idx], nil
}

// FindBySourceLink returns the record holding the exact link, if any.
func (s *FileStore) FindBySourceLink(ctx context.Context, link string) (domain.Article, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byLink[link]
	if !ok {
		return domain.Article{}, false, nil
	}
	return s.records[idx], true, nil
}

// Scan returns matching records in insertion order.
func (s *FileStore) Scan(ctx context.Context, filter ports.ScanFilter) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Article, 0, len(s.records))
	for _, rec := range s.records {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "articles-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close store file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace store file: %w", err)
	}

	return nil
}

func (s *FileStore) rollbackLast() {
	last := s.records[len(s.records)-1]
	delete(s.byLink, last.SourceLink)
	delete(s.byID, last.ID)
	s.records = s.records[:len(s.records)-1]
}
