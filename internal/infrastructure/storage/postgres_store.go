package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"NewsIngest/internal/apperr"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

const uniqueViolation = "23505"

// PostgresStore persists articles in a single table with a unique index on
// source_link, so the dedup invariant holds even if two writers race.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.ArticleStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:     time.Now,
	}
}

// EnsureSchema creates the articles table when it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS articles (
        id                TEXT PRIMARY KEY,
        source_link       TEXT NOT NULL UNIQUE,
        title             TEXT NOT NULL DEFAULT '',
        description       TEXT NOT NULL DEFAULT '',
        raw_content       TEXT NOT NULL DEFAULT '',
        rewritten_content TEXT NOT NULL DEFAULT '',
        thumbnail         TEXT NOT NULL DEFAULT '',
        category          TEXT NOT NULL DEFAULT '',
        creator           TEXT NOT NULL DEFAULT '',
        source            TEXT NOT NULL DEFAULT '',
        status            TEXT NOT NULL,
        published_at      TIMESTAMPTZ NOT NULL,
        created_at        TIMESTAMPTZ NOT NULL,
        processed_at      TIMESTAMPTZ,
        seo               JSONB
    )`

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Create inserts a new pending record; the unique index turns a racing
// duplicate into a DuplicateKeyError.
func (s *PostgresStore) Create(ctx context.Context, cand domain.Candidate) (domain.Article, error) {
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

	query := s.builder.Insert("articles").
		Columns("id", "source_link", "title", "description", "raw_content",
			"thumbnail", "category", "creator", "source", "status",
			"published_at", "created_at").
		Values(rec.ID, rec.SourceLink, rec.Title, rec.Description, rec.RawContent,
			rec.Thumbnail, rec.Category, rec.Creator, rec.Source, rec.Status,
			rec.PublishedAt, rec.CreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.Article{}, apperr.NewDuplicateKey(cand.SourceLink)
		}
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}

	return rec, nil
}

// MarkProcessed transitions pending -> processed in one guarded update.
func (s *PostgresStore) MarkProcessed(ctx context.Context, id, rewritten string, seo *domain.SEOData) error {
	seoJSON, err := json.Marshal(seo)
	if err != nil {
		return fmt.Errorf("encode seo: %w", err)
	}

	query := s.builder.Update("articles").
		Set("status", domain.StatusProcessed).
		Set("rewritten_content", rewritten).
		Set("seo", seoJSON).
		Set("processed_at", s.now().UTC()).
		Where(sq.Eq{"id": id, "status": domain.StatusPending})

	return s.guardedUpdate(ctx, query, id, domain.StatusProcessed)
}

// MarkFailed transitions pending -> failed, leaving scraped content intact.
func (s *PostgresStore) MarkFailed(ctx context.Context, id string) error {
	query := s.builder.Update("articles").
		Set("status", domain.StatusFailed).
		Where(sq.Eq{"id": id, "status": domain.StatusPending})

	return s.guardedUpdate(ctx, query, id, domain.StatusFailed)
}

func (s *PostgresStore) guardedUpdate(ctx context.Context, query sq.UpdateBuilder, id string, to domain.Status) error {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// The guard filtered the row out: either the ID is unknown or the record
	// already left the pending state.
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return apperr.NewInvalidTransition(id, string(current.Status), string(to))
}

// Get returns one record by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (domain.Article, error) {
	query := s.selectArticles().Where(sq.Eq{"id": id})

	records, err := s.queryArticles(ctx, query)
	if err != nil {
		return domain.Article{}, err
	}
	if len(records) == 0 {
		return domain.Article{}, apperr.ErrNotFound
	}
	return records[0], nil
}

// FindBySourceLink returns the record holding the exact link, if any.
func (s *PostgresStore) FindBySourceLink(ctx context.Context, link string) (domain.Article, bool, error) {
	query := s.selectArticles().Where(sq.Eq{"source_link": link})

	records, err := s.queryArticles(ctx, query)
	if err != nil {
		return domain.Article{}, false, err
	}
	if len(records) == 0 {
		return domain.Article{}, false, nil
	}
	return records[0], true, nil
}

// Scan returns matching records in insertion order.
func (s *PostgresStore) Scan(ctx context.Context, filter ports.ScanFilter) ([]domain.Article, error) {
	query := s.selectArticles().OrderBy("created_at ASC", "id ASC")
	if filter.Status != "" {
		query = query.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	return s.queryArticles(ctx, query)
}

func (s *PostgresStore) selectArticles() sq.SelectBuilder {
	return s.builder.Select("id", "source_link", "title", "description",
		"raw_content", "rewritten_content", "thumbnail", "category", "creator",
		"source", "status", "published_at", "created_at", "processed_at", "seo").
		From("articles")
}

func (s *PostgresStore) queryArticles(ctx context.Context, query sq.SelectBuilder) ([]domain.Article, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var records []domain.Article
	for rows.Next() {
		var (
			rec         domain.Article
			processedAt sql.NullTime
			seoJSON     []byte
		)
		if err := rows.Scan(&rec.ID, &rec.SourceLink, &rec.Title, &rec.Description,
			&rec.RawContent, &rec.RewrittenContent, &rec.Thumbnail, &rec.Category,
			&rec.Creator, &rec.Source, &rec.Status, &rec.PublishedAt,
			&rec.CreatedAt, &processedAt, &seoJSON); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}

		if processedAt.Valid {
			rec.ProcessedAt = processedAt.Time
		}
		if len(seoJSON) > 0 {
			var seo domain.SEOData
			if err := json.Unmarshal(seoJSON, &seo); err != nil {
				return nil, fmt.Errorf("decode seo for %s: %w", rec.ID, err)
			}
			rec.SEO = &seo
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}
