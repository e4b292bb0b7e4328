package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/observability/metrics"
	"guacamaya/internal/observability/tracing"
	"guacamaya/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// articleColumns is the column set read by every query. Tags are read as JSON
// so the array decodes the same way from a query row and from a notification.
const articleColumns = `id::text, title, excerpt, content, author, date, cover_url,
COALESCE(to_json(tags), '[]'::json)::text, status`

type ArticleRepo struct {
	db      *sql.DB
	timeout time.Duration
}

// RepoOption customizes an ArticleRepo.
type RepoOption func(*ArticleRepo)

// WithQueryTimeout bounds every query by d. Zero leaves queries bounded only
// by the caller's context.
func WithQueryTimeout(d time.Duration) RepoOption {
	return func(r *ArticleRepo) { r.timeout = d }
}

func NewArticleRepo(db *sql.DB, opts ...RepoOption) repository.ArticleRepository {
	repo := &ArticleRepo{db: db}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

func (repo *ArticleRepo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if repo.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, repo.timeout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(s rowScanner) (*entity.RemoteRow, error) {
	var (
		r    entity.RemoteRow
		tags string
	)
	if err := s.Scan(&r.ID, &r.Title, &r.Excerpt, &r.Content, &r.Author,
		&r.Date, &r.CoverURL, &tags, &r.Status); err != nil {
		return nil, err
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &r, nil
}

func (repo *ArticleRepo) ListPublished(ctx context.Context) ([]entity.RemoteRow, error) {
	ctx, span := tracing.Start(ctx, "postgres.list_published")
	defer span.End()
	ctx, cancel := repo.bound(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_published", time.Since(start)) }()

	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE status = $1
ORDER BY date DESC NULLS LAST`
	rows, err := repo.db.QueryContext(ctx, query, entity.StatusPublished)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ListPublished: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]entity.RemoteRow, 0, 64)
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPublished: Scan: %w", err)
		}
		result = append(result, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListPublished: %w", err)
	}
	span.SetAttributes(attribute.Int("rows", len(result)))
	return result, nil
}

// GetPublished returns the published row with the given id, or nil when there is none.
func (repo *ArticleRepo) GetPublished(ctx context.Context, id string) (*entity.RemoteRow, error) {
	ctx, span := tracing.Start(ctx, "postgres.get_published")
	defer span.End()
	ctx, cancel := repo.bound(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_published", time.Since(start)) }()

	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE id = $1 AND status = $2
LIMIT 1`
	r, err := scanRow(repo.db.QueryRowContext(ctx, query, id, entity.StatusPublished))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("GetPublished: %w", err)
	}
	return r, nil
}

// GetRow returns the row with the given id regardless of status, or nil when there is none.
func (repo *ArticleRepo) GetRow(ctx context.Context, id string) (*entity.RemoteRow, error) {
	ctx, cancel := repo.bound(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_row", time.Since(start)) }()

	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE id = $1
LIMIT 1`
	r, err := scanRow(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetRow: %w", err)
	}
	return r, nil
}
