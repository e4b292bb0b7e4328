package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/observability/metrics"
	"guacamaya/internal/repository"
)

type ArticleWriter struct{ db *sql.DB }

func NewArticleWriter(db *sql.DB) repository.ArticleWriter {
	return &ArticleWriter{db: db}
}

func (w *ArticleWriter) Upsert(ctx context.Context, slug string, row entity.RemoteRow) (string, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", time.Since(start)) }()

	tags := row.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("Upsert: encode tags: %w", err)
	}
	status := "draft"
	if row.Status != nil {
		status = *row.Status
	}

	// tags travel as JSON text to avoid driver specific array encoding
	const query = `
INSERT INTO articles (slug, title, excerpt, content, author, date, cover_url, tags, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, ARRAY(SELECT json_array_elements_text($8::json)), $9)
ON CONFLICT (slug) DO UPDATE SET
  title = EXCLUDED.title,
  excerpt = EXCLUDED.excerpt,
  content = EXCLUDED.content,
  author = EXCLUDED.author,
  date = EXCLUDED.date,
  cover_url = EXCLUDED.cover_url,
  tags = EXCLUDED.tags,
  status = EXCLUDED.status
RETURNING id::text`
	var id string
	if err := w.db.QueryRowContext(ctx, query,
		slug, row.Title, row.Excerpt, row.Content, row.Author,
		row.Date, row.CoverURL, string(tagsJSON), status,
	).Scan(&id); err != nil {
		return "", fmt.Errorf("Upsert: %w", err)
	}
	return id, nil
}

func (w *ArticleWriter) SetStatus(ctx context.Context, id, status string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("set_status", time.Since(start)) }()

	const query = `UPDATE articles SET status = $1 WHERE id = $2`
	res, err := w.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("SetStatus: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetStatus: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("SetStatus: %w", entity.ErrNotFound)
	}
	return nil
}

func (w *ArticleWriter) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete", time.Since(start)) }()

	const query = `DELETE FROM articles WHERE id = $1`
	res, err := w.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
