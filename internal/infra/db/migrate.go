package db

import (
	"database/sql"
	"log/slog"
)

// ChangeChannel is the notification channel the articles trigger publishes to.
const ChangeChannel = "article_changes"

// MigrateUp creates the articles table, its indexes, and the realtime notification trigger.
// Statements are idempotent so the function can run on every start.
func MigrateUp(db *sql.DB) error {
	// gen_random_uuid() は PostgreSQL 13 未満では pgcrypto が必要
	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		slog.Debug("pgcrypto extension not created, relying on built-in gen_random_uuid()",
			slog.Any("error", err))
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    slug       TEXT UNIQUE,
    title      TEXT NOT NULL DEFAULT '',
    excerpt    TEXT,
    content    TEXT,
    author     TEXT,
    date       TIMESTAMPTZ,
    cover_url  TEXT,
    tags       TEXT[] NOT NULL DEFAULT '{}',
    status     TEXT NOT NULL DEFAULT 'draft',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// フィード取得用: WHERE status = 'published' ORDER BY date DESC NULLS LAST
		`CREATE INDEX IF NOT EXISTS idx_articles_status_date ON articles(status, date DESC NULLS LAST)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Payloads above the NOTIFY limit (8000 bytes) drop the row image;
	// listeners re-read the row by id.
	if _, err := db.Exec(`
CREATE OR REPLACE FUNCTION notify_article_change() RETURNS trigger AS $$
DECLARE
    payload JSONB;
    rec_id  TEXT;
BEGIN
    IF TG_OP = 'DELETE' THEN
        rec_id := OLD.id::text;
    ELSE
        rec_id := NEW.id::text;
    END IF;
    payload := jsonb_build_object('event', TG_OP, 'table', TG_TABLE_NAME, 'id', rec_id);
    IF TG_OP <> 'DELETE' THEN
        payload := payload || jsonb_build_object('new', to_jsonb(NEW));
        IF octet_length(payload::text) > 7900 THEN
            payload := payload - 'new';
        END IF;
    END IF;
    PERFORM pg_notify('` + ChangeChannel + `', payload::text);
    RETURN NULL;
END;
$$ LANGUAGE plpgsql`); err != nil {
		return err
	}

	if _, err := db.Exec(`DROP TRIGGER IF EXISTS articles_notify ON articles`); err != nil {
		return err
	}
	if _, err := db.Exec(`
CREATE TRIGGER articles_notify
AFTER INSERT OR UPDATE OR DELETE ON articles
FOR EACH ROW EXECUTE FUNCTION notify_article_change()`); err != nil {
		return err
	}

	return nil
}
