// Package sqlite provides SQLite implementations of repository interfaces.
// It backs device storage with a single key/value table in a local file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"guacamaya/internal/repository"

	_ "modernc.org/sqlite"
)

type KVStore struct {
	db *sql.DB
}

// OpenKVStore opens (creating if needed) the device storage file at path.
func OpenKVStore(ctx context.Context, path string) (*KVStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("OpenKVStore: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("OpenKVStore: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	s := NewKVStore(db)
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewKVStore wraps an already opened database. The table must exist.
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) init(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS device_storage (
    key        TEXT PRIMARY KEY,
    value      BLOB NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("OpenKVStore: init schema: %w", err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM device_storage WHERE key = ?`
	var v []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return v, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	const query = `
INSERT INTO device_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM device_storage WHERE key = ?`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (s *KVStore) Close() error {
	return s.db.Close()
}

var _ repository.KeyValueStore = (*KVStore)(nil)
