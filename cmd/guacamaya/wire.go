package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"guacamaya/internal/config"
	"guacamaya/internal/domain/entity"
	pg "guacamaya/internal/infra/adapter/persistence/postgres"
	"guacamaya/internal/infra/adapter/persistence/redis"
	"guacamaya/internal/infra/adapter/persistence/sqlite"
	"guacamaya/internal/infra/db"
	"guacamaya/internal/infra/fallback"
	"guacamaya/internal/repository"
	"guacamaya/internal/resilience/circuitbreaker"
)

// remote is the wiring around the articles table. When no database is
// configured DB and Lookup are nil and Repo returns an empty list.
type remote struct {
	DB      *sql.DB
	Repo    repository.ArticleRepository
	Lookup  repository.ArticleRepository
	Changes repository.ChangeFeed
	Breaker *circuitbreaker.CircuitBreaker
}

func (r *remote) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// offlineRepo stands in for the articles table when DATABASE_URL is unset,
// so the feed settles on the fallback dataset.
type offlineRepo struct{}

func (offlineRepo) ListPublished(context.Context) ([]entity.RemoteRow, error) { return nil, nil }

func (offlineRepo) GetPublished(context.Context, string) (*entity.RemoteRow, error) { return nil, nil }

func (offlineRepo) GetRow(context.Context, string) (*entity.RemoteRow, error) { return nil, nil }

func offline() *remote {
	return &remote{Repo: offlineRepo{}}
}

// openDB opens the pool. db.ErrMissingDSN is returned untouched.
func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	return db.Open(ctx, cfg.URL, db.ConnectionConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
}

// openRemote connects to the articles table. A missing URL or an unreachable
// database degrades to the offline repository with a warning.
func openRemote(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) *remote {
	if cfg.URL == "" {
		logger.Warn("DATABASE_URL not set, serving the fallback dataset only")
		return offline()
	}
	conn, err := openDB(ctx, cfg)
	if err != nil {
		logger.Warn("articles database unavailable, serving the fallback dataset only",
			slog.Any("error", err))
		return offline()
	}

	rows := pg.NewArticleRepo(conn, pg.WithQueryTimeout(cfg.QueryTimeout))
	r := &remote{
		DB:      conn,
		Repo:    rows,
		Lookup:  rows,
		Changes: pg.NewChangeFeed(pg.DSNConnector(cfg.URL), rows, pg.WithLogger(logger)),
	}
	if cfg.Breaker.Enabled {
		bc := circuitbreaker.DBConfig()
		if cfg.Breaker.MaxRequests > 0 {
			bc.MaxRequests = cfg.Breaker.MaxRequests
		}
		if cfg.Breaker.Interval > 0 {
			bc.Interval = cfg.Breaker.Interval
		}
		if cfg.Breaker.Timeout > 0 {
			bc.Timeout = cfg.Breaker.Timeout
		}
		guarded := circuitbreaker.NewArticleRepository(rows, bc)
		r.Repo, r.Lookup, r.Breaker = guarded, guarded, guarded.Breaker()
	}
	return r
}

// requireDB opens the pool for commands that write to the articles table.
func requireDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	conn, err := openDB(ctx, cfg)
	if errors.Is(err, db.ErrMissingDSN) {
		return nil, errors.New("DATABASE_URL is required for this command")
	}
	return conn, err
}

// loadDataset returns the bundled fallback dataset, or the file named by
// feed.fallback_file when set.
func loadDataset(cfg config.FeedConfig) (fallback.Dataset, error) {
	if cfg.FallbackFile == "" {
		return fallback.Bundled(), nil
	}
	data, err := os.ReadFile(cfg.FallbackFile)
	if err != nil {
		return fallback.Dataset{}, fmt.Errorf("read fallback file: %w", err)
	}
	return fallback.Parse(data)
}

// openDeviceStore opens the configured device storage backend.
func openDeviceStore(ctx context.Context, cfg config.DeviceConfig) (repository.KeyValueStore, error) {
	switch cfg.Store {
	case config.DeviceStoreRedis:
		rdb := redis.NewClient(redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		return redis.NewKVStore(rdb, cfg.Redis.Prefix), nil
	default:
		kv, err := sqlite.OpenKVStore(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	}
}
