// Package redis provides a Redis implementation of device storage, for
// deployments where several processes share one signed-in user.
package redis

import (
	"context"
	"errors"
	"fmt"

	"guacamaya/internal/repository"

	goredis "github.com/redis/go-redis/v9"
)

// Options configures the Redis client.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "guacamaya:".
	Prefix string
}

type KVStore struct {
	rdb    goredis.UniversalClient
	prefix string
}

// NewClient creates a Redis client from options.
func NewClient(opts Options) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// NewKVStore wraps rdb. Keys are stored as prefix+key.
func NewKVStore(rdb goredis.UniversalClient, prefix string) *KVStore {
	return &KVStore{rdb: rdb, prefix: prefix}
}

// Key returns the Redis key used for key.
func (s *KVStore) Key(key string) string {
	return s.prefix + key
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.Key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return b, nil
}

// Set stores value without expiry; the demo session lasts until sign-out.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.Key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.Key(key)).Err(); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (s *KVStore) Close() error {
	return s.rdb.Close()
}

var _ repository.KeyValueStore = (*KVStore)(nil)
