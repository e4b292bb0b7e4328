// Package repository declares the ports the use cases depend on:
// the remote article table, its realtime change stream, and device key/value storage.
package repository

import (
	"context"

	"guacamaya/internal/domain/entity"
)

// ArticleRepository reads rows of the remote articles table.
type ArticleRepository interface {
	// ListPublished returns published rows ordered by date descending, nulls last.
	ListPublished(ctx context.Context) ([]entity.RemoteRow, error)
	// GetPublished returns the published row with the given id.
	// Returns (nil, nil) if no such published row exists.
	GetPublished(ctx context.Context, id string) (*entity.RemoteRow, error)
	// GetRow returns the row with the given id regardless of status.
	// Returns (nil, nil) if the row does not exist.
	GetRow(ctx context.Context, id string) (*entity.RemoteRow, error)
}

// ChangeFeed opens realtime subscriptions to row-level changes of the articles table.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription is a live stream of change events.
// Events is closed when the subscription ends; Err then reports why.
type Subscription interface {
	Events() <-chan entity.ChangeEvent
	// Resyncs delivers a signal whenever the stream had to reconnect and
	// events may have been missed.
	Resyncs() <-chan struct{}
	Err() error
	Close() error
}

// ArticleWriter modifies the remote articles table. The feed itself never
// writes; this backs the seed and publish commands that drive it.
type ArticleWriter interface {
	// Upsert inserts the row keyed by slug, or updates the existing row with
	// that slug, and returns its id.
	Upsert(ctx context.Context, slug string, row entity.RemoteRow) (string, error)
	// SetStatus changes the status of a row. Returns entity.ErrNotFound if the row does not exist.
	SetStatus(ctx context.Context, id, status string) error
	// Delete removes a row. Returns entity.ErrNotFound if the row does not exist.
	Delete(ctx context.Context, id string) error
}
