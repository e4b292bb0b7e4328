package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/infra/db"
	"guacamaya/internal/observability/metrics"
	"guacamaya/internal/repository"
	"guacamaya/internal/resilience/retry"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ListenConn is the part of *pgx.Conn the change feed uses.
type ListenConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// Connector opens a dedicated connection for LISTEN.
type Connector func(ctx context.Context) (ListenConn, error)

// DSNConnector returns a Connector dialing dsn with pgx.
func DSNConnector(dsn string) Connector {
	return func(ctx context.Context) (ListenConn, error) {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// ChangeFeed turns NOTIFY messages from the articles trigger into change events.
type ChangeFeed struct {
	connect Connector
	rows    repository.ArticleRepository
	channel string
	retry   retry.Config
	logger  *slog.Logger
}

// ChangeFeedOption customizes a ChangeFeed.
type ChangeFeedOption func(*ChangeFeed)

// WithRetry overrides the reconnect backoff.
func WithRetry(cfg retry.Config) ChangeFeedOption {
	return func(f *ChangeFeed) { f.retry = cfg }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ChangeFeedOption {
	return func(f *ChangeFeed) { f.logger = l }
}

// NewChangeFeed creates a change feed. rows hydrates notifications whose
// row image was dropped for size.
func NewChangeFeed(connect Connector, rows repository.ArticleRepository, opts ...ChangeFeedOption) *ChangeFeed {
	f := &ChangeFeed{
		connect: connect,
		rows:    rows,
		channel: db.ChangeChannel,
		retry:   retry.ListenConfig(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribe opens the listen connection. The first connection error is
// returned directly; later drops are retried in the background.
func (f *ChangeFeed) Subscribe(ctx context.Context) (repository.Subscription, error) {
	conn, err := f.listen(ctx)
	if err != nil {
		return nil, fmt.Errorf("Subscribe: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &subscription{
		events:  make(chan entity.ChangeEvent, 64),
		resyncs: make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go f.loop(ctx, conn, s)
	return s, nil
}

func (f *ChangeFeed) listen(ctx context.Context) (ListenConn, error) {
	conn, err := f.connect(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{f.channel}.Sanitize()); err != nil {
		_ = conn.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("listen %s: %w", f.channel, err)
	}
	return conn, nil
}

func (f *ChangeFeed) loop(ctx context.Context, conn ListenConn, s *subscription) {
	defer close(s.done)
	defer close(s.events)
	defer func() {
		if conn != nil {
			_ = conn.Close(context.WithoutCancel(ctx))
		}
	}()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			f.logger.Warn("change feed connection lost", slog.Any("error", err))
			_ = conn.Close(context.WithoutCancel(ctx))
			conn = nil

			err = retry.WithBackoff(ctx, f.retry, func() error {
				c, err := f.listen(ctx)
				if err != nil {
					return err
				}
				conn = c
				return nil
			})
			if err != nil {
				if ctx.Err() == nil {
					s.setErr(fmt.Errorf("change feed reconnect: %w", err))
				}
				return
			}
			metrics.RecordReconnect()
			f.logger.Info("change feed reconnected")
			s.signalResync()
			continue
		}

		ev, err := f.decode(ctx, n.Payload)
		var lookupErr *hydrateError
		if errors.As(err, &lookupErr) {
			if ctx.Err() != nil {
				return
			}
			// 行を読めなかった変更は全件取得で拾い直す
			f.logger.Warn("change notification row lookup failed, requesting resync",
				slog.String("id", lookupErr.id),
				slog.Any("error", lookupErr.err))
			metrics.RecordRealtimeEvent(lookupErr.event, "lookup_failed")
			s.signalResync()
			continue
		}
		if err != nil {
			f.logger.Warn("discarding malformed change notification",
				slog.String("payload", truncate(n.Payload, 200)),
				slog.Any("error", err))
			metrics.RecordRealtimeEvent("unknown", "invalid")
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Notification is the JSON document built by notify_article_change().
type Notification struct {
	Event string            `json:"event"`
	Table string            `json:"table"`
	ID    string            `json:"id"`
	New   *entity.RemoteRow `json:"new"`
}

func (f *ChangeFeed) decode(ctx context.Context, payload string) (entity.ChangeEvent, error) {
	n, err := DecodeNotification(payload)
	if err != nil {
		return entity.ChangeEvent{}, err
	}
	ev := entity.ChangeEvent{
		Type:  entity.ChangeType(n.Event),
		Table: n.Table,
		New:   n.New,
		OldID: n.ID,
	}
	if ev.Type == entity.ChangeDelete || ev.New != nil {
		return ev, nil
	}

	// Row image was too large for NOTIFY
	row, err := f.rows.GetRow(ctx, n.ID)
	if err != nil {
		return entity.ChangeEvent{}, &hydrateError{id: n.ID, event: n.Event, err: err}
	}
	if row == nil {
		// Gone before we could read it
		return entity.ChangeEvent{Type: entity.ChangeDelete, Table: n.Table, OldID: n.ID}, nil
	}
	ev.New = row
	return ev, nil
}

// hydrateError is a notification whose row could not be read back.
type hydrateError struct {
	id    string
	event string
	err   error
}

func (e *hydrateError) Error() string { return fmt.Sprintf("hydrate %s: %v", e.id, e.err) }
func (e *hydrateError) Unwrap() error { return e.err }

// DecodeNotification parses a change notification payload.
func DecodeNotification(payload string) (Notification, error) {
	var n Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return n, fmt.Errorf("decode notification: %w", err)
	}
	if !entity.ChangeType(n.Event).Valid() {
		return n, fmt.Errorf("decode notification: unknown event %q", n.Event)
	}
	if n.ID == "" {
		return n, errors.New("decode notification: missing id")
	}
	if n.New != nil && n.New.ID == "" {
		n.New.ID = n.ID
	}
	return n, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type subscription struct {
	events  chan entity.ChangeEvent
	resyncs chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

func (s *subscription) Events() <-chan entity.ChangeEvent { return s.events }
func (s *subscription) Resyncs() <-chan struct{}          { return s.resyncs }

// signalResync asks the subscriber to refetch. A pending signal covers any
// number of later ones.
func (s *subscription) signalResync() {
	select {
	case s.resyncs <- struct{}{}:
	default:
	}
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Close stops the listener and waits for its connection to be released.
func (s *subscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}

var _ repository.ChangeFeed = (*ChangeFeed)(nil)
