// Package feed keeps the in-memory article list synchronized with the remote
// table and turns it into what a reader sees: fallback selection, filtering,
// and periodic resync.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/observability/metrics"
	"guacamaya/internal/observability/tracing"
	"guacamaya/internal/repository"
	"guacamaya/internal/resilience/retry"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultErrorMessage is recorded when a fetch fails with an empty message.
const DefaultErrorMessage = "Error cargando artículos"

// ErrAlreadySubscribed is returned by Run while another Run holds the change stream.
var ErrAlreadySubscribed = errors.New("feed: change stream already subscribed")

// State is a consistent snapshot of the store.
type State struct {
	// Articles is sorted newest first, dateless last.
	Articles []entity.Article
	// Loading is true only while the very first fetch is in flight.
	Loading bool
	// Refreshing is true while a later fetch is in flight.
	Refreshing bool
	// Err is the message of the last failed fetch, cleared by a successful one.
	Err string
	// Loaded is true once the first fetch has completed, successfully or not.
	Loaded    bool
	UpdatedAt time.Time
	// Version increases with every change. Listeners may receive states out
	// of order and should ignore one older than what they hold.
	Version uint64
}

type journaled struct {
	seq uint64
	ev  entity.ChangeEvent
}

// Store owns the authoritative list of published articles.
// All mutations go through fetch completions and change events.
type Store struct {
	repo    repository.ArticleRepository
	changes repository.ChangeFeed
	retry   retry.Config
	logger  *slog.Logger
	now     func() time.Time

	mu         sync.Mutex
	articles   []entity.Article
	errMsg     string
	loaded     bool
	updatedAt  time.Time
	inflight   int
	issued     uint64 // last fetch number handed out
	applied    uint64 // newest fetch that completed, successfully or not
	version    uint64
	journal    []journaled
	subscribed bool
	listeners  map[int]func(State)
	nextID     int
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithSubscribeRetry sets the backoff used to subscribe again after the
// change stream could not be opened. Defaults to retry.ListenConfig().
func WithSubscribeRetry(cfg retry.Config) Option {
	return func(s *Store) { s.retry = cfg }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store. changes may be nil when no realtime stream is available.
func NewStore(repo repository.ArticleRepository, changes repository.ChangeFeed, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		changes:   changes,
		retry:     retry.ListenConfig(),
		logger:    slog.Default(),
		now:       time.Now,
		articles:  []entity.Article{},
		listeners: map[int]func(State){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state. The article slice is a copy.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	arts := make([]entity.Article, len(s.articles))
	copy(arts, s.articles)
	return State{
		Articles:   arts,
		Loading:    s.inflight > 0 && !s.loaded,
		Refreshing: s.inflight > 0 && s.loaded,
		Err:        s.errMsg,
		Loaded:     s.loaded,
		UpdatedAt:  s.updatedAt,
		Version:    s.version,
	}
}

// Subscribe registers fn to receive every new state. The returned function unregisters it.
// fn runs on the goroutine that changed the state and must not block.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// unlockAndNotify bumps the version, releases mu and hands the state it had
// to every listener.
func (s *Store) unlockAndNotify() {
	s.version++
	st := s.snapshotLocked()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

// FetchAll loads every published article and replaces the list with them.
// On failure the list is kept and the error message is recorded in the state;
// the error is also returned. A cancelled ctx stops the query and leaves the
// state untouched. A completion older than one already recorded, whether that
// one succeeded or failed, is discarded.
func (s *Store) FetchAll(ctx context.Context) ([]entity.Article, error) {
	s.mu.Lock()
	s.issued++
	n := s.issued
	s.inflight++
	s.unlockAndNotify()

	ctx, span := tracing.Start(ctx, "feed.fetch", attribute.Int64("fetch.seq", int64(n)))
	defer span.End()

	start := time.Now()
	rows, err := s.repo.ListPublished(ctx)
	elapsed := time.Since(start)

	s.mu.Lock()
	s.inflight--
	defer func() {
		if s.inflight == 0 {
			s.journal = nil
		}
		s.unlockAndNotify()
	}()

	switch {
	case ctx.Err() != nil:
		metrics.RecordFetch(metrics.ResultCancelled, elapsed)
		return nil, ctx.Err()
	case n < s.applied:
		metrics.RecordFetch(metrics.ResultStale, elapsed)
		s.logger.Debug("discarding stale fetch", slog.Uint64("seq", n), slog.Uint64("applied", s.applied))
		return s.copyLocked(), nil
	case err != nil:
		metrics.RecordFetch(metrics.ResultFailure, elapsed)
		span.RecordError(err)
		s.applied = n
		s.errMsg = errorMessage(err)
		s.loaded = true
		s.logger.Warn("article fetch failed", slog.Any("error", err))
		return nil, err
	}

	list := make([]entity.Article, 0, len(rows))
	for _, r := range rows {
		list = append(list, entity.Normalize(entity.Remote{Row: r}))
	}
	list = dedupe(list)
	SortByDate(list)
	s.articles = list

	// Events received after this fetch was issued may be missing from its result.
	replayed := 0
	for _, j := range s.journal {
		if j.seq >= n {
			s.applyLocked(j.ev)
			replayed++
		}
	}

	s.applied = n
	s.errMsg = ""
	s.loaded = true
	s.updatedAt = s.now()
	metrics.RecordFetch(metrics.ResultSuccess, elapsed)
	span.SetAttributes(attribute.Int("articles", len(s.articles)), attribute.Int("replayed", replayed))
	return s.copyLocked(), nil
}

// Refetch is FetchAll for manual refreshes. It may run concurrently with other fetches.
func (s *Store) Refetch(ctx context.Context) ([]entity.Article, error) {
	return s.FetchAll(ctx)
}

func (s *Store) copyLocked() []entity.Article {
	out := make([]entity.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

// dedupe keeps the first article for each id.
func dedupe(list []entity.Article) []entity.Article {
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, a := range list {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}

// ApplyInsert upserts a published row. Rows that are not published are ignored.
func (s *Store) ApplyInsert(row entity.RemoteRow) {
	s.Apply(entity.ChangeEvent{Type: entity.ChangeInsert, Table: entity.TableArticles, New: &row, OldID: row.ID})
}

// ApplyUpdate upserts a published row, or removes the row when it is no longer published.
func (s *Store) ApplyUpdate(row entity.RemoteRow) {
	s.Apply(entity.ChangeEvent{Type: entity.ChangeUpdate, Table: entity.TableArticles, New: &row, OldID: row.ID})
}

// ApplyDelete removes the article with the given id, if present.
func (s *Store) ApplyDelete(id string) {
	s.Apply(entity.ChangeEvent{Type: entity.ChangeDelete, Table: entity.TableArticles, OldID: id})
}

// Apply dispatches a change event. Events for other tables are ignored.
func (s *Store) Apply(ev entity.ChangeEvent) {
	if ev.Table != "" && ev.Table != entity.TableArticles {
		metrics.RecordRealtimeEvent(string(ev.Type), "ignored")
		return
	}
	s.mu.Lock()
	if s.inflight > 0 {
		s.journal = append(s.journal, journaled{seq: s.issued, ev: ev})
	}
	outcome := s.applyLocked(ev)
	metrics.RecordRealtimeEvent(string(ev.Type), outcome)
	s.unlockAndNotify()
}

func (s *Store) applyLocked(ev entity.ChangeEvent) string {
	switch ev.Type {
	case entity.ChangeInsert:
		if ev.New == nil || !ev.New.Published() {
			return "ignored"
		}
		s.upsertLocked(entity.Normalize(entity.Remote{Row: *ev.New}))
	case entity.ChangeUpdate:
		if ev.New == nil {
			return "invalid"
		}
		if !ev.New.Published() {
			s.removeLocked(ev.New.ID)
			return "applied"
		}
		s.upsertLocked(entity.Normalize(entity.Remote{Row: *ev.New}))
	case entity.ChangeDelete:
		id := ev.OldID
		if id == "" && ev.New != nil {
			id = ev.New.ID
		}
		s.removeLocked(id)
	default:
		return "invalid"
	}
	return "applied"
}

func (s *Store) upsertLocked(a entity.Article) {
	next := make([]entity.Article, 0, len(s.articles)+1)
	replaced := false
	for _, cur := range s.articles {
		if cur.ID == a.ID {
			next = append(next, a)
			replaced = true
			continue
		}
		next = append(next, cur)
	}
	if !replaced {
		next = append([]entity.Article{a}, next...)
	}
	SortByDate(next)
	s.articles = next
}

func (s *Store) removeLocked(id string) {
	next := make([]entity.Article, 0, len(s.articles))
	for _, cur := range s.articles {
		if cur.ID != id {
			next = append(next, cur)
		}
	}
	s.articles = next
}

// Run holds the store's single change stream subscription until ctx is done.
// It subscribes first, then performs the initial fetch, so no event committed
// after the fetch began is lost. Events are applied in receipt order; a
// reconnect of the stream triggers a refetch. When the stream cannot be opened
// or ends, Run keeps serving what it has and subscribes again with backoff,
// refetching once the new subscription is up.
func (s *Store) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.subscribed {
		s.mu.Unlock()
		return ErrAlreadySubscribed
	}
	s.subscribed = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.subscribed = false
		s.mu.Unlock()
	}()

	var (
		events  <-chan entity.ChangeEvent
		resyncs <-chan struct{}
		sub     repository.Subscription
		subs    chan repository.Subscription
		g       errgroup.Group
	)
	defer func() { _ = g.Wait() }()
	defer func() {
		if sub != nil {
			_ = sub.Close()
		}
	}()

	fetch := func() {
		g.Go(func() error {
			_, _ = s.FetchAll(ctx)
			return nil
		})
	}
	resubscribe := func() {
		subs = make(chan repository.Subscription)
		out := subs
		g.Go(func() error {
			s.resubscribe(ctx, out)
			return nil
		})
	}

	if s.changes != nil {
		next, err := s.changes.Subscribe(ctx)
		if err != nil {
			s.logger.Warn("realtime subscription unavailable, retrying", slog.Any("error", err))
			resubscribe()
		} else {
			sub = next
			events, resyncs = sub.Events(), sub.Resyncs()
		}
	}
	fetch()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				s.logger.Warn("realtime subscription ended", slog.Any("error", sub.Err()))
				_ = sub.Close()
				sub, events, resyncs = nil, nil, nil
				resubscribe()
				continue
			}
			s.Apply(ev)
		case <-resyncs:
			s.logger.Info("realtime stream resynced, refetching")
			fetch()
		case next := <-subs:
			subs = nil
			sub = next
			events, resyncs = sub.Events(), sub.Resyncs()
			s.logger.Info("realtime subscription established, refetching")
			fetch()
		}
	}
}

// resubscribe opens the change stream with backoff and hands it to out.
// It gives up when ctx ends or the attempts run out.
func (s *Store) resubscribe(ctx context.Context, out chan<- repository.Subscription) {
	var sub repository.Subscription
	err := retry.WithBackoff(ctx, s.retry, func() error {
		next, err := s.changes.Subscribe(ctx)
		if err != nil {
			return err
		}
		sub = next
		return nil
	})
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("realtime subscription abandoned", slog.Any("error", err))
		}
		return
	}
	select {
	case out <- sub:
	case <-ctx.Done():
		_ = sub.Close()
	}
}
