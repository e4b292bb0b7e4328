package feed_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/repository"
)

/* ───────── スタブ ───────── */

// stubRepo は ListPublished の結果をテストごとに差し替える。
type stubRepo struct {
	mu    sync.Mutex
	list  func(ctx context.Context) ([]entity.RemoteRow, error)
	calls int
}

func (r *stubRepo) ListPublished(ctx context.Context) ([]entity.RemoteRow, error) {
	r.mu.Lock()
	r.calls++
	fn := r.list
	r.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx)
}

func (r *stubRepo) GetPublished(context.Context, string) (*entity.RemoteRow, error) { return nil, nil }
func (r *stubRepo) GetRow(context.Context, string) (*entity.RemoteRow, error)       { return nil, nil }

func (r *stubRepo) setList(fn func(ctx context.Context) ([]entity.RemoteRow, error)) {
	r.mu.Lock()
	r.list = fn
	r.mu.Unlock()
}

func (r *stubRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func returning(rows ...entity.RemoteRow) func(context.Context) ([]entity.RemoteRow, error) {
	return func(context.Context) ([]entity.RemoteRow, error) { return rows, nil }
}

// gate は呼び出しを release まで止める。
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) list(rows []entity.RemoteRow, err error) func(context.Context) ([]entity.RemoteRow, error) {
	return func(ctx context.Context) ([]entity.RemoteRow, error) {
		g.entered <- struct{}{}
		select {
		case <-g.release:
			return rows, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

type stubSub struct {
	events  chan entity.ChangeEvent
	resyncs chan struct{}
	mu      sync.Mutex
	closed  bool
}

func (s *stubSub) Events() <-chan entity.ChangeEvent { return s.events }
func (s *stubSub) Resyncs() <-chan struct{}          { return s.resyncs }
func (s *stubSub) Err() error                        { return nil }
func (s *stubSub) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *stubSub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// stubFeed の Subscribe は err があれば常に失敗し、fails 回までは一時的に失敗する。
type stubFeed struct {
	sub *stubSub
	err error

	mu    sync.Mutex
	fails int
	calls int
}

func newStubFeed() *stubFeed {
	return &stubFeed{sub: &stubSub{
		events:  make(chan entity.ChangeEvent, 16),
		resyncs: make(chan struct{}, 1),
	}}
}

func (f *stubFeed) Subscribe(context.Context) (repository.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls <= f.fails {
		return nil, errors.New("dial: connection refused")
	}
	return f.sub, nil
}

func (f *stubFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

/* ───────── データ ───────── */

func strp(s string) *string { return &s }

func at(day int) *time.Time {
	t := time.Date(2025, 8, day, 12, 0, 0, 0, time.UTC)
	return &t
}

func published(id string, date *time.Time) entity.RemoteRow {
	return entity.RemoteRow{
		ID:     id,
		Title:  strp("Artículo " + id),
		Date:   date,
		Tags:   []string{"Servicios"},
		Status: strp(entity.StatusPublished),
	}
}

func draft(id string) entity.RemoteRow {
	r := published(id, at(1))
	r.Status = strp("draft")
	return r
}

func ids(list []entity.Article) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
