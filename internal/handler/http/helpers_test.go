package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/infra/fallback"
	artUC "guacamaya/internal/usecase/article"
	"guacamaya/internal/usecase/feed"
)

/* ───────── スタブ ───────── */

type stubRepo struct {
	mu      sync.Mutex
	rows    []entity.RemoteRow
	listErr error
	getErr  error
}

func (r *stubRepo) ListPublished(context.Context) ([]entity.RemoteRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]entity.RemoteRow(nil), r.rows...), nil
}

func (r *stubRepo) GetPublished(_ context.Context, id string) (*entity.RemoteRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, row := range r.rows {
		if row.ID == id && row.Published() {
			row := row
			return &row, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) GetRow(ctx context.Context, id string) (*entity.RemoteRow, error) {
	return r.GetPublished(ctx, id)
}

func (r *stubRepo) set(rows []entity.RemoteRow, err error) {
	r.mu.Lock()
	r.rows, r.listErr = rows, err
	r.mu.Unlock()
}

/* ───────── ヘルパ ───────── */

const (
	uuidAgua  = "7f8c1c4e-2f0d-4d55-9d55-3b3cf4f0b001"
	uuidSalud = "7f8c1c4e-2f0d-4d55-9d55-3b3cf4f0b002"
)

func str(s string) *string { return &s }

func published(id, title, tag string, day int) entity.RemoteRow {
	d := time.Date(2025, 8, day, 9, 0, 0, 0, time.UTC)
	return entity.RemoteRow{
		ID:      id,
		Title:   str(title),
		Excerpt: str("Resumen de " + title),
		Date:    &d,
		Tags:    []string{tag},
		Status:  str(entity.StatusPublished),
	}
}

func testLocal() fallback.Dataset {
	return fallback.New([]entity.LocalRow{
		{ID: "l1", Slug: "feria-local", Title: "Feria local", Tag: "Comunidad"},
		{ID: "l2", Slug: "corte-de-agua", Title: "Corte de agua", Tag: "Servicios"},
	})
}

// newFeedHandler builds a handler over repo and runs the first fetch.
func newFeedHandler(t *testing.T, repo *stubRepo, limiter *rate.Limiter) *FeedHandler {
	t.Helper()
	local := testLocal()
	store := feed.NewStore(repo, nil)
	_, _ = store.FetchAll(context.Background())
	return &FeedHandler{
		Store:   store,
		Local:   local,
		Lookup:  artUC.NewService(repo, local),
		Refresh: limiter,
	}
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	require.NotZero(t, rec.Code)
	return rec
}
