package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── ヘルパ ───────── */

// serve runs one request through Middleware and returns the id the handler
// saw alongside the response.
func serve(t *testing.T, header string) (seen string, rec *httptest.ResponseRecorder) {
	t.Helper()
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		assert.Equal(t, seen, r.Header.Get(RequestIDHeader), "downstream reads the same id from the header")
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

/* ───────── テスト ───────── */

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		reuse  bool
	}{
		{name: "client id reused", header: "guacamaya-cli-42", reuse: true},
		{name: "uuid from browser reused", header: "550e8400-e29b-41d4-a716-446655440000", reuse: true},
		{name: "missing", header: ""},
		{name: "too long", header: strings.Repeat("a", MaxLength+1)},
		{name: "contains space", header: "a b"},
		{name: "contains newline", header: "a\nlevel=ERROR"},
		{name: "non ascii", header: "petición"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, rec := serve(t, tt.header)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.reuse {
				assert.Equal(t, tt.header, seen)
				return
			}
			_, err := uuid.Parse(seen)
			assert.NoError(t, err, "replaced with a generated UUID")
		})
	}
}

func TestMiddleware_UniquePerRequest(t *testing.T) {
	seen := map[string]bool{}
	for range 10 {
		id, _ := serve(t, "")
		seen[id] = true
	}
	assert.Len(t, seen, 10)
}

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))

	ctx := WithRequestID(context.Background(), "req-123")
	require.Equal(t, "req-123", FromContext(ctx))
}

func TestAcceptable_MaxLength(t *testing.T) {
	assert.True(t, Acceptable(strings.Repeat("x", MaxLength)))
	assert.False(t, Acceptable(strings.Repeat("x", MaxLength+1)))
}
