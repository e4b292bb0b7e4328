package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guacamaya/internal/handler/http/requestid"
)

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		target    string
		status    int
		wantRoute string
	}{
		{name: "feed with query", method: http.MethodGet, target: "/articles?q=agua", status: http.StatusOK, wantRoute: "/articles"},
		{name: "detail", method: http.MethodGet, target: "/articles/crisis-hidrica", status: http.StatusNotFound, wantRoute: "/articles/:idOrSlug"},
		{name: "refresh", method: http.MethodPost, target: "/articles/refresh", status: http.StatusTooManyRequests, wantRoute: "/articles/refresh"},
		{name: "unknown", method: http.MethodGet, target: "/wp-admin/setup.php", status: http.StatusNotFound, wantRoute: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			h := requestid.Middleware(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			})))

			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("User-Agent", "test-agent/1.0")
			req.Header.Set(requestid.RequestIDHeader, "req-123")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, "req-123", entry["request_id"])
			assert.Equal(t, tt.method, entry["method"])
			assert.Equal(t, tt.wantRoute, entry["route"])
			assert.EqualValues(t, tt.status, entry["status"])
			assert.EqualValues(t, 4, entry["bytes"])
			assert.Equal(t, "test-agent/1.0", entry["user_agent"])
		})
	}
}

func TestRecover(t *testing.T) {
	tests := []struct {
		name       string
		panicValue any
	}{
		{name: "string", panicValue: "something went wrong"},
		{name: "error", panicValue: fmt.Errorf("nil map")},
		{name: "number", panicValue: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.panicValue)
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
			assert.Contains(t, buf.String(), "panic recovered")
		})
	}
}

func TestRecover_NoPanic(t *testing.T) {
	h := Recover(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
