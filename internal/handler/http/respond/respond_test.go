package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		data     any
		wantBody string
	}{
		{name: "map", code: http.StatusOK, data: map[string]string{"source": "remote"}, wantBody: `{"source":"remote"}`},
		{name: "struct", code: http.StatusCreated, data: struct{ ID string }{ID: "a1"}, wantBody: `{"ID":"a1"}`},
		{name: "nil", code: http.StatusNoContent, data: nil, wantBody: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSON(w, tt.code, tt.data)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, strings.TrimSpace(w.Body.String()))
		})
	}
}

func TestJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, make(chan int))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		err     error
		wantMsg string
	}{
		{name: "invalid id", code: http.StatusBadRequest, err: errors.New("invalid article ID"), wantMsg: "invalid article ID"},
		{name: "not found", code: http.StatusNotFound, err: errors.New("article not found"), wantMsg: "article not found"},
		{name: "query too long", code: http.StatusRequestURITooLong, err: errors.New("query too long"), wantMsg: "query too long"},
		{name: "feed not loaded", code: http.StatusServiceUnavailable, err: errors.New("feed not loaded"), wantMsg: "internal server error"},
		{name: "unknown 4xx", code: http.StatusBadRequest, err: errors.New("pq: syntax error"), wantMsg: "internal server error"},
		{name: "secret in 500", code: http.StatusInternalServerError, err: errors.New("connect postgres://u:secret@db"), wantMsg: "internal server error"},
		{name: "500 with safe word", code: http.StatusInternalServerError, err: errors.New("title is required"), wantMsg: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SafeError(w, tt.code, tt.err)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w))
		})
	}
}

func TestSafeError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	SafeError(w, http.StatusBadRequest, nil)
	assert.Zero(t, w.Body.Len())
}

func TestAppError(t *testing.T) {
	inner := errors.New("limiter exhausted")

	err := NewAppError(http.StatusTooManyRequests, "too many refresh requests", inner)
	assert.Equal(t, "limiter exhausted", err.Error())
	assert.ErrorIs(t, err, inner)

	bare := NewAppError(http.StatusBadRequest, "bad tag", nil)
	assert.Equal(t, "bad tag", bare.Error())
	assert.NoError(t, errors.Unwrap(bare))
}

func TestFail(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "app error",
			code:     http.StatusInternalServerError,
			err:      NewAppError(http.StatusServiceUnavailable, "feed unavailable", errors.New("circuit breaker is open")),
			wantCode: http.StatusServiceUnavailable,
			wantMsg:  "feed unavailable",
		},
		{
			name:     "wrapped app error",
			code:     http.StatusInternalServerError,
			err:      fmt.Errorf("refresh: %w", NewAppError(http.StatusTooManyRequests, "too many refresh requests", nil)),
			wantCode: http.StatusTooManyRequests,
			wantMsg:  "too many refresh requests",
		},
		{
			name:     "plain error falls back",
			code:     http.StatusInternalServerError,
			err:      errors.New("dial tcp 10.0.0.1:5432: timeout"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Fail(w, tt.code, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w))
		})
	}
}

/* ───────── ヘルパ ───────── */

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body["error"]
}
