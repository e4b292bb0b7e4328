package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputValidation_Limits(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantError  string
	}{
		{name: "normal", target: "/articles?q=agua&tag=Servicios", wantStatus: http.StatusOK},
		{name: "path at limit", target: "/" + strings.Repeat("a", 2047), wantStatus: http.StatusOK},
		{name: "path too long", target: "/" + strings.Repeat("a", 2048), wantStatus: http.StatusRequestURITooLong, wantError: "URI too long"},
		{name: "query at limit", target: "/articles?q=" + strings.Repeat("b", 2046), wantStatus: http.StatusOK},
		{name: "query too long", target: "/articles?q=" + strings.Repeat("b", 2047), wantStatus: http.StatusRequestURITooLong, wantError: "query too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			rec := do(t, h, http.MethodGet, tt.target)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.False(t, called)
				assert.JSONEq(t, `{"error":"`+tt.wantError+`"}`, rec.Body.String())
			}
		})
	}
}

func TestInputValidation_BodyLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "small body", size: 64},
		{name: "body over 1MB", size: 1<<20 + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readErr error
			h := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, readErr = io.ReadAll(r.Body)
			}))

			req := httptest.NewRequest(http.MethodPost, "/articles/refresh", strings.NewReader(strings.Repeat("x", tt.size)))
			h.ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantErr {
				var maxErr *http.MaxBytesError
				require.ErrorAs(t, readErr, &maxErr)
				assert.EqualValues(t, 1<<20, maxErr.Limit)
				return
			}
			assert.NoError(t, readErr)
		})
	}
}
