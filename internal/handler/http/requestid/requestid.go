// Package requestid tags each API request with an id. The id is echoed in the
// X-Request-ID response header and carried in the context so access logs and
// error responses can quote it.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id in both directions.
const RequestIDHeader = "X-Request-ID"

// MaxLength bounds a client-supplied id. Longer ones are replaced.
const MaxLength = 128

type ctxKey struct{}

// FromContext returns the request id, or "" outside a request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Middleware reuses the client's X-Request-ID when it is acceptable and
// generates a UUID v4 otherwise. The id reaches log lines verbatim, so only
// short printable ASCII without spaces is accepted.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !Acceptable(id) {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// Acceptable reports whether a client-supplied id may be reused.
func Acceptable(id string) bool {
	if id == "" || len(id) > MaxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if c := id[i]; c <= ' ' || c > '~' {
			return false
		}
	}
	return true
}
