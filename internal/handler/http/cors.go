package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig is the cross-origin policy of the API. The API is read-only
// apart from refresh and uses no cookies, so credentials are never allowed.
type CORSConfig struct {
	// AllowedOrigins are matched case-insensitively, trailing slash ignored.
	// "*" allows any origin. Empty disables CORS.
	AllowedOrigins []string
	// MaxAge is how long preflight results may be cached, in seconds.
	MaxAge int
}

var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")
	corsHeaders = strings.Join([]string{"Content-Type", "X-Request-ID", "Last-Event-ID"}, ", ")
	corsExposed = strings.Join([]string{"X-Request-ID", "Retry-After"}, ", ")
)

// DefaultCORSMaxAge is used when CORSConfig.MaxAge is zero.
const DefaultCORSMaxAge = 86400

// originWhitelist reports whether an Origin header is allowed.
type originWhitelist struct {
	any     bool
	origins map[string]struct{}
}

func newOriginWhitelist(origins []string) originWhitelist {
	wl := originWhitelist{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = normalizeOrigin(o)
		switch o {
		case "":
		case "*":
			wl.any = true
		default:
			wl.origins[o] = struct{}{}
		}
	}
	return wl
}

func (wl originWhitelist) empty() bool { return !wl.any && len(wl.origins) == 0 }

func (wl originWhitelist) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if wl.any {
		return true
	}
	_, ok := wl.origins[normalizeOrigin(origin)]
	return ok
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}

// CORS answers preflight requests from allowed origins with 204 and adds
// the allow headers to their actual requests. Disallowed origins are logged
// and served without CORS headers, so the browser blocks the response.
func CORS(cfg CORSConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	wl := newOriginWhitelist(cfg.AllowedOrigins)
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultCORSMaxAge
	}
	return func(next http.Handler) http.Handler {
		if wl.empty() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")
			if !wl.allows(origin) {
				logger.Warn("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))
				next.ServeHTTP(w, r)
				return
			}

			if wl.any {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Expose-Headers", corsExposed)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", corsMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
