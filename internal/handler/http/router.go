package http

import (
	"log/slog"
	"net/http"
	"time"

	"guacamaya/internal/handler/http/requestid"
	"guacamaya/internal/handler/http/respond"
	"guacamaya/internal/observability/tracing"
)

// DefaultRequestTimeout bounds every route except the event stream.
const DefaultRequestTimeout = 10 * time.Second

// Deps are the handlers and settings the router is built from.
type Deps struct {
	Feed           *FeedHandler
	Health         *HealthHandler
	Logger         *slog.Logger
	RequestTimeout time.Duration
	Version        string
	CORS           CORSConfig
}

// NewRouter registers every route and wraps the mux in the middleware chain:
// request id, panic recovery, access log, metrics, CORS, tracing, then input limits.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	bounded := func(h http.HandlerFunc) http.Handler { return Timeout(timeout)(h) }

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", bounded(index(d.Version)))
	mux.Handle("GET /articles", bounded(d.Feed.List))
	mux.Handle("GET /articles/{idOrSlug}", bounded(d.Feed.Get))
	mux.Handle("POST /articles/refresh", bounded(d.Feed.RefreshFeed))
	mux.HandleFunc("GET /articles/stream", d.Feed.Stream)
	mux.Handle("GET /tags", bounded(d.Feed.Tags))

	health := d.Health
	if health == nil {
		health = &HealthHandler{Store: d.Feed.Store, Version: d.Version}
	}
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", &ReadyHandler{Store: d.Feed.Store})
	mux.Handle("GET /live", &LiveHandler{})
	mux.Handle("GET /metrics", MetricsHandler())

	// tracing は mux が r.Pattern を設定したリクエストを参照するため最内側に置く
	var h http.Handler = mux
	h = InputValidation()(h)
	h = tracing.Middleware(h)
	h = CORS(d.CORS, logger)(h)
	h = MetricsMiddleware(h)
	h = Logging(logger)(h)
	h = Recover(logger)(h)
	h = requestid.Middleware(h)
	return h
}

func index(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]any{
			"name":    "guacamaya",
			"version": version,
			"endpoints": []string{
				"GET /articles?q=&tag=",
				"GET /articles/{idOrSlug}",
				"GET /articles/stream",
				"POST /articles/refresh",
				"GET /tags",
			},
		})
	}
}
