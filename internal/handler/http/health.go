// Package http serves the article feed over HTTP: the feed, article detail,
// tag catalog, manual refresh, a server-sent event stream, health probes and
// Prometheus metrics.
package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"guacamaya/internal/handler/http/respond"
	"guacamaya/internal/resilience/circuitbreaker"
	"guacamaya/internal/usecase/feed"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`    // Status of each check item
	Version   string                 `json:"version"`   // Application version
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`            // "healthy", "degraded" or "unhealthy"
	Message string         `json:"message,omitempty"` // Optional status message
	Details map[string]any `json:"details,omitempty"` // Optional additional details
}

// HealthHandler reports database connectivity, feed freshness and the
// repository circuit breaker. Without a database the service runs on the
// fallback dataset, which is healthy.
type HealthHandler struct {
	DB      *sql.DB
	Store   *feed.Store
	Breaker *circuitbreaker.CircuitBreaker
	Version string
}

// ServeHTTP returns 200 OK when healthy, or 503 Service Unavailable if the
// configured database cannot be reached.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	allHealthy := true

	// データベース接続チェック
	if h.DB != nil {
		dbCheck := h.checkDatabase(ctx)
		checks["database"] = dbCheck
		if dbCheck.Status == "unhealthy" {
			allHealthy = false
		}
	} else {
		checks["database"] = CheckStatus{Status: "healthy", Message: "not configured, serving fallback dataset"}
	}

	if h.Store != nil {
		checks["feed"] = checkFeed(h.Store.Snapshot())
	}
	if h.Breaker != nil {
		checks["circuit_breaker"] = checkBreaker(h.Breaker)
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

// checkDatabase checks database connectivity and returns connection pool statistics.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// MaxOpenConnections 0 は無制限
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{
			Status:  "degraded",
			Message: "connection pool max connections not configured",
			Details: details,
		}
	}

	utilizationPercent := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilizationPercent
	if utilizationPercent >= 80.0 {
		return CheckStatus{
			Status:  "degraded",
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}

	return CheckStatus{Status: "healthy", Details: details}
}

// checkFeed reports the store. A failed last fetch degrades but never fails
// the check: readers still get the previous list or the fallback dataset.
func checkFeed(st feed.State) CheckStatus {
	details := map[string]any{
		"articles":   len(st.Articles),
		"loaded":     st.Loaded,
		"refreshing": st.Refreshing,
	}
	if !st.UpdatedAt.IsZero() {
		details["updated_at"] = st.UpdatedAt.UTC().Format(time.RFC3339)
	}
	switch {
	case st.Err != "":
		return CheckStatus{Status: "degraded", Message: "last fetch failed", Details: details}
	case !st.Loaded:
		return CheckStatus{Status: "degraded", Message: "initial fetch pending", Details: details}
	default:
		return CheckStatus{Status: "healthy", Details: details}
	}
}

func checkBreaker(cb *circuitbreaker.CircuitBreaker) CheckStatus {
	details := map[string]any{"name": cb.Name(), "state": cb.State().String()}
	if cb.IsOpen() {
		return CheckStatus{Status: "degraded", Message: "circuit open, remote reads short-circuited", Details: details}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

// ReadyHandler reports ready once the first fetch has completed, successfully or not.
type ReadyHandler struct {
	Store *feed.Store
}

// ServeHTTP returns 200 OK when ready, or 503 Service Unavailable while the first fetch runs.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil || !h.Store.Snapshot().Loaded {
		http.Error(w, "feed not loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		slog.Error("ready: failed to write response", slog.Any("error", err))
	}
}

// LiveHandler handles liveness probe requests.
type LiveHandler struct{}

// ServeHTTP always returns 200 OK while the process can respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Error("alive: failed to write response", slog.Any("error", err))
	}
}
