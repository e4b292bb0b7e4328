// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the feed metrics:
//   - Store fetches (count by result, duration)
//   - Realtime change events (by type and outcome)
//   - Active article counts by source (remote or local fallback)
//   - Change stream reconnects, article lookups, database query latency
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	start := time.Now()
//	rows, err := repo.ListPublished(ctx)
//	if err != nil {
//	    metrics.RecordFetch(metrics.ResultFailure, time.Since(start))
//	}
package metrics
