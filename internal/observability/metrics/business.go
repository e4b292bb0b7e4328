package metrics

import (
	"time"
)

// RecordFetch records the outcome and duration of a full-list fetch.
// Result should be one of ResultSuccess, ResultFailure, ResultStale or ResultCancelled.
func RecordFetch(result string, duration time.Duration) {
	FeedFetchesTotal.WithLabelValues(result).Inc()
	FeedFetchDuration.Observe(duration.Seconds())
}

// RecordRealtimeEvent records a realtime change event and what the store did with it.
func RecordRealtimeEvent(eventType, outcome string) {
	RealtimeEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// UpdateActiveArticles sets the active list size for the given source and
// zeroes the other source, since only one source is ever active.
func UpdateActiveArticles(source string, count int) {
	for _, s := range []string{"remote", "local"} {
		if s == source {
			ActiveArticles.WithLabelValues(s).Set(float64(count))
		} else {
			ActiveArticles.WithLabelValues(s).Set(0)
		}
	}
}

// RecordReconnect records a reconnect of the realtime stream.
func RecordReconnect() {
	SubscriptionReconnectsTotal.Inc()
}

// RecordLookup records a single-article lookup.
func RecordLookup(origin, result string) {
	ArticleLookupsTotal.WithLabelValues(origin, result).Inc()
}

// RecordRefreshThrottled records a manual refresh rejected by throttling.
func RecordRefreshThrottled() {
	RefreshThrottledTotal.Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "list_published", "get_row").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
