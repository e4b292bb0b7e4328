package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels shared by the recorders.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultStale     = "stale"
	ResultCancelled = "cancelled"
	ResultFound     = "found"
	ResultNotFound  = "not_found"
)

// Feed synchronization metrics
var (
	// FeedFetchesTotal counts full-list fetches by result
	FeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total number of full article list fetches",
		},
		[]string{"result"}, // result: success, failure, stale, cancelled
	)

	// FeedFetchDuration measures the remote round-trip of a full-list fetch
	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Time taken to fetch the published article list",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// RealtimeEventsTotal counts change events received from the realtime stream
	RealtimeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_realtime_events_total",
			Help: "Total number of realtime change events",
		},
		[]string{"type", "outcome"}, // outcome: applied, ignored, invalid
	)

	// ActiveArticles tracks the size of the list shown to readers by source
	ActiveArticles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_active_articles",
			Help: "Number of articles in the active list",
		},
		[]string{"source"}, // source: remote, local
	)

	// SubscriptionReconnectsTotal counts reconnects of the realtime stream
	SubscriptionReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_subscription_reconnects_total",
			Help: "Total number of realtime stream reconnects",
		},
	)

	// ArticleLookupsTotal counts single-article lookups by result
	ArticleLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_lookups_total",
			Help: "Total number of article lookups",
		},
		[]string{"origin", "result"}, // origin: remote, local
	)

	// RefreshThrottledTotal counts manual refreshes rejected by the rate limiter
	RefreshThrottledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_refresh_throttled_total",
			Help: "Total number of manual refreshes rejected by throttling",
		},
	)
)

// Database metrics
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)
