package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFetch(t *testing.T) {
	tests := []struct {
		name   string
		result string
	}{
		{name: "success", result: ResultSuccess},
		{name: "failure", result: ResultFailure},
		{name: "stale", result: ResultStale},
		{name: "cancelled", result: ResultCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(FeedFetchesTotal.WithLabelValues(tt.result))
			RecordFetch(tt.result, 120*time.Millisecond)
			after := testutil.ToFloat64(FeedFetchesTotal.WithLabelValues(tt.result))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestRecordRealtimeEvent(t *testing.T) {
	before := testutil.ToFloat64(RealtimeEventsTotal.WithLabelValues("INSERT", "applied"))
	RecordRealtimeEvent("INSERT", "applied")
	RecordRealtimeEvent("INSERT", "applied")
	after := testutil.ToFloat64(RealtimeEventsTotal.WithLabelValues("INSERT", "applied"))

	assert.Equal(t, before+2, after)
}

func TestUpdateActiveArticles(t *testing.T) {
	UpdateActiveArticles("remote", 12)
	assert.Equal(t, float64(12), testutil.ToFloat64(ActiveArticles.WithLabelValues("remote")))
	assert.Equal(t, float64(0), testutil.ToFloat64(ActiveArticles.WithLabelValues("local")))

	UpdateActiveArticles("local", 2)
	assert.Equal(t, float64(0), testutil.ToFloat64(ActiveArticles.WithLabelValues("remote")))
	assert.Equal(t, float64(2), testutil.ToFloat64(ActiveArticles.WithLabelValues("local")))
}

func TestRecorders_NoPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordReconnect()
		RecordLookup("remote", ResultFound)
		RecordLookup("local", ResultNotFound)
		RecordRefreshThrottled()
		RecordDBQuery("list_published", 5*time.Millisecond)
	})
}
