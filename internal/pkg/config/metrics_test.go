package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewConfigMetrics_Registration(t *testing.T) {
	m := NewConfigMetrics("test_component_registration")

	assert.NotNil(t, m.LoadTimestamp)
	assert.NotNil(t, m.ValidationErrorsTotal)
	assert.NotNil(t, m.FallbacksTotal)
	assert.NotNil(t, m.FallbackActive)
	assert.Equal(t, "test_component_registration", m.componentName)
}

func TestNewConfigMetrics_DuplicatePanics(t *testing.T) {
	NewConfigMetrics("test_component_duplicate")
	assert.Panics(t, func() { NewConfigMetrics("test_component_duplicate") })
}

func TestRecordLoadTimestamp(t *testing.T) {
	m := NewConfigMetrics("test_load_timestamp")
	m.RecordLoadTimestamp()

	assert.Greater(t, testutil.ToFloat64(m.LoadTimestamp), float64(0))
}

func TestRecordValidationError_PerField(t *testing.T) {
	m := NewConfigMetrics("test_validation_fields")

	m.RecordValidationError("resync_schedule")
	m.RecordValidationError("timezone")
	m.RecordValidationError("resync_schedule")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("resync_schedule")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("timezone")))
}

func TestRecordFallback_PerField(t *testing.T) {
	m := NewConfigMetrics("test_fallback_fields")

	m.RecordFallback("search_debounce")
	m.RecordFallback("search_debounce")
	m.RecordFallback("timezone")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("search_debounce")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("timezone")))
}

func TestSetFallbackActive_Toggle(t *testing.T) {
	m := NewConfigMetrics("test_fallback_toggle")

	m.SetFallbackActive(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbackActive))
	m.SetFallbackActive(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.FallbackActive))
}
