package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePrediction("Instant", time.Millisecond)
		m.PredictionFailed()
		m.CacheHit()
		m.CacheMiss()
		m.SetModelLoaded(true)
		m.ObserveRequest("/", http.StatusOK)
	})
	assert.Nil(t, m.Registry())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()

	m.ObservePrediction("Instant", 2*time.Millisecond)
	m.ObservePrediction("Instant", time.Millisecond)
	m.ObservePrediction("Same Day", time.Millisecond)
	m.CacheHit()
	m.SetModelLoaded(true)
	m.ObserveRequest("POST /api/predict", http.StatusBadRequest)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("Instant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("Same Day")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST /api/predict", "4xx")))

	m.SetModelLoaded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ModelLoaded))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusOK))
	assert.Equal(t, "3xx", statusClass(http.StatusFound))
	assert.Equal(t, "4xx", statusClass(http.StatusNotFound))
	assert.Equal(t, "5xx", statusClass(http.StatusServiceUnavailable))
}
