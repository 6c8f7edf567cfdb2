// Package monitoring exposes Prometheus metrics for the prediction service.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kurirai"

// Metrics owns a private registry. All methods are safe on a nil receiver so callers
// can run without metrics.
type Metrics struct {
	reg *prometheus.Registry

	Predictions       *prometheus.CounterVec
	PredictionErrors  prometheus.Counter
	PredictionLatency prometheus.Histogram
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	ModelLoaded       prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		reg: r,
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predictor",
			Name:      "predictions_total",
			Help:      "Predictions served, by service tier",
		}, []string{"label"}),
		PredictionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predictor",
			Name:      "prediction_errors_total",
			Help:      "Predictions that failed inside the model",
		}),
		PredictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "predictor",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent deriving features and classifying",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predictor",
			Name:      "cache_hits_total",
			Help:      "Predictions answered from the result cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predictor",
			Name:      "cache_misses_total",
			Help:      "Predictions that had to call the model",
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "loaded",
			Help:      "1 when the model artifact loaded, 0 otherwise",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code",
		}, []string{"route", "code"}),
	}
	r.MustRegister(
		m.Predictions,
		m.PredictionErrors,
		m.PredictionLatency,
		m.CacheHits,
		m.CacheMisses,
		m.ModelLoaded,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) ObservePrediction(label string, took time.Duration) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(label).Inc()
	m.PredictionLatency.Observe(took.Seconds())
}

func (m *Metrics) PredictionFailed() {
	if m == nil {
		return
	}
	m.PredictionErrors.Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) SetModelLoaded(loaded bool) {
	if m == nil {
		return
	}
	if loaded {
		m.ModelLoaded.Set(1)
		return
	}
	m.ModelLoaded.Set(0)
}

func (m *Metrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, statusClass(code)).Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
