package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	errorsTotal *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_errors_total",
				Help: "Total number of errors per operation and kind",
			},
			[]string{"operation", "kind"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_cache_hits_total",
				Help: "Result cache hits per result class",
			},
			[]string{"class"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_cache_misses_total",
				Help: "Result cache misses per result class",
			},
			[]string{"class"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocklens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(op, kind string) {
	r.errorsTotal.WithLabelValues(op, kind).Inc()
}

// RecordCacheHit records a result cache hit.
func (r *Recorder) RecordCacheHit(class string) {
	r.cacheHits.WithLabelValues(class).Inc()
}

// RecordCacheMiss records a result cache miss.
func (r *Recorder) RecordCacheMiss(class string) {
	r.cacheMisses.WithLabelValues(class).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
