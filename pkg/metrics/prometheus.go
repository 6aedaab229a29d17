package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics and cache.Observer using Prometheus.
type Recorder struct {
	cacheRequests *prometheus.CounterVec
	backendErrors *prometheus.CounterVec
	degraded      prometheus.Gauge
	latency       *prometheus.HistogramVec
	verdicts      *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
}

// New creates a recorder registered on reg. Pass prometheus.DefaultRegisterer
// to expose it on the default /metrics handler.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cacheRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_cache_requests_total",
				Help: "Cache lookups by result and serving tier",
			},
			[]string{"result", "tier"},
		),
		backendErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_cache_backend_errors_total",
				Help: "Shared cache backend failures by operation",
			},
			[]string{"op"},
		),
		degraded: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "signaldesk_cache_degraded",
				Help: "1 while the local tier serves traffic in place of the shared tier",
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signaldesk_operation_duration_seconds",
				Help:    "Duration of memoized operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		verdicts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_verdicts_total",
				Help: "Risk verdicts produced by scoring passes",
			},
			[]string{"verdict"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		rateLimited: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_rate_limited_total",
				Help: "Calls rejected by the rate limiter",
			},
			[]string{"scope"},
		),
	}
}

func (r *Recorder) CacheHit(tier string) {
	r.cacheRequests.WithLabelValues("hit", tier).Inc()
}

func (r *Recorder) CacheMiss() {
	r.cacheRequests.WithLabelValues("miss", "").Inc()
}

func (r *Recorder) CacheBackendError(op string) {
	r.backendErrors.WithLabelValues(op).Inc()
}

func (r *Recorder) CacheDegraded(degraded bool) {
	if degraded {
		r.degraded.Set(1)
		return
	}
	r.degraded.Set(0)
}

// OperationLatency records the duration of a memoized computation.
func (r *Recorder) OperationLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordVerdict counts a verdict emitted by a scoring pass.
func (r *Recorder) RecordVerdict(verdict string) {
	r.verdicts.WithLabelValues(verdict).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRateLimited counts a rejected call.
func (r *Recorder) RecordRateLimited(scope string) {
	r.rateLimited.WithLabelValues(scope).Inc()
}
