package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RateLimitDenied    *prometheus.CounterVec
	RateLimitFallbacks prometheus.Counter
	RateLimitDegraded  prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RateLimitDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "precheck_ratelimit_denied_total",
			Help: "Total requests rejected by the per-IP rate limiter by endpoint class",
		}, []string{"class"}),
		RateLimitFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "precheck_ratelimit_fallback_checks_total",
			Help: "Total rate limit checks served by the in-memory fallback",
		}),
		RateLimitDegraded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "precheck_ratelimit_degraded",
			Help: "1 while the primary rate limit store is bypassed by the circuit breaker",
		}),
	}
}

func (m *Metrics) IncrementDenied(class string) {
	if m != nil {
		m.RateLimitDenied.WithLabelValues(class).Inc()
	}
}

func (m *Metrics) IncrementFallbacks() {
	if m != nil {
		m.RateLimitFallbacks.Inc()
	}
}

func (m *Metrics) SetDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.RateLimitDegraded.Set(1)
		return
	}
	m.RateLimitDegraded.Set(0)
}
