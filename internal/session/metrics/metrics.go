package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the pre-check session module.
type Metrics struct {
	// Sessions started by route and tier
	SessionsStarted *prometheus.CounterVec

	// Checkout attempts by kind ("initial", "upgrade") and outcome
	CheckoutOutcome *prometheus.CounterVec

	// Revenue in pence by tier, counted on approval
	RevenuePence *prometheus.CounterVec

	// Verdicts produced by report generation
	Verdicts *prometheus.CounterVec

	// Report generation latency including the simulated delay
	ReportLatency prometheus.Histogram
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "precheck_sessions_started_total",
			Help: "Total pre-check sessions started by route and tier",
		}, []string{"route", "tier"}),

		CheckoutOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "precheck_checkout_outcomes_total",
			Help: "Total checkout attempts by kind and outcome",
		}, []string{"kind", "outcome"}), // outcome: "approved", "declined", "error"

		RevenuePence: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "precheck_checkout_revenue_pence_total",
			Help: "Approved mock checkout amounts in pence by tier",
		}, []string{"tier"}),

		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "precheck_report_verdicts_total",
			Help: "Reports generated by route and verdict",
		}, []string{"route", "verdict"}),

		ReportLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "precheck_report_duration_seconds",
			Help:    "Duration of report generation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementStarted records a new session.
func (m *Metrics) IncrementStarted(route, tier string) {
	if m != nil {
		m.SessionsStarted.WithLabelValues(route, tier).Inc()
	}
}

// IncrementCheckout records a checkout attempt outcome.
func (m *Metrics) IncrementCheckout(kind, outcome string) {
	if m != nil {
		m.CheckoutOutcome.WithLabelValues(kind, outcome).Inc()
	}
}

// AddRevenue records an approved charge.
func (m *Metrics) AddRevenue(tier string, pence int64) {
	if m != nil {
		m.RevenuePence.WithLabelValues(tier).Add(float64(pence))
	}
}

// IncrementVerdict records a generated report.
func (m *Metrics) IncrementVerdict(route, verdict string) {
	if m != nil {
		m.Verdicts.WithLabelValues(route, verdict).Inc()
	}
}

// ObserveReportLatency records how long a report took to generate.
func (m *Metrics) ObserveReportLatency(d time.Duration) {
	if m != nil {
		m.ReportLatency.Observe(d.Seconds())
	}
}
