package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks checkout saga outcomes per path (batch_create,
// batch_append, direct) and compensation results per step.
type CheckoutMetrics struct {
	outcomes      *prometheus.CounterVec
	stepFailures  *prometheus.CounterVec
	compensations *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boutique_checkout_outcomes_total",
		Help: "Checkout attempts by path and outcome.",
	}, []string{"path", "outcome"})
	stepFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boutique_checkout_step_failures_total",
		Help: "Checkout saga steps that failed.",
	}, []string{"path", "step"})
	compensations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boutique_checkout_compensations_total",
		Help: "Compensating actions run after a failed checkout step.",
	}, []string{"step", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boutique_checkout_duration_seconds",
		Help:    "Checkout saga duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
	reg.MustRegister(outcomes, stepFailures, compensations, duration)
	return &CheckoutMetrics{
		outcomes:      outcomes,
		stepFailures:  stepFailures,
		compensations: compensations,
		duration:      duration,
	}
}

func (m *CheckoutMetrics) ObserveOutcome(path, outcome string, duration time.Duration) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(path), normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(normalizeLabel(path)).Observe(duration.Seconds())
}

func (m *CheckoutMetrics) IncStepFailure(path, step string) {
	if m == nil || m.stepFailures == nil {
		return
	}
	m.stepFailures.WithLabelValues(normalizeLabel(path), normalizeLabel(step)).Inc()
}

func (m *CheckoutMetrics) IncCompensation(step string, ok bool) {
	if m == nil || m.compensations == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.compensations.WithLabelValues(normalizeLabel(step), result).Inc()
}
