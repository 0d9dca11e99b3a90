package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cron run outcomes reported in the outcome label.
const (
	CronOutcomeSuccess = "success"
	CronOutcomeFailure = "failure"
)

// CronJobMetrics tracks the cron worker: per-job runs and latency, cycles
// skipped because another instance held the scheduler lock, and the number of
// delivery batches the validation job closed.
type CronJobMetrics struct {
	runs             *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	lastSuccess      *prometheus.GaugeVec
	skippedCycles    prometheus.Counter
	batchesValidated prometheus.Counter
}

// NewCronJobMetrics registers the cron metrics on reg. A nil registerer yields
// a recorder that drops everything.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boutique_cron_job_runs_total",
			Help: "Cron job executions by job and outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "boutique_cron_job_duration_seconds",
			Help:    "Duration of cron job executions in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "boutique_cron_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per job.",
		}, []string{"job"}),
		skippedCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boutique_cron_cycles_skipped_total",
			Help: "Cron cycles skipped because another instance held the scheduler lock.",
		}),
		batchesValidated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boutique_cron_delivery_batches_validated_total",
			Help: "Pending delivery batches closed after their validation window.",
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.lastSuccess, m.skippedCycles, m.batchesValidated)
	return m
}

// ObserveRun records one execution of job that finished at finishedAt.
func (c *CronJobMetrics) ObserveRun(job string, duration time.Duration, err error, finishedAt time.Time) {
	if c == nil || c.runs == nil {
		return
	}
	job = normalizeLabel(job)
	c.duration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		c.runs.WithLabelValues(job, CronOutcomeFailure).Inc()
		return
	}
	c.runs.WithLabelValues(job, CronOutcomeSuccess).Inc()
	c.lastSuccess.WithLabelValues(job).Set(float64(finishedAt.Unix()))
}

func (c *CronJobMetrics) IncSkippedCycle() {
	if c == nil || c.skippedCycles == nil {
		return
	}
	c.skippedCycles.Inc()
}

// AddBatchesValidated counts batches closed by the delivery batch job.
func (c *CronJobMetrics) AddBatchesValidated(n int64) {
	if c == nil || c.batchesValidated == nil || n <= 0 {
		return
	}
	c.batchesValidated.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
