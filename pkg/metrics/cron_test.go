package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsLabelRunsByJobAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "delivery-batch-validation"
	finished := time.Date(2026, 5, 2, 3, 0, 0, 0, time.UTC)
	metrics.ObserveRun(job, 250*time.Millisecond, nil, finished)
	metrics.ObserveRun(job, 100*time.Millisecond, errors.New("db down"), finished.Add(time.Minute))
	metrics.ObserveRun("other-job", time.Second, nil, finished)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterWithLabels(mfs, "boutique_cron_job_runs_total", map[string]string{"job": job, "outcome": CronOutcomeSuccess}); err != nil || got != 1 {
		t.Fatalf("expected one success for %s, got %f err=%v", job, got, err)
	}
	if got, err := fetchCounterWithLabels(mfs, "boutique_cron_job_runs_total", map[string]string{"job": job, "outcome": CronOutcomeFailure}); err != nil || got != 1 {
		t.Fatalf("expected one failure for %s, got %f err=%v", job, got, err)
	}
	if got, err := fetchHistogramSum(mfs, "boutique_cron_job_duration_seconds", "job", job); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got < 0.34 || got > 0.36 {
		t.Fatalf("expected duration sum 0.35, got %f", got)
	}

	mf := findMetricFamily(mfs, "boutique_cron_job_last_success_timestamp_seconds")
	if mf == nil {
		t.Fatalf("last success gauge not exported")
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), "job", job) && metric.GetGauge().GetValue() != float64(finished.Unix()) {
			t.Fatalf("failed run must not move the last success time, got %f", metric.GetGauge().GetValue())
		}
	}
}

func TestCronJobMetricsCountSkipsAndValidatedBatches(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	metrics.IncSkippedCycle()
	metrics.AddBatchesValidated(3)
	metrics.AddBatchesValidated(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := findMetricFamily(mfs, "boutique_cron_cycles_skipped_total").GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected one skipped cycle, got %f", got)
	}
	if got := findMetricFamily(mfs, "boutique_cron_delivery_batches_validated_total").GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Fatalf("expected 3 validated batches, got %f", got)
	}
}

func TestNilCronJobMetricsIsSafe(t *testing.T) {
	var metrics *CronJobMetrics
	metrics.ObserveRun("job", time.Second, nil, time.Now())
	metrics.IncSkippedCycle()
	metrics.AddBatchesValidated(2)
	NewCronJobMetrics(nil).ObserveRun("job", time.Second, errors.New("x"), time.Now())
}

func fetchCounterWithLabels(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		matched := true
		for k, v := range labels {
			if !matchesLabel(metric.GetLabel(), k, v) {
				matched = false
				break
			}
		}
		if matched {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
