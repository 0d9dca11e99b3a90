package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCheckoutMetricsCountsOutcomesAndCompensations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.ObserveOutcome("batch_create", "success", 120*time.Millisecond)
	m.IncStepFailure("direct", "woocommerce_order")
	m.IncCompensation("insert_order", true)
	m.IncCompensation("payment_intent", false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "boutique_checkout_outcomes_total", "path", "batch_create"); err != nil || got != 1 {
		t.Fatalf("expected one batch_create outcome, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "boutique_checkout_step_failures_total", "step", "woocommerce_order"); err != nil || got != 1 {
		t.Fatalf("expected one step failure, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "boutique_checkout_compensations_total", "result", "error"); err != nil || got != 1 {
		t.Fatalf("expected one failed compensation, got %f err=%v", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "boutique_checkout_duration_seconds", "path", "batch_create"); err != nil || got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f err=%v", got, err)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var m *CheckoutMetrics
	m.ObserveOutcome("direct", "success", time.Second)
	m.IncStepFailure("direct", "x")
	m.IncCompensation("x", true)

	NewCheckoutMetrics(nil).IncCompensation("x", true)
}
