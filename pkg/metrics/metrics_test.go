package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/complaint/{id}", 200, 120*time.Millisecond)
	m.Observe("GET", "/complaint/{id}", 200, 80*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", "route", "/complaint/{id}"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected requests=2, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "route", "/complaint/{id}"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestComplaintMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewComplaintMetrics(reg)
	m.IncCreated("hostel")
	m.IncCreated("hostel")
	m.IncRoutingFailure("")
	m.IncUpvoteToggle(true)
	m.IncUpvoteToggle(false)
	m.IncUpvoteToggle(false)
	m.IncTransition("escalate")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	cases := []struct {
		name, label, value string
		want               float64
	}{
		{"complaints_created_total", "category", "hostel", 2},
		{"complaint_routing_failures_total", "category", "unknown", 1},
		{"complaint_upvote_toggles_total", "direction", UpvoteDirectionAdded, 1},
		{"complaint_upvote_toggles_total", "direction", UpvoteDirectionRemoved, 2},
		{"complaint_transitions_total", "action", "escalate", 1},
	}
	for _, tc := range cases {
		got, err := fetchCounterValue(mfs, tc.name, tc.label, tc.value)
		if err != nil {
			t.Fatalf("fetch %s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s{%s=%s}: expected %v, got %v", tc.name, tc.label, tc.value, tc.want, got)
		}
	}
}

func TestJobMetricsSplitsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)
	m.Observe("upvote-reconcile", time.Second, nil)
	m.Observe("upvote-reconcile", time.Second, fmt.Errorf("boom"))
	m.Observe("upvote-reconcile", time.Second, nil)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "maintenance_job_runs_total", "outcome", "success"); err != nil || got != 2 {
		t.Fatalf("expected 2 successes, got %v (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "maintenance_job_runs_total", "outcome", "failure"); err != nil || got != 1 {
		t.Fatalf("expected 1 failure, got %v (%v)", got, err)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewComplaintMetrics(nil).IncCreated("hostel")
	NewJobMetrics(nil).Observe("job", time.Millisecond, nil)
	var jobs *JobMetrics
	jobs.Observe("job", time.Millisecond, nil)
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
	var m *ComplaintMetrics
	m.IncTransition("resolve")
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
