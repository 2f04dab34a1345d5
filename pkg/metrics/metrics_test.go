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
	m.Observe("GET", "/{id}/", 200, 250*time.Millisecond)
	m.Observe("GET", "/{id}/", 200, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "lostfound_http_requests_total", "route", "/{id}/"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "lostfound_http_request_duration_seconds", "route", "/{id}/"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0.25 {
		t.Fatalf("expected duration sum > 0.25, got %f", got)
	}
}

func TestAuditMetricsSeparatesRecordedAndDropped(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAuditMetrics(reg)
	m.IncRecorded("Web Portal", 1)
	m.IncDropped("Admin", 3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "lostfound_login_audit_recorded_total", "source", "Web Portal"); err != nil || got != 1 {
		t.Fatalf("expected recorded=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "lostfound_login_audit_dropped_total", "source", "Admin"); err != nil || got != 1 {
		t.Fatalf("expected dropped=1, got %f err=%v", got, err)
	}
}

func TestCacheMetricsLabelsResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCacheMetrics(reg)
	m.IncHit("catalog_summary")
	m.IncMiss("catalog_summary")
	m.IncMiss("catalog_summary")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "lostfound_cache_lookups_total", "result", "miss"); err != nil || got != 2 {
		t.Fatalf("expected 2 misses, got %f err=%v", got, err)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
	NewAuditMetrics(nil).IncDropped("Admin", 3)
	NewCacheMetrics(nil).IncHit("x")

	var nilHTTP *HTTPMetrics
	nilHTTP.Observe("GET", "/", 200, time.Millisecond)
	var nilAudit *AuditMetrics
	nilAudit.IncRecorded("Admin", 1)
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
