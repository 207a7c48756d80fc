package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveRecordsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/api/projects", "200", 25*time.Millisecond)
	m.Observe("GET", "/api/projects", "200", 30*time.Millisecond)
	m.Observe("POST", "/api/projects", "500", time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	counter, ok := byName["http_requests_total"]
	if !ok {
		t.Fatal("missing http_requests_total")
	}
	var okCount float64
	for _, metric := range counter.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "status" && label.GetValue() == "200" {
				okCount = metric.GetCounter().GetValue()
			}
		}
	}
	if okCount != 2 {
		t.Fatalf("expected 2 successful requests recorded, got %v", okCount)
	}

	hist, ok := byName["http_request_duration_seconds"]
	if !ok {
		t.Fatal("missing http_request_duration_seconds")
	}
	var samples uint64
	for _, metric := range hist.GetMetric() {
		samples += metric.GetHistogram().GetSampleCount()
	}
	if samples != 3 {
		t.Fatalf("expected 3 duration samples, got %d", samples)
	}
}

func TestObserveNilSafe(t *testing.T) {
	var m *HTTPMetrics
	m.Observe("GET", "/", "200", time.Millisecond)

	empty := NewHTTPMetrics(nil)
	empty.Observe("", "", "", 0)
}
