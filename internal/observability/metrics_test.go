package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshotAggregatesCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/orders", "POST", 201, 12*time.Millisecond)
	m.RecordRequest("/orders", "POST", 201, 9*time.Millisecond)
	m.RecordRequest("/customers", "GET", 200, 3*time.Millisecond)
	m.RecordError("/orders", "POST", "VALIDATION_FAILED")

	requests, errors := m.Snapshot()
	if requests != 3 {
		t.Fatalf("requests = %d, want 3", requests)
	}
	if errors != 1 {
		t.Fatalf("errors = %d, want 1", errors)
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/orders", "GET", 200, time.Millisecond)
	m.RecordError("/orders", "GET", "NOT_FOUND")
	if requests, errors := m.Snapshot(); requests != 0 || errors != 0 {
		t.Fatalf("nil snapshot = %d/%d, want 0/0", requests, errors)
	}
}
