package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"auditionsync/internal/metrics"
)

func TestObserveSuccessSetsGauges(t *testing.T) {
	m := metrics.New()
	finished := time.Unix(1_760_000_000, 0)
	m.Observe(metrics.Outcome{
		Succeeded: true, Duration: 3 * time.Second, Orders: 10, Profiles: 7,
		Packets: 6, Registrations: 2, Issues: 1, Unsorted: 3, FinishedAt: finished,
	})

	if got := testutil.ToFloat64(m.Orders); got != 10 {
		t.Fatalf("orders gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.Records.WithLabelValues("registration")); got != 2 {
		t.Fatalf("registration gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.LastSuccessTime); got != float64(finished.Unix()) {
		t.Fatalf("last success = %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues("succeeded")); got != 1 {
		t.Fatalf("succeeded runs = %v", got)
	}
}

func TestObserveFailureKeepsLastCounts(t *testing.T) {
	m := metrics.New()
	m.Observe(metrics.Outcome{Succeeded: true, Orders: 5, FinishedAt: time.Now()})
	m.Observe(metrics.Outcome{Succeeded: false})

	if got := testutil.ToFloat64(m.Orders); got != 5 {
		t.Fatalf("failed run must not reset orders, got %v", got)
	}
	if got := testutil.ToFloat64(m.LastRunSuccess); got != 0 {
		t.Fatalf("last run success = %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues("failed")); got != 1 {
		t.Fatalf("failed runs = %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := metrics.New()
	m.Observe(metrics.Outcome{Succeeded: true, Orders: 2, FinishedAt: time.Now()})
	path := filepath.Join(t.TempDir(), "nested", "auditionsync.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "auditionsync_orders 2") {
		t.Fatalf("unexpected textfile contents:\n%s", data)
	}
	if err := m.WriteTextfile(""); err != nil {
		t.Fatalf("empty path must be a no-op, got %v", err)
	}
}

func TestRestoreCarriesHistoryAcrossProcesses(t *testing.T) {
	lastSuccess := time.Unix(1_760_000_000, 0)
	m := metrics.New()
	m.Restore(metrics.Prior{
		Runs:        map[string]int{"succeeded": 3, "failed": 1},
		LastSuccess: &metrics.Outcome{Succeeded: true, Orders: 8, Profiles: 5, FinishedAt: lastSuccess},
	})
	m.Observe(metrics.Outcome{Succeeded: false})

	if got := testutil.ToFloat64(m.Orders); got != 8 {
		t.Fatalf("orders gauge = %v, want last success value", got)
	}
	if got := testutil.ToFloat64(m.LastSuccessTime); got != float64(lastSuccess.Unix()) {
		t.Fatalf("last success = %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues("failed")); got != 2 {
		t.Fatalf("failed runs = %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues("succeeded")); got != 3 {
		t.Fatalf("succeeded runs = %v", got)
	}
	if got := testutil.ToFloat64(m.LastRunSuccess); got != 0 {
		t.Fatalf("last run success = %v", got)
	}
}
