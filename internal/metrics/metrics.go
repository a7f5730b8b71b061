// Package metrics exposes per-run Prometheus metrics and writes them in the
// node-exporter textfile format so a scheduled CLI run can be scraped.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gauges and counters for one process.
type Metrics struct {
	registry *prometheus.Registry

	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	Orders          prometheus.Gauge
	Profiles        prometheus.Gauge
	Records         *prometheus.GaugeVec
	Issues          prometheus.Gauge
	Unsorted        prometheus.Gauge
	LastRunSuccess  prometheus.Gauge
	LastSuccessTime prometheus.Gauge
}

// Outcome carries the values recorded for one run.
type Outcome struct {
	Succeeded     bool
	Duration      time.Duration
	Orders        int
	Profiles      int
	Packets       int
	Registrations int
	Issues        int
	Unsorted      int
	FinishedAt    time.Time
}

// New registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auditionsync_runs_total",
			Help: "Sync runs by outcome",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditionsync_run_duration_seconds",
			Help:    "Duration of a full sync run",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		Orders: factory.NewGauge(prometheus.GaugeOpts{
			Name: "auditionsync_orders",
			Help: "Orders processed by the last successful run",
		}),
		Profiles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "auditionsync_profiles",
			Help: "Profiles built by the last successful run",
		}),
		Records: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "auditionsync_records",
			Help: "Packets and registrations parsed by the last successful run",
		}, []string{"kind"}),
		Issues: factory.NewGauge(prometheus.GaugeOpts{
			Name: "auditionsync_order_issues",
			Help: "Orders or line items skipped or degraded in the last successful run",
		}),
		Unsorted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "auditionsync_unsorted_candidates",
			Help: "Candidates listed on the UNSORTED recruitment tab",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "auditionsync_last_run_success",
			Help: "1 if the last run succeeded, 0 otherwise",
		}),
		LastSuccessTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "auditionsync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

// Prior is the run history a fresh process restores before observing the
// current run. LastSuccess is nil when no run has succeeded yet.
type Prior struct {
	Runs        map[string]int
	LastSuccess *Outcome
}

// Restore loads earlier runs into the counters and the last success into
// the gauges. It must be called before Observe on a fresh Metrics. Earlier
// run durations are not replayed into the histogram.
func (m *Metrics) Restore(p Prior) {
	if m == nil {
		return
	}
	for status, n := range p.Runs {
		if n > 0 {
			m.Runs.WithLabelValues(status).Add(float64(n))
		}
	}
	if p.LastSuccess != nil {
		m.setSuccess(*p.LastSuccess)
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records a finished run. Counts only move on success so a failed
// run does not zero the dashboards.
func (m *Metrics) Observe(o Outcome) {
	if m == nil {
		return
	}
	status := "failed"
	if o.Succeeded {
		status = "succeeded"
	}
	m.Runs.WithLabelValues(status).Inc()
	m.RunDuration.Observe(o.Duration.Seconds())
	if !o.Succeeded {
		m.LastRunSuccess.Set(0)
		return
	}
	m.LastRunSuccess.Set(1)
	m.setSuccess(o)
}

func (m *Metrics) setSuccess(o Outcome) {
	m.Orders.Set(float64(o.Orders))
	m.Profiles.Set(float64(o.Profiles))
	m.Records.WithLabelValues("packet").Set(float64(o.Packets))
	m.Records.WithLabelValues("registration").Set(float64(o.Registrations))
	m.Issues.Set(float64(o.Issues))
	m.Unsorted.Set(float64(o.Unsorted))
	m.LastSuccessTime.Set(float64(o.FinishedAt.Unix()))
}

// WriteTextfile writes the registry to path atomically. An empty path is a
// no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
