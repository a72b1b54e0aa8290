// Package metrics exposes the outcome of a run in the Prometheus text
// format, written to a file for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yuriy-kovalchuk/yk-ddns/internal/address"
	"github.com/yuriy-kovalchuk/yk-ddns/internal/controller"
)

const namespace = "ykddns"

// Recorder collects run metrics into its own registry.
type Recorder struct {
	registry  *prometheus.Registry
	records   *prometheus.CounterVec
	available *prometheus.GaugeVec
	lastRun   prometheus.Gauge
	duration  prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records processed, by domain, type and terminal status.",
		}, []string{"domain", "type", "status"}),
		available: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "address_available",
			Help:      "Whether the public address of a family was resolved (1) or not (0).",
		}, []string{"family"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
	}
	r.registry.MustRegister(r.records, r.available, r.lastRun, r.duration)
	return r
}

// Report implements controller.Reporter.
func (r *Recorder) Report(res controller.RecordResult) {
	r.records.WithLabelValues(res.Domain, res.Record.Type, string(res.Status)).Inc()
}

// ObserveAddresses records which families resolved.
func (r *Recorder) ObserveAddresses(set address.Set) {
	for _, f := range []address.Family{address.IPv4, address.IPv6} {
		v := 0.0
		if set.Available(f) {
			v = 1
		}
		r.available.WithLabelValues(f.String()).Set(v)
	}
}

// ObserveRun records the end of a run that started at start.
func (r *Recorder) ObserveRun(start, end time.Time) {
	r.lastRun.Set(float64(end.Unix()))
	r.duration.Set(end.Sub(start).Seconds())
}

// WriteTextfile atomically writes every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
