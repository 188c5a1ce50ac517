// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the batch pipeline.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - It mirrors the object-store abstraction pattern used elsewhere in the
//     project: the rest of the codebase depends only on this interface while
//     concrete metric systems stay isolated in subpackages.
//
// The primary use case is instrumentation of the pipeline stages (fetch,
// expand, parse, transform, write, catalog) without coupling the core logic
// to a specific metrics system such as Prometheus or Datadog.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep is a convenience for the common pattern:
// measure latency + success/failure per pipeline step.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter("tripdata_step_total", 1, lbls)
	backend.ObserveHistogram("tripdata_step_duration_seconds", d.Seconds(), lbls)
}

// RecordFile increments the per-file outcome counter.
//
// Typical statuses mirror the batch summary fields:
//   - "processed"
//   - "failed"
//   - "skipped"
func RecordFile(job, status string) {
	backend.IncCounter("tripdata_files_total", 1, Labels{
		"job":    job,
		"status": status,
	})
}

// RecordRows counts the trip rows written for the given job.
func RecordRows(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("tripdata_rows_total", float64(delta), Labels{
		"job": job,
	})
}

// RecordNewColumns counts schema-registry columns discovered for the first
// time, a cheap signal that the upstream feed changed shape.
func RecordNewColumns(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("tripdata_new_columns_total", float64(delta), Labels{
		"job": job,
	})
}
