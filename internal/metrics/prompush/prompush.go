// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang counter and summary collectors.
//   - Mapping the common pipeline labels (job, step, status) onto Prometheus
//     labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint; a batch job is gone before any
//     scraper would find it.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog, StatsD) without changes to the core
// pipeline.
package prompush

import (
	"fmt"

	"tripdata/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // "tripdata_step_total"
	stepDuration *prometheus.SummaryVec // "tripdata_step_duration_seconds"

	fileCounter       *prometheus.CounterVec // "tripdata_files_total"
	rowCounter        prometheus.Counter     // "tripdata_rows_total"
	newColumnsCounter prometheus.Counter     // "tripdata_new_columns_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as pipeline job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "tripdata"
	}

	reg := prometheus.NewRegistry()

	// job is carried as the Pushgateway grouping key, so the collectors
	// only need step/status/kind labels.
	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripdata_step_total",
			Help: "Total number of pipeline step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "tripdata_step_duration_seconds",
			Help:       "Duration of pipeline steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	fileCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripdata_files_total",
			Help: "Source files handled, partitioned by outcome (processed, failed, skipped).",
		},
		[]string{"status"},
	)
	rowCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tripdata_rows_total",
			Help: "Trip rows written to processed output for this job.",
		},
	)
	newColumnsCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tripdata_new_columns_total",
			Help: "Schema registry columns seen for the first time during this job.",
		},
	)

	for _, c := range []prometheus.Collector{
		stepCounter, stepDuration, fileCounter, rowCounter, newColumnsCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:        gatewayURL,
		jobName:           jobName,
		reg:               reg,
		stepCounter:       stepCounter,
		stepDuration:      stepDuration,
		fileCounter:       fileCounter,
		rowCounter:        rowCounter,
		newColumnsCounter: newColumnsCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "tripdata_step_total":
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case "tripdata_files_total":
		if b.fileCounter == nil {
			return
		}
		b.fileCounter.WithLabelValues(labels["status"]).Add(delta)

	case "tripdata_rows_total":
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.Add(delta)

	case "tripdata_new_columns_total":
		if b.newColumnsCounter == nil {
			return
		}
		b.newColumnsCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "tripdata_step_duration_seconds" || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
