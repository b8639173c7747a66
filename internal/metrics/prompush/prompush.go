// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the generation labels (status, strategy) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead of
//     exposing an HTTP scrape endpoint (the CLI is a batch process).
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog, StatsD) without changes to the core
// generation code.
package prompush

import (
	"fmt"

	"etlsql/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	// Document-level metrics
	docCounter  *prometheus.CounterVec // "etlsql_documents_total"
	docDuration *prometheus.SummaryVec // "etlsql_generate_duration_seconds"

	// Statement-level metrics
	stmtCounter *prometheus.CounterVec // "etlsql_statements_total"

	// Run-quality metrics
	repairCounter  prometheus.Counter // "etlsql_repairs_total"
	missingCounter prometheus.Counter // "etlsql_missing_sources_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as the configured run job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "etlsql"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key; status and strategy are dynamic.
	docCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etlsql_documents_total",
			Help: "Total number of mapping documents processed, partitioned by status.",
		},
		[]string{"status"},
	)
	docDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "etlsql_generate_duration_seconds",
			Help:       "Time spent generating SQL per document, partitioned by status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"status"},
	)
	stmtCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etlsql_statements_total",
			Help: "Rendered statement counts per strategy (DIRECT, UNION, PIVOT, MISSING_SOURCE).",
		},
		[]string{"strategy"},
	)
	repairCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etlsql_repairs_total",
			Help: "Documents that only parsed after the bounded JSON repair pass.",
		},
	)
	missingCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etlsql_missing_sources_total",
			Help: "Targets rendered as placeholders because no source table was resolved.",
		},
	)

	if err := reg.Register(docCounter); err != nil {
		return nil, fmt.Errorf("prompush: register document counter: %w", err)
	}
	if err := reg.Register(docDuration); err != nil {
		return nil, fmt.Errorf("prompush: register duration summary: %w", err)
	}
	if err := reg.Register(stmtCounter); err != nil {
		return nil, fmt.Errorf("prompush: register statement counter: %w", err)
	}
	if err := reg.Register(repairCounter); err != nil {
		return nil, fmt.Errorf("prompush: register repair counter: %w", err)
	}
	if err := reg.Register(missingCounter); err != nil {
		return nil, fmt.Errorf("prompush: register missing-source counter: %w", err)
	}

	return &Backend{
		gatewayURL:     gatewayURL,
		jobName:        jobName,
		reg:            reg,
		docCounter:     docCounter,
		docDuration:    docDuration,
		stmtCounter:    stmtCounter,
		repairCounter:  repairCounter,
		missingCounter: missingCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "etlsql_documents_total":
		if b.docCounter == nil {
			return
		}
		b.docCounter.WithLabelValues(labels["status"]).Add(delta)

	case "etlsql_statements_total":
		if b.stmtCounter == nil {
			return
		}
		b.stmtCounter.WithLabelValues(labels["strategy"]).Add(delta)

	case "etlsql_repairs_total":
		if b.repairCounter == nil {
			return
		}
		b.repairCounter.Add(delta)

	case "etlsql_missing_sources_total":
		if b.missingCounter == nil {
			return
		}
		b.missingCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "etlsql_generate_duration_seconds" || b.docDuration == nil {
		return
	}
	b.docDuration.WithLabelValues(labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
