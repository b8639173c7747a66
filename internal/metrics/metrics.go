// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the SQL generation CLI.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems stay isolated in subpackages; the rest of the
//     codebase depends only on this interface.
//
// The engine itself stays silent; instrumentation lives in the CLI layer that
// drives it (documents processed, statements per strategy, repairs, missing
// sources, per-document generation time).
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

// RecordDocument records one generation attempt: a status-labeled counter and
// the time spent generating.
func RecordDocument(job string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"status": status,
	}

	backend.IncCounter("etlsql_documents_total", 1, lbls)
	backend.ObserveHistogram("etlsql_generate_duration_seconds", d.Seconds(), lbls)
}

// RecordStatements increments the per-strategy statement counter.
//
// Strategy values mirror the planner's enum: DIRECT, UNION, PIVOT,
// MISSING_SOURCE.
func RecordStatements(job, strategy string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("etlsql_statements_total", float64(delta), Labels{
		"job":      job,
		"strategy": strategy,
	})
}

// RecordRepair counts a document that only parsed after the repair pass.
func RecordRepair(job string) {
	backend.IncCounter("etlsql_repairs_total", 1, Labels{
		"job": job,
	})
}

// RecordMissingSources counts targets rendered as placeholders because no
// source table was resolved.
func RecordMissingSources(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("etlsql_missing_sources_total", float64(delta), Labels{
		"job": job,
	})
}
