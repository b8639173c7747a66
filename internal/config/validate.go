// Package config provides configuration models and helpers for generation runs.
//
// This file adds a lightweight linter/validator for Run values. It performs
// static checks over a decoded Run and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Run.
//
// Path is a dotted path into the config (e.g. "metrics.backend",
// "inputs[1]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateRun performs static validation / linting of a Run.
//
// It does not mutate the run. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func ValidateRun(r Run) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics and logs will use the default job name",
		})
	}

	if len(r.Inputs) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "inputs",
			Message:  "at least one input document is required",
		})
	}
	stdinCount := 0
	for i, in := range r.Inputs {
		if strings.TrimSpace(in) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("inputs[%d]", i),
				Message:  "input must not be empty",
			})
		}
		if in == "-" {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "inputs",
			Message:  "stdin (\"-\") may appear at most once",
		})
	}

	if len(r.Inputs) > 1 && strings.TrimSpace(r.OutputDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output_dir",
			Message:  "multiple inputs with no output_dir; scripts will be concatenated on stdout",
		})
	}

	issues = append(issues, validateMetrics(r.Metrics)...)

	if r.Runtime.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		})
	}

	if n := r.HTTP.Int("timeout_seconds", 0); n < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "http.timeout_seconds",
			Message:  "timeout_seconds must not be negative",
		})
	}
	if n := r.HTTP.Int("max_retries", 0); n < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "http.max_retries",
			Message:  "max_retries must not be negative",
		})
	}

	return issues
}

// validateMetrics validates the metrics backend selection and its options.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	known := map[string]struct{}{
		"":            {},
		"none":        {},
		"pushgateway": {},
		"datadog":     {},
	}
	if _, ok := known[m.Backend]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
		return issues
	}

	switch m.Backend {
	case "pushgateway":
		if m.Options.String("url", "") == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.options.url",
				Message:  "pushgateway backend has no url; the default http://localhost:9091 will be used",
			})
		}
	case "datadog":
		if m.Options.String("addr", "") == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.options.addr",
				Message:  "datadog backend requires a dogstatsd addr",
			})
		}
	}

	return issues
}
