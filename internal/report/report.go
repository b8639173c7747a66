// Package report collects the non-fatal findings produced while generating a
// SQL script from a mapping document: missing source tables, repaired input,
// skipped targets, and validation or synthesis warnings.
//
// The engine renders placeholders and keeps going on most problems; the
// report is how a calling orchestrator learns that the output needs review
// before it decides to run the script. Findings use the same severity/path
// shape as configuration issues so CLI output stays uniform.
package report

import "fmt"

// Severity classifies a finding.
type Severity string

const (
	// SeverityError marks a finding that invalidates part of the output
	// (for example a mapping that could not be rendered).
	SeverityError Severity = "error"
	// SeverityWarning marks a finding the caller should review but that did
	// not stop generation.
	SeverityWarning Severity = "warning"
)

// Issue is a single finding scoped to a target table. Target may be empty for
// document-level findings (e.g. repaired input).
type Issue struct {
	Severity Severity
	Target   string
	Message  string
}

// Error implements the error interface so an Issue can be passed where an
// error is expected.
func (i Issue) Error() string {
	if i.Target == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Target, i.Message)
}

// Report accumulates findings for one generation run.
type Report struct {
	Issues []Issue

	// MissingSources lists targets whose mapping carried the
	// no-matching-source sentinel, in render order.
	MissingSources []string

	// SkippedTargets lists targets that matched no generation tier and were
	// therefore not rendered, in document order.
	SkippedTargets []string

	// Repaired records that the input JSON only parsed after the bounded
	// repair pass, so the output may rest on an incomplete document.
	Repaired bool
}

// AddWarning appends a warning-severity issue.
func (r *Report) AddWarning(target, format string, a ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: SeverityWarning,
		Target:   target,
		Message:  fmt.Sprintf(format, a...),
	})
}

// AddError appends an error-severity issue.
func (r *Report) AddError(target, format string, a ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: SeverityError,
		Target:   target,
		Message:  fmt.Sprintf(format, a...),
	})
}

// AddMissingSource records a target with no source table and the warning that
// accompanies its placeholder statement.
func (r *Report) AddMissingSource(target string) {
	r.MissingSources = append(r.MissingSources, target)
	r.AddWarning(target, "no source table found; placeholder statement rendered")
}

// AddSkippedTarget records a target that matched no tier prefix.
func (r *Report) AddSkippedTarget(target string) {
	r.SkippedTargets = append(r.SkippedTargets, target)
	r.AddWarning(target, "target matches no tier prefix (dim_/fact_/agg_); statement not rendered")
}

// MarkRepaired records the repaired-input warning once per run.
func (r *Report) MarkRepaired() {
	if r.Repaired {
		return
	}
	r.Repaired = true
	r.AddWarning("", "input JSON was malformed and has been repaired; review the output against the intended mapping")
}

// HasErrors reports whether any error-severity issue was recorded.
func (r *Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Summary is the structured roll-up exposed to callers.
type Summary struct {
	Errors         int
	Warnings       int
	MissingSources []string
	SkippedTargets []string
	Repaired       bool
}

// Summarize counts issues by severity and copies the named-target lists.
func (r *Report) Summarize() Summary {
	s := Summary{
		MissingSources: r.MissingSources,
		SkippedTargets: r.SkippedTargets,
		Repaired:       r.Repaired,
	}
	for _, i := range r.Issues {
		switch i.Severity {
		case SeverityError:
			s.Errors++
		default:
			s.Warnings++
		}
	}
	return s
}
