package mapping

import (
	"fmt"
	"strings"

	"etlsql/internal/identifier"
	"etlsql/internal/report"
)

// knownStrategies are the accepted values of the explicit strategy override.
var knownStrategies = map[string]struct{}{
	"direct":         {},
	"union":          {},
	"pivot":          {},
	"missing_source": {},
}

// Validate performs static validation of a decoded Document.
//
// It does not mutate the document. All findings are non-fatal: generation
// continues and the caller decides how to surface them. Structural errors in
// a single mapping degrade that mapping's output, not the whole run.
func Validate(doc Document) []report.Issue {
	var issues []report.Issue

	if len(doc.Mappings) == 0 {
		issues = append(issues, report.Issue{
			Severity: report.SeverityError,
			Message:  "document has no mappings; nothing to generate",
		})
		return issues
	}

	seen := make(map[string]struct{}, len(doc.Mappings))
	for i, m := range doc.Mappings {
		target := strings.TrimSpace(m.TargetTable)
		if target == "" {
			issues = append(issues, report.Issue{
				Severity: report.SeverityError,
				Message:  fmt.Sprintf("mappings[%d] has no target_table", i),
			})
			continue
		}

		if _, dup := seen[target]; dup {
			issues = append(issues, report.Issue{
				Severity: report.SeverityWarning,
				Target:   target,
				Message:  "duplicate target_table in document; both mappings will render",
			})
		}
		seen[target] = struct{}{}

		if len(m.ColumnMappings) == 0 {
			issues = append(issues, report.Issue{
				Severity: report.SeverityError,
				Target:   target,
				Message:  "mapping has no column_mappings",
			})
		}

		if m.Strategy != "" {
			if _, ok := knownStrategies[strings.ToLower(m.Strategy)]; !ok {
				issues = append(issues, report.Issue{
					Severity: report.SeverityWarning,
					Target:   target,
					Message:  fmt.Sprintf("unknown strategy %q; falling back to heuristics", m.Strategy),
				})
			}
		}

		for j, c := range m.ColumnMappings {
			if strings.TrimSpace(c.TargetColumn) == "" {
				issues = append(issues, report.Issue{
					Severity: report.SeverityError,
					Target:   target,
					Message:  fmt.Sprintf("column_mappings[%d] has no target_column", j),
				})
				continue
			}
			if !identifier.IsASCII(c.TargetColumn) {
				issues = append(issues, report.Issue{
					Severity: report.SeverityWarning,
					Target:   target,
					Message: fmt.Sprintf("target_column %q is not ASCII; consider %q",
						c.TargetColumn, identifier.Normalize(c.TargetColumn)),
				})
			}
		}
	}

	return issues
}
