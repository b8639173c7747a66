package sqlgen

import (
	"fmt"
	"sort"
	"strings"

	"etlsql/internal/mapping"
	"etlsql/internal/plan"
)

// Statement is one rendered DML statement plus its side findings.
type Statement struct {
	TargetTable string
	Strategy    plan.Strategy
	SQL         string

	// Warnings are non-fatal findings raised while rendering this statement.
	Warnings []string
	// Errors mark statements whose output degraded to a comment block.
	Errors []string
}

// RenderOptions selects the statement variant.
type RenderOptions struct {
	// Idempotent renders MERGE statements keyed on primary_key instead of
	// plain INSERTs. Mappings without a primary key fall back to INSERT.
	Idempotent bool
}

// Render assembles the statement for one mapping under the given strategy.
func Render(m mapping.TableMapping, strat plan.Strategy, opts RenderOptions) Statement {
	st := Statement{TargetTable: m.TargetTable, Strategy: strat}

	if strat == plan.MissingSource {
		st.SQL = renderMissingSource(m)
		return st
	}

	var (
		set     columnSet
		body    string
		comment string
	)

	switch strat {
	case plan.Union:
		body, set = unionBody(m)
		comment = fmt.Sprintf("-- Populating '%s' by UNIONing multiple sources", m.TargetTable)
	case plan.Pivot:
		source := strings.TrimSpace(strings.Split(m.SourceTable, ",")[0])
		set = pivotColumns(m)
		if len(set.groupBy) == 0 {
			st.Errors = append(st.Errors,
				"pivot mapping has no grouping columns; statement not rendered")
			st.Warnings = append(st.Warnings, set.warnings...)
			st.SQL = fmt.Sprintf(
				"-- ERROR: Pivot mapping for '%s' has no plain columns to group by.\n-- No statement was generated for this target.", m.TargetTable)
			return st
		}
		body = pivotBody(source, set)
		comment = fmt.Sprintf("-- Populating '%s' by PIVOTING from '%s'", m.TargetTable, source)
	default:
		set = projectionColumns(m, "Default")
		body = selectBody(m.SourceTable, set.columns)
		comment = fmt.Sprintf("-- Populating '%s' from '%s'", m.TargetTable, m.SourceTable)
	}
	st.Warnings = append(st.Warnings, set.warnings...)

	targets := targetColumns(m)

	if opts.Idempotent {
		if len(m.PrimaryKey) == 0 {
			st.Warnings = append(st.Warnings,
				"no primary_key for idempotent load; falling back to plain INSERT")
		} else {
			st.SQL = comment + " (idempotent)\n" + mergeStatement(m, body, targets)
			return st
		}
	}

	st.SQL = fmt.Sprintf("%s\nINSERT INTO `%s` (%s)\n%s;",
		comment, m.TargetTable, strings.Join(targets, ", "), body)
	return st
}

// selectBody renders "SELECT e AS a, ...\nFROM `source`".
func selectBody(source string, cols []SelectColumn) string {
	return fmt.Sprintf("SELECT %s\nFROM `%s`", joinAliased(cols), strings.TrimSpace(source))
}

// unionBody renders one SELECT per comma-split source, joined by UNION ALL.
// Each source re-synthesizes the full projection so per-source defaults (the
// origin literal for unmapped columns) differ legitimately between branches.
func unionBody(m mapping.TableMapping) (string, columnSet) {
	var merged columnSet
	sources := strings.Split(m.SourceTable, ",")
	parts := make([]string, 0, len(sources))
	for _, raw := range sources {
		source := strings.TrimSpace(raw)
		set := projectionColumns(m, source)
		merged.warnings = append(merged.warnings, set.warnings...)
		merged.columns = set.columns
		parts = append(parts, fmt.Sprintf("SELECT %s FROM `%s`", joinAliased(set.columns), source))
	}
	return strings.Join(parts, "\nUNION ALL\n"), merged
}

// pivotBody renders the aggregate SELECT with its lexicographically sorted
// grouping columns.
func pivotBody(source string, set columnSet) string {
	groupBy := append([]string(nil), set.groupBy...)
	sort.Strings(groupBy)
	return fmt.Sprintf("SELECT %s\nFROM `%s`\nGROUP BY %s",
		joinAliased(set.columns), source, strings.Join(groupBy, ", "))
}

// mergeStatement wraps a SELECT body into the idempotent MERGE shape. The
// subquery aliases every expression to its target name, so the ON clause and
// the outer UPDATE/INSERT lists reference target names on both sides.
func mergeStatement(m mapping.TableMapping, body string, targets []string) string {
	on := make([]string, 0, len(m.PrimaryKey))
	for _, pk := range m.PrimaryKey {
		on = append(on, fmt.Sprintf("T.%s = S.%s", pk, pk))
	}

	updates := make([]string, 0, len(targets))
	values := make([]string, 0, len(targets))
	for _, col := range targets {
		updates = append(updates, fmt.Sprintf("T.%s = S.%s", col, col))
		values = append(values, "S."+col)
	}

	return fmt.Sprintf(
		"MERGE `%s` AS T\nUSING (\n%s\n) AS S\nON %s\nWHEN MATCHED THEN UPDATE SET %s\nWHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);",
		m.TargetTable,
		indent(body, "  "),
		strings.Join(on, " AND "),
		strings.Join(updates, ", "),
		strings.Join(targets, ", "),
		strings.Join(values, ", "),
	)
}

// renderMissingSource emits the commented placeholder for a target whose
// source table was never resolved upstream.
func renderMissingSource(m mapping.TableMapping) string {
	return fmt.Sprintf(
		"-- WARNING: No source table found for target '%s'.\n-- Please define the source and complete the query below.\nINSERT INTO `%s` (%s)\nSELECT ... ;",
		m.TargetTable, m.TargetTable, strings.Join(targetColumns(m), ", "))
}

func targetColumns(m mapping.TableMapping) []string {
	cols := make([]string, 0, len(m.ColumnMappings))
	for _, c := range m.ColumnMappings {
		cols = append(cols, c.TargetColumn)
	}
	return cols
}

func joinAliased(cols []SelectColumn) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, c.Expr+" AS "+c.Alias)
	}
	return strings.Join(parts, ", ")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
