// Package sqlgen synthesizes per-column SQL expressions from a table mapping
// and renders the final INSERT/MERGE statements and script text.
//
// The package is pure string assembly: no schema introspection, no execution,
// no quoting beyond backticking table names. All dialect choices target a
// BigQuery-style warehouse (MAX(IF(...)), SAFE_DIVIDE, CURRENT_TIMESTAMP()).
package sqlgen

import (
	"fmt"
	"strings"

	"etlsql/internal/mapping"
)

// Compatibility fallback for derived-ratio pivot columns whose mapping does
// not carry derived_metric operand codes. These are the World Bank indicator
// codes the legacy documents assumed (GDP over population).
const (
	fallbackNumeratorCode   = "NY.GDP.MKTP.CD"
	fallbackDenominatorCode = "SP.POP.TOTL"
)

// SelectColumn is one aliased expression of a SELECT projection.
type SelectColumn struct {
	Expr  string
	Alias string
}

// columnSet is the synthesized projection for one SELECT body.
type columnSet struct {
	columns  []SelectColumn
	groupBy  []string // PIVOT only: target column names, unsorted
	warnings []string
}

// transformationOf strips the upstream "DEFAULT: " convention and reports
// whether the column should take the unmapped default path (no explicit
// expression and no usable source column).
func transformationOf(c mapping.ColumnMapping) (transformation string, unmapped bool) {
	t := strings.TrimSpace(strings.TrimPrefix(c.Transformation, mapping.DefaultPrefix))
	src := c.SourceColumn
	if src == mapping.Generated && t == "" {
		src = mapping.Unmapped
	}
	return t, src == mapping.Unmapped || src == ""
}

// firstQuoted returns the first single-quoted substring of s.
func firstQuoted(s string) (string, bool) {
	i := strings.IndexByte(s, '\'')
	if i == -1 {
		return "", false
	}
	j := strings.IndexByte(s[i+1:], '\'')
	if j == -1 {
		return "", false
	}
	return s[i+1 : i+1+j], true
}

// projectionColumns synthesizes the DIRECT/UNION projection.
//
// defaultLiteral is the string literal used for unmapped non-timestamp
// columns: 'Default' for DIRECT, the per-source origin for UNION branches so
// each branch independently encodes its provenance.
func projectionColumns(m mapping.TableMapping, defaultLiteral string) columnSet {
	var set columnSet
	for _, c := range m.ColumnMappings {
		t, unmapped := transformationOf(c)

		var expr string
		switch {
		case t != "" && strings.Contains(t, "WHERE"):
			// An embedded filter marks an indicator-code constant: the value
			// this branch contributes is the quoted code itself.
			if code, ok := firstQuoted(t); ok {
				expr = "'" + code + "'"
			} else {
				expr = t
				set.warnings = append(set.warnings, fmt.Sprintf(
					"transformation for %s contains WHERE but no quoted literal; used verbatim", c.TargetColumn))
			}
		case t != "":
			expr = t
		case unmapped:
			expr = unmappedDefault(c.TargetColumn, defaultLiteral)
		default:
			expr = c.SourceColumn
		}

		set.columns = append(set.columns, SelectColumn{Expr: expr, Alias: c.TargetColumn})
	}
	return set
}

// unmappedDefault picks the naming-convention default for an unmapped column:
// timestamp-looking names get CURRENT_TIMESTAMP(), everything else a fixed
// string literal. Not type-aware.
func unmappedDefault(targetColumn, defaultLiteral string) string {
	if strings.Contains(targetColumn, "at") || strings.Contains(targetColumn, "date") {
		return "CURRENT_TIMESTAMP()"
	}
	return "'" + defaultLiteral + "'"
}

// pivotColumns synthesizes the PIVOT projection and grouping set.
func pivotColumns(m mapping.TableMapping) columnSet {
	var set columnSet
	for _, c := range m.ColumnMappings {
		t, unmapped := transformationOf(c)

		var expr string
		switch {
		case t != "" && strings.Contains(t, "WHERE"):
			code, ok := firstQuoted(t)
			if !ok {
				expr = t
				set.warnings = append(set.warnings, fmt.Sprintf(
					"transformation for %s contains WHERE but no quoted literal; used verbatim", c.TargetColumn))
				break
			}
			expr = fmt.Sprintf("MAX(IF(indicator_code = '%s', numeric_value, NULL))", code)
		case unmapped:
			num, den := fallbackNumeratorCode, fallbackDenominatorCode
			if dm := c.DerivedMetric; dm != nil && dm.NumeratorCode != "" && dm.DenominatorCode != "" {
				num, den = dm.NumeratorCode, dm.DenominatorCode
			} else {
				set.warnings = append(set.warnings, fmt.Sprintf(
					"derived column %s has no derived_metric; using fallback indicator codes %s/%s",
					c.TargetColumn, num, den))
			}
			expr = fmt.Sprintf(
				"SAFE_DIVIDE(MAX(IF(indicator_code = '%s', numeric_value, NULL)), MAX(IF(indicator_code = '%s', numeric_value, NULL)))",
				num, den)
		default:
			// Plain columns are the pivot grain.
			set.groupBy = append(set.groupBy, c.TargetColumn)
			expr = c.SourceColumn
		}

		set.columns = append(set.columns, SelectColumn{Expr: expr, Alias: c.TargetColumn})
	}
	return set
}
