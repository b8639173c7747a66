// Package plan orders table mappings into generation tiers and selects the
// materialization strategy for each one.
//
// Tiering is a static three-bucket classification on the target table name
// prefix, not a general dependency graph: dimension tables load first, then
// fact tables, then aggregates (whose SELECT bodies read the fact output).
// The ordering is the only dependency mechanism the engine has, since it
// never executes anything.
package plan

import (
	"fmt"
	"strings"

	"etlsql/internal/mapping"
)

// Strategy determines the SELECT-body shape of a rendered statement.
type Strategy string

const (
	// Direct is a single-source 1:1 projection.
	Direct Strategy = "DIRECT"
	// Union combines several comma-listed sources with UNION ALL.
	Union Strategy = "UNION"
	// Pivot turns long-format indicator rows into wide columns via
	// conditional aggregates.
	Pivot Strategy = "PIVOT"
	// MissingSource renders a commented placeholder for a target with no
	// resolved source table.
	MissingSource Strategy = "MISSING_SOURCE"
)

// ParseStrategy maps an explicit strategy field value to a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct":
		return Direct, true
	case "union":
		return Union, true
	case "pivot":
		return Pivot, true
	case "missing_source":
		return MissingSource, true
	}
	return "", false
}

// Tier is the generation bucket of a target table.
type Tier int

const (
	// TierNone marks targets matching no known prefix; they are not rendered.
	TierNone Tier = iota
	// TierDim loads first.
	TierDim
	// TierFact loads after all dimensions.
	TierFact
	// TierAgg loads last and reads the populated fact output.
	TierAgg
)

// TierOf classifies a target table by the prefix of its final path segment.
func TierOf(targetTable string) Tier {
	name := finalSegment(targetTable)
	switch {
	case strings.HasPrefix(name, "dim_"):
		return TierDim
	case strings.HasPrefix(name, "fact_"):
		return TierFact
	case strings.HasPrefix(name, "agg_"):
		return TierAgg
	}
	return TierNone
}

// Order buckets mappings into tier order, preserving document order within a
// tier. Mappings matching no tier prefix are returned separately as skipped;
// they are not rendered but must be reported so the drop stays observable.
func Order(mappings []mapping.TableMapping) (ordered []mapping.TableMapping, skipped []string) {
	for _, tier := range []Tier{TierDim, TierFact, TierAgg} {
		for _, m := range mappings {
			if TierOf(m.TargetTable) == tier {
				ordered = append(ordered, m)
			}
		}
	}
	for _, m := range mappings {
		if TierOf(m.TargetTable) == TierNone {
			skipped = append(skipped, m.TargetTable)
		}
	}
	return ordered, skipped
}

// Select decides the strategy for one mapping and explains which rule fired.
//
// An explicit, valid strategy field wins; otherwise the string heuristics
// from the upstream contract apply, in order: missing-source sentinel,
// comma-joined source list, agg_ target name, direct.
func Select(m mapping.TableMapping) (Strategy, string) {
	if s, ok := ParseStrategy(m.Strategy); ok {
		return s, fmt.Sprintf("explicit strategy %q", m.Strategy)
	}
	if m.SourceTable == mapping.NoMatchingSourceTables {
		return MissingSource, "source_table is the no-matching-source sentinel"
	}
	if strings.Contains(m.SourceTable, ",") {
		return Union, "source_table lists multiple tables"
	}
	if strings.Contains(finalSegment(m.TargetTable), "agg_") {
		return Pivot, "target table name marks an aggregate"
	}
	return Direct, "single source, non-aggregate target"
}

func finalSegment(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i != -1 {
		return fqn[i+1:]
	}
	return fqn
}
