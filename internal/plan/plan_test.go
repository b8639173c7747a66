package plan

import (
	"reflect"
	"testing"

	"etlsql/internal/mapping"
)

func TestTierOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		want   Tier
	}{
		{"dimension", "target.dim_country", TierDim},
		{"fact", "target.fact_economy", TierFact},
		{"aggregate", "target.agg_economy_yearly", TierAgg},
		{"no prefix", "target.countries", TierNone},
		{"prefix only on dataset segment", "dim_warehouse.countries", TierNone},
		{"bare table name", "dim_country", TierDim},
		{"empty", "", TierNone},
	}

	for _, tt := range tests {
		tt := tt // capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TierOf(tt.target); got != tt.want {
				t.Errorf("TierOf(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestOrder(t *testing.T) {
	t.Parallel()

	byTarget := func(targets ...string) []mapping.TableMapping {
		ms := make([]mapping.TableMapping, len(targets))
		for i, tgt := range targets {
			ms[i] = mapping.TableMapping{TargetTable: tgt}
		}
		return ms
	}

	in := byTarget(
		"target.agg_economy_yearly",
		"target.fact_economy",
		"target.dim_country",
		"target.notes",
		"target.dim_indicator",
		"target.fact_population",
	)

	ordered, skipped := Order(in)

	gotOrder := make([]string, len(ordered))
	for i, m := range ordered {
		gotOrder[i] = m.TargetTable
	}
	wantOrder := []string{
		"target.dim_country",
		"target.dim_indicator",
		"target.fact_economy",
		"target.fact_population",
		"target.agg_economy_yearly",
	}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("Order() ordered = %v, want %v", gotOrder, wantOrder)
	}

	wantSkipped := []string{"target.notes"}
	if !reflect.DeepEqual(skipped, wantSkipped) {
		t.Errorf("Order() skipped = %v, want %v", skipped, wantSkipped)
	}
}

// TestOrder_StableWithinTier checks that document order survives inside each
// bucket; generation must be deterministic for identical input.
func TestOrder_StableWithinTier(t *testing.T) {
	t.Parallel()

	in := []mapping.TableMapping{
		{TargetTable: "target.dim_b"},
		{TargetTable: "target.dim_a"},
		{TargetTable: "target.dim_c"},
	}
	ordered, _ := Order(in)
	for i, m := range ordered {
		if m.TargetTable != in[i].TargetTable {
			t.Fatalf("Order() reordered within tier: got %q at %d, want %q",
				m.TargetTable, i, in[i].TargetTable)
		}
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    mapping.TableMapping
		want Strategy
	}{
		{
			name: "single source defaults to direct",
			m:    mapping.TableMapping{SourceTable: "staging.countries", TargetTable: "target.dim_country"},
			want: Direct,
		},
		{
			name: "comma source list selects union",
			m:    mapping.TableMapping{SourceTable: "staging.gdp, staging.population", TargetTable: "target.dim_source"},
			want: Union,
		},
		{
			name: "aggregate target selects pivot",
			m:    mapping.TableMapping{SourceTable: "staging.indicators", TargetTable: "target.agg_economy_yearly"},
			want: Pivot,
		},
		{
			name: "sentinel selects missing source",
			m:    mapping.TableMapping{SourceTable: mapping.NoMatchingSourceTables, TargetTable: "target.dim_region"},
			want: MissingSource,
		},
		{
			name: "explicit strategy overrides heuristics",
			m:    mapping.TableMapping{SourceTable: "staging.a, staging.b", TargetTable: "target.dim_x", Strategy: "pivot"},
			want: Pivot,
		},
		{
			name: "explicit strategy is case-insensitive",
			m:    mapping.TableMapping{SourceTable: "staging.a", TargetTable: "target.dim_x", Strategy: "UNION"},
			want: Union,
		},
		{
			name: "unknown explicit strategy falls back to heuristics",
			m:    mapping.TableMapping{SourceTable: "staging.a, staging.b", TargetTable: "target.dim_x", Strategy: "snapshot"},
			want: Union,
		},
		{
			name: "sentinel beats comma heuristic ordering",
			m:    mapping.TableMapping{SourceTable: mapping.NoMatchingSourceTables, TargetTable: "target.agg_x"},
			want: MissingSource,
		},
	}

	for _, tt := range tests {
		tt := tt // capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, reason := Select(tt.m)
			if got != tt.want {
				t.Errorf("Select() = %v (%s), want %v", got, reason, tt.want)
			}
			if reason == "" {
				t.Error("Select() returned an empty reason")
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	if s, ok := ParseStrategy(" Missing_Source "); !ok || s != MissingSource {
		t.Errorf("ParseStrategy(%q) = %v, %v; want %v, true", " Missing_Source ", s, ok, MissingSource)
	}
	if _, ok := ParseStrategy("merge"); ok {
		t.Error("ParseStrategy(\"merge\") accepted an unknown strategy")
	}
	if _, ok := ParseStrategy(""); ok {
		t.Error("ParseStrategy(\"\") accepted an empty strategy")
	}
}
