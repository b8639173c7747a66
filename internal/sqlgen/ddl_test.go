package sqlgen

import (
	"strconv"
	"strings"
	"testing"

	"etlsql/internal/mapping"
)

// TestBuildCreateTable verifies that BuildCreateTable generates the expected
// CREATE TABLE statements and surfaces appropriate errors for invalid inputs.
// It uses table-driven subtests to make individual scenarios easy to read and
// extend.
func TestBuildCreateTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		wantSQL     string
		wantErr     bool
		errContains string
	}{
		{
			name: "empty FQN returns error",
			def: TableDef{
				FQN:     "",
				Columns: []ColumnDef{{Name: "country_key", SQLType: "STRING"}},
			},
			wantErr:     true,
			errContains: "table FQN must not be empty",
		},
		{
			name: "no columns returns error",
			def: TableDef{
				FQN:     "target.dim_country",
				Columns: nil,
			},
			wantErr:     true,
			errContains: "at least one column is required",
		},
		{
			name: "column with empty name returns error",
			def: TableDef{
				FQN: "target.dim_country",
				Columns: []ColumnDef{
					{Name: "", SQLType: "STRING"},
				},
			},
			wantErr:     true,
			errContains: "column with empty name",
		},
		{
			name: "column with empty type returns error",
			def: TableDef{
				FQN: "target.dim_country",
				Columns: []ColumnDef{
					{Name: "country_key", SQLType: ""},
				},
			},
			wantErr:     true,
			errContains: "missing SQLType",
		},
		{
			name: "single nullable column",
			def: TableDef{
				FQN: "target.dim_country",
				Columns: []ColumnDef{
					{Name: "country_key", SQLType: "STRING", Nullable: true},
				},
			},
			wantSQL: "CREATE TABLE IF NOT EXISTS `target.dim_country` (\n  country_key STRING\n);",
		},
		{
			name: "non-nullable column",
			def: TableDef{
				FQN: "target.dim_country",
				Columns: []ColumnDef{
					{Name: "country_key", SQLType: "STRING", Nullable: false},
				},
			},
			wantSQL: "CREATE TABLE IF NOT EXISTS `target.dim_country` (\n  country_key STRING NOT NULL\n);",
		},
		{
			name: "primary key clause is unenforced",
			def: TableDef{
				FQN: "target.dim_country",
				Columns: []ColumnDef{
					{Name: "country_key", SQLType: "STRING", Nullable: true, PrimaryKey: true},
					{Name: "country_name", SQLType: "STRING", Nullable: true},
				},
			},
			wantSQL: "CREATE TABLE IF NOT EXISTS `target.dim_country` (\n  country_key STRING,\n  country_name STRING,\n  PRIMARY KEY (country_key) NOT ENFORCED\n);",
		},
		{
			name: "composite primary key preserves column order",
			def: TableDef{
				FQN: "target.fact_economy",
				Columns: []ColumnDef{
					{Name: "country_key", SQLType: "STRING", Nullable: true, PrimaryKey: true},
					{Name: "year_key", SQLType: "INT64", Nullable: true, PrimaryKey: true},
					{Name: "gdp_usd", SQLType: "NUMERIC", Nullable: true},
				},
			},
			wantSQL: "CREATE TABLE IF NOT EXISTS `target.fact_economy` (\n  country_key STRING,\n  year_key INT64,\n  gdp_usd NUMERIC,\n  PRIMARY KEY (country_key, year_key) NOT ENFORCED\n);",
		},
		{
			name: "whitespace around names and types is trimmed",
			def: TableDef{
				FQN: "  target.dim_country  ",
				Columns: []ColumnDef{
					{Name: "  country_key  ", SQLType: "  STRING  ", Nullable: true},
				},
			},
			wantSQL: "CREATE TABLE IF NOT EXISTS `target.dim_country` (\n  country_key STRING\n);",
		},
	}

	for _, tt := range tests {
		tt := tt // capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotSQL, err := BuildCreateTable(tt.def)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("BuildCreateTable() error = nil, want non-nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("BuildCreateTable() error = %q, want substring %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("BuildCreateTable() unexpected error = %v", err)
			}
			if gotSQL != tt.wantSQL {
				t.Fatalf("BuildCreateTable() =\n%s\nwant:\n%s", gotSQL, tt.wantSQL)
			}
		})
	}
}

func TestTableFromMapping(t *testing.T) {
	t.Parallel()

	m := mapping.TableMapping{
		TargetTable: "target.dim_country",
		PrimaryKey:  []string{"country_key"},
		ColumnMappings: []mapping.ColumnMapping{
			{SourceColumn: "country_code", TargetColumn: "country_key", TargetType: "STRING"},
			{SourceColumn: "population", TargetColumn: "population", TargetType: "INT64"},
			{SourceColumn: mapping.Unmapped, TargetColumn: "region_name"},
		},
	}

	def := TableFromMapping(m)

	if def.FQN != "target.dim_country" {
		t.Errorf("TableFromMapping() FQN = %q, want %q", def.FQN, "target.dim_country")
	}
	if len(def.Columns) != 3 {
		t.Fatalf("TableFromMapping() columns = %d, want 3", len(def.Columns))
	}
	if !def.Columns[0].PrimaryKey {
		t.Error("TableFromMapping() country_key not marked as primary key")
	}
	if def.Columns[1].PrimaryKey {
		t.Error("TableFromMapping() population wrongly marked as primary key")
	}
	// Unspecified target_type defaults to STRING for bootstrap purposes.
	if got := def.Columns[2].SQLType; got != "STRING" {
		t.Errorf("TableFromMapping() default type = %q, want STRING", got)
	}
	for i, c := range def.Columns {
		if !c.Nullable {
			t.Errorf("TableFromMapping() column %d not nullable; bootstrap DDL loads staged data as-is", i)
		}
	}
}

// benchmarkSink is a package-level variable used to prevent the compiler from
// optimizing away results in benchmarks.
var benchmarkSink string

// BenchmarkBuildCreateTable_SmallSchema measures BuildCreateTable for a small
// dimension-style table definition with a few columns.
func BenchmarkBuildCreateTable_SmallSchema(b *testing.B) {
	def := TableDef{
		FQN: "target.dim_country",
		Columns: []ColumnDef{
			{Name: "country_key", SQLType: "STRING", Nullable: false, PrimaryKey: true},
			{Name: "country_name", SQLType: "STRING", Nullable: true},
			{Name: "loaded_at", SQLType: "TIMESTAMP", Nullable: true},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sql, err := BuildCreateTable(def)
		if err != nil {
			b.Fatalf("BuildCreateTable() error = %v", err)
		}
		benchmarkSink = sql
	}
}

// BenchmarkBuildCreateTable_LargeSchema measures BuildCreateTable for a wide
// fact-style table definition with many columns.
func BenchmarkBuildCreateTable_LargeSchema(b *testing.B) {
	cols := make([]ColumnDef, 0, 64)
	for i := 0; i < 64; i++ {
		cols = append(cols, ColumnDef{
			Name:     "metric_" + strconv.Itoa(i),
			SQLType:  "NUMERIC",
			Nullable: true,
		})
	}
	def := TableDef{FQN: "target.fact_wide", Columns: cols}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sql, err := BuildCreateTable(def)
		if err != nil {
			b.Fatalf("BuildCreateTable() error = %v", err)
		}
		benchmarkSink = sql
	}
}
