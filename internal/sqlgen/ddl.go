package sqlgen

import (
	"fmt"
	"strings"

	"etlsql/internal/mapping"
)

// ColumnDef describes a single column of a bootstrap table definition.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the fully-qualified target table name and its ordered
// columns, derived from a table mapping for bootstrap DDL emission.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TableFromMapping derives a bootstrap table definition from a mapping.
// Column types come from target_type and default to STRING when unspecified;
// primary-key membership comes from the primary_key list. Everything is
// nullable: the generated script loads staged data as-is.
func TableFromMapping(m mapping.TableMapping) TableDef {
	pk := make(map[string]struct{}, len(m.PrimaryKey))
	for _, k := range m.PrimaryKey {
		pk[k] = struct{}{}
	}

	cols := make([]ColumnDef, 0, len(m.ColumnMappings))
	for _, c := range m.ColumnMappings {
		typ := strings.TrimSpace(c.TargetType)
		if typ == "" {
			typ = "STRING"
		}
		_, isPK := pk[c.TargetColumn]
		cols = append(cols, ColumnDef{
			Name:       c.TargetColumn,
			SQLType:    typ,
			Nullable:   true,
			PrimaryKey: isPK,
		})
	}
	return TableDef{FQN: m.TargetTable, Columns: cols}
}

// BuildCreateTable renders a CREATE TABLE IF NOT EXISTS statement for a
// bootstrap table definition.
//
// Rules:
//
//   - t.FQN must be non-empty; it is emitted backtick-quoted.
//
//   - Each column must have a non-empty Name and SQLType and is rendered as
//     <Name> <SQLType> [NOT NULL].
//
//   - Columns with PrimaryKey == true are collected into a trailing
//     PRIMARY KEY (...) NOT ENFORCED clause, the BigQuery form of a
//     declarative, unchecked key.
func BuildCreateTable(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("sqlgen: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("sqlgen: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("sqlgen: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("sqlgen: column %s missing SQLType", name)
		}

		def := name + " " + typ
		if !c.Nullable {
			def += " NOT NULL"
		}
		cols = append(cols, def)

		if c.PrimaryKey {
			pks = append(pks, name)
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s) NOT ENFORCED", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (\n  %s\n);", fqn, strings.Join(cols, ",\n  ")), nil
}
