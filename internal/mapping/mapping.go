// Package mapping defines the JSON mapping-document contract produced by the
// upstream schema mapper and consumed by the SQL generation engine.
//
// Field names in Go mirror the JSON structure of the mapping documents. The
// package follows the same position as the run configuration: no third-party
// decoding libraries, encoding/json does the work, and the document is an
// immutable input for one generation run.
package mapping

// Sentinel values used by the upstream producer inside mapping documents.
const (
	// NoMatchingSourceTables marks a target table whose source could not be
	// resolved; such mappings render a commented placeholder statement.
	NoMatchingSourceTables = "NO_MATCHING_SOURCE_TABLES"

	// Unmapped marks a target column with no source column; a
	// naming-convention default is synthesized for it.
	Unmapped = "UNMAPPED"

	// Generated marks a target column whose value is produced by an
	// expression rather than read from a source column.
	Generated = "GENERATED"
)

// DefaultPrefix is the convention the upstream producer uses to tag generated
// default expressions inside the transformation field, e.g.
// "DEFAULT: CURRENT_TIMESTAMP()". The prefix is stripped before synthesis.
const DefaultPrefix = "DEFAULT: "

// Document is the top-level mapping document for one generation run.
type Document struct {
	// Metadata is echoed into the script header and the report; the engine
	// never interprets it.
	Metadata Metadata `json:"metadata"`

	// Mappings lists one entry per target table, in producer order.
	Mappings []TableMapping `json:"mappings"`
}

// Metadata carries upstream provenance for the document.
type Metadata struct {
	SourceDataset string `json:"source_dataset"`
	TargetDataset string `json:"target_dataset"`
	GeneratedAt   string `json:"generated_at"`
	Confidence    string `json:"confidence"`
	Mode          string `json:"mode"`
}

// TableMapping describes how one target table is populated.
type TableMapping struct {
	// SourceTable is a single qualified name, a comma-joined list of names,
	// or the NoMatchingSourceTables sentinel.
	SourceTable string `json:"source_table"`

	// TargetTable is the fully qualified target table name.
	TargetTable string `json:"target_table"`

	// MatchConfidence is the producer's confidence in this table match.
	MatchConfidence float64 `json:"match_confidence"`

	// ColumnMappings lists the per-column correspondence in projection order.
	ColumnMappings []ColumnMapping `json:"column_mappings"`

	// UnmappedSourceColumns and UnmappedTargetColumns are informational
	// leftovers from the upstream match; they are surfaced, never rendered.
	UnmappedSourceColumns []string `json:"unmapped_source_columns"`
	UnmappedTargetColumns []string `json:"unmapped_target_columns"`

	// MappingErrors carries preflight findings from the producer. They are
	// reported before the mapping renders.
	MappingErrors []MappingError `json:"mapping_errors"`

	// ValidationRules are carried through to the report and never executed.
	ValidationRules []ValidationRule `json:"validation_rules"`

	// PrimaryKey lists the key columns used by the idempotent MERGE variant.
	PrimaryKey []string `json:"primary_key"`

	// UniquenessConstraints are informational, like ValidationRules.
	UniquenessConstraints []string `json:"uniqueness_constraints"`

	// Strategy optionally forces the materialization strategy for this
	// mapping ("direct", "union", "pivot", "missing_source"). When empty or
	// unknown, the string heuristics decide.
	Strategy string `json:"strategy"`
}

// ColumnMapping describes one target column.
type ColumnMapping struct {
	// SourceColumn is a source column name, Unmapped, or Generated.
	SourceColumn string `json:"source_column"`

	// TargetColumn is the destination column name.
	TargetColumn string `json:"target_column"`

	SourceType           string `json:"source_type"`
	TargetType           string `json:"target_type"`
	TypeConversionNeeded bool   `json:"type_conversion_needed"`

	// Transformation is an explicit SQL expression for this column,
	// optionally carrying the "DEFAULT: " prefix.
	Transformation string `json:"transformation"`

	Notes string `json:"notes"`

	// DerivedMetric names the indicator codes for a derived-ratio pivot
	// column. Nil for ordinary columns.
	DerivedMetric *DerivedMetric `json:"derived_metric"`
}

// DerivedMetric holds the operand indicator codes of a ratio column such as
// gdp_per_capita (numerator: total GDP, denominator: population).
type DerivedMetric struct {
	NumeratorCode   string `json:"numerator_code"`
	DenominatorCode string `json:"denominator_code"`
}

// MappingError is a preflight finding reported by the upstream producer.
type MappingError struct {
	ErrorType    string `json:"error_type"`
	TargetColumn string `json:"target_column"`
	Severity     string `json:"severity"`
	Message      string `json:"message"`
}

// ValidationRule is an upstream data-quality rule. The engine surfaces rules
// in the report; executing them is a collaborator concern.
type ValidationRule struct {
	Column string `json:"column"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
