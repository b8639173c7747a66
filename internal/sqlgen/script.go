package sqlgen

import (
	"strings"

	"etlsql/internal/mapping"
)

// Delimiter separates statement blocks so the concatenated script stays
// human-reviewable and splittable downstream.
const Delimiter = "-- ------------------------------------------------------------------"

const header = "-- ####################################################\n" +
	"-- #          Generated ETL SQL Script                #\n" +
	"-- ####################################################"

const repairedBanner = "-- WARNING: The input JSON was malformed and has been automatically repaired.\n" +
	"-- Review the generated SQL carefully; it may rest on incomplete mapping rules."

// Script assembles the final SQL text: optional repaired-input banner, header
// banner, metadata echo, bootstrap DDL (when present), then each rendered
// statement followed by the delimiter line.
func Script(meta mapping.Metadata, repaired bool, ddl []string, stmts []Statement) string {
	var b strings.Builder

	if repaired {
		b.WriteString(repairedBanner)
		b.WriteString("\n\n")
	}
	b.WriteString(header)
	b.WriteString("\n")

	for _, line := range metadataLines(meta) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, s := range ddl {
		b.WriteString(s)
		b.WriteString("\n")
		b.WriteString(Delimiter)
		b.WriteString("\n\n")
	}
	for _, s := range stmts {
		b.WriteString(s.SQL)
		b.WriteString("\n")
		b.WriteString(Delimiter)
		b.WriteString("\n\n")
	}

	return b.String()
}

// metadataLines echoes non-empty document metadata as comment lines under the
// header. The engine never interprets these values.
func metadataLines(meta mapping.Metadata) []string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, "-- "+label+": "+value)
		}
	}
	add("source dataset", meta.SourceDataset)
	add("target dataset", meta.TargetDataset)
	add("generated at", meta.GeneratedAt)
	add("mapping confidence", meta.Confidence)
	add("mode", meta.Mode)
	return lines
}
