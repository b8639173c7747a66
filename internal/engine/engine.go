// Package engine is the pure orchestration of the SQL generation run: it
// loads a mapping document, orders it into tiers, selects a strategy per
// mapping, renders the statements, and assembles the final script.
//
// Generate performs no I/O, holds no state, and is safe to call concurrently
// across independent documents. Everything a caller needs to decide whether
// the output is usable comes back in the Result.
package engine

import (
	"fmt"

	"etlsql/internal/fingerprint"
	"etlsql/internal/identifier"
	"etlsql/internal/mapping"
	"etlsql/internal/plan"
	"etlsql/internal/report"
	"etlsql/internal/sqlgen"
)

// Options controls one generation run.
type Options struct {
	// Idempotent renders MERGE statements instead of plain INSERTs.
	Idempotent bool

	// StrictParse disables the bounded JSON repair pass; the first parse
	// error is final.
	StrictParse bool

	// EmitDDL prepends CREATE TABLE IF NOT EXISTS statements for every
	// rendered target so a fresh dataset can be loaded end-to-end.
	EmitDDL bool

	// FoldIdentifiers rewrites non-ASCII column identifiers to their folded
	// ASCII form before rendering. Off by default; validation flags them
	// either way.
	FoldIdentifiers bool
}

// Result is the complete outcome of one generation run.
type Result struct {
	// SQL is the assembled script text.
	SQL string

	// Statements lists the rendered statements in emission order.
	Statements []sqlgen.Statement

	// Report carries all non-fatal findings.
	Report report.Report

	// Document is the decoded (and possibly repaired or folded) input, so
	// callers can reach carried-through fields such as validation_rules.
	Document mapping.Document

	// Fingerprint is the xxh3 hash of SQL, for change detection.
	Fingerprint uint64
}

// Generate converts mapping-document text into an ordered SQL script.
//
// The only fatal condition is input that cannot be parsed (even after repair,
// unless StrictParse); everything else degrades to placeholder output plus
// report findings. The error, when non-nil, wraps *mapping.MalformedError and
// no partial output is returned.
func Generate(text string, opts Options) (Result, error) {
	var (
		doc      mapping.Document
		repaired bool
		err      error
	)
	if opts.StrictParse {
		doc, err = mapping.LoadStrict(text)
	} else {
		doc, repaired, err = mapping.Load(text)
	}
	if err != nil {
		return Result{}, fmt.Errorf("engine: load document: %w", err)
	}

	var rep report.Report
	if repaired {
		rep.MarkRepaired()
	}
	rep.Issues = append(rep.Issues, mapping.Validate(doc)...)

	if opts.FoldIdentifiers {
		foldIdentifiers(&doc)
	}

	ordered, skipped := plan.Order(doc.Mappings)
	for _, target := range skipped {
		rep.AddSkippedTarget(target)
	}

	var ddl []string
	if opts.EmitDDL {
		for _, m := range ordered {
			stmt, derr := sqlgen.BuildCreateTable(sqlgen.TableFromMapping(m))
			if derr != nil {
				rep.AddWarning(m.TargetTable, "bootstrap DDL skipped: %v", derr)
				continue
			}
			ddl = append(ddl, stmt)
		}
	}

	stmts := make([]sqlgen.Statement, 0, len(ordered))
	for _, m := range ordered {
		for _, me := range m.MappingErrors {
			rep.AddWarning(m.TargetTable, "preflight: Type: %s. Message: %s", me.ErrorType, me.Message)
		}

		strat, _ := plan.Select(m)
		stmt := sqlgen.Render(m, strat, sqlgen.RenderOptions{Idempotent: opts.Idempotent})

		if strat == plan.MissingSource {
			rep.AddMissingSource(m.TargetTable)
		}
		for _, w := range stmt.Warnings {
			rep.AddWarning(m.TargetTable, "%s", w)
		}
		for _, e := range stmt.Errors {
			rep.AddError(m.TargetTable, "%s", e)
		}

		stmts = append(stmts, stmt)
	}

	sql := sqlgen.Script(doc.Metadata, repaired, ddl, stmts)

	return Result{
		SQL:         sql,
		Statements:  stmts,
		Report:      rep,
		Document:    doc,
		Fingerprint: fingerprint.SumString(sql),
	}, nil
}

// foldIdentifiers rewrites non-ASCII column names (and primary-key references
// to them) into their folded ASCII form. Table names are left alone: they are
// qualified paths owned by the upstream producer.
func foldIdentifiers(doc *mapping.Document) {
	for i := range doc.Mappings {
		m := &doc.Mappings[i]
		renamed := map[string]string{}
		for j := range m.ColumnMappings {
			c := &m.ColumnMappings[j]
			if !identifier.IsASCII(c.TargetColumn) {
				folded := identifier.Normalize(c.TargetColumn)
				renamed[c.TargetColumn] = folded
				c.TargetColumn = folded
			}
			if c.SourceColumn != mapping.Unmapped && c.SourceColumn != mapping.Generated &&
				!identifier.IsASCII(c.SourceColumn) {
				c.SourceColumn = identifier.Normalize(c.SourceColumn)
			}
		}
		for j, pk := range m.PrimaryKey {
			if folded, ok := renamed[pk]; ok {
				m.PrimaryKey[j] = folded
			}
		}
	}
}
