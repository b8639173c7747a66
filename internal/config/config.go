// Package config defines the canonical, JSON-serializable configuration model
// for the SQL generation CLI. It is intentionally small, explicit, and
// dependency-free so that run files can be loaded from disk and passed through
// the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in run files
//     under configs/*.json.
//  3. Minimalism: No third-party config libraries; decoding is performed by the
//     standard library, with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "job": "worldbank_load",
//	  "inputs": ["mappings/worldbank.json"],
//	  "output_dir": "out",
//	  "idempotent": true,
//	  "emit_ddl": true,
//	  "metrics": { "backend": "pushgateway", "options": { "url": "http://localhost:9091" } },
//	  "runtime": { "workers": 4 }
//	}
package config

import "encoding/json"

// Run describes one invocation of the generator in JSON. It is the top-level
// object decoded from a run file; CLI flags override individual fields.
type Run struct {
	// Job names the run for metrics labeling and log lines.
	Job string `json:"job"`

	// Inputs lists mapping documents to generate from: file paths, "-" for
	// stdin, or http(s) URLs.
	Inputs []string `json:"inputs"`

	// OutputDir is where generated scripts are written, one .sql file per
	// input. Empty means stdout.
	OutputDir string `json:"output_dir"`

	// Idempotent selects MERGE statements instead of plain INSERTs.
	Idempotent bool `json:"idempotent"`

	// StrictParse disables the bounded JSON repair pass.
	StrictParse bool `json:"strict_parse"`

	// EmitDDL prepends bootstrap CREATE TABLE IF NOT EXISTS statements.
	EmitDDL bool `json:"emit_ddl"`

	// FoldIdentifiers rewrites non-ASCII column identifiers to folded ASCII.
	FoldIdentifiers bool `json:"fold_identifiers"`

	// Metrics selects and configures the metrics backend.
	Metrics Metrics `json:"metrics"`

	// HTTP configures the client used for URL inputs. Recognized keys:
	//   timeout_seconds (int), max_retries (int), insecure_skip_verify (bool)
	HTTP Options `json:"http"`

	Runtime RuntimeConfig `json:"runtime"`
}

// RuntimeConfig controls generation concurrency across input documents.
type RuntimeConfig struct {
	// Workers bounds the number of documents generated in parallel.
	// Zero means one worker per input.
	Workers int `json:"workers"`
}

// Metrics selects the metrics backend implementation.
type Metrics struct {
	// Backend selects the implementation: "pushgateway", "datadog", "none".
	Backend string `json:"backend"`

	// Options is a free-form map interpreted by the backend. For
	// pushgateway: url (string). For datadog: addr (string),
	// namespace (string), tags (array of strings).
	Options Options `json:"options"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
//
// Options is used for backend-specific configuration where the shape varies
// by implementation.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null options
// object in JSON decodes to a non-nil, empty Options map. This simplifies call
// sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
