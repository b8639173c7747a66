package config

import (
	"encoding/json"
	"reflect"
	"testing"
)

// -----------------------------------------------------------------------------
// Run decoding tests
// -----------------------------------------------------------------------------
//
// These tests validate that the top-level Run JSON structure decodes into the
// intended Go struct graph. The goal is to ensure the JSON schema used in run
// files (configs/*.json) maps cleanly to the Go types. We prefer parsing from
// JSON strings here to keep tests hermetic and focused on the API surface
// rather than filesystem wiring.

func TestRun_DecodeRoundTrip(t *testing.T) {
	t.Parallel()

	const js = `{
	  "job": "worldbank_load",
	  "inputs": ["mappings/worldbank.json", "-"],
	  "output_dir": "out",
	  "idempotent": true,
	  "strict_parse": false,
	  "emit_ddl": true,
	  "fold_identifiers": true,
	  "metrics": {
	    "backend": "pushgateway",
	    "options": { "url": "http://localhost:9091" }
	  },
	  "http": { "timeout_seconds": 30, "max_retries": 3, "insecure_skip_verify": false },
	  "runtime": { "workers": 4 }
	}`

	var r Run
	if err := json.Unmarshal([]byte(js), &r); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	if r.Job != "worldbank_load" {
		t.Errorf("Job = %q, want %q", r.Job, "worldbank_load")
	}
	if want := []string{"mappings/worldbank.json", "-"}; !reflect.DeepEqual(r.Inputs, want) {
		t.Errorf("Inputs = %v, want %v", r.Inputs, want)
	}
	if r.OutputDir != "out" {
		t.Errorf("OutputDir = %q, want %q", r.OutputDir, "out")
	}
	if !r.Idempotent || !r.EmitDDL || !r.FoldIdentifiers || r.StrictParse {
		t.Errorf("flags = idempotent:%v strict:%v ddl:%v fold:%v",
			r.Idempotent, r.StrictParse, r.EmitDDL, r.FoldIdentifiers)
	}
	if r.Metrics.Backend != "pushgateway" {
		t.Errorf("Metrics.Backend = %q, want %q", r.Metrics.Backend, "pushgateway")
	}
	if got := r.Metrics.Options.String("url", ""); got != "http://localhost:9091" {
		t.Errorf("Metrics.Options url = %q", got)
	}
	if got := r.HTTP.Int("timeout_seconds", 0); got != 30 {
		t.Errorf("HTTP timeout_seconds = %d, want 30", got)
	}
	if r.Runtime.Workers != 4 {
		t.Errorf("Runtime.Workers = %d, want 4", r.Runtime.Workers)
	}
}

func TestRun_DecodeMinimal(t *testing.T) {
	t.Parallel()

	var r Run
	if err := json.Unmarshal([]byte(`{"inputs": ["m.json"]}`), &r); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	// Absent options objects decode to non-nil empty maps; call sites must not
	// need nil checks.
	if r.Metrics.Options == nil {
		t.Error("Metrics.Options is nil for absent options")
	}
	if r.HTTP == nil {
		t.Error("HTTP is nil for absent http block")
	}
	if r.Runtime.Workers != 0 {
		t.Errorf("Runtime.Workers = %d, want 0", r.Runtime.Workers)
	}
}

// -----------------------------------------------------------------------------
// Options helper tests
// -----------------------------------------------------------------------------

func TestOptions_TypedAccessors(t *testing.T) {
	t.Parallel()

	o := Options{
		"url":     "http://localhost:9091",
		"verbose": true,
		"retries": float64(3), // encoding/json decodes numbers as float64
		"tags":    []any{"env:dev", "team:etl", 42},
	}

	if got := o.String("url", "x"); got != "http://localhost:9091" {
		t.Errorf("String(url) = %q", got)
	}
	if got := o.String("missing", "fallback"); got != "fallback" {
		t.Errorf("String(missing) = %q, want fallback", got)
	}
	if got := o.String("verbose", "fallback"); got != "fallback" {
		t.Errorf("String(verbose) = %q, want fallback for non-string", got)
	}

	if got := o.Bool("verbose", false); !got {
		t.Error("Bool(verbose) = false")
	}
	if got := o.Bool("url", true); !got {
		t.Error("Bool(url) should fall back for non-bool")
	}

	if got := o.Int("retries", 0); got != 3 {
		t.Errorf("Int(retries) = %d, want 3", got)
	}
	if got := o.Int("missing", 7); got != 7 {
		t.Errorf("Int(missing) = %d, want 7", got)
	}

	// Non-string array members are dropped, not coerced.
	if got := o.StringSlice("tags"); !reflect.DeepEqual(got, []string{"env:dev", "team:etl"}) {
		t.Errorf("StringSlice(tags) = %v", got)
	}
	if got := o.StringSlice("missing"); got != nil {
		t.Errorf("StringSlice(missing) = %v, want nil", got)
	}
}

func TestOptions_UnmarshalNull(t *testing.T) {
	t.Parallel()

	var o Options
	if err := json.Unmarshal([]byte(`null`), &o); err != nil {
		t.Fatalf("json.Unmarshal(null) error = %v", err)
	}
	if o == nil {
		t.Error("Options is nil after decoding null")
	}
}
