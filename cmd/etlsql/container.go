// Run functions for the etlsql CLI: fan generation out across input
// documents, collect the results in input order, and write the scripts to
// files or stdout. The CLI depends only on the engine's pure Generate; all
// I/O stays in this layer.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"etlsql/internal/config"
	"etlsql/internal/engine"
	"etlsql/internal/fingerprint"
	"etlsql/internal/metrics"
	"etlsql/internal/report"
	"etlsql/internal/source"
)

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	openSourceFn = func(ctx context.Context, arg string, client *source.Client) (io.ReadCloser, error) {
		return source.ForArg(arg, client).Open(ctx)
	}

	generateFn = engine.Generate

	writeFileFn = os.WriteFile
)

// outcome is the per-input generation result, kept in input order so stdout
// output stays deterministic regardless of worker scheduling.
type outcome struct {
	input  string
	result engine.Result
}

// runAll generates SQL for every configured input with a bounded worker pool
// and writes the scripts out. Any fatal (malformed) document cancels the
// remaining work and is returned as the run error.
func runAll(ctx context.Context, cfg config.Run) error {
	if len(cfg.Inputs) == 0 {
		return fmt.Errorf("no inputs configured")
	}

	outcomes, err := generateAll(ctx, cfg)
	if err != nil {
		return err
	}

	for _, oc := range outcomes {
		logOutcome(cfg, oc)
		reportSummary(os.Stderr, oc.input, oc.result.Report)
	}

	if cfg.OutputDir == "" {
		for _, oc := range outcomes {
			if _, err := os.Stdout.WriteString(oc.result.SQL); err != nil {
				return fmt.Errorf("write stdout: %w", err)
			}
		}
		return nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, oc := range outcomes {
		dst := filepath.Join(cfg.OutputDir, outputName(oc.input))
		if err := writeFileFn(dst, []byte(oc.result.SQL), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dst, err)
		}
	}
	return nil
}

// validateAll parses and validates every input document without emitting SQL.
// Report findings go to stderr; the first malformed document fails the run.
func validateAll(ctx context.Context, cfg config.Run) error {
	outcomes, err := generateAll(ctx, cfg)
	if err != nil {
		return err
	}
	for _, oc := range outcomes {
		reportSummary(os.Stderr, oc.input, oc.result.Report)
	}
	return nil
}

// generateAll runs the engine across all inputs with errgroup-bounded
// concurrency. The engine is pure and lock-free; this pool is the only
// concurrency in the program.
func generateAll(ctx context.Context, cfg config.Run) ([]outcome, error) {
	client := source.NewClient(httpConfig(cfg))
	opts := engine.Options{
		Idempotent:      cfg.Idempotent,
		StrictParse:     cfg.StrictParse,
		EmitDDL:         cfg.EmitDDL,
		FoldIdentifiers: cfg.FoldIdentifiers,
	}

	outcomes := make([]outcome, len(cfg.Inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(cfg))

	for i, input := range cfg.Inputs {
		i, input := i, input // capture range variables
		g.Go(func() error {
			start := time.Now()
			res, err := generateOne(ctx, input, client, opts)
			metrics.RecordDocument(jobName(cfg), err, time.Since(start))
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			recordResultMetrics(jobName(cfg), res)
			outcomes[i] = outcome{input: input, result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// generateOne reads one document and runs the engine over it.
func generateOne(ctx context.Context, input string, client *source.Client, opts engine.Options) (engine.Result, error) {
	rc, err := openSourceFn(ctx, input, client)
	if err != nil {
		return engine.Result{}, err
	}
	defer rc.Close()

	text, err := io.ReadAll(rc)
	if err != nil {
		return engine.Result{}, fmt.Errorf("read document: %w", err)
	}

	return generateFn(string(text), opts)
}

// recordResultMetrics emits the per-run counters for one generated document.
func recordResultMetrics(job string, res engine.Result) {
	byStrategy := map[string]int64{}
	for _, st := range res.Statements {
		byStrategy[string(st.Strategy)]++
	}
	for strategy, n := range byStrategy {
		metrics.RecordStatements(job, strategy, n)
	}
	if res.Report.Repaired {
		metrics.RecordRepair(job)
	}
	metrics.RecordMissingSources(job, int64(len(res.Report.MissingSources)))
}

// logOutcome writes the one-line summary for a generated document.
func logOutcome(cfg config.Run, oc outcome) {
	s := oc.result.Report.Summarize()
	log.Printf("generate: job=%s doc=%s statements=%d fingerprint=%s errors=%d warnings=%d repaired=%v",
		jobName(cfg), oc.input, len(oc.result.Statements),
		fingerprint.Hex(oc.result.Fingerprint), s.Errors, s.Warnings, s.Repaired)
}

// reportSummary prints the structured findings for one document to w.
func reportSummary(w io.Writer, input string, rep report.Report) {
	for _, iss := range rep.Issues {
		fmt.Fprintf(w, "%s: %s\n", input, iss.Error())
	}
	if len(rep.MissingSources) > 0 {
		fmt.Fprintf(w, "%s: %d target(s) without a source table: %s\n",
			input, len(rep.MissingSources), strings.Join(rep.MissingSources, ", "))
	}
	if len(rep.SkippedTargets) > 0 {
		fmt.Fprintf(w, "%s: %d target(s) outside the dim_/fact_/agg_ tiers: %s\n",
			input, len(rep.SkippedTargets), strings.Join(rep.SkippedTargets, ", "))
	}
}

// workerCount resolves the pool size: env override, then config, then one
// worker per input (12-factor style, matching the rest of the tooling).
func workerCount(cfg config.Run) int {
	n := getenvInt("ETLSQL_WORKERS", cfg.Runtime.Workers)
	if n <= 0 {
		n = len(cfg.Inputs)
	}
	if n < 1 {
		n = 1
	}
	return n
}

// httpConfig maps the free-form http options onto the source client config.
func httpConfig(cfg config.Run) source.Config {
	return source.Config{
		Timeout:            time.Duration(cfg.HTTP.Int("timeout_seconds", 0)) * time.Second,
		MaxRetries:         cfg.HTTP.Int("max_retries", 3),
		InsecureSkipVerify: cfg.HTTP.Bool("insecure_skip_verify", false),
	}
}

// outputName derives the .sql file name for an input argument: the base name
// with its extension swapped, "stdin.sql" for "-", and the URL path base for
// http(s) inputs.
func outputName(input string) string {
	if input == "-" {
		return "stdin.sql"
	}
	name := input
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		if u, err := url.Parse(input); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
			name = path.Base(u.Path)
		}
	} else {
		name = filepath.Base(input)
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." {
		name = "mapping"
	}
	return name + ".sql"
}

// getenvInt reads an integer environment variable with a default.
func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
