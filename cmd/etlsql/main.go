// Package main wires the SQL generation engine into a CLI. This file keeps
// the CLI layer thin: it resolves configuration (file, then flags, then
// environment), installs the metrics backend, and hands off to the run
// functions in container.go.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"etlsql/internal/config"
	"etlsql/internal/metrics"
	"etlsql/internal/metrics/datadog"
	"etlsql/internal/metrics/prompush"
)

// main is the entry point for the etlsql binary. It loads the run config,
// optionally initializes a metrics backend, and generates SQL for every input
// document.
func main() {
	var (
		cfgPath           string
		outDir            string
		jobFlg            string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		workersFlg        int
		idempotent        bool
		noRepair          bool
		emitDDL           bool
		foldIdentifiers   bool
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "run config JSON path (optional)")
	flag.StringVar(&outDir, "out", "", "directory for generated .sql files (default: stdout)")
	flag.StringVar(&jobFlg, "job", "", "job name for metrics and logs")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address for the datadog backend")
	flag.IntVar(&workersFlg, "workers", 0, "max documents generated in parallel (0 = one per input)")
	flag.BoolVar(&idempotent, "idempotent", false, "render MERGE statements instead of INSERTs")
	flag.BoolVar(&noRepair, "no-repair", false, "disable the bounded JSON repair pass")
	flag.BoolVar(&emitDDL, "emit-ddl", false, "prepend CREATE TABLE IF NOT EXISTS statements")
	flag.BoolVar(&foldIdentifiers, "fold-identifiers", false, "rewrite non-ASCII column identifiers to folded ASCII")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and input documents, emit no SQL")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	cfg, err := loadRun(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	// Flags override file values; positional args are additional inputs.
	cfg.Inputs = append(cfg.Inputs, flag.Args()...)
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if jobFlg != "" {
		cfg.Job = jobFlg
	}
	if workersFlg != 0 {
		cfg.Runtime.Workers = workersFlg
	}
	if metricsBackendFlg != "" {
		cfg.Metrics.Backend = metricsBackendFlg
	}
	if idempotent {
		cfg.Idempotent = true
	}
	if noRepair {
		cfg.StrictParse = true
	}
	if emitDDL {
		cfg.EmitDDL = true
	}
	if foldIdentifiers {
		cfg.FoldIdentifiers = true
	}

	issues := config.ValidateRun(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid")
		os.Exit(1)
	}

	initMetrics(cfg, metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if validate {
		if err := validateAll(ctx, cfg); err != nil {
			log.Printf("validation failed: %v", err)
			os.Exit(1)
		}
		log.Printf("validation ok: inputs=%d", len(cfg.Inputs))
		return
	}

	if *verbose {
		log.Printf("run: job=%s inputs=%d out=%q idempotent=%v strict=%v ddl=%v",
			jobName(cfg), len(cfg.Inputs), cfg.OutputDir, cfg.Idempotent, cfg.StrictParse, cfg.EmitDDL)
	}

	if err := runAll(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// loadRun decodes the run config file; an empty path yields a zero Run so the
// CLI works from flags and positional inputs alone.
func loadRun(path string) (config.Run, error) {
	var cfg config.Run
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// initMetrics decides the metrics backend: flag → config → env → disabled.
func initMetrics(cfg config.Run, backendFlg, pushURLFlg, dogAddrFlg string, verbose bool) {
	backendName := backendFlg
	if backendName == "" {
		backendName = cfg.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	switch backendName {
	case "pushgateway":
		gwURL := pushURLFlg
		if gwURL == "" {
			gwURL = cfg.Metrics.Options.String("url", "")
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(jobName(cfg), gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName(cfg))
		metrics.SetBackend(b)

	case "datadog":
		addr := dogAddrFlg
		if addr == "" {
			addr = cfg.Metrics.Options.String("addr", "")
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  cfg.Metrics.Options.String("namespace", ""),
			GlobalTags: cfg.Metrics.Options.StringSlice("tags"),
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: addr=%v, backend=%v, job_name=%v", addr, backendName, jobName(cfg))
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func jobName(cfg config.Run) string {
	if cfg.Job != "" {
		return cfg.Job
	}
	return "etlsql"
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
