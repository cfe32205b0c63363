// Package main provides the grain benchmark driver.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/born-ml/grain/engine"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("grain %s\n", version)
		return
	}
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "grain: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("grain", flag.ContinueOnError)
	fs.SetOutput(stderr)

	bench := fs.String("bench", "fib", "Workload: "+strings.Join(workloadNames(), ", "))
	n := fs.Int("n", 30, "Problem size")
	m := fs.Int("m", 1000, "Inner iterations (synthetic)")
	p := fs.Int("p", 100, "Spin units per inner iteration (synthetic)")
	algo := fs.String("algo", "parallel_for", "Synthetic variant: parallel_for or recursive")
	mode := fs.String("mode", "", "Granularity mode (overrides GRAIN_MODE)")
	workers := fs.Int("workers", 0, "Worker count (overrides GRAIN_WORKERS, 0 = keep)")
	reportPath := fs.String("report", "", "Write the decision log as Parquet to this file")
	arrowPath := fs.String("arrow", "", "Write the decision log as an Arrow IPC stream to this file")
	summaryPath := fs.String("summary", "", "Write the run summary as JSON to this file (- for stdout)")
	verbose := fs.Bool("v", false, "Log phase timings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := engine.ConfigFromEnv()
	if err != nil {
		return err
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	var parquetPath string
	if cfg.Report {
		parquetPath = cfg.ReportPath
	}
	if *reportPath != "" {
		parquetPath = *reportPath
		cfg.Report, cfg.ReportPath = true, *reportPath
	}
	if *arrowPath != "" {
		cfg.Report = true
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	e, err := engine.New(cfg, engine.WithLogger(logger))
	if err != nil {
		return err
	}

	build, ok := workloads[*bench]
	if !ok {
		return fmt.Errorf("unknown bench %q (want one of %s)", *bench, strings.Join(workloadNames(), ", "))
	}
	prog, err := build(e, params{N: *n, M: *m, P: *p, Algo: *algo}, stdout)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Using %s mode on %d workers\n", e.Mode(), cfg.Workers)
	launchErr := e.Launch(context.Background(), prog)

	// Reports are written even for a failed run.
	errs := []error{launchErr}
	if parquetPath != "" {
		errs = append(errs, writeParquet(e, parquetPath))
	}
	if *arrowPath != "" {
		errs = append(errs, writeArrow(e, *arrowPath))
	}
	if *summaryPath != "" {
		errs = append(errs, writeSummary(e, *summaryPath, stdout))
	}
	return errors.Join(errs...)
}

func workloadNames() []string {
	names := make([]string, 0, len(workloads))
	for name := range workloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeParquet(e *engine.Engine, path string) error {
	if err := e.Log().WriteParquetFile(path); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

func writeArrow(e *engine.Engine, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("arrow: %w", err)
	}
	if err := e.Log().WriteArrow(f, nil); err != nil {
		_ = f.Close()
		return fmt.Errorf("arrow: %w", err)
	}
	return f.Close()
}

func writeSummary(e *engine.Engine, path string, stdout io.Writer) error {
	s := e.Summary()
	if path == "-" {
		return s.WriteJSON(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	if err := s.WriteJSON(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("summary: %w", err)
	}
	return f.Close()
}
