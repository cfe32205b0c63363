package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/grain/internal/report"
)

func TestRun_Workloads(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"fib", []string{"-bench", "fib", "-n", "20"}, "result 6765\n"},
		{"fib sequential", []string{"-bench", "fib", "-n", "15", "-mode", "sequential"}, "result 610\n"},
		{"squares", []string{"-bench", "squares", "-n", "1000"}, "result 332833500\n"},
		{"squares parallel", []string{"-bench", "squares", "-n", "1000", "-mode", "by_force_parallel"}, "result 332833500\n"},
		{"synthetic for", []string{"-bench", "synthetic", "-n", "20", "-m", "50", "-p", "10"}, "result 1000\n"},
		{"synthetic recursive", []string{"-bench", "synthetic", "-n", "20", "-m", "50", "-p", "10",
			"-algo", "recursive", "-mode", "by_cutoff_without_reporting"}, "result 1000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(append(tt.args, "-workers", "4"), &stdout, &stderr)
			require.NoError(t, err, stderr.String())
			assert.Contains(t, stdout.String(), tt.want)
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown bench", []string{"-bench", "mandelbrot"}},
		{"unknown mode", []string{"-mode", "by_guessing"}},
		{"unknown algo", []string{"-bench", "synthetic", "-algo", "spiral"}},
		{"negative size", []string{"-bench", "fib", "-n", "-3"}},
		{"bad flag", []string{"-frobnicate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(tt.args, &stdout, &stderr))
		})
	}
}

func TestRun_Reports(t *testing.T) {
	dir := t.TempDir()
	parquetPath := filepath.Join(dir, "decisions.parquet")
	arrowPath := filepath.Join(dir, "decisions.arrow")
	summaryPath := filepath.Join(dir, "summary.json")

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-bench", "squares", "-n", "5000", "-workers", "2",
		"-mode", "by_cutoff_with_reporting",
		"-report", parquetPath, "-arrow", arrowPath, "-summary", summaryPath,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	rows, err := report.ReadParquetFile(parquetPath)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)

	f, err := os.Open(arrowPath)
	require.NoError(t, err)
	defer f.Close()
	arrowRows, err := report.ReadArrow(f, nil)
	require.NoError(t, err)
	assert.Equal(t, rows, arrowRows)

	sf, err := os.Open(summaryPath)
	require.NoError(t, err)
	defer sf.Close()
	s, err := report.ReadSummary(sf)
	require.NoError(t, err)
	assert.Equal(t, "by_cutoff_with_reporting", s.Mode)
	assert.Equal(t, 2, s.Workers)
	assert.Equal(t, len(rows), s.Recorded)
}
