package report

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// WriteParquet writes the log as a single Parquet file to w.
func (l *Log) WriteParquet(w io.Writer) error {
	pw := parquet.NewGenericWriter[Row](w, parquet.Compression(&parquet.Zstd))
	if _, err := pw.Write(l.Rows()); err != nil {
		_ = pw.Close()
		return fmt.Errorf("failed to write decision rows: %w", err)
	}
	return pw.Close()
}

// WriteParquetFile writes the log to path, replacing any existing file.
func (l *Log) WriteParquetFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := l.WriteParquet(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadParquet reads decision rows written by WriteParquet.
func ReadParquet(r io.ReaderAt, size int64) ([]Row, error) {
	rows, err := parquet.Read[Row](r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read decision rows: %w", err)
	}
	return rows, nil
}

// ReadParquetFile reads decision rows from path.
func ReadParquetFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat report: %w", err)
	}
	return ReadParquet(f, info.Size())
}
