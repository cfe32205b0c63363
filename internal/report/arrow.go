package report

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Schema is the Arrow schema of exported decision records.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: "run_id", Type: arrow.BinaryTypes.String},
	{Name: "time_ns", Type: arrow.PrimitiveTypes.Int64},
	{Name: "site", Type: arrow.BinaryTypes.String},
	{Name: "site_id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "work", Type: arrow.PrimitiveTypes.Int64},
	{Name: "parallel", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "elapsed_ns", Type: arrow.PrimitiveTypes.Int64},
	{Name: "samples", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// ToArrow exports the log as an Arrow record.
// The caller is responsible for calling Release() on the returned Record.
func (l *Log) ToArrow(mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	b := array.NewRecordBuilder(mem, Schema)
	defer b.Release()

	for _, r := range l.Rows() {
		b.Field(0).(*array.StringBuilder).Append(r.RunID)
		b.Field(1).(*array.Int64Builder).Append(r.TimeNs)
		b.Field(2).(*array.StringBuilder).Append(r.Site)
		b.Field(3).(*array.Uint64Builder).Append(r.SiteID)
		b.Field(4).(*array.Int64Builder).Append(r.Work)
		b.Field(5).(*array.BooleanBuilder).Append(r.Parallel)
		b.Field(6).(*array.Int64Builder).Append(r.Elapsed)
		b.Field(7).(*array.Int64Builder).Append(r.Samples)
	}
	return b.NewRecord()
}

// WriteArrow writes the log to w as an Arrow IPC stream.
func (l *Log) WriteArrow(w io.Writer, mem memory.Allocator) error {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	rec := l.ToArrow(mem)
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(Schema), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		_ = iw.Close()
		return fmt.Errorf("failed to write arrow record: %w", err)
	}
	return iw.Close()
}

// ReadArrow reads decision rows from an Arrow IPC stream written by WriteArrow.
func ReadArrow(r io.Reader, mem memory.Allocator) ([]Row, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("failed to open arrow stream: %w", err)
	}
	defer rdr.Release()

	if !rdr.Schema().Equal(Schema) {
		return nil, fmt.Errorf("unexpected arrow schema: %s", rdr.Schema())
	}

	var rows []Row
	for rdr.Next() {
		rows = append(rows, recordRows(rdr.Record())...)
	}
	if err := rdr.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read arrow stream: %w", err)
	}
	return rows, nil
}

func recordRows(rec arrow.Record) []Row {
	run := rec.Column(0).(*array.String)
	at := rec.Column(1).(*array.Int64)
	site := rec.Column(2).(*array.String)
	siteID := rec.Column(3).(*array.Uint64)
	work := rec.Column(4).(*array.Int64)
	par := rec.Column(5).(*array.Boolean)
	elapsed := rec.Column(6).(*array.Int64)
	samples := rec.Column(7).(*array.Int64)

	rows := make([]Row, rec.NumRows())
	for i := range rows {
		rows[i] = Row{
			RunID:    run.Value(i),
			TimeNs:   at.Value(i),
			Site:     site.Value(i),
			SiteID:   siteID.Value(i),
			Work:     work.Value(i),
			Parallel: par.Value(i),
			Elapsed:  elapsed.Value(i),
			Samples:  samples.Value(i),
		}
	}
	return rows
}
