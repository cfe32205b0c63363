// Package report keeps the decision log of a run and exports it as Parquet,
// Arrow IPC and a JSON summary.
package report

import (
	"sync"

	"github.com/google/uuid"

	"github.com/born-ml/grain/internal/controller"
)

// Log collects controller decision records. It is safe for concurrent use
// and implements controller.Recorder.
type Log struct {
	mu      sync.Mutex
	runID   uuid.UUID
	records []controller.Record
}

// NewLog creates an empty log for the given run.
func NewLog(runID uuid.UUID) *Log {
	return &Log{runID: runID}
}

// RunID returns the run the log belongs to.
func (l *Log) RunID() uuid.UUID {
	return l.runID
}

// Record appends r.
func (l *Log) Record(r controller.Record) {
	l.mu.Lock()
	l.records = append(l.records, r)
	l.mu.Unlock()
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Records returns a copy of the records in arrival order.
func (l *Log) Records() []controller.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]controller.Record, len(l.records))
	copy(out, l.records)
	return out
}

// Rows converts the records to their flat export form.
func (l *Log) Rows() []Row {
	recs := l.Records()
	rows := make([]Row, len(recs))
	run := l.runID.String()
	for i, r := range recs {
		rows[i] = Row{
			RunID:    run,
			TimeNs:   r.Time.UnixNano(),
			Site:     r.Site,
			SiteID:   r.SiteID,
			Work:     r.Work,
			Parallel: r.Parallel,
			Elapsed:  int64(r.Elapsed),
			Samples:  r.Samples,
		}
	}
	return rows
}

// Row is one decision record in export form.
type Row struct {
	RunID    string `parquet:"run_id" json:"run_id"`
	TimeNs   int64  `parquet:"time_ns" json:"time_ns"`
	Site     string `parquet:"site" json:"site"`
	SiteID   uint64 `parquet:"site_id" json:"site_id"`
	Work     int64  `parquet:"work" json:"work"`
	Parallel bool   `parquet:"parallel" json:"parallel"`
	Elapsed  int64  `parquet:"elapsed_ns" json:"elapsed_ns"`
	Samples  int64  `parquet:"samples" json:"samples"`
}
