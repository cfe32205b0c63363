package report

import (
	"io"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/born-ml/grain/internal/estimator"
	"github.com/born-ml/grain/internal/sched"
)

// Summary describes one finished run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Mode     string        `json:"mode"`
	Workers  int           `json:"workers"`
	Started  time.Time     `json:"started"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Err      string        `json:"error,omitempty"`
	Stats    sched.Stats   `json:"stats"`
	Sites    []Site        `json:"sites"`
	Recorded int           `json:"recorded"`
}

// Site aggregates one call-site's estimator state and logged decisions.
type Site struct {
	Name        string  `json:"name"`
	Samples     int64   `json:"samples"`
	Budget      int64   `json:"budget"`
	CostPerUnit float64 `json:"cost_per_unit_ns"`
	Sequential  int     `json:"sequential"`
	Parallel    int     `json:"parallel"`
}

// Sites merges estimator snapshots with the decisions in log, sorted by name.
// log may be nil.
func Sites(snaps []estimator.Snapshot, log *Log) []Site {
	byName := make(map[string]*Site, len(snaps))
	for _, s := range snaps {
		byName[s.Name] = &Site{
			Name:        s.Name,
			Samples:     s.Samples,
			Budget:      s.Budget,
			CostPerUnit: s.CostPerUnit,
		}
	}
	if log != nil {
		for _, r := range log.Records() {
			site, ok := byName[r.Site]
			if !ok {
				site = &Site{Name: r.Site}
				byName[r.Site] = site
			}
			if r.Parallel {
				site.Parallel++
			} else {
				site.Sequential++
			}
		}
	}

	out := make([]Site, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WriteJSON writes s as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ReadSummary decodes a summary written by WriteJSON.
func ReadSummary(r io.Reader) (*Summary, error) {
	var s Summary
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
