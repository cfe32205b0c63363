// Package controller decides, at every fork point, whether offered work is large
// enough to amortize a fork/join or should run sequentially.
package controller

import (
	"time"

	"github.com/zeebo/xxh3"

	"github.com/born-ml/grain/internal/estimator"
)

// Default tuning values.
const (
	DefaultCutoff        = 2048
	DefaultOverheadFloor = 25 * time.Microsecond
)

// Decision is the outcome of Controller.Decide.
type Decision uint8

// Decisions.
const (
	// Sequential runs the work in the calling fiber. Nested fork points inside
	// the run execute inline without consulting any controller.
	Sequential Decision = iota
	// Calibrate runs the work sequentially and times it to train the estimator.
	// Like Sequential, nested fork points run inline, so every sample is a
	// purely sequential execution.
	Calibrate
	// Parallel forks the work.
	Parallel
)

func (d Decision) String() string {
	switch d {
	case Sequential:
		return "sequential"
	case Calibrate:
		return "calibrate"
	case Parallel:
		return "parallel"
	}
	return "unknown"
}

// Controller owns the estimator of one call-site.
type Controller struct {
	name   string
	id     uint64
	est    *estimator.Estimator
	modes  ModeSource
	cutoff int64
	floor  time.Duration
	rec    Recorder
}

// Option configures a Controller.
type Option func(*Controller)

// WithCutoff sets the work threshold of the cutoff modes.
func WithCutoff(n int64) Option {
	return func(c *Controller) {
		if n > 0 {
			c.cutoff = n
		}
	}
}

// WithOverheadFloor sets the predicted sequential time below which by-prediction
// mode does not fork.
func WithOverheadFloor(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.floor = d
		}
	}
}

// WithCalibration seeds the estimator. The seed only drives decisions while
// no work has been observed, which in by-prediction mode means a budget of 0.
func WithCalibration(seed float64, budget int) Option {
	return func(c *Controller) {
		c.est.Initialize(seed, budget)
	}
}

// WithRecorder attaches a decision log.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.rec = r
	}
}

// New creates a controller named after its call-site.
// A nil source means ByPrediction.
func New(name string, src ModeSource, opts ...Option) *Controller {
	if src == nil {
		src = Fixed(ByPrediction)
	}
	c := &Controller{
		name:   name,
		id:     xxh3.HashString(name),
		est:    estimator.New(name),
		modes:  src,
		cutoff: DefaultCutoff,
		floor:  DefaultOverheadFloor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the call-site name.
func (c *Controller) Name() string { return c.name }

// SiteID returns the hashed call-site name.
func (c *Controller) SiteID() uint64 { return c.id }

// Cutoff returns the cutoff threshold.
func (c *Controller) Cutoff() int64 { return c.cutoff }

// OverheadFloor returns the by-prediction fork threshold.
func (c *Controller) OverheadFloor() time.Duration { return c.floor }

// Mode returns the mode currently in force.
func (c *Controller) Mode() Mode { return c.modes.Mode() }

// Estimator exposes the cost model.
func (c *Controller) Estimator() *estimator.Estimator { return c.est }

// Initialize reseeds the estimator with a cost-per-unit guess (ns) and a calibration budget.
func (c *Controller) Initialize(seed float64, budget int) {
	c.est.Initialize(seed, budget)
}

// Decide chooses how to execute work units.
func (c *Controller) Decide(work int64) Decision {
	if work <= 1 {
		return Sequential
	}
	switch c.modes.Mode() {
	case ForceParallel:
		return Parallel
	case CutoffWithReporting, CutoffWithoutReporting:
		if work > c.cutoff {
			return Parallel
		}
		return Sequential
	case ByPrediction:
		if !c.est.Calibrated() {
			return Calibrate
		}
		if c.est.Predict(work) > c.floor {
			return Parallel
		}
		return Sequential
	default:
		return Sequential
	}
}

// Run executes fn as the sequential outcome d of a decision on work units.
// The run is timed when calibrating or when the mode is a reporting mode.
func (c *Controller) Run(work int64, d Decision, fn func()) {
	mode := c.modes.Mode()
	if d != Calibrate && !mode.Reporting() {
		fn()
		return
	}
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	c.est.Report(work, elapsed)
	if c.rec != nil && mode.Reporting() {
		c.rec.Record(c.record(start, work, false, elapsed))
	}
}

// Forked logs a parallel decision whose fork-join started at start.
// Parallel runs never calibrate the estimator.
func (c *Controller) Forked(work int64, start time.Time) {
	if c.rec == nil || !c.modes.Mode().Reporting() {
		return
	}
	c.rec.Record(c.record(start, work, true, time.Since(start)))
}

// Recording reports whether Forked would log anything; callers use it to skip
// reading the clock.
func (c *Controller) Recording() bool {
	return c.rec != nil && c.modes.Mode().Reporting()
}

func (c *Controller) record(at time.Time, work int64, parallel bool, elapsed time.Duration) Record {
	return Record{
		Time:     at,
		Site:     c.name,
		SiteID:   c.id,
		Work:     work,
		Parallel: parallel,
		Elapsed:  elapsed,
		Samples:  c.est.Samples(),
	}
}
