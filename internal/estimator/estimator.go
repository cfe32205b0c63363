// Package estimator keeps a per-call-site linear cost model, time ≈ constant × work,
// learned online from sequential executions.
package estimator

import (
	"math"
	"sync/atomic"
	"time"
)

// DefaultBudget is the number of calibration samples taken before the model is trusted.
const DefaultBudget = 10

// DefaultSeed is the initial cost-per-unit guess, in nanoseconds.
const DefaultSeed = 1.0

// Estimator accumulates (work, elapsed) pairs for one call-site.
//
// All fields are updated with atomic adds. Concurrent reporters may interleave,
// which can leave the work and time totals briefly out of step; the resulting
// estimate is stale, never torn.
type Estimator struct {
	name string

	seed   atomic.Uint64 // float64 bits, ns per unit
	budget atomic.Int64

	samples atomic.Int64
	work    atomic.Int64
	nanos   atomic.Int64
}

// Snapshot is a point-in-time copy of an estimator.
type Snapshot struct {
	Name        string
	Samples     int64
	Work        int64
	Elapsed     time.Duration
	Budget      int64
	CostPerUnit float64 // ns per work unit
}

// New creates an estimator seeded with DefaultSeed and DefaultBudget.
func New(name string) *Estimator {
	e := &Estimator{name: name}
	e.Initialize(DefaultSeed, DefaultBudget)
	return e
}

// Name returns the call-site name.
func (e *Estimator) Name() string {
	return e.name
}

// Initialize discards every observation and reseeds the model.
// A negative budget is treated as zero.
func (e *Estimator) Initialize(seed float64, budget int) {
	if seed < 0 || math.IsNaN(seed) || math.IsInf(seed, 0) {
		seed = DefaultSeed
	}
	e.seed.Store(math.Float64bits(seed))
	e.budget.Store(int64(max(budget, 0)))
	e.samples.Store(0)
	e.work.Store(0)
	e.nanos.Store(0)
}

// Report records one sequential execution of work units that took elapsed.
func (e *Estimator) Report(work int64, elapsed time.Duration) {
	if work <= 0 {
		return
	}
	if elapsed < 0 {
		elapsed = 0
	}
	e.work.Add(work)
	e.nanos.Add(int64(elapsed))
	e.samples.Add(1)
}

// Samples returns the number of reported executions.
func (e *Estimator) Samples() int64 {
	return e.samples.Load()
}

// Budget returns the calibration budget.
func (e *Estimator) Budget() int64 {
	return e.budget.Load()
}

// Calibrated reports whether enough samples were observed to trust the model.
func (e *Estimator) Calibrated() bool {
	return e.samples.Load() >= e.budget.Load()
}

// CostPerUnit returns the estimated nanoseconds per work unit.
func (e *Estimator) CostPerUnit() float64 {
	w := e.work.Load()
	if w <= 0 {
		return math.Float64frombits(e.seed.Load())
	}
	return float64(e.nanos.Load()) / float64(w)
}

// Predict returns the expected sequential execution time of work units.
func (e *Estimator) Predict(work int64) time.Duration {
	if work <= 0 {
		return 0
	}
	ns := e.CostPerUnit() * float64(work)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// Snapshot returns the current state.
func (e *Estimator) Snapshot() Snapshot {
	return Snapshot{
		Name:        e.name,
		Samples:     e.samples.Load(),
		Work:        e.work.Load(),
		Elapsed:     time.Duration(e.nanos.Load()),
		Budget:      e.budget.Load(),
		CostPerUnit: e.CostPerUnit(),
	}
}
