// Package engine is the launch entry point of grain. An Engine owns the
// process-wide granularity mode, builds controllers with the configured
// defaults and runs programs on fresh schedulers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/born-ml/grain/internal/config"
	"github.com/born-ml/grain/internal/controller"
	"github.com/born-ml/grain/internal/estimator"
	"github.com/born-ml/grain/internal/report"
	"github.com/born-ml/grain/internal/sched"
)

const tracerName = "github.com/born-ml/grain/engine"

// Program is the four phases of a launch. Run is required.
type Program struct {
	Init     func(f *sched.Fiber) // Builds inputs, on its own scheduler
	Run      func(f *sched.Fiber) // The measured computation
	Output   func()               // Called after a successful Run
	Teardown func()               // Always called
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine runs programs under one configuration.
type Engine struct {
	cfg config.Config

	// gate orders SetMode against the start of a launch.
	gate    sync.Mutex
	mode    atomic.Int32
	running atomic.Bool
	runID   uuid.UUID
	log     *report.Log
	logger  *slog.Logger

	mu          sync.Mutex
	controllers []*controller.Controller
	stats       sched.Stats
	started     time.Time
	elapsed     time.Duration
	lastErr     error
}

// New validates cfg and creates an engine.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := cfg.ParsedMode()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		runID:  uuid.New(),
		logger: slog.Default(),
	}
	e.mode.Store(int32(m))
	if cfg.Report {
		e.log = report.NewLog(e.runID)
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("run", e.runID.String())
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// RunID identifies this engine's run in logs and reports.
func (e *Engine) RunID() uuid.UUID { return e.runID }

// Mode returns the active granularity mode. Engine is a controller.ModeSource.
func (e *Engine) Mode() controller.Mode {
	return controller.Mode(e.mode.Load())
}

// SetMode changes the granularity mode. It is refused while a program runs.
func (e *Engine) SetMode(m controller.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidMode, m)
	}
	e.gate.Lock()
	defer e.gate.Unlock()
	if e.running.Load() {
		return ErrRunning
	}
	e.mode.Store(int32(m))
	return nil
}

// begin marks the engine running. It fails if a launch is already active.
func (e *Engine) begin() bool {
	e.gate.Lock()
	defer e.gate.Unlock()
	if e.running.Load() {
		return false
	}
	e.running.Store(true)
	return true
}

// Running reports whether a program is executing.
func (e *Engine) Running() bool { return e.running.Load() }

// NewController creates a controller that follows the engine's mode and uses
// the configured cutoff, overhead floor and calibration. opts are applied last.
func (e *Engine) NewController(name string, opts ...controller.Option) *controller.Controller {
	base := []controller.Option{
		controller.WithCutoff(e.cfg.Cutoff),
		controller.WithOverheadFloor(e.cfg.OverheadFloor),
		controller.WithCalibration(e.cfg.InitialEstimate, e.cfg.Tries),
	}
	if e.log != nil {
		base = append(base, controller.WithRecorder(e.log))
	}
	c := controller.New(name, e, append(base, opts...)...)

	e.mu.Lock()
	e.controllers = append(e.controllers, c)
	e.mu.Unlock()
	return c
}

// Launch executes p: Init and Run each on a fresh scheduler, Output after a
// successful Run and Teardown in every case. The first fault is returned.
func (e *Engine) Launch(ctx context.Context, p Program) (err error) {
	if p.Run == nil {
		return ErrNilProgram
	}
	if !e.begin() {
		return ErrRunning
	}
	defer e.running.Store(false)

	tr := otel.Tracer(tracerName)
	ctx, span := tr.Start(ctx, "grain.launch",
		trace.WithAttributes(
			attribute.String("grain.run_id", e.runID.String()),
			attribute.String("grain.mode", e.Mode().String()),
			attribute.Int("grain.workers", e.cfg.Workers),
		))
	started := time.Now()
	defer func() {
		e.finish(started, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if p.Teardown != nil {
		defer e.phase(ctx, "teardown", p.Teardown)
	}

	if p.Init != nil {
		if err = e.schedule(ctx, "init", p.Init); err != nil {
			return err
		}
	}
	if err = e.schedule(ctx, "run", p.Run); err != nil {
		return err
	}
	if p.Output != nil {
		e.phase(ctx, "output", p.Output)
	}
	return nil
}

// schedule runs body as the root fiber of a new scheduler.
func (e *Engine) schedule(ctx context.Context, name string, body func(*sched.Fiber)) error {
	_, span := otel.Tracer(tracerName).Start(ctx, "grain."+name)
	defer span.End()

	start := time.Now()
	stats, err := sched.Launch(e.cfg.Workers, body)
	elapsed := time.Since(start)

	e.mu.Lock()
	e.stats = stats
	e.mu.Unlock()

	span.SetAttributes(
		attribute.Int64("grain.elapsed_us", elapsed.Microseconds()),
		attribute.Int64("grain.executed", stats.Executed),
		attribute.Int64("grain.steals", stats.Steals),
		attribute.Int64("grain.forks", stats.Forks),
		attribute.Int64("grain.resumes", stats.Resumes),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error("phase failed", "phase", name, "elapsed", elapsed, "err", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	e.logger.Debug("phase done", "phase", name, "elapsed", elapsed,
		"forks", stats.Forks, "steals", stats.Steals)
	return nil
}

// phase runs a plain callback outside the scheduler.
func (e *Engine) phase(ctx context.Context, name string, fn func()) {
	_, span := otel.Tracer(tracerName).Start(ctx, "grain."+name)
	defer span.End()

	start := time.Now()
	fn()
	e.logger.Debug("phase done", "phase", name, "elapsed", time.Since(start))
}

func (e *Engine) finish(started time.Time, err error) {
	e.mu.Lock()
	e.started = started
	e.elapsed = time.Since(started)
	e.lastErr = err
	e.mu.Unlock()
}

// Stats returns the counters of the most recent scheduler.
func (e *Engine) Stats() sched.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Log returns the decision log, or nil when reporting is off.
func (e *Engine) Log() *report.Log { return e.log }

// Summary describes the most recent launch and every controller created so far.
func (e *Engine) Summary() *report.Summary {
	e.mu.Lock()
	snaps := make([]estimator.Snapshot, len(e.controllers))
	for i, c := range e.controllers {
		snaps[i] = c.Estimator().Snapshot()
	}
	s := &report.Summary{
		RunID:   e.runID.String(),
		Mode:    e.Mode().String(),
		Workers: e.cfg.Workers,
		Started: e.started,
		Elapsed: e.elapsed,
		Stats:   e.stats,
	}
	if e.lastErr != nil {
		s.Err = e.lastErr.Error()
	}
	e.mu.Unlock()

	s.Sites = report.Sites(snaps, e.log)
	if e.log != nil {
		s.Recorded = e.log.Len()
	}
	return s
}
