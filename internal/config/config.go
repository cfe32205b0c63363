// Package config holds runtime settings and their environment overrides.
package config

import (
	"math"
	"strconv"
	"time"

	"github.com/xyproto/env/v2"

	"github.com/born-ml/grain/internal/affinity"
	"github.com/born-ml/grain/internal/controller"
	"github.com/born-ml/grain/internal/estimator"
)

// Environment variables read by FromEnv.
const (
	EnvWorkers    = "GRAIN_WORKERS"
	EnvMode       = "GRAIN_MODE"
	EnvTries      = "GRAIN_TRIES"
	EnvInit       = "GRAIN_INIT"
	EnvFloor      = "GRAIN_FLOOR"
	EnvCutoff     = "GRAIN_CUTOFF"
	EnvReport     = "GRAIN_REPORT"
	EnvReportPath = "GRAIN_REPORT_PATH"
)

// DefaultReportPath is where the decision log goes when reporting is on.
const DefaultReportPath = "grain-decisions.parquet"

// Config controls a grain engine.
type Config struct {
	Workers int    // Worker count (defaults to available hardware threads)
	Mode    string // Granularity mode name, see controller.ParseMode
	Tries   int    // Calibration budget per call-site
	// InitialEstimate is the seed cost per work unit, in nanoseconds. It is
	// used until a call-site has observed any work, so with Tries > 0 the
	// calibration runs replace it before it can steer a decision; it only
	// matters when Tries == 0.
	InitialEstimate float64
	OverheadFloor   time.Duration // Predicted time above which a split point forks
	Cutoff          int64         // Work threshold for the cutoff modes
	Report          bool          // Keep a decision log
	ReportPath      string        // Parquet file the CLI writes the log to
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         affinity.Available(),
		Mode:            controller.ByPrediction.String(),
		Tries:           estimator.DefaultBudget,
		InitialEstimate: estimator.DefaultSeed,
		OverheadFloor:   controller.DefaultOverheadFloor,
		Cutoff:          controller.DefaultCutoff,
		ReportPath:      DefaultReportPath,
	}
}

// FromEnv returns DefaultConfig overridden by any GRAIN_* variables set.
// Values that do not parse are reported as *ConfigError.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if env.Has(EnvWorkers) {
		raw := env.Str(EnvWorkers)
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, &ConfigError{Field: EnvWorkers, Value: raw, Err: ErrInvalidWorkers}
		}
		cfg.Workers = n
	}
	cfg.Mode = env.Str(EnvMode, cfg.Mode)
	if env.Has(EnvTries) {
		raw := env.Str(EnvTries)
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, &ConfigError{Field: EnvTries, Value: raw, Err: ErrInvalidTries}
		}
		cfg.Tries = n
	}

	if env.Has(EnvInit) {
		raw := env.Str(EnvInit)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, &ConfigError{Field: EnvInit, Value: raw, Err: ErrInvalidEstimate}
		}
		cfg.InitialEstimate = v
	}
	if env.Has(EnvFloor) {
		raw := env.Str(EnvFloor)
		d, err := parseDuration(raw)
		if err != nil {
			return cfg, &ConfigError{Field: EnvFloor, Value: raw, Err: ErrInvalidFloor}
		}
		cfg.OverheadFloor = d
	}
	if env.Has(EnvCutoff) {
		raw := env.Str(EnvCutoff)
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, &ConfigError{Field: EnvCutoff, Value: raw, Err: ErrInvalidCutoff}
		}
		cfg.Cutoff = v
	}
	if env.Has(EnvReport) {
		raw := env.Str(EnvReport)
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, &ConfigError{Field: EnvReport, Value: raw, Err: ErrInvalidReport}
		}
		cfg.Report = v
	}
	cfg.ReportPath = env.Str(EnvReportPath, cfg.ReportPath)

	return cfg, cfg.Validate()
}

// parseDuration accepts Go durations ("40us") or bare nanoseconds ("40000").
func parseDuration(raw string) (time.Duration, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(n), nil
	}
	return time.ParseDuration(raw)
}

// Validate checks every field and returns the first problem found.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return &ConfigError{Field: "Workers", Value: strconv.Itoa(c.Workers), Err: ErrInvalidWorkers}
	}
	if _, err := controller.ParseMode(c.Mode); err != nil {
		return &ConfigError{Field: "Mode", Value: c.Mode, Err: ErrUnknownMode}
	}
	if c.Tries < 0 {
		return &ConfigError{Field: "Tries", Value: strconv.Itoa(c.Tries), Err: ErrInvalidTries}
	}
	if c.InitialEstimate <= 0 || math.IsNaN(c.InitialEstimate) || math.IsInf(c.InitialEstimate, 0) {
		return &ConfigError{
			Field: "InitialEstimate",
			Value: strconv.FormatFloat(c.InitialEstimate, 'g', -1, 64),
			Err:   ErrInvalidEstimate,
		}
	}
	if c.OverheadFloor < 0 {
		return &ConfigError{Field: "OverheadFloor", Value: c.OverheadFloor.String(), Err: ErrInvalidFloor}
	}
	if c.Cutoff < 1 {
		return &ConfigError{Field: "Cutoff", Value: strconv.FormatInt(c.Cutoff, 10), Err: ErrInvalidCutoff}
	}
	if c.Report && c.ReportPath == "" {
		return &ConfigError{Field: "ReportPath", Err: ErrMissingReport}
	}
	return nil
}

// ParsedMode returns the controller mode named by Mode.
func (c Config) ParsedMode() (controller.Mode, error) {
	m, err := controller.ParseMode(c.Mode)
	if err != nil {
		return m, &ConfigError{Field: "Mode", Value: c.Mode, Err: ErrUnknownMode}
	}
	return m, nil
}
