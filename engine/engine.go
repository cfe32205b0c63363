// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package engine

import (
	"log/slog"

	"github.com/born-ml/grain/internal/config"
	"github.com/born-ml/grain/internal/controller"
	"github.com/born-ml/grain/internal/engine"
	"github.com/born-ml/grain/internal/report"
)

// Engine runs programs under one configuration.
type Engine = engine.Engine

// Program is the four phases of a launch: Init, Run, Output and Teardown.
type Program = engine.Program

// Option configures an Engine.
type Option = engine.Option

// Config controls an engine.
type Config = config.Config

// ConfigError reports which setting failed validation.
type ConfigError = config.ConfigError

// Mode selects how controllers decide between forking and running inline.
type Mode = controller.Mode

// Granularity modes.
const (
	ForceSequential        = controller.ForceSequential
	ForceParallel          = controller.ForceParallel
	CutoffWithReporting    = controller.CutoffWithReporting
	CutoffWithoutReporting = controller.CutoffWithoutReporting
	ByPrediction           = controller.ByPrediction
)

// Summary describes a finished launch.
type Summary = report.Summary

// Log is the decision log kept when reporting is on.
type Log = report.Log

// Common errors.
var (
	ErrRunning     = engine.ErrRunning
	ErrNilProgram  = engine.ErrNilProgram
	ErrInvalidMode = engine.ErrInvalidMode
)

// New validates cfg and creates an engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	return engine.New(cfg, opts...)
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return engine.WithLogger(l)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// ConfigFromEnv returns DefaultConfig overridden by GRAIN_* environment variables.
func ConfigFromEnv() (Config, error) {
	return config.FromEnv()
}

// ParseMode converts a mode name such as "by_prediction" or "parallel".
func ParseMode(name string) (Mode, error) {
	return controller.ParseMode(name)
}
