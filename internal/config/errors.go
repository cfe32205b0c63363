package config

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidWorkers  = errors.New("worker count must be at least 1")
	ErrUnknownMode     = errors.New("unknown granularity mode")
	ErrInvalidTries    = errors.New("calibration tries must be a non-negative integer")
	ErrInvalidReport   = errors.New("report flag must be a boolean")
	ErrInvalidEstimate = errors.New("initial estimate must be a positive number")
	ErrInvalidFloor    = errors.New("overhead floor must not be negative")
	ErrInvalidCutoff   = errors.New("cutoff must be at least 1")
	ErrMissingReport   = errors.New("report enabled without a report path")
)

// ConfigError reports which setting failed validation.
type ConfigError struct {
	Field string // Config field or environment variable
	Value string // Offending value as given
	Err   error  // One of the sentinels above
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config %s=%q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
