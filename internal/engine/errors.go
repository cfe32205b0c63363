package engine

import "errors"

// Common errors.
var (
	ErrRunning     = errors.New("engine is running a program")
	ErrNilProgram  = errors.New("program has no Run phase")
	ErrInvalidMode = errors.New("invalid granularity mode")
)
