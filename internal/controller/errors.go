package controller

import "errors"

// Common errors.
var (
	ErrUnknownMode = errors.New("unknown execution mode")
)
