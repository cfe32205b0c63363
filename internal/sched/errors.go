package sched

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Common errors.
var (
	ErrInvalidWorkers = errors.New("worker count must be at least 1")
	ErrRelaunched     = errors.New("scheduler already launched")
	ErrNilTask        = errors.New("root task is nil")
)

// Fault is an unrecovered panic raised inside a fiber body.
// It is fatal to the whole run.
type Fault struct {
	Site  string // Call-site that was executing, "root" for the launched task
	Value any    // Value passed to panic
	Stack []byte // Stack of the panicking goroutine
}

// Error implements the error interface.
func (e *Fault) Error() string {
	return fmt.Sprintf("task fault at %q: %v", e.Site, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *Fault) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// AsFault converts a recovered panic value into a *Fault attributed to site.
// A value that already is a *Fault is returned unchanged, so the innermost
// call-site wins.
func AsFault(r any, site string) *Fault {
	if f, ok := r.(*Fault); ok {
		return f
	}
	return &Fault{Site: site, Value: r, Stack: debug.Stack()}
}
