// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package parallel

import (
	"sync/atomic"

	"github.com/born-ml/grain/internal/controller"
	"github.com/born-ml/grain/internal/parallel"
	"github.com/born-ml/grain/internal/sched"
)

// Fiber is the execution context passed to every body.
type Fiber = sched.Fiber

// Fault is the error a launch returns when a body panics.
type Fault = sched.Fault

// Controller decides, per call-site, whether offered work is forked.
type Controller = controller.Controller

// Number is the element constraint of Sum.
type Number = parallel.Number

// Fork2 runs left and right, in parallel if c decides work is large enough.
func Fork2(f *Fiber, c *Controller, work int64, left, right func(*Fiber)) {
	parallel.Fork2(f, c, work, left, right)
}

// ForkN is the N-way form of Fork2.
func ForkN(f *Fiber, c *Controller, work int64, bodies ...func(*Fiber)) {
	parallel.ForkN(f, c, work, bodies...)
}

// For executes body(i) for i in [lo, hi).
func For(f *Fiber, c *Controller, lo, hi int, body func(f *Fiber, i int)) {
	parallel.For(f, c, lo, hi, body)
}

// ForBatch executes body for every (batch, channel) pair.
func ForBatch(f *Fiber, c *Controller, batch, channels int, body func(f *Fiber, b, ch int)) {
	parallel.ForBatch(f, c, batch, channels, body)
}

// Reduce combines mapFn(i) for i in [lo, hi). combine must be associative.
func Reduce[T any](f *Fiber, c *Controller, lo, hi int, identity T, mapFn func(int) T, combine func(T, T) T) T {
	return parallel.Reduce(f, c, lo, hi, identity, mapFn, combine)
}

// Sum adds fn(i) for i in [lo, hi).
func Sum[T Number](f *Fiber, c *Controller, lo, hi int, fn func(int) T) T {
	return parallel.Sum(f, c, lo, hi, fn)
}

// TrySet stores value in slots[i] if it still holds unknown and reports
// whether this caller won the claim.
func TrySet(slots []atomic.Int64, i int, unknown, value int64) bool {
	return parallel.TrySet(slots, i, unknown, value)
}
