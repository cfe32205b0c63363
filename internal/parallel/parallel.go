// Package parallel provides the fork-join primitives: every split point asks its
// controller whether the offered work is worth forking.
package parallel

import (
	"time"

	"github.com/born-ml/grain/internal/controller"
	"github.com/born-ml/grain/internal/sched"
)

// Fiber is the execution context passed to every body.
type Fiber = sched.Fiber

// Fork2 runs left and right, in parallel if c decides work is large enough.
// Sequential execution runs left then right in the calling fiber. Either way
// Fork2 returns once both finished.
func Fork2(f *Fiber, c *controller.Controller, work int64, left, right func(*Fiber)) {
	defer guard(c)
	if f.Sequential() {
		left(f)
		right(f)
		return
	}
	d := c.Decide(work)
	if d != controller.Parallel {
		sequentially(f, c, work, d, func() {
			left(f)
			right(f)
		})
		return
	}
	fork(f, c, work, left, right)
}

// ForkN is the N-way form of Fork2. Sequential execution preserves argument order.
func ForkN(f *Fiber, c *controller.Controller, work int64, bodies ...func(*Fiber)) {
	defer guard(c)
	run := func() {
		for _, body := range bodies {
			body(f)
		}
	}
	if f.Sequential() || len(bodies) < 2 {
		run()
		return
	}
	d := c.Decide(work)
	if d != controller.Parallel {
		sequentially(f, c, work, d, run)
		return
	}
	fork(f, c, work, bodies...)
}

// For executes body(i) for i in [lo, hi), bisecting the range while c decides
// to fork. Sequential leaves iterate in increasing order.
func For(f *Fiber, c *controller.Controller, lo, hi int, body func(f *Fiber, i int)) {
	if hi <= lo {
		return
	}
	defer guard(c)
	forRange(f, c, lo, hi, body)
}

func forRange(f *Fiber, c *controller.Controller, lo, hi int, body func(*Fiber, int)) {
	loop := func() {
		for i := lo; i < hi; i++ {
			body(f, i)
		}
	}
	if f.Sequential() {
		loop()
		return
	}
	work := int64(hi - lo)
	d := c.Decide(work)
	if d != controller.Parallel {
		sequentially(f, c, work, d, loop)
		return
	}
	mid := lo + (hi-lo)/2
	fork(f, c, work,
		func(f *Fiber) { forRange(f, c, lo, mid, body) },
		func(f *Fiber) { forRange(f, c, mid, hi, body) },
	)
}

// ForBatch is optimized for the batch*channels iteration pattern.
// Common in CNN operations like Conv2D.
func ForBatch(f *Fiber, c *controller.Controller, batch, channels int, body func(f *Fiber, b, ch int)) {
	if channels <= 0 {
		return
	}
	For(f, c, 0, batch*channels, func(f *Fiber, k int) {
		body(f, k/channels, k%channels)
	})
}

// sequentially runs fn inline as the outcome d. Calibration runs are inline
// too, so every timed sample is a purely sequential execution.
func sequentially(f *Fiber, c *controller.Controller, work int64, d controller.Decision, fn func()) {
	f.BeginSequential()
	defer f.EndSequential()
	c.Run(work, d, fn)
}

func fork(f *Fiber, c *controller.Controller, work int64, bodies ...func(*Fiber)) {
	if !c.Recording() {
		f.Fork(c.Name(), bodies...)
		return
	}
	start := time.Now()
	f.Fork(c.Name(), bodies...)
	c.Forked(work, start)
}

// guard attributes a panic escaping a body to the controller's call-site.
func guard(c *controller.Controller) {
	if r := recover(); r != nil {
		panic(sched.AsFault(r, c.Name()))
	}
}
