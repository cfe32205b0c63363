package parallel

import (
	"sync/atomic"

	"golang.org/x/exp/constraints"

	"github.com/born-ml/grain/internal/controller"
)

// Number is any integer or floating-point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Reduce folds mapFn(i) for i in [lo, hi) with combine, bisecting like For.
// combine must be associative; identity must be its neutral element.
// Sequential leaves fold left to right.
func Reduce[T any](f *Fiber, c *controller.Controller, lo, hi int, identity T,
	mapFn func(i int) T, combine func(a, b T) T) T {
	if hi <= lo {
		return identity
	}
	defer guard(c)
	return reduceRange(f, c, lo, hi, identity, mapFn, combine)
}

func reduceRange[T any](f *Fiber, c *controller.Controller, lo, hi int, identity T,
	mapFn func(int) T, combine func(a, b T) T) T {
	acc := identity
	loop := func() {
		for i := lo; i < hi; i++ {
			acc = combine(acc, mapFn(i))
		}
	}
	if f.Sequential() {
		loop()
		return acc
	}
	work := int64(hi - lo)
	d := c.Decide(work)
	if d != controller.Parallel {
		sequentially(f, c, work, d, loop)
		return acc
	}
	mid := lo + (hi-lo)/2
	var left, right T
	fork(f, c, work,
		func(f *Fiber) { left = reduceRange(f, c, lo, mid, identity, mapFn, combine) },
		func(f *Fiber) { right = reduceRange(f, c, mid, hi, identity, mapFn, combine) },
	)
	return combine(left, right)
}

// Sum adds fn(i) for i in [lo, hi).
func Sum[T Number](f *Fiber, c *controller.Controller, lo, hi int, fn func(i int) T) T {
	return Reduce(f, c, lo, hi, T(0), fn, func(a, b T) T { return a + b })
}

// TrySet moves slot i from unknown to value. Exactly one of any number of
// concurrent callers succeeds; the others observe false.
func TrySet(slots []atomic.Int64, i int, unknown, value int64) bool {
	if slots[i].Load() != unknown {
		return false
	}
	return slots[i].CompareAndSwap(unknown, value)
}
