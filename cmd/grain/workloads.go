package main

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/born-ml/grain/engine"
	"github.com/born-ml/grain/parallel"
)

// params are the workload knobs shared by every benchmark.
type params struct {
	N    int    // Problem size
	M    int    // Inner iterations (synthetic)
	P    int    // Spin units per inner iteration (synthetic)
	Algo string // synthetic variant: parallel_for or recursive
}

// workload builds a Program around a result that Output prints to w.
type workload func(e *engine.Engine, p params, w io.Writer) (engine.Program, error)

var workloads = map[string]workload{
	"fib":       fibWorkload,
	"squares":   squaresWorkload,
	"synthetic": syntheticWorkload,
}

func fibWorkload(e *engine.Engine, p params, w io.Writer) (engine.Program, error) {
	if p.N < 0 {
		return engine.Program{}, fmt.Errorf("fib: n must not be negative, got %d", p.N)
	}
	c := e.NewController("fib")
	var result int64

	var fib func(f *parallel.Fiber, n int) int64
	fib = func(f *parallel.Fiber, n int) int64 {
		if n < 2 {
			return int64(n)
		}
		var a, b int64
		// Work is the fib number itself; its growth tracks the call count.
		parallel.Fork2(f, c, fibWork(n),
			func(f *parallel.Fiber) { a = fib(f, n-1) },
			func(f *parallel.Fiber) { b = fib(f, n-2) },
		)
		return a + b
	}

	return engine.Program{
		Run:    func(f *parallel.Fiber) { result = fib(f, p.N) },
		Output: func() { fmt.Fprintf(w, "result %d\n", result) },
	}, nil
}

// fibWork approximates the number of calls fib(n) makes.
func fibWork(n int) int64 {
	a, b := int64(0), int64(1)
	for i := 0; i < n && b < 1<<40; i++ {
		a, b = b, a+b
	}
	return b
}

func squaresWorkload(e *engine.Engine, p params, w io.Writer) (engine.Program, error) {
	if p.N < 0 {
		return engine.Program{}, fmt.Errorf("squares: n must not be negative, got %d", p.N)
	}
	fill := e.NewController("squares_fill")
	sum := e.NewController("squares_sum")
	var in []int64
	var result int64

	return engine.Program{
		Init: func(f *parallel.Fiber) {
			in = make([]int64, p.N)
			parallel.For(f, fill, 0, p.N, func(_ *parallel.Fiber, i int) {
				in[i] = int64(i)
			})
		},
		Run: func(f *parallel.Fiber) {
			result = parallel.Sum(f, sum, 0, p.N, func(i int) int64 { return in[i] * in[i] })
		},
		Output:   func() { fmt.Fprintf(w, "result %d\n", result) },
		Teardown: func() { in = nil },
	}, nil
}

func syntheticWorkload(e *engine.Engine, p params, w io.Writer) (engine.Program, error) {
	if p.N < 0 || p.M < 0 || p.P < 0 {
		return engine.Program{}, fmt.Errorf("synthetic: n, m and p must not be negative")
	}
	outer := e.NewController("synthetic_outer")
	inner := e.NewController("synthetic_inner")
	var total atomic.Int64

	// spin burns p units and returns a value the compiler cannot drop.
	spin := func(seed int) int64 {
		x := int64(seed)
		for k := 0; k < p.P; k++ {
			x = x*6364136223846793005 + 1442695040888963407
		}
		return x&1 | 1
	}

	var run func(f *parallel.Fiber)
	switch p.Algo {
	case "", "parallel_for":
		run = func(f *parallel.Fiber) {
			parallel.For(f, outer, 0, p.N, func(f *parallel.Fiber, i int) {
				var local int64
				parallel.For(f, inner, 0, p.M, func(_ *parallel.Fiber, j int) {
					atomic.AddInt64(&local, spin(i*p.M+j))
				})
				total.Add(local)
			})
		}
	case "recursive":
		var rec func(f *parallel.Fiber, lo, hi int, c *parallel.Controller, leaf func(*parallel.Fiber, int))
		rec = func(f *parallel.Fiber, lo, hi int, c *parallel.Controller, leaf func(*parallel.Fiber, int)) {
			switch hi - lo {
			case 0:
				return
			case 1:
				leaf(f, lo)
				return
			}
			mid := lo + (hi-lo)/2
			parallel.Fork2(f, c, int64(hi-lo),
				func(f *parallel.Fiber) { rec(f, lo, mid, c, leaf) },
				func(f *parallel.Fiber) { rec(f, mid, hi, c, leaf) },
			)
		}
		run = func(f *parallel.Fiber) {
			rec(f, 0, p.N, outer, func(f *parallel.Fiber, i int) {
				rec(f, 0, p.M, inner, func(_ *parallel.Fiber, j int) {
					total.Add(spin(i*p.M + j))
				})
			})
		}
	default:
		return engine.Program{}, fmt.Errorf("synthetic: unknown algo %q", p.Algo)
	}

	return engine.Program{
		Init:   func(*parallel.Fiber) { total.Store(0) },
		Run:    run,
		Output: func() { fmt.Fprintf(w, "result %d\n", total.Load()) },
	}, nil
}
