// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package parallel provides fork-join primitives whose split points consult a
// Controller before forking.
//
// # Overview
//
// Every primitive takes the current Fiber and the Controller of its call-site:
//   - Fork2 / ForkN: run bodies, in parallel when the work is worth it
//   - For / ForBatch: recursive bisection of an index range
//   - Reduce / Sum: parallel reduction over an index range
//
// A nil Fiber runs everything inline, so the primitives may also be used
// outside a launched program.
//
// # Basic Usage
//
//	fib := e.NewController("fib")
//	var run func(f *parallel.Fiber, n int) int
//	run = func(f *parallel.Fiber, n int) int {
//	    if n < 2 {
//	        return n
//	    }
//	    var a, b int
//	    parallel.Fork2(f, fib, int64(n),
//	        func(f *parallel.Fiber) { a = run(f, n-1) },
//	        func(f *parallel.Fiber) { b = run(f, n-2) },
//	    )
//	    return a + b
//	}
package parallel
