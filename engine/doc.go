// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package engine launches fork-join programs whose granularity is chosen at
// run time by per-call-site controllers.
//
// # Overview
//
// An Engine owns the process-wide granularity mode and the configuration
// controllers are built with:
//   - ByPrediction: calibrate a cost model, then fork when the predicted time exceeds a floor
//   - CutoffWithReporting / CutoffWithoutReporting: fork above a fixed work cutoff
//   - ForceParallel / ForceSequential: ignore the cost model
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/grain/engine"
//	    "github.com/born-ml/grain/parallel"
//	)
//
//	func main() {
//	    cfg, err := engine.ConfigFromEnv()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    e, err := engine.New(cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    loop := e.NewController("squares")
//	    out := make([]int64, 1_000_000)
//	    err = e.Launch(context.Background(), engine.Program{
//	        Run: func(f *parallel.Fiber) {
//	            parallel.For(f, loop, 0, len(out), func(_ *parallel.Fiber, i int) {
//	                out[i] = int64(i) * int64(i)
//	            })
//	        },
//	    })
//	}
//
// # Configuration
//
// ConfigFromEnv reads GRAIN_WORKERS, GRAIN_MODE, GRAIN_TRIES, GRAIN_INIT,
// GRAIN_FLOOR, GRAIN_CUTOFF, GRAIN_REPORT and GRAIN_REPORT_PATH on top of
// DefaultConfig.
package engine
