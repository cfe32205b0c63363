// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package parallel_test

import (
	"context"
	"fmt"

	"github.com/born-ml/grain/engine"
	"github.com/born-ml/grain/parallel"
)

func ExampleSum() {
	cfg := engine.DefaultConfig()
	cfg.Workers = 2
	e, err := engine.New(cfg)
	if err != nil {
		panic(err)
	}

	squares := e.NewController("squares")
	var total int64
	err = e.Launch(context.Background(), engine.Program{
		Run: func(f *parallel.Fiber) {
			total = parallel.Sum(f, squares, 0, 1000, func(i int) int64 { return int64(i) * int64(i) })
		},
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(total)
	// Output: 332833500
}

func ExampleFork2() {
	var log []int
	parallel.Fork2(nil, nil, 2,
		func(*parallel.Fiber) { log = append(log, 1) },
		func(*parallel.Fiber) { log = append(log, 2) },
	)
	fmt.Println(log)
	// Output: [1 2]
}
