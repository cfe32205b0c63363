package sched

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidWorkers(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := New(n)
		assert.ErrorIs(t, err, ErrInvalidWorkers)
	}
	_, err := Launch(0, func(*Fiber) {})
	assert.ErrorIs(t, err, ErrInvalidWorkers)
}

func TestLaunch_NilAndRelaunch(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Launch(nil), ErrNilTask)

	require.NoError(t, s.Launch(func(*Fiber) {}))
	assert.ErrorIs(t, s.Launch(func(*Fiber) {}), ErrRelaunched)
}

func TestLaunch_RootRunsOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var runs atomic.Int32
			stats, err := Launch(workers, func(f *Fiber) {
				runs.Add(1)
				assert.True(t, f.Scheduled())
				assert.Equal(t, workers, f.Workers())
				assert.GreaterOrEqual(t, f.Worker(), 0)
			})
			require.NoError(t, err)
			assert.Equal(t, int32(1), runs.Load())
			assert.Equal(t, workers, stats.Idle)
			assert.Equal(t, 0, stats.Pending)
		})
	}
}

// tree forks a deterministic, irregular tree and checks join ordering at every node.
type tree struct {
	leaves     atomic.Int64
	violations atomic.Int64
	hits       []atomic.Int32
	next       atomic.Int64
}

func (tr *tree) node(f *Fiber, depth int) {
	if depth == 0 {
		id := tr.next.Add(1) - 1
		tr.hits[id].Add(1)
		tr.leaves.Add(1)
		return
	}
	fan := 2 + depth%3
	done := make([]atomic.Bool, fan)
	bodies := make([]func(*Fiber), fan)
	for i := range bodies {
		bodies[i] = func(f *Fiber) {
			tr.node(f, depth-1)
			done[i].Store(true)
		}
	}
	f.Fork("tree", bodies...)
	for i := range done {
		if !done[i].Load() {
			tr.violations.Add(1)
		}
	}
}

func leafCount(depth int) int64 {
	if depth == 0 {
		return 1
	}
	return int64(2+depth%3) * leafCount(depth-1)
}

func TestFork_JoinCorrectness(t *testing.T) {
	for _, workers := range []int{1, 3, 4} {
		for _, depth := range []int{1, 4, 7} {
			t.Run(fmt.Sprintf("workers=%d/depth=%d", workers, depth), func(t *testing.T) {
				want := leafCount(depth)
				tr := &tree{hits: make([]atomic.Int32, want)}

				stats, err := Launch(workers, func(f *Fiber) { tr.node(f, depth) })
				require.NoError(t, err)

				assert.Equal(t, want, tr.leaves.Load())
				assert.Zero(t, tr.violations.Load())
				for i := range tr.hits {
					require.Equal(t, int32(1), tr.hits[i].Load(), "leaf %d", i)
				}
				assert.Equal(t, 0, stats.Pending)
				assert.Equal(t, workers, stats.Idle)
			})
		}
	}
}

func fib(f *Fiber, n int, out *int64) {
	if n < 2 {
		*out = int64(n)
		return
	}
	var a, b int64
	f.Fork("fib",
		func(f *Fiber) { fib(f, n-1, &a) },
		func(f *Fiber) { fib(f, n-2, &b) },
	)
	*out = a + b
}

// TestLaunch_Stress forks far more fibers than workers and checks the pool
// ends drained with every worker idle.
func TestLaunch_Stress(t *testing.T) {
	const workers = 4
	var got int64
	stats, err := Launch(workers, func(f *Fiber) { fib(f, 20, &got) })
	require.NoError(t, err)

	assert.Equal(t, int64(6765), got)
	assert.Equal(t, 0, stats.Pending)
	assert.Equal(t, workers, stats.Idle)
	assert.Greater(t, stats.Forks, int64(workers))
}

func TestLaunch_RepeatedRuns(t *testing.T) {
	for i := 0; i < 20; i++ {
		var got int64
		_, err := Launch(3, func(f *Fiber) { fib(f, 12, &got) })
		require.NoError(t, err)
		require.Equal(t, int64(144), got)
	}
}

func TestLaunch_FaultInRoot(t *testing.T) {
	_, err := Launch(2, func(*Fiber) { panic("boom") })
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, "root", fault.Site)
	assert.Equal(t, "boom", fault.Value)
	assert.NotEmpty(t, fault.Stack)
	assert.Contains(t, err.Error(), "root")
}

func TestLaunch_FaultInChild(t *testing.T) {
	sentinel := errors.New("bad leaf")
	_, err := Launch(4, func(f *Fiber) {
		var spin func(f *Fiber, d int)
		spin = func(f *Fiber, d int) {
			if d == 0 {
				return
			}
			f.Fork("spin",
				func(f *Fiber) { spin(f, d-1) },
				func(f *Fiber) { spin(f, d-1) },
			)
		}
		f.Fork("parent",
			func(f *Fiber) { spin(f, 10) },
			func(f *Fiber) { panic(sentinel) },
		)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestFiber_SequentialSection(t *testing.T) {
	var nilFiber *Fiber
	assert.True(t, nilFiber.Sequential())
	assert.False(t, nilFiber.Scheduled())
	assert.Equal(t, -1, nilFiber.Worker())
	assert.Equal(t, 1, nilFiber.Workers())
	nilFiber.BeginSequential()
	nilFiber.EndSequential()

	_, err := Launch(1, func(f *Fiber) {
		assert.False(t, f.Sequential())
		f.BeginSequential()
		f.BeginSequential()
		assert.True(t, f.Sequential())
		f.EndSequential()
		assert.True(t, f.Sequential())
		f.EndSequential()
		assert.False(t, f.Sequential())
		f.EndSequential()
		assert.False(t, f.Sequential())
	})
	require.NoError(t, err)
}

func TestFork_EdgeArity(t *testing.T) {
	var mu sync.Mutex
	var order []int
	_, err := Launch(2, func(f *Fiber) {
		f.Fork("none")
		f.Fork("one", func(*Fiber) {
			mu.Lock()
			order = append(order, 1)
			mu.Unlock()
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, order)
}

func TestJoin_Underflow(t *testing.T) {
	j := newJoin(nil, 0)
	assert.Equal(t, int64(0), j.arrive())
	assert.Panics(t, func() { j.arrive() })
}

func TestAsFault_KeepsInnermost(t *testing.T) {
	inner := AsFault("x", "inner")
	assert.Same(t, inner, AsFault(inner, "outer"))
	assert.Nil(t, AsFault("x", "s").Unwrap())
}
