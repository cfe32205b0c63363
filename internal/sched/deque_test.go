package sched

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFibers(n int) []*Fiber {
	fs := make([]*Fiber, n)
	for i := range fs {
		fs[i] = &Fiber{}
	}
	return fs
}

func TestDeque_OwnerLIFO(t *testing.T) {
	d := newDeque()
	fs := makeFibers(3)
	for _, f := range fs {
		d.push(f)
	}
	assert.Equal(t, 3, d.size())
	assert.Same(t, fs[2], d.pop())
	assert.Same(t, fs[1], d.pop())
	assert.Same(t, fs[0], d.pop())
	assert.Nil(t, d.pop())
	assert.Equal(t, 0, d.size())
}

func TestDeque_StealFIFO(t *testing.T) {
	d := newDeque()
	fs := makeFibers(3)
	for _, f := range fs {
		d.push(f)
	}
	assert.Same(t, fs[0], d.steal())
	assert.Same(t, fs[1], d.steal())
	assert.Same(t, fs[2], d.pop())
	assert.Nil(t, d.steal())
	assert.Nil(t, d.pop())
}

func TestDeque_Grow(t *testing.T) {
	d := newDeque()
	n := initialRingSize*4 + 3
	fs := makeFibers(n)
	for _, f := range fs {
		d.push(f)
	}
	require.Equal(t, n, d.size())

	// Mixed ends after growth keep order.
	assert.Same(t, fs[0], d.steal())
	for i := n - 1; i >= 1; i-- {
		require.Same(t, fs[i], d.pop(), "index %d", i)
	}
	assert.Nil(t, d.pop())
}

// TestDeque_ConcurrentSteal checks that every pushed fiber is taken exactly once
// while thieves race the owner.
func TestDeque_ConcurrentSteal(t *testing.T) {
	const total = 20000
	const thieves = 4

	d := newDeque()
	fs := makeFibers(total)
	index := make(map[*Fiber]int, total)
	for i, f := range fs {
		index[f] = i
	}
	seen := make([]atomic.Int32, total)
	var taken atomic.Int64

	take := func(f *Fiber) {
		seen[index[f]].Add(1)
		taken.Add(1)
	}

	var done atomic.Bool
	var wg sync.WaitGroup
	for k := 0; k < thieves; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !done.Load() || d.size() > 0 {
				if f := d.steal(); f != nil {
					take(f)
				}
			}
		}()
	}

	for i, f := range fs {
		d.push(f)
		if i%3 == 0 {
			if g := d.pop(); g != nil {
				take(g)
			}
		}
	}
	for {
		g := d.pop()
		if g == nil {
			break
		}
		take(g)
	}
	done.Store(true)
	wg.Wait()

	assert.Equal(t, int64(total), taken.Load())
	for i := range seen {
		if seen[i].Load() != 1 {
			t.Fatalf("fiber %d taken %d times", i, seen[i].Load())
		}
	}
	assert.Equal(t, 0, d.size())
}
