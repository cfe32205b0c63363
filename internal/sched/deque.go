package sched

import "sync/atomic"

const (
	cacheLineSize   = 64
	initialRingSize = 64
)

// ring is a power-of-two circular buffer indexed by absolute positions.
type ring struct {
	mask  int64
	slots []atomic.Pointer[Fiber]
}

func newRing(size int64) *ring {
	return &ring{mask: size - 1, slots: make([]atomic.Pointer[Fiber], size)}
}

func (r *ring) size() int64 { return r.mask + 1 }

func (r *ring) get(i int64) *Fiber { return r.slots[i&r.mask].Load() }

func (r *ring) put(i int64, f *Fiber) { r.slots[i&r.mask].Store(f) }

// grow copies the live range [top, bottom) into a ring twice as large.
// The old ring stays valid for thieves that already loaded it.
func (r *ring) grow(top, bottom int64) *ring {
	n := newRing(r.size() * 2)
	for i := top; i < bottom; i++ {
		n.put(i, r.get(i))
	}
	return n
}

// deque is a Chase-Lev work-stealing deque of fibers.
//
// The owner pushes and pops at the bottom (LIFO). Thieves steal at the top
// (FIFO); a CAS on top admits at most one successful steal per position.
type deque struct {
	top atomic.Int64
	_   [cacheLineSize - 8]byte

	bottom atomic.Int64
	_      [cacheLineSize - 8]byte

	buf atomic.Pointer[ring]
}

func newDeque() *deque {
	d := &deque{}
	d.buf.Store(newRing(initialRingSize))
	return d
}

// push adds f at the bottom. Owner only.
func (d *deque) push(f *Fiber) {
	b := d.bottom.Load()
	t := d.top.Load()
	r := d.buf.Load()
	if b-t >= r.size()-1 {
		r = r.grow(t, b)
		d.buf.Store(r)
	}
	r.put(b, f)
	d.bottom.Store(b + 1)
}

// pop removes the most recently pushed fiber. Owner only.
func (d *deque) pop() *Fiber {
	b := d.bottom.Load() - 1
	r := d.buf.Load()
	d.bottom.Store(b)
	t := d.top.Load()
	if t > b {
		d.bottom.Store(b + 1)
		return nil
	}
	f := r.get(b)
	if t == b {
		// Last element: race against thieves for it.
		if !d.top.CompareAndSwap(t, t+1) {
			f = nil
		}
		d.bottom.Store(b + 1)
	}
	return f
}

// steal removes the oldest fiber. Safe for concurrent use by any goroutine.
// It returns nil when the deque is empty or another thief won the race.
func (d *deque) steal() *Fiber {
	t := d.top.Load()
	b := d.bottom.Load()
	if t >= b {
		return nil
	}
	r := d.buf.Load()
	f := r.get(t)
	if !d.top.CompareAndSwap(t, t+1) {
		return nil
	}
	return f
}

// size is a racy estimate of the number of queued fibers.
func (d *deque) size() int {
	n := d.bottom.Load() - d.top.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}
