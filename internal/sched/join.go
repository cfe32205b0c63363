package sched

import "sync/atomic"

// join tracks the outstanding children of one fork point.
//
// pending starts at children+1. The extra unit belongs to the parent and is
// released by the parent's worker once the parent has parked, so a parent can
// never be re-enqueued before it has actually stopped running.
type join struct {
	parent  *Fiber
	pending atomic.Int64
}

func newJoin(parent *Fiber, children int) *join {
	j := &join{parent: parent}
	j.pending.Store(int64(children) + 1)
	return j
}

// arrive records one completion and returns the remaining count.
func (j *join) arrive() int64 {
	n := j.pending.Add(-1)
	if n < 0 {
		panic("sched: join counter underflow")
	}
	return n
}

// settled reports whether only the parent's own unit remains.
func (j *join) settled() bool {
	return j.pending.Load() == 1
}
