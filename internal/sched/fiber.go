package sched

import (
	"runtime"
	"sync/atomic"
)

type eventKind uint8

const (
	evDone eventKind = iota
	evParked
	evFaulted
)

// event is what a fiber hands back to the worker running it.
type event struct {
	kind  eventKind
	join  *join
	fault *Fault
}

// Fiber is a schedulable unit of work.
//
// A started fiber runs on its own goroutine, but only while a worker has handed
// it control; the worker waits until the fiber completes or parks at a join.
// A parked fiber holds no worker and may be resumed by any worker.
type Fiber struct {
	s    *Scheduler
	body func(*Fiber)
	join *join // parent's join, nil for the root
	site string

	claimed atomic.Bool

	// Owned by whichever goroutine currently runs the fiber.
	worker *worker
	seq    int

	// Set by the worker that received the park event, read by the worker
	// that pops the fiber again; ordered through the join counter and deque.
	resumable bool
	abandoned bool

	resume chan *worker
	yield  chan event
}

func (s *Scheduler) newFiber(body func(*Fiber), j *join, site string) *Fiber {
	return &Fiber{s: s, body: body, join: j, site: site}
}

// claim marks an unstarted fiber as taken. Exactly one caller wins.
func (f *Fiber) claim() bool {
	return f.claimed.CompareAndSwap(false, true)
}

// Site returns the call-site that created the fiber.
func (f *Fiber) Site() string {
	if f == nil {
		return ""
	}
	return f.site
}

// Scheduled reports whether f runs under a scheduler and may fork.
func (f *Fiber) Scheduled() bool {
	return f != nil
}

// Worker returns the index of the worker currently running f, or -1.
func (f *Fiber) Worker() int {
	if f == nil || f.worker == nil {
		return -1
	}
	return f.worker.id
}

// Workers returns the size of the pool running f, or 1 for a nil fiber.
func (f *Fiber) Workers() int {
	if f == nil {
		return 1
	}
	return len(f.s.workers)
}

// Sequential reports whether f is inside a sequential section. A nil fiber
// is always sequential.
func (f *Fiber) Sequential() bool {
	return f == nil || f.seq > 0
}

// BeginSequential enters a sequential section: until the matching
// EndSequential, fork points run their work inline.
func (f *Fiber) BeginSequential() {
	if f != nil {
		f.seq++
	}
}

// EndSequential leaves a sequential section.
func (f *Fiber) EndSequential() {
	if f != nil && f.seq > 0 {
		f.seq--
	}
}

// Fork runs bodies as children of f and returns once all of them completed.
//
// bodies[1:] are pushed on the current worker's deque, right-most first, so
// the owner reclaims them in order while thieves take the right-most. bodies[0]
// runs inline; afterwards every child nobody stole is claimed and run inline as
// well. If a child was stolen, f parks until the last child reports.
func (f *Fiber) Fork(site string, bodies ...func(*Fiber)) {
	switch len(bodies) {
	case 0:
		return
	case 1:
		bodies[0](f)
		return
	}

	j := newJoin(f, len(bodies))
	kids := make([]*Fiber, len(bodies)-1)
	w := f.worker
	for i := len(bodies) - 1; i >= 1; i-- {
		kid := f.s.newFiber(bodies[i], j, site)
		kids[i-1] = kid
		w.deque.push(kid)
	}
	w.stats.forks.Add(int64(len(kids)))

	bodies[0](f)
	j.arrive()

	for _, kid := range kids {
		if kid.claim() {
			kid.body(f)
			j.arrive()
		}
	}

	if j.settled() {
		j.arrive()
		return
	}
	f.park(j)
}

// park hands control back to the worker until j reaches zero.
func (f *Fiber) park(j *join) {
	f.yield <- event{kind: evParked, join: j}
	select {
	case w := <-f.resume:
		f.worker = w
	case <-f.s.stop:
		f.abandoned = true
		runtime.Goexit()
	}
}

// main is the goroutine body of a started fiber.
func (f *Fiber) main(w *worker) {
	f.worker = w
	defer func() {
		r := recover()
		if f.abandoned {
			return
		}
		if r != nil {
			f.yield <- event{kind: evFaulted, fault: AsFault(r, f.site)}
			return
		}
		f.yield <- event{kind: evDone}
	}()
	f.body(f)
}
