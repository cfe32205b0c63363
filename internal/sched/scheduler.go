// Package sched implements a work-stealing scheduler for fork-join fibers.
package sched

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Scheduler runs a graph of fibers on a fixed pool of workers.
// A Scheduler is single-use: create one per Launch.
type Scheduler struct {
	workers []*worker

	idle     atomic.Int64
	launched atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
}

// Stats summarizes a finished run.
type Stats struct {
	Workers  int   // Pool size
	Idle     int   // Workers counted idle
	Pending  int   // Fibers left in deques
	Executed int64 // Stolen or popped fibers run to completion
	Steals   int64 // Successful steals
	Forks    int64 // Child fibers created
	Resumes  int64 // Parked fibers resumed
}

// New creates a scheduler with the given number of workers.
func New(workers int) (*Scheduler, error) {
	if workers < 1 {
		return nil, ErrInvalidWorkers
	}
	s := &Scheduler{
		workers: make([]*worker, workers),
		stop:    make(chan struct{}),
	}
	for i := range s.workers {
		s.workers[i] = newWorker(i, s)
	}
	return s, nil
}

// Launch runs root on the pool and blocks until every worker is idle with
// nothing queued, or until a fiber faults. The first fault is returned.
func (s *Scheduler) Launch(root func(*Fiber)) error {
	if root == nil {
		return ErrNilTask
	}
	if !s.launched.CompareAndSwap(false, true) {
		return ErrRelaunched
	}

	s.workers[0].deque.push(s.newFiber(root, nil, "root"))

	var g errgroup.Group
	for _, w := range s.workers {
		g.Go(w.loop)
	}
	return g.Wait()
}

// Launch creates a scheduler with the given number of workers and runs root on it.
func Launch(workers int, root func(*Fiber)) (Stats, error) {
	s, err := New(workers)
	if err != nil {
		return Stats{}, err
	}
	err = s.Launch(root)
	return s.Stats(), err
}

// Workers returns the pool size.
func (s *Scheduler) Workers() int {
	return len(s.workers)
}

// Stats returns counters aggregated over all workers.
func (s *Scheduler) Stats() Stats {
	st := Stats{
		Workers: len(s.workers),
		Idle:    int(s.idle.Load()),
	}
	for _, w := range s.workers {
		st.Pending += w.deque.size()
		st.Executed += w.stats.executed.Load()
		st.Steals += w.stats.steals.Load()
		st.Forks += w.stats.forks.Load()
		st.Resumes += w.stats.resumes.Load()
	}
	return st
}

// halt stops every worker and abandons parked fibers.
func (s *Scheduler) halt() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Scheduler) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// drained is the verification pass of termination detection.
func (s *Scheduler) drained() bool {
	for _, w := range s.workers {
		if w.deque.size() != 0 {
			return false
		}
	}
	return true
}
