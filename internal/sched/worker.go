package sched

import (
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"
)

// Backoff tiers for an idle worker, in sweeps.
const (
	spinSweeps  = 4
	yieldSweeps = 16
	minSleep    = 20 * time.Microsecond
	maxSleep    = 500 * time.Microsecond
)

type workerStats struct {
	executed atomic.Int64
	steals   atomic.Int64
	forks    atomic.Int64
	resumes  atomic.Int64
}

// worker owns one deque and runs fibers from it, stealing when it runs dry.
type worker struct {
	id    int
	s     *Scheduler
	deque *deque
	rng   *rand.Rand
	stats workerStats
}

func newWorker(id int, s *Scheduler) *worker {
	return &worker{
		id:    id,
		s:     s,
		deque: newDeque(),
		rng:   rand.New(rand.NewPCG(uint64(id)+1, uint64(time.Now().UnixNano()))),
	}
}

// loop runs until termination or a fault.
func (w *worker) loop() error {
	for {
		f := w.deque.pop()
		if f == nil {
			w.s.idle.Add(1)
			if f = w.hunt(); f == nil {
				return nil
			}
		}
		if fault := w.execute(f); fault != nil {
			w.s.halt()
			return fault
		}
		if w.s.stopped() {
			return nil
		}
	}
}

// hunt looks for work on other deques. The caller is counted idle on entry; a
// returned fiber has already been accounted as non-idle. nil means stop.
func (w *worker) hunt() *Fiber {
	s := w.s
	n := len(s.workers)
	for sweep := 0; ; sweep++ {
		if s.stopped() {
			return nil
		}
		if int(s.idle.Load()) == n && s.drained() {
			s.halt()
			return nil
		}
		start := w.rng.IntN(n)
		for k := 0; k < n; k++ {
			v := s.workers[(start+k)%n]
			if v == w || v.deque.size() == 0 {
				continue
			}
			// Announce before stealing so the fiber is never in flight while
			// every worker looks idle.
			s.idle.Add(-1)
			if f := v.deque.steal(); f != nil {
				w.stats.steals.Add(1)
				return f
			}
			s.idle.Add(1)
		}
		backoff(sweep)
	}
}

func backoff(sweep int) {
	switch {
	case sweep < spinSweeps:
	case sweep < yieldSweeps:
		runtime.Gosched()
	default:
		d := minSleep << min(sweep-yieldSweeps, 5)
		time.Sleep(min(d, maxSleep))
	}
}

// execute gives f control until it completes, parks or faults.
func (w *worker) execute(f *Fiber) *Fault {
	switch {
	case f.resumable:
		f.resumable = false
		w.stats.resumes.Add(1)
		select {
		case f.resume <- w:
		case <-w.s.stop:
			return nil
		}
	case f.claim():
		f.resume = make(chan *worker)
		f.yield = make(chan event)
		go f.main(w)
	default:
		// Reclaimed inline by its parent.
		return nil
	}

	ev := <-f.yield
	switch ev.kind {
	case evDone:
		w.stats.executed.Add(1)
		if j := f.join; j != nil && j.arrive() == 0 {
			w.deque.push(j.parent)
		}
	case evParked:
		f.resumable = true
		if ev.join.arrive() == 0 {
			w.deque.push(f)
		}
	case evFaulted:
		return ev.fault
	}
	return nil
}
