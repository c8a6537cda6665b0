// Package progresstest provides a manually driven progress.Scheduler for tests.
package progresstest

import (
	"sync"
	"time"
)

type task struct {
	fn        func()
	d         time.Duration
	cancelled bool
}

// Scheduler records tasks and fires them only when asked to.
type Scheduler struct {
	mu      sync.Mutex
	repeats []*task
	timers  []*task
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Every(interval time.Duration, fn func()) func() {
	return s.add(&s.repeats, interval, fn)
}

func (s *Scheduler) After(delay time.Duration, fn func()) func() {
	return s.add(&s.timers, delay, fn)
}

func (s *Scheduler) add(list *[]*task, d time.Duration, fn func()) func() {
	t := &task{fn: fn, d: d}

	s.mu.Lock()
	*list = append(*list, t)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		t.cancelled = true
		s.mu.Unlock()
	}
}

// Tick fires every live repeating task once and returns how many fired.
func (s *Scheduler) Tick() int {
	live := s.live(&s.repeats, false)
	for _, t := range live {
		t.fn()
	}
	return len(live)
}

// FireTimers fires every pending one-shot task and returns how many fired.
func (s *Scheduler) FireTimers() int {
	live := s.live(&s.timers, true)
	for _, t := range live {
		t.fn()
	}
	return len(live)
}

// ActiveRepeats returns the number of repeating tasks that were not cancelled.
func (s *Scheduler) ActiveRepeats() int {
	return len(s.live(&s.repeats, false))
}

// PendingTimers returns the number of one-shot tasks that were neither fired nor cancelled.
func (s *Scheduler) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// LastDelay returns the duration of the most recently scheduled one-shot task.
func (s *Scheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.timers) == 0 {
		return 0
	}
	return s.timers[len(s.timers)-1].d
}

func (s *Scheduler) live(list *[]*task, consume bool) []*task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var live []*task
	kept := (*list)[:0]
	for _, t := range *list {
		if t.cancelled {
			continue
		}
		live = append(live, t)
		if !consume {
			kept = append(kept, t)
		}
	}
	*list = kept

	return live
}
