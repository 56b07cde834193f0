package scheduler

import (
	"log"
	"sync"
	"time"
)

// Scheduler runs one-shot jobs after a delay. Jobs are process-local; on
// restart, pending publish times are re-read from Firestore and rescheduled
// at startup.
type Scheduler struct {
	timers map[string]*time.Timer
	mutex  sync.Mutex
}

func New() *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
	}
}

// Schedule runs fn after delay. Scheduling the same id again replaces the
// pending job. A zero or negative delay runs fn immediately in its own
// goroutine.
func (s *Scheduler) Schedule(id string, delay time.Duration, fn func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing, ok := s.timers[id]; ok {
		existing.Stop()
	}

	if delay <= 0 {
		delete(s.timers, id)
		go fn()
		return
	}

	s.timers[id] = time.AfterFunc(delay, func() {
		s.mutex.Lock()
		delete(s.timers, id)
		s.mutex.Unlock()

		fn()
	})
	log.Printf("Scheduled job %s in %s", id, delay)
}

// Cancel stops a pending job. Canceling an unknown id is a no-op.
func (s *Scheduler) Cancel(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
		log.Printf("Canceled job %s", id)
	}
}

// Pending returns the number of jobs waiting to fire
func (s *Scheduler) Pending() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.timers)
}

// Stop cancels everything. Used on shutdown.
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
