package tasks

import (
	"sync"
	"time"
)

// Status is the shared record of run outcomes the ops API reads. The
// scheduler never runs two cycles at once, so writers don't race each
// other; the mutex covers concurrent API reads.
type Status struct {
	mu        sync.RWMutex
	runs      int
	lastRunAt time.Time
	lastError string
}

func NewStatus() *Status {
	return &Status{}
}

func (s *Status) RecordRun(finishedAt time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++
	s.lastRunAt = finishedAt
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
}

// Snapshot returns run count, last run time, and last error message.
func (s *Status) Snapshot() (int, time.Time, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs, s.lastRunAt, s.lastError
}
