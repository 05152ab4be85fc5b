package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cadieux/rostersync/internal/services/roster/domain"
)

// RetryScheduler re-runs a whole sync after a systemic failure. At most one
// retry is pending per event; a second failure while one is queued is
// absorbed into the pending attempt.
type RetryScheduler struct {
	runner *Runner
	logf   func(format string, args ...any)

	mu      sync.Mutex
	pending map[string]*time.Timer

	// afterFunc is swapped out in tests.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewRetryScheduler builds a retry scheduler driving the given runner.
func NewRetryScheduler(runner *Runner) *RetryScheduler {
	return &RetryScheduler{
		runner:    runner,
		logf:      log.Printf,
		pending:   make(map[string]*time.Timer),
		afterFunc: time.AfterFunc,
	}
}

// ScheduleRetry queues one retry of the event's sync after delay.
func (s *RetryScheduler) ScheduleRetry(_ context.Context, event domain.Event, delay time.Duration) {
	if s == nil || s.runner == nil {
		return
	}
	if delay <= 0 {
		delay = domain.DefaultRetryDelay
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, queued := s.pending[event.Code]; queued {
		return
	}
	s.logf("sync for %s failed, retrying in %s", event.Code, delay)
	s.pending[event.Code] = s.afterFunc(delay, func() {
		s.mu.Lock()
		delete(s.pending, event.Code)
		s.mu.Unlock()

		// The triggering run is long gone; the retry runs on its own context.
		outcome, err := s.runner.SyncEvent(context.Background(), event.Code)
		if err != nil {
			s.logf("retry sync for %s: %v", event.Code, err)
			return
		}
		s.logf("retry sync for %s finished: %+v", event.Code, outcome)
	})
}

// Stop cancels all pending retries.
func (s *RetryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for code, timer := range s.pending {
		timer.Stop()
		delete(s.pending, code)
	}
}
