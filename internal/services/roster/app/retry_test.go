package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cadieux/rostersync/internal/services/roster/domain"
)

type stubSyncService struct {
	mu    sync.Mutex
	codes []string
}

func (s *stubSyncService) SyncEvent(_ context.Context, code string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	return domain.Outcome{EventCode: code, State: domain.StateDone}, nil
}

func (s *stubSyncService) synced() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.codes...)
}

func TestScheduleRetry_OnePendingPerEvent(t *testing.T) {
	t.Parallel()

	svc := &stubSyncService{}
	runner := NewRunner()
	runner.Bind(svc)

	scheduler := NewRetryScheduler(runner)
	scheduler.logf = func(string, ...any) {}

	var mu sync.Mutex
	var queued []time.Duration
	var fire func()
	scheduler.afterFunc = func(d time.Duration, f func()) *time.Timer {
		mu.Lock()
		defer mu.Unlock()
		queued = append(queued, d)
		fire = f
		return time.NewTimer(time.Hour)
	}
	defer scheduler.Stop()

	event := domain.Event{ID: "evt-1", Code: "26w5001"}
	scheduler.ScheduleRetry(context.Background(), event, 2*time.Minute)
	scheduler.ScheduleRetry(context.Background(), event, 2*time.Minute)

	mu.Lock()
	if len(queued) != 1 {
		mu.Unlock()
		t.Fatalf("queued %d retries, want 1", len(queued))
	}
	if queued[0] != 2*time.Minute {
		mu.Unlock()
		t.Fatalf("delay = %s, want 2m", queued[0])
	}
	run := fire
	mu.Unlock()

	run()
	if got := svc.synced(); len(got) != 1 || got[0] != "26w5001" {
		t.Fatalf("synced = %v", got)
	}

	// The fired retry clears the pending slot, so the next failure queues
	// a fresh attempt.
	scheduler.ScheduleRetry(context.Background(), event, 2*time.Minute)
	mu.Lock()
	defer mu.Unlock()
	if len(queued) != 2 {
		t.Fatalf("queued %d retries after fire, want 2", len(queued))
	}
}

func TestScheduleRetry_DefaultsDelay(t *testing.T) {
	t.Parallel()

	runner := NewRunner()
	runner.Bind(&stubSyncService{})
	scheduler := NewRetryScheduler(runner)
	scheduler.logf = func(string, ...any) {}

	var got time.Duration
	scheduler.afterFunc = func(d time.Duration, f func()) *time.Timer {
		got = d
		return time.NewTimer(time.Hour)
	}
	defer scheduler.Stop()

	scheduler.ScheduleRetry(context.Background(), domain.Event{Code: "26w5001"}, 0)
	if got != domain.DefaultRetryDelay {
		t.Fatalf("delay = %s, want %s", got, domain.DefaultRetryDelay)
	}
}

func TestRunner_RequiresBoundService(t *testing.T) {
	t.Parallel()

	runner := NewRunner()
	if _, err := runner.SyncEvent(context.Background(), "26w5001"); err == nil {
		t.Fatal("expected an error before Bind")
	}

	svc := &stubSyncService{}
	runner.Bind(svc)
	outcome, err := runner.SyncEvent(context.Background(), "26w5001")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if outcome.State != domain.StateDone {
		t.Fatalf("state = %s", outcome.State)
	}
}
