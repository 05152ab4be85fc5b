package app

import (
	"context"
	"sync"

	"github.com/cadieux/rostersync/internal/services/roster/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// syncService is the slice of the engine the runner drives.
type syncService interface {
	SyncEvent(ctx context.Context, code string) (domain.Outcome, error)
}

// Runner serializes sync runs per event and instruments each run with a
// trace span. Two runs for the same event never interleave; runs for
// different events proceed in parallel.
type Runner struct {
	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	svc    syncService
	tracer trace.Tracer
}

// NewRunner builds a runner; Bind must be called before the first sync.
func NewRunner() *Runner {
	return &Runner{
		locks:  make(map[string]*sync.Mutex),
		tracer: otel.Tracer("rostersync/app"),
	}
}

// Bind attaches the engine. Separate from construction because the retry
// scheduler and the engine reference each other through the runner.
func (r *Runner) Bind(svc syncService) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.svc = svc
}

func (r *Runner) eventLock(code string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[code] = lock
	}
	return lock
}

// SyncEvent runs one synchronization for the event code, holding the
// per-event lock for the duration of the run.
func (r *Runner) SyncEvent(ctx context.Context, code string) (domain.Outcome, error) {
	r.mu.Lock()
	svc := r.svc
	r.mu.Unlock()
	if svc == nil {
		return domain.Outcome{}, domain.ErrStoreNotConfigured
	}

	lock := r.eventLock(code)
	lock.Lock()
	defer lock.Unlock()

	ctx, span := r.tracer.Start(ctx, "roster.sync",
		trace.WithAttributes(attribute.String("event.code", code)),
	)
	defer span.End()

	outcome, err := svc.SyncEvent(ctx, code)
	span.SetAttributes(
		attribute.String("sync.state", string(outcome.State)),
		attribute.Int("sync.memberships_created", outcome.MembershipsCreated),
		attribute.Int("sync.memberships_updated", outcome.MembershipsUpdated),
		attribute.Int("sync.memberships_pruned", outcome.MembershipsPruned),
		attribute.Int("sync.problems", len(outcome.Problems)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return outcome, err
}
