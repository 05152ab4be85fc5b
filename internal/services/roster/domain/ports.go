package domain

import (
	"context"
	"time"
)

// RemoteSource fetches the authoritative member snapshot for one event.
// An empty slice and a transport failure mean the same thing to the engine:
// no results.
type RemoteSource interface {
	Fetch(ctx context.Context, event Event) ([]RawMember, error)
}

// FieldChange records one field transition applied during a merge.
type FieldChange struct {
	Field string
	From  string
	To    string
}

// MembershipChange describes a persisted membership whose tracked fields
// changed during reconciliation.
type MembershipChange struct {
	MembershipID string
	EventCode    string
	PersonName   string
	Changes      []FieldChange
	OccurredAt   time.Time
}

// ChangeNotifier receives fire-and-forget change notifications. Delivery
// failures are logged by implementations, never surfaced as sync failures.
type ChangeNotifier interface {
	Notify(ctx context.Context, change MembershipChange)
}

// RetryScheduler re-enqueues a whole sync run after a systemic failure.
type RetryScheduler interface {
	ScheduleRetry(ctx context.Context, event Event, delay time.Duration)
}

// ReportSink delivers the accumulated problem report, exactly once per run.
type ReportSink interface {
	Deliver(ctx context.Context, report Report)
}
