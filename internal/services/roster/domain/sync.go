package domain

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RunState names the orchestration phases of one sync run.
type RunState string

// Sync run states. Done and Failed are terminal; a new run starts fresh.
const (
	StateFetching    RunState = "fetching"
	StateReconciling RunState = "reconciling"
	StatePruning     RunState = "pruning"
	StateReporting   RunState = "reporting"
	StateDone        RunState = "done"
	StateFailed      RunState = "failed"
)

// Outcome summarizes one sync run.
type Outcome struct {
	EventCode          string
	State              RunState
	MembershipsCreated int
	MembershipsUpdated int
	MembershipsPruned  int
	Problems           []Problem
}

// run carries the state of a single orchestration: the event, its time zone,
// the legacy ids seen in the snapshot, and the accumulated report.
type run struct {
	svc     *Service
	event   Event
	loc     *time.Location
	seen    map[int64]struct{}
	report  Report
	created int
	updated int
	pruned  int
}

// SyncEvent executes one synchronization run for the event with the given
// code. Per-member failures are recorded and skipped; only an empty or
// unreachable snapshot fails the run, in which case the report is still
// delivered and a retry of the whole run is scheduled.
func (s *Service) SyncEvent(ctx context.Context, code string) (Outcome, error) {
	if s == nil || s.store == nil {
		return Outcome{}, ErrStoreNotConfigured
	}
	if s.remote == nil {
		return Outcome{}, ErrRemoteSourceNotConfigured
	}

	event, err := s.store.GetEventByCode(ctx, code)
	if err != nil {
		return Outcome{}, fmt.Errorf("load event %s: %w", code, err)
	}

	r := &run{
		svc:   s,
		event: event,
		loc:   event.Location(),
		seen:  make(map[int64]struct{}),
		report: Report{
			EventCode: event.Code,
			StartedAt: s.clock().UTC(),
		},
	}
	return r.execute(ctx)
}

func (r *run) execute(ctx context.Context) (Outcome, error) {
	r.report.State = StateFetching
	members, err := r.svc.remote.Fetch(ctx, r.event)
	if err != nil {
		r.problem(ProblemSource, r.event.Code, fmt.Sprintf("fetch remote members: %v", err))
	} else if len(members) == 0 {
		r.problem(ProblemSource, r.event.Code, "remote registry returned no members")
	}
	if err != nil || len(members) == 0 {
		r.finish(ctx, StateFailed)
		if r.svc.retry != nil {
			r.svc.retry.ScheduleRetry(ctx, r.event, r.svc.retryDelay)
		}
		return r.outcome(StateFailed), ErrNoRemoteMembers
	}

	r.report.State = StateReconciling
	sortSnapshot(members)
	for _, raw := range members {
		r.reconcileMember(ctx, raw)
	}

	r.report.State = StatePruning
	r.prune(ctx)

	r.finish(ctx, StateDone)
	return r.outcome(StateDone), nil
}

// finish stamps the report and delivers it. Each run reaches finish exactly
// once, so the report is never sent partially or twice.
func (r *run) finish(ctx context.Context, state RunState) {
	r.report.State = state
	r.report.FinishedAt = r.svc.clock().UTC()
	if r.svc.reports != nil {
		r.svc.reports.Deliver(ctx, r.report)
	}
}

func (r *run) outcome(state RunState) Outcome {
	return Outcome{
		EventCode:          r.event.Code,
		State:              state,
		MembershipsCreated: r.created,
		MembershipsUpdated: r.updated,
		MembershipsPruned:  r.pruned,
		Problems:           r.report.Problems,
	}
}

func (r *run) problem(kind ProblemKind, record, message string) {
	r.report.add(kind, record, message)
}

// sortSnapshot orders remote members ascending by legacy id, entries without
// an id last, ties broken by email. Collisions between three or more local
// identities then resolve in a deterministic order instead of depending on
// remote iteration order.
func sortSnapshot(members []RawMember) {
	key := func(m RawMember) (int64, string) {
		n, err := strconv.ParseInt(strings.TrimSpace(m.Person["legacy_id"]), 10, 64)
		if err != nil || n <= 0 {
			return 0, strings.ToLower(strings.TrimSpace(m.Person["email"]))
		}
		return n, strings.ToLower(strings.TrimSpace(m.Person["email"]))
	}
	sort.SliceStable(members, func(i, j int) bool {
		ni, ei := key(members[i])
		nj, ej := key(members[j])
		if ni != nj {
			if ni == 0 {
				return false
			}
			if nj == 0 {
				return true
			}
			return ni < nj
		}
		return ei < ej
	})
}

// memberLabel names a raw member for report entries.
func memberLabel(raw RawMember) string {
	if email := strings.TrimSpace(raw.Person["email"]); email != "" {
		return strings.ToLower(email)
	}
	if legacyID := strings.TrimSpace(raw.Person["legacy_id"]); legacyID != "" {
		return "legacy_id " + legacyID
	}
	return "unidentified member"
}
