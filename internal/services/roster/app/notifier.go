package app

import (
	"context"
	"log"

	"github.com/cadieux/rostersync/internal/services/roster/domain"
)

// changeStore is the slice of the sqlite store the notifier writes to.
type changeStore interface {
	AppendMembershipChange(ctx context.Context, change domain.MembershipChange, field domain.FieldChange) error
}

// ChangeLogNotifier records membership changes to the mirror's change log.
// Notifications are fire-and-forget: a failed append is logged and dropped,
// never surfaced to the sync run.
type ChangeLogNotifier struct {
	store changeStore
	logf  func(format string, args ...any)
}

// NewChangeLogNotifier builds a notifier backed by the given change store.
func NewChangeLogNotifier(store changeStore) *ChangeLogNotifier {
	return &ChangeLogNotifier{store: store, logf: log.Printf}
}

// Notify appends one change-log row per changed field.
func (n *ChangeLogNotifier) Notify(ctx context.Context, change domain.MembershipChange) {
	if n == nil || n.store == nil {
		return
	}
	for _, field := range change.Changes {
		if err := n.store.AppendMembershipChange(ctx, change, field); err != nil {
			n.logf("record change for membership %s (%s): %v", change.MembershipID, field.Field, err)
		}
	}
}

var _ domain.ChangeNotifier = (*ChangeLogNotifier)(nil)
