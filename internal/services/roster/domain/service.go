package domain

import (
	"time"

	"github.com/cadieux/rostersync/internal/platform/id"
)

// DefaultRetryDelay is how long a failed run waits before the whole sync is
// attempted again.
const DefaultRetryDelay = 5 * time.Minute

// ServiceConfig wires the engine's collaborators. Store and Remote are
// required; the rest default to safe no-ops or stdlib implementations.
type ServiceConfig struct {
	Store      Store
	Remote     RemoteSource
	Notifier   ChangeNotifier
	Retry      RetryScheduler
	Reports    ReportSink
	Clock      func() time.Time
	NewID      func() (string, error)
	RetryDelay time.Duration
}

// Service runs roster synchronization for events. One run handles one event;
// the caller must not run two syncs for the same event concurrently.
type Service struct {
	store      Store
	remote     RemoteSource
	notifier   ChangeNotifier
	retry      RetryScheduler
	reports    ReportSink
	clock      func() time.Time
	newID      func() (string, error)
	retryDelay time.Duration
}

// NewService constructs the synchronization engine.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = id.NewID
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Service{
		store:      cfg.Store,
		remote:     cfg.Remote,
		notifier:   cfg.Notifier,
		retry:      cfg.Retry,
		reports:    cfg.Reports,
		clock:      cfg.Clock,
		newID:      cfg.NewID,
		retryDelay: cfg.RetryDelay,
	}
}
