package domain

import (
	"fmt"
	"time"
)

// Event is a workshop whose roster is mirrored from the remote registry.
// TimeZone is the IANA zone remote timestamps are localized into.
type Event struct {
	ID              string
	Code            string
	Name            string
	TimeZone        string
	StartDate       time.Time
	EndDate         time.Time
	MaxParticipants int
	MaxObservers    int
	MaxVirtual      int
}

// Location resolves the event time zone, falling back to UTC when the zone
// name is unknown or unset.
func (e Event) Location() *time.Location {
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

// RosterCounts holds capacity-relevant seat counts for one event roster.
type RosterCounts struct {
	InPerson int
	Virtual  int
	Observer int
}

// CountSeats tallies roster seats, skipping the membership with excludeID so
// a record being updated does not count against itself.
func CountSeats(roster []Membership, excludeID string) RosterCounts {
	var counts RosterCounts
	for _, m := range roster {
		if m.ID == excludeID || !m.Attendance.Counted() {
			continue
		}
		switch {
		case m.Role.InPerson():
			counts.InPerson++
		case m.Role.Virtual():
			counts.Virtual++
		case m.Role == RoleObserver:
			counts.Observer++
		}
	}
	return counts
}

// CheckCapacity reports whether admitting candidate would exceed the event's
// seat limits. A limit of zero means unlimited.
func (e Event) CheckCapacity(counts RosterCounts, candidate Membership) error {
	if !candidate.Attendance.Counted() {
		return nil
	}
	switch {
	case candidate.Role.InPerson():
		if e.MaxParticipants > 0 && counts.InPerson+1 > e.MaxParticipants {
			return fmt.Errorf("%w: event %s is at its maximum of %d participants", ErrCapacityExceeded, e.Code, e.MaxParticipants)
		}
	case candidate.Role.Virtual():
		if e.MaxVirtual > 0 && counts.Virtual+1 > e.MaxVirtual {
			return fmt.Errorf("%w: event %s is at its maximum of %d virtual participants", ErrCapacityExceeded, e.Code, e.MaxVirtual)
		}
	case candidate.Role == RoleObserver:
		if e.MaxObservers > 0 && counts.Observer+1 > e.MaxObservers {
			return fmt.Errorf("%w: event %s is at its maximum of %d observers", ErrCapacityExceeded, e.Code, e.MaxObservers)
		}
	}
	return nil
}
