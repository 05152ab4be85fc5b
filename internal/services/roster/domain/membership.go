package domain

import (
	"strings"
	"time"
)

// Role is a membership role from the registry's closed set.
type Role string

// Membership roles recognized by the registry.
const (
	RoleContactOrganizer   Role = "Contact Organizer"
	RoleOrganizer          Role = "Organizer"
	RoleVirtualOrganizer   Role = "Virtual Organizer"
	RoleParticipant        Role = "Participant"
	RoleVirtualParticipant Role = "Virtual Participant"
	RoleObserver           Role = "Observer"
	RoleBackupParticipant  Role = "Backup Participant"
)

// Attendance is an RSVP state from the registry's closed set.
type Attendance string

// Membership attendance states recognized by the registry.
const (
	AttendanceConfirmed     Attendance = "Confirmed"
	AttendanceInvited       Attendance = "Invited"
	AttendanceUndecided     Attendance = "Undecided"
	AttendanceNotYetInvited Attendance = "Not Yet Invited"
	AttendanceDeclined      Attendance = "Declined"
)

var roles = map[Role]struct{}{
	RoleContactOrganizer:   {},
	RoleOrganizer:          {},
	RoleVirtualOrganizer:   {},
	RoleParticipant:        {},
	RoleVirtualParticipant: {},
	RoleObserver:           {},
	RoleBackupParticipant:  {},
}

var attendances = map[Attendance]struct{}{
	AttendanceConfirmed:     {},
	AttendanceInvited:       {},
	AttendanceUndecided:     {},
	AttendanceNotYetInvited: {},
	AttendanceDeclined:      {},
}

// ValidRole reports whether r is in the closed role set.
func ValidRole(r Role) bool {
	_, ok := roles[r]
	return ok
}

// ValidAttendance reports whether a is in the closed attendance set.
func ValidAttendance(a Attendance) bool {
	_, ok := attendances[a]
	return ok
}

// InPerson reports whether the role occupies a physical participant seat.
func (r Role) InPerson() bool {
	switch r {
	case RoleContactOrganizer, RoleOrganizer, RoleParticipant:
		return true
	}
	return false
}

// Virtual reports whether the role occupies a virtual seat.
func (r Role) Virtual() bool {
	return r == RoleVirtualOrganizer || r == RoleVirtualParticipant
}

// Counted reports whether the attendance state counts against event capacity.
func (a Attendance) Counted() bool {
	switch a {
	case AttendanceConfirmed, AttendanceInvited, AttendanceUndecided:
		return true
	}
	return false
}

// Membership ties one person to one event. At most one non-deleted
// membership may exist per (event, person) pair.
type Membership struct {
	ID               string
	EventID          string
	PersonID         string
	Role             Role
	Attendance       Attendance
	ShareEmail       bool
	OwnAccommodation bool
	HasGuest         bool
	RepliedAt        *time.Time
	UpdatedBy        string
	UpdatedAt        time.Time
}

// Validate checks the fields required before a membership may be persisted.
func (m Membership) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrMembershipIDRequired
	}
	if strings.TrimSpace(m.EventID) == "" {
		return ErrEventIDRequired
	}
	if strings.TrimSpace(m.PersonID) == "" {
		return ErrPersonIDRequired
	}
	if !ValidRole(m.Role) {
		return ErrInvalidRole
	}
	if !ValidAttendance(m.Attendance) {
		return ErrInvalidAttendance
	}
	return nil
}
