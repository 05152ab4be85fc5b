package domain

import "errors"

var (
	// ErrNotFound indicates a requested record is missing from the mirror.
	ErrNotFound = errors.New("record not found")
	// ErrNoRemoteMembers indicates the remote snapshot was empty or the
	// source was unreachable; the run fails and is retried as a whole.
	ErrNoRemoteMembers = errors.New("no remote members")
	// ErrStoreNotConfigured indicates the engine is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("roster store is not configured")
	// ErrRemoteSourceNotConfigured indicates the engine has no remote source.
	ErrRemoteSourceNotConfigured = errors.New("remote source is not configured")
	// ErrPersonIDRequired indicates a person record is missing its local id.
	ErrPersonIDRequired = errors.New("person id is required")
	// ErrEmailRequired indicates a person record is missing an email address.
	ErrEmailRequired = errors.New("person email is required")
	// ErrLastNameRequired indicates a person record is missing a last name.
	ErrLastNameRequired = errors.New("person last name is required")
	// ErrMembershipIDRequired indicates a membership is missing its local id.
	ErrMembershipIDRequired = errors.New("membership id is required")
	// ErrEventIDRequired indicates a membership has no event reference.
	ErrEventIDRequired = errors.New("event id is required")
	// ErrInvalidRole indicates a role outside the closed role set.
	ErrInvalidRole = errors.New("invalid membership role")
	// ErrInvalidAttendance indicates an attendance outside the closed set.
	ErrInvalidAttendance = errors.New("invalid membership attendance")
	// ErrCapacityExceeded indicates the event aggregate rejected a seat.
	ErrCapacityExceeded = errors.New("event capacity exceeded")
)
