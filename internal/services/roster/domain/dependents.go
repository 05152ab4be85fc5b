package domain

import "time"

// Lecture is a scheduled talk owned by a person within an event. Lectures
// follow their owner when colliding identities are merged.
type Lecture struct {
	ID       string
	EventID  string
	PersonID string
	Title    string
	StartsAt time.Time
	EndsAt   time.Time
}

// UserAccount is a login account linked to a person. Accounts follow their
// owner (and take the survivor's email) when colliding identities are merged.
type UserAccount struct {
	ID       string
	PersonID string
	Email    string
}
