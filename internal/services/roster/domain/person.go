package domain

import (
	"strings"
	"time"
)

// Person is one locally mirrored identity from the remote member registry.
// LegacyID is the registry's stable key (0 when the registry never assigned
// one); Email is the fallback linkage key and is stored lowercased.
type Person struct {
	ID             string
	LegacyID       int64
	Email          string
	CCEmail        string
	FirstName      string
	LastName       string
	Affiliation    string
	Title          string
	URL            string
	Bio            string
	AcademicStatus string
	PhDYear        string
	Gender         string
	UpdatedBy      string
	UpdatedAt      time.Time
}

// NormalizeEmail lowercases and trims an email address so equality checks
// and uniqueness lookups ignore remote casing noise.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Name returns the person's display name.
func (p Person) Name() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// Validate checks the fields required before a person may be persisted.
func (p Person) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrPersonIDRequired
	}
	if strings.TrimSpace(p.Email) == "" {
		return ErrEmailRequired
	}
	if strings.TrimSpace(p.LastName) == "" {
		return ErrLastNameRequired
	}
	return nil
}
