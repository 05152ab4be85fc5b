package domain

import (
	"testing"
	"time"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestNormalizeMember_CoercesTypedFields(t *testing.T) {
	t.Parallel()

	loc := mustLocation(t, "America/Edmonton")

	raw := RawMember{
		Person: map[string]string{
			"legacy_id":  "482",
			"email":      " Ada.Lovelace@Example.COM ",
			"firstname":  "Ada",
			"lastname":   "Lovelace",
			"updated_by": "registry admin",
			"updated_at": "2026-02-10 09:30:00",
		},
		Membership: map[string]string{
			"role":        "Organizer",
			"attendance":  "Confirmed",
			"share_email": "1",
			"has_guest":   "false",
			"replied_at":  "2026-02-11 08:00:00",
			"updated_at":  "2026-02-12T10:00:00",
		},
	}

	person, membership, err := NormalizeMember(raw, loc)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if person.LegacyID != 482 {
		t.Fatalf("legacy id = %d, want 482", person.LegacyID)
	}
	if person.Email != "ada.lovelace@example.com" {
		t.Fatalf("email = %q", person.Email)
	}
	want := time.Date(2026, 2, 10, 9, 30, 0, 0, loc)
	if !person.UpdatedAt.Equal(want) {
		t.Fatalf("person updated_at = %s, want %s", person.UpdatedAt, want)
	}
	if person.UpdatedBy != "registry admin" {
		t.Fatalf("updated_by = %q", person.UpdatedBy)
	}

	if membership.Role != "Organizer" || membership.Attendance != "Confirmed" {
		t.Fatalf("role/attendance = %q/%q", membership.Role, membership.Attendance)
	}
	if membership.ShareEmail == nil || !*membership.ShareEmail {
		t.Fatal("share_email should be explicit true")
	}
	if membership.HasGuest == nil || *membership.HasGuest {
		t.Fatal("has_guest should be explicit false")
	}
	if membership.OwnAccommodation != nil {
		t.Fatal("own_accommodation was absent, want nil")
	}
	wantReplied := time.Date(2026, 2, 11, 8, 0, 0, 0, loc)
	if !membership.RepliedAt.Equal(wantReplied) {
		t.Fatalf("replied_at = %s, want %s", membership.RepliedAt, wantReplied)
	}
}

func TestNormalizeMember_BlanksAndSentinelsDropToAbsent(t *testing.T) {
	t.Parallel()

	raw := RawMember{
		Person: map[string]string{
			"legacy_id":   "not-a-number",
			"email":       "kurt@example.org",
			"lastname":    "   ",
			"affiliation": "",
			"updated_at":  ZeroDate,
		},
		Membership: map[string]string{
			"replied_at": ZeroDate,
			"role":       "",
		},
	}

	person, membership, err := NormalizeMember(raw, time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if person.LegacyID != 0 {
		t.Fatalf("garbage legacy id = %d, want 0", person.LegacyID)
	}
	if person.LastName != "" || person.Affiliation != "" {
		t.Fatalf("blank fields survived: %q %q", person.LastName, person.Affiliation)
	}
	// Sentinel dates never become an epoch timestamp, and they never become
	// "now" either: an absent updated_at must stay absent so merging an
	// unchanged record stays a no-op.
	if !person.UpdatedAt.IsZero() {
		t.Fatalf("person updated_at = %s, want absent", person.UpdatedAt)
	}
	if !membership.UpdatedAt.IsZero() {
		t.Fatalf("membership updated_at = %s, want absent", membership.UpdatedAt)
	}
	if !membership.RepliedAt.IsZero() {
		t.Fatalf("replied_at = %s, want absent", membership.RepliedAt)
	}
	if membership.Role != "" {
		t.Fatalf("role = %q, want absent", membership.Role)
	}
	if person.UpdatedBy != DefaultUpdatedBy {
		t.Fatalf("updated_by = %q, want %q", person.UpdatedBy, DefaultUpdatedBy)
	}
}

func TestNormalizeMember_AcceptsEpochTimestamps(t *testing.T) {
	t.Parallel()

	loc := mustLocation(t, "America/Edmonton")
	raw := RawMember{
		Person: map[string]string{
			"email":      "grace@example.org",
			"updated_at": "1767225600",
		},
	}

	person, _, err := NormalizeMember(raw, loc)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := time.Unix(1767225600, 0).In(loc)
	if !person.UpdatedAt.Equal(want) {
		t.Fatalf("updated_at = %s, want %s", person.UpdatedAt, want)
	}
}

func TestNormalizeMember_RejectsUnparseableTimestamps(t *testing.T) {
	t.Parallel()

	raw := RawMember{
		Person: map[string]string{
			"email":      "broken@example.org",
			"updated_at": "next Tuesday",
		},
	}
	if _, _, err := NormalizeMember(raw, time.UTC); err == nil {
		t.Fatal("expected an error for an unparseable timestamp")
	}
}

func TestNormalizeMember_BackupParticipantForcesNotYetInvited(t *testing.T) {
	t.Parallel()

	raw := RawMember{
		Person: map[string]string{"email": "backup@example.org"},
		Membership: map[string]string{
			"role":       string(RoleBackupParticipant),
			"attendance": string(AttendanceConfirmed),
		},
	}
	_, membership, err := NormalizeMember(raw, time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if membership.Attendance != string(AttendanceNotYetInvited) {
		t.Fatalf("attendance = %q, want %q", membership.Attendance, AttendanceNotYetInvited)
	}
}

func TestNormalizeMember_DropsUnknownFields(t *testing.T) {
	t.Parallel()

	raw := RawMember{
		Person: map[string]string{
			"email":          "mary@example.org",
			"shoe_size":      "38",
			"favorite_color": "teal",
		},
	}
	person, _, err := NormalizeMember(raw, time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if person.Email != "mary@example.org" {
		t.Fatalf("email = %q", person.Email)
	}
}
