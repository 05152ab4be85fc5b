package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RemotePerson is a person record after normalization. Zero values mean the
// field was absent from the snapshot: absent fields never overwrite local
// state.
type RemotePerson struct {
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

// RemoteMembership is a membership record after normalization. Boolean
// pointers distinguish "absent" from an explicit false.
type RemoteMembership struct {
	Role             string
	Attendance       string
	ShareEmail       *bool
	OwnAccommodation *bool
	HasGuest         *bool
	RepliedAt        time.Time
	UpdatedBy        string
	UpdatedAt        time.Time
}

// NormalizeMember coerces one raw snapshot entry into typed values using the
// static field schema. Blank values and the zero-date sentinel drop to
// absent, emails lowercase, timestamps localize to loc, and the role
// "Backup Participant" forces attendance to "Not Yet Invited" before any
// merge sees the record. An absent updated_at stays absent: a merge must
// never stamp an unchanged record, only the create path substitutes the
// clock. Pure.
func NormalizeMember(raw RawMember, loc *time.Location) (RemotePerson, RemoteMembership, error) {
	if loc == nil {
		loc = time.UTC
	}

	var person RemotePerson
	for field, value := range raw.Person {
		kind, ok := PersonFieldSchema[field]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch kind {
		case FieldInt:
			// Mirrors the registry convention: garbage ids read as unset.
			n, err := strconv.ParseInt(value, 10, 64)
			if err == nil && field == "legacy_id" {
				person.LegacyID = n
			}
		case FieldTime:
			ts, ok, err := parseRemoteTime(value, loc)
			if err != nil {
				return RemotePerson{}, RemoteMembership{}, fmt.Errorf("person %s: %w", field, err)
			}
			if ok && field == "updated_at" {
				person.UpdatedAt = ts
			}
		case FieldString:
			setPersonString(&person, field, value)
		}
	}
	if person.UpdatedBy == "" {
		person.UpdatedBy = DefaultUpdatedBy
	}

	var membership RemoteMembership
	for field, value := range raw.Membership {
		kind, ok := MembershipFieldSchema[field]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch kind {
		case FieldBool:
			b := truthy(value)
			switch field {
			case "share_email":
				membership.ShareEmail = &b
			case "own_accommodation":
				membership.OwnAccommodation = &b
			case "has_guest":
				membership.HasGuest = &b
			}
		case FieldTime:
			ts, ok, err := parseRemoteTime(value, loc)
			if err != nil {
				return RemotePerson{}, RemoteMembership{}, fmt.Errorf("membership %s: %w", field, err)
			}
			if !ok {
				continue
			}
			switch field {
			case "replied_at":
				membership.RepliedAt = ts
			case "updated_at":
				membership.UpdatedAt = ts
			}
		case FieldString:
			switch field {
			case "role":
				membership.Role = value
			case "attendance":
				membership.Attendance = value
			case "updated_by":
				membership.UpdatedBy = value
			}
		}
	}
	if membership.UpdatedBy == "" {
		membership.UpdatedBy = DefaultUpdatedBy
	}
	// Backup participants are never auto-invited, regardless of what the
	// registry recorded for them.
	if membership.Role == string(RoleBackupParticipant) {
		membership.Attendance = string(AttendanceNotYetInvited)
	}

	return person, membership, nil
}

func setPersonString(p *RemotePerson, field, value string) {
	switch field {
	case "email":
		p.Email = NormalizeEmail(value)
	case "cc_email":
		p.CCEmail = NormalizeEmail(value)
	case "firstname":
		p.FirstName = value
	case "lastname":
		p.LastName = value
	case "affiliation":
		p.Affiliation = value
	case "title":
		p.Title = value
	case "url":
		p.URL = value
	case "biography":
		p.Bio = value
	case "academic_status":
		p.AcademicStatus = value
	case "phd_year":
		p.PhDYear = value
	case "gender":
		p.Gender = value
	case "updated_by":
		p.UpdatedBy = value
	}
}

func truthy(value string) bool {
	return value == "1" || strings.EqualFold(value, "true")
}

var remoteTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseRemoteTime accepts epoch seconds or the registry's timestamp layouts.
// The zero-date sentinel reports absent rather than an epoch value.
func parseRemoteTime(value string, loc *time.Location) (time.Time, bool, error) {
	if value == ZeroDate {
		return time.Time{}, false, nil
	}
	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(epoch, 0).In(loc), true, nil
	}
	for _, layout := range remoteTimeLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unparseable timestamp %q", value)
}
