package domain

import "time"

// MergePerson applies every present remote field onto local and returns the
// resulting change list. An email change is never applied here: the new
// address comes back in newEmail so the caller can route it through
// collision handling first. Applying the same remote record twice yields no
// changes on the second pass.
func MergePerson(local *Person, remote RemotePerson) (changes []FieldChange, newEmail string) {
	apply := func(field string, target *string, value string) {
		if value == "" || *target == value {
			return
		}
		changes = append(changes, FieldChange{Field: field, From: *target, To: value})
		*target = value
	}

	// legacy_id is stable once set; it only fills in for records that were
	// linked by email before the registry assigned them an id.
	if remote.LegacyID != 0 && local.LegacyID == 0 {
		changes = append(changes, FieldChange{Field: "legacy_id", To: formatInt(remote.LegacyID)})
		local.LegacyID = remote.LegacyID
	}

	if remote.Email != "" && remote.Email != local.Email {
		newEmail = remote.Email
	}

	apply("cc_email", &local.CCEmail, remote.CCEmail)
	apply("firstname", &local.FirstName, remote.FirstName)
	apply("lastname", &local.LastName, remote.LastName)
	apply("affiliation", &local.Affiliation, remote.Affiliation)
	apply("title", &local.Title, remote.Title)
	apply("url", &local.URL, remote.URL)
	apply("biography", &local.Bio, remote.Bio)
	apply("academic_status", &local.AcademicStatus, remote.AcademicStatus)
	apply("phd_year", &local.PhDYear, remote.PhDYear)
	apply("gender", &local.Gender, remote.Gender)
	apply("updated_by", &local.UpdatedBy, remote.UpdatedBy)

	if ts, ok := mergeTimestamp(local.UpdatedAt, remote.UpdatedAt); ok {
		changes = append(changes, FieldChange{Field: "updated_at", From: formatTime(local.UpdatedAt), To: formatTime(ts)})
		local.UpdatedAt = ts
	}

	return changes, newEmail
}

// MergeMembership applies every present remote field onto local and returns
// the change list. Role and attendance values outside the closed sets fall
// back to their defaults rather than failing the record.
func MergeMembership(local *Membership, remote RemoteMembership) []FieldChange {
	var changes []FieldChange

	if remote.Role != "" {
		role := Role(remote.Role)
		if !ValidRole(role) {
			role = RoleParticipant
		}
		if role != local.Role {
			changes = append(changes, FieldChange{Field: "role", From: string(local.Role), To: string(role)})
			local.Role = role
		}
	}

	if remote.Attendance != "" {
		attendance := Attendance(remote.Attendance)
		if !ValidAttendance(attendance) {
			attendance = AttendanceNotYetInvited
		}
		if attendance != local.Attendance {
			changes = append(changes, FieldChange{Field: "attendance", From: string(local.Attendance), To: string(attendance)})
			local.Attendance = attendance
		}
	}

	applyBool := func(field string, target *bool, value *bool) {
		if value == nil || *target == *value {
			return
		}
		changes = append(changes, FieldChange{Field: field, From: formatBool(*target), To: formatBool(*value)})
		*target = *value
	}
	applyBool("share_email", &local.ShareEmail, remote.ShareEmail)
	applyBool("own_accommodation", &local.OwnAccommodation, remote.OwnAccommodation)
	applyBool("has_guest", &local.HasGuest, remote.HasGuest)

	if !remote.RepliedAt.IsZero() {
		if local.RepliedAt == nil || !local.RepliedAt.Equal(remote.RepliedAt) {
			var from string
			if local.RepliedAt != nil {
				from = formatTime(*local.RepliedAt)
			}
			replied := remote.RepliedAt
			changes = append(changes, FieldChange{Field: "replied_at", From: from, To: formatTime(replied)})
			local.RepliedAt = &replied
		}
	}

	if remote.UpdatedBy != "" && remote.UpdatedBy != local.UpdatedBy {
		changes = append(changes, FieldChange{Field: "updated_by", From: local.UpdatedBy, To: remote.UpdatedBy})
		local.UpdatedBy = remote.UpdatedBy
	}

	if ts, ok := mergeTimestamp(local.UpdatedAt, remote.UpdatedAt); ok {
		changes = append(changes, FieldChange{Field: "updated_at", From: formatTime(local.UpdatedAt), To: formatTime(ts)})
		local.UpdatedAt = ts
	}

	return changes
}

// mergeTimestamp reports whether remote should replace local. An equal
// instant is skipped so re-applying an identical snapshot stays a no-op.
func mergeTimestamp(local, remote time.Time) (time.Time, bool) {
	if remote.IsZero() || local.Equal(remote) {
		return time.Time{}, false
	}
	return remote, true
}
