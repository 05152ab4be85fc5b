package domain

import (
	"context"
	"errors"
)

// reconcileMember processes one remote member end to end: normalize, resolve
// or create the person, then upsert the membership. Any failure lands in the
// report and skips only this member.
func (r *run) reconcileMember(ctx context.Context, raw RawMember) {
	remotePerson, remoteMembership, err := NormalizeMember(raw, r.loc)
	if err != nil {
		r.problem(ProblemValidation, memberLabel(raw), err.Error())
		return
	}

	// Legacy id zero is recorded too: it shields id-less members from the
	// prune pass, matching the registry's own convention.
	r.seen[remotePerson.LegacyID] = struct{}{}

	person, ok := r.upsertPerson(ctx, remotePerson)
	if !ok {
		return
	}
	r.reconcileMembership(ctx, person, remoteMembership)
}

// upsertPerson creates or updates the local person for one remote record.
// The returned bool reports whether the person is usable for membership
// reconciliation; on false a problem has already been recorded.
func (r *run) upsertPerson(ctx context.Context, remote RemotePerson) (Person, bool) {
	label := remote.Email
	if label == "" {
		label = "legacy_id " + formatInt(remote.LegacyID)
	}

	local, found, err := r.findLocalPerson(ctx, remote)
	if err != nil {
		r.problem(ProblemPersistence, label, "resolve person: "+err.Error())
		return Person{}, false
	}

	if !found {
		newID, err := r.svc.newID()
		if err != nil {
			r.problem(ProblemPersistence, label, "generate person id: "+err.Error())
			return Person{}, false
		}
		person := Person{
			ID:             newID,
			LegacyID:       remote.LegacyID,
			Email:          remote.Email,
			CCEmail:        remote.CCEmail,
			FirstName:      remote.FirstName,
			LastName:       remote.LastName,
			Affiliation:    remote.Affiliation,
			Title:          remote.Title,
			URL:            remote.URL,
			Bio:            remote.Bio,
			AcademicStatus: remote.AcademicStatus,
			PhDYear:        remote.PhDYear,
			Gender:         remote.Gender,
			UpdatedBy:      remote.UpdatedBy,
			UpdatedAt:      remote.UpdatedAt,
		}
		if person.UpdatedAt.IsZero() {
			person.UpdatedAt = r.svc.clock().UTC()
		}
		if err := person.Validate(); err != nil {
			r.problem(ProblemValidation, label, "new person: "+err.Error())
			return Person{}, false
		}
		if err := r.svc.store.PutPerson(ctx, person); err != nil {
			r.problem(ProblemPersistence, label, "save person: "+err.Error())
			return Person{}, false
		}
		return person, true
	}

	changes, newEmail := MergePerson(&local, remote)
	if newEmail != "" {
		resolved, collided, ok := r.resolveEmailChange(ctx, local, remote, newEmail)
		if !ok {
			return Person{}, false
		}
		if collided {
			// The survivor already absorbed the remote updates.
			return resolved, true
		}
		changes = append(changes, FieldChange{Field: "email", From: local.Email, To: newEmail})
		local.Email = newEmail
	}

	if len(changes) == 0 {
		return local, true
	}
	if err := local.Validate(); err != nil {
		r.problem(ProblemValidation, label, "merge person: "+err.Error())
		return Person{}, false
	}
	if err := r.svc.store.PutPerson(ctx, local); err != nil {
		r.problem(ProblemPersistence, label, "save person: "+err.Error())
		return Person{}, false
	}
	return local, true
}

// reconcileMembership finds or creates the membership for (person, event)
// and applies the remote membership fields. Tracked-field changes on an
// existing membership fan out to the change notifier after a successful
// save.
func (r *run) reconcileMembership(ctx context.Context, person Person, remote RemoteMembership) {
	label := person.Name()

	local, err := r.svc.store.GetMembershipByEventAndPerson(ctx, r.event.ID, person.ID)
	created := false
	switch {
	case errors.Is(err, ErrNotFound):
		newID, idErr := r.svc.newID()
		if idErr != nil {
			r.problem(ProblemPersistence, label, "generate membership id: "+idErr.Error())
			return
		}
		local = Membership{
			ID:         newID,
			EventID:    r.event.ID,
			PersonID:   person.ID,
			Role:       RoleParticipant,
			Attendance: AttendanceNotYetInvited,
			UpdatedBy:  remote.UpdatedBy,
			UpdatedAt:  remote.UpdatedAt,
		}
		if local.UpdatedAt.IsZero() {
			local.UpdatedAt = r.svc.clock().UTC()
		}
		created = true
	case err != nil:
		r.problem(ProblemPersistence, label, "load membership: "+err.Error())
		return
	}

	changes := MergeMembership(&local, remote)
	if !created && len(changes) == 0 {
		return
	}
	if err := local.Validate(); err != nil {
		r.problem(ProblemValidation, label, "membership: "+err.Error())
		return
	}

	// Capacity belongs to the event aggregate; a full event rejects the
	// record, which is reported and skipped like any validation failure.
	roster, err := r.svc.store.ListMembershipsByEvent(ctx, r.event.ID)
	if err != nil {
		r.problem(ProblemPersistence, label, "list roster: "+err.Error())
		return
	}
	if err := r.event.CheckCapacity(CountSeats(roster, local.ID), local); err != nil {
		r.problem(ProblemValidation, label, err.Error())
		return
	}

	if err := r.svc.store.PutMembership(ctx, local); err != nil {
		r.problem(ProblemPersistence, label, "save membership: "+err.Error())
		return
	}

	if created {
		r.created++
		return
	}
	r.updated++
	if r.svc.notifier != nil {
		r.svc.notifier.Notify(ctx, MembershipChange{
			MembershipID: local.ID,
			EventCode:    r.event.Code,
			PersonName:   person.Name(),
			Changes:      changes,
			OccurredAt:   r.svc.clock().UTC(),
		})
	}
}
