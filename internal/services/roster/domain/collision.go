package domain

import (
	"context"
	"errors"
)

// resolveEmailChange routes a pending email change. When no other person
// holds the new address the change applies directly (collided=false). When
// another person already holds it, the two identities collide and are merged
// into one; the survivor is returned with collided=true. ok=false means a
// problem was recorded and the member should be skipped.
func (r *run) resolveEmailChange(ctx context.Context, local Person, remote RemotePerson, newEmail string) (resolved Person, collided bool, ok bool) {
	other, err := r.svc.store.GetPersonByEmail(ctx, newEmail)
	if errors.Is(err, ErrNotFound) {
		return local, false, true
	}
	if err != nil {
		r.problem(ProblemPersistence, local.Email, "look up email "+newEmail+": "+err.Error())
		return Person{}, false, false
	}
	if other.ID == local.ID {
		return local, false, true
	}

	survivor, ok := r.mergeCollidingPersons(ctx, local, remote, other)
	return survivor, true, ok
}

// mergeCollidingPersons resolves an identity collision: retired (matched by
// legacy id) and survivor (current holder of the target email) are the same
// real-world person. Every dependent record of the retired identity moves to
// the survivor, the retired identity is deleted, and only then is the
// survivor saved with the absorbed remote updates: the retired row holds the
// legacy id until it is gone, so saving the survivor first would trip the
// unique legacy id index. Reassignment failures are reported per record and
// do not stop the rest of the merge.
func (r *run) mergeCollidingPersons(ctx context.Context, retired Person, remote RemotePerson, survivor Person) (Person, bool) {
	label := survivor.Email

	changes, _ := MergePerson(&survivor, remote)
	if err := survivor.Validate(); err != nil {
		r.problem(ProblemValidation, label, "collision survivor: "+err.Error())
		return Person{}, false
	}

	survivorEvents := make(map[string]struct{})
	survivorMemberships, err := r.svc.store.ListMembershipsByPerson(ctx, survivor.ID)
	if err != nil {
		r.problem(ProblemReassignment, label, "list survivor memberships: "+err.Error())
		return Person{}, false
	}
	for _, m := range survivorMemberships {
		survivorEvents[m.EventID] = struct{}{}
	}

	retiredMemberships, err := r.svc.store.ListMembershipsByPerson(ctx, retired.ID)
	if err != nil {
		r.problem(ProblemReassignment, label, "list retired memberships: "+err.Error())
		return Person{}, false
	}
	for _, m := range retiredMemberships {
		if _, dup := survivorEvents[m.EventID]; dup {
			// One membership per (person, event): the duplicate stays on the
			// retired identity and goes away with it. Surfaced so staff can
			// audit what was dropped.
			r.problem(ProblemReassignment, label, "duplicate membership for event "+m.EventID+" dropped during identity merge")
			continue
		}
		m.PersonID = survivor.ID
		if err := r.svc.store.PutMembership(ctx, m); err != nil {
			r.problem(ProblemReassignment, label, "reassign membership "+m.ID+": "+err.Error())
			continue
		}
	}

	lectures, err := r.svc.store.ListLecturesByPerson(ctx, retired.ID)
	if err != nil {
		r.problem(ProblemReassignment, label, "list lectures: "+err.Error())
	} else {
		for _, lecture := range lectures {
			lecture.PersonID = survivor.ID
			if err := r.svc.store.PutLecture(ctx, lecture); err != nil {
				r.problem(ProblemReassignment, label, "reassign lecture "+lecture.ID+": "+err.Error())
			}
		}
	}

	account, err := r.svc.store.GetUserAccountByPerson(ctx, retired.ID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		r.problem(ProblemReassignment, label, "look up user account: "+err.Error())
	default:
		// One account per person: when the survivor already has their own,
		// the retired account goes away with the retired identity.
		if _, serr := r.svc.store.GetUserAccountByPerson(ctx, survivor.ID); errors.Is(serr, ErrNotFound) {
			account.PersonID = survivor.ID
			account.Email = survivor.Email
			if err := r.svc.store.PutUserAccount(ctx, account); err != nil {
				r.problem(ProblemReassignment, label, "reassign user account "+account.ID+": "+err.Error())
			}
		} else if serr != nil {
			r.problem(ProblemReassignment, label, "look up survivor account: "+serr.Error())
		} else {
			r.problem(ProblemReassignment, label, "duplicate user account "+account.ID+" dropped during identity merge")
		}
	}

	// There can be only one.
	if err := r.svc.store.DeletePerson(ctx, retired.ID); err != nil {
		r.problem(ProblemPersistence, label, "delete retired person "+retired.ID+": "+err.Error())
		return Person{}, false
	}

	if len(changes) > 0 {
		if err := r.svc.store.PutPerson(ctx, survivor); err != nil {
			r.problem(ProblemPersistence, label, "save collision survivor: "+err.Error())
			return Person{}, false
		}
	}

	return survivor, true
}
