package domain

import "context"

// prune removes event memberships whose person no longer appears in the
// remote snapshot. Persons themselves are never deleted here: they may hold
// memberships in other events.
func (r *run) prune(ctx context.Context) {
	memberships, err := r.svc.store.ListMembershipsByEvent(ctx, r.event.ID)
	if err != nil {
		r.problem(ProblemPersistence, r.event.Code, "list memberships for prune: "+err.Error())
		return
	}
	for _, m := range memberships {
		person, err := r.svc.store.GetPerson(ctx, m.PersonID)
		if err != nil {
			r.problem(ProblemPersistence, m.ID, "load person for prune: "+err.Error())
			continue
		}
		if _, present := r.seen[person.LegacyID]; present {
			continue
		}
		if err := r.svc.store.DeleteMembership(ctx, m.ID); err != nil {
			r.problem(ProblemPersistence, person.Name(), "prune membership: "+err.Error())
			continue
		}
		r.pruned++
	}
}
