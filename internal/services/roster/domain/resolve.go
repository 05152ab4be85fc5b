package domain

import (
	"context"
	"errors"
)

// findLocalPerson resolves a remote person to an existing local identity.
// The legacy id is the stronger key (it survives email changes); email is
// the fallback for records never linked by id.
func (r *run) findLocalPerson(ctx context.Context, remote RemotePerson) (Person, bool, error) {
	if remote.LegacyID != 0 {
		person, err := r.svc.store.GetPersonByLegacyID(ctx, remote.LegacyID)
		if err == nil {
			return person, true, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Person{}, false, err
		}
	}
	if remote.Email != "" {
		person, err := r.svc.store.GetPersonByEmail(ctx, remote.Email)
		if err == nil {
			return person, true, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Person{}, false, err
		}
	}
	return Person{}, false, nil
}
