package domain

import "context"

// Store is the persistence boundary for the local mirror. Lookups return
// ErrNotFound when no record matches; Put operations upsert by id.
type Store interface {
	GetEventByCode(ctx context.Context, code string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	PutEvent(ctx context.Context, event Event) error

	GetPerson(ctx context.Context, id string) (Person, error)
	GetPersonByLegacyID(ctx context.Context, legacyID int64) (Person, error)
	GetPersonByEmail(ctx context.Context, email string) (Person, error)
	PutPerson(ctx context.Context, person Person) error
	DeletePerson(ctx context.Context, id string) error

	GetMembershipByEventAndPerson(ctx context.Context, eventID, personID string) (Membership, error)
	ListMembershipsByEvent(ctx context.Context, eventID string) ([]Membership, error)
	ListMembershipsByPerson(ctx context.Context, personID string) ([]Membership, error)
	PutMembership(ctx context.Context, membership Membership) error
	DeleteMembership(ctx context.Context, id string) error

	ListLecturesByPerson(ctx context.Context, personID string) ([]Lecture, error)
	PutLecture(ctx context.Context, lecture Lecture) error

	GetUserAccountByPerson(ctx context.Context, personID string) (UserAccount, error)
	PutUserAccount(ctx context.Context, account UserAccount) error
}
