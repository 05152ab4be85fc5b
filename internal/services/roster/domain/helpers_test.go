package domain

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator(ids ...string) func() (string, error) {
	var mu sync.Mutex
	next := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if next < len(ids) {
			id := ids[next]
			next++
			return id, nil
		}
		next++
		return fmt.Sprintf("generated-%d", next), nil
	}
}

// fakeStore is an in-memory Store. Deleting a person cascades to their
// memberships, lectures, and user account, mirroring the sqlite schema.
type fakeStore struct {
	mu          sync.Mutex
	events      map[string]Event
	persons     map[string]Person
	memberships map[string]Membership
	lectures    map[string]Lecture
	accounts    map[string]UserAccount
	puts        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:      make(map[string]Event),
		persons:     make(map[string]Person),
		memberships: make(map[string]Membership),
		lectures:    make(map[string]Lecture),
		accounts:    make(map[string]UserAccount),
	}
}

func (s *fakeStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func (s *fakeStore) GetEventByCode(_ context.Context, code string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range s.events {
		if event.Code == code {
			return event, nil
		}
	}
	return Event{}, ErrNotFound
}

func (s *fakeStore) ListEvents(context.Context) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]Event, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Code < events[j].Code })
	return events, nil
}

func (s *fakeStore) PutEvent(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
	s.puts++
	return nil
}

func (s *fakeStore) GetPerson(_ context.Context, id string) (Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	person, ok := s.persons[id]
	if !ok {
		return Person{}, ErrNotFound
	}
	return person, nil
}

func (s *fakeStore) GetPersonByLegacyID(_ context.Context, legacyID int64) (Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if legacyID == 0 {
		return Person{}, ErrNotFound
	}
	for _, person := range s.persons {
		if person.LegacyID == legacyID {
			return person, nil
		}
	}
	return Person{}, ErrNotFound
}

func (s *fakeStore) GetPersonByEmail(_ context.Context, email string) (Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = NormalizeEmail(email)
	for _, person := range s.persons {
		if person.Email == email {
			return person, nil
		}
	}
	return Person{}, ErrNotFound
}

func (s *fakeStore) PutPerson(_ context.Context, person Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Same uniqueness rules as the sqlite schema.
	for _, other := range s.persons {
		if other.ID == person.ID {
			continue
		}
		if person.LegacyID != 0 && other.LegacyID == person.LegacyID {
			return fmt.Errorf("put person: legacy id %d already in use", person.LegacyID)
		}
		if other.Email == person.Email {
			return fmt.Errorf("put person: email %s already in use", person.Email)
		}
	}
	s.persons[person.ID] = person
	s.puts++
	return nil
}

func (s *fakeStore) DeletePerson(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[id]; !ok {
		return ErrNotFound
	}
	delete(s.persons, id)
	for mid, m := range s.memberships {
		if m.PersonID == id {
			delete(s.memberships, mid)
		}
	}
	for lid, l := range s.lectures {
		if l.PersonID == id {
			delete(s.lectures, lid)
		}
	}
	for aid, a := range s.accounts {
		if a.PersonID == id {
			delete(s.accounts, aid)
		}
	}
	return nil
}

func (s *fakeStore) GetMembershipByEventAndPerson(_ context.Context, eventID, personID string) (Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.memberships {
		if m.EventID == eventID && m.PersonID == personID {
			return m, nil
		}
	}
	return Membership{}, ErrNotFound
}

func (s *fakeStore) ListMembershipsByEvent(_ context.Context, eventID string) ([]Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Membership
	for _, m := range s.memberships {
		if m.EventID == eventID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) ListMembershipsByPerson(_ context.Context, personID string) ([]Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Membership
	for _, m := range s.memberships {
		if m.PersonID == personID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) PutMembership(_ context.Context, membership Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.memberships {
		if other.ID != membership.ID && other.EventID == membership.EventID && other.PersonID == membership.PersonID {
			return fmt.Errorf("put membership: person %s already holds a membership for event %s", membership.PersonID, membership.EventID)
		}
	}
	s.memberships[membership.ID] = membership
	s.puts++
	return nil
}

func (s *fakeStore) DeleteMembership(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[id]; !ok {
		return ErrNotFound
	}
	delete(s.memberships, id)
	return nil
}

func (s *fakeStore) ListLecturesByPerson(_ context.Context, personID string) ([]Lecture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Lecture
	for _, l := range s.lectures {
		if l.PersonID == personID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) PutLecture(_ context.Context, lecture Lecture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lectures[lecture.ID] = lecture
	s.puts++
	return nil
}

func (s *fakeStore) GetUserAccountByPerson(_ context.Context, personID string) (UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.PersonID == personID {
			return a, nil
		}
	}
	return UserAccount{}, ErrNotFound
}

func (s *fakeStore) PutUserAccount(_ context.Context, account UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.accounts {
		if other.ID != account.ID && other.PersonID == account.PersonID {
			return fmt.Errorf("put user account: person %s already has an account", account.PersonID)
		}
	}
	s.accounts[account.ID] = account
	s.puts++
	return nil
}

var _ Store = (*fakeStore)(nil)

// fakeRemote returns a fixed snapshot, or err when set.
type fakeRemote struct {
	members []RawMember
	err     error
	fetches int
}

func (f *fakeRemote) Fetch(context.Context, Event) ([]RawMember, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.members, nil
}

type fakeNotifier struct {
	changes []MembershipChange
}

func (f *fakeNotifier) Notify(_ context.Context, change MembershipChange) {
	f.changes = append(f.changes, change)
}

type retryCall struct {
	eventCode string
	delay     time.Duration
}

type fakeRetry struct {
	calls []retryCall
}

func (f *fakeRetry) ScheduleRetry(_ context.Context, event Event, delay time.Duration) {
	f.calls = append(f.calls, retryCall{eventCode: event.Code, delay: delay})
}

type fakeReports struct {
	delivered []Report
}

func (f *fakeReports) Deliver(_ context.Context, report Report) {
	f.delivered = append(f.delivered, report)
}
