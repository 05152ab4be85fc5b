// Package sqlite provides the SQLite-backed local roster mirror.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cadieux/rostersync/internal/platform/storage/sqlitemigrate"
	"github.com/cadieux/rostersync/internal/services/roster/domain"
	"github.com/cadieux/rostersync/internal/services/roster/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists the local roster mirror.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a roster SQLite store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func encodeTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func decodeTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func encodeBool(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetEventByCode loads one event by its human-readable code.
func (s *Store) GetEventByCode(ctx context.Context, code string) (domain.Event, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Event{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, code, name, time_zone, start_date, end_date, max_participants, max_observers, max_virtual
FROM events
WHERE code = ?
`, strings.TrimSpace(code))
	return scanEvent(row)
}

// ListEvents lists all events ordered by code.
func (s *Store) ListEvents(ctx context.Context) ([]domain.Event, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, code, name, time_zone, start_date, end_date, max_participants, max_observers, max_virtual
FROM events
ORDER BY code
`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// PutEvent inserts or updates one event.
func (s *Store) PutEvent(ctx context.Context, event domain.Event) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(event.Code) == "" {
		return fmt.Errorf("event code is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO events (id, code, name, time_zone, start_date, end_date, max_participants, max_observers, max_virtual)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    code = excluded.code,
    name = excluded.name,
    time_zone = excluded.time_zone,
    start_date = excluded.start_date,
    end_date = excluded.end_date,
    max_participants = excluded.max_participants,
    max_observers = excluded.max_observers,
    max_virtual = excluded.max_virtual
`,
		event.ID,
		event.Code,
		event.Name,
		event.TimeZone,
		encodeTime(event.StartDate),
		encodeTime(event.EndDate),
		event.MaxParticipants,
		event.MaxObservers,
		event.MaxVirtual,
	)
	if err != nil {
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var event domain.Event
	var startDate, endDate int64
	err := row.Scan(
		&event.ID,
		&event.Code,
		&event.Name,
		&event.TimeZone,
		&startDate,
		&endDate,
		&event.MaxParticipants,
		&event.MaxObservers,
		&event.MaxVirtual,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("scan event: %w", err)
	}
	event.StartDate = decodeTime(startDate)
	event.EndDate = decodeTime(endDate)
	return event, nil
}

const personColumns = `id, legacy_id, email, cc_email, first_name, last_name, affiliation, title, url, bio, academic_status, phd_year, gender, updated_by, updated_at`

// GetPerson loads one person by local id.
func (s *Store) GetPerson(ctx context.Context, id string) (domain.Person, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Person{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	return scanPerson(row)
}

// GetPersonByLegacyID loads one person by the registry's stable id.
func (s *Store) GetPersonByLegacyID(ctx context.Context, legacyID int64) (domain.Person, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Person{}, err
	}
	if legacyID == 0 {
		return domain.Person{}, domain.ErrNotFound
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE legacy_id = ?`, legacyID)
	return scanPerson(row)
}

// GetPersonByEmail loads one person by normalized email.
func (s *Store) GetPersonByEmail(ctx context.Context, email string) (domain.Person, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Person{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE email = ?`, domain.NormalizeEmail(email))
	return scanPerson(row)
}

// PutPerson inserts or updates one person.
func (s *Store) PutPerson(ctx context.Context, person domain.Person) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := person.Validate(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO people (`+personColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    legacy_id = excluded.legacy_id,
    email = excluded.email,
    cc_email = excluded.cc_email,
    first_name = excluded.first_name,
    last_name = excluded.last_name,
    affiliation = excluded.affiliation,
    title = excluded.title,
    url = excluded.url,
    bio = excluded.bio,
    academic_status = excluded.academic_status,
    phd_year = excluded.phd_year,
    gender = excluded.gender,
    updated_by = excluded.updated_by,
    updated_at = excluded.updated_at
`,
		person.ID,
		person.LegacyID,
		domain.NormalizeEmail(person.Email),
		person.CCEmail,
		person.FirstName,
		person.LastName,
		person.Affiliation,
		person.Title,
		person.URL,
		person.Bio,
		person.AcademicStatus,
		person.PhDYear,
		person.Gender,
		person.UpdatedBy,
		encodeTime(person.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put person: %w", err)
	}
	return nil
}

// DeletePerson removes one person; dependent rows cascade.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPerson(row rowScanner) (domain.Person, error) {
	var person domain.Person
	var updatedAt int64
	err := row.Scan(
		&person.ID,
		&person.LegacyID,
		&person.Email,
		&person.CCEmail,
		&person.FirstName,
		&person.LastName,
		&person.Affiliation,
		&person.Title,
		&person.URL,
		&person.Bio,
		&person.AcademicStatus,
		&person.PhDYear,
		&person.Gender,
		&person.UpdatedBy,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Person{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Person{}, fmt.Errorf("scan person: %w", err)
	}
	person.UpdatedAt = decodeTime(updatedAt)
	return person, nil
}

const membershipColumns = `id, event_id, person_id, role, attendance, share_email, own_accommodation, has_guest, replied_at, updated_by, updated_at`

// GetMembershipByEventAndPerson loads the membership for one (event, person)
// pair.
func (s *Store) GetMembershipByEventAndPerson(ctx context.Context, eventID, personID string) (domain.Membership, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Membership{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+membershipColumns+` FROM memberships WHERE event_id = ? AND person_id = ?
`, eventID, personID)
	return scanMembership(row)
}

// ListMembershipsByEvent lists one event's roster.
func (s *Store) ListMembershipsByEvent(ctx context.Context, eventID string) ([]domain.Membership, error) {
	return s.listMemberships(ctx, `event_id`, eventID)
}

// ListMembershipsByPerson lists every membership held by one person.
func (s *Store) ListMembershipsByPerson(ctx context.Context, personID string) ([]domain.Membership, error) {
	return s.listMemberships(ctx, `person_id`, personID)
}

func (s *Store) listMemberships(ctx context.Context, column, value string) ([]domain.Membership, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+membershipColumns+` FROM memberships WHERE `+column+` = ? ORDER BY id
`, value)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []domain.Membership
	for rows.Next() {
		membership, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return memberships, nil
}

// PutMembership inserts or updates one membership.
func (s *Store) PutMembership(ctx context.Context, membership domain.Membership) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := membership.Validate(); err != nil {
		return err
	}
	var repliedAt any
	if membership.RepliedAt != nil {
		repliedAt = encodeTime(*membership.RepliedAt)
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO memberships (`+membershipColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    event_id = excluded.event_id,
    person_id = excluded.person_id,
    role = excluded.role,
    attendance = excluded.attendance,
    share_email = excluded.share_email,
    own_accommodation = excluded.own_accommodation,
    has_guest = excluded.has_guest,
    replied_at = excluded.replied_at,
    updated_by = excluded.updated_by,
    updated_at = excluded.updated_at
`,
		membership.ID,
		membership.EventID,
		membership.PersonID,
		string(membership.Role),
		string(membership.Attendance),
		encodeBool(membership.ShareEmail),
		encodeBool(membership.OwnAccommodation),
		encodeBool(membership.HasGuest),
		repliedAt,
		membership.UpdatedBy,
		encodeTime(membership.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put membership: %w", err)
	}
	return nil
}

// DeleteMembership removes one membership by id.
func (s *Store) DeleteMembership(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM memberships WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMembership(row rowScanner) (domain.Membership, error) {
	var membership domain.Membership
	var shareEmail, ownAccommodation, hasGuest int
	var repliedAt sql.NullInt64
	var updatedAt int64
	err := row.Scan(
		&membership.ID,
		&membership.EventID,
		&membership.PersonID,
		(*string)(&membership.Role),
		(*string)(&membership.Attendance),
		&shareEmail,
		&ownAccommodation,
		&hasGuest,
		&repliedAt,
		&membership.UpdatedBy,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Membership{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Membership{}, fmt.Errorf("scan membership: %w", err)
	}
	membership.ShareEmail = shareEmail != 0
	membership.OwnAccommodation = ownAccommodation != 0
	membership.HasGuest = hasGuest != 0
	if repliedAt.Valid {
		replied := decodeTime(repliedAt.Int64)
		membership.RepliedAt = &replied
	}
	membership.UpdatedAt = decodeTime(updatedAt)
	return membership, nil
}

// ListLecturesByPerson lists every lecture owned by one person.
func (s *Store) ListLecturesByPerson(ctx context.Context, personID string) ([]domain.Lecture, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, event_id, person_id, title, starts_at, ends_at FROM lectures WHERE person_id = ? ORDER BY starts_at, id
`, personID)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	defer rows.Close()

	var lectures []domain.Lecture
	for rows.Next() {
		var lecture domain.Lecture
		var startsAt, endsAt int64
		if err := rows.Scan(&lecture.ID, &lecture.EventID, &lecture.PersonID, &lecture.Title, &startsAt, &endsAt); err != nil {
			return nil, fmt.Errorf("scan lecture: %w", err)
		}
		lecture.StartsAt = decodeTime(startsAt)
		lecture.EndsAt = decodeTime(endsAt)
		lectures = append(lectures, lecture)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lectures: %w", err)
	}
	return lectures, nil
}

// PutLecture inserts or updates one lecture.
func (s *Store) PutLecture(ctx context.Context, lecture domain.Lecture) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(lecture.ID) == "" {
		return fmt.Errorf("lecture id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO lectures (id, event_id, person_id, title, starts_at, ends_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    event_id = excluded.event_id,
    person_id = excluded.person_id,
    title = excluded.title,
    starts_at = excluded.starts_at,
    ends_at = excluded.ends_at
`,
		lecture.ID,
		lecture.EventID,
		lecture.PersonID,
		lecture.Title,
		encodeTime(lecture.StartsAt),
		encodeTime(lecture.EndsAt),
	)
	if err != nil {
		return fmt.Errorf("put lecture: %w", err)
	}
	return nil
}

// GetUserAccountByPerson loads the login account linked to one person.
func (s *Store) GetUserAccountByPerson(ctx context.Context, personID string) (domain.UserAccount, error) {
	if err := s.ready(ctx); err != nil {
		return domain.UserAccount{}, err
	}
	var account domain.UserAccount
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, person_id, email FROM user_accounts WHERE person_id = ?
`, personID).Scan(&account.ID, &account.PersonID, &account.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserAccount{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserAccount{}, fmt.Errorf("scan user account: %w", err)
	}
	return account, nil
}

// PutUserAccount inserts or updates one login account.
func (s *Store) PutUserAccount(ctx context.Context, account domain.UserAccount) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(account.ID) == "" {
		return fmt.Errorf("user account id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO user_accounts (id, person_id, email)
VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    person_id = excluded.person_id,
    email = excluded.email
`,
		account.ID,
		account.PersonID,
		account.Email,
	)
	if err != nil {
		return fmt.Errorf("put user account: %w", err)
	}
	return nil
}

// AppendMembershipChange persists one field transition from a sync run's
// change notifications.
func (s *Store) AppendMembershipChange(ctx context.Context, change domain.MembershipChange, field domain.FieldChange) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(change.MembershipID) == "" {
		return fmt.Errorf("membership id is required")
	}
	occurredAt := change.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO membership_changes (membership_id, event_code, person_name, field, old_value, new_value, occurred_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		change.MembershipID,
		change.EventCode,
		change.PersonName,
		field.Field,
		field.From,
		field.To,
		encodeTime(occurredAt),
	)
	if err != nil {
		return fmt.Errorf("append membership change: %w", err)
	}
	return nil
}

// CountMembershipChanges reports how many change rows exist for one
// membership.
func (s *Store) CountMembershipChanges(ctx context.Context, membershipID string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var count int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(1) FROM membership_changes WHERE membership_id = ?
`, membershipID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count membership changes: %w", err)
	}
	return count, nil
}

var _ domain.Store = (*Store)(nil)
