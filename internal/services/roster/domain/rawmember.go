package domain

// RawMember is one member entry exactly as the remote registry returned it:
// two loosely typed field maps, alive only for the duration of one
// reconciliation pass.
type RawMember struct {
	Person     map[string]string
	Membership map[string]string
}
