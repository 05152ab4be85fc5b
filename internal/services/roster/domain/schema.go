package domain

// FieldKind is the declared type of one remote field. The remote registry
// sends everything as loosely typed strings; the schema below is the single
// authority on how each field coerces, so typing is never inferred from the
// payload.
type FieldKind int

// Remote field kinds.
const (
	FieldString FieldKind = iota
	FieldInt
	FieldBool
	FieldTime
)

// ZeroDate is the registry's sentinel for "timestamp never set". It always
// normalizes to absent, never to the epoch.
const ZeroDate = "0000-00-00 00:00:00"

// DefaultUpdatedBy is recorded on rows written by the sync engine when the
// remote record does not name an editor.
const DefaultUpdatedBy = "rostersync importer"

// PersonFieldSchema declares the type of every person field the engine
// accepts from the registry. Unknown fields are dropped.
var PersonFieldSchema = map[string]FieldKind{
	"legacy_id":       FieldInt,
	"email":           FieldString,
	"cc_email":        FieldString,
	"firstname":       FieldString,
	"lastname":        FieldString,
	"affiliation":     FieldString,
	"title":           FieldString,
	"url":             FieldString,
	"biography":       FieldString,
	"academic_status": FieldString,
	"phd_year":        FieldString,
	"gender":          FieldString,
	"updated_by":      FieldString,
	"updated_at":      FieldTime,
}

// MembershipFieldSchema declares the type of every membership field the
// engine accepts from the registry.
var MembershipFieldSchema = map[string]FieldKind{
	"role":              FieldString,
	"attendance":        FieldString,
	"share_email":       FieldBool,
	"own_accommodation": FieldBool,
	"has_guest":         FieldBool,
	"replied_at":        FieldTime,
	"updated_by":        FieldString,
	"updated_at":        FieldTime,
}
