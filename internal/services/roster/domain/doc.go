// Package domain implements the roster synchronization engine: it pulls a
// remote snapshot of an event's members, reconciles it against the local
// mirror, resolves identity collisions, prunes departed members, and reports
// per-record problems once per run.
package domain
