package domain

import "time"

// ProblemKind classifies one non-fatal condition caught during a run.
type ProblemKind string

// Problem kinds accumulated into the run report.
const (
	ProblemSource       ProblemKind = "source"
	ProblemValidation   ProblemKind = "validation"
	ProblemReassignment ProblemKind = "reassignment"
	ProblemPersistence  ProblemKind = "persistence"
)

// Problem is one reportable condition tied to the record that caused it.
type Problem struct {
	Kind    ProblemKind
	Record  string
	Message string
}

// Report is the accumulated outcome of one sync run. It is delivered to the
// ReportSink exactly once per run, even when the run fails early.
type Report struct {
	EventCode  string
	State      RunState
	StartedAt  time.Time
	FinishedAt time.Time
	Problems   []Problem
}

func (r *Report) add(kind ProblemKind, record, message string) {
	r.Problems = append(r.Problems, Problem{Kind: kind, Record: record, Message: message})
}
