package app

import (
	"context"
	"log"

	"github.com/cadieux/rostersync/internal/services/roster/domain"
)

// LogReportSink writes each run report to the process log. Staff alerting
// reads the same log stream; the engine only guarantees the report is
// emitted exactly once per run.
type LogReportSink struct {
	logf func(format string, args ...any)
}

// NewLogReportSink builds the default report sink.
func NewLogReportSink() *LogReportSink {
	return &LogReportSink{logf: log.Printf}
}

// Deliver logs the run summary and every accumulated problem.
func (s *LogReportSink) Deliver(_ context.Context, report domain.Report) {
	if s == nil {
		return
	}
	logf := s.logf
	if logf == nil {
		logf = log.Printf
	}
	logf("sync report for %s: state=%s problems=%d duration=%s",
		report.EventCode, report.State, len(report.Problems),
		report.FinishedAt.Sub(report.StartedAt))
	for _, problem := range report.Problems {
		logf("sync problem for %s: [%s] %s: %s", report.EventCode, problem.Kind, problem.Record, problem.Message)
	}
}

var _ domain.ReportSink = (*LogReportSink)(nil)
