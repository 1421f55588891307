package driven

import (
	"context"
	"time"

	"github.com/dpfaulkner/redline/internal/domain/model"
)

// JournalStore defines the driven port for the run/decision audit journal.
// The application records every routed decision here and treats journal
// failures as non-fatal: auditing never blocks reviewing.
type JournalStore interface {
	// RecordRun inserts the run row at session start.
	RecordRun(ctx context.Context, run model.ReviewRun) error

	// FinishRun stamps the run's finish time at session end.
	FinishRun(ctx context.Context, runID string, finishedAt time.Time) error

	// RecordDecision appends one routed decision to the run's journal.
	RecordDecision(ctx context.Context, d model.Decision) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]model.ReviewRun, error)

	// ListDecisions returns a run's decisions in insertion order.
	ListDecisions(ctx context.Context, runID string) ([]model.Decision, error)
}
