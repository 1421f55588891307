// Package sqlite implements the JournalStore port on an embedded SQLite
// database using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dpfaulkner/redline/internal/domain/model"
	"github.com/dpfaulkner/redline/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.JournalStore = (*JournalRepo)(nil)

// JournalRepo is the SQLite implementation of the JournalStore port interface.
type JournalRepo struct {
	db *DB
}

// NewJournalRepo creates a new JournalRepo backed by the given DB.
func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// RecordRun inserts the run row at session start.
func (r *JournalRepo) RecordRun(ctx context.Context, run model.ReviewRun) error {
	const query = `
		INSERT INTO runs (id, repo, pr_number, bot_login, started_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		run.ID, run.Repo, run.PRNumber, run.BotLogin, run.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	return nil
}

// FinishRun stamps the run's finish time at session end.
func (r *JournalRepo) FinishRun(ctx context.Context, runID string, finishedAt time.Time) error {
	const query = `UPDATE runs SET finished_at = ? WHERE id = ?`

	_, err := r.db.Writer.ExecContext(ctx, query, finishedAt.UTC(), runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}

	return nil
}

// RecordDecision appends one routed decision to the run's journal.
func (r *JournalRepo) RecordDecision(ctx context.Context, d model.Decision) error {
	const query = `
		INSERT INTO decisions (
			run_id, op, path, line, side, target_id,
			ok, outcome, message, comment_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	ok := 0
	if d.OK {
		ok = 1
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		d.RunID, d.Op, d.Path, d.Line, string(d.Side), d.TargetID,
		ok, d.Outcome, d.Message, d.CommentID, d.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert decision for run %s: %w", d.RunID, err)
	}

	return nil
}

// ListRuns returns the most recent runs, newest first.
func (r *JournalRepo) ListRuns(ctx context.Context, limit int) ([]model.ReviewRun, error) {
	const query = `
		SELECT id, repo, pr_number, bot_login, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.ReviewRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ListDecisions returns a run's decisions in insertion order.
func (r *JournalRepo) ListDecisions(ctx context.Context, runID string) ([]model.Decision, error) {
	const query = `
		SELECT id, run_id, op, path, line, side, target_id,
		       ok, outcome, message, comment_id, created_at
		FROM decisions
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query decisions for run %s: %w", runID, err)
	}
	defer rows.Close()

	var decisions []model.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		decisions = append(decisions, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}

	return decisions, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.ReviewRun, error) {
	var run model.ReviewRun
	var startedAt string
	var finishedAt sql.NullString

	err := s.Scan(&run.ID, &run.Repo, &run.PRNumber, &run.BotLogin, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}

	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = &t
	}

	return &run, nil
}

func scanDecision(s scanner) (*model.Decision, error) {
	var d model.Decision
	var side string
	var ok int
	var createdAt string

	err := s.Scan(
		&d.ID, &d.RunID, &d.Op, &d.Path, &d.Line, &side, &d.TargetID,
		&ok, &d.Outcome, &d.Message, &d.CommentID, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	d.Side = model.Side(side)
	d.OK = ok != 0

	d.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &d, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
