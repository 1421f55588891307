package model

import "time"

// ReviewRun is one serve session against a single pull request, journaled
// for audit. ID is a UUID minted at session start.
type ReviewRun struct {
	ID         string
	Repo       string
	PRNumber   int
	BotLogin   string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Decision is one journaled routing decision. Outcome holds the WriteKind on
// success or the RefusalReason on refusal; transport failures record the
// error text in Message with OK=false and an empty Outcome.
type Decision struct {
	ID        int64
	RunID     string
	Op        string
	Path      string
	Line      int
	Side      Side
	TargetID  int64
	OK        bool
	Outcome   string
	Message   string
	CommentID int64
	CreatedAt time.Time
}
