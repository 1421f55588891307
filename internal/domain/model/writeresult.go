package model

import "time"

// WriteKind names the write a successful operation performed.
type WriteKind string

const (
	WriteCreated        WriteKind = "created"    // New thread root posted.
	WriteReplied        WriteKind = "replied"    // Reply posted to an existing thread.
	WriteUpdated        WriteKind = "updated"    // Body rewritten in place.
	WriteResolved       WriteKind = "resolved"   // Explanation posted and thread resolved.
	WriteReplyOnly      WriteKind = "reply_only" // Resolve explanation posted, mutation denied.
	WriteSummaryCreated WriteKind = "summary_created"
	WriteSummaryUpdated WriteKind = "summary_updated"
)

// RefusalReason classifies a structured refusal.
type RefusalReason string

const (
	RefusalInvalidLocation    RefusalReason = "invalid_location"
	RefusalEmptyBody          RefusalReason = "empty_body"
	RefusalNoDiff             RefusalReason = "no_diff"
	RefusalAmbiguous          RefusalReason = "ambiguous_location"
	RefusalDuplicate          RefusalReason = "duplicate"
	RefusalNotFound           RefusalReason = "not_found"
	RefusalMissingExplanation RefusalReason = "missing_explanation"
	RefusalAlreadyResolved    RefusalReason = "already_resolved"
	RefusalNotOwnThread       RefusalReason = "not_own_thread"
	RefusalNoThreadIdentity   RefusalReason = "no_thread_identity"
	RefusalInvalidSuggestion  RefusalReason = "invalid_suggestion"
)

// Candidate source values for ThreadCandidate.Source.
const (
	CandidateSourceThread  = "thread"  // From the classified thread list.
	CandidateSourceComment = "comment" // Reconstructed from the flat comment list.
)

// ThreadCandidate is one entry of the enumerated candidate set returned with
// an ambiguity refusal, carrying everything the caller needs to pick one.
type ThreadCandidate struct {
	RootCommentID int64     `json:"root_comment_id"`
	RemoteID      string    `json:"thread_remote_id,omitempty"`
	Path          string    `json:"path"`
	Line          int       `json:"line"`
	Side          Side      `json:"side,omitempty"`
	Resolved      bool      `json:"resolved"`
	Outdated      bool      `json:"outdated"`
	LastActor     string    `json:"last_actor,omitempty"`
	LastActivity  time.Time `json:"last_activity"`
	Source        string    `json:"source"`
}

// StepResult reports one step of a multi-step operation. Resolve posts a
// reply, then invokes the remote resolve mutation; the two steps succeed or
// fail independently and no rollback is attempted.
type StepResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// WriteResult is the outcome of one routed operation. OK=false is a normal,
// structured refusal whose Message reads as an instruction to the calling
// reasoning loop; transport failures are returned as errors, never encoded
// as refusals.
type WriteResult struct {
	OK            bool              `json:"ok"`
	Kind          WriteKind         `json:"kind,omitempty"`
	CommentID     int64             `json:"comment_id,omitempty"`
	RootCommentID int64             `json:"root_comment_id,omitempty"`
	Message       string            `json:"message"`
	Reason        RefusalReason     `json:"reason,omitempty"`
	Candidates    []ThreadCandidate `json:"candidates,omitempty"`
	Steps         []StepResult      `json:"steps,omitempty"`
}

// Refuse builds a refusal result carrying an actionable instruction.
func Refuse(reason RefusalReason, message string) WriteResult {
	return WriteResult{Reason: reason, Message: message}
}
