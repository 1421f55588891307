package model

import "time"

// Comment is one existing comment on the reviewed pull request, either an
// inline review comment anchored to a diff position or a top-level
// conversation comment. The engine fetches the full flat list once per run
// and treats it as read-only.
type Comment struct {
	ID          int64
	Kind        CommentKind
	Author      string
	AuthorKind  AuthorKind
	Body        string
	Path        string // Inline comments only.
	Line        int    // Inline comments only.
	Side        Side   // Inline comments only; empty on legacy records.
	InReplyToID *int64 // Set on replies within a review thread.
	CreatedAt   time.Time
	UpdatedAt   time.Time
	URL         string
}

// IsReply reports whether the comment is a reply inside an existing thread
// rather than a thread root.
func (c Comment) IsReply() bool {
	return c.InReplyToID != nil && *c.InReplyToID != 0
}

// Anchored reports whether the comment carries a usable diff anchor.
func (c Comment) Anchored() bool {
	return c.Kind == CommentKindInline && c.Path != "" && c.Line > 0
}
