package model

import "time"

// ReviewThread is the hosting API's classified grouping of a root review
// comment and its replies, anchored to a file/line/side. RemoteID is the
// GraphQL node identity required by the resolve mutation; it is empty for
// threads reconstructed from the flat comment list when the classified
// source was unavailable. Side may be empty on legacy or partial records.
type ReviewThread struct {
	RemoteID      string
	RootCommentID int64
	Path          string
	Line          int
	Side          Side
	IsResolved    bool
	IsOutdated    bool
	LastActor     string
	LastActivity  time.Time
	CommentCount  int
	URL           string
}

// Resolvable reports whether the thread can be formally resolved: only
// threads carrying their remote identity support the resolve mutation.
// Threads known solely from the flat comment list can be replied to,
// not resolved.
func (t ReviewThread) Resolvable() bool {
	return t.RemoteID != ""
}
