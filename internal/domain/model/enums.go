package model

// Side identifies which version of a file a diff line belongs to, using the
// GitHub API wire values.
type Side string

const (
	SideLeft  Side = "LEFT"  // Old file version: removed and context lines.
	SideRight Side = "RIGHT" // New file version: added and context lines.
)

// Valid reports whether s is one of the two wire values.
func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

// CommentKind distinguishes the two remote resource kinds a comment id can
// belong to. The kinds live behind different API endpoints, so routing an
// update requires knowing (or guessing) the kind.
type CommentKind string

const (
	CommentKindInline   CommentKind = "inline"    // Review comment anchored to a diff position.
	CommentKindTopLevel CommentKind = "top_level" // Conversation comment on the pull request.
)

// AuthorKind is the account classification reported by the hosting API.
type AuthorKind string

const (
	AuthorKindUser    AuthorKind = "user"
	AuthorKindBot     AuthorKind = "bot"
	AuthorKindUnknown AuthorKind = ""
)
