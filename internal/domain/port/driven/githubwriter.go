package driven

import (
	"context"

	"github.com/dpfaulkner/redline/internal/domain/model"
)

// GitHubWriter defines the driven port for write access to the hosting API.
// It is intentionally separate from GitHubClient (read operations) following
// the Interface Segregation Principle. Implementations wrap remote failures
// into the error kinds declared in this package so the application layer can
// branch with errors.Is.
type GitHubWriter interface {
	// CreateReviewComment opens a new inline thread at (path, line, side),
	// anchored to commitSHA. Returns the new root comment's id.
	CreateReviewComment(ctx context.Context, repoFullName string, prNumber int, commitSHA, path string, line int, side model.Side, body string) (int64, error)

	// CreateReviewCommentReply posts a reply to the thread rooted at rootID.
	// rootID must be the thread's root comment id; the API rejects reply ids.
	CreateReviewCommentReply(ctx context.Context, repoFullName string, prNumber int, rootID int64, body string) (int64, error)

	// UpdateReviewComment rewrites an inline comment's body in place.
	UpdateReviewComment(ctx context.Context, repoFullName string, commentID int64, body string) error

	// CreateIssueComment posts a top-level conversation comment.
	CreateIssueComment(ctx context.Context, repoFullName string, prNumber int, body string) (int64, error)

	// UpdateIssueComment rewrites a top-level comment's body in place.
	UpdateIssueComment(ctx context.Context, repoFullName string, commentID int64, body string) error

	// ResolveReviewThread marks the thread with the given remote identity as
	// resolved. threadRemoteID is the GraphQL node id carried by
	// model.ReviewThread, not a comment database id.
	ResolveReviewThread(ctx context.Context, threadRemoteID string) error

	// ValidateToken verifies that the given personal access token is valid
	// and returns the authenticated login on success.
	ValidateToken(ctx context.Context, token string) (string, error)
}
