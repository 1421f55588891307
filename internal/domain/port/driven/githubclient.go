package driven

import (
	"context"

	"github.com/dpfaulkner/redline/internal/domain/model"
)

// GitHubClient defines the driven port for read access to the hosting API.
// Everything the engine reads is fetched once per run by the snapshot
// loader and never refreshed mid-run.
type GitHubClient interface {
	// GetPullRequest returns identifying details of the pull request,
	// including the head SHA that new inline comments must anchor to.
	GetPullRequest(ctx context.Context, repoFullName string, prNumber int) (*model.PullRequestRef, error)

	// FetchReviewComments returns every inline review comment on the pull
	// request, roots and replies alike.
	FetchReviewComments(ctx context.Context, repoFullName string, prNumber int) ([]model.Comment, error)

	// FetchIssueComments returns every top-level conversation comment.
	FetchIssueComments(ctx context.Context, repoFullName string, prNumber int) ([]model.Comment, error)

	// FetchReviewThreads returns the classified review threads with remote
	// identities and resolution state. The source is best-effort: on
	// permission or feature gaps implementations return a nil slice and no
	// error, and the engine degrades to flat-comment data alone. An
	// available source with zero threads returns an empty non-nil slice.
	FetchReviewThreads(ctx context.Context, repoFullName string, prNumber int) ([]model.ReviewThread, error)

	// FetchChangedFiles returns the pull request's file listing with
	// unified-diff patch text where the API provides it.
	FetchChangedFiles(ctx context.Context, repoFullName string, prNumber int) ([]model.ChangedFile, error)
}
