package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/dpfaulkner/redline/internal/domain/model"
	"github.com/dpfaulkner/redline/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubWriter = (*Client)(nil)

// ValidateToken verifies that the given GitHub personal access token is valid
// and returns the authenticated login on success. It creates a one-shot
// client with the provided token to avoid mutating the receiver's state.
func (c *Client) ValidateToken(ctx context.Context, token string) (string, error) {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	tempClient := gh.NewClient(httpClient).WithAuthToken(token)
	user, _, err := tempClient.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("token validation failed: %w", err)
	}
	return user.GetLogin(), nil
}

// CreateReviewComment opens a new inline review thread at (path, line, side),
// anchored to commitSHA, and returns the new root comment's id.
func (c *Client) CreateReviewComment(ctx context.Context, repoFullName string, prNumber int, commitSHA, path string, line int, side model.Side, body string) (int64, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return 0, err
	}

	comment := &gh.PullRequestComment{
		Body:     gh.Ptr(body),
		CommitID: gh.Ptr(commitSHA),
		Path:     gh.Ptr(path),
		Line:     gh.Ptr(line),
		Side:     gh.Ptr(string(side)),
	}

	created, resp, err := c.gh.PullRequests.CreateComment(ctx, owner, repo, prNumber, comment)
	if err != nil {
		return 0, classify(fmt.Sprintf("creating review comment at %s:%d on %s#%d", path, line, repoFullName, prNumber), err)
	}

	logRateLimit(resp, repoFullName+"/create-review-comment", 0, 1)
	return created.GetID(), nil
}

// CreateReviewCommentReply posts a reply to the thread rooted at rootID and
// returns the new comment's id. rootID must be a thread root; the API rejects
// reply ids with a 404.
func (c *Client) CreateReviewCommentReply(ctx context.Context, repoFullName string, prNumber int, rootID int64, body string) (int64, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return 0, err
	}

	created, resp, err := c.gh.PullRequests.CreateCommentInReplyTo(ctx, owner, repo, prNumber, body, rootID)
	if err != nil {
		return 0, classify(fmt.Sprintf("replying to comment %d on %s#%d", rootID, repoFullName, prNumber), err)
	}

	logRateLimit(resp, repoFullName+"/reply-comment", 0, 1)
	return created.GetID(), nil
}

// UpdateReviewComment rewrites an inline review comment's body in place.
func (c *Client) UpdateReviewComment(ctx context.Context, repoFullName string, commentID int64, body string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	_, resp, err := c.gh.PullRequests.EditComment(ctx, owner, repo, commentID, &gh.PullRequestComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return classify(fmt.Sprintf("updating review comment %d on %s", commentID, repoFullName), err)
	}

	logRateLimit(resp, repoFullName+"/edit-review-comment", 0, 1)
	return nil
}

// CreateIssueComment posts a top-level conversation comment and returns its id.
func (c *Client) CreateIssueComment(ctx context.Context, repoFullName string, prNumber int, body string) (int64, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return 0, err
	}

	created, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, prNumber, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return 0, classify(fmt.Sprintf("creating issue comment on %s#%d", repoFullName, prNumber), err)
	}

	logRateLimit(resp, repoFullName+"/create-issue-comment", 0, 1)
	return created.GetID(), nil
}

// UpdateIssueComment rewrites a top-level comment's body in place.
func (c *Client) UpdateIssueComment(ctx context.Context, repoFullName string, commentID int64, body string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	_, resp, err := c.gh.Issues.EditComment(ctx, owner, repo, commentID, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return classify(fmt.Sprintf("updating issue comment %d on %s", commentID, repoFullName), err)
	}

	logRateLimit(resp, repoFullName+"/edit-issue-comment", 0, 1)
	return nil
}

// classify wraps a go-github error into the port's error kinds so the
// application layer can branch with errors.Is. Unrecognized failures are
// wrapped as-is.
func classify(op string, err error) error {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w: %v", op, driven.ErrRateLimited, err)
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			return fmt.Errorf("%s: %w: %v", op, driven.ErrNotFound, err)
		case http.StatusUnprocessableEntity:
			return fmt.Errorf("%s: %w: %v", op, driven.ErrValidation, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w: %v", op, driven.ErrPermissionDenied, err)
		case http.StatusForbidden:
			// 403 is both "no permission" and "secondary rate limit"; the
			// message is the only discriminator.
			if strings.Contains(strings.ToLower(ghErr.Message), "rate limit") {
				return fmt.Errorf("%s: %w: %v", op, driven.ErrRateLimited, err)
			}
			return fmt.Errorf("%s: %w: %v", op, driven.ErrPermissionDenied, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
