package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dpfaulkner/redline/internal/domain/model"
	"github.com/dpfaulkner/redline/internal/domain/port/driven"
)

// graphqlHTTPClient is the HTTP client used for GraphQL requests.
// It enforces a 30-second timeout as a safety net alongside context cancellation.
var graphqlHTTPClient = &http.Client{Timeout: 30 * time.Second}

const reviewThreadsQuery = `query($owner: String!, $repo: String!, $pr: Int!, $cursor: String) {
	repository(owner: $owner, name: $repo) {
		pullRequest(number: $pr) {
			reviewThreads(first: 100, after: $cursor) {
				pageInfo {
					hasNextPage
					endCursor
				}
				nodes {
					id
					isResolved
					isOutdated
					path
					line
					diffSide
					comments(first: 100) {
						totalCount
						nodes {
							databaseId
							url
							updatedAt
							author { login }
						}
					}
				}
			}
		}
	}
}`

const resolveThreadMutation = `mutation($id: ID!) {
	resolveReviewThread(input: {threadId: $id}) {
		thread { isResolved }
	}
}`

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphqlError is one entry of a GraphQL error array. Type carries the
// machine-readable class ("FORBIDDEN", "NOT_FOUND") when the API supplies one.
type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type threadCommentNode struct {
	DatabaseID int64     `json:"databaseId"`
	URL        string    `json:"url"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Author     struct {
		Login string `json:"login"`
	} `json:"author"`
}

type reviewThreadsResponse struct {
	Data struct {
		Repository struct {
			PullRequest struct {
				ReviewThreads struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						ID         string `json:"id"`
						IsResolved bool   `json:"isResolved"`
						IsOutdated bool   `json:"isOutdated"`
						Path       string `json:"path"`
						Line       int    `json:"line"`
						DiffSide   string `json:"diffSide"`
						Comments   struct {
							TotalCount int                 `json:"totalCount"`
							Nodes      []threadCommentNode `json:"nodes"`
						} `json:"comments"`
					} `json:"nodes"`
				} `json:"reviewThreads"`
			} `json:"pullRequest"`
		} `json:"repository"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// FetchReviewThreads queries the GraphQL API for the pull request's classified
// review threads, the only source of thread remote identities and resolution
// state.
//
// The source is best-effort: tokens without GraphQL scope and GitHub Enterprise
// instances predating the reviewThreads connection must not fail the run, so
// every failure path logs a warning and returns a nil slice with no error. The
// engine degrades to flat-comment reconciliation. An available source with
// zero threads returns an empty non-nil slice.
func (c *Client) FetchReviewThreads(ctx context.Context, repoFullName string, prNumber int) ([]model.ReviewThread, error) {
	if c.token == "" {
		return nil, nil
	}

	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, nil
	}

	threads := []model.ReviewThread{}
	cursor := ""

	for {
		var gqlResp reviewThreadsResponse
		err := c.graphql(ctx, reviewThreadsQuery, map[string]any{
			"owner":  owner,
			"repo":   repo,
			"pr":     prNumber,
			"cursor": cursorOrNil(cursor),
		}, &gqlResp)
		if err != nil {
			slog.Warn("graphql: review thread fetch failed, degrading to flat comments",
				"error", err, "repo", repoFullName, "pr", prNumber)
			return nil, nil
		}
		if len(gqlResp.Errors) > 0 {
			slog.Warn("graphql: review thread response contains errors, degrading to flat comments",
				"type", gqlResp.Errors[0].Type,
				"message", gqlResp.Errors[0].Message,
				"repo", repoFullName,
				"pr", prNumber,
			)
			return nil, nil
		}

		conn := gqlResp.Data.Repository.PullRequest.ReviewThreads
		for _, node := range conn.Nodes {
			if len(node.Comments.Nodes) == 0 || node.Comments.Nodes[0].DatabaseID == 0 {
				continue
			}
			root := node.Comments.Nodes[0]
			last := node.Comments.Nodes[len(node.Comments.Nodes)-1]

			threads = append(threads, model.ReviewThread{
				RemoteID:      node.ID,
				RootCommentID: root.DatabaseID,
				Path:          node.Path,
				Line:          node.Line,
				Side:          model.Side(node.DiffSide),
				IsResolved:    node.IsResolved,
				IsOutdated:    node.IsOutdated,
				LastActor:     last.Author.Login,
				LastActivity:  last.UpdatedAt,
				CommentCount:  node.Comments.TotalCount,
				URL:           root.URL,
			})
		}

		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}

	slog.Debug("graphql: review threads fetched", "repo", repoFullName, "pr", prNumber, "count", len(threads))
	return threads, nil
}

type resolveThreadResponse struct {
	Data struct {
		ResolveReviewThread struct {
			Thread struct {
				IsResolved bool `json:"isResolved"`
			} `json:"thread"`
		} `json:"resolveReviewThread"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// ResolveReviewThread marks the thread with the given GraphQL node identity as
// resolved. Unlike thread fetching this is a write and its failures propagate:
// permission errors are wrapped as driven.ErrPermissionDenied so the resolve
// workflow can downgrade to a reply-only outcome.
func (c *Client) ResolveReviewThread(ctx context.Context, threadRemoteID string) error {
	if c.token == "" {
		return fmt.Errorf("resolving thread %s: %w: no token configured", threadRemoteID, driven.ErrPermissionDenied)
	}

	var gqlResp resolveThreadResponse
	err := c.graphql(ctx, resolveThreadMutation, map[string]any{"id": threadRemoteID}, &gqlResp)
	if err != nil {
		return fmt.Errorf("resolving thread %s: %w", threadRemoteID, err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("resolving thread %s: %w", threadRemoteID, classifyGraphQLError(gqlResp.Errors[0]))
	}

	return nil
}

// graphql posts one GraphQL request and decodes the response into out.
// Non-200 statuses are returned as errors; GraphQL-level errors are left in
// out for the caller to interpret.
func (c *Client) graphql(ctx context.Context, query string, variables map[string]any, out any) error {
	bodyBytes, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshaling graphql request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating graphql request: %w", err)
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("bearer %s", c.token))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := graphqlHTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("graphql request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("graphql: HTTP %d: %w", resp.StatusCode, driven.ErrPermissionDenied)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("graphql: HTTP %d: %w", resp.StatusCode, driven.ErrRateLimited)
	default:
		return fmt.Errorf("graphql: HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding graphql response: %w", err)
	}

	return nil
}

// classifyGraphQLError maps a GraphQL error entry to the port's error kinds.
// GraphQL reports permission failures inside a 200 response, not as an HTTP
// status.
func classifyGraphQLError(e graphqlError) error {
	switch e.Type {
	case "FORBIDDEN":
		return fmt.Errorf("%w: %s", driven.ErrPermissionDenied, e.Message)
	case "NOT_FOUND":
		return fmt.Errorf("%w: %s", driven.ErrNotFound, e.Message)
	}
	msg := strings.ToLower(e.Message)
	if strings.Contains(msg, "permission") || strings.Contains(msg, "not accessible") {
		return fmt.Errorf("%w: %s", driven.ErrPermissionDenied, e.Message)
	}
	return fmt.Errorf("graphql error: %s", e.Message)
}

// cursorOrNil converts the empty first-page cursor into a JSON null, which
// the GraphQL after argument requires.
func cursorOrNil(cursor string) any {
	if cursor == "" {
		return nil
	}
	return cursor
}
