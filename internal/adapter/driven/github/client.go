// Package github implements the GitHubClient and GitHubWriter ports using the
// go-github library, plus a small hand-rolled GraphQL client for the review
// thread surface the REST API does not expose.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/dpfaulkner/redline/internal/domain/model"
	"github.com/dpfaulkner/redline/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient and driven.GitHubWriter ports.
type Client struct {
	gh         *gh.Client
	token      string // Stored for GraphQL Authorization header.
	graphqlURL string // "https://api.github.com/graphql" in production; derived from baseURL in tests.
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{
		gh:         client,
		token:      token,
		graphqlURL: "https://api.github.com/graphql",
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	// Derive graphqlURL from baseURL so httptest servers can intercept GraphQL requests.
	graphqlU := *u
	graphqlU.Path = "/graphql"

	return &Client{
		gh:         client,
		token:      token,
		graphqlURL: graphqlU.String(),
	}, nil
}

// GetPullRequest retrieves the pull request's identifying details, including
// the head SHA new inline comments anchor to.
func (c *Client) GetPullRequest(ctx context.Context, repoFullName string, prNumber int) (*model.PullRequestRef, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, classify(fmt.Sprintf("fetching %s#%d", repoFullName, prNumber), err)
	}

	logRateLimit(resp, repoFullName+"/pr", 0, 1)

	return &model.PullRequestRef{
		Repo:    repoFullName,
		Number:  prNumber,
		Title:   pr.GetTitle(),
		HeadSHA: pr.GetHead().GetSHA(),
		URL:     pr.GetHTMLURL(),
	}, nil
}

// FetchReviewComments retrieves every inline review comment on a pull
// request, roots and replies alike. It handles pagination automatically and
// maps go-github types to domain model types.
func (c *Client) FetchReviewComments(ctx context.Context, repoFullName string, prNumber int) ([]model.Comment, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	var all []model.Comment

	for {
		comments, resp, err := c.gh.PullRequests.ListComments(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("listing review comments for %s#%d (page %d)", repoFullName, prNumber, opts.Page), err)
		}

		logRateLimit(resp, repoFullName+"/review-comments", opts.Page, len(comments))

		for _, comment := range comments {
			all = append(all, mapReviewComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// FetchIssueComments retrieves every top-level conversation comment (from the
// Issues API) on a pull request. It handles pagination automatically and maps
// go-github types to domain model types.
func (c *Client) FetchIssueComments(ctx context.Context, repoFullName string, prNumber int) ([]model.Comment, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	var all []model.Comment

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("listing issue comments for %s#%d (page %d)", repoFullName, prNumber, opts.Page), err)
		}

		logRateLimit(resp, repoFullName+"/issue-comments", opts.Page, len(comments))

		for _, comment := range comments {
			all = append(all, mapIssueComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// FetchChangedFiles retrieves the pull request's file listing with unified
// diff patch text where the API provides it (binary and oversized files come
// back without a patch).
func (c *Client) FetchChangedFiles(ctx context.Context, repoFullName string, prNumber int) ([]model.ChangedFile, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: 100}
	var all []model.ChangedFile

	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("listing changed files for %s#%d (page %d)", repoFullName, prNumber, opts.Page), err)
		}

		logRateLimit(resp, repoFullName+"/files", opts.Page, len(files))

		for _, f := range files {
			all = append(all, model.ChangedFile{
				Path:         f.GetFilename(),
				PreviousPath: f.GetPreviousFilename(),
				Status:       f.GetStatus(),
				Patch:        f.GetPatch(),
				Additions:    f.GetAdditions(),
				Deletions:    f.GetDeletions(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// mapReviewComment converts a go-github PullRequestComment to a domain model
// Comment of the inline kind.
func mapReviewComment(c *gh.PullRequestComment) model.Comment {
	var inReplyTo *int64
	if c.InReplyTo != nil {
		val := c.GetInReplyTo()
		inReplyTo = &val
	}

	return model.Comment{
		ID:          c.GetID(),
		Kind:        model.CommentKindInline,
		Author:      c.GetUser().GetLogin(),
		AuthorKind:  mapAuthorKind(c.GetUser()),
		Body:        c.GetBody(),
		Path:        c.GetPath(),
		Line:        c.GetLine(),
		Side:        model.Side(c.GetSide()),
		InReplyToID: inReplyTo,
		CreatedAt:   c.GetCreatedAt().Time,
		UpdatedAt:   c.GetUpdatedAt().Time,
		URL:         c.GetHTMLURL(),
	}
}

// mapIssueComment converts a go-github IssueComment to a domain model Comment
// of the top-level kind.
func mapIssueComment(c *gh.IssueComment) model.Comment {
	return model.Comment{
		ID:         c.GetID(),
		Kind:       model.CommentKindTopLevel,
		Author:     c.GetUser().GetLogin(),
		AuthorKind: mapAuthorKind(c.GetUser()),
		Body:       c.GetBody(),
		CreatedAt:  c.GetCreatedAt().Time,
		UpdatedAt:  c.GetUpdatedAt().Time,
		URL:        c.GetHTMLURL(),
	}
}

// mapAuthorKind converts the API's account type to the domain classification.
func mapAuthorKind(u *gh.User) model.AuthorKind {
	switch u.GetType() {
	case "Bot":
		return model.AuthorKindBot
	case "User", "Organization":
		return model.AuthorKindUser
	default:
		return model.AuthorKindUnknown
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
