// Package application contains the comment-placement and thread-reconciliation
// engine: one immutable snapshot of the pull request's review state, lookup
// indices derived from it, and the routing service that turns write attempts
// into exactly one remote call each.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dpfaulkner/redline/internal/domain/model"
	"github.com/dpfaulkner/redline/internal/domain/port/driven"
)

// Snapshot is the engine's one upfront read of a pull request: head ref, the
// merged flat comment list (both resource kinds), the best-effort classified
// thread list, and the changed files with their patch text. It is built once
// per run and never refreshed; writes issued mid-run mutate only the remote
// system and are not visible to later lookups in the same run.
type Snapshot struct {
	PR       model.PullRequestRef
	Comments []model.Comment
	// Threads is nil when the classified source was unavailable (permission
	// or feature gap) and an empty non-nil slice when it was reachable but
	// held nothing. The index builder treats the two differently only for
	// logging; lookups degrade to flat-comment data either way.
	Threads []model.ReviewThread
	Files   []model.ChangedFile

	fileByPath map[string]model.ChangedFile
}

// LoadSnapshot performs the run's single upfront read against the hosting
// API. Thread fetching is best-effort and degrades to nil without failing
// the load; every other fetch is required.
func LoadSnapshot(ctx context.Context, reader driven.GitHubClient, repoFullName string, prNumber int) (*Snapshot, error) {
	pr, err := reader.GetPullRequest(ctx, repoFullName, prNumber)
	if err != nil {
		return nil, fmt.Errorf("loading pull request %s#%d: %w", repoFullName, prNumber, err)
	}

	reviewComments, err := reader.FetchReviewComments(ctx, repoFullName, prNumber)
	if err != nil {
		return nil, fmt.Errorf("loading review comments for %s#%d: %w", repoFullName, prNumber, err)
	}

	issueComments, err := reader.FetchIssueComments(ctx, repoFullName, prNumber)
	if err != nil {
		return nil, fmt.Errorf("loading issue comments for %s#%d: %w", repoFullName, prNumber, err)
	}

	threads, err := reader.FetchReviewThreads(ctx, repoFullName, prNumber)
	if err != nil {
		return nil, fmt.Errorf("loading review threads for %s#%d: %w", repoFullName, prNumber, err)
	}
	if threads == nil {
		slog.Warn("classified thread source unavailable, degrading to flat comments",
			"repo", repoFullName,
			"pr", prNumber,
		)
	}

	files, err := reader.FetchChangedFiles(ctx, repoFullName, prNumber)
	if err != nil {
		return nil, fmt.Errorf("loading changed files for %s#%d: %w", repoFullName, prNumber, err)
	}

	comments := make([]model.Comment, 0, len(reviewComments)+len(issueComments))
	comments = append(comments, reviewComments...)
	comments = append(comments, issueComments...)

	snap := NewSnapshot(*pr, comments, threads, files)

	slog.Info("snapshot loaded",
		"repo", repoFullName,
		"pr", prNumber,
		"head_sha", pr.HeadSHA,
		"comments", len(comments),
		"threads", len(threads),
		"files", len(files),
	)

	return snap, nil
}

// NewSnapshot assembles a snapshot from already-fetched data. Used directly
// by tests; production code goes through LoadSnapshot.
func NewSnapshot(pr model.PullRequestRef, comments []model.Comment, threads []model.ReviewThread, files []model.ChangedFile) *Snapshot {
	byPath := make(map[string]model.ChangedFile, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	return &Snapshot{
		PR:         pr,
		Comments:   comments,
		Threads:    threads,
		Files:      files,
		fileByPath: byPath,
	}
}

// File returns the changed-file entry for path, if the pull request touches it.
func (s *Snapshot) File(path string) (model.ChangedFile, bool) {
	f, ok := s.fileByPath[path]
	return f, ok
}

// ThreadsAvailable reports whether the classified thread source responded.
func (s *Snapshot) ThreadsAvailable() bool {
	return s.Threads != nil
}
