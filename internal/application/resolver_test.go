package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpfaulkner/redline/internal/diff"
	"github.com/dpfaulkner/redline/internal/domain/model"
)

func resolveFixture(comments []model.Comment, threads []model.ReviewThread) (*Index, *Snapshot, *diff.Locator) {
	snap := testSnapshot(comments, threads)
	return BuildIndex(snap), snap, diff.NewLocator()
}

func TestResolveTargetOmittedSidePrefersRight(t *testing.T) {
	// Line 10 exists on both sides of the fixture patch; an omitted side pins
	// to the new file version.
	idx, snap, loc := resolveFixture(nil, nil)

	res, refusal := resolveTarget(idx, snap, loc, TargetRequest{Path: "src/x.ts", Line: 10})

	require.Nil(t, refusal)
	assert.False(t, res.isReply())
	assert.Equal(t, model.SideRight, res.Side)
}

func TestResolveTargetContextLineResolvesEitherSide(t *testing.T) {
	// Line 8 is context: valid on both sides, and the new version wins when
	// the caller does not say.
	idx, snap, loc := resolveFixture(nil, nil)

	res, refusal := resolveTarget(idx, snap, loc, TargetRequest{Path: "src/x.ts", Line: 8})
	require.Nil(t, refusal)
	assert.Equal(t, model.SideRight, res.Side)

	res, refusal = resolveTarget(idx, snap, loc, TargetRequest{Path: "src/x.ts", Line: 8, Side: model.SideLeft})
	require.Nil(t, refusal)
	assert.Equal(t, model.SideLeft, res.Side)
}

func TestResolveTargetAdoptsCandidateSide(t *testing.T) {
	// A single candidate at the location fixes the reply's side even when the
	// request omitted it.
	comments := []model.Comment{
		inlineComment(1, "maya", "left-side thread", 10, model.SideLeft, testBase),
	}
	idx, snap, loc := resolveFixture(comments, nil)

	res, refusal := resolveTarget(idx, snap, loc, TargetRequest{Path: "src/x.ts", Line: 10})

	require.Nil(t, refusal)
	assert.True(t, res.isReply())
	assert.Equal(t, int64(1), res.RootID)
	assert.Equal(t, model.SideLeft, res.Side)
}

func TestResolveTargetOmittedLineUsesDefaultAnchor(t *testing.T) {
	// A request naming only the file anchors at the diff's first added line.
	idx, snap, loc := resolveFixture(nil, nil)

	res, refusal := resolveTarget(idx, snap, loc, TargetRequest{Path: "src/x.ts"})

	require.Nil(t, refusal)
	assert.False(t, res.isReply())
	assert.Equal(t, 10, res.Line)
	assert.Equal(t, model.SideRight, res.Side)
}

func TestResolveTargetOmittedLineHonorsRequestedSide(t *testing.T) {
	idx, snap, loc := resolveFixture(nil, nil)

	res, refusal := resolveTarget(idx, snap, loc, TargetRequest{Path: "src/x.ts", Side: model.SideLeft})

	require.Nil(t, refusal)
	assert.Equal(t, 10, res.Line)
	assert.Equal(t, model.SideLeft, res.Side)
}

func TestResolveTargetDefaultAnchorJoinsExistingThread(t *testing.T) {
	// The default anchor participates in candidate lookup like an explicit
	// line: an existing thread there becomes the reply target.
	comments := []model.Comment{
		inlineComment(1, "maya", "thread at the anchor", 10, model.SideRight, testBase),
	}
	idx, snap, loc := resolveFixture(comments, nil)

	res, refusal := resolveTarget(idx, snap, loc, TargetRequest{Path: "src/x.ts"})

	require.Nil(t, refusal)
	assert.True(t, res.isReply())
	assert.Equal(t, int64(1), res.RootID)
}

func TestResolveTargetOmittedLineNoDiffRefused(t *testing.T) {
	idx, snap, loc := resolveFixture(nil, nil)

	_, refusal := resolveTarget(idx, snap, loc, TargetRequest{Path: "assets/logo.png"})

	require.NotNil(t, refusal)
	assert.Equal(t, model.RefusalNoDiff, refusal.Reason)
}

func TestResolveTargetExplicitReplyIDWalksToRoot(t *testing.T) {
	comments := []model.Comment{
		inlineComment(1, "maya", "root", 10, model.SideRight, testBase),
		replyComment(2, 1, "jordan", "reply", testBase),
	}
	idx, snap, loc := resolveFixture(comments, nil)

	res, refusal := resolveTarget(idx, snap, loc, TargetRequest{ThreadID: 2})

	require.Nil(t, refusal)
	assert.Equal(t, int64(1), res.RootID)
	assert.Equal(t, "src/x.ts", res.Path)
}

func TestResolveTargetExplicitTopLevelIDRefused(t *testing.T) {
	topLevel := model.Comment{
		ID: 50, Kind: model.CommentKindTopLevel, Author: "maya", Body: "hi",
		CreatedAt: testBase, UpdatedAt: testBase,
	}
	idx, snap, loc := resolveFixture([]model.Comment{topLevel}, nil)

	_, refusal := resolveTarget(idx, snap, loc, TargetRequest{ThreadID: 50})

	require.NotNil(t, refusal)
	assert.Equal(t, model.RefusalNotFound, refusal.Reason)
	assert.Contains(t, refusal.Message, "not part of an inline review thread")
}

func TestResolveTargetUnknownPathRefused(t *testing.T) {
	idx, snap, loc := resolveFixture(nil, nil)

	_, refusal := resolveTarget(idx, snap, loc, TargetRequest{Path: "src/missing.ts", Line: 1, Side: model.SideRight})

	require.NotNil(t, refusal)
	assert.Equal(t, model.RefusalInvalidLocation, refusal.Reason)
	assert.Contains(t, refusal.Message, "changed files")
}

func TestResolveTargetWrongSideRefused(t *testing.T) {
	// Line 10 RIGHT is an added line; asking for it on LEFT names a removed
	// line, which the fixture also has, so use line 12 which exists nowhere.
	idx, snap, loc := resolveFixture(nil, nil)

	_, refusal := resolveTarget(idx, snap, loc, TargetRequest{Path: "src/x.ts", Line: 12, Side: model.SideRight})

	require.NotNil(t, refusal)
	assert.Equal(t, model.RefusalInvalidLocation, refusal.Reason)
	assert.Contains(t, refusal.Message, "side RIGHT")
}

func TestAmbiguityMessageEnumeratesCandidates(t *testing.T) {
	cands := []model.ThreadCandidate{
		{RootCommentID: 1, Side: model.SideRight, Resolved: true, Outdated: true, LastActor: "maya", LastActivity: testBase},
		{RootCommentID: 2, LastActor: "jordan", LastActivity: testBase},
	}

	msg := ambiguityMessage(TargetRequest{Path: "src/x.ts", Line: 10}, cands)

	assert.Contains(t, msg, "2 threads already exist at src/x.ts:10")
	assert.Contains(t, msg, "thread_id=1 (resolved, outdated, side RIGHT")
	assert.Contains(t, msg, "thread_id=2 (unresolved, side ?")
	assert.Contains(t, msg, "new_thread")
}
