package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpfaulkner/redline/internal/domain/model"
)

func TestBuildIndexFoldsReplyActivityIntoRoot(t *testing.T) {
	comments := []model.Comment{
		inlineComment(1, "maya", "root question", 10, model.SideRight, testBase),
		replyComment(2, 1, "jordan", "first answer", testBase.Add(time.Hour)),
		replyComment(3, 1, "maya", "follow-up", testBase.Add(30*time.Minute)),
	}
	idx := BuildIndex(testSnapshot(comments, nil))

	latest, ok := idx.LatestActivity(1)
	require.True(t, ok)
	assert.Equal(t, int64(2), latest.CommentID, "latest activity is the max update time, not list order")
	assert.Equal(t, "jordan", latest.Author)

	root, ok := idx.Root(3)
	require.True(t, ok)
	assert.Equal(t, int64(1), root)
}

func TestBuildIndexPromotesOrphanReply(t *testing.T) {
	// Reply whose root was deleted: it becomes its own root so the location
	// stays addressable.
	orphan := replyComment(7, 99, "maya", "replying to a ghost", testBase)
	idx := BuildIndex(testSnapshot([]model.Comment{orphan}, nil))

	root, ok := idx.Root(7)
	require.True(t, ok)
	assert.Equal(t, int64(7), root)

	cands := idx.CandidatesAt("src/x.ts", 10, model.SideRight)
	require.Len(t, cands, 1)
	assert.Equal(t, int64(7), cands[0].RootCommentID)
}

func TestCandidatesAtThreadShadowsFlatRoot(t *testing.T) {
	// The same conversation seen through both sources must surface once,
	// through the thread (which alone carries resolution state).
	comments := []model.Comment{
		inlineComment(1, "maya", "seen twice", 10, model.SideRight, testBase),
	}
	threads := []model.ReviewThread{
		{RemoteID: "RT_1", RootCommentID: 1, Path: "src/x.ts", Line: 10, Side: model.SideRight, IsResolved: true, LastActor: "maya", LastActivity: testBase},
	}
	idx := BuildIndex(testSnapshot(comments, threads))

	cands := idx.CandidatesAt("src/x.ts", 10, model.SideRight)
	require.Len(t, cands, 1)
	assert.Equal(t, model.CandidateSourceThread, cands[0].Source)
	assert.True(t, cands[0].Resolved)
}

func TestCandidatesAtEmptySideSpansBoth(t *testing.T) {
	comments := []model.Comment{
		inlineComment(1, "maya", "on the right", 10, model.SideRight, testBase),
		inlineComment(2, "jordan", "on the left", 10, model.SideLeft, testBase.Add(time.Hour)),
	}
	idx := BuildIndex(testSnapshot(comments, nil))

	both := idx.CandidatesAt("src/x.ts", 10, "")
	require.Len(t, both, 2)
	assert.Equal(t, int64(2), both[0].RootCommentID, "newest activity first")

	right := idx.CandidatesAt("src/x.ts", 10, model.SideRight)
	require.Len(t, right, 1)
	assert.Equal(t, int64(1), right[0].RootCommentID)
}

func TestCandidatesAtConcreteSideKeepsSidelessRecords(t *testing.T) {
	// Legacy records without a side still occupy the location from either
	// side's point of view.
	legacy := inlineComment(1, "maya", "old record", 10, "", testBase)
	idx := BuildIndex(testSnapshot([]model.Comment{legacy}, nil))

	right := idx.CandidatesAt("src/x.ts", 10, model.SideRight)
	require.Len(t, right, 1)
	assert.Equal(t, int64(1), right[0].RootCommentID)

	left := idx.CandidatesAt("src/x.ts", 10, model.SideLeft)
	require.Len(t, left, 1)
}

func TestCandidatesAtDistinctLinesStayApart(t *testing.T) {
	comments := []model.Comment{
		inlineComment(1, "maya", "line ten", 10, model.SideRight, testBase),
		inlineComment(2, "jordan", "line eleven", 11, model.SideRight, testBase),
	}
	idx := BuildIndex(testSnapshot(comments, nil))

	assert.Len(t, idx.CandidatesAt("src/x.ts", 10, model.SideRight), 1)
	assert.Len(t, idx.CandidatesAt("src/x.ts", 11, model.SideRight), 1)
	assert.Empty(t, idx.CandidatesAt("src/x.ts", 12, model.SideRight))
}

func TestAllCandidatesMergesBothSources(t *testing.T) {
	comments := []model.Comment{
		inlineComment(1, "maya", "covered by a thread", 10, model.SideRight, testBase),
		inlineComment(2, "jordan", "flat only", 11, model.SideRight, testBase.Add(time.Hour)),
	}
	threads := []model.ReviewThread{
		{RemoteID: "RT_1", RootCommentID: 1, Path: "src/x.ts", Line: 10, Side: model.SideRight, LastActor: "maya", LastActivity: testBase},
	}
	idx := BuildIndex(testSnapshot(comments, threads))

	all := idx.AllCandidates()
	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[0].RootCommentID, "newest activity first")
	assert.Equal(t, model.CandidateSourceComment, all[0].Source)
	assert.Equal(t, model.CandidateSourceThread, all[1].Source)
}
