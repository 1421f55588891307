package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpfaulkner/redline/internal/domain/model"
)

func TestReviewerIdentityIsOwn(t *testing.T) {
	me := ReviewerIdentity{Login: "redline-bot", Aliases: []string{"redline-proxy"}}

	tests := []struct {
		name   string
		author string
		kind   model.AuthorKind
		body   string
		want   bool
	}{
		{"exact login", "redline-bot", model.AuthorKindUser, "plain", true},
		{"bot-suffixed variant", "redline-bot[bot]", model.AuthorKindBot, "plain", true},
		{"bot-suffixed variant without bot kind", "redline-bot[bot]", model.AuthorKindUser, "plain", false},
		{"case-folded login", "Redline-Bot", model.AuthorKindUser, "plain", true},
		{"configured alias", "redline-proxy", model.AuthorKindUser, "plain", true},
		{"marker fallback", "github-actions[bot]", model.AuthorKindBot, model.StampMarker("posted by proxy"), true},
		{"human", "maya", model.AuthorKindUser, "plain", false},
		{"unrelated bot", "dependabot[bot]", model.AuthorKindBot, "bump deps", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, me.IsOwn(tt.author, tt.kind, tt.body))
		})
	}
}

func TestCheckDuplicateFiresOnOwnUnresolvedLatest(t *testing.T) {
	own := inlineComment(1, "redline-bot", model.StampMarker("my note"), 10, model.SideRight, testBase)
	idx := BuildIndex(testSnapshot([]model.Comment{own}, nil))

	refusal := checkDuplicate(idx, reviewer, 1)

	require.NotNil(t, refusal)
	assert.Equal(t, model.RefusalDuplicate, refusal.Reason)
	assert.Equal(t, int64(1), refusal.CommentID)
	assert.Equal(t, int64(1), refusal.RootCommentID)
}

func TestCheckDuplicateQuietWhenHumanIsLatest(t *testing.T) {
	comments := []model.Comment{
		inlineComment(1, "redline-bot", model.StampMarker("my note"), 10, model.SideRight, testBase),
		replyComment(2, 1, "maya", "pushed a fix", testBase.Add(time.Hour)),
	}
	idx := BuildIndex(testSnapshot(comments, nil))

	assert.Nil(t, checkDuplicate(idx, reviewer, 1))
}

func TestCheckDuplicateQuietOnResolvedThread(t *testing.T) {
	// A resolved thread may be reopened with fresh feedback even when the
	// reviewer spoke last.
	own := inlineComment(1, "redline-bot", model.StampMarker("my note"), 10, model.SideRight, testBase)
	threads := []model.ReviewThread{
		{RemoteID: "RT_1", RootCommentID: 1, Path: "src/x.ts", Line: 10, Side: model.SideRight, IsResolved: true},
	}
	idx := BuildIndex(testSnapshot([]model.Comment{own}, threads))

	assert.Nil(t, checkDuplicate(idx, reviewer, 1))
}

func TestCheckDuplicateNamesLatestReplyNotRoot(t *testing.T) {
	// When the reviewer's own reply (not the root) is the latest activity,
	// the refusal points the update at that reply.
	comments := []model.Comment{
		inlineComment(1, "maya", "question", 10, model.SideRight, testBase),
		replyComment(2, 1, "redline-bot", model.StampMarker("my answer"), testBase.Add(time.Hour)),
	}
	idx := BuildIndex(testSnapshot(comments, nil))

	refusal := checkDuplicate(idx, reviewer, 1)

	require.NotNil(t, refusal)
	assert.Equal(t, int64(2), refusal.CommentID)
	assert.Equal(t, int64(1), refusal.RootCommentID)
}
