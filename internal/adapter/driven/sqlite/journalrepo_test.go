package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpfaulkner/redline/internal/domain/model"
)

func TestRecordAndListRuns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJournalRepo(db)
	ctx := context.Background()

	started := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.RecordRun(ctx, model.ReviewRun{
		ID: "run-1", Repo: "acme/widgets", PRNumber: 7, BotLogin: "redline-bot", StartedAt: started,
	}))
	require.NoError(t, repo.RecordRun(ctx, model.ReviewRun{
		ID: "run-2", Repo: "acme/widgets", PRNumber: 8, BotLogin: "redline-bot", StartedAt: started.Add(time.Hour),
	}))

	runs, err := repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID, "newest first")
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Nil(t, runs[1].FinishedAt)
	assert.Equal(t, 7, runs[1].PRNumber)
}

func TestFinishRun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJournalRepo(db)
	ctx := context.Background()

	started := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	finished := started.Add(5 * time.Minute)

	require.NoError(t, repo.RecordRun(ctx, model.ReviewRun{
		ID: "run-1", Repo: "acme/widgets", PRNumber: 7, StartedAt: started,
	}))
	require.NoError(t, repo.FinishRun(ctx, "run-1", finished))

	runs, err := repo.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].FinishedAt)
	assert.Equal(t, finished, runs[0].FinishedAt.UTC())
}

func TestRecordAndListDecisions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJournalRepo(db)
	ctx := context.Background()

	at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.RecordRun(ctx, model.ReviewRun{
		ID: "run-1", Repo: "acme/widgets", PRNumber: 7, StartedAt: at,
	}))

	require.NoError(t, repo.RecordDecision(ctx, model.Decision{
		RunID: "run-1", Op: "comment", Path: "src/x.ts", Line: 10, Side: model.SideRight,
		OK: true, Outcome: "created", CommentID: 555, CreatedAt: at,
	}))
	require.NoError(t, repo.RecordDecision(ctx, model.Decision{
		RunID: "run-1", Op: "comment", Path: "src/x.ts", Line: 10, Side: model.SideRight,
		OK: false, Outcome: "duplicate", Message: "use update with comment_id=555", CreatedAt: at.Add(time.Minute),
	}))

	decisions, err := repo.ListDecisions(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, decisions, 2)

	assert.Equal(t, "comment", decisions[0].Op)
	assert.True(t, decisions[0].OK)
	assert.Equal(t, "created", decisions[0].Outcome)
	assert.Equal(t, int64(555), decisions[0].CommentID)
	assert.Equal(t, model.SideRight, decisions[0].Side)

	assert.False(t, decisions[1].OK)
	assert.Equal(t, "duplicate", decisions[1].Outcome)
	assert.Contains(t, decisions[1].Message, "comment_id=555")
}

func TestListDecisionsUnknownRunIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJournalRepo(db)

	decisions, err := repo.ListDecisions(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, decisions)
}
