package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpfaulkner/redline/internal/domain/model"
	"github.com/dpfaulkner/redline/internal/domain/port/driven"
)

func TestCreateReviewComment(t *testing.T) {
	var received map[string]any

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/owner/repo/pulls/42/comments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 555}`)
	})

	client, _ := newTestClient(t, handler)
	id, err := client.CreateReviewComment(context.Background(), "owner/repo", 42, "abc123", "src/x.ts", 10, model.SideRight, "tighten this")

	require.NoError(t, err)
	assert.Equal(t, int64(555), id)
	assert.Equal(t, "tighten this", received["body"])
	assert.Equal(t, "abc123", received["commit_id"])
	assert.Equal(t, "src/x.ts", received["path"])
	assert.Equal(t, float64(10), received["line"])
	assert.Equal(t, "RIGHT", received["side"])
}

func TestCreateReviewCommentReply(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/pulls/42/comments", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(100), body["in_reply_to"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 556}`)
	})

	client, _ := newTestClient(t, handler)
	id, err := client.CreateReviewCommentReply(context.Background(), "owner/repo", 42, 100, "agreed")

	require.NoError(t, err)
	assert.Equal(t, int64(556), id)
}

func TestUpdateIssueComment(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/repos/owner/repo/issues/comments/200", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": 200}`)
	})

	client, _ := newTestClient(t, handler)
	err := client.UpdateIssueComment(context.Background(), "owner/repo", 200, "revised")

	require.NoError(t, err)
}

func TestWriteErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string]string
		body    string
		want    error
	}{
		{
			name:   "404 not found",
			status: http.StatusNotFound,
			body:   `{"message": "Not Found"}`,
			want:   driven.ErrNotFound,
		},
		{
			name:   "422 validation",
			status: http.StatusUnprocessableEntity,
			body:   `{"message": "Validation Failed"}`,
			want:   driven.ErrValidation,
		},
		{
			name:   "403 permission",
			status: http.StatusForbidden,
			body:   `{"message": "Resource not accessible by integration"}`,
			want:   driven.ErrPermissionDenied,
		},
		{
			name:   "403 primary rate limit",
			status: http.StatusForbidden,
			headers: map[string]string{
				"X-RateLimit-Remaining": "0",
				"X-RateLimit-Limit":     "5000",
				"X-RateLimit-Reset":     "1767225600",
			},
			body: `{"message": "API rate limit exceeded"}`,
			want: driven.ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			client, _ := newTestClient(t, handler)
			_, err := client.CreateReviewCommentReply(context.Background(), "owner/repo", 42, 100, "body")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateReviewCommentNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	client, _ := newTestClient(t, handler)
	err := client.UpdateReviewComment(context.Background(), "owner/repo", 999, "body")

	assert.ErrorIs(t, err, driven.ErrNotFound)
}
