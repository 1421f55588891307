package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dpfaulkner/redline/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// CommentRequest is the request body for POST /api/v1/ops/comment.
type CommentRequest struct {
	Path      string `json:"path"`
	Line      int    `json:"line"`
	Side      string `json:"side,omitempty"`
	ThreadID  int64  `json:"thread_id,omitempty"`
	NewThread bool   `json:"new_thread,omitempty"`
	Body      string `json:"body"`
}

// SuggestRequest is the request body for POST /api/v1/ops/suggest.
type SuggestRequest struct {
	Path       string `json:"path"`
	Line       int    `json:"line"`
	Side       string `json:"side,omitempty"`
	ThreadID   int64  `json:"thread_id,omitempty"`
	NewThread  bool   `json:"new_thread,omitempty"`
	Suggestion string `json:"suggestion"`
	Comment    string `json:"comment,omitempty"`
}

// ReplyRequest is the request body for POST /api/v1/ops/reply.
type ReplyRequest struct {
	CommentID int64  `json:"comment_id"`
	Body      string `json:"body"`
}

// UpdateRequest is the request body for POST /api/v1/ops/update.
type UpdateRequest struct {
	CommentID int64  `json:"comment_id"`
	Body      string `json:"body"`
}

// ResolveRequest is the request body for POST /api/v1/ops/resolve.
type ResolveRequest struct {
	ThreadID    int64  `json:"thread_id"`
	Explanation string `json:"explanation"`
}

// SummaryRequest is the request body for POST /api/v1/ops/summary.
type SummaryRequest struct {
	Body string `json:"body"`
}

// RunResponse is the JSON representation of one journaled run.
type RunResponse struct {
	ID         string `json:"id"`
	Repo       string `json:"repo"`
	PRNumber   int    `json:"pr_number"`
	BotLogin   string `json:"bot_login,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

func toRunResponse(run model.ReviewRun) RunResponse {
	resp := RunResponse{
		ID:        run.ID,
		Repo:      run.Repo,
		PRNumber:  run.PRNumber,
		BotLogin:  run.BotLogin,
		StartedAt: run.StartedAt.UTC().Format(time.RFC3339),
	}
	if run.FinishedAt != nil {
		resp.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// DecisionResponse is the JSON representation of one journaled decision.
type DecisionResponse struct {
	ID        int64  `json:"id"`
	Op        string `json:"op"`
	Path      string `json:"path,omitempty"`
	Line      int    `json:"line,omitempty"`
	Side      string `json:"side,omitempty"`
	TargetID  int64  `json:"target_id,omitempty"`
	OK        bool   `json:"ok"`
	Outcome   string `json:"outcome,omitempty"`
	Message   string `json:"message,omitempty"`
	CommentID int64  `json:"comment_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toDecisionResponse(d model.Decision) DecisionResponse {
	return DecisionResponse{
		ID:        d.ID,
		Op:        d.Op,
		Path:      d.Path,
		Line:      d.Line,
		Side:      string(d.Side),
		TargetID:  d.TargetID,
		OK:        d.OK,
		Outcome:   d.Outcome,
		Message:   d.Message,
		CommentID: d.CommentID,
		CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status string `json:"status"`
	Repo   string `json:"repo"`
	PR     int    `json:"pr"`
	Time   string `json:"time"`
}
