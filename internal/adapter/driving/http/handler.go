// Package httphandler is the HTTP driving adapter serving the write
// operations and read-only listings as a local REST API.
package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dpfaulkner/redline/internal/application"
	"github.com/dpfaulkner/redline/internal/domain/model"
	"github.com/dpfaulkner/redline/internal/domain/port/driven"
)

// Handler serves one loaded pull request session over HTTP. Every operation
// endpoint returns 200 with ok=false for structured refusals; only malformed
// requests (400) and transport failures (502) use error statuses, so callers
// can treat any 200 body as a routed decision.
type Handler struct {
	svc     *application.FeedbackService
	journal driven.JournalStore // nil when no journal is configured
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. journal may be
// nil; the run listing endpoints then report 404.
func NewHandler(svc *application.FeedbackService, journal driven.JournalStore, logger *slog.Logger) *Handler {
	return &Handler{
		svc:     svc,
		journal: journal,
		logger:  logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/ops/comment", h.Comment)
	mux.HandleFunc("POST /api/v1/ops/suggest", h.Suggest)
	mux.HandleFunc("POST /api/v1/ops/reply", h.Reply)
	mux.HandleFunc("POST /api/v1/ops/update", h.Update)
	mux.HandleFunc("POST /api/v1/ops/resolve", h.Resolve)
	mux.HandleFunc("POST /api/v1/ops/summary", h.PublishSummary)
	mux.HandleFunc("GET /api/v1/threads", h.ListThreads)
	mux.HandleFunc("GET /api/v1/runs", h.ListRuns)
	mux.HandleFunc("GET /api/v1/runs/{id}/decisions", h.ListDecisions)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Comment places an inline comment by location or explicit thread id.
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Comment(r.Context(), application.CommentRequest{
		Path:      req.Path,
		Line:      req.Line,
		Side:      model.Side(req.Side),
		ThreadID:  req.ThreadID,
		NewThread: req.NewThread,
		Body:      req.Body,
	})
	h.writeResult(w, "comment", res, err)
}

// Suggest places a suggestion block by location or explicit thread id.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Suggest(r.Context(), application.SuggestRequest{
		Path:       req.Path,
		Line:       req.Line,
		Side:       model.Side(req.Side),
		ThreadID:   req.ThreadID,
		NewThread:  req.NewThread,
		Suggestion: req.Suggestion,
		Comment:    req.Comment,
	})
	h.writeResult(w, "suggest", res, err)
}

// Reply posts to an explicit comment id.
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CommentID == 0 {
		writeError(w, http.StatusBadRequest, "comment_id is required")
		return
	}

	res, err := h.svc.Reply(r.Context(), req.CommentID, req.Body)
	h.writeResult(w, "reply", res, err)
}

// Update rewrites a comment body in place.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CommentID == 0 {
		writeError(w, http.StatusBadRequest, "comment_id is required")
		return
	}

	res, err := h.svc.Update(r.Context(), req.CommentID, req.Body)
	h.writeResult(w, "update", res, err)
}

// Resolve posts an explanation reply and resolves the thread.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ThreadID == 0 {
		writeError(w, http.StatusBadRequest, "thread_id is required")
		return
	}

	res, err := h.svc.Resolve(r.Context(), req.ThreadID, req.Explanation)
	h.writeResult(w, "resolve", res, err)
}

// PublishSummary upserts the run's top-level summary comment.
func (h *Handler) PublishSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.PublishSummary(r.Context(), req.Body)
	h.writeResult(w, "summary", res, err)
}

// ListThreads returns the reconciled thread listing, newest activity first.
func (h *Handler) ListThreads(w http.ResponseWriter, _ *http.Request) {
	cands := h.svc.ListThreads()
	if cands == nil {
		cands = []model.ThreadCandidate{}
	}
	writeJSON(w, http.StatusOK, cands)
}

// ListRuns returns the most recent journaled runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusNotFound, "no journal configured")
		return
	}

	runs, err := h.journal.ListRuns(r.Context(), 50)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toRunResponse(run))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListDecisions returns one run's journaled decisions in insertion order.
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusNotFound, "no journal configured")
		return
	}

	runID := r.PathValue("id")
	decisions, err := h.journal.ListDecisions(r.Context(), runID)
	if err != nil {
		h.logger.Error("failed to list decisions", "run_id", runID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]DecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		resp = append(resp, toDecisionResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health reports liveness and the loaded pull request.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	pr := h.svc.PR()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Repo:   pr.Repo,
		PR:     pr.Number,
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeResult maps a routed operation's outcome to the wire: refusals are
// normal 200 responses, transport failures are 502.
func (h *Handler) writeResult(w http.ResponseWriter, op string, res model.WriteResult, err error) {
	if err != nil {
		h.logger.Error("operation transport failure", "op", op, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}
