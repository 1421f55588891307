package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dpfaulkner/redline/internal/diff"
	"github.com/dpfaulkner/redline/internal/domain/model"
	"github.com/dpfaulkner/redline/internal/domain/port/driven"
)

// FeedbackService routes the reviewer's five write operations. Every
// operation resolves its target against the run's snapshot indices, applies
// the duplicate-bot guard where a reply would land on the reviewer's own
// latest comment, and issues exactly one remote write (two for resolve).
// Non-transport failures come back as structured refusals whose messages
// read as instructions to the calling reasoning loop; transport failures are
// returned as errors for the caller's retry policy.
//
// The snapshot and indices are fixed for the service's lifetime. A write
// issued through this service mutates only the remote system: a later
// operation in the same run will not observe it. Callers issue writes
// sequentially; two writes in one run aimed at a thread the first of them
// created will therefore open duplicate threads, an accepted hazard of the
// fetch-once contract.
type FeedbackService struct {
	writer  driven.GitHubWriter
	journal driven.JournalStore
	snap    *Snapshot
	idx     *Index
	loc     *diff.Locator
	me      ReviewerIdentity
	runID   string
}

// NewFeedbackService builds the router over one loaded snapshot. journal may
// be nil; auditing never blocks reviewing.
func NewFeedbackService(snap *Snapshot, writer driven.GitHubWriter, me ReviewerIdentity, journal driven.JournalStore, runID string) *FeedbackService {
	return &FeedbackService{
		writer:  writer,
		journal: journal,
		snap:    snap,
		idx:     BuildIndex(snap),
		loc:     diff.NewLocator(),
		me:      me,
		runID:   runID,
	}
}

// CommentRequest is the input to Comment.
type CommentRequest struct {
	Path      string
	Line      int
	Side      model.Side // Empty picks the side the line is valid on, new side first.
	ThreadID  int64      // Explicit target; skips location lookup entirely.
	NewThread bool       // Open a fresh thread even when candidates exist.
	Body      string
}

// SuggestRequest is the input to Suggest. Suggestion is the proposed
// replacement for the addressed line; Comment optionally precedes the
// suggestion block.
type SuggestRequest struct {
	Path       string
	Line       int
	Side       model.Side
	ThreadID   int64
	NewThread  bool
	Suggestion string
	Comment    string
}

// Comment places an inline comment: a reply when exactly one thread already
// occupies the target location, a new thread otherwise.
func (s *FeedbackService) Comment(ctx context.Context, req CommentRequest) (model.WriteResult, error) {
	if strings.TrimSpace(req.Body) == "" {
		res := model.Refuse(model.RefusalEmptyBody, "comment body must not be empty")
		s.record(ctx, "comment", targetOf(req.Path, req.Line, req.Side, req.ThreadID), res, nil)
		return res, nil
	}
	return s.place(ctx, "comment", TargetRequest{
		Path:      req.Path,
		Line:      req.Line,
		Side:      req.Side,
		ThreadID:  req.ThreadID,
		NewThread: req.NewThread,
	}, req.Body)
}

// Suggest places a GitHub suggestion block. Suggestions patch the new file
// version, so side LEFT is refused with guidance to use a plain comment.
func (s *FeedbackService) Suggest(ctx context.Context, req SuggestRequest) (model.WriteResult, error) {
	target := targetOf(req.Path, req.Line, req.Side, req.ThreadID)

	if strings.TrimSpace(req.Suggestion) == "" {
		res := model.Refuse(model.RefusalInvalidSuggestion, "suggestion text must not be empty; use comment for plain feedback")
		s.record(ctx, "suggest", target, res, nil)
		return res, nil
	}
	if req.Side == model.SideLeft {
		res := model.Refuse(model.RefusalInvalidSuggestion,
			"suggestions replace lines in the new file version and cannot target side LEFT; use comment to discuss removed code")
		s.record(ctx, "suggest", target, res, nil)
		return res, nil
	}

	return s.place(ctx, "suggest", TargetRequest{
		Path:      req.Path,
		Line:      req.Line,
		Side:      req.Side,
		ThreadID:  req.ThreadID,
		NewThread: req.NewThread,
	}, formatSuggestion(req.Suggestion, req.Comment))
}

// place runs the shared comment/suggest pipeline: resolve, guard, write once.
func (s *FeedbackService) place(ctx context.Context, op string, req TargetRequest, body string) (model.WriteResult, error) {
	target := targetOf(req.Path, req.Line, req.Side, req.ThreadID)

	res, refusal := resolveTarget(s.idx, s.snap, s.loc, req)
	if refusal != nil {
		s.record(ctx, op, target, *refusal, nil)
		return *refusal, nil
	}

	if op == "suggest" && res.Side == model.SideLeft {
		out := model.Refuse(model.RefusalInvalidSuggestion,
			"the target thread anchors on side LEFT; suggestions replace new-file lines, use comment instead")
		s.record(ctx, op, target, out, nil)
		return out, nil
	}

	if res.isReply() {
		if guard := checkDuplicate(s.idx, s.me, res.RootID); guard != nil {
			s.record(ctx, op, target, *guard, nil)
			return *guard, nil
		}
	}

	body = model.StampMarker(body)

	var (
		id  int64
		err error
	)
	if res.isReply() {
		id, err = s.writer.CreateReviewCommentReply(ctx, s.snap.PR.Repo, s.snap.PR.Number, res.RootID, body)
	} else {
		id, err = s.writer.CreateReviewComment(ctx, s.snap.PR.Repo, s.snap.PR.Number, s.snap.PR.HeadSHA, res.Path, res.Line, res.Side, body)
	}
	if err != nil {
		s.record(ctx, op, target, model.WriteResult{}, err)
		return model.WriteResult{}, fmt.Errorf("%s at %s:%d: %w", op, res.Path, res.Line, err)
	}

	out := model.WriteResult{OK: true, CommentID: id}
	if res.isReply() {
		out.Kind = model.WriteReplied
		out.RootCommentID = res.RootID
		out.Message = fmt.Sprintf("replied to thread %d with comment %d", res.RootID, id)
	} else {
		out.Kind = model.WriteCreated
		out.RootCommentID = id
		out.Message = fmt.Sprintf("opened thread %d at %s:%d (%s)", id, res.Path, res.Line, res.Side)
	}

	slog.Info("write issued", "op", op, "kind", out.Kind, "comment_id", id, "path", res.Path, "line", res.Line, "side", res.Side)
	s.record(ctx, op, target, out, nil)
	return out, nil
}

// Reply posts to an explicit comment id, the fast path with no ambiguity
// pipeline. A known reply id is redirected to its thread's root, since the
// API accepts only root ids; an unknown id is attempted as-is and refused on
// not-found.
func (s *FeedbackService) Reply(ctx context.Context, commentID int64, body string) (model.WriteResult, error) {
	target := targetOf("", 0, "", commentID)

	if strings.TrimSpace(body) == "" {
		res := model.Refuse(model.RefusalEmptyBody, "reply body must not be empty")
		s.record(ctx, "reply", target, res, nil)
		return res, nil
	}

	stamped := model.StampMarker(body)

	if c, known := s.idx.Comment(commentID); known && c.Kind == model.CommentKindTopLevel {
		// Conversation comments have no threading; a reply is a new one.
		id, err := s.writer.CreateIssueComment(ctx, s.snap.PR.Repo, s.snap.PR.Number, stamped)
		if err != nil {
			s.record(ctx, "reply", target, model.WriteResult{}, err)
			return model.WriteResult{}, fmt.Errorf("reply to top-level comment %d: %w", commentID, err)
		}
		out := model.WriteResult{OK: true, Kind: model.WriteCreated, CommentID: id,
			Message: fmt.Sprintf("posted top-level comment %d (conversation comments have no reply threading)", id)}
		s.record(ctx, "reply", target, out, nil)
		return out, nil
	}

	rootID := commentID
	if r, ok := s.idx.Root(commentID); ok {
		rootID = r
	}

	id, err := s.writer.CreateReviewCommentReply(ctx, s.snap.PR.Repo, s.snap.PR.Number, rootID, stamped)
	if err != nil {
		if errors.Is(err, driven.ErrNotFound) || errors.Is(err, driven.ErrValidation) {
			res := model.Refuse(model.RefusalNotFound, fmt.Sprintf(
				"comment_id=%d was rejected by the API; it may have been deleted, or it is not an inline review comment — pick an id from the current thread listing",
				commentID,
			))
			s.record(ctx, "reply", target, res, nil)
			return res, nil
		}
		s.record(ctx, "reply", target, model.WriteResult{}, err)
		return model.WriteResult{}, fmt.Errorf("reply to comment %d: %w", commentID, err)
	}

	out := model.WriteResult{OK: true, Kind: model.WriteReplied, CommentID: id, RootCommentID: rootID,
		Message: fmt.Sprintf("replied to thread %d with comment %d", rootID, id)}
	slog.Info("write issued", "op", "reply", "comment_id", id, "root_id", rootID)
	s.record(ctx, "reply", target, out, nil)
	return out, nil
}

// Update rewrites a comment's body in place. A comment id belongs to one of
// two remote resource kinds living behind different endpoints; when the kind
// is unknown the router guesses inline first and retries the other kind once
// on a not-found or validation response.
func (s *FeedbackService) Update(ctx context.Context, commentID int64, body string) (model.WriteResult, error) {
	target := targetOf("", 0, "", commentID)

	if strings.TrimSpace(body) == "" {
		res := model.Refuse(model.RefusalEmptyBody, "update body must not be empty")
		s.record(ctx, "update", target, res, nil)
		return res, nil
	}

	first := model.CommentKindInline
	if c, ok := s.idx.Comment(commentID); ok {
		first = c.Kind
	}
	second := model.CommentKindTopLevel
	if first == model.CommentKindTopLevel {
		second = model.CommentKindInline
	}

	stamped := model.StampMarker(body)

	err := s.updateAs(ctx, first, commentID, stamped)
	if err != nil && errIsRefusable(err, driven.ErrNotFound, driven.ErrValidation) {
		err = s.updateAs(ctx, second, commentID, stamped)
		if err != nil && errIsRefusable(err, driven.ErrNotFound, driven.ErrValidation) {
			res := model.Refuse(model.RefusalNotFound, fmt.Sprintf(
				"comment_id=%d was not accepted as an inline review comment or a top-level comment; it may have been deleted — pick an id from the current thread listing",
				commentID,
			))
			s.record(ctx, "update", target, res, nil)
			return res, nil
		}
	}
	if err != nil {
		s.record(ctx, "update", target, model.WriteResult{}, err)
		return model.WriteResult{}, fmt.Errorf("update comment %d: %w", commentID, err)
	}

	out := model.WriteResult{OK: true, Kind: model.WriteUpdated, CommentID: commentID,
		Message: fmt.Sprintf("rewrote comment %d in place", commentID)}
	slog.Info("write issued", "op", "update", "comment_id", commentID)
	s.record(ctx, "update", target, out, nil)
	return out, nil
}

func (s *FeedbackService) updateAs(ctx context.Context, kind model.CommentKind, commentID int64, body string) error {
	if kind == model.CommentKindTopLevel {
		return s.writer.UpdateIssueComment(ctx, s.snap.PR.Repo, commentID, body)
	}
	return s.writer.UpdateReviewComment(ctx, s.snap.PR.Repo, commentID, body)
}

// Resolve closes a thread this reviewer opened: it posts the explanation as
// a reply, then invokes the remote resolve mutation. The two steps succeed
// or fail independently; a permission-denied mutation keeps the posted reply
// and reports only the resolve step as failed, since the remote system has
// no transaction spanning both calls.
//
// threadID is the thread's root comment id as enumerated by candidates and
// the thread listing.
func (s *FeedbackService) Resolve(ctx context.Context, threadID int64, explanation string) (model.WriteResult, error) {
	target := targetOf("", 0, "", threadID)

	refuse := func(reason model.RefusalReason, msg string) (model.WriteResult, error) {
		res := model.Refuse(reason, msg)
		s.record(ctx, "resolve", target, res, nil)
		return res, nil
	}

	if strings.TrimSpace(explanation) == "" {
		return refuse(model.RefusalMissingExplanation,
			"resolve requires a non-empty explanation; say what changed and why the thread is settled")
	}

	rootID, ok := s.idx.Root(threadID)
	if !ok {
		return refuse(model.RefusalNotFound, fmt.Sprintf(
			"thread_id=%d does not match any review thread on this pull request; pick an id from the thread listing",
			threadID,
		))
	}

	thread, ok := s.idx.Thread(rootID)
	if !ok || !thread.Resolvable() {
		return refuse(model.RefusalNoThreadIdentity, fmt.Sprintf(
			"thread %d carries no remote thread identity (the classified thread source did not report it); it can be replied to but not formally resolved — use reply to close it out in prose",
			rootID,
		))
	}
	if thread.IsResolved {
		return refuse(model.RefusalAlreadyResolved, fmt.Sprintf("thread %d is already resolved", rootID))
	}

	root, ok := s.idx.Comment(rootID)
	if !ok || !s.me.IsOwn(root.Author, root.AuthorKind, root.Body) {
		return refuse(model.RefusalNotOwnThread, fmt.Sprintf(
			"thread %d was opened by %s, not by this reviewer; never resolve someone else's conversation — reply instead and let them resolve it",
			rootID, root.Author,
		))
	}

	replyID, err := s.writer.CreateReviewCommentReply(ctx, s.snap.PR.Repo, s.snap.PR.Number, rootID, model.StampMarker(explanation))
	if err != nil {
		s.record(ctx, "resolve", target, model.WriteResult{}, err)
		return model.WriteResult{}, fmt.Errorf("resolve thread %d: posting explanation: %w", rootID, err)
	}

	out := model.WriteResult{
		OK:            true,
		CommentID:     replyID,
		RootCommentID: rootID,
		Steps: []model.StepResult{
			{Name: "reply", OK: true, Detail: fmt.Sprintf("explanation posted as comment %d", replyID)},
		},
	}

	if err := s.writer.ResolveReviewThread(ctx, thread.RemoteID); err != nil {
		if errors.Is(err, driven.ErrPermissionDenied) {
			out.Kind = model.WriteReplyOnly
			out.Message = fmt.Sprintf(
				"explanation posted as comment %d, but the resolve mutation was denied (integration permissions); the thread remains open for a human to resolve",
				replyID,
			)
			out.Steps = append(out.Steps, model.StepResult{Name: "resolve", OK: false, Detail: err.Error()})
			slog.Warn("resolve mutation denied, keeping posted reply", "root_id", rootID, "error", err)
			s.record(ctx, "resolve", target, out, nil)
			return out, nil
		}
		s.record(ctx, "resolve", target, model.WriteResult{}, err)
		return model.WriteResult{}, fmt.Errorf("resolve thread %d: explanation reply %d posted but resolve mutation failed: %w", rootID, replyID, err)
	}

	out.Kind = model.WriteResolved
	out.Message = fmt.Sprintf("thread %d resolved with explanation comment %d", rootID, replyID)
	out.Steps = append(out.Steps, model.StepResult{Name: "resolve", OK: true})
	slog.Info("write issued", "op", "resolve", "root_id", rootID, "comment_id", replyID)
	s.record(ctx, "resolve", target, out, nil)
	return out, nil
}

// PublishSummary upserts the reviewer's single top-level summary comment:
// the newest marker-tagged top-level comment is rewritten in place when one
// exists, otherwise a new one is created. The body passes through verbatim
// apart from marker stamping; rendering is the caller's business.
func (s *FeedbackService) PublishSummary(ctx context.Context, body string) (model.WriteResult, error) {
	target := targetOf("", 0, "", 0)

	if strings.TrimSpace(body) == "" {
		res := model.Refuse(model.RefusalEmptyBody, "summary body must not be empty")
		s.record(ctx, "publish_summary", target, res, nil)
		return res, nil
	}

	stamped := model.StampMarker(body)

	var prior *model.Comment
	for i := range s.snap.Comments {
		c := s.snap.Comments[i]
		if c.Kind != model.CommentKindTopLevel || !s.me.IsOwn(c.Author, c.AuthorKind, c.Body) || !model.HasMarker(c.Body) {
			continue
		}
		if prior == nil || c.UpdatedAt.After(prior.UpdatedAt) {
			prior = &s.snap.Comments[i]
		}
	}

	if prior != nil {
		err := s.writer.UpdateIssueComment(ctx, s.snap.PR.Repo, prior.ID, stamped)
		if err == nil {
			out := model.WriteResult{OK: true, Kind: model.WriteSummaryUpdated, CommentID: prior.ID,
				Message: fmt.Sprintf("summary comment %d updated in place", prior.ID)}
			slog.Info("write issued", "op", "publish_summary", "kind", out.Kind, "comment_id", prior.ID)
			s.record(ctx, "publish_summary", target, out, nil)
			return out, nil
		}
		if !errIsRefusable(err, driven.ErrNotFound, driven.ErrValidation) {
			s.record(ctx, "publish_summary", target, model.WriteResult{}, err)
			return model.WriteResult{}, fmt.Errorf("updating summary comment %d: %w", prior.ID, err)
		}
		// The prior summary vanished since the snapshot; fall through to create.
		slog.Warn("prior summary comment gone, creating a new one", "comment_id", prior.ID)
	}

	id, err := s.writer.CreateIssueComment(ctx, s.snap.PR.Repo, s.snap.PR.Number, stamped)
	if err != nil {
		s.record(ctx, "publish_summary", target, model.WriteResult{}, err)
		return model.WriteResult{}, fmt.Errorf("creating summary comment: %w", err)
	}

	out := model.WriteResult{OK: true, Kind: model.WriteSummaryCreated, CommentID: id,
		Message: fmt.Sprintf("summary posted as comment %d", id)}
	slog.Info("write issued", "op", "publish_summary", "kind", out.Kind, "comment_id", id)
	s.record(ctx, "publish_summary", target, out, nil)
	return out, nil
}

// ListThreads returns the reconciled view of every known thread, classified
// threads and flat-comment-only roots alike, newest activity first.
func (s *FeedbackService) ListThreads() []model.ThreadCandidate {
	return s.idx.AllCandidates()
}

// PR identifies the pull request this service was loaded for.
func (s *FeedbackService) PR() model.PullRequestRef {
	return s.snap.PR
}

func targetOf(path string, line int, side model.Side, id int64) TargetRequest {
	return TargetRequest{Path: path, Line: line, Side: side, ThreadID: id}
}

// record journals one routed decision. Journal failures are logged and
// swallowed; auditing never blocks reviewing.
func (s *FeedbackService) record(ctx context.Context, op string, target TargetRequest, res model.WriteResult, err error) {
	slog.Debug("decision routed",
		"op", op,
		"path", target.Path,
		"line", target.Line,
		"target_id", target.ThreadID,
		"ok", res.OK && err == nil,
		"kind", res.Kind,
		"reason", res.Reason,
	)

	if s.journal == nil || s.runID == "" {
		return
	}

	d := model.Decision{
		RunID:     s.runID,
		Op:        op,
		Path:      target.Path,
		Line:      target.Line,
		Side:      target.Side,
		TargetID:  target.ThreadID,
		OK:        res.OK,
		Message:   res.Message,
		CommentID: res.CommentID,
		CreatedAt: time.Now().UTC(),
	}
	switch {
	case err != nil:
		d.Message = err.Error()
	case res.OK:
		d.Outcome = string(res.Kind)
	default:
		d.Outcome = string(res.Reason)
	}

	if jerr := s.journal.RecordDecision(ctx, d); jerr != nil {
		slog.Warn("journal write failed", "op", op, "error", jerr)
	}
}
