package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dpfaulkner/redline/internal/diff"
	"github.com/dpfaulkner/redline/internal/domain/model"
)

// TargetRequest is one write attempt's addressing input: a diff location,
// optionally a concrete side, optionally an explicit thread id, and a flag
// forcing a fresh thread even when candidates exist at the location.
type TargetRequest struct {
	Path      string
	Line      int
	Side      model.Side
	ThreadID  int64
	NewThread bool
}

// resolution is where a validated write lands: a reply to the thread rooted
// at RootID, or a new thread at (Path, Line, Side) when RootID is zero.
type resolution struct {
	RootID int64
	Path   string
	Line   int
	Side   model.Side
}

func (r resolution) isReply() bool { return r.RootID != 0 }

// resolveTarget runs the placement pipeline for one write attempt:
//
//  1. An explicit thread id resolves directly; a dangling id refuses rather
//     than being silently rerouted.
//  2. The (line, side) address is validated against the file's diff; a
//     request naming no line anchors at the diff's default anchor.
//  3. Candidates at the location are enumerated from both sources, the
//     classified thread index and the flat-comment index. Either source
//     alone is known to produce duplicate threads: threads miss activity
//     visible only in the flat list, the flat list misses resolution state.
//  4. Exactly one candidate (after any side filter) becomes the reply
//     target; several force the caller to disambiguate; none, or a forced
//     new thread, opens a fresh thread at the location.
//
// Refusals come back as structured results; nil result means res is valid.
func resolveTarget(idx *Index, snap *Snapshot, loc *diff.Locator, req TargetRequest) (resolution, *model.WriteResult) {
	if req.ThreadID != 0 {
		return resolveExplicit(idx, req.ThreadID)
	}

	res, refusal := validateLocation(snap, loc, req)
	if refusal != nil {
		return resolution{}, refusal
	}

	cands := idx.CandidatesAt(res.Path, res.Line, req.Side)
	if req.NewThread || len(cands) == 0 {
		return res, nil
	}

	if len(cands) > 1 {
		r := model.Refuse(model.RefusalAmbiguous, ambiguityMessage(req, cands))
		r.Candidates = cands
		return resolution{}, &r
	}

	res.RootID = cands[0].RootCommentID
	if cands[0].Side != "" {
		res.Side = cands[0].Side
	}
	return res, nil
}

// resolveExplicit honors a caller-supplied thread id. Explicit intent is
// never silently overridden: an unknown id or one with no resolvable root
// refuses with a diagnostic instead of falling back to location lookup.
func resolveExplicit(idx *Index, threadID int64) (resolution, *model.WriteResult) {
	c, ok := idx.Comment(threadID)
	if !ok {
		r := model.Refuse(model.RefusalNotFound, fmt.Sprintf(
			"thread_id=%d does not match any comment on this pull request; omit thread_id to place by location, or pick an id from the enumerated candidates",
			threadID,
		))
		return resolution{}, &r
	}

	rootID, ok := idx.Root(threadID)
	if !ok {
		r := model.Refuse(model.RefusalNotFound, fmt.Sprintf(
			"comment id=%d is not part of an inline review thread; use reply or update for top-level comments",
			threadID,
		))
		return resolution{}, &r
	}

	root := c
	if rc, ok := idx.Comment(rootID); ok {
		root = rc
	}
	return resolution{RootID: rootID, Path: root.Path, Line: root.Line, Side: root.Side}, nil
}

// validateLocation checks the (line, side) address against the file's diff
// and pins down the side when the caller omitted it, preferring the new file
// version. A request naming a file but no line anchors at the diff's default
// anchor instead. Absence refuses immediately with guidance to consult the
// diff.
func validateLocation(snap *Snapshot, loc *diff.Locator, req TargetRequest) (resolution, *model.WriteResult) {
	file, ok := snap.File(req.Path)
	if !ok {
		r := model.Refuse(model.RefusalInvalidLocation, fmt.Sprintf(
			"%s is not part of this pull request's changed files; check the diff before anchoring a comment",
			req.Path,
		))
		return resolution{}, &r
	}

	if req.Line == 0 {
		return defaultAnchor(loc, file, req)
	}

	side := req.Side
	if side == "" {
		resolved, ok := loc.ResolveSide(file.Patch, req.Line)
		if !ok {
			return resolution{}, locationRefusal(file, req)
		}
		side = resolved
	} else if _, err := loc.Locate(file.Patch, req.Line, side); err != nil {
		return resolution{}, locationRefusal(file, req)
	}

	return resolution{Path: req.Path, Line: req.Line, Side: side}, nil
}

// defaultAnchor picks the anchor for a write that named a file but no line:
// the patch's preferred anchor (first added line, else context, else
// removed), constrained to the requested side when the caller fixed one.
func defaultAnchor(loc *diff.Locator, file model.ChangedFile, req TargetRequest) (resolution, *model.WriteResult) {
	if !file.HasPatch() {
		r := model.Refuse(model.RefusalNoDiff, fmt.Sprintf(
			"no diff is available for %s (binary or oversized file); inline comments cannot anchor there",
			req.Path,
		))
		return resolution{}, &r
	}

	var (
		line int
		side model.Side
		ok   bool
	)
	if req.Side == "" {
		line, side, ok = loc.PreferredAnchor(file.Patch)
	} else {
		side = req.Side
		line, ok = loc.AnchorOnSide(file.Patch, side)
	}
	if !ok {
		sideNote := ""
		if req.Side != "" {
			sideNote = " on side " + string(req.Side)
		}
		r := model.Refuse(model.RefusalInvalidLocation, fmt.Sprintf(
			"the diff for %s shows no line to anchor on%s; supply an explicit line it actually shows",
			req.Path, sideNote,
		))
		return resolution{}, &r
	}

	return resolution{Path: req.Path, Line: line, Side: side}, nil
}

func locationRefusal(file model.ChangedFile, req TargetRequest) *model.WriteResult {
	if !file.HasPatch() {
		r := model.Refuse(model.RefusalNoDiff, fmt.Sprintf(
			"no diff is available for %s (binary or oversized file); inline comments cannot anchor there",
			req.Path,
		))
		return &r
	}

	sideNote := "either side"
	if req.Side != "" {
		sideNote = "side " + string(req.Side)
	}
	r := model.Refuse(model.RefusalInvalidLocation, fmt.Sprintf(
		"line %d of %s is not present in the diff on %s; read the file's diff and pick a line it actually shows",
		req.Line, req.Path, sideNote,
	))
	return &r
}

// ambiguityMessage phrases the disambiguation instruction for a crowded
// location, enumerating every candidate the caller can pick from.
func ambiguityMessage(req TargetRequest, cands []model.ThreadCandidate) string {
	var b strings.Builder
	if req.Side == "" {
		fmt.Fprintf(&b, "%d threads already exist at %s:%d; ", len(cands), req.Path, req.Line)
		b.WriteString("supply a side or a thread_id to pick one, or set new_thread to open another:")
	} else {
		fmt.Fprintf(&b, "%d threads already exist at %s:%d on side %s; ", len(cands), req.Path, req.Line, req.Side)
		b.WriteString("supply a thread_id to pick one, or set new_thread to open another:")
	}
	for _, c := range cands {
		state := "unresolved"
		if c.Resolved {
			state = "resolved"
		}
		if c.Outdated {
			state += ", outdated"
		}
		side := string(c.Side)
		if side == "" {
			side = "?"
		}
		fmt.Fprintf(&b, "\n- thread_id=%d (%s, side %s, last activity by %s at %s)",
			c.RootCommentID, state, side, c.LastActor, c.LastActivity.Format("2006-01-02 15:04"))
	}
	return b.String()
}

// errIsRefusable reports whether a write error is one of the port kinds the
// router converts into a structured refusal rather than a hard failure.
func errIsRefusable(err error, kinds ...error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
