package application

import (
	"sort"
	"time"

	"github.com/dpfaulkner/redline/internal/domain/model"
)

// locationKey is the (path, line, side) triple lookups run on. A key with an
// empty side spans both sides; it is how side-less requests and legacy thread
// records are matched. Keys are derived per lookup and never persisted.
type locationKey struct {
	path string
	line int
	side model.Side
}

// activityRecord is the most recent activity observed on a thread, folded
// from the root and every reply sharing its root. Replies live apart from
// their root in the flat list, so this record is the only place the two
// meet. Body is retained for the guard's marker predicate.
type activityRecord struct {
	CommentID  int64
	Author     string
	AuthorKind model.AuthorKind
	Body       string
	UpdatedAt  time.Time
}

// Index is the set of immutable lookup views derived from one snapshot:
// comments by id, root resolution for reply ids, anchored roots by location,
// classified threads by location (keyed with and without side), and the
// latest-activity record per root. Build it once per run and pass it
// explicitly; it holds no mutable state.
type Index struct {
	commentByID  map[int64]model.Comment
	rootOf       map[int64]int64
	rootsByLoc   map[locationKey][]model.Comment
	threadByRoot map[int64]model.ReviewThread
	threadsByLoc map[locationKey][]model.ReviewThread
	latestByRoot map[int64]activityRecord
}

// BuildIndex derives every lookup view from the snapshot. Root comments are
// the non-reply inline comments; replies are excluded from location indexing
// and folded only into their root's activity record. A reply whose root is
// missing from the flat list is promoted to a synthetic root so its location
// stays addressable.
func BuildIndex(snap *Snapshot) *Index {
	idx := &Index{
		commentByID:  make(map[int64]model.Comment, len(snap.Comments)),
		rootOf:       make(map[int64]int64, len(snap.Comments)),
		rootsByLoc:   make(map[locationKey][]model.Comment),
		threadByRoot: make(map[int64]model.ReviewThread, len(snap.Threads)),
		threadsByLoc: make(map[locationKey][]model.ReviewThread),
		latestByRoot: make(map[int64]activityRecord),
	}

	for _, c := range snap.Comments {
		idx.commentByID[c.ID] = c
	}

	// Roots first so orphan detection below sees every real root.
	for _, c := range snap.Comments {
		if c.Kind != model.CommentKindInline || c.IsReply() {
			continue
		}
		idx.rootOf[c.ID] = c.ID
		idx.indexRoot(c)
	}

	for _, c := range snap.Comments {
		if c.Kind != model.CommentKindInline || !c.IsReply() {
			continue
		}
		rootID := *c.InReplyToID
		if _, known := idx.rootOf[rootID]; !known {
			// Orphan reply: its root was deleted or not returned. Promote it
			// so the conversation's location remains addressable.
			rootID = c.ID
			idx.indexRoot(c)
		}
		idx.rootOf[c.ID] = rootID
		idx.foldActivity(rootID, c)
	}

	for _, t := range snap.Threads {
		idx.threadByRoot[t.RootCommentID] = t
		idx.threadsByLoc[locationKey{t.Path, t.Line, t.Side}] = append(
			idx.threadsByLoc[locationKey{t.Path, t.Line, t.Side}], t)
		if t.Side != "" {
			// Parallel side-less key so requests without a side see candidates
			// from both sides.
			idx.threadsByLoc[locationKey{t.Path, t.Line, ""}] = append(
				idx.threadsByLoc[locationKey{t.Path, t.Line, ""}], t)
		}
	}

	return idx
}

func (idx *Index) indexRoot(c model.Comment) {
	if c.Anchored() {
		key := locationKey{c.Path, c.Line, c.Side}
		idx.rootsByLoc[key] = append(idx.rootsByLoc[key], c)
		if c.Side != "" {
			idx.rootsByLoc[locationKey{c.Path, c.Line, ""}] = append(
				idx.rootsByLoc[locationKey{c.Path, c.Line, ""}], c)
		}
	}
	idx.foldActivity(c.ID, c)
}

// foldActivity keeps the per-root record at the maximum update time seen
// across the root and all its replies.
func (idx *Index) foldActivity(rootID int64, c model.Comment) {
	if cur, ok := idx.latestByRoot[rootID]; ok && !c.UpdatedAt.After(cur.UpdatedAt) {
		return
	}
	idx.latestByRoot[rootID] = activityRecord{
		CommentID:  c.ID,
		Author:     c.Author,
		AuthorKind: c.AuthorKind,
		Body:       c.Body,
		UpdatedAt:  c.UpdatedAt,
	}
}

// Comment looks up a comment from the flat list by id.
func (idx *Index) Comment(id int64) (model.Comment, bool) {
	c, ok := idx.commentByID[id]
	return c, ok
}

// Root resolves any inline comment id to its thread's root comment id.
func (idx *Index) Root(id int64) (int64, bool) {
	root, ok := idx.rootOf[id]
	return root, ok
}

// Thread returns the classified thread rooted at rootID, when the thread
// source supplied one.
func (idx *Index) Thread(rootID int64) (model.ReviewThread, bool) {
	t, ok := idx.threadByRoot[rootID]
	return t, ok
}

// LatestActivity returns the most recent comment activity on the thread
// rooted at rootID.
func (idx *Index) LatestActivity(rootID int64) (activityRecord, bool) {
	a, ok := idx.latestByRoot[rootID]
	return a, ok
}

// CandidatesAt enumerates every thread occupying (path, line), classified
// threads first, then flat-comment roots not already represented by a
// thread. An empty side matches candidates on both sides; a concrete side
// keeps candidates on that side plus side-less legacy records. The result is
// ordered by last activity, newest first, so a single survivor is always the
// most recently active one.
func (idx *Index) CandidatesAt(path string, line int, side model.Side) []model.ThreadCandidate {
	var out []model.ThreadCandidate
	seen := make(map[int64]bool)

	for _, t := range idx.threadsByLoc[locationKey{path, line, side}] {
		if seen[t.RootCommentID] {
			continue
		}
		seen[t.RootCommentID] = true
		out = append(out, threadCandidate(t))
	}
	if side != "" {
		// Legacy thread records without a side still occupy the location.
		for _, t := range idx.threadsByLoc[locationKey{path, line, ""}] {
			if t.Side != "" || seen[t.RootCommentID] {
				continue
			}
			seen[t.RootCommentID] = true
			out = append(out, threadCandidate(t))
		}
	}

	for _, c := range idx.rootsByLoc[locationKey{path, line, side}] {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, idx.commentCandidate(c))
	}
	if side != "" {
		for _, c := range idx.rootsByLoc[locationKey{path, line, ""}] {
			if c.Side != "" || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, idx.commentCandidate(c))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})

	return out
}

// AllCandidates enumerates every known thread on the pull request, for the
// read-only reconciled listing.
func (idx *Index) AllCandidates() []model.ThreadCandidate {
	var out []model.ThreadCandidate
	seen := make(map[int64]bool)

	for rootID, t := range idx.threadByRoot {
		seen[rootID] = true
		out = append(out, threadCandidate(t))
	}
	for id, rootID := range idx.rootOf {
		if id != rootID || seen[id] {
			continue
		}
		c := idx.commentByID[id]
		if !c.Anchored() {
			continue
		}
		out = append(out, idx.commentCandidate(c))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})

	return out
}

func threadCandidate(t model.ReviewThread) model.ThreadCandidate {
	return model.ThreadCandidate{
		RootCommentID: t.RootCommentID,
		RemoteID:      t.RemoteID,
		Path:          t.Path,
		Line:          t.Line,
		Side:          t.Side,
		Resolved:      t.IsResolved,
		Outdated:      t.IsOutdated,
		LastActor:     t.LastActor,
		LastActivity:  t.LastActivity,
		Source:        model.CandidateSourceThread,
	}
}

func (idx *Index) commentCandidate(c model.Comment) model.ThreadCandidate {
	cand := model.ThreadCandidate{
		RootCommentID: c.ID,
		Path:          c.Path,
		Line:          c.Line,
		Side:          c.Side,
		LastActor:     c.Author,
		LastActivity:  c.UpdatedAt,
		Source:        model.CandidateSourceComment,
	}
	if a, ok := idx.latestByRoot[c.ID]; ok {
		cand.LastActor = a.Author
		cand.LastActivity = a.UpdatedAt
	}
	return cand
}
