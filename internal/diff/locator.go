package diff

import (
	"errors"
	"sync"

	"github.com/dpfaulkner/redline/internal/domain/model"
)

// Probe failures callers branch on to phrase precise guidance: a file
// without diff text is a different situation than a line outside the diff.
var (
	// ErrNoDiff reports a file with no diff text available (binary or
	// oversized files).
	ErrNoDiff = errors.New("no diff available for file")

	// ErrNotInDiff reports a (line, side) address absent from the patch.
	ErrNotInDiff = errors.New("line not present in diff")
)

// Locator validates (line, side) addresses against file patches. Parsed
// patches are cached by their full text, since the same file is probed many
// times within a run.
type Locator struct {
	mu    sync.Mutex
	cache map[string]FilePatch
}

// NewLocator creates an empty Locator.
func NewLocator() *Locator {
	return &Locator{cache: make(map[string]FilePatch)}
}

func (l *Locator) parsed(patch string) FilePatch {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fp, ok := l.cache[patch]; ok {
		return fp
	}
	fp := Parse(patch)
	l.cache[patch] = fp
	return fp
}

// Locate reports whether (line, side) is addressable in patch, returning the
// matched hunk line on success. Added lines are addressable only on RIGHT,
// removed lines only on LEFT, context lines on both sides at their
// respective numbers. Absence is reported as ErrNoDiff or ErrNotInDiff.
func (l *Locator) Locate(patch string, line int, side model.Side) (Line, error) {
	if patch == "" {
		return Line{}, ErrNoDiff
	}
	if line <= 0 || !side.Valid() {
		return Line{}, ErrNotInDiff
	}

	for _, h := range l.parsed(patch).Hunks {
		for _, ln := range h.Lines {
			if lineMatches(ln, line, side) {
				return ln, nil
			}
		}
	}

	return Line{}, ErrNotInDiff
}

func lineMatches(ln Line, line int, side model.Side) bool {
	switch side {
	case model.SideRight:
		return ln.Kind != KindRemoved && ln.NewLine == line
	case model.SideLeft:
		return ln.Kind != KindAdded && ln.OldLine == line
	}
	return false
}

// ResolveSide picks the side for a line when the caller supplied none,
// preferring the new file version: RIGHT when the line exists there, LEFT
// otherwise. ok is false when the line is on neither side or no diff text
// is available.
func (l *Locator) ResolveSide(patch string, line int) (model.Side, bool) {
	if _, err := l.Locate(patch, line, model.SideRight); err == nil {
		return model.SideRight, true
	}
	if _, err := l.Locate(patch, line, model.SideLeft); err == nil {
		return model.SideLeft, true
	}
	return "", false
}

// PreferredAnchor picks a default anchor when no concrete line is supplied:
// the first added line, else the first context line, else the first removed
// line. New code is preferred as an anchor whenever any exists. ok is false
// for an empty or headers-only patch.
func (l *Locator) PreferredAnchor(patch string) (line int, side model.Side, ok bool) {
	if patch == "" {
		return 0, "", false
	}

	var firstContext, firstRemoved *Line
	fp := l.parsed(patch)
	for i := range fp.Hunks {
		for j := range fp.Hunks[i].Lines {
			ln := &fp.Hunks[i].Lines[j]
			switch ln.Kind {
			case KindAdded:
				return ln.NewLine, model.SideRight, true
			case KindContext:
				if firstContext == nil {
					firstContext = ln
				}
			case KindRemoved:
				if firstRemoved == nil {
					firstRemoved = ln
				}
			}
		}
	}

	if firstContext != nil {
		return firstContext.NewLine, model.SideRight, true
	}
	if firstRemoved != nil {
		return firstRemoved.OldLine, model.SideLeft, true
	}
	return 0, "", false
}

// AnchorOnSide picks a default anchor constrained to one side: the first
// changed line on that side, else the first context line. ok is false when
// the side shows no addressable lines.
func (l *Locator) AnchorOnSide(patch string, side model.Side) (line int, ok bool) {
	if patch == "" || !side.Valid() {
		return 0, false
	}

	changed := KindAdded
	if side == model.SideLeft {
		changed = KindRemoved
	}

	firstContext := 0
	for _, h := range l.parsed(patch).Hunks {
		for _, ln := range h.Lines {
			if ln.Kind == changed {
				return lineOn(ln, side), true
			}
			if ln.Kind == KindContext && firstContext == 0 {
				firstContext = lineOn(ln, side)
			}
		}
	}

	if firstContext != 0 {
		return firstContext, true
	}
	return 0, false
}

func lineOn(ln Line, side model.Side) int {
	if side == model.SideLeft {
		return ln.OldLine
	}
	return ln.NewLine
}
