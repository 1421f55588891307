// Package diff parses unified-diff patch text and answers whether a
// (line, side) address exists in a file's diff.
package diff

import (
	"strconv"
	"strings"
)

// LineKind classifies one body line of a hunk.
type LineKind int

const (
	// KindContext is an unchanged line, present in both file versions.
	KindContext LineKind = iota
	// KindAdded is a line present only in the new file version.
	KindAdded
	// KindRemoved is a line present only in the old file version.
	KindRemoved
)

// Line is a single hunk body line with its computed line numbers. OldLine is
// zero for added lines and NewLine is zero for removed lines; context lines
// carry both.
type Line struct {
	Kind    LineKind
	Content string
	OldLine int
	NewLine int
}

// Hunk is one @@ section of a file's patch.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// FilePatch is the parsed form of one file's unified-diff text.
type FilePatch struct {
	Hunks []Hunk
}

// Parse parses one file's unified-diff text, maintaining independent
// old-side and new-side line counters per hunk: added lines advance only the
// new counter, removed lines only the old counter, context lines both. It
// tolerates git file headers, "\ No newline at end of file" markers, and
// malformed hunk headers (the malformed hunk's body is skipped). Parsing is
// pure: identical input yields an identical result.
func Parse(patch string) FilePatch {
	var fp FilePatch
	if patch == "" {
		return fp
	}

	var cur *Hunk
	oldLine, newLine := 0, 0

	for _, raw := range strings.Split(patch, "\n") {
		switch {
		case raw == "":
			continue
		case strings.HasPrefix(raw, "diff --git"),
			strings.HasPrefix(raw, "index "),
			strings.HasPrefix(raw, "--- "),
			strings.HasPrefix(raw, "+++ "):
			continue
		case strings.HasPrefix(raw, `\ `):
			continue
		case strings.HasPrefix(raw, "@@"):
			if cur != nil {
				fp.Hunks = append(fp.Hunks, *cur)
			}
			h, ok := parseHunkHeader(raw)
			if !ok {
				cur = nil
				continue
			}
			cur = &h
			oldLine = h.OldStart
			newLine = h.NewStart
			continue
		}

		if cur == nil {
			continue
		}

		var ln Line
		switch raw[0] {
		case '+':
			ln = Line{Kind: KindAdded, Content: raw[1:], NewLine: newLine}
			newLine++
		case '-':
			ln = Line{Kind: KindRemoved, Content: raw[1:], OldLine: oldLine}
			oldLine++
		case ' ':
			ln = Line{Kind: KindContext, Content: raw[1:], OldLine: oldLine, NewLine: newLine}
			oldLine++
			newLine++
		default:
			// Prefix-less lines appear in truncated API patches; treat as context.
			ln = Line{Kind: KindContext, Content: raw, OldLine: oldLine, NewLine: newLine}
			oldLine++
			newLine++
		}
		cur.Lines = append(cur.Lines, ln)
	}

	if cur != nil {
		fp.Hunks = append(fp.Hunks, *cur)
	}

	return fp
}

// parseHunkHeader parses "@@ -oldStart,oldLen +newStart,newLen @@ context".
func parseHunkHeader(line string) (Hunk, bool) {
	parts := strings.Split(line, "@@")
	if len(parts) < 2 {
		return Hunk{}, false
	}

	var h Hunk
	var sawOld, sawNew bool

	for _, field := range strings.Fields(strings.TrimSpace(parts[1])) {
		switch {
		case strings.HasPrefix(field, "-"):
			h.OldStart, h.OldCount = parseRange(strings.TrimPrefix(field, "-"))
			sawOld = true
		case strings.HasPrefix(field, "+"):
			h.NewStart, h.NewCount = parseRange(strings.TrimPrefix(field, "+"))
			sawNew = true
		}
	}

	return h, sawOld && sawNew
}

// parseRange parses "start,count" or the shorthand "start" (count 1).
func parseRange(s string) (start, count int) {
	if idx := strings.Index(s, ","); idx >= 0 {
		start, _ = strconv.Atoi(s[:idx])
		count, _ = strconv.Atoi(s[idx+1:])
		return start, count
	}
	start, _ = strconv.Atoi(s)
	return start, 1
}
