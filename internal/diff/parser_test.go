package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleHunk(t *testing.T) {
	patch := "@@ -1,2 +1,2 @@\n-const a = 1;\n+const a = 2;\n context\n"

	fp := Parse(patch)

	require.Len(t, fp.Hunks, 1)
	h := fp.Hunks[0]
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 2, h.OldCount)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 2, h.NewCount)

	require.Len(t, h.Lines, 3)
	assert.Equal(t, Line{Kind: KindRemoved, Content: "const a = 1;", OldLine: 1}, h.Lines[0])
	assert.Equal(t, Line{Kind: KindAdded, Content: "const a = 2;", NewLine: 1}, h.Lines[1])
	assert.Equal(t, Line{Kind: KindContext, Content: "context", OldLine: 2, NewLine: 2}, h.Lines[2])
}

func TestParseMultipleHunks(t *testing.T) {
	patch := "@@ -10,3 +10,4 @@ func main() {\n context one\n+added\n context two\n context three\n" +
		"@@ -50,2 +51,1 @@\n-removed a\n-removed b\n+replacement\n"

	fp := Parse(patch)

	require.Len(t, fp.Hunks, 2)

	first := fp.Hunks[0]
	require.Len(t, first.Lines, 4)
	assert.Equal(t, KindContext, first.Lines[0].Kind)
	assert.Equal(t, 10, first.Lines[0].OldLine)
	assert.Equal(t, 10, first.Lines[0].NewLine)
	assert.Equal(t, KindAdded, first.Lines[1].Kind)
	assert.Equal(t, 11, first.Lines[1].NewLine)
	// Context after the insertion is offset on the new side only.
	assert.Equal(t, 11, first.Lines[2].OldLine)
	assert.Equal(t, 12, first.Lines[2].NewLine)

	second := fp.Hunks[1]
	require.Len(t, second.Lines, 3)
	assert.Equal(t, 50, second.Lines[0].OldLine)
	assert.Equal(t, 51, second.Lines[1].OldLine)
	assert.Equal(t, 51, second.Lines[2].NewLine)
}

func TestParseSkipsFileHeaders(t *testing.T) {
	patch := "diff --git a/main.go b/main.go\nindex abc123..def456 100644\n--- a/main.go\n+++ b/main.go\n@@ -1,1 +1,1 @@\n-old\n+new\n"

	fp := Parse(patch)

	require.Len(t, fp.Hunks, 1)
	require.Len(t, fp.Hunks[0].Lines, 2)
	assert.Equal(t, KindRemoved, fp.Hunks[0].Lines[0].Kind)
	assert.Equal(t, KindAdded, fp.Hunks[0].Lines[1].Kind)
}

func TestParseSkipsNoNewlineMarker(t *testing.T) {
	patch := "@@ -1,1 +1,1 @@\n-old\n\\ No newline at end of file\n+new\n\\ No newline at end of file\n"

	fp := Parse(patch)

	require.Len(t, fp.Hunks, 1)
	require.Len(t, fp.Hunks[0].Lines, 2)
	assert.Equal(t, "old", fp.Hunks[0].Lines[0].Content)
	assert.Equal(t, "new", fp.Hunks[0].Lines[1].Content)
}

func TestParseMalformedHunkHeaderSkipsBody(t *testing.T) {
	patch := "@@ not a real header\n+orphan\n@@ -1,1 +1,1 @@\n+kept\n"

	fp := Parse(patch)

	require.Len(t, fp.Hunks, 1)
	require.Len(t, fp.Hunks[0].Lines, 1)
	assert.Equal(t, "kept", fp.Hunks[0].Lines[0].Content)
}

func TestParseShorthandRange(t *testing.T) {
	// "-1 +1" is shorthand for "-1,1 +1,1".
	fp := Parse("@@ -1 +1 @@\n-old\n+new\n")

	require.Len(t, fp.Hunks, 1)
	assert.Equal(t, 1, fp.Hunks[0].OldCount)
	assert.Equal(t, 1, fp.Hunks[0].NewCount)
}

func TestParseEmptyPatch(t *testing.T) {
	assert.Empty(t, Parse("").Hunks)
}

func TestParsePrefixlessLineTreatedAsContext(t *testing.T) {
	fp := Parse("@@ -3,2 +3,2 @@\n context\nbare line\n")

	require.Len(t, fp.Hunks, 1)
	require.Len(t, fp.Hunks[0].Lines, 2)
	assert.Equal(t, KindContext, fp.Hunks[0].Lines[1].Kind)
	assert.Equal(t, 4, fp.Hunks[0].Lines[1].OldLine)
	assert.Equal(t, 4, fp.Hunks[0].Lines[1].NewLine)
}
