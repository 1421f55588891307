package application

import "strings"

// formatSuggestion wraps proposed code in a GitHub suggestion fence,
// optionally preceded by an explanatory paragraph. The fence is sized to
// exceed the longest backtick run inside the text so embedded code fences
// cannot break out of the block.
func formatSuggestion(suggestion, comment string) string {
	fence := "```"
	if run := longestBacktickRun(suggestion); run >= 3 {
		fence = strings.Repeat("`", run+1)
	}

	var b strings.Builder
	if comment != "" {
		b.WriteString(strings.TrimRight(comment, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(fence)
	b.WriteString("suggestion\n")
	b.WriteString(strings.TrimRight(suggestion, "\n"))
	b.WriteString("\n")
	b.WriteString(fence)
	return b.String()
}

func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}
