package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the default maximum length for a task or
// service description cell in table output.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the minimum maxLen value for TruncateDescription.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// TruncateDescription truncates s to maxLen characters for a single
// table cell: it collapses all whitespace (including newlines) to single
// spaces, then truncates on rune boundaries and appends "..." if
// anything was cut. maxLen below MinTruncateLen is clamped to it so
// there's always room for one character plus "...".
func TruncateDescription(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
