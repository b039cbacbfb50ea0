package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reMultiSpace          = regexp.MustCompile(`[ \t]+`)
	reMoreThan2Linebreaks = regexp.MustCompile(`(\n){3,}`)
)

// SmartTrim collapses runs of spaces within each line, trims every line
// and keeps at most one empty line between paragraphs.
func SmartTrim(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(reMultiSpace.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = reMoreThan2Linebreaks.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Truncate cuts s to at most n runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)
	if n == 1 {
		return "…"
	}

	return strings.TrimSpace(string(runes[:n-1])) + "…"
}
