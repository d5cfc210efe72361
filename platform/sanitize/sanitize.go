// Package sanitize cleans free text typed by agents (notes, call outcomes)
// before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	blankPattern = regexp.MustCompile(`[ \t]+`)
)

// StripHTML removes markup, including markup hidden behind entity encoding.
func StripHTML(s string) string {
	out := tagPattern.ReplaceAllString(s, "")
	out = html.UnescapeString(out)
	return tagPattern.ReplaceAllString(out, "")
}

// Text strips markup and control characters, collapses runs of spaces and
// tabs, and trims each line. Line breaks are kept.
func Text(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\r' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, StripHTML(s))

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(blankPattern.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// TextPtr is Text for optional fields.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	return &out
}
