// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every tag and attribute. Free-text fields in this service
// (register notes, order item notes, customer names) are plain text only.
var strict = bluemonday.StrictPolicy()

// PlainText removes all markup from s and trims surrounding space.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strict.Sanitize(s))
}

// PlainTextMax is PlainText truncated to at most max runes.
func PlainTextMax(s string, max int) string {
	out := PlainText(s)
	if max <= 0 {
		return out
	}
	r := []rune(out)
	if len(r) > max {
		return strings.TrimSpace(string(r[:max]))
	}
	return out
}

// IsPlainText reports whether s contains nothing that looks like a tag.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
