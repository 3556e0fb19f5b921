// Package sanitize cleans free text before it reaches a model prompt.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxDescriptionRunes caps sanitized free text.
const MaxDescriptionRunes = 10000

var (
	scriptBlock = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	anyTag      = regexp.MustCompile(`<[^>]*>`)
)

// Text strips script blocks and all remaining HTML tags, trims, and caps the
// result at MaxDescriptionRunes.
func Text(s string) string {
	s = scriptBlock.ReplaceAllString(s, "")
	s = anyTag.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return Truncate(s, MaxDescriptionRunes)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
