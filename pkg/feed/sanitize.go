package feed

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// cleanText strips HTML tags, unescapes entities, collapses whitespace and
// truncates the result to limit runes. Zero limit means no truncation.
func cleanText(s string, limit int) string {
	cleaned := stripPolicy.Sanitize(s)
	cleaned = html.UnescapeString(cleaned)
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if limit > 0 {
		runes := []rune(cleaned)
		if len(runes) > limit {
			cleaned = string(runes[:limit])
		}
	}
	return cleaned
}
