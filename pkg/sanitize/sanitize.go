// Package sanitize strips markup from user-authored text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes every HTML tag and returns the trimmed plain text.
func Text(s string) string {
	// block tags become spaces so words do not merge
	for _, tag := range []string{"</p>", "<br>", "<br/>", "<br />", "</div>"} {
		s = strings.ReplaceAll(s, tag, " ")
	}
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// Compact is Text with whitespace runs collapsed, used for search documents.
func Compact(s string) string {
	return strings.Join(strings.Fields(Text(s)), " ")
}

// OptionalText sanitizes s, mapping empty results to nil.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	clean := Text(*s)
	if clean == "" {
		return nil
	}
	return &clean
}
