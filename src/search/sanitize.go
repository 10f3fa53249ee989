package search

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// cleanText strips markup from provider text and collapses whitespace.
func cleanText(s string) string {
	s = html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// normalize cleans every result and drops entries without a link.
func normalize(in []Result) []Result {
	out := make([]Result, 0, len(in))
	for _, r := range in {
		r.URL = strings.TrimSpace(r.URL)
		if r.URL == "" {
			continue
		}
		r.Title = cleanText(r.Title)
		r.Snippet = cleanText(r.Snippet)
		if r.Title == "" {
			r.Title = r.URL
		}
		out = append(out, r)
	}
	return out
}
