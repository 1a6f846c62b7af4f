package feed

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var stripPolicy = bluemonday.StrictPolicy()

// cleanText returns s in NFC form without surrounding whitespace.
func cleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// snippet strips markup from an HTML fragment and collapses whitespace.
func snippet(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	text := html.UnescapeString(stripPolicy.Sanitize(fragment))
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}
