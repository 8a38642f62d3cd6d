package location

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags removes HTML markup from a location trail, keeping the text
// content and the " > " hierarchy separators intact. The remote calendar
// renders location text verbatim, so markup must never reach it.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
