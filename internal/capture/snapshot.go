// Package capture takes a bounded snapshot of a page's markup and stylesheets.
package capture

import (
	"time"
	"unicode/utf8"
)

// Truncation markers appended when a snapshot field exceeds its limit.
const (
	HTMLTruncatedMarker = "\n<!-- truncated -->"
	CSSTruncatedMarker  = "\n/* truncated */"

	// NoExternalCSS replaces blank stylesheet content.
	NoExternalCSS = "/* No external CSS detected - page uses inline styles */"
)

// PageSnapshot is the bounded content sent to the suggestion backend.
// It is not modified after Capture returns it.
type PageSnapshot struct {
	URL           string    `json:"url"`
	HTML          string    `json:"html"`
	CSS           string    `json:"css"`
	HTMLTruncated bool      `json:"html_truncated"`
	CSSTruncated  bool      `json:"css_truncated"`
	Stylesheets   []string  `json:"stylesheets,omitempty"`
	CapturedAt    time.Time `json:"captured_at"`
}

// Page is what a Source reads from a live page before limits apply.
type Page struct {
	URL         string
	BodyHTML    string
	Stylesheets []string
}

// truncate cuts s to limit characters and appends marker when it is longer.
func truncate(s string, limit int, marker string) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + marker, true
		}
		n++
	}
	return s, false
}
