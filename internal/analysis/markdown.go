package analysis

import (
	"fmt"
	"strings"
)

// Markdown lays a raw response out under fixed headings, whatever headings
// the AI used. Missing sections are left out; missing code is noted once.
func Markdown(raw string) string {
	s := Parse(raw)
	var b strings.Builder
	section := func(title string, sec Section) {
		if text := RawSection(raw, sec); text != "" {
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, text)
		}
	}

	section("What needs improvement", SectionAnalysis)
	section("Common beginner issues", SectionIssues)

	if s.HasCode() {
		b.WriteString("## Suggested code\n\n")
		fmt.Fprintf(&b, "```html\n%s\n```\n\n", s.HTMLCode)
		fmt.Fprintf(&b, "```css\n%s\n```\n\n", s.CSSCode)
	} else {
		b.WriteString("_No code suggestions were generated._\n\n")
	}

	section("Why these changes help", SectionImplementation)
	return strings.TrimSpace(b.String())
}
