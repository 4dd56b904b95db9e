package analysis

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Substitution rules, applied in order. Later rules see the output of the
// earlier ones, so a line turned into <li> by rule 1 is not touched by 3.
var (
	labelColonItemRE = regexp.MustCompile(`(?m)^[ \t]*-[ \t]+\*\*(.+?):\*\*[ \t]+(.+)$`)
	labelItemRE      = regexp.MustCompile(`(?m)^[ \t]*-[ \t]+\*\*(.+?)\*\*[ \t]+(.+)$`)
	bulletItemRE     = regexp.MustCompile(`(?m)^[ \t]*-[ \t]+(.+)$`)
	boldRE           = regexp.MustCompile(`\*\*(.+?)\*\*`)
	blankRunRE       = regexp.MustCompile(`\n[ \t]*\n[ \t\n]*`)
)

// Format converts the small markdown subset AI responses use (bullet lists,
// bold spans, blank-line paragraphs) into one HTML block. Text that is not
// part of a recognized pattern passes through unescaped. Blank input
// yields "".
func Format(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return ""
	}

	text = labelColonItemRE.ReplaceAllString(text, "<li><strong>$1:</strong> $2</li>")
	text = labelItemRE.ReplaceAllString(text, "<li><strong>$1</strong> $2</li>")
	text = bulletItemRE.ReplaceAllString(text, "<li>$1</li>")
	text = boldRE.ReplaceAllString(text, "<strong>$1</strong>")

	blocks := blankRunRE.Split(text, -1)
	if !strings.Contains(text, "<li>") {
		return "<p>" + strings.Join(blocks, "</p><p>") + "</p>"
	}

	var b strings.Builder
	for _, block := range blocks {
		writeMixedBlock(&b, block)
	}
	return b.String()
}

// writeMixedBlock emits runs of list items as one <ul> and every other run of
// lines as its own paragraph.
func writeMixedBlock(b *strings.Builder, block string) {
	var items, para []string
	flush := func() {
		if len(para) > 0 {
			b.WriteString("<p>" + strings.Join(para, "\n") + "</p>")
			para = nil
		}
		if len(items) > 0 {
			b.WriteString("<ul>" + strings.Join(items, "") + "</ul>")
			items = nil
		}
	}
	for _, line := range strings.Split(block, "\n") {
		if isListItem(line) {
			if len(para) > 0 {
				flush()
			}
			items = append(items, line)
			continue
		}
		if len(items) > 0 {
			flush()
		}
		para = append(para, line)
	}
	flush()
}

func isListItem(line string) bool {
	return strings.HasPrefix(line, "<li>") && strings.HasSuffix(line, "</li>")
}

// Escape makes text safe to insert verbatim into an HTML text node: & < > "
// and ' become entities. html.UnescapeString reverses it exactly.
func Escape(text string) string {
	return html.EscapeString(text)
}
