package analysis

import (
	"regexp"
	"strings"
)

// Placeholders substituted when the AI response carries no fenced block of
// the matching language. They mean "nothing was provided", not an error.
const (
	NoHTMLSuggestion = "No HTML suggestions provided"
	NoCSSSuggestion  = "No CSS suggestions provided"
)

// Section identifies one of the named blocks of free text in an AI response.
type Section int

const (
	SectionAnalysis Section = iota
	SectionIssues
	SectionImplementation
)

func (s Section) String() string {
	switch s {
	case SectionAnalysis:
		return "analysis"
	case SectionIssues:
		return "issues"
	case SectionImplementation:
		return "implementation"
	default:
		return "unknown"
	}
}

// sectionAliases lists the heading titles each section answers to. Matching
// is case-insensitive and substring based; the longest alias wins when a
// heading mentions more than one.
var sectionAliases = map[Section][]string{
	SectionAnalysis:       {"what needs improvement", "analysis summary", "analysis"},
	SectionIssues:         {"common beginner issues", "common issues", "key issues"},
	SectionImplementation: {"why these changes help", "implementation notes"},
}

// Sections is the parsed form of one AI response. Text fields hold formatted
// HTML fragments and are empty when the response had no such section.
type Sections struct {
	Analysis       string
	Issues         string
	Implementation string
	HTMLCode       string
	CSSCode        string
}

// HasCode reports whether at least one fenced code block was found.
func (s Sections) HasCode() bool {
	return s.HTMLCode != NoHTMLSuggestion || s.CSSCode != NoCSSSuggestion
}

// HasHTML reports whether an html block was found.
func (s Sections) HasHTML() bool { return s.HTMLCode != NoHTMLSuggestion }

// HasCSS reports whether a css block was found.
func (s Sections) HasCSS() bool { return s.CSSCode != NoCSSSuggestion }

var (
	headingRE   = regexp.MustCompile(`^[ \t]*#{1,6}(?:[ \t]|[*_]|\p{So}|$)`)
	headingHash = regexp.MustCompile(`^[ \t]*#{1,6}`)
	fenceLineRE = regexp.MustCompile("^[ \t]*```")

	htmlFenceRE = regexp.MustCompile("(?is)```html\\b[ \\t]*\\r?\\n?(.*?)\\r?\\n?[ \\t]*```")
	cssFenceRE  = regexp.MustCompile("(?is)```css\\b[ \\t]*\\r?\\n?(.*?)\\r?\\n?[ \\t]*```")
)

// Parse splits a raw AI response into its named sections and code blocks.
// It never fails: missing sections come back empty and missing code blocks
// come back as the placeholder strings.
func Parse(raw string) Sections {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	found := extractSections(text)

	return Sections{
		Analysis:       formatIfPresent(found[SectionAnalysis]),
		Issues:         formatIfPresent(found[SectionIssues]),
		Implementation: formatIfPresent(found[SectionImplementation]),
		HTMLCode:       fencedBlock(htmlFenceRE, text, NoHTMLSuggestion),
		CSSCode:        fencedBlock(cssFenceRE, text, NoCSSSuggestion),
	}
}

// RawSection returns the unformatted text of one named section, or "" when
// the response has no heading for it.
func RawSection(raw string, s Section) string {
	return extractSections(strings.ReplaceAll(raw, "\r\n", "\n"))[s]
}

func formatIfPresent(text string) string {
	if text == "" {
		return ""
	}
	return Format(text)
}

func fencedBlock(re *regexp.Regexp, text, placeholder string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return placeholder
	}
	return m[1]
}

type heading struct {
	line  int
	title string
}

// extractSections finds heading lines outside fenced blocks and assigns each
// named section the body under its first matching heading. Fenced blocks are
// left out of bodies; they are read separately as code.
func extractSections(text string) map[Section]string {
	lines := strings.Split(text, "\n")
	fenced := make([]bool, len(lines))

	var headings []heading
	inFence := false
	for i, line := range lines {
		if fenceLineRE.MatchString(line) {
			fenced[i] = true
			inFence = !inFence
			continue
		}
		fenced[i] = inFence
		if inFence || !headingRE.MatchString(line) {
			continue
		}
		headings = append(headings, heading{
			line:  i,
			title: strings.ToLower(headingHash.ReplaceAllString(line, "")),
		})
	}

	out := make(map[Section]string, len(sectionAliases))
	for i, h := range headings {
		sec, ok := classify(h.title)
		if !ok {
			continue
		}
		if _, taken := out[sec]; taken {
			continue
		}
		end := len(lines)
		if i+1 < len(headings) {
			end = headings[i+1].line
		}
		var body []string
		for j := h.line + 1; j < end; j++ {
			switch {
			case !fenced[j]:
				body = append(body, lines[j])
			case len(body) > 0 && body[len(body)-1] != "":
				body = append(body, "")
			}
		}
		out[sec] = strings.TrimSpace(strings.Join(body, "\n"))
	}
	return out
}

func classify(title string) (Section, bool) {
	best, bestLen := Section(0), 0
	for _, sec := range []Section{SectionAnalysis, SectionIssues, SectionImplementation} {
		for _, alias := range sectionAliases[sec] {
			if len(alias) > bestLen && strings.Contains(title, alias) {
				best, bestLen = sec, len(alias)
			}
		}
	}
	return best, bestLen > 0
}

// AnalysisHTML returns the formatted analysis section.
func (s Sections) AnalysisHTML() string { return s.Analysis }

// ImplementationHTML returns the formatted implementation notes.
func (s Sections) ImplementationHTML() string { return s.Implementation }
