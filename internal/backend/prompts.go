package backend

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const suggestSystemPrompt = `You are a senior front-end designer reviewing a web page for a beginner.
Reply in markdown with exactly these sections, in this order:

### What Needs Improvement
A bullet list. Start each bullet with a bold label followed by a colon, e.g. "- **Color contrast:** ...".

### Common Beginner Issues
A short bullet list of habits visible in the markup or styles.

### Suggested Code
One fenced block tagged html with improved body markup (no <html>, <head> or <body> tags), then one fenced block tagged css with the complete stylesheet for it.

### Why These Changes Help
A short paragraph or bullet list.

Do not add other sections. Keep the markup semantic and the CSS free of frameworks.`

const followUpSystemPrompt = `You are a senior front-end designer answering a follow-up question about design suggestions you already gave.
Answer briefly in markdown. Use bullets with bold labels where a list helps.
When you show code, use fenced blocks tagged html or css.`

func suggestMessages(html, css string) (system, user string) {
	var b strings.Builder
	b.WriteString("Here is the page body markup:\n\n```html\n")
	b.WriteString(html)
	b.WriteString("\n```\n\nAnd its external stylesheets:\n\n```css\n")
	b.WriteString(css)
	b.WriteString("\n```\n")
	return suggestSystemPrompt, b.String()
}

func followUpMessages(question, content string) (system, user string) {
	return followUpSystemPrompt, fmt.Sprintf("Your earlier suggestions:\n\n%s\n\nQuestion: %s", priorSuggestion(content), question)
}

// priorSuggestion recovers the suggestion text from the serialized response
// the client sends back. Anything it does not recognize is used as is.
func priorSuggestion(content string) string {
	if !gjson.Valid(content) {
		return content
	}
	v := gjson.Parse(content)
	switch {
	case v.Type == gjson.String:
		return priorSuggestion(v.Str)
	case v.IsObject():
		for _, path := range []string{"analysis", "response", "choices.0.message.content"} {
			if r := v.Get(path); r.Type == gjson.String {
				return r.Str
			}
		}
	}
	return content
}
