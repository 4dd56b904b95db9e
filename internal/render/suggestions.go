package render

import (
	"golang.org/x/net/html"

	"github.com/ziadkadry99/stylelens/internal/analysis"
	"github.com/ziadkadry99/stylelens/internal/capture"
	"github.com/ziadkadry99/stylelens/internal/conversation"
)

// Placeholders for explanation sections the response did not include.
const (
	NoAnalysis       = "No analysis provided."
	NoIssues         = "No common issues identified."
	NoImplementation = "No implementation notes provided."
)

// Boilerplate wraps suggested markup in a minimal standalone document.
func Boilerplate(code string) string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Suggested Page</title>
  <style rel="stylesheet"></style>
</head>
<body>
` + code + `
</body>
</html>`
}

// Suggestions renders a parsed response: the explanation card, the HTML and
// CSS code cards, and the follow-up panel holding any prior exchanges.
func Suggestions(s analysis.Sections, exchanges []conversation.Exchange) *html.Node {
	explanation := add(el("section", "class", "card explanation"),
		explanationBlock("What needs improvement", s.AnalysisHTML(), NoAnalysis),
		explanationBlock("Common beginner issues", s.Issues, NoIssues),
		explanationBlock("Why these changes help", s.ImplementationHTML(), NoImplementation),
	)

	htmlCode := s.HTMLCode
	if s.HasHTML() {
		htmlCode = Boilerplate(htmlCode)
	}
	code := add(el("div", "class", "code-column"),
		codeCard("HTML Suggestion", "html", newID("html-code"), htmlCode),
		codeCard("CSS Suggestion", "css", newID("css-code"), s.CSSCode),
	)

	return add(el("div", "id", IDSuggestions, "class", "suggestions"),
		add(el("div", "class", "suggestions-grid"), explanation, code),
		followUpPanel(exchanges),
	)
}

func explanationBlock(title, formatted, placeholder string) *html.Node {
	body := el("div", "class", "section-body")
	if formatted == "" {
		add(body, add(el("p", "class", "placeholder"), text(placeholder)))
	} else {
		add(body, trusted(formatted)...)
	}
	return add(el("div", "class", "explanation-section"),
		add(el("h3"), text(title)),
		body,
	)
}

// codeCard renders one copyable code panel. The copy control names its own
// code element by id.
func codeCard(title, lang, id, code string) *html.Node {
	header := add(el("div", "class", "card-header"),
		add(el("strong"), text(title)),
		add(el("button", "type", "button", "class", "copy-btn", AttrCopyTarget, id), text("Copy")),
	)
	pre := add(el("pre", "class", "code"),
		add(el("code", "id", id, "class", "language-"+lang), text(code)),
	)
	return add(el("section", "class", "card code-card", "data-lang", lang), header, pre)
}

func followUpPanel(exchanges []conversation.Exchange) *html.Node {
	history := el("div", "id", IDConversationHistory)
	for _, e := range exchanges {
		add(history, ConversationPair(e.Question, e.Answer, e.Failed))
	}
	return add(el("section", "class", "card followup"),
		add(el("div", "class", "card-header"), add(el("strong"), text("Ask a Follow-up Question"))),
		add(el("div", "class", "prompt-row"),
			el("input", "type", "text", "id", IDPromptInput,
				"placeholder", "e.g., How can I make this responsive?",
				"aria-label", "Follow-up question"),
			add(el("button", "type", "button", "id", IDPromptSubmit), text("Ask AI")),
		),
		history,
	)
}

// ConversationPair renders one question and its answer. A successful
// answer is formatted; a failed one is shown as an escaped error alert.
func ConversationPair(question, answer string, failed bool) *html.Node {
	if failed {
		return ConversationFailure(question, alert("danger", "Error:", answer))
	}
	return pair(question, trusted(analysis.Format(answer)))
}

// ConversationFailure renders a question whose answer is the given alert.
func ConversationFailure(question string, alertNode *html.Node) *html.Node {
	return pair(question, []*html.Node{alertNode})
}

func pair(question string, answer []*html.Node) *html.Node {
	answerID := newID("answer")
	return add(el("div", "class", "conversation-pair"),
		add(el("div", "class", "card question"),
			add(el("div", "class", "card-header"), add(el("strong"), text("Your Question"))),
			add(el("p"), text(question)),
		),
		add(el("div", "class", "card answer"),
			add(el("div", "class", "card-header"),
				add(el("strong"), text("AI Response")),
				add(el("button", "type", "button", "class", "copy-btn", AttrCopyTarget, answerID), text("Copy Response")),
			),
			add(el("div", "id", answerID, "class", "response-text"), answer...),
		),
	)
}

// Snapshot renders the extracted page: tabs over the captured markup and
// CSS, and the action that requests suggestions for it.
func Snapshot(snap *capture.PageSnapshot) *html.Node {
	tabs := add(el("div", "class", "tabs", "role", "tablist"),
		add(el("button", "type", "button", "class", "tab-btn active", "data-tab", "html"), text("HTML")),
		add(el("button", "type", "button", "class", "tab-btn", "data-tab", "css"), text("CSS")),
	)
	return add(el("div", "class", "extracted-DOM", "data-url", snap.URL),
		tabs,
		snapshotTab("html-tab", "tab-content active", "Extracted HTML", IDHTMLOutput, "html", snap.HTML),
		snapshotTab("css-tab", "tab-content d-none", "Extracted CSS", IDCSSOutput, "css", snap.CSS),
		add(el("button", "type", "button", "id", "suggest-btn", "class", "btn-primary"), text("Get AI Suggestions")),
	)
}

func snapshotTab(id, class, title, codeID, lang, code string) *html.Node {
	header := add(el("div", "class", "card-header"),
		add(el("strong"), text(title)),
		add(el("button", "type", "button", "class", "copy-btn", AttrCopyTarget, codeID), text("Copy")),
	)
	return add(el("div", "id", id, "class", class),
		header,
		add(el("pre", "class", "code"), add(el("code", "id", codeID, "class", "language-"+lang), text(code))),
	)
}
