package render

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/stylelens/internal/analysis"
)

// User-facing messages shared by the popup and the CLI.
const (
	MsgNoCode            = "AI response received, but no code suggestions were generated. Try a simpler webpage or smaller HTML/CSS."
	MsgUnexpected        = "Unexpected response from AI service."
	MsgNoPriorSuggestion = "No previous suggestions found. Please generate suggestions first."
	MsgEmptyQuestion     = "Type a question about the suggestions first."
)

// alert builds a role=alert box. label is trusted markup; message is
// escaped before it is spliced in.
func alert(level, label, message string) *html.Node {
	fragment := analysis.Escape(message)
	if label != "" {
		fragment = "<strong>" + label + "</strong> " + fragment
	}
	return add(el("div", "class", "alert alert-"+level, "role", "alert"), trusted(fragment)...)
}

// APIError reports a failure the backend answered with. A zero status means
// the error came inside a successful response.
func APIError(message string, status int) *html.Node {
	if status != 0 {
		message = fmt.Sprintf("%s (status %d)", message, status)
	}
	return alert("danger", "API Error:", message)
}

// ConnectionError reports a request that never got an answer.
func ConnectionError(message string) *html.Node {
	return alert("danger", "Connection Error:", message)
}

// CaptureError reports a page that could not be captured.
func CaptureError(message string) *html.Node {
	return alert("danger", "Error:", message)
}

// Unexpected reports a response in no known layout.
func Unexpected() *html.Node {
	return alert("warning", "", MsgUnexpected)
}

// NoCodeWarning accompanies a response that carried no fenced code.
func NoCodeWarning() *html.Node {
	return alert("warning", "", MsgNoCode)
}

// Notice is a local message the user must acknowledge; the web UI shows it
// as a blocking dialog.
func Notice(message string) *html.Node {
	return add(el("div", "class", "notice", "role", "alertdialog", "data-blocking", "true"),
		add(el("p"), text(message)))
}
