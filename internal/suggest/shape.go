package suggest

import (
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Shape names which of the known backend response layouts a body matched.
type Shape int

const (
	// ShapeUnknown is a body that matched no known layout.
	ShapeUnknown Shape = iota
	// ShapeAnalysis is {"success": true, "analysis": "..."}.
	ShapeAnalysis
	// ShapeChoices is the legacy {"choices": [{"message": {"content": "..."}}]}.
	ShapeChoices
	// ShapeAnswer is the follow-up {"success": true, "response": "..."}.
	ShapeAnswer
	// ShapeError is {"error": "..."} or {"error": {"message": "..."}}, or a
	// body that was not JSON at all.
	ShapeError
)

func (s Shape) String() string {
	switch s {
	case ShapeAnalysis:
		return "analysis"
	case ShapeChoices:
		return "choices"
	case ShapeAnswer:
		return "answer"
	case ShapeError:
		return "error"
	default:
		return "unknown"
	}
}

// maxOpaqueError bounds how much of a non-JSON body is kept as error text.
const maxOpaqueError = 500

// resolved is the single canonical reading of one response body.
type resolved struct {
	shape Shape
	text  string
	err   string
}

// resolve reads raw once and settles which layout it follows. Success
// layouts win over an error field when both are present.
func resolve(raw []byte) resolved {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return resolved{shape: ShapeUnknown}
	}
	if !gjson.Valid(trimmed) {
		return resolved{shape: ShapeError, err: clip(trimmed, maxOpaqueError)}
	}

	doc := gjson.Parse(trimmed)
	success := doc.Get("success").Bool()

	if a := doc.Get("analysis"); success && a.Type == gjson.String && a.Str != "" {
		return resolved{shape: ShapeAnalysis, text: a.Str}
	}
	if r := doc.Get("response"); success && r.Type == gjson.String && r.Str != "" {
		return resolved{shape: ShapeAnswer, text: r.Str}
	}
	if c := doc.Get("choices.0.message.content"); c.Type == gjson.String && c.Str != "" {
		return resolved{shape: ShapeChoices, text: c.Str}
	}

	e := doc.Get("error")
	switch {
	case e.Type == gjson.String && e.Str != "":
		return resolved{shape: ShapeError, err: e.Str}
	case e.IsObject() && e.Get("message").String() != "":
		return resolved{shape: ShapeError, err: e.Get("message").String()}
	}
	return resolved{shape: ShapeUnknown}
}

func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "…"
		}
		n++
	}
	return s
}
