// Package report writes a captured page and its suggestions as one
// self-contained HTML file.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/ziadkadry99/stylelens/internal/analysis"
	"github.com/ziadkadry99/stylelens/internal/conversation"
	"github.com/ziadkadry99/stylelens/internal/render"
)

// Report is everything one report shows.
type Report struct {
	URL        string
	CapturedAt time.Time
	Sections   analysis.Sections
	// Raw is the AI response text as received.
	Raw       string
	Exchanges []conversation.Exchange
	// GeneratedAt defaults to now.
	GeneratedAt time.Time
}

type pageData struct {
	URL         string
	CapturedAt  string
	GeneratedAt string
	Suggestions template.HTML
	Transcript  template.HTML
	HasCode     bool
}

var (
	// Raw HTML in the transcript is omitted rather than rendered.
	md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	pageTmpl = template.Must(template.New("report").Parse(pageTemplate))
)

// Write renders r to w.
func Write(w io.Writer, r Report) error {
	var transcript bytes.Buffer
	if err := md.Convert([]byte(r.Raw), &transcript); err != nil {
		return fmt.Errorf("rendering transcript: %w", err)
	}

	generated := r.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	data := pageData{
		URL:         r.URL,
		GeneratedAt: generated.Format(time.RFC1123),
		Suggestions: template.HTML(render.HTML(render.Suggestions(r.Sections, r.Exchanges))),
		Transcript:  template.HTML(transcript.String()),
		HasCode:     r.Sections.HasCode(),
	}
	if !r.CapturedAt.IsZero() {
		data.CapturedAt = r.CapturedAt.Format(time.RFC1123)
	}

	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing report template: %w", err)
	}
	return nil
}
