// Package progress reports the steps of a CLI run.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides step feedback while a page is captured and analyzed.
type Reporter interface {
	Start(total int)
	Step(message string)
	Finish()
}

// NewReporter returns a CIReporter when the CI environment variable is set
// and a TerminalReporter otherwise. Output goes to w.
func NewReporter(w io.Writer) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{w: w}
	}
	return &TerminalReporter{w: w}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	w    io.Writer
	bar  *progressbar.ProgressBar
	done int
}

func (r *TerminalReporter) Start(total int) {
	r.done = 0
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription("Starting"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Step describes the step now running and marks the previous one done.
func (r *TerminalReporter) Step(message string) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(message)
	_ = r.bar.Set(r.done)
	r.done++
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	w     io.Writer
	total int
	step  int
}

func (r *CIReporter) Start(total int) {
	r.total, r.step = total, 0
}

func (r *CIReporter) Step(message string) {
	r.step++
	fmt.Fprintf(r.w, "[%d/%d] %s\n", r.step, r.total, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.w, "Done")
}
