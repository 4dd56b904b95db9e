// Package popup runs the three user actions of the popup (extract a page,
// request suggestions, ask a follow-up) against one session at a time.
package popup

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/stylelens/internal/analysis"
	"github.com/ziadkadry99/stylelens/internal/capture"
	"github.com/ziadkadry99/stylelens/internal/conversation"
	"github.com/ziadkadry99/stylelens/internal/history"
	"github.com/ziadkadry99/stylelens/internal/render"
	"github.com/ziadkadry99/stylelens/internal/suggest"
)

// ErrInFlight is returned when a call of the same kind is already running
// for the session.
var ErrInFlight = errors.New("request already in progress")

// ErrNoSnapshot is returned by Suggest before a page has been extracted.
var ErrNoSnapshot = errors.New("no page extracted")

// Kind classifies an Outcome.
type Kind string

const (
	KindSnapshot        Kind = "snapshot"
	KindRendered        Kind = "rendered"
	KindNoCode          Kind = "no_code"
	KindAnswer          Kind = "answer"
	KindAPIError        Kind = "api_error"
	KindConnectionError Kind = "connection_error"
	KindUnexpected      Kind = "unexpected"
	KindCaptureError    Kind = "capture_error"
	KindNotice          Kind = "notice"
	KindBusy            Kind = "busy"
)

// Failed reports whether the kind ends an action without its result.
func (k Kind) Failed() bool {
	switch k {
	case KindSnapshot, KindRendered, KindNoCode, KindAnswer:
		return false
	}
	return true
}

// Outcome is what one action produced: a fragment to show and, for
// failures, the error behind it. Text carries the AI response text for
// suggestions and the answer for follow-ups.
type Outcome struct {
	Kind Kind
	Node *html.Node
	Text string
	Err  error
}

// HTML serializes the outcome's fragment.
func (o Outcome) HTML() string { return render.HTML(o.Node) }

// Capturer captures a page snapshot.
type Capturer interface {
	Capture(ctx context.Context, pageURL string) (*capture.PageSnapshot, error)
}

// Suggester performs the two backend calls.
type Suggester interface {
	RequestSuggestions(ctx context.Context, snap *capture.PageSnapshot) (*suggest.SuggestionResponse, error)
	RequestFollowUp(ctx context.Context, state *conversation.State, question string) (*suggest.FollowUpResponse, error)
}

// Recorder receives one entry per finished action. *history.Store
// satisfies it.
type Recorder interface {
	LogRun(ctx context.Context, run history.Run) error
	LogFollowUp(ctx context.Context, f history.FollowUp) error
}

// Controller runs popup actions. It holds no per-session state itself.
type Controller struct {
	capturer  Capturer
	suggester Suggester
	recorder  Recorder
	logger    *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder records every suggestion run and follow-up.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates a Controller.
func NewController(capturer Capturer, suggester Suggester, opts ...Option) *Controller {
	c := &Controller{capturer: capturer, suggester: suggester, logger: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Extract captures pageURL into the session. On failure the session keeps
// no snapshot, so Suggest stays unavailable.
func (c *Controller) Extract(ctx context.Context, sess *Session, pageURL string) Outcome {
	snap, err := c.capturer.Capture(ctx, strings.TrimSpace(pageURL))
	if err != nil {
		sess.setSnapshot(nil)
		c.logger.Warn("capture failed", zap.String("session", sess.ID), zap.String("url", pageURL), zap.Error(err))
		return Outcome{Kind: KindCaptureError, Node: render.CaptureError(err.Error()), Err: err}
	}
	sess.setSnapshot(snap)
	return Outcome{Kind: KindSnapshot, Node: render.Snapshot(snap)}
}

// Suggest requests suggestions for the session's snapshot and renders them.
// Only one Suggest runs per session at a time; a second call while one is in
// flight returns KindBusy without contacting the backend.
func (c *Controller) Suggest(ctx context.Context, sess *Session) Outcome {
	snap := sess.Snapshot()
	if snap == nil {
		return Outcome{Kind: KindNotice, Node: render.Notice("Extract a page before asking for suggestions."), Err: ErrNoSnapshot}
	}
	if !sess.suggesting.CompareAndSwap(false, true) {
		return busy()
	}
	defer sess.suggesting.Store(false)

	start := time.Now()
	resp, err := c.suggester.RequestSuggestions(ctx, snap)
	out := c.suggestOutcome(sess, resp, err)

	c.logger.Info("suggestion finished",
		zap.String("session", sess.ID),
		zap.String("kind", string(out.Kind)),
		zap.Duration("elapsed", time.Since(start)))
	c.recordRun(ctx, sess, snap, out.Kind, time.Since(start))
	return out
}

func (c *Controller) suggestOutcome(sess *Session, resp *suggest.SuggestionResponse, err error) Outcome {
	if err != nil {
		return failure(err)
	}

	switch resp.Shape {
	case suggest.ShapeAnalysis, suggest.ShapeChoices:
		sections := analysis.Parse(resp.Text)
		sess.conv.Remember(resp.Raw)
		sess.setLast(sections, resp.Text)

		node := render.Suggestions(sections, nil)
		if !sections.HasCode() {
			return Outcome{Kind: KindNoCode, Node: render.Group(render.NoCodeWarning(), node), Text: resp.Text}
		}
		return Outcome{Kind: KindRendered, Node: node, Text: resp.Text}
	case suggest.ShapeError:
		return Outcome{Kind: KindAPIError, Node: render.APIError(resp.Error, 0), Err: errors.New(resp.Error)}
	default:
		return Outcome{Kind: KindUnexpected, Node: render.Unexpected(), Err: errors.New(render.MsgUnexpected)}
	}
}

// Ask sends a follow-up question grounded on the session's last successful
// suggestion. Without one it returns a blocking notice and makes no call.
func (c *Controller) Ask(ctx context.Context, sess *Session, question string) Outcome {
	question = strings.TrimSpace(question)
	if question == "" {
		return Outcome{Kind: KindNotice, Node: render.Notice(render.MsgEmptyQuestion), Err: suggest.ErrEmptyQuestion}
	}
	if _, ok := sess.conv.Payload(); !ok {
		return noPrior()
	}
	if !sess.asking.CompareAndSwap(false, true) {
		return busy()
	}
	defer sess.asking.Store(false)

	gen := sess.conv.Generation()
	resp, err := c.suggester.RequestFollowUp(ctx, &sess.conv, question)
	out := c.askOutcome(sess, gen, question, resp, err)

	c.logger.Info("follow-up finished", zap.String("session", sess.ID), zap.String("kind", string(out.Kind)))
	c.recordFollowUp(ctx, sess, question, out.Kind)
	return out
}

func (c *Controller) askOutcome(sess *Session, gen uint64, question string, resp *suggest.FollowUpResponse, err error) Outcome {
	if errors.Is(err, suggest.ErrNoPriorSuggestion) {
		return noPrior()
	}
	if err != nil {
		f := failure(err)
		c.appendExchange(sess, gen, conversation.Exchange{Question: question, Answer: errorText(err), Failed: true})
		return Outcome{Kind: f.Kind, Node: render.ConversationFailure(question, f.Node), Text: errorText(err), Err: err}
	}

	switch resp.Shape {
	case suggest.ShapeAnswer, suggest.ShapeAnalysis, suggest.ShapeChoices:
		c.appendExchange(sess, gen, conversation.Exchange{Question: question, Answer: resp.Text})
		return Outcome{Kind: KindAnswer, Node: render.ConversationPair(question, resp.Text, false), Text: resp.Text}
	case suggest.ShapeError:
		c.appendExchange(sess, gen, conversation.Exchange{Question: question, Answer: resp.Error, Failed: true})
		return Outcome{Kind: KindAPIError, Node: render.ConversationPair(question, resp.Error, true), Text: resp.Error, Err: errors.New(resp.Error)}
	default:
		return Outcome{
			Kind: KindUnexpected,
			Node: render.ConversationFailure(question, render.Unexpected()),
			Err:  errors.New(render.MsgUnexpected),
		}
	}
}

// appendExchange drops answers to a suggestion that was replaced while the
// follow-up was in flight.
func (c *Controller) appendExchange(sess *Session, gen uint64, e conversation.Exchange) {
	if !sess.conv.AppendAt(gen, e) {
		c.logger.Debug("dropping follow-up for replaced suggestion", zap.String("session", sess.ID))
	}
}

// failure maps a backend call error onto its user-facing alert.
func failure(err error) Outcome {
	var apiErr *suggest.APIError
	if errors.As(err, &apiErr) {
		return Outcome{Kind: KindAPIError, Node: render.APIError(apiErr.Message, apiErr.StatusCode), Err: err}
	}
	return Outcome{Kind: KindConnectionError, Node: render.ConnectionError(errorText(err)), Err: err}
}

func errorText(err error) string {
	var connErr *suggest.ConnectionError
	if errors.As(err, &connErr) {
		return connErr.Err.Error()
	}
	var apiErr *suggest.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func busy() Outcome {
	return Outcome{Kind: KindBusy, Node: render.Notice("A request is already in progress."), Err: ErrInFlight}
}

func noPrior() Outcome {
	return Outcome{Kind: KindNotice, Node: render.Notice(render.MsgNoPriorSuggestion), Err: suggest.ErrNoPriorSuggestion}
}

func (c *Controller) recordRun(ctx context.Context, sess *Session, snap *capture.PageSnapshot, kind Kind, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}
	err := c.recorder.LogRun(context.WithoutCancel(ctx), history.Run{
		SessionID:  sess.ID,
		PageURL:    snap.URL,
		Kind:       string(kind),
		HTMLChars:  utf8.RuneCountInString(snap.HTML),
		CSSChars:   utf8.RuneCountInString(snap.CSS),
		DurationMS: elapsed.Milliseconds(),
	})
	if err != nil {
		c.logger.Warn("recording run", zap.Error(err))
	}
}

func (c *Controller) recordFollowUp(ctx context.Context, sess *Session, question string, kind Kind) {
	if c.recorder == nil {
		return
	}
	err := c.recorder.LogFollowUp(context.WithoutCancel(ctx), history.FollowUp{
		SessionID: sess.ID,
		Question:  question,
		Kind:      string(kind),
	})
	if err != nil {
		c.logger.Warn("recording follow-up", zap.Error(err))
	}
}
