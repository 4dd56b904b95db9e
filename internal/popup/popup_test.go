package popup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/stylelens/internal/capture"
	"github.com/ziadkadry99/stylelens/internal/conversation"
	"github.com/ziadkadry99/stylelens/internal/history"
	"github.com/ziadkadry99/stylelens/internal/render"
	"github.com/ziadkadry99/stylelens/internal/suggest"
)

const codeAnswer = "### What needs improvement\n- **Contrast:** low\n\n```html\n<main></main>\n```\n\n```css\nmain { padding: 1rem; }\n```\n"

type fakeCapturer struct {
	snap *capture.PageSnapshot
	err  error
}

func (f *fakeCapturer) Capture(_ context.Context, pageURL string) (*capture.PageSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := *f.snap
	s.URL = pageURL
	return &s, nil
}

type recorder struct {
	mu        sync.Mutex
	runs      []history.Run
	followUps []history.FollowUp
}

func (r *recorder) LogRun(_ context.Context, run history.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *recorder) LogFollowUp(_ context.Context, f history.FollowUp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.followUps = append(r.followUps, f)
	return nil
}

// backend serves fixed bodies for both endpoints and counts requests.
type backend struct {
	suggestStatus int
	suggestBody   string
	promptStatus  int
	promptBody    string
	hits          atomic.Int32
}

func (b *backend) start(t *testing.T) *suggest.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/suggest":
			w.WriteHeader(b.suggestStatus)
			_, _ = w.Write([]byte(b.suggestBody))
		case "/api/prompt":
			w.WriteHeader(b.promptStatus)
			_, _ = w.Write([]byte(b.promptBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return suggest.NewClient(srv.URL)
}

func successBody(t *testing.T) string {
	t.Helper()
	return `{"success":true,"analysis":` + quote(codeAnswer) + `}`
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func extracted(t *testing.T, c *Controller) *Session {
	t.Helper()
	sess := NewSession()
	out := c.Extract(context.Background(), sess, "https://example.com")
	require.Equal(t, KindSnapshot, out.Kind)
	return sess
}

func newCapturer() *fakeCapturer {
	return &fakeCapturer{snap: &capture.PageSnapshot{HTML: "<main></main>", CSS: "main{}"}}
}

func TestExtractStoresSnapshot(t *testing.T) {
	c := NewController(newCapturer(), suggest.NewClient("http://127.0.0.1:1"))
	sess := NewSession()

	out := c.Extract(context.Background(), sess, "  https://example.com  ")
	require.Equal(t, KindSnapshot, out.Kind)
	assert.False(t, out.Kind.Failed())
	assert.Equal(t, "https://example.com", sess.Snapshot().URL)
	assert.Contains(t, out.HTML(), render.IDHTMLOutput)
}

func TestExtractFailureClearsSnapshot(t *testing.T) {
	capt := newCapturer()
	c := NewController(capt, suggest.NewClient("http://127.0.0.1:1"))
	sess := extracted(t, c)

	capt.err = errors.New("page returned 403 Forbidden")
	out := c.Extract(context.Background(), sess, "https://example.com/private")

	assert.Equal(t, KindCaptureError, out.Kind)
	assert.True(t, out.Kind.Failed())
	assert.Contains(t, out.HTML(), "403 Forbidden")
	assert.Nil(t, sess.Snapshot())

	again := c.Suggest(context.Background(), sess)
	assert.Equal(t, KindNotice, again.Kind)
	assert.ErrorIs(t, again.Err, ErrNoSnapshot)
}

func TestSuggestRendersAndRemembers(t *testing.T) {
	b := &backend{suggestStatus: http.StatusOK}
	b.suggestBody = successBody(t)
	rec := &recorder{}
	c := NewController(newCapturer(), b.start(t), WithRecorder(rec))
	sess := extracted(t, c)

	out := c.Suggest(context.Background(), sess)
	require.Equal(t, KindRendered, out.Kind)
	assert.NoError(t, out.Err)
	assert.Contains(t, out.HTML(), "main { padding: 1rem; }")

	payload, ok := sess.Conversation().Payload()
	require.True(t, ok)
	assert.Contains(t, payload, `"success":true`)

	sections, raw, ok := sess.LastResponse()
	require.True(t, ok)
	assert.Equal(t, codeAnswer, raw)
	assert.True(t, sections.HasCSS())
	assert.Equal(t, codeAnswer, out.Text)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, string(KindRendered), rec.runs[0].Kind)
	assert.Equal(t, "https://example.com", rec.runs[0].PageURL)
	assert.Equal(t, len("<main></main>"), rec.runs[0].HTMLChars)
}

func TestSuggestNoCodeWarnsAndStillRenders(t *testing.T) {
	b := &backend{suggestStatus: http.StatusOK, suggestBody: `{"success":true,"analysis":"### Analysis\nLooks fine."}`}
	c := NewController(newCapturer(), b.start(t))
	sess := extracted(t, c)

	out := c.Suggest(context.Background(), sess)
	require.Equal(t, KindNoCode, out.Kind)
	body := out.HTML()
	assert.Contains(t, body, "no code suggestions were generated")
	assert.Contains(t, body, "Looks fine.")
	assert.Contains(t, body, "No HTML suggestions provided")

	_, ok := sess.Conversation().Payload()
	assert.True(t, ok)
}

func TestSuggestRateLimited(t *testing.T) {
	b := &backend{suggestStatus: http.StatusInternalServerError, suggestBody: `{"error":"Rate limit exceeded"}`}
	c := NewController(newCapturer(), b.start(t))
	sess := extracted(t, c)

	out := c.Suggest(context.Background(), sess)
	require.Equal(t, KindAPIError, out.Kind)
	assert.Contains(t, out.HTML(), "Rate limit exceeded")
	assert.Contains(t, out.HTML(), "status 500")

	var apiErr *suggest.APIError
	require.ErrorAs(t, out.Err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	_, ok := sess.Conversation().Payload()
	assert.False(t, ok, "failed calls leave no follow-up context")
	suggesting, _ := sess.Busy()
	assert.False(t, suggesting)
}

func TestSuggestErrorShapeOnSuccessStatus(t *testing.T) {
	b := &backend{suggestStatus: http.StatusOK, suggestBody: `{"error":{"message":"model overloaded"}}`}
	c := NewController(newCapturer(), b.start(t))
	sess := extracted(t, c)

	out := c.Suggest(context.Background(), sess)
	assert.Equal(t, KindAPIError, out.Kind)
	assert.Contains(t, out.HTML(), "model overloaded")
	assert.NotContains(t, out.HTML(), "status")
}

func TestSuggestUnexpectedShape(t *testing.T) {
	b := &backend{suggestStatus: http.StatusOK, suggestBody: `{"weird":true}`}
	c := NewController(newCapturer(), b.start(t))
	sess := extracted(t, c)

	out := c.Suggest(context.Background(), sess)
	assert.Equal(t, KindUnexpected, out.Kind)
	assert.Contains(t, out.HTML(), render.MsgUnexpected)
}

func TestSuggestConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewController(newCapturer(), suggest.NewClient(url))
	sess := extracted(t, c)

	out := c.Suggest(context.Background(), sess)
	assert.Equal(t, KindConnectionError, out.Kind)
	assert.Contains(t, out.HTML(), "Connection Error:")
	var connErr *suggest.ConnectionError
	assert.ErrorAs(t, out.Err, &connErr)
}

// blockingSuggester holds RequestSuggestions until released.
type blockingSuggester struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingSuggester) RequestSuggestions(ctx context.Context, _ *capture.PageSnapshot) (*suggest.SuggestionResponse, error) {
	b.calls.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return &suggest.SuggestionResponse{Shape: suggest.ShapeAnalysis, Text: codeAnswer, Raw: []byte(`{"success":true}`)}, nil
}

func (b *blockingSuggester) RequestFollowUp(context.Context, *conversation.State, string) (*suggest.FollowUpResponse, error) {
	return nil, errors.New("not used")
}

func TestSuggestRejectsDoubleSubmission(t *testing.T) {
	bs := &blockingSuggester{entered: make(chan struct{}, 1), release: make(chan struct{})}
	c := NewController(newCapturer(), bs)
	sess := extracted(t, c)

	done := make(chan Outcome, 1)
	go func() { done <- c.Suggest(context.Background(), sess) }()
	<-bs.entered

	suggesting, _ := sess.Busy()
	assert.True(t, suggesting)

	second := c.Suggest(context.Background(), sess)
	assert.Equal(t, KindBusy, second.Kind)
	assert.ErrorIs(t, second.Err, ErrInFlight)

	close(bs.release)
	first := <-done
	assert.Equal(t, KindRendered, first.Kind)
	assert.Equal(t, int32(1), bs.calls.Load())

	suggesting, _ = sess.Busy()
	assert.False(t, suggesting)
}

// gatedFollowUp answers suggestions at once and holds follow-ups until
// released.
type gatedFollowUp struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedFollowUp) RequestSuggestions(context.Context, *capture.PageSnapshot) (*suggest.SuggestionResponse, error) {
	return &suggest.SuggestionResponse{Shape: suggest.ShapeAnalysis, Text: codeAnswer, Raw: []byte(`{"success":true}`)}, nil
}

func (g *gatedFollowUp) RequestFollowUp(context.Context, *conversation.State, string) (*suggest.FollowUpResponse, error) {
	g.entered <- struct{}{}
	<-g.release
	return &suggest.FollowUpResponse{Shape: suggest.ShapeAnswer, Text: "old answer"}, nil
}

func TestAskDuringNewSuggestionDoesNotLeakIntoNewConversation(t *testing.T) {
	g := &gatedFollowUp{entered: make(chan struct{}, 1), release: make(chan struct{})}
	c := NewController(newCapturer(), g)
	sess := extracted(t, c)
	require.Equal(t, KindRendered, c.Suggest(context.Background(), sess).Kind)

	done := make(chan Outcome, 1)
	go func() { done <- c.Ask(context.Background(), sess, "about the first one?") }()
	<-g.entered

	require.Equal(t, KindRendered, c.Suggest(context.Background(), sess).Kind)
	close(g.release)

	out := <-done
	assert.Equal(t, KindAnswer, out.Kind)
	assert.Equal(t, "old answer", out.Text)
	assert.Empty(t, sess.Conversation().Exchanges())
}

func TestAskWithoutSuggestionMakesNoCall(t *testing.T) {
	b := &backend{promptStatus: http.StatusOK, promptBody: `{"success":true,"response":"ok"}`}
	rec := &recorder{}
	c := NewController(newCapturer(), b.start(t), WithRecorder(rec))
	sess := NewSession()

	out := c.Ask(context.Background(), sess, "Why flexbox?")
	assert.Equal(t, KindNotice, out.Kind)
	assert.ErrorIs(t, out.Err, suggest.ErrNoPriorSuggestion)
	assert.Contains(t, out.HTML(), render.MsgNoPriorSuggestion)
	assert.Equal(t, int32(0), b.hits.Load())
	assert.Empty(t, rec.followUps)
}

func TestAskEmptyQuestion(t *testing.T) {
	c := NewController(newCapturer(), suggest.NewClient("http://127.0.0.1:1"))
	out := c.Ask(context.Background(), NewSession(), "   ")
	assert.Equal(t, KindNotice, out.Kind)
	assert.ErrorIs(t, out.Err, suggest.ErrEmptyQuestion)
}

func TestAskAnswersAndAppends(t *testing.T) {
	b := &backend{
		suggestStatus: http.StatusOK,
		promptStatus:  http.StatusOK,
		promptBody:    `{"success":true,"response":"Use **gap** instead of margins."}`,
	}
	b.suggestBody = successBody(t)
	rec := &recorder{}
	c := NewController(newCapturer(), b.start(t), WithRecorder(rec))
	sess := extracted(t, c)
	require.Equal(t, KindRendered, c.Suggest(context.Background(), sess).Kind)

	out := c.Ask(context.Background(), sess, "How do I space items?")
	require.Equal(t, KindAnswer, out.Kind)
	assert.Equal(t, "Use **gap** instead of margins.", out.Text)
	body := out.HTML()
	assert.Contains(t, body, "Your Question")
	assert.Contains(t, body, "<strong>gap</strong>")

	ex := sess.Conversation().Exchanges()
	require.Len(t, ex, 1)
	assert.Equal(t, "How do I space items?", ex[0].Question)
	assert.False(t, ex[0].Failed)

	require.Len(t, rec.followUps, 1)
	assert.Equal(t, string(KindAnswer), rec.followUps[0].Kind)
	assert.Equal(t, sess.ID, rec.followUps[0].SessionID)
}

func TestAskFailureIsEscapedAndRecorded(t *testing.T) {
	b := &backend{
		suggestStatus: http.StatusOK,
		promptStatus:  http.StatusBadGateway,
		promptBody:    `{"error":"<b>upstream</b> down"}`,
	}
	b.suggestBody = successBody(t)
	c := NewController(newCapturer(), b.start(t))
	sess := extracted(t, c)
	require.Equal(t, KindRendered, c.Suggest(context.Background(), sess).Kind)

	out := c.Ask(context.Background(), sess, "Again?")
	assert.Equal(t, KindAPIError, out.Kind)
	body := out.HTML()
	assert.Contains(t, body, "&lt;b&gt;upstream&lt;/b&gt; down")
	assert.NotContains(t, body, "<b>upstream</b>")

	ex := sess.Conversation().Exchanges()
	require.Len(t, ex, 1)
	assert.True(t, ex[0].Failed)

	_, asking := sess.Busy()
	assert.False(t, asking)
	_, ok := sess.Conversation().Payload()
	assert.True(t, ok, "a failed follow-up keeps the suggestion context")
}

func TestNewSuggestionResetsConversation(t *testing.T) {
	b := &backend{suggestStatus: http.StatusOK, promptStatus: http.StatusOK, promptBody: `{"success":true,"response":"sure"}`}
	b.suggestBody = successBody(t)
	c := NewController(newCapturer(), b.start(t))
	sess := extracted(t, c)

	require.Equal(t, KindRendered, c.Suggest(context.Background(), sess).Kind)
	require.Equal(t, KindAnswer, c.Ask(context.Background(), sess, "one").Kind)
	require.Len(t, sess.Conversation().Exchanges(), 1)

	require.Equal(t, KindRendered, c.Suggest(context.Background(), sess).Kind)
	assert.Empty(t, sess.Conversation().Exchanges())
}

func TestSessionsStore(t *testing.T) {
	store := NewSessions(time.Hour)
	sess := store.Create()

	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, store.Count())

	evicted := make(chan string, 1)
	store.OnEvicted(func(id string) { evicted <- id })
	store.Delete(sess.ID)
	assert.Equal(t, sess.ID, <-evicted)

	_, ok = store.Get(sess.ID)
	assert.False(t, ok)
}

func TestSessionsExpire(t *testing.T) {
	store := NewSessions(20 * time.Millisecond)
	sess := store.Create()

	time.Sleep(60 * time.Millisecond)
	_, ok := store.Get(sess.ID)
	assert.False(t, ok)
}
