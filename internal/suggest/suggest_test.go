package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/stylelens/internal/capture"
	"github.com/ziadkadry99/stylelens/internal/conversation"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		shape Shape
		text  string
		err   string
	}{
		{"analysis", `{"success":true,"analysis":"### Analysis\nok"}`, ShapeAnalysis, "### Analysis\nok", ""},
		{"choices", `{"choices":[{"message":{"content":"legacy"}}]}`, ShapeChoices, "legacy", ""},
		{"answer", `{"success":true,"response":"use rem"}`, ShapeAnswer, "use rem", ""},
		{"error string", `{"error":"rate limited"}`, ShapeError, "", "rate limited"},
		{"error object", `{"error":{"message":"quota","type":"x"}}`, ShapeError, "", "quota"},
		{"success false with analysis", `{"success":false,"analysis":"x"}`, ShapeUnknown, "", ""},
		{"empty analysis", `{"success":true,"analysis":""}`, ShapeUnknown, "", ""},
		{"analysis wins over error", `{"success":true,"analysis":"a","error":"b"}`, ShapeAnalysis, "a", ""},
		{"not json", "<html>Bad Gateway</html>", ShapeError, "", "<html>Bad Gateway</html>"},
		{"empty body", "  ", ShapeUnknown, "", ""},
		{"json array", `[1,2]`, ShapeUnknown, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resolve([]byte(tt.body))
			assert.Equal(t, tt.shape, r.shape)
			assert.Equal(t, tt.text, r.text)
			assert.Equal(t, tt.err, r.err)
		})
	}
}

type recorded struct {
	path string
	body map[string]string
}

func newBackend(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, chan recorded) {
	t.Helper()
	var hits atomic.Int32
	reqs := make(chan recorded, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		data, _ := io.ReadAll(r.Body)
		var m map[string]string
		_ = json.Unmarshal(data, &m)
		reqs <- recorded{path: r.URL.Path, body: m}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, reqs
}

func TestRequestSuggestionsSuccess(t *testing.T) {
	srv, _, reqs := newBackend(t, http.StatusOK, `{"success":true,"analysis":"looks fine"}`)
	c := NewClient(srv.URL + "/")

	resp, err := c.RequestSuggestions(context.Background(), &capture.PageSnapshot{HTML: "<p>x</p>", CSS: "p{}"})
	require.NoError(t, err)
	assert.Equal(t, ShapeAnalysis, resp.Shape)
	assert.Equal(t, "looks fine", resp.Text)

	got := <-reqs
	assert.Equal(t, "/api/suggest", got.path)
	assert.Equal(t, map[string]string{"html": "<p>x</p>", "css": "p{}"}, got.body)
}

func TestRequestSuggestionsStatusError(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusInternalServerError, `{"error":"rate limited"}`)

	_, err := NewClient(srv.URL).RequestSuggestions(context.Background(), &capture.PageSnapshot{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Equal(t, "rate limited", apiErr.Message)
	assert.JSONEq(t, `{"error":"rate limited"}`, string(apiErr.Payload))
}

func TestRequestSuggestionsStatusErrorOpaqueBody(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusBadGateway, `upstream down`)

	_, err := NewClient(srv.URL).RequestSuggestions(context.Background(), &capture.PageSnapshot{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestRequestSuggestionsErrorShapeOnSuccess(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusOK, `{"error":"model overloaded"}`)

	resp, err := NewClient(srv.URL).RequestSuggestions(context.Background(), &capture.PageSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, ShapeError, resp.Shape)
	assert.Equal(t, "model overloaded", resp.Error)
}

func TestRequestSuggestionsConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).RequestSuggestions(context.Background(), &capture.PageSnapshot{})
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestRequestFollowUpWithoutSuggestionMakesNoCall(t *testing.T) {
	srv, hits, _ := newBackend(t, http.StatusOK, `{"success":true,"response":"x"}`)

	var state conversation.State
	_, err := NewClient(srv.URL).RequestFollowUp(context.Background(), &state, "why?")
	assert.ErrorIs(t, err, ErrNoPriorSuggestion)
	assert.Zero(t, hits.Load())
}

func TestRequestFollowUpSendsPriorPayload(t *testing.T) {
	srv, _, reqs := newBackend(t, http.StatusOK, `{"success":true,"response":"Use rem units."}`)

	var state conversation.State
	state.Remember([]byte(`{"success":true,"analysis":"prior"}`))

	resp, err := NewClient(srv.URL).RequestFollowUp(context.Background(), &state, "  which units?  ")
	require.NoError(t, err)
	assert.Equal(t, ShapeAnswer, resp.Shape)
	assert.Equal(t, "Use rem units.", resp.Text)

	got := <-reqs
	assert.Equal(t, "/api/prompt", got.path)
	assert.Equal(t, "which units?", got.body["prompt"])
	assert.Equal(t, `{"success":true,"analysis":"prior"}`, got.body["content"])
}

func TestRequestFollowUpEmptyQuestion(t *testing.T) {
	srv, hits, _ := newBackend(t, http.StatusOK, `{}`)
	var state conversation.State
	state.Remember([]byte(`{}`))

	_, err := NewClient(srv.URL).RequestFollowUp(context.Background(), &state, " ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Zero(t, hits.Load())
}

func TestClientCapsResponseBody(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusOK, `{"success":true,"analysis":"0123456789"}`)

	resp, err := NewClient(srv.URL, WithMaxResponseBytes(10)).RequestSuggestions(context.Background(), &capture.PageSnapshot{})
	require.NoError(t, err)
	assert.Len(t, resp.Raw, 10)
	assert.Equal(t, ShapeError, resp.Shape, "truncated body is not valid JSON")
}
