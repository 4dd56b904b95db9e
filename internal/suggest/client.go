// Package suggest talks to the design-suggestion backend: one call for
// suggestions on a page snapshot and one for follow-up questions.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/stylelens/internal/capture"
	"github.com/ziadkadry99/stylelens/internal/config"
	"github.com/ziadkadry99/stylelens/internal/conversation"
)

// SuggestionResponse is the resolved answer to a suggestion request.
type SuggestionResponse struct {
	Shape Shape
	// Text is the AI output, whichever field carried it.
	Text string
	// Error is the backend's error text for ShapeError.
	Error string
	// Raw is the body as received.
	Raw []byte
}

// FollowUpResponse is the resolved answer to a follow-up question.
type FollowUpResponse struct {
	Shape Shape
	Text  string
	Error string
	Raw   []byte
}

type suggestRequest struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

type promptRequest struct {
	Prompt  string `json:"prompt"`
	Content string `json:"content"`
}

// Client calls the backend. It is safe for concurrent use.
type Client struct {
	baseURL     string
	suggestPath string
	promptPath  string
	http        *http.Client
	maxBody     int64
	logger      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithPaths overrides the suggestion and follow-up endpoint paths.
func WithPaths(suggestPath, promptPath string) Option {
	return func(cl *Client) {
		cl.suggestPath = suggestPath
		cl.promptPath = promptPath
	}
}

// WithMaxResponseBytes caps how much of a response body is read.
func WithMaxResponseBytes(n int64) Option {
	return func(cl *Client) { cl.maxBody = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		suggestPath: "/api/suggest",
		promptPath:  "/api/prompt",
		http:        &http.Client{Timeout: 90 * time.Second},
		maxBody:     1 << 20,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewClientFromConfig creates a Client from the backend section of the config.
func NewClientFromConfig(cfg config.BackendConfig, logger *zap.Logger) *Client {
	return NewClient(cfg.BaseURL,
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithPaths(cfg.SuggestPath, cfg.PromptPath),
		WithMaxResponseBytes(cfg.MaxResponseBytes),
		WithLogger(logger),
	)
}

// RequestSuggestions sends the snapshot's markup and CSS for review.
//
// A transport failure returns *ConnectionError and a non-2xx status returns
// *APIError. Any 2xx body is returned resolved, including ShapeError and
// ShapeUnknown; interpreting those is up to the caller.
func (c *Client) RequestSuggestions(ctx context.Context, snap *capture.PageSnapshot) (*SuggestionResponse, error) {
	raw, err := c.post(ctx, c.suggestPath, suggestRequest{HTML: snap.HTML, CSS: snap.CSS})
	if err != nil {
		return nil, err
	}
	r := resolve(raw)
	c.logger.Debug("suggestion response", zap.Stringer("shape", r.shape), zap.Int("bytes", len(raw)))
	return &SuggestionResponse{Shape: r.shape, Text: r.text, Error: r.err, Raw: raw}, nil
}

// RequestFollowUp asks question about the suggestion held in state. It
// returns ErrNoPriorSuggestion, without any network call, when state holds
// no successful suggestion yet.
func (c *Client) RequestFollowUp(ctx context.Context, state *conversation.State, question string) (*FollowUpResponse, error) {
	content, ok := state.Payload()
	if !ok {
		return nil, ErrNoPriorSuggestion
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	raw, err := c.post(ctx, c.promptPath, promptRequest{Prompt: question, Content: content})
	if err != nil {
		return nil, err
	}
	r := resolve(raw)
	c.logger.Debug("follow-up response", zap.Stringer("shape", r.shape), zap.Int("bytes", len(raw)))
	return &FollowUpResponse{Shape: r.shape, Text: r.text, Error: r.err, Raw: raw}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ConnectionError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, &ConnectionError{URL: url, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Info("backend call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, resp.Status, raw)
	}
	return raw, nil
}
