package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const anthropicBaseURL = "https://api.anthropic.com"

// AnthropicProvider implements Provider using the Anthropic Messages API via direct HTTP.
type AnthropicProvider struct {
	apiKey   string
	baseURL  string
	defaults defaults
	client   *http.Client
}

// NewAnthropicProvider creates a new Anthropic provider. An empty baseURL
// uses the public API.
func NewAnthropicProvider(apiKey, baseURL string, d defaults) *AnthropicProvider {
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &AnthropicProvider{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		defaults: d,
		client:   &http.Client{},
	}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	req = p.defaults.apply(req)

	// System messages travel in their own field.
	var system []string
	var messages []anthropicMessage
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		messages = append(messages, anthropicMessage{Role: string(msg.Role), Content: msg.Content})
	}

	raw, status, err := postJSON(ctx, p.client, p.baseURL+"/v1/messages", map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": "2023-06-01",
	}, anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      strings.Join(system, "\n\n"),
		Messages:    messages,
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("anthropic returned status %d with unreadable body: %w", status, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("anthropic API error (%s): %s", resp.Error.Type, resp.Error.Message)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("anthropic returned status %d", status)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:      content.String(),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Model:        resp.Model,
		FinishReason: resp.StopReason,
	}, nil
}
