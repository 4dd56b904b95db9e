package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// OllamaProvider implements Provider using the local Ollama chat API.
type OllamaProvider struct {
	baseURL  string
	defaults defaults
	client   *http.Client
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(baseURL string, d defaults) *OllamaProvider {
	return &OllamaProvider{
		baseURL:  strings.TrimRight(baseURL, "/"),
		defaults: d,
		client:   &http.Client{},
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Message         ollamaMessage `json:"message"`
	Model           string        `json:"model"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error"`
}

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	req = p.defaults.apply(req)

	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, ollamaMessage{Role: string(msg.Role), Content: msg.Content})
	}

	raw, status, err := postJSON(ctx, p.client, p.baseURL+"/api/chat", nil, ollamaChatRequest{
		Model:    req.Model,
		Messages: messages,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}

	var resp ollamaChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("ollama returned status %d with unreadable body: %w", status, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d: %s", status, resp.Error)
	}

	return &CompletionResponse{
		Content:      resp.Message.Content,
		InputTokens:  resp.PromptEvalCount,
		OutputTokens: resp.EvalCount,
		Model:        resp.Model,
		FinishReason: resp.DoneReason,
	}, nil
}
