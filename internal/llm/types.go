package llm

import "strings"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for an LLM completion request.
// Zero Model, MaxTokens and Temperature fall back to the provider's own.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// Prompt joins the request's messages into one string, for token estimates.
func (r CompletionRequest) Prompt() string {
	var b strings.Builder
	for _, m := range r.Messages {
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

// defaults carries the configured fallbacks shared by every provider.
type defaults struct {
	model       string
	maxTokens   int
	temperature float64
}

func (d defaults) apply(req CompletionRequest) CompletionRequest {
	if req.Model == "" {
		req.Model = d.model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = d.maxTokens
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 4096
	}
	if req.Temperature == 0 {
		req.Temperature = d.temperature
	}
	return req
}
