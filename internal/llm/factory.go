package llm

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/stylelens/internal/config"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	ollamaBaseURL     = "http://localhost:11434"
)

// NewProvider creates the provider named by cfg, wrapped in a rate limiter
// when cfg.RequestsPerMinute is positive. API keys come from the
// environment; ollama needs none.
func NewProvider(cfg config.AIConfig) (Provider, error) {
	d := defaults{model: cfg.Model, maxTokens: cfg.MaxTokens, temperature: cfg.Temperature}
	if d.model == "" {
		d.model = config.DefaultModel(cfg.Provider)
	}

	var p Provider
	switch cfg.Provider {
	case config.ProviderAnthropic:
		key, err := apiKey(cfg.Provider)
		if err != nil {
			return nil, err
		}
		p = NewAnthropicProvider(key, cfg.BaseURL, d)

	case config.ProviderOpenAI:
		key, err := apiKey(cfg.Provider)
		if err != nil {
			return nil, err
		}
		p = NewOpenAIProvider("openai", key, cfg.BaseURL, d)

	case config.ProviderOpenRouter:
		key, err := apiKey(cfg.Provider)
		if err != nil {
			return nil, err
		}
		base := cfg.BaseURL
		if base == "" {
			base = openRouterBaseURL
		}
		p = NewOpenAIProvider("openrouter", key, base, d)

	case config.ProviderOllama:
		base := cfg.BaseURL
		if base == "" {
			base = os.Getenv("OLLAMA_HOST")
		}
		if base == "" {
			base = ollamaBaseURL
		}
		p = NewOllamaProvider(base, d)

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}

	if cfg.RequestsPerMinute > 0 {
		p = NewRateLimitedProvider(p, cfg.RequestsPerMinute)
	}
	return p, nil
}

func apiKey(provider config.ProviderType) (string, error) {
	name := config.APIKeyEnvVar(provider)
	key := os.Getenv(name)
	if key == "" {
		return "", fmt.Errorf("%s environment variable is not set", name)
	}
	return key, nil
}
