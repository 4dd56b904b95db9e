package config

import "time"

// DefaultPath is where init writes the configuration and commands look for it.
const DefaultPath = ".stylelens.yml"

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[ProviderType]string{
	ProviderAnthropic:  "claude-sonnet-4-5-20250929",
	ProviderOpenAI:     "gpt-4o",
	ProviderOpenRouter: "openai/gpt-4o-mini",
	ProviderOllama:     "llama3",
}

// DefaultSkipStylesheets are host/path globs whose sheets are never fetched.
var DefaultSkipStylesheets = []string{
	"fonts.googleapis.com/**",
	"use.typekit.net/**",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:          "http://localhost:8787",
			SuggestPath:      "/api/suggest",
			PromptPath:       "/api/prompt",
			Timeout:          90 * time.Second,
			MaxResponseBytes: 1 << 20,
		},
		Capture: CaptureConfig{
			MaxHTMLChars:    5000,
			MaxCSSChars:     30000,
			MaxPageBytes:    5 << 20,
			UserAgent:       "stylelens/1.0 (+https://github.com/ziadkadry99/stylelens)",
			Timeout:         20 * time.Second,
			SkipStylesheets: DefaultSkipStylesheets,
		},
		Server: ServerConfig{
			Port:        8080,
			BackendPort: 8787,
			CORSOrigins: []string{"*"},
			SessionTTL:  30 * time.Minute,
		},
		AI: AIConfig{
			Provider:          ProviderAnthropic,
			Model:             defaultModels[ProviderAnthropic],
			RequestsPerMinute: 30,
			MaxTokens:         4096,
			Temperature:       0.3,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		DataDir: ".stylelens",
	}
}

// DefaultModel returns the model used for provider when none is configured.
// Unknown providers fall back to the Anthropic default.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderAnthropic]
}
