package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: STYLELENS_CAPTURE__MAX_HTML_CHARS -> capture.max_html_chars.
const EnvPrefix = "STYLELENS_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (STYLELENS_*). A .env file next to the
// config file is loaded first so provider keys and overrides defined there
// are visible; variables already set in the process win.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = DefaultModel(cfg.AI.Provider)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderAnthropic:  true,
	ProviderOpenAI:     true,
	ProviderOpenRouter: true,
	ProviderOllama:     true,
}

var validLogFormats = map[string]bool{"console": true, "json": true}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q must be an absolute URL", c.Backend.BaseURL)
	}
	if !strings.HasPrefix(c.Backend.SuggestPath, "/") || !strings.HasPrefix(c.Backend.PromptPath, "/") {
		return fmt.Errorf("backend paths must start with /")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}
	if c.Backend.MaxResponseBytes <= 0 {
		return fmt.Errorf("backend.max_response_bytes must be positive")
	}

	if c.Capture.MaxHTMLChars <= 0 || c.Capture.MaxCSSChars <= 0 {
		return fmt.Errorf("capture limits must be positive")
	}
	if c.Capture.Timeout <= 0 {
		return fmt.Errorf("capture.timeout must be positive")
	}
	for _, pattern := range c.Capture.SkipStylesheets {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid capture.skip_stylesheets pattern %q", pattern)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.BackendPort <= 0 || c.Server.BackendPort > 65535 {
		return fmt.Errorf("server.backend_port %d out of range", c.Server.BackendPort)
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be positive")
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("ai.provider is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("invalid ai.provider %q: must be one of anthropic, openai, openrouter, ollama", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}
	if c.AI.RequestsPerMinute < 0 {
		return fmt.Errorf("ai.requests_per_minute must be non-negative")
	}
	if c.AI.MaxTokens < 0 {
		return fmt.Errorf("ai.max_tokens must be non-negative")
	}

	if c.Log.Format != "" && !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be console or json", c.Log.Format)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	return nil
}

// HistoryPath is the SQLite file holding the run log.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}
