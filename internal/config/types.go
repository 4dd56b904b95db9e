package config

import "time"

// ProviderType identifies the LLM provider behind the reference backend.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderOllama     ProviderType = "ollama"
)

// Config is the top-level stylelens configuration, corresponding to .stylelens.yml.
type Config struct {
	Backend BackendConfig `yaml:"backend" koanf:"backend"`
	Capture CaptureConfig `yaml:"capture" koanf:"capture"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	AI      AIConfig      `yaml:"ai" koanf:"ai"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
	DataDir string        `yaml:"data_dir" koanf:"data_dir"`
}

// BackendConfig locates the design-suggestion service the client talks to.
type BackendConfig struct {
	BaseURL          string        `yaml:"base_url" koanf:"base_url"`
	SuggestPath      string        `yaml:"suggest_path" koanf:"suggest_path"`
	PromptPath       string        `yaml:"prompt_path" koanf:"prompt_path"`
	Timeout          time.Duration `yaml:"timeout" koanf:"timeout"`
	MaxResponseBytes int64         `yaml:"max_response_bytes" koanf:"max_response_bytes"`
}

// CaptureConfig bounds what is taken from a page.
type CaptureConfig struct {
	MaxHTMLChars    int           `yaml:"max_html_chars" koanf:"max_html_chars"`
	MaxCSSChars     int           `yaml:"max_css_chars" koanf:"max_css_chars"`
	MaxPageBytes    int64         `yaml:"max_page_bytes" koanf:"max_page_bytes"`
	UserAgent       string        `yaml:"user_agent" koanf:"user_agent"`
	Timeout         time.Duration `yaml:"timeout" koanf:"timeout"`
	SkipStylesheets []string      `yaml:"skip_stylesheets" koanf:"skip_stylesheets"`
	Browser         bool          `yaml:"browser" koanf:"browser"`
	BrowserURL      string        `yaml:"browser_url" koanf:"browser_url"`
}

// ServerConfig holds settings for the popup server and the reference backend.
type ServerConfig struct {
	Port        int           `yaml:"port" koanf:"port"`
	BackendPort int           `yaml:"backend_port" koanf:"backend_port"`
	CORSOrigins []string      `yaml:"cors_origins" koanf:"cors_origins"`
	SessionTTL  time.Duration `yaml:"session_ttl" koanf:"session_ttl"`
}

// AIConfig selects the model the reference backend forwards prompts to.
type AIConfig struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	BaseURL           string       `yaml:"base_url" koanf:"base_url"`
	RequestsPerMinute int          `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	MaxTokens         int          `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature       float64      `yaml:"temperature" koanf:"temperature"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level      string `yaml:"level" koanf:"level"`
	Format     string `yaml:"format" koanf:"format"`
	File       string `yaml:"file" koanf:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" koanf:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" koanf:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" koanf:"max_age_days"`
}
