package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to stylelens! Let's configure the suggestion loop.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend location.
	backendPrompt := promptui.Prompt{
		Label:   "Design-suggestion backend URL",
		Default: cfg.Backend.BaseURL,
		Validate: func(s string) error {
			u, err := url.Parse(s)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("must be an absolute URL")
			}
			return nil
		},
	}
	baseURL, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	cfg.Backend.BaseURL = strings.TrimRight(baseURL, "/")

	// 2. Provider for the reference backend.
	providerPrompt := promptui.Select{
		Label: "LLM provider for `stylelens backend`",
		Items: []string{"anthropic", "openai", "openrouter", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.AI.Provider = ProviderType(providerStr)

	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: DefaultModel(cfg.AI.Provider),
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	cfg.AI.Model = model

	// 3. Popup server port.
	portPrompt := promptui.Prompt{
		Label:   "Popup server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("must be a port number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 4. Stylesheets to skip.
	skipPrompt := promptui.Prompt{
		Label:   "Skip stylesheets (comma-separated host/path globs)",
		Default: strings.Join(DefaultSkipStylesheets, ","),
	}
	skipStr, err := skipPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("skip stylesheets: %w", err)
	}
	cfg.Capture.SkipStylesheets = splitAndTrim(skipStr)

	// 5. Headless browser capture.
	browserPrompt := promptui.Select{
		Label: "Capture pages with",
		Items: []string{"http (plain GET)", "browser (headless Chrome)"},
	}
	browserIdx, _, err := browserPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("capture mode: %w", err)
	}
	cfg.Capture.Browser = browserIdx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if envVar := APIKeyEnvVar(cfg.AI.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment (or .env) before running stylelens backend.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and drops blank entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
