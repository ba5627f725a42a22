// Package providers gives a uniform client over the supported
// generative-AI backends (OpenAI, Mistral, Claude).
package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider identifies a generative-AI backend
type Provider string

const (
	OpenAI  Provider = "openai"
	Mistral Provider = "mistral"
	Claude  Provider = "claude"
)

// Request timeouts shared by every provider
const (
	generateTimeout = 30 * time.Second
	validateTimeout = 10 * time.Second
)

// Default models used when a config leaves the model empty
const (
	defaultOpenAIModel  = "gpt-3.5-turbo"
	defaultMistralModel = "mistral-small"
	defaultClaudeModel  = "claude-3-sonnet-20240229"
)

// ParseProvider maps a stored provider name to its variant.
// Matching is case-insensitive; unknown names are a configuration error.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case OpenAI:
		return OpenAI, nil
	case Mistral:
		return Mistral, nil
	case Claude:
		return Claude, nil
	default:
		return "", fmt.Errorf("unsupported AI provider: %q", name)
	}
}

// Config carries the per-call settings for one generation request
type Config struct {
	Provider    Provider
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
}

// ProviderError wraps an upstream provider failure
type ProviderError struct {
	Provider Provider
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Models returns the static model catalog for a provider. Catalogs are
// hardcoded on purpose: they change independently of this system and a
// lookup must never require a network call.
func Models(p Provider) []string {
	switch p {
	case OpenAI:
		return []string{"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo", "gpt-4o"}
	case Mistral:
		return []string{"mistral-tiny", "mistral-small", "mistral-medium", "mistral-large"}
	case Claude:
		return []string{"claude-3-haiku-20240307", "claude-3-sonnet-20240229", "claude-3-opus-20240229"}
	default:
		return nil
	}
}

// Manager dispatches generation requests to the configured provider
type Manager struct {
	// Endpoint overrides, used by tests. Empty means the real API.
	openAIBaseURL    string
	mistralBaseURL   string
	anthropicBaseURL string
}

// NewManager creates a provider manager talking to the real APIs
func NewManager() *Manager {
	return &Manager{}
}

// Generate produces a reply using the provider named in cfg
func (m *Manager) Generate(ctx context.Context, cfg Config, systemPrompt, userText string) (string, error) {
	switch cfg.Provider {
	case OpenAI:
		return m.generateOpenAI(ctx, cfg, systemPrompt, userText)
	case Mistral:
		return m.generateMistral(ctx, cfg, systemPrompt, userText)
	case Claude:
		return m.generateClaude(ctx, cfg, systemPrompt, userText)
	default:
		return "", fmt.Errorf("unsupported AI provider: %q", cfg.Provider)
	}
}

// Validate performs a minimal request (a handful of output tokens) to
// confirm the credential and model work without materially using quota
func (m *Manager) Validate(ctx context.Context, cfg Config) error {
	switch cfg.Provider {
	case OpenAI:
		return m.validateOpenAI(ctx, cfg)
	case Mistral:
		return m.validateMistral(ctx, cfg)
	case Claude:
		return m.validateClaude(ctx, cfg)
	default:
		return fmt.Errorf("unsupported AI provider: %q", cfg.Provider)
	}
}

func (c *Config) effectiveTemperature() float64 {
	if c.Temperature <= 0 {
		return 0.7
	}
	return c.Temperature
}

func (c *Config) effectiveMaxTokens() int {
	if c.MaxTokens <= 0 {
		return 500
	}
	return c.MaxTokens
}
