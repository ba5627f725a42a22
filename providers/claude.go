package providers

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func (m *Manager) newAnthropicClient(apiKey string) anthropic.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if m.anthropicBaseURL != "" {
		opts = append(opts, option.WithBaseURL(m.anthropicBaseURL))
	}
	return anthropic.NewClient(opts...)
}

func (m *Manager) generateClaude(ctx context.Context, cfg Config, systemPrompt, userText string) (string, error) {
	model := cfg.Model
	if model == "" {
		model = defaultClaudeModel
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	client := m.newAnthropicClient(cfg.APIKey)
	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(cfg.effectiveMaxTokens()),
		Temperature: anthropic.Float(cfg.effectiveTemperature()),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userText)),
		},
	})
	if err != nil {
		return "", &ProviderError{Provider: Claude, Message: "message creation failed", Err: err}
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ProviderError{Provider: Claude, Message: "empty response content"}
	}
	return text, nil
}

func (m *Manager) validateClaude(ctx context.Context, cfg Config) error {
	model := cfg.Model
	if model == "" {
		model = defaultClaudeModel
	}

	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	client := m.newAnthropicClient(cfg.APIKey)
	_, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 10,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Test")),
		},
	})
	if err != nil {
		return &ProviderError{Provider: Claude, Message: "credential validation failed", Err: err}
	}
	return nil
}
