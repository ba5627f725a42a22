package providers

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const mistralBaseURL = "https://api.mistral.ai/v1"

// newChatClient builds a chat-completions client for OpenAI or any
// OpenAI-compatible endpoint (Mistral exposes the same wire format)
func newChatClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}

func (m *Manager) generateOpenAI(ctx context.Context, cfg Config, systemPrompt, userText string) (string, error) {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	client := newChatClient(cfg.APIKey, m.openAIBaseURL)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		Temperature:      float32(cfg.effectiveTemperature()),
		MaxTokens:        cfg.effectiveMaxTokens(),
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.1,
	})
	if err != nil {
		return "", &ProviderError{Provider: OpenAI, Message: "chat completion failed", Err: err}
	}
	return extractChoice(OpenAI, resp)
}

func (m *Manager) validateOpenAI(ctx context.Context, cfg Config) error {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return m.validateChat(ctx, OpenAI, cfg.APIKey, m.openAIBaseURL, model)
}

func (m *Manager) generateMistral(ctx context.Context, cfg Config, systemPrompt, userText string) (string, error) {
	model := cfg.Model
	if model == "" {
		model = defaultMistralModel
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	baseURL := m.mistralBaseURL
	if baseURL == "" {
		baseURL = mistralBaseURL
	}

	client := newChatClient(cfg.APIKey, baseURL)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		Temperature: float32(cfg.effectiveTemperature()),
		MaxTokens:   cfg.effectiveMaxTokens(),
	})
	if err != nil {
		return "", &ProviderError{Provider: Mistral, Message: "chat completion failed", Err: err}
	}
	return extractChoice(Mistral, resp)
}

func (m *Manager) validateMistral(ctx context.Context, cfg Config) error {
	model := cfg.Model
	if model == "" {
		model = defaultMistralModel
	}
	baseURL := m.mistralBaseURL
	if baseURL == "" {
		baseURL = mistralBaseURL
	}
	return m.validateChat(ctx, Mistral, cfg.APIKey, baseURL, model)
}

// validateChat sends a tiny completion request to confirm the credential
func (m *Manager) validateChat(ctx context.Context, p Provider, apiKey, baseURL, model string) error {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	client := newChatClient(apiKey, baseURL)
	_, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Test"},
		},
		MaxTokens: 5,
	})
	if err != nil {
		return &ProviderError{Provider: p, Message: "credential validation failed", Err: err}
	}
	return nil
}

func extractChoice(p Provider, resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: p, Message: "no response choices"}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &ProviderError{Provider: p, Message: "empty response content"}
	}
	return text, nil
}
