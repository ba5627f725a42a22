package repo

import (
	"context"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

// GeneratorRepo is the generative-AI backend interface
type GeneratorRepo interface {
	// Generate produces a reply for userText under the given config.
	// systemPrompt is built once by the prompt builder and shared verbatim
	// across all providers.
	Generate(ctx context.Context, cfg *domain.AIConfig, systemPrompt, userText string) (string, error)

	// ValidateCredentials performs a minimal request to confirm the API
	// key and model are usable
	ValidateCredentials(ctx context.Context, cfg *domain.AIConfig) error

	// Models returns the static model catalog for a provider name,
	// or nil for an unknown provider
	Models(provider string) []string
}
