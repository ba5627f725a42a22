package data

import (
	"context"
	"fmt"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
	"github.com/pagereply/pagereply/providers"
)

// generatorRepo adapts the provider manager to the generator repository
type generatorRepo struct {
	manager *providers.Manager
}

// NewGeneratorRepo creates a generator repository backed by the AI providers
func NewGeneratorRepo(manager *providers.Manager) repo.GeneratorRepo {
	return &generatorRepo{manager: manager}
}

func (r *generatorRepo) Generate(ctx context.Context, cfg *domain.AIConfig, systemPrompt, userText string) (string, error) {
	pcfg, err := toProviderConfig(cfg)
	if err != nil {
		return "", err
	}
	return r.manager.Generate(ctx, pcfg, systemPrompt, userText)
}

func (r *generatorRepo) ValidateCredentials(ctx context.Context, cfg *domain.AIConfig) error {
	pcfg, err := toProviderConfig(cfg)
	if err != nil {
		return err
	}
	return r.manager.Validate(ctx, pcfg)
}

func (r *generatorRepo) Models(provider string) []string {
	p, err := providers.ParseProvider(provider)
	if err != nil {
		return nil
	}
	return providers.Models(p)
}

func toProviderConfig(cfg *domain.AIConfig) (providers.Config, error) {
	p, err := providers.ParseProvider(cfg.Provider)
	if err != nil {
		return providers.Config{}, err
	}
	if cfg.APIKey == "" {
		return providers.Config{}, fmt.Errorf("missing API key for provider %s", p)
	}
	return providers.Config{
		Provider:    p,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		Temperature: cfg.EffectiveTemperature(),
		MaxTokens:   cfg.EffectiveMaxTokens(),
	}, nil
}
