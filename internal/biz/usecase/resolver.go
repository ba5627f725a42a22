package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
)

// ResolverUsecase decides the reply for one inbound message: keyword
// rules first, then the configured AI backend as fallback.
type ResolverUsecase struct {
	rules     repo.RuleRepo
	configs   repo.AIConfigRepo
	generator repo.GeneratorRepo
}

// NewResolverUsecase creates a resolver usecase
func NewResolverUsecase(rules repo.RuleRepo, configs repo.AIConfigRepo, generator repo.GeneratorRepo) *ResolverUsecase {
	return &ResolverUsecase{
		rules:     rules,
		configs:   configs,
		generator: generator,
	}
}

// Resolve produces a resolution for the message. It never returns an
// error: configuration and provider failures degrade to a None or Error
// result so the webhook handler can always ack the platform.
func (uc *ResolverUsecase) Resolve(ctx context.Context, ownerID int64, pageID, messageText string) *domain.Resolution {
	raw := strings.TrimSpace(messageText)
	normalized := strings.ToLower(raw)

	rules, err := uc.rules.ListActive(ctx, ownerID, pageID)
	if err != nil {
		fmt.Printf("[Resolver] Failed to load rules for page %s: %v\n", pageID, err)
		return &domain.Resolution{Source: domain.SourceError, ErrorDetail: err.Error()}
	}

	// Rules arrive ordered by priority desc, keyword length desc;
	// the first match ends the scan.
	for _, rule := range rules {
		if rule.Matches(raw, normalized) {
			return &domain.Resolution{
				ReplyText:      rule.Response,
				Source:         domain.SourcePredefined,
				MatchedKeyword: rule.Keyword,
			}
		}
	}

	return uc.resolveWithAI(ctx, ownerID, pageID, raw)
}

// resolveWithAI falls back to the configured generative backend
func (uc *ResolverUsecase) resolveWithAI(ctx context.Context, ownerID int64, pageID, messageText string) *domain.Resolution {
	cfg, err := uc.configs.GetActive(ctx, ownerID, pageID)
	if err != nil {
		fmt.Printf("[Resolver] Failed to load AI config for page %s: %v\n", pageID, err)
		return &domain.Resolution{Source: domain.SourceError, ErrorDetail: err.Error()}
	}
	if cfg == nil {
		return &domain.Resolution{Source: domain.SourceNone}
	}

	systemPrompt := BuildSystemPrompt(cfg)

	start := time.Now()
	reply, err := uc.generator.Generate(ctx, cfg, systemPrompt, messageText)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		// AI failure is terminal for this message; no re-escalation
		// to predefined replies.
		fmt.Printf("[Resolver] AI generation failed for page %s: %v\n", pageID, err)
		return &domain.Resolution{
			Source:      domain.SourceError,
			Provider:    cfg.Provider,
			Model:       cfg.Model,
			ElapsedMs:   elapsed,
			ErrorDetail: err.Error(),
		}
	}

	return &domain.Resolution{
		ReplyText: reply,
		Source:    domain.SourceAI,
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		ElapsedMs: elapsed,
	}
}
