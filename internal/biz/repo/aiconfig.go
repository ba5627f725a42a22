package repo

import (
	"context"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

// AIConfigRepo is the AI configuration repository interface
type AIConfigRepo interface {
	// GetActive returns the active AI config for an (owner, page) pair,
	// or nil when none is configured or the config is inactive
	GetActive(ctx context.Context, ownerID int64, pageID string) (*domain.AIConfig, error)

	// Get returns the config regardless of its active flag, or nil
	Get(ctx context.Context, ownerID int64, pageID string) (*domain.AIConfig, error)

	// Upsert creates or replaces the config for its (owner, page) pair
	Upsert(ctx context.Context, cfg *domain.AIConfig) error

	// CountActive counts active configs for an owner
	CountActive(ctx context.Context, ownerID int64) (int64, error)
}
