package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
)

// aiConfigRepo implements the AIConfig repository over sqlite
type aiConfigRepo struct {
	db *sql.DB
}

// NewAIConfigRepo creates an AI config repository
func NewAIConfigRepo(db *sql.DB) repo.AIConfigRepo {
	return &aiConfigRepo{db: db}
}

const aiConfigColumns = `id, owner_id, page_id, provider, model, api_key, temperature, max_tokens,
	instructions, tone, style, language, active, fallback_only, created_at`

// GetActive returns the active config for an (owner, page) pair, or nil
func (r *aiConfigRepo) GetActive(ctx context.Context, ownerID int64, pageID string) (*domain.AIConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+aiConfigColumns+`
		FROM ai_configs
		WHERE owner_id = ? AND page_id = ? AND active = 1
	`, ownerID, pageID)
	return scanAIConfig(row)
}

// Get returns the config regardless of active flag, or nil
func (r *aiConfigRepo) Get(ctx context.Context, ownerID int64, pageID string) (*domain.AIConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+aiConfigColumns+`
		FROM ai_configs
		WHERE owner_id = ? AND page_id = ?
	`, ownerID, pageID)
	return scanAIConfig(row)
}

// Upsert creates or replaces the config for its (owner, page) pair
func (r *aiConfigRepo) Upsert(ctx context.Context, cfg *domain.AIConfig) error {
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ai_configs (owner_id, page_id, provider, model, api_key, temperature, max_tokens,
			instructions, tone, style, language, active, fallback_only, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, page_id) DO UPDATE SET
			provider = excluded.provider,
			model = excluded.model,
			api_key = excluded.api_key,
			temperature = excluded.temperature,
			max_tokens = excluded.max_tokens,
			instructions = excluded.instructions,
			tone = excluded.tone,
			style = excluded.style,
			language = excluded.language,
			active = excluded.active,
			fallback_only = excluded.fallback_only
	`,
		cfg.OwnerID,
		cfg.PageID,
		cfg.Provider,
		cfg.Model,
		cfg.APIKey,
		cfg.Temperature,
		cfg.MaxTokens,
		cfg.Instructions,
		cfg.Tone,
		cfg.Style,
		cfg.Language,
		boolToInt(cfg.Active),
		boolToInt(cfg.FallbackOnly),
		cfg.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ai config: %w", err)
	}
	return nil
}

// CountActive counts active configs for an owner
func (r *aiConfigRepo) CountActive(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ai_configs WHERE owner_id = ? AND active = 1
	`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ai configs: %w", err)
	}
	return count, nil
}

func scanAIConfig(row *sql.Row) (*domain.AIConfig, error) {
	var cfg domain.AIConfig
	var active, fallbackOnly int
	var createdAt int64
	err := row.Scan(
		&cfg.ID,
		&cfg.OwnerID,
		&cfg.PageID,
		&cfg.Provider,
		&cfg.Model,
		&cfg.APIKey,
		&cfg.Temperature,
		&cfg.MaxTokens,
		&cfg.Instructions,
		&cfg.Tone,
		&cfg.Style,
		&cfg.Language,
		&active,
		&fallbackOnly,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ai config: %w", err)
	}
	cfg.Active = active != 0
	cfg.FallbackOnly = fallbackOnly != 0
	cfg.CreatedAt = time.Unix(createdAt, 0)
	return &cfg, nil
}
