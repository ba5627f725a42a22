package repo

import (
	"context"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

// RuleRepo is the predefined response repository interface
type RuleRepo interface {
	// ListActive returns the active rules for an (owner, page) pair,
	// ordered by priority descending then keyword length descending.
	// The resolver evaluates rules in exactly this order.
	ListActive(ctx context.Context, ownerID int64, pageID string) ([]*domain.Rule, error)

	// List returns all rules for an (owner, page) pair, newest first
	List(ctx context.Context, ownerID int64, pageID string) ([]*domain.Rule, error)

	// Create inserts a rule and returns its id
	Create(ctx context.Context, rule *domain.Rule) (int64, error)

	// Delete removes a rule owned by the given user
	Delete(ctx context.Context, id, ownerID int64) error

	// CountActive counts active rules across all pages of an owner
	CountActive(ctx context.Context, ownerID int64) (int64, error)
}
