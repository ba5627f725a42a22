package repo

import (
	"context"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

// PageRepo is the connected page repository interface
type PageRepo interface {
	// GetByPageID returns the page with the given platform page id,
	// or nil when no such page is connected
	GetByPageID(ctx context.Context, pageID string) (*domain.Page, error)

	// Upsert creates or updates a page connection
	Upsert(ctx context.Context, page *domain.Page) error

	// ListByOwner returns all pages connected by an owner
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Page, error)

	// CountActive counts active pages for an owner
	CountActive(ctx context.Context, ownerID int64) (int64, error)
}
