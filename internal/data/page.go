package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
)

// pageRepo implements the Page repository over sqlite
type pageRepo struct {
	db *sql.DB
}

// NewPageRepo creates a page repository
func NewPageRepo(db *sql.DB) repo.PageRepo {
	return &pageRepo{db: db}
}

// GetByPageID returns the page with the given platform id, or nil
func (r *pageRepo) GetByPageID(ctx context.Context, pageID string) (*domain.Page, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, page_id, page_name, access_token, active, created_at
		FROM pages
		WHERE page_id = ?
	`, pageID)

	var page domain.Page
	var active int
	var createdAt int64
	err := row.Scan(&page.ID, &page.OwnerID, &page.PageID, &page.PageName, &page.AccessToken, &active, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query page: %w", err)
	}
	page.Active = active != 0
	page.CreatedAt = time.Unix(createdAt, 0)
	return &page, nil
}

// Upsert creates or updates a page connection
func (r *pageRepo) Upsert(ctx context.Context, page *domain.Page) error {
	if page.CreatedAt.IsZero() {
		page.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pages (owner_id, page_id, page_name, access_token, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, page_id) DO UPDATE SET
			page_name = excluded.page_name,
			access_token = excluded.access_token,
			active = excluded.active
	`,
		page.OwnerID,
		page.PageID,
		page.PageName,
		page.AccessToken,
		boolToInt(page.Active),
		page.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	return nil
}

// ListByOwner returns all pages connected by an owner
func (r *pageRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Page, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, page_id, page_name, access_token, active, created_at
		FROM pages
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []*domain.Page
	for rows.Next() {
		var page domain.Page
		var active int
		var createdAt int64
		if err := rows.Scan(&page.ID, &page.OwnerID, &page.PageID, &page.PageName, &page.AccessToken, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		page.Active = active != 0
		page.CreatedAt = time.Unix(createdAt, 0)
		pages = append(pages, &page)
	}
	return pages, rows.Err()
}

// CountActive counts active pages for an owner
func (r *pageRepo) CountActive(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pages WHERE owner_id = ? AND active = 1
	`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}
