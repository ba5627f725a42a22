package repo

import (
	"context"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

// HistoryRepo is the message history repository interface.
// History is append-only; rows are never mutated after insert.
type HistoryRepo interface {
	// Append inserts one history record
	Append(ctx context.Context, rec *domain.HistoryRecord) error

	// List returns records for an owner, newest first. pageID narrows the
	// result to one page when non-empty.
	List(ctx context.Context, ownerID int64, pageID string, limit, offset int) ([]*domain.HistoryRecord, error)

	// CountSince counts records processed at or after the given time
	CountSince(ctx context.Context, ownerID int64, since time.Time) (int64, error)

	// SourceCountsSince returns per-response-type counts since the given time
	SourceCountsSince(ctx context.Context, ownerID int64, since time.Time) (map[domain.Source]int64, error)

	// PurgeBefore deletes records older than the given time
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}
