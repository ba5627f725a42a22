package repo

import (
	"context"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

// SystemLogRepo persists durable lifecycle events
type SystemLogRepo interface {
	// Append inserts one log entry
	Append(ctx context.Context, entry *domain.SystemLog) error

	// PurgeBefore deletes entries older than the given time
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}
