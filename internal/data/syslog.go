package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
)

// systemLogRepo implements the system log store over sqlite
type systemLogRepo struct {
	db *sql.DB
}

// NewSystemLogRepo creates a system log repository
func NewSystemLogRepo(db *sql.DB) repo.SystemLogRepo {
	return &systemLogRepo{db: db}
}

// Append inserts one log entry
func (r *systemLogRepo) Append(ctx context.Context, entry *domain.SystemLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Level == "" {
		entry.Level = domain.LogLevelInfo
	}

	metadata := "{}"
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode log metadata: %w", err)
		}
		metadata = string(raw)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO system_logs (owner_id, page_id, log_level, event_type, message, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.OwnerID,
		entry.PageID,
		entry.Level,
		entry.EventType,
		entry.Message,
		metadata,
		entry.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to append system log: %w", err)
	}
	return nil
}

// PurgeBefore deletes entries older than the given time
func (r *systemLogRepo) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM system_logs WHERE created_at < ?
	`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge system logs: %w", err)
	}
	return result.RowsAffected()
}
