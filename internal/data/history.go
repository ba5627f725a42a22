package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
)

// historyRepo implements the append-only message history over sqlite
type historyRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a history repository
func NewHistoryRepo(db *sql.DB) repo.HistoryRepo {
	return &historyRepo{db: db}
}

// Append inserts one history record
func (r *historyRepo) Append(ctx context.Context, rec *domain.HistoryRecord) error {
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO message_history (owner_id, page_id, message_id, sender_id, sender_name,
			message_text, response_text, response_type, matched_keyword, processing_time_ms,
			error_message, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.OwnerID,
		rec.PageID,
		rec.MessageID,
		rec.SenderID,
		rec.SenderName,
		rec.MessageText,
		rec.ResponseText,
		string(rec.ResponseType),
		rec.MatchedKeyword,
		rec.ProcessingMs,
		rec.ErrorMessage,
		rec.ProcessedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// List returns records for an owner, newest first
func (r *historyRepo) List(ctx context.Context, ownerID int64, pageID string, limit, offset int) ([]*domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, owner_id, page_id, message_id, sender_id, sender_name,
			message_text, response_text, response_type, matched_keyword,
			processing_time_ms, error_message, processed_at
		FROM message_history
		WHERE owner_id = ?`
	args := []interface{}{ownerID}
	if pageID != "" {
		query += ` AND page_id = ?`
		args = append(args, pageID)
	}
	query += ` ORDER BY processed_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []*domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var responseType string
		var processedAt int64
		if err := rows.Scan(
			&rec.ID,
			&rec.OwnerID,
			&rec.PageID,
			&rec.MessageID,
			&rec.SenderID,
			&rec.SenderName,
			&rec.MessageText,
			&rec.ResponseText,
			&responseType,
			&rec.MatchedKeyword,
			&rec.ProcessingMs,
			&rec.ErrorMessage,
			&processedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		rec.ResponseType = domain.Source(responseType)
		rec.ProcessedAt = time.Unix(processedAt, 0)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountSince counts records processed at or after the given time
func (r *historyRepo) CountSince(ctx context.Context, ownerID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM message_history WHERE owner_id = ? AND processed_at >= ?
	`, ownerID, since.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// SourceCountsSince returns per-response-type counts since the given time
func (r *historyRepo) SourceCountsSince(ctx context.Context, ownerID int64, since time.Time) (map[domain.Source]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT response_type, COUNT(*)
		FROM message_history
		WHERE owner_id = ? AND processed_at >= ?
		GROUP BY response_type
	`, ownerID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to count history by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Source]int64)
	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		counts[domain.Source(source)] = count
	}
	return counts, rows.Err()
}

// PurgeBefore deletes records older than the given time
func (r *historyRepo) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM message_history WHERE processed_at < ?
	`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge history: %w", err)
	}
	return result.RowsAffected()
}
