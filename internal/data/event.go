package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
)

// eventRepo implements the webhook event queue over sqlite
type eventRepo struct {
	db *sql.DB
}

// NewEventRepo creates an event repository
func NewEventRepo(db *sql.DB) repo.EventRepo {
	return &eventRepo{db: db}
}

// Enqueue inserts an event, optionally pre-claimed by the caller
func (r *eventRepo) Enqueue(ctx context.Context, ev *domain.WebhookEvent, claimed bool) (int64, error) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	var claimedAt interface{}
	if claimed {
		claimedAt = time.Now().Unix()
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO webhook_events (page_id, event_kind, raw_data, claimed_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, ev.PageID, ev.EventKind, ev.RawData, claimedAt, ev.CreatedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue event: %w", err)
	}
	return result.LastInsertId()
}

// ClaimBatch claims up to limit pending events, oldest first. Each
// candidate is claimed with a conditional update so two concurrent
// sweeps can never take the same row.
func (r *eventRepo) ClaimBatch(ctx context.Context, limit, maxRetries int, staleBefore time.Time) ([]*domain.WebhookEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM webhook_events
		WHERE processed = 0 AND retry_count < ?
			AND (claimed_at IS NULL OR claimed_at < ?)
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, maxRetries, staleBefore.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending events: %w", err)
	}

	var candidates []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan event id: %w", err)
		}
		candidates = append(candidates, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending events: %w", err)
	}

	now := time.Now().Unix()
	var claimed []*domain.WebhookEvent
	for _, id := range candidates {
		result, err := r.db.ExecContext(ctx, `
			UPDATE webhook_events SET claimed_at = ?
			WHERE id = ? AND processed = 0 AND retry_count < ?
				AND (claimed_at IS NULL OR claimed_at < ?)
		`, now, id, maxRetries, staleBefore.Unix())
		if err != nil {
			return nil, fmt.Errorf("failed to claim event %d: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read claim result: %w", err)
		}
		if affected == 0 {
			// A concurrent sweep won the row
			continue
		}
		ev, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ev != nil {
			claimed = append(claimed, ev)
		}
	}
	return claimed, nil
}

// MarkProcessed flips the event to processed
func (r *eventRepo) MarkProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE webhook_events SET processed = 1, processed_at = ? WHERE id = ?
	`, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

// RecordFailure increments retry_count, stores the error and releases
// the claim for a later sweep
func (r *eventRepo) RecordFailure(ctx context.Context, id int64, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE webhook_events
		SET retry_count = retry_count + 1, error_message = ?, claimed_at = NULL
		WHERE id = ?
	`, errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to record event failure: %w", err)
	}
	return nil
}

// Get returns one event by id, or nil
func (r *eventRepo) Get(ctx context.Context, id int64) (*domain.WebhookEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, page_id, event_kind, raw_data, processed, processed_at,
			error_message, retry_count, claimed_at, created_at
		FROM webhook_events
		WHERE id = ?
	`, id)

	var ev domain.WebhookEvent
	var processed int
	var processedAt, claimedAt sql.NullInt64
	var createdAt int64
	err := row.Scan(
		&ev.ID,
		&ev.PageID,
		&ev.EventKind,
		&ev.RawData,
		&processed,
		&processedAt,
		&ev.LastError,
		&ev.RetryCount,
		&claimedAt,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	ev.Processed = processed != 0
	if processedAt.Valid {
		t := time.Unix(processedAt.Int64, 0)
		ev.ProcessedAt = &t
	}
	if claimedAt.Valid {
		t := time.Unix(claimedAt.Int64, 0)
		ev.ClaimedAt = &t
	}
	ev.CreatedAt = time.Unix(createdAt, 0)
	return &ev, nil
}

// PurgeProcessedBefore deletes processed events older than the given time
func (r *eventRepo) PurgeProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM webhook_events WHERE processed = 1 AND created_at < ?
	`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge events: %w", err)
	}
	return result.RowsAffected()
}
