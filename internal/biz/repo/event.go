package repo

import (
	"context"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

// EventRepo is the webhook event queue repository interface
type EventRepo interface {
	// Enqueue inserts an event. When claimed is true the row starts
	// claimed so a concurrent sweep cannot pick it up while the caller
	// processes it inline.
	Enqueue(ctx context.Context, ev *domain.WebhookEvent, claimed bool) (int64, error)

	// ClaimBatch atomically claims up to limit unprocessed events with
	// retry_count below maxRetries, oldest first. Events claimed before
	// staleBefore are considered abandoned and may be reclaimed.
	ClaimBatch(ctx context.Context, limit, maxRetries int, staleBefore time.Time) ([]*domain.WebhookEvent, error)

	// MarkProcessed flips the event to processed and stamps processed_at
	MarkProcessed(ctx context.Context, id int64) error

	// RecordFailure increments retry_count, stores the error text and
	// releases the claim so a later sweep can retry the event
	RecordFailure(ctx context.Context, id int64, errMsg string) error

	// Get returns one event by id, or nil
	Get(ctx context.Context, id int64) (*domain.WebhookEvent, error)

	// PurgeProcessedBefore deletes processed events older than the given time
	PurgeProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
