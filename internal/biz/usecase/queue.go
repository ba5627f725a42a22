package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
)

// Queue processing limits
const (
	DefaultSweepBatchSize = 10
	DefaultMaxRetries     = 3

	// claimTTL bounds how long an in-flight claim blocks other sweeps.
	// A claim older than this is treated as abandoned by a dead worker.
	claimTTL = 5 * time.Minute
)

// Processor replays one inbound message through the pipeline
type Processor interface {
	ProcessMessage(ctx context.Context, msg *domain.InboundMessage) error
}

// QueueUsecase persists inbound events and replays failed ones with
// bounded retries
type QueueUsecase struct {
	events     repo.EventRepo
	processor  Processor
	batchSize  int
	maxRetries int
}

// NewQueueUsecase creates a queue usecase with default limits
func NewQueueUsecase(events repo.EventRepo, processor Processor) *QueueUsecase {
	return &QueueUsecase{
		events:     events,
		processor:  processor,
		batchSize:  DefaultSweepBatchSize,
		maxRetries: DefaultMaxRetries,
	}
}

// Submit persists the event and processes it immediately. The row is
// enqueued claimed so a concurrent sweep cannot double-process it; on
// failure the claim is released and the sweeper retries later.
func (uc *QueueUsecase) Submit(ctx context.Context, msg *domain.InboundMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ev := &domain.WebhookEvent{
		PageID:    msg.PageID,
		EventKind: domain.EventKindMessage,
		RawData:   raw,
		CreatedAt: time.Now(),
	}
	id, err := uc.events.Enqueue(ctx, ev, true)
	if err != nil {
		return fmt.Errorf("failed to enqueue event: %w", err)
	}
	ev.ID = id

	uc.runEvent(ctx, ev)
	return nil
}

// Sweep claims and replays a batch of pending events, oldest first.
// Returns how many events were processed and how many failed.
func (uc *QueueUsecase) Sweep(ctx context.Context) (processed, failed int, err error) {
	staleBefore := time.Now().Add(-claimTTL)
	events, err := uc.events.ClaimBatch(ctx, uc.batchSize, uc.maxRetries, staleBefore)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to claim events: %w", err)
	}

	for _, ev := range events {
		if uc.runEvent(ctx, ev) {
			processed++
		} else {
			failed++
		}
	}
	return processed, failed, nil
}

// runEvent replays one claimed event and records the outcome
func (uc *QueueUsecase) runEvent(ctx context.Context, ev *domain.WebhookEvent) bool {
	if ev.EventKind != domain.EventKindMessage {
		// Unknown kinds are marked processed so they do not loop forever
		fmt.Printf("[Queue] Skipping event %d with unknown kind %q\n", ev.ID, ev.EventKind)
		_ = uc.events.MarkProcessed(ctx, ev.ID)
		return true
	}

	var msg domain.InboundMessage
	if err := json.Unmarshal(ev.RawData, &msg); err != nil {
		uc.recordFailure(ctx, ev.ID, fmt.Sprintf("decode payload: %v", err))
		return false
	}

	if err := uc.processor.ProcessMessage(ctx, &msg); err != nil {
		uc.recordFailure(ctx, ev.ID, err.Error())
		return false
	}

	if err := uc.events.MarkProcessed(ctx, ev.ID); err != nil {
		fmt.Printf("[Queue] Failed to mark event %d processed: %v\n", ev.ID, err)
		return false
	}
	return true
}

func (uc *QueueUsecase) recordFailure(ctx context.Context, id int64, msg string) {
	if err := uc.events.RecordFailure(ctx, id, msg); err != nil {
		fmt.Printf("[Queue] Failed to record failure for event %d: %v\n", id, err)
	}
}
