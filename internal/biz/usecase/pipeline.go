package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/repo"
)

// PipelineUsecase runs the full per-message flow: resolve the reply,
// deliver it, record history and emit a lifecycle log event. Every step
// runs even when an earlier one failed, using whatever partial result
// exists.
type PipelineUsecase struct {
	resolver  *ResolverUsecase
	pages     repo.PageRepo
	messenger repo.MessengerRepo
	history   repo.HistoryRepo
	syslog    repo.SystemLogRepo
}

// NewPipelineUsecase creates a pipeline usecase
func NewPipelineUsecase(
	resolver *ResolverUsecase,
	pages repo.PageRepo,
	messenger repo.MessengerRepo,
	history repo.HistoryRepo,
	syslog repo.SystemLogRepo,
) *PipelineUsecase {
	return &PipelineUsecase{
		resolver:  resolver,
		pages:     pages,
		messenger: messenger,
		history:   history,
		syslog:    syslog,
	}
}

// ProcessMessage handles one inbound message end to end. The returned
// error marks the event as retryable for the queue: page lookups and
// outbound delivery can fail transiently, resolution errors are terminal
// and already recorded in history.
func (uc *PipelineUsecase) ProcessMessage(ctx context.Context, msg *domain.InboundMessage) error {
	start := time.Now()

	page, err := uc.pages.GetByPageID(ctx, msg.PageID)
	if err != nil {
		return fmt.Errorf("failed to load page %s: %w", msg.PageID, err)
	}
	if page == nil || !page.Active {
		fmt.Printf("[Pipeline] Page %s not connected or inactive, skipping message %s\n",
			msg.PageID, msg.MessageID)
		return nil
	}

	// Sender name is cosmetic; a lookup failure never blocks processing
	senderName, err := uc.messenger.SenderName(ctx, msg.SenderID, page.AccessToken)
	if err != nil {
		senderName = ""
	}

	res := uc.resolver.Resolve(ctx, page.OwnerID, msg.PageID, msg.Text)

	var deliverErr error
	if res.HasReply() {
		deliverErr = uc.messenger.SendText(ctx, msg.PageID, msg.SenderID, res.ReplyText, page.AccessToken)
		if deliverErr != nil {
			fmt.Printf("[Pipeline] Failed to deliver reply for message %s: %v\n", msg.MessageID, deliverErr)
		}
	}

	elapsed := time.Since(start).Milliseconds()

	rec := &domain.HistoryRecord{
		OwnerID:        page.OwnerID,
		PageID:         msg.PageID,
		MessageID:      msg.MessageID,
		SenderID:       msg.SenderID,
		SenderName:     senderName,
		MessageText:    msg.Text,
		ResponseText:   res.ReplyText,
		ResponseType:   res.Source,
		MatchedKeyword: res.MatchedKeyword,
		ProcessingMs:   elapsed,
		ErrorMessage:   res.ErrorDetail,
		ProcessedAt:    time.Now(),
	}
	if deliverErr != nil {
		rec.ResponseType = domain.SourceError
		rec.ErrorMessage = deliverErr.Error()
	}
	if err := uc.history.Append(ctx, rec); err != nil {
		// History is best effort, never transactional with delivery
		fmt.Printf("[Pipeline] Failed to record history for message %s: %v\n", msg.MessageID, err)
	}

	uc.logProcessed(ctx, page.OwnerID, msg.PageID, rec.ResponseType, elapsed)

	return deliverErr
}

// logProcessed records the lifecycle event in the system log store
func (uc *PipelineUsecase) logProcessed(ctx context.Context, ownerID int64, pageID string, outcome domain.Source, elapsedMs int64) {
	entry := &domain.SystemLog{
		OwnerID:   ownerID,
		PageID:    pageID,
		Level:     domain.LogLevelInfo,
		EventType: "message_processed",
		Message:   fmt.Sprintf("message processed with outcome %s", outcome),
		Metadata: map[string]interface{}{
			"page_id":            pageID,
			"response_type":      string(outcome),
			"processing_time_ms": elapsedMs,
		},
		CreatedAt: time.Now(),
	}
	if outcome == domain.SourceError {
		entry.Level = domain.LogLevelWarning
	}
	if err := uc.syslog.Append(ctx, entry); err != nil {
		fmt.Printf("[Pipeline] Failed to write system log: %v\n", err)
	}
}
