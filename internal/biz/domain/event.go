package domain

import "time"

// EventKindMessage is the only event kind the pipeline replays today
const EventKindMessage = "message"

// WebhookEvent is a raw inbound event persisted for deferred processing.
// retry_count only ever grows; once it reaches the retry ceiling the event
// stays unprocessed and is left visible for manual inspection.
type WebhookEvent struct {
	ID           int64
	PageID       string
	EventKind    string
	RawData      []byte
	Processed    bool
	ProcessedAt  *time.Time
	RetryCount   int
	LastError    string
	ClaimedAt    *time.Time
	CreatedAt    time.Time
}
