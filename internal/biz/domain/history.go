package domain

import "time"

// HistoryRecord is one append-only log entry of a processed message
type HistoryRecord struct {
	ID             int64
	OwnerID        int64
	PageID         string
	MessageID      string
	SenderID       string
	SenderName     string
	MessageText    string
	ResponseText   string
	ResponseType   Source
	MatchedKeyword string
	ProcessingMs   int64
	ErrorMessage   string
	ProcessedAt    time.Time
}
