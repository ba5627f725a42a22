package domain

import "time"

// Log levels for system log entries
const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
	LogLevelDebug   = "debug"
)

// SystemLog is a durable lifecycle event emitted by the pipeline
type SystemLog struct {
	ID        int64
	OwnerID   int64 // zero when the event is not tied to an owner
	PageID    string
	Level     string
	EventType string
	Message   string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}
