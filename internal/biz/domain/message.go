package domain

import "time"

// InboundMessage is one messaging event received through the webhook
type InboundMessage struct {
	PageID     string    `json:"page_id"`
	SenderID   string    `json:"sender_id"`
	MessageID  string    `json:"message_id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// Source identifies where a reply came from
type Source string

const (
	SourcePredefined Source = "predefined"
	SourceAI         Source = "ai"
	SourceNone       Source = "none"
	SourceError      Source = "error"
)

// Resolution is the outcome of deciding a reply for one inbound message
type Resolution struct {
	ReplyText      string
	Source         Source
	MatchedKeyword string
	Provider       string
	Model          string
	ElapsedMs      int64 // time spent in the AI call, zero for predefined replies
	ErrorDetail    string
}

// HasReply reports whether the resolution produced text to send
func (r *Resolution) HasReply() bool {
	return r.ReplyText != ""
}
