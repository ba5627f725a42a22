package repo

import "context"

// PageInfo describes a page as reported by the messaging platform
type PageInfo struct {
	ID   string
	Name string
}

// MessengerRepo is the outbound messaging channel interface.
// Implementations talk to the Facebook Graph API; none of the calls
// retry internally, re-queueing is the caller's decision.
type MessengerRepo interface {
	// SendText sends one text message to a recipient on behalf of a page
	SendText(ctx context.Context, pageID, recipientID, text, accessToken string) error

	// SenderName looks up a sender's display name. Best effort: failures
	// yield an empty name, not an error worth aborting for.
	SenderName(ctx context.Context, senderID, accessToken string) (string, error)

	// ValidatePageToken checks that a page access token is usable and
	// returns the page info it resolves to
	ValidatePageToken(ctx context.Context, pageID, accessToken string) (*PageInfo, error)
}
