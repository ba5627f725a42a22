package data

import (
	"context"

	"github.com/pagereply/pagereply/internal/biz/repo"
	"github.com/pagereply/pagereply/messenger"
)

// messengerRepo adapts the Graph API client to the messenger repository
type messengerRepo struct {
	client *messenger.Client
}

// NewMessengerRepo creates a messenger repository backed by the Graph API
func NewMessengerRepo(client *messenger.Client) repo.MessengerRepo {
	return &messengerRepo{client: client}
}

func (r *messengerRepo) SendText(ctx context.Context, pageID, recipientID, text, accessToken string) error {
	return r.client.SendText(ctx, pageID, recipientID, text, accessToken)
}

func (r *messengerRepo) SenderName(ctx context.Context, senderID, accessToken string) (string, error) {
	return r.client.SenderName(ctx, senderID, accessToken)
}

func (r *messengerRepo) ValidatePageToken(ctx context.Context, pageID, accessToken string) (*repo.PageInfo, error) {
	info, err := r.client.ValidatePageToken(ctx, pageID, accessToken)
	if err != nil {
		return nil, err
	}
	return &repo.PageInfo{ID: info.ID, Name: info.Name}, nil
}
