// Package messenger is a thin client for the Facebook Graph messaging API.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://graph.facebook.com/v18.0"
	sendTimeout    = 10 * time.Second
)

// Client talks to the Graph API on behalf of connected pages
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the Graph API endpoint (used by tests)
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Graph API client
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: sendTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeliveryError is an outbound send failure
type DeliveryError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery failed: %s: %v", e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("delivery failed: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("delivery failed: %s", e.Message)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

type sendRequest struct {
	Recipient     idRef   `json:"recipient"`
	Message       textRef `json:"message"`
	MessagingType string  `json:"messaging_type"`
}

type idRef struct {
	ID string `json:"id"`
}

type textRef struct {
	Text string `json:"text"`
}

// SendText sends a text message to a recipient through a page
func (c *Client) SendText(ctx context.Context, pageID, recipientID, text, accessToken string) error {
	body, err := json.Marshal(sendRequest{
		Recipient:     idRef{ID: recipientID},
		Message:       textRef{Text: text},
		MessagingType: "RESPONSE",
	})
	if err != nil {
		return &DeliveryError{Message: "encode request", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Message: "send message", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DeliveryError{StatusCode: resp.StatusCode, Message: readGraphError(resp.Body)}
	}
	return nil
}

// SenderName fetches a user's first and last name. Failures are returned
// but callers treat the name as optional.
func (c *Client) SenderName(ctx context.Context, senderID, accessToken string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=first_name,last_name&access_token=%s",
		c.baseURL, senderID, url.QueryEscape(accessToken))

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch sender: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sender lookup returned status %d", resp.StatusCode)
	}

	var payload struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode sender: %w", err)
	}
	return strings.TrimSpace(payload.FirstName + " " + payload.LastName), nil
}

// PageInfo describes a page as seen by the Graph API
type PageInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ValidatePageToken checks that an access token can read its page
func (c *Client) ValidatePageToken(ctx context.Context, pageID, accessToken string) (*PageInfo, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=name,id&access_token=%s",
		c.baseURL, pageID, url.QueryEscape(accessToken))

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token validation returned status %d: %s",
			resp.StatusCode, readGraphError(resp.Body))
	}

	var info PageInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode page info: %w", err)
	}
	return &info, nil
}

// readGraphError pulls the error message out of a Graph error envelope
func readGraphError(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable error body"
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
