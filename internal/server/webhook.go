package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
	"github.com/pagereply/pagereply/internal/biz/usecase"
)

// webhookEnvelope mirrors the Facebook page webhook payload
type webhookEnvelope struct {
	Object string `json:"object"`
	Entry  []struct {
		ID        string `json:"id"`
		Time      int64  `json:"time"`
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Recipient struct {
				ID string `json:"id"`
			} `json:"recipient"`
			Message *struct {
				MID    string `json:"mid"`
				Text   string `json:"text"`
				IsEcho bool   `json:"is_echo"`
			} `json:"message"`
		} `json:"messaging"`
	} `json:"entry"`
}

// WebhookServer receives Facebook page webhook deliveries and feeds
// messaging events into the processing queue
type WebhookServer struct {
	verifyToken string
	queueUC     *usecase.QueueUsecase

	// Message deduplication cache
	seenMsgsMu sync.RWMutex
	seenMsgs   map[string]time.Time // message id -> first seen
}

// NewWebhookServer creates a new webhook server
func NewWebhookServer(verifyToken string, queueUC *usecase.QueueUsecase) *WebhookServer {
	return &WebhookServer{
		verifyToken: verifyToken,
		queueUC:     queueUC,
		seenMsgs:    make(map[string]time.Time),
	}
}

// Register mounts the webhook routes on the mux
func (s *WebhookServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("/webhook/facebook", s.handleWebhook)
}

func (s *WebhookServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleVerify(w, r)
	case http.MethodPost:
		s.handleEvent(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleVerify answers the platform's subscription handshake: echo the
// challenge when the verify token matches, 403 otherwise
func (s *WebhookServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == s.verifyToken {
		fmt.Println("[Webhook] Verification succeeded")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}
	fmt.Println("[Webhook] Verification failed: token mismatch")
	w.WriteHeader(http.StatusForbidden)
}

// handleEvent acknowledges the delivery with 200 regardless of processing
// outcome; the platform retries on any other status and would duplicate
// everything we already persisted
func (s *WebhookServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	var envelope webhookEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		fmt.Printf("[Webhook] Failed to decode payload: %v\n", err)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("EVENT_RECEIVED"))
		return
	}

	if envelope.Object != "page" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	received := time.Now()
	for _, entry := range envelope.Entry {
		for _, event := range entry.Messaging {
			msg := event.Message
			if msg == nil || msg.IsEcho || msg.Text == "" || msg.MID == "" {
				continue
			}
			if s.isMessageSeen(msg.MID) {
				fmt.Printf("[Webhook] Duplicate message ignored: %s\n", msg.MID)
				continue
			}
			s.markMessageSeen(msg.MID)

			inbound := &domain.InboundMessage{
				PageID:     entry.ID,
				SenderID:   event.Sender.ID,
				MessageID:  msg.MID,
				Text:       msg.Text,
				ReceivedAt: received,
			}
			if err := s.queueUC.Submit(r.Context(), inbound); err != nil {
				fmt.Printf("[Webhook] Failed to submit message %s: %v\n", msg.MID, err)
			}
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("EVENT_RECEIVED"))
}

// isMessageSeen checks whether a message id was already accepted
func (s *WebhookServer) isMessageSeen(msgID string) bool {
	s.seenMsgsMu.RLock()
	defer s.seenMsgsMu.RUnlock()
	_, ok := s.seenMsgs[msgID]
	return ok
}

// markMessageSeen records a message id and prunes entries older than 10 minutes
func (s *WebhookServer) markMessageSeen(msgID string) {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()

	now := time.Now()
	s.seenMsgs[msgID] = now

	cutoff := now.Add(-10 * time.Minute)
	for id, seen := range s.seenMsgs {
		if seen.Before(cutoff) {
			delete(s.seenMsgs, id)
		}
	}
}
