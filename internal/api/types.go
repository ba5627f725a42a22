package api

import (
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

type ruleJSON struct {
	ID            int64  `json:"id,omitempty"`
	OwnerID       int64  `json:"owner_id,omitempty"`
	PageID        string `json:"page_id,omitempty"`
	Keyword       string `json:"keyword"`
	Response      string `json:"response"`
	Priority      int    `json:"priority"`
	MatchType     string `json:"match_type"`
	CaseSensitive bool   `json:"case_sensitive"`
	Active        bool   `json:"active"`
}

func toRuleJSON(r *domain.Rule) ruleJSON {
	return ruleJSON{
		ID:            r.ID,
		Keyword:       r.Keyword,
		Response:      r.Response,
		Priority:      r.Priority,
		MatchType:     string(r.MatchType),
		CaseSensitive: r.CaseSensitive,
		Active:        r.Active,
	}
}

type configJSON struct {
	OwnerID      int64   `json:"owner_id,omitempty"`
	PageID       string  `json:"page_id,omitempty"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	APIKey       string  `json:"api_key,omitempty"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	Instructions string  `json:"instructions"`
	Tone         string  `json:"tone"`
	Style        string  `json:"style"`
	Language     string  `json:"language"`
	FallbackOnly bool    `json:"fallback_only"`
	Active       bool    `json:"active"`
}

func (c *configJSON) toDomain() *domain.AIConfig {
	return &domain.AIConfig{
		OwnerID:      c.OwnerID,
		PageID:       c.PageID,
		Provider:     c.Provider,
		Model:        c.Model,
		APIKey:       c.APIKey,
		Temperature:  c.Temperature,
		MaxTokens:    c.MaxTokens,
		Instructions: c.Instructions,
		Tone:         c.Tone,
		Style:        c.Style,
		Language:     c.Language,
		FallbackOnly: c.FallbackOnly,
	}
}

// toConfigJSON masks the stored API key; clients only need to know one exists
func toConfigJSON(c *domain.AIConfig) configJSON {
	masked := ""
	if c.APIKey != "" {
		masked = "********"
	}
	return configJSON{
		Provider:     c.Provider,
		Model:        c.Model,
		APIKey:       masked,
		Temperature:  c.Temperature,
		MaxTokens:    c.MaxTokens,
		Instructions: c.Instructions,
		Tone:         c.Tone,
		Style:        c.Style,
		Language:     c.Language,
		FallbackOnly: c.FallbackOnly,
		Active:       c.Active,
	}
}

type historyJSON struct {
	ID             int64     `json:"id"`
	PageID         string    `json:"page_id"`
	MessageID      string    `json:"message_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name,omitempty"`
	MessageText    string    `json:"message_text"`
	ResponseText   string    `json:"response_text,omitempty"`
	ResponseType   string    `json:"response_type"`
	MatchedKeyword string    `json:"matched_keyword,omitempty"`
	ProcessingMs   int64     `json:"processing_time_ms"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	ProcessedAt    time.Time `json:"processed_at"`
}

func toHistoryJSON(rec *domain.HistoryRecord) historyJSON {
	return historyJSON{
		ID:             rec.ID,
		PageID:         rec.PageID,
		MessageID:      rec.MessageID,
		SenderID:       rec.SenderID,
		SenderName:     rec.SenderName,
		MessageText:    rec.MessageText,
		ResponseText:   rec.ResponseText,
		ResponseType:   string(rec.ResponseType),
		MatchedKeyword: rec.MatchedKeyword,
		ProcessingMs:   rec.ProcessingMs,
		ErrorMessage:   rec.ErrorMessage,
		ProcessedAt:    rec.ProcessedAt,
	}
}

type pageJSON struct {
	ID       int64  `json:"id"`
	OwnerID  int64  `json:"owner_id"`
	PageID   string `json:"page_id"`
	PageName string `json:"page_name"`
	Active   bool   `json:"active"`
}
