package domain

import "time"

// Default generation parameters applied when a config leaves them unset
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
)

// AIConfig holds the generative-AI settings for one (owner, page) pair
type AIConfig struct {
	ID           int64
	OwnerID      int64
	PageID       string
	Provider     string // openai, mistral, claude
	Model        string
	APIKey       string
	Temperature  float64
	MaxTokens    int
	Instructions string
	Tone         string // professional, friendly, humorous, formal
	Style        string // short, medium, long
	Language     string // "fr" or anything else (treated as English)
	Active       bool
	FallbackOnly bool
	CreatedAt    time.Time
}

// EffectiveTemperature returns the configured temperature or the default
func (c *AIConfig) EffectiveTemperature() float64 {
	if c.Temperature <= 0 {
		return DefaultTemperature
	}
	return c.Temperature
}

// EffectiveMaxTokens returns the configured token limit or the default
func (c *AIConfig) EffectiveMaxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}
