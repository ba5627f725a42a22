package domain

import (
	"strings"
	"time"
)

// MatchType controls how a rule keyword is compared against a message
type MatchType string

const (
	MatchContains   MatchType = "contains"
	MatchExact      MatchType = "exact"
	MatchStartsWith MatchType = "starts_with"
	MatchEndsWith   MatchType = "ends_with"
)

// Rule represents a keyword-triggered predefined response
type Rule struct {
	ID            int64
	OwnerID       int64
	PageID        string
	Keyword       string
	Response      string
	Priority      int
	MatchType     MatchType
	CaseSensitive bool
	Active        bool
	CreatedAt     time.Time
}

// Matches reports whether the rule applies to the given message.
// rawMessage is the trimmed original text, normalizedMessage the trimmed
// lower-cased text. Case-sensitive rules compare against the raw text,
// everything else against the normalized text with a lowered keyword.
func (r *Rule) Matches(rawMessage, normalizedMessage string) bool {
	keyword := r.Keyword
	candidate := normalizedMessage
	if r.CaseSensitive {
		candidate = rawMessage
	} else {
		keyword = strings.ToLower(keyword)
	}

	switch r.MatchType {
	case MatchExact:
		return candidate == keyword
	case MatchStartsWith:
		return strings.HasPrefix(candidate, keyword)
	case MatchEndsWith:
		return strings.HasSuffix(candidate, keyword)
	case MatchContains:
		return strings.Contains(candidate, keyword)
	default:
		// Unknown match types fall back to substring matching
		return strings.Contains(candidate, keyword)
	}
}
