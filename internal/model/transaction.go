// Package model defines the core domain types shared across the application.
package model

import (
	"math"
	"strings"
	"time"
)

// Transaction represents a single financial event as served by the API.
type Transaction struct {
	ID         int64    `json:"id"`
	Amount     float64  `json:"amount"`
	Currency   string   `json:"currency"`
	OccurredAt string   `json:"occurredAt"`
	Merchant   string   `json:"merchant"`
	PersonName string   `json:"personName"`
	Card       string   `json:"card"`
	Category   string   `json:"category"`
	Details    *string  `json:"details"`
	Tags       []string `json:"tags"`
	Photos     []string `json:"photos"`
}

// NewTransaction is a transaction payload before the backend assigns an ID.
type NewTransaction struct {
	Amount     float64  `json:"amount"`
	Currency   string   `json:"currency"`
	OccurredAt string   `json:"occurredAt"`
	Merchant   string   `json:"merchant"`
	Card       string   `json:"card"`
	Category   string   `json:"category"`
	Details    *string  `json:"details"`
	Tags       []string `json:"tags"`
}

// DefaultCurrency is assumed when an import source carries no currency.
const DefaultCurrency = "CAD"

// occurredAtLayouts lists accepted timestamp formats, most specific first.
var occurredAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseOccurredAt parses a business timestamp. Malformed input yields the
// zero time, which sorts before every real date and fails any date-range
// check; callers do not harden against it.
func ParseOccurredAt(s string) time.Time {
	for _, layout := range occurredAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// OccurredTime returns the parsed business time of the transaction.
func (t Transaction) OccurredTime() time.Time {
	return ParseOccurredAt(t.OccurredAt)
}

// AbsAmount returns the transaction magnitude, ignoring the sign convention.
func (t Transaction) AbsAmount() float64 {
	return math.Abs(t.Amount)
}

// IsValid reports whether the transaction satisfies the store invariants.
func (t Transaction) IsValid() bool {
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return false
	}
	for _, tag := range t.Tags {
		if strings.TrimSpace(tag) == "" || tag != strings.TrimSpace(tag) {
			return false
		}
	}
	return true
}

// NormalizeTags trims entries, drops empties, and removes duplicates while
// preserving first-seen order.
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	return normalized
}

// FormatDate renders a time as a calendar date string.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
