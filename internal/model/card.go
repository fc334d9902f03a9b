// Package model defines the core flash card data types.
package model

import "time"

// TimeLayout is the ISO-8601 form used for card timestamps (UTC, millisecond precision).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Well-known setting keys.
const (
	SettingGeminiAPIKey      = "geminiApiKey"
	SettingLastResponse      = "lastGeminiResponse"
	SettingResponseTimestamp = "responseTimestamp"
)

// FlashCard is a single question/answer card. Field order is the export key order.
type FlashCard struct {
	ID           int64    `json:"id"`
	Front        string   `json:"front"`
	Back         string   `json:"back"`
	Tags         []string `json:"tags"`
	Created      string   `json:"created"`
	Source       string   `json:"source"`
	LastReviewed *string  `json:"lastReviewed"`
}

// CreatedAt parses Created. Returns the zero time if it is malformed.
func (c FlashCard) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, c.Created)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Pending is selection text queued for the user to finish, e.g. after a
// missing API key or a failed generation.
type Pending struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FormatTime renders t in TimeLayout, normalised to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
