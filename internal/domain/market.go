// Package domain defines the core types shared by the fetch, resolve, and
// pricing layers, together with the error taxonomy they surface.
package domain

import "time"

// Market represents a Polymarket prediction market as normalized from one of
// the upstream market APIs. Records are built fresh on every fetch and never
// cached or mutated afterwards.
type Market struct {
	// ConditionID is the long-form hexadecimal condition identifier
	// ("0x" + 64 hex chars) required by the CLOB order-book API.
	ConditionID string `json:"condition_id"`
	// ID is the short numeric identifier shown in the Polymarket UI.
	// May be empty for records coming from sources that do not carry it.
	ID string `json:"id,omitempty"`
	// Slug is the human-readable, URL-safe market name.
	Slug      string    `json:"slug"`
	Question  string    `json:"question"`
	Outcomes  []string  `json:"outcomes,omitempty"`
	TokenIDs  []string  `json:"token_ids,omitempty"`
	Volume    float64   `json:"volume"`
	Active    bool      `json:"active"`
	Closed    bool      `json:"closed"`
	CreatedAt time.Time `json:"created_at"`
}
