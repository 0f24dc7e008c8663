// Package queue defines the message payloads exchanged over the
// broker and the background consumer that processes them.
package queue

// SelectionConfirmedEvent is published after a selection commit
// succeeds.  It carries enough context for downstream consumers
// (confirmation email, analytics) to act without querying the primary
// database.  Publication is fire-and-forget: a failed publish never
// reverses the reservation.
type SelectionConfirmedEvent struct {
	IdentityKey  string   `json:"identity_key"`
	Tier         string   `json:"tier"`
	Venue        string   `json:"venue"`
	SessionCodes []string `json:"session_codes"`
	Day1Count    uint8    `json:"day1_count"`
	Day2Count    uint8    `json:"day2_count"`
	ConfirmedAt  string   `json:"confirmed_at"`
}
