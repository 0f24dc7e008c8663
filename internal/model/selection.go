package model

import "time"

// Selection is an attendee's current, validated set of chosen session
// codes.  There is exactly one row per identity key (upsert semantics);
// a re-selection replaces the whole code set.  The per-day counters are
// derived from SessionCodes and kept in sync by the coordinator.
//
// Fields:
//  ID           – primary key identifier.
//  IdentityKey  – normalized (lower-cased, trimmed) attendee identifier.
//  Tier         – ticket tier at the time of selection (snapshot).
//  Venue        – venue derived from the tier.
//  SessionCodes – ordered, duplicate-free list of chosen session codes.
//  Day1Count    – number of chosen sessions on day 1.
//  Day2Count    – number of chosen sessions on day 2.
//  CreatedAt    – timestamp of the first successful commit.
//  UpdatedAt    – timestamp of the last re-selection.
type Selection struct {
	ID           uint64    `json:"id"`
	IdentityKey  string    `json:"identity_key"`
	Tier         string    `json:"tier"`
	Venue        Venue     `json:"venue"`
	SessionCodes []string  `json:"session_codes"`
	Day1Count    uint8     `json:"day1_count"`
	Day2Count    uint8     `json:"day2_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Holds reports whether the selection already contains the given
// session code.
func (s *Selection) Holds(code string) bool {
	for _, c := range s.SessionCodes {
		if c == code {
			return true
		}
	}
	return false
}
