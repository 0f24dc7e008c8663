package model

import "time"

// Venue identifies one of the two workshop venues at the conference.
// Each ticket tier maps to exactly one venue, and each venue carries
// its own quota policy for how many sessions an attendee may pick.
type Venue string

const (
	// VenueForum is the two-day plenary venue.  Attendees routed here
	// must pick exactly one session per day.
	VenueForum Venue = "FORUM"
	// VenueStudio is the hands-on lab venue with the flexible quota
	// (up to three sessions across both days).
	VenueStudio Venue = "STUDIO"
)

// Session is a single bookable workshop slot in the catalog.  It
// corresponds to a row in the `sessions` table.  The reserved counter
// is mutated only by the reservation coordinator inside a transaction;
// every other field is fixed by the catalog seed.
//
// Fields:
//  ID          – primary key identifier.
//  Code        – unique, immutable session code (e.g. "F1A").
//  Venue       – venue where the session runs.
//  Day         – conference day, 1 or 2.
//  Slot        – ordered slot label within a day (A–D), unique per (venue, day).
//  Title       – display title of the workshop.
//  Capacity    – fixed seat capacity, always positive.
//  Reserved    – live seat counter, 0 ≤ Reserved ≤ Capacity.
//  LinkedGroup – optional group tag; sessions sharing a non-null tag in the
//                same venue are mutually exclusive per attendee.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Session struct {
	ID          uint64    `json:"id"`
	Code        string    `json:"code"`
	Venue       Venue     `json:"venue"`
	Day         uint8     `json:"day"`
	Slot        string    `json:"slot"`
	Title       string    `json:"title"`
	Capacity    uint32    `json:"capacity"`
	Reserved    uint32    `json:"reserved"`
	LinkedGroup *string   `json:"linked_group,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Full reports whether the session has no seat headroom left.
func (s *Session) Full() bool { return s.Reserved >= s.Capacity }

// SessionDef is the seedable part of a session definition as accepted
// by the admin catalog loader.  The reserved counter is deliberately
// absent: seeding never touches live seat counts.
type SessionDef struct {
	Code        string  `json:"code"`
	Venue       Venue   `json:"venue"`
	Day         uint8   `json:"day"`
	Slot        string  `json:"slot"`
	Title       string  `json:"title"`
	Capacity    uint32  `json:"capacity"`
	LinkedGroup *string `json:"linked_group,omitempty"`
}
