package model

import "time"

// Attendee is a registered conference attendee as stored in the
// `attendees` table.  Registration intake and approval happen outside
// this service; the reservation flow only reads this record to learn
// the attendee's tier and approval status.  The access code is mailed
// to the attendee after approval and stored here as a bcrypt hash.
//
// Fields:
//  ID             – primary key identifier.
//  IdentityKey    – unique normalized identifier (lower-cased email).
//  Name           – display name.
//  Email          – contact email address.
//  Tier           – ticket tier (determines venue and quota policy).
//  Role           – access role, ATTENDEE or ADMIN.
//  Approved       – whether registration has been approved.
//  AccessCodeHash – bcrypt hash of the attendee's access code.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Attendee struct {
	ID             uint64    `json:"id"`
	IdentityKey    string    `json:"identity_key"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Tier           string    `json:"tier"`
	Role           string    `json:"role"`
	Approved       bool      `json:"approved"`
	AccessCodeHash string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
