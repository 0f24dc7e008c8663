package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the coordinator.  Handlers translate
// these into HTTP responses; none of them is retried automatically.
var (
	// ErrUnknownIdentity means no attendee record exists for the
	// identity key.
	ErrUnknownIdentity = errors.New("identity not found")

	// ErrNotApproved means the attendee exists but has not been
	// approved for the conference.
	ErrNotApproved = errors.New("attendee is not approved")

	// ErrNoVenue means the attendee's tier maps to no workshop venue.
	ErrNoVenue = errors.New("workshops not available for this ticket")

	// ErrInvalidSelection means one or more submitted codes do not
	// name a session in the attendee's venue.
	ErrInvalidSelection = errors.New("unknown session code for this venue")

	// ErrSelectionNotFound means no selection exists for the identity.
	ErrSelectionNotFound = errors.New("selection not found")

	// ErrSessionFull is returned by Tx.ReserveSeat implementations when
	// the compare-and-set increment finds no seat headroom left.  The
	// coordinator wraps it into a ConflictError naming the session.
	ErrSessionFull = errors.New("session full")
)

// ConflictError reports a session that filled up between availability
// and commit.  It is a race outcome, not a static rule failure, so it
// is kept distinct from policy violations: the client should re-fetch
// availability and resubmit.
type ConflictError struct {
	SessionCode string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("session %s is full", e.SessionCode)
}
