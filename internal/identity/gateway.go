// Package identity provides the database-backed attendee resolver for
// the reservation flow.  The booking coordinator depends only on its
// own Gateway interface; this package supplies the production
// implementation, so the registration system can later be split out
// without touching booking logic.
package identity

import (
	"context"
	"errors"

	"github.com/devconf/workshop-reservation/internal/booking"
	"github.com/devconf/workshop-reservation/internal/model"
	"github.com/devconf/workshop-reservation/internal/repository"
)

// StoreGateway resolves attendees from the attendees table.  It
// satisfies booking.Gateway.
type StoreGateway struct {
	attendees *repository.AttendeeRepo
}

// NewStoreGateway returns a gateway reading from the attendees table.
func NewStoreGateway(attendees *repository.AttendeeRepo) *StoreGateway {
	return &StoreGateway{attendees: attendees}
}

// Resolve fetches the attendee record for the given identity key,
// mapping a missing row onto booking.ErrUnknownIdentity.
func (g *StoreGateway) Resolve(ctx context.Context, identityKey string) (*model.Attendee, error) {
	a, err := g.attendees.GetByIdentity(ctx, identityKey)
	if err != nil {
		if errors.Is(err, repository.ErrAttendeeNotFound) {
			return nil, booking.ErrUnknownIdentity
		}
		return nil, err
	}
	return a, nil
}
