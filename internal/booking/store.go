package booking

import (
	"context"

	"github.com/devconf/workshop-reservation/internal/model"
)

// Store is the transactional persistence boundary the coordinator
// runs against.  The production implementation wraps MySQL
// (repository.Store); tests use an in-memory store with equivalent
// compare-and-set semantics.
//
// InTx must execute fn inside one atomic, isolated unit of work: every
// mutation made through the Tx is committed together when fn returns
// nil and discarded entirely when fn returns an error.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// Read-side queries used outside the commit path.
	SessionsByVenue(ctx context.Context, venue model.Venue) ([]model.Session, error)
	SelectionByIdentity(ctx context.Context, identityKey string) (*model.Selection, error)
}

// Tx is the set of operations available inside a unit of work.
type Tx interface {
	// SessionsByCodes loads and write-locks the named sessions within
	// the venue, ordered by day then slot.  Codes that do not exist in
	// the venue are simply absent from the result.
	SessionsByCodes(ctx context.Context, venue model.Venue, codes []string) ([]model.Session, error)

	// SelectionForUpdate loads and write-locks the selection row for
	// the identity, serializing concurrent submissions from the same
	// attendee.  Returns (nil, nil) when no selection exists.
	SelectionForUpdate(ctx context.Context, identityKey string) (*model.Selection, error)

	// ReserveSeat increments the session's reserved counter only if
	// headroom remains at write time (compare-and-set).  It returns
	// ErrSessionFull when the session is full.
	ReserveSeat(ctx context.Context, code string) error

	// ReleaseSeat decrements the session's reserved counter, floored
	// at zero.
	ReleaseSeat(ctx context.Context, code string) error

	UpsertSelection(ctx context.Context, sel *model.Selection) error
	DeleteSelection(ctx context.Context, identityKey string) error
}
