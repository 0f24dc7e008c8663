package repository

import (
	"context"
	"database/sql"

	"github.com/devconf/workshop-reservation/internal/booking"
	"github.com/devconf/workshop-reservation/internal/model"
)

// Store bundles the session and selection repositories into the
// transactional boundary the booking coordinator requires.  Each
// InTx call owns exactly one sql.Tx: fn returning nil commits, any
// error (or a failed commit) rolls everything back, so no partial
// release/reserve is ever visible outside the transaction.
type Store struct {
	db         *sql.DB
	sessions   *SessionRepo
	selections *SelectionRepo
}

// NewStore returns a Store over the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:         db,
		sessions:   NewSessionRepo(db),
		selections: NewSelectionRepo(db),
	}
}

// Sessions exposes the session repository for read-only callers
// (public browse, admin seeding).
func (s *Store) Sessions() *SessionRepo { return s.sessions }

// Selections exposes the selection repository for read-only callers
// (admin listing).
func (s *Store) Selections() *SelectionRepo { return s.selections }

// InTx runs fn inside a single database transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&storeTx{store: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SessionsByVenue implements the read side of booking.Store.
func (s *Store) SessionsByVenue(ctx context.Context, venue model.Venue) ([]model.Session, error) {
	return s.sessions.ListByVenue(ctx, venue)
}

// SelectionByIdentity implements the read side of booking.Store.
func (s *Store) SelectionByIdentity(ctx context.Context, identityKey string) (*model.Selection, error) {
	return s.selections.GetByIdentity(ctx, identityKey)
}

// storeTx adapts one sql.Tx to the booking.Tx operation set.
type storeTx struct {
	store *Store
	tx    *sql.Tx
}

func (t *storeTx) SessionsByCodes(ctx context.Context, venue model.Venue, codes []string) ([]model.Session, error) {
	return t.store.sessions.GetByCodesForVenueTx(ctx, t.tx, venue, codes)
}

func (t *storeTx) SelectionForUpdate(ctx context.Context, identityKey string) (*model.Selection, error) {
	return t.store.selections.GetByIdentityForUpdateTx(ctx, t.tx, identityKey)
}

func (t *storeTx) ReserveSeat(ctx context.Context, code string) error {
	return t.store.sessions.ReserveTx(ctx, t.tx, code)
}

func (t *storeTx) ReleaseSeat(ctx context.Context, code string) error {
	return t.store.sessions.ReleaseTx(ctx, t.tx, code)
}

func (t *storeTx) UpsertSelection(ctx context.Context, sel *model.Selection) error {
	return t.store.selections.UpsertTx(ctx, t.tx, sel)
}

func (t *storeTx) DeleteSelection(ctx context.Context, identityKey string) error {
	return t.store.selections.DeleteTx(ctx, t.tx, identityKey)
}
