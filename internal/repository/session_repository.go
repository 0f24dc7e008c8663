package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/devconf/workshop-reservation/internal/booking"
	"github.com/devconf/workshop-reservation/internal/model"
)

// SessionRepo provides access to the session catalog.  The reserved
// counter is only ever changed through ReserveTx/ReleaseTx inside a
// transaction owned by the coordinator; the seed upsert deliberately
// leaves it untouched.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying handle for transaction creation.
func (r *SessionRepo) DB() *sql.DB { return r.db }

const sessionColumns = `id, code, venue, day, slot, title, capacity, reserved, linked_group, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (model.Session, error) {
	var s model.Session
	var group sql.NullString
	err := row.Scan(
		&s.ID, &s.Code, &s.Venue, &s.Day, &s.Slot, &s.Title,
		&s.Capacity, &s.Reserved, &group, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return model.Session{}, err
	}
	if group.Valid {
		g := group.String
		s.LinkedGroup = &g
	}
	return s, nil
}

// ListByVenue returns every session of a venue in catalog order
// (day, then slot).
func (r *SessionRepo) ListByVenue(ctx context.Context, venue model.Venue) ([]model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE venue = ? ORDER BY day, slot`
	rows, err := r.db.QueryContext(ctx, q, venue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]model.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListAll returns the whole catalog in venue/day/slot order.  Used by
// the public browse endpoint and the admin selection listing.
func (r *SessionRepo) ListAll(ctx context.Context) ([]model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions ORDER BY venue, day, slot`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]model.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetByCodesForVenueTx loads and write-locks the named sessions within
// a venue.  The FOR UPDATE lock keeps the read-check-write on the
// reserved counter isolated against concurrent submissions for the
// lifetime of the transaction.  Codes missing from the venue are
// absent from the result; the caller compares lengths.
func (r *SessionRepo) GetByCodesForVenueTx(ctx context.Context, tx *sql.Tx, venue model.Venue, codes []string) ([]model.Session, error) {
	if len(codes) == 0 {
		return []model.Session{}, nil
	}
	placeholders := strings.Repeat("?,", len(codes))
	placeholders = placeholders[:len(placeholders)-1]
	q := `SELECT ` + sessionColumns + ` FROM sessions
	      WHERE venue = ? AND code IN (` + placeholders + `)
	      ORDER BY day, slot FOR UPDATE`
	args := make([]any, 0, len(codes)+1)
	args = append(args, venue)
	for _, c := range codes {
		args = append(args, c)
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]model.Session, 0, len(codes))
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ReserveTx takes one seat in the session via compare-and-set: the
// increment only applies while headroom remains, so two transactions
// racing for the last seat cannot both succeed.  Callers must have
// verified the code exists (GetByCodesForVenueTx); zero affected rows
// therefore means the session is full.
func (r *SessionRepo) ReserveTx(ctx context.Context, tx *sql.Tx, code string) error {
	const q = `UPDATE sessions SET reserved = reserved + 1 WHERE code = ? AND reserved < capacity`
	res, err := tx.ExecContext(ctx, q, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrSessionFull
	}
	return nil
}

// ReleaseTx returns one seat to the session.  The reserved > 0 guard
// floors the counter at zero; releasing an already-empty session is a
// no-op rather than an error.
func (r *SessionRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, code string) error {
	const q = `UPDATE sessions SET reserved = reserved - 1 WHERE code = ? AND reserved > 0`
	_, err := tx.ExecContext(ctx, q, code)
	return err
}

// UpsertDefs bulk-upserts session definitions keyed by code.  The
// statement updates every seedable column but never the reserved
// counter, so re-running the seed against a live catalog is safe.
// Returns the number of definitions processed.
func (r *SessionRepo) UpsertDefs(ctx context.Context, defs []model.SessionDef) (int, error) {
	if len(defs) == 0 {
		return 0, nil
	}
	query := `INSERT INTO sessions (code, venue, day, slot, title, capacity, linked_group) VALUES `
	args := make([]any, 0, len(defs)*7)
	for i, d := range defs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		var group any
		if d.LinkedGroup != nil && *d.LinkedGroup != "" {
			group = *d.LinkedGroup
		}
		args = append(args, d.Code, d.Venue, d.Day, d.Slot, d.Title, d.Capacity, group)
	}
	query += ` ON DUPLICATE KEY UPDATE
	           venue = VALUES(venue), day = VALUES(day), slot = VALUES(slot),
	           title = VALUES(title), capacity = VALUES(capacity), linked_group = VALUES(linked_group)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, err
	}
	return len(defs), nil
}
