package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/devconf/workshop-reservation/internal/model"
)

// AttendeeRepo reads attendee records.  Registration intake and
// approval are handled by the registration system; this service only
// needs lookups by identity key.
type AttendeeRepo struct {
	db *sql.DB
}

// NewAttendeeRepo returns an AttendeeRepo bound to the given database.
func NewAttendeeRepo(db *sql.DB) *AttendeeRepo { return &AttendeeRepo{db: db} }

const attendeeColumns = `id, identity_key, name, email, tier, role, approved, access_code_hash, created_at, updated_at`

// GetByIdentity fetches the attendee for a normalized identity key.
// Returns ErrAttendeeNotFound when no row exists.
func (r *AttendeeRepo) GetByIdentity(ctx context.Context, identityKey string) (*model.Attendee, error) {
	const q = `SELECT ` + attendeeColumns + ` FROM attendees WHERE identity_key = ?`
	var a model.Attendee
	err := r.db.QueryRowContext(ctx, q, identityKey).Scan(
		&a.ID, &a.IdentityKey, &a.Name, &a.Email, &a.Tier, &a.Role,
		&a.Approved, &a.AccessCodeHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendeeNotFound
		}
		return nil, err
	}
	return &a, nil
}

// UpdateAccessCodeHash replaces the stored access code hash for an
// attendee.  Returns ErrAttendeeNotFound when no row matches; bcrypt
// salting guarantees a fresh hash differs from the stored one, so zero
// affected rows can only mean a missing identity.
func (r *AttendeeRepo) UpdateAccessCodeHash(ctx context.Context, identityKey, hash string) error {
	const q = `UPDATE attendees SET access_code_hash = ? WHERE identity_key = ?`
	res, err := r.db.ExecContext(ctx, q, hash, identityKey)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAttendeeNotFound
	}
	return nil
}
