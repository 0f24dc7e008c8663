package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/devconf/workshop-reservation/internal/model"
)

// SelectionRepo persists per-attendee selection records.  There is at
// most one row per identity key; re-selections replace the code set
// wholesale.  Session codes are stored as a comma-joined string in
// submission order.
type SelectionRepo struct {
	db *sql.DB
}

// NewSelectionRepo returns a SelectionRepo bound to the given database.
func NewSelectionRepo(db *sql.DB) *SelectionRepo { return &SelectionRepo{db: db} }

const selectionColumns = `id, identity_key, tier, venue, session_codes, day1_count, day2_count, created_at, updated_at`

func scanSelection(row interface{ Scan(...any) error }) (*model.Selection, error) {
	var sel model.Selection
	var codes string
	err := row.Scan(
		&sel.ID, &sel.IdentityKey, &sel.Tier, &sel.Venue, &codes,
		&sel.Day1Count, &sel.Day2Count, &sel.CreatedAt, &sel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sel.SessionCodes = splitCodes(codes)
	return &sel, nil
}

func splitCodes(codes string) []string {
	if codes == "" {
		return []string{}
	}
	return strings.Split(codes, ",")
}

// GetByIdentity returns the selection for an identity key, or
// (nil, nil) when none exists.
func (r *SelectionRepo) GetByIdentity(ctx context.Context, identityKey string) (*model.Selection, error) {
	const q = `SELECT ` + selectionColumns + ` FROM selections WHERE identity_key = ?`
	sel, err := scanSelection(r.db.QueryRowContext(ctx, q, identityKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sel, nil
}

// GetByIdentityForUpdateTx loads and write-locks the selection row,
// serializing concurrent submissions for the same identity for the
// duration of the transaction.  Returns (nil, nil) when no row exists;
// in that case the unique index on identity_key still prevents two
// first-time submissions from both inserting.
func (r *SelectionRepo) GetByIdentityForUpdateTx(ctx context.Context, tx *sql.Tx, identityKey string) (*model.Selection, error) {
	const q = `SELECT ` + selectionColumns + ` FROM selections WHERE identity_key = ? FOR UPDATE`
	sel, err := scanSelection(tx.QueryRowContext(ctx, q, identityKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sel, nil
}

// UpsertTx inserts or replaces the selection record within the
// transaction.  The identity key is the conflict key; on update the
// tier snapshot, venue, code set and day counters are all replaced.
func (r *SelectionRepo) UpsertTx(ctx context.Context, tx *sql.Tx, sel *model.Selection) error {
	const q = `INSERT INTO selections (identity_key, tier, venue, session_codes, day1_count, day2_count)
	           VALUES (?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	           tier = VALUES(tier), venue = VALUES(venue), session_codes = VALUES(session_codes),
	           day1_count = VALUES(day1_count), day2_count = VALUES(day2_count)`
	codes := strings.Join(sel.SessionCodes, ",")
	_, err := tx.ExecContext(ctx, q, sel.IdentityKey, sel.Tier, sel.Venue, codes, sel.Day1Count, sel.Day2Count)
	if err != nil {
		return err
	}
	// Read the row back so callers see DB-assigned ID and timestamps.
	const sel2 = `SELECT ` + selectionColumns + ` FROM selections WHERE identity_key = ?`
	stored, err := scanSelection(tx.QueryRowContext(ctx, sel2, sel.IdentityKey))
	if err != nil {
		return err
	}
	sel.ID = stored.ID
	sel.CreatedAt = stored.CreatedAt
	sel.UpdatedAt = stored.UpdatedAt
	return nil
}

// DeleteTx removes the selection row within the transaction.  Seat
// release is the coordinator's responsibility and happens in the same
// transaction before this call.
func (r *SelectionRepo) DeleteTx(ctx context.Context, tx *sql.Tx, identityKey string) error {
	const q = `DELETE FROM selections WHERE identity_key = ?`
	_, err := tx.ExecContext(ctx, q, identityKey)
	return err
}

// AdminSelection is the joined read model for the admin listing:
// the selection plus attendee profile and session metadata.
type AdminSelection struct {
	IdentityKey  string                `json:"identity_key"`
	AttendeeName string                `json:"attendee_name"`
	Email        string                `json:"email"`
	Tier         string                `json:"tier"`
	Venue        model.Venue           `json:"venue"`
	Day1Count    uint8                 `json:"day1_count"`
	Day2Count    uint8                 `json:"day2_count"`
	Sessions     []AdminSessionSummary `json:"sessions"`
	UpdatedAt    string                `json:"updated_at"`
}

// AdminSessionSummary is the session metadata shown per chosen code.
type AdminSessionSummary struct {
	Code  string `json:"code"`
	Day   uint8  `json:"day"`
	Slot  string `json:"slot"`
	Title string `json:"title"`
}

// ListAll returns every selection joined with the attendee profile,
// ordered by venue then identity key.  Session metadata is resolved
// from a single catalog read instead of a per-row join because the
// code set lives in one column.
func (r *SelectionRepo) ListAll(ctx context.Context) ([]AdminSelection, error) {
	const q = `SELECT s.identity_key, a.name, a.email, s.tier, s.venue,
	                  s.session_codes, s.day1_count, s.day2_count, s.updated_at
	           FROM selections s
	           JOIN attendees a ON a.identity_key = s.identity_key
	           ORDER BY s.venue, s.identity_key`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type rawRow struct {
		sel   AdminSelection
		codes []string
	}
	raw := make([]rawRow, 0)
	for rows.Next() {
		var rr rawRow
		var codes string
		var updated time.Time
		if err := rows.Scan(
			&rr.sel.IdentityKey, &rr.sel.AttendeeName, &rr.sel.Email, &rr.sel.Tier, &rr.sel.Venue,
			&codes, &rr.sel.Day1Count, &rr.sel.Day2Count, &updated,
		); err != nil {
			return nil, err
		}
		rr.sel.UpdatedAt = updated.UTC().Format(time.RFC3339)
		rr.codes = splitCodes(codes)
		raw = append(raw, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []AdminSelection{}, nil
	}

	// One catalog read covers every referenced code.
	const catQ = `SELECT code, day, slot, title FROM sessions`
	catRows, err := r.db.QueryContext(ctx, catQ)
	if err != nil {
		return nil, err
	}
	defer catRows.Close()
	catalog := make(map[string]AdminSessionSummary)
	for catRows.Next() {
		var s AdminSessionSummary
		if err := catRows.Scan(&s.Code, &s.Day, &s.Slot, &s.Title); err != nil {
			return nil, err
		}
		catalog[s.Code] = s
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	out := make([]AdminSelection, 0, len(raw))
	for _, rr := range raw {
		rr.sel.Sessions = make([]AdminSessionSummary, 0, len(rr.codes))
		for _, code := range rr.codes {
			if s, ok := catalog[code]; ok {
				rr.sel.Sessions = append(rr.sel.Sessions, s)
			} else {
				rr.sel.Sessions = append(rr.sel.Sessions, AdminSessionSummary{Code: code})
			}
		}
		out = append(out, rr.sel)
	}
	return out, nil
}
