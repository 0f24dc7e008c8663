// Package repository is the MySQL data access layer.  Repositories
// expose plain read methods on *sql.DB and ...Tx variants that operate
// inside a caller-owned transaction; the Store type bundles them into
// the transactional boundary the booking coordinator runs against.
package repository

import "errors"

// ErrAttendeeNotFound is returned when no attendee row exists for an
// identity key.  The identity gateway maps it to its own sentinel so
// callers above the repository never see storage-level errors.
var ErrAttendeeNotFound = errors.New("attendee not found")
