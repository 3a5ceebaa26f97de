// Package repository defines error types that are reused across the
// stores.  These sentinel values allow the service layer to tell a lost
// optimistic race (retry) from a real failure (give up).
package repository

import "errors"

// ErrVersionConflict is returned by CommitReservation when the showtime's
// seat matrix changed after it was read.  The caller should reload and
// re-validate.
var ErrVersionConflict = errors.New("seat matrix version conflict")

// ErrDuplicateBookingID is returned when a generated booking code already
// exists in the ledger.  The caller should generate a new code and retry.
var ErrDuplicateBookingID = errors.New("duplicate booking id")
