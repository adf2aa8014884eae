package db

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a guarded status transition finds the row
	// already in a terminal state.
	ErrConflict = errors.New("invalid state transition")
)
