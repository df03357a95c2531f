// Package storeerr holds the driver-neutral errors every store translates
// its driver errors into, so lifecycle code and in-memory fakes agree on
// them.
package storeerr

import "errors"

var (
	// ErrNotFound is returned when no row/document matches.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("store: duplicate key")
)
