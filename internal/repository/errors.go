package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches a lookup, delete or
	// update. Expired mappings are reported as not found as well.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateShortID is returned when an insert would collide with an
	// existing short ID. Inserts never overwrite an existing mapping.
	ErrDuplicateShortID = errors.New("short id already exists")
)
