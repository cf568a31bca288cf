package store

import "errors"

// Sentinel errors returned by store operations. Services translate these
// into the API error taxonomy; the store itself stays HTTP-agnostic.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when creating a record whose ID is taken.
	ErrAlreadyExists = errors.New("record already exists")
)
