package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a token or user row does not exist.
	ErrNotFound = errors.New("record not found")
)
