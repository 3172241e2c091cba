package data_access

import "errors"

var (
	// ErrNotFound is returned when no user document matches.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateKey is returned when a sparse unique index (username, email) rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDisconnected is returned while the store has no live connection.
	ErrDisconnected = errors.New("database not connected")
)

// DuplicateKeyError names the field that collided, when known.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return ErrDuplicateKey.Error()
	}
	return "duplicate " + e.Field
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}
