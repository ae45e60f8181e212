package cache

import "errors"

var (
	// ErrNotFound is returned for missing, expired or unreadable entries.
	ErrNotFound = errors.New("cache: entry not found")

	ErrClosed    = errors.New("cache: closed")
	ErrMarshal   = errors.New("cache: failed to marshal value")
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")

	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("cache: invalid key")
)
