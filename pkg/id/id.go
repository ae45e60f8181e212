// Package id generates request and trace identifiers.
package id

import "github.com/google/uuid"

// Generator returns a new identifier on each call.
type Generator func() string

// New returns a time-ordered UUIDv7 string. If the clock or entropy source
// fails it falls back to a random UUIDv4.
func New() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// Valid reports whether s parses as a UUID in any of the standard forms.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
