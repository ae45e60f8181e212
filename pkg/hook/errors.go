package hook

import "errors"

var (
	// ErrFrozen is returned when registration is attempted after Freeze.
	ErrFrozen = errors.New("hook: bus is frozen")

	// ErrNilCallback is returned when a nil callback is registered.
	ErrNilCallback = errors.New("hook: nil callback")

	// ErrUnknownCallback is returned when config names a callback missing from the registry.
	ErrUnknownCallback = errors.New("hook: unknown callback")

	// ErrInvalidConfig is returned when hook config cannot be parsed.
	ErrInvalidConfig = errors.New("hook: invalid config")
)
