package health

import "errors"

var (
	// ErrCheckFailed wraps every failed readiness run.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that failed after the run deadline.
	ErrCheckTimeout = errors.New("health: check timeout")
)
