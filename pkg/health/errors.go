package health

import "errors"

var (
	// ErrCheckFailed is the error CheckAll returns when a check failed.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is reported for a check that outlived the probe deadline.
	ErrCheckTimeout = errors.New("health: check timeout")
)
