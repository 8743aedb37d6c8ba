package cache

import "errors"

var (
	// ErrNotFound is returned by Get for a missing or expired key.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned by writes to a memory or file cache after Close.
	ErrClosed = errors.New("cache: closed")

	// ErrMarshal wraps encoding failures on Set.
	ErrMarshal = errors.New("cache: failed to marshal value")

	// ErrUnmarshal wraps decoding failures on Get. The file cache drops
	// entries it cannot decode during sweeps.
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)
