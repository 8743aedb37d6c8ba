package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned by Open for an empty URL.
	ErrEmptyConnectionURL = errors.New("redis: empty connection URL")

	// ErrFailedToParseURL is returned for a URL without a redis:// or
	// rediss:// scheme, or one go-redis cannot parse.
	ErrFailedToParseURL = errors.New("redis: failed to parse connection URL")

	// ErrConnectionFailed is joined with the last ping error once every
	// retry attempt has failed.
	ErrConnectionFailed = errors.New("redis: failed to establish connection")

	// ErrHealthcheckFailed is returned by the Healthcheck func for a nil
	// client or a failed ping.
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)
