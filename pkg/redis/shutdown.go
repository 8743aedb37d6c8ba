package redis

import (
	"context"
	"io"
)

// Shutdown returns a hook that closes the client.
//
// Example:
//
//	husca.Run(husca.Fallback(app), husca.ShutdownHook(redis.Shutdown(client)))
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		if client == nil {
			return nil
		}
		return client.Close()
	}
}
