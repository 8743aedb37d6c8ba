package logger

import "log/slog"

// NewNope creates a logger that drops every record without formatting it.
// Apps and consoles use it until a logger is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
