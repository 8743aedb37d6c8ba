package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats understood by Config.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config selects the level, format and destination of a logger.
// The zero value logs JSON at info level to stdout.
type Config struct {
	Output io.Writer  `yaml:"-"`
	Format string     `env:"LOG_FORMAT" envDefault:"json" yaml:"format"`
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`
}

// Handler builds the slog.Handler described by the config.
func (c Config) Handler() slog.Handler {
	out := c.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: c.Level}
	if strings.EqualFold(c.Format, FormatText) {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}

// New creates a JSON logger writing to stdout at info level.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithConfig(Config{}, extractors...)
}

// NewWithConfig creates a logger from cfg with optional context extractors.
func NewWithConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(cfg.Handler(), extractors...))
}
