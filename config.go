package husca

import (
	"time"

	"github.com/dmitrymomot/husca/internal"
)

// ServerConfig holds the HTTP server settings, loadable with pkg/config.
// Zero durations keep the runtime defaults.
//
// Example:
//
//	cfg, err := config.Load[husca.ServerConfig](config.WithFiles("config.yaml"))
//	if err != nil {
//	    return err
//	}
//	return husca.Run(append(cfg.Options(), husca.Fallback(app))...)
type ServerConfig struct {
	Address           string        `yaml:"address" env:"HTTP_ADDRESS" envDefault:":8080"`
	ReadTimeout       time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

// Options converts the config into run options.
func (c ServerConfig) Options() []RunOption {
	var opts []RunOption
	if c.Address != "" {
		opts = append(opts, internal.Address(c.Address))
	}
	if c.ReadTimeout > 0 {
		opts = append(opts, internal.ReadTimeout(c.ReadTimeout))
	}
	if c.WriteTimeout > 0 {
		opts = append(opts, internal.WriteTimeout(c.WriteTimeout))
	}
	if c.IdleTimeout > 0 {
		opts = append(opts, internal.IdleTimeout(c.IdleTimeout))
	}
	if c.ReadHeaderTimeout > 0 {
		opts = append(opts, internal.ReadHeaderTimeout(c.ReadHeaderTimeout))
	}
	if c.ShutdownTimeout > 0 {
		opts = append(opts, internal.ShutdownTimeout(c.ShutdownTimeout))
	}
	return opts
}

// ReadTimeout overrides the server read timeout.
func ReadTimeout(d time.Duration) RunOption {
	return internal.ReadTimeout(d)
}

// WriteTimeout overrides the server write timeout.
func WriteTimeout(d time.Duration) RunOption {
	return internal.WriteTimeout(d)
}

// IdleTimeout overrides the server idle timeout.
func IdleTimeout(d time.Duration) RunOption {
	return internal.IdleTimeout(d)
}

// ReadHeaderTimeout overrides the server read header timeout.
func ReadHeaderTimeout(d time.Duration) RunOption {
	return internal.ReadHeaderTimeout(d)
}
