package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Option configures Load.
type Option func(*options)

type options struct {
	environment map[string]string
	prefix      string
	files       []string
	envFiles    []string
}

// WithFiles adds YAML files. Later files override earlier ones.
// Files that do not exist are skipped.
func WithFiles(paths ...string) Option {
	return func(o *options) {
		o.files = append(o.files, paths...)
	}
}

// WithEnvFiles adds .env files. Earlier files win, like godotenv.Load.
// Files that do not exist are skipped.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.envFiles = append(o.envFiles, paths...)
	}
}

// WithPrefix prepends prefix to every env key, e.g. "APP_".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithEnvironment replaces the process environment with vars.
// Mostly useful in tests.
func WithEnvironment(vars map[string]string) Option {
	return func(o *options) {
		o.environment = vars
	}
}

// noDefaults names a tag no struct carries, so the final env pass only
// applies variables that are actually set.
const noDefaults = "husca-config-no-default"

// Load builds a T from its envDefault tags, the YAML files, the .env files
// and the environment, each layer overriding the previous one.
func Load[T any](opts ...Option) (T, error) {
	var cfg T

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	environ, err := o.environ()
	if err != nil {
		return cfg, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ, Prefix: o.prefix}); err != nil {
		return cfg, errors.Join(ErrParseEnv, err)
	}

	if len(o.files) == 0 {
		return cfg, nil
	}

	for _, path := range o.files {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return cfg, errors.Join(ErrReadFile, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Join(ErrParseYAML, fmt.Errorf("%s: %w", path, err))
		}
	}

	// Files may have overwritten values taken from the environment.
	err = env.ParseWithOptions(&cfg, env.Options{
		Environment:         environ,
		Prefix:              o.prefix,
		DefaultValueTagName: noDefaults,
	})
	if err != nil {
		return cfg, errors.Join(ErrParseEnv, err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(err)
	}
	return cfg
}

// environ merges the .env files under the process environment.
func (o *options) environ() (map[string]string, error) {
	base := o.environment
	if base == nil {
		base = env.ToMap(os.Environ())
	}

	out := make(map[string]string, len(base))
	for i := len(o.envFiles) - 1; i >= 0; i-- {
		vars, err := godotenv.Read(o.envFiles[i])
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Join(ErrParseDotenv, fmt.Errorf("%s: %w", o.envFiles[i], err))
		}
		maps.Copy(out, vars)
	}
	maps.Copy(out, base)
	return out, nil
}
