package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/pkg/config"
)

type appConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR" envDefault:":8080"`
	Name     string        `yaml:"name" env:"NAME" envDefault:"husca"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT" envDefault:"5s"`
	Debug    bool          `yaml:"debug" env:"DEBUG"`
	Origins  []string      `yaml:"origins" env:"ORIGINS" envSeparator:","`
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
}

type strictConfig struct {
	Secret string `env:"SECRET,required"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("defaults only", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.Load[appConfig](config.WithEnvironment(map[string]string{}))
		require.NoError(t, err)
		require.Equal(t, ":8080", cfg.Addr)
		require.Equal(t, "husca", cfg.Name)
		require.Equal(t, 5*time.Second, cfg.Timeout)
		require.False(t, cfg.Debug)
	})

	t.Run("environment", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.Load[appConfig](config.WithEnvironment(map[string]string{
			"ADDR":    ":9000",
			"DEBUG":   "true",
			"ORIGINS": "https://a.example,https://b.example",
		}))
		require.NoError(t, err)
		require.Equal(t, ":9000", cfg.Addr)
		require.True(t, cfg.Debug)
		require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins)
	})

	t.Run("yaml overrides defaults and env overrides yaml", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		file := writeFile(t, dir, "config.yaml", "addr: \":7000\"\nname: from-yaml\ntimeout: 2s\n")

		cfg, err := config.Load[appConfig](
			config.WithFiles(file),
			config.WithEnvironment(map[string]string{"NAME": "from-env"}),
		)
		require.NoError(t, err)
		require.Equal(t, ":7000", cfg.Addr)
		require.Equal(t, "from-env", cfg.Name)
		require.Equal(t, 2*time.Second, cfg.Timeout)
	})

	t.Run("later yaml files win", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		base := writeFile(t, dir, "base.yaml", "addr: \":7000\"\nname: base\n")
		local := writeFile(t, dir, "local.yaml", "name: local\n")

		cfg, err := config.Load[appConfig](
			config.WithFiles(base, local),
			config.WithEnvironment(map[string]string{}),
		)
		require.NoError(t, err)
		require.Equal(t, ":7000", cfg.Addr)
		require.Equal(t, "local", cfg.Name)
	})

	t.Run("missing files are skipped", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg, err := config.Load[appConfig](
			config.WithFiles(filepath.Join(dir, "nope.yaml")),
			config.WithEnvFiles(filepath.Join(dir, ".env")),
			config.WithEnvironment(map[string]string{}),
		)
		require.NoError(t, err)
		require.Equal(t, ":8080", cfg.Addr)
	})

	t.Run("dotenv under the environment", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		dotenv := writeFile(t, dir, ".env", "REDIS_URL=redis://localhost:6379/0\nNAME=from-dotenv\n")

		cfg, err := config.Load[appConfig](
			config.WithEnvFiles(dotenv),
			config.WithEnvironment(map[string]string{"NAME": "from-env"}),
		)
		require.NoError(t, err)
		require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
		require.Equal(t, "from-env", cfg.Name)
	})

	t.Run("earlier dotenv files win", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		local := writeFile(t, dir, ".env.local", "NAME=local\n")
		shared := writeFile(t, dir, ".env", "NAME=shared\nADDR=:6000\n")

		cfg, err := config.Load[appConfig](
			config.WithEnvFiles(local, shared),
			config.WithEnvironment(map[string]string{}),
		)
		require.NoError(t, err)
		require.Equal(t, "local", cfg.Name)
		require.Equal(t, ":6000", cfg.Addr)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.Load[appConfig](
			config.WithPrefix("APP_"),
			config.WithEnvironment(map[string]string{"APP_ADDR": ":5000", "ADDR": ":1"}),
		)
		require.NoError(t, err)
		require.Equal(t, ":5000", cfg.Addr)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		file := writeFile(t, t.TempDir(), "bad.yaml", "addr: [unterminated\n")

		_, err := config.Load[appConfig](
			config.WithFiles(file),
			config.WithEnvironment(map[string]string{}),
		)
		require.ErrorIs(t, err, config.ErrParseYAML)
	})

	t.Run("invalid env value", func(t *testing.T) {
		t.Parallel()
		_, err := config.Load[appConfig](config.WithEnvironment(map[string]string{"TIMEOUT": "soon"}))
		require.ErrorIs(t, err, config.ErrParseEnv)
	})

	t.Run("required variable", func(t *testing.T) {
		t.Parallel()
		_, err := config.Load[strictConfig](config.WithEnvironment(map[string]string{}))
		require.ErrorIs(t, err, config.ErrParseEnv)

		cfg, err := config.Load[strictConfig](config.WithEnvironment(map[string]string{"SECRET": "s3cr3t"}))
		require.NoError(t, err)
		require.Equal(t, "s3cr3t", cfg.Secret)
	})
}

func TestMustLoad(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		config.MustLoad[strictConfig](config.WithEnvironment(map[string]string{}))
	})
	require.NotPanics(t, func() {
		config.MustLoad[appConfig](config.WithEnvironment(map[string]string{}))
	})
}
