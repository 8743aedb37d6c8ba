// Package config loads typed configuration structs from layered sources.
//
// Sources are applied from lowest to highest precedence:
//
//  1. envDefault struct tags
//  2. YAML files, in the order given
//  3. .env files (never overriding the process environment)
//  4. the process environment
//
// Missing files are skipped, so the same call works in development with a
// local config.yaml and in production with environment variables only.
//
//	type Config struct {
//	    Addr     string        `yaml:"addr" env:"ADDR" envDefault:":8080"`
//	    RedisURL string        `yaml:"redis_url" env:"REDIS_URL,required"`
//	    Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT" envDefault:"5s"`
//	}
//
//	cfg, err := config.Load[Config](
//	    config.WithFiles("config.yaml"),
//	    config.WithEnvFiles(".env"),
//	)
//
// YAML uses gopkg.in/yaml.v3, .env files github.com/joho/godotenv and the
// environment github.com/caarlos0/env/v11.
package config
