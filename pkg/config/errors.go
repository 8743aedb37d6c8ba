package config

import "errors"

var (
	ErrReadFile    = errors.New("config: failed to read file")
	ErrParseYAML   = errors.New("config: failed to parse YAML")
	ErrParseDotenv = errors.New("config: failed to parse .env file")
	ErrParseEnv    = errors.New("config: failed to parse environment")
)
