// Package config loads runtime options from environment variables.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds process-wide runtime options. The category mapping is not
// configuration in this sense; it is a per-run input loaded by
// internal/category.
type Config struct {
	// LogLevel is the minimum log level: debug, info, warn, or error.
	// Environment variable: FOS_LOG_LEVEL
	LogLevel string `koanf:"FOS_LOG_LEVEL"`

	// LogJSON switches log output from the console writer to JSON.
	// Environment variable: FOS_LOG_JSON
	LogJSON bool `koanf:"FOS_LOG_JSON"`
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{LogLevel: "info"}
}

// FromEnv loads configuration from FOS_* environment variables, falling back
// to defaults for unset values.
func FromEnv() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("FOS_", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment config: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling environment config: %w", err)
	}
	return cfg, nil
}
