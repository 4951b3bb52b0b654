package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every variable read by rowedex binaries.
const EnvPrefix = "ROWEDEX_"

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses a fresh T from the environment.
func Load[T any]() (T, error) {
	var cfg T
	if err := ParseEnv(&cfg); err != nil {
		var zero T
		return zero, err
	}
	return cfg, nil
}

// Required reports a configuration error naming the variable when value is blank.
func Required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s%s is required", EnvPrefix, name)
	}
	return nil
}
