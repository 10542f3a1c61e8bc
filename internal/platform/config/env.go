// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every env tag, so `env:"PORT"` reads VORAGO_PORT.
const Prefix = "VORAGO_"

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// RequireString reports an error naming the variable when value is blank.
func RequireString(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s%s is required", Prefix, name)
	}
	return nil
}
