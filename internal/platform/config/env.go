// Package config loads command configuration from the process environment
// and provides the shared fatal-exit helper for one-shot CLIs.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from the ROSTERSYNC_* variables declared in its env
// struct tags. Flag parsing layers on top of the result, so environment
// values act as defaults.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
