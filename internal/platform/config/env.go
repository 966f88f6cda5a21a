// Package config loads binary configuration from the environment.
//
// Every clientdocs setting is an environment variable with the CLIENTDOCS_
// prefix, declared as an `env` struct tag on the owning command's config
// struct. Command-line flags layer on top of the parsed values at the call
// sites.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from the environment variables named in its tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	return nil
}
