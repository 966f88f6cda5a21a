package magiclink

import (
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultBaseURL = "http://localhost:8095/magic"
	defaultTTL     = 15 * time.Minute
)

// Config controls magic link timing and URL construction for staff sign-in.
type Config struct {
	BaseURL string        `env:"CLIENTDOCS_MAGIC_LINK_BASE_URL" envDefault:"http://localhost:8095/magic"`
	TTL     time.Duration `env:"CLIENTDOCS_MAGIC_LINK_TTL"      envDefault:"15m"`
}

// LoadConfigFromEnv reads magic-link settings from the
// CLIENTDOCS_MAGIC_LINK_* variables. Unset or unparseable values fall back
// to the defaults.
func LoadConfigFromEnv() Config {
	var cfg Config
	_ = env.Parse(&cfg)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	return cfg
}
