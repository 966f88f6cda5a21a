// Package portal parses portal command flags and launches the document portal
// service.
package portal

import (
	"context"
	"flag"

	entrypoint "github.com/ashmont/clientdocs/internal/platform/cmd"
	portalserver "github.com/ashmont/clientdocs/internal/services/portal"
)

// Config holds portal command configuration.
type Config struct {
	HTTPAddr            string `env:"CLIENTDOCS_HTTP_ADDR" envDefault:"localhost:8095"`
	DocumentsDBPath     string `env:"CLIENTDOCS_DOCUMENTS_DB_PATH" envDefault:"data/documents.db"`
	IdentityDBPath      string `env:"CLIENTDOCS_IDENTITY_DB_PATH" envDefault:"data/identity.db"`
	AttachmentsDir      string `env:"CLIENTDOCS_ATTACHMENTS_DIR" envDefault:"data/attachments"`
	ReplayDBPath        string `env:"CLIENTDOCS_REPLAY_DB_PATH" envDefault:"data/replay.db"`
	TrustForwardedProto bool   `env:"CLIENTDOCS_TRUST_FORWARDED_PROTO"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DocumentsDBPath, "documents-db-path", cfg.DocumentsDBPath, "The documents SQLite database path")
	fs.StringVar(&cfg.IdentityDBPath, "identity-db-path", cfg.IdentityDBPath, "The identity SQLite database path")
	fs.StringVar(&cfg.AttachmentsDir, "attachments-dir", cfg.AttachmentsDir, "Attachment blob storage directory")
	fs.StringVar(&cfg.ReplayDBPath, "replay-db-path", cfg.ReplayDBPath, "The grant replay BoltDB path")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Trust X-Forwarded-Proto from a fronting proxy")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the portal service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePortal, func(context.Context) error {
		return portalserver.Run(ctx, portalserver.RuntimeConfig{
			HTTPAddr:            cfg.HTTPAddr,
			DocumentsDBPath:     cfg.DocumentsDBPath,
			IdentityDBPath:      cfg.IdentityDBPath,
			AttachmentsDir:      cfg.AttachmentsDir,
			ReplayDBPath:        cfg.ReplayDBPath,
			TrustForwardedProto: cfg.TrustForwardedProto,
		})
	})
}
