// Package maintenance provides offline upkeep for portal storage: purging
// expired sign-in artifacts and verifying stored attachment blobs.
package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ashmont/clientdocs/internal/services/documents/attachments"
	idsqlite "github.com/ashmont/clientdocs/internal/services/identity/storage/sqlite"
	"github.com/ashmont/clientdocs/internal/services/portal/access"
	"github.com/caarlos0/env/v11"
)

// Config holds maintenance command configuration.
type Config struct {
	IdentityDBPath    string        `env:"CLIENTDOCS_IDENTITY_DB_PATH"`
	ReplayDBPath      string        `env:"CLIENTDOCS_REPLAY_DB_PATH"`
	AttachmentsDir    string        `env:"CLIENTDOCS_ATTACHMENTS_DIR"`
	Timeout           time.Duration `env:"CLIENTDOCS_MAINTENANCE_TIMEOUT" envDefault:"10m"`
	PurgeExpired      bool
	VerifyAttachments bool
	VerifyWorkers     int
	JSONOutput        bool
}

type envConfig struct {
	IdentityDBPath string        `env:"CLIENTDOCS_IDENTITY_DB_PATH"`
	ReplayDBPath   string        `env:"CLIENTDOCS_REPLAY_DB_PATH"`
	AttachmentsDir string        `env:"CLIENTDOCS_ATTACHMENTS_DIR"`
	Timeout        time.Duration `env:"CLIENTDOCS_MAINTENANCE_TIMEOUT" envDefault:"10m"`
}

// Report summarizes one maintenance run.
type Report struct {
	PurgedMagicLinks int64             `json:"purged_magic_links"`
	PurgedSessions   int64             `json:"purged_sessions"`
	PurgedGrantIDs   int               `json:"purged_grant_ids"`
	AttachmentIssues []attachmentIssue `json:"attachment_issues"`
}

type attachmentIssue struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		IdentityDBPath: envCfg.IdentityDBPath,
		ReplayDBPath:   envCfg.ReplayDBPath,
		AttachmentsDir: envCfg.AttachmentsDir,
		Timeout:        envCfg.Timeout,
		VerifyWorkers:  4,
	}
	if cfg.IdentityDBPath == "" {
		cfg.IdentityDBPath = filepath.Join("data", "identity.db")
	}
	if cfg.ReplayDBPath == "" {
		cfg.ReplayDBPath = filepath.Join("data", "replay.db")
	}
	if cfg.AttachmentsDir == "" {
		cfg.AttachmentsDir = filepath.Join("data", "attachments")
	}

	fs.BoolVar(&cfg.PurgeExpired, "purge-expired", false, "delete expired magic links, sessions, and consumed grant ids")
	fs.BoolVar(&cfg.VerifyAttachments, "verify-attachments", false, "re-hash and re-validate stored attachment blobs")
	fs.IntVar(&cfg.VerifyWorkers, "verify-workers", cfg.VerifyWorkers, "max concurrent blob checks")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output a JSON report")
	fs.StringVar(&cfg.IdentityDBPath, "identity-db-path", cfg.IdentityDBPath, "path to identity sqlite database (default: CLIENTDOCS_IDENTITY_DB_PATH or data/identity.db)")
	fs.StringVar(&cfg.ReplayDBPath, "replay-db-path", cfg.ReplayDBPath, "path to grant replay database (default: CLIENTDOCS_REPLAY_DB_PATH or data/replay.db)")
	fs.StringVar(&cfg.AttachmentsDir, "attachments-dir", cfg.AttachmentsDir, "attachment blob directory (default: CLIENTDOCS_ATTACHMENTS_DIR or data/attachments)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the maintenance command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if !cfg.PurgeExpired && !cfg.VerifyAttachments {
		return errors.New("nothing to do: pass -purge-expired and/or -verify-attachments")
	}
	if cfg.VerifyWorkers < 0 {
		return errors.New("-verify-workers must be >= 0")
	}

	var identity identityPurger
	var grants grantPurger
	var blobs blobVerifier

	if cfg.PurgeExpired {
		identityStore, err := idsqlite.Open(ctx, cfg.IdentityDBPath)
		if err != nil {
			return fmt.Errorf("open identity sqlite store: %w", err)
		}
		identity = identityStore

		replayStore, err := access.OpenReplayStore(cfg.ReplayDBPath)
		if err != nil {
			closeStore(identity, "identity store", errOut)
			return fmt.Errorf("open grant replay store: %w", err)
		}
		grants = replayStore
	}
	if cfg.VerifyAttachments {
		blobStore, err := attachments.NewStore(cfg.AttachmentsDir)
		if err != nil {
			closeStore(identity, "identity store", errOut)
			closeStore(grants, "grant replay store", errOut)
			return fmt.Errorf("open attachment blob store: %w", err)
		}
		blobs = blobStore
	}

	return runWithDeps(ctx, cfg, identity, grants, blobs, out, errOut)
}

// runWithDeps contains the core maintenance logic with injectable
// dependencies. It owns the lifecycle of the stores (closing them on return).
func runWithDeps(ctx context.Context, cfg Config, identity identityPurger, grants grantPurger, blobs blobVerifier, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	defer func() {
		closeStore(identity, "identity store", errOut)
		closeStore(grants, "grant replay store", errOut)
	}()

	var report Report
	now := time.Now().UTC()

	if cfg.PurgeExpired {
		if identity == nil || grants == nil {
			return errors.New("purge requires identity and grant replay stores")
		}
		links, err := identity.DeleteExpiredMagicLinks(ctx, now)
		if err != nil {
			return fmt.Errorf("purge expired magic links: %w", err)
		}
		sessions, err := identity.DeleteExpiredSessions(ctx, now)
		if err != nil {
			return fmt.Errorf("purge expired sessions: %w", err)
		}
		grantIDs, err := grants.PurgeExpired(ctx, now)
		if err != nil {
			return fmt.Errorf("purge consumed grant ids: %w", err)
		}
		report.PurgedMagicLinks = links
		report.PurgedSessions = sessions
		report.PurgedGrantIDs = grantIDs
	}

	if cfg.VerifyAttachments {
		if blobs == nil {
			return errors.New("verify requires an attachment blob store")
		}
		issues, err := blobs.VerifyAll(ctx, cfg.VerifyWorkers)
		if err != nil {
			return fmt.Errorf("verify attachments: %w", err)
		}
		report.AttachmentIssues = make([]attachmentIssue, 0, len(issues))
		for _, issue := range issues {
			report.AttachmentIssues = append(report.AttachmentIssues, attachmentIssue{Name: issue.Name, Detail: issue.Detail})
		}
	}

	if cfg.JSONOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		if cfg.PurgeExpired {
			fmt.Fprintf(out, "Purged %d expired magic links, %d expired sessions, %d consumed grant ids\n",
				report.PurgedMagicLinks, report.PurgedSessions, report.PurgedGrantIDs)
		}
		if cfg.VerifyAttachments {
			fmt.Fprintf(out, "Attachment verification found %d issue(s)\n", len(report.AttachmentIssues))
			for _, issue := range report.AttachmentIssues {
				fmt.Fprintf(errOut, "  %s: %s\n", issue.Name, issue.Detail)
			}
		}
	}

	if len(report.AttachmentIssues) > 0 {
		return fmt.Errorf("attachment verification found %d issue(s)", len(report.AttachmentIssues))
	}
	return nil
}

func closeStore(store interface{ Close() error }, label string, errOut io.Writer) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		fmt.Fprintf(errOut, "Error: close %s: %v\n", label, err)
	}
}
