// Package seed parses seed command flags and populates portal storage with
// demo data from Lua checklist scripts.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	entrypoint "github.com/ashmont/clientdocs/internal/platform/cmd"
	"github.com/ashmont/clientdocs/internal/tools/seed"
)

// Config holds seed command configuration.
type Config struct {
	SeedConfig seed.Config
	List       bool
}

type envConfig struct {
	DocumentsDBPath string `env:"CLIENTDOCS_DOCUMENTS_DB_PATH"`
	IdentityDBPath  string `env:"CLIENTDOCS_IDENTITY_DB_PATH"`
	AttachmentsDir  string `env:"CLIENTDOCS_ATTACHMENTS_DIR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := entrypoint.ParseConfig(&envCfg); err != nil {
		return Config{}, err
	}

	seedCfg := seed.DefaultConfig()
	if envCfg.DocumentsDBPath != "" {
		seedCfg.DocumentsDBPath = envCfg.DocumentsDBPath
	}
	if envCfg.IdentityDBPath != "" {
		seedCfg.IdentityDBPath = envCfg.IdentityDBPath
	}
	if envCfg.AttachmentsDir != "" {
		seedCfg.AttachmentsDir = envCfg.AttachmentsDir
	}

	var list bool
	fs.StringVar(&seedCfg.DocumentsDBPath, "documents-db-path", seedCfg.DocumentsDBPath, "The documents SQLite database path")
	fs.StringVar(&seedCfg.IdentityDBPath, "identity-db-path", seedCfg.IdentityDBPath, "The identity SQLite database path")
	fs.StringVar(&seedCfg.AttachmentsDir, "attachments-dir", seedCfg.AttachmentsDir, "Attachment blob storage directory")
	fs.StringVar(&seedCfg.ScriptsDir, "scripts-dir", seedCfg.ScriptsDir, "Checklist scripts directory, relative to the repo root")
	fs.StringVar(&seedCfg.Checklist, "checklist", "", "run one checklist by name (default: all)")
	fs.BoolVar(&seedCfg.Verbose, "v", false, "verbose output")
	fs.BoolVar(&list, "list", false, "list available checklists")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	root, err := repoRoot()
	if err != nil {
		return Config{}, err
	}
	seedCfg.RepoRoot = root

	return Config{SeedConfig: seedCfg, List: list}, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	if cfg.List {
		return listChecklists(cfg.SeedConfig, out)
	}

	// Seeding writes through the documents and identity services, so the run
	// is traced like any other mutation path.
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(context.Context) error {
		return seed.Run(ctx, cfg.SeedConfig, out, errOut)
	})
}

func listChecklists(cfg seed.Config, out io.Writer) error {
	names, err := seed.ListChecklists(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Available checklists:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}

// repoRoot returns the repository root by walking up to go.mod. Checklist
// scripts ship in the source tree, so seeding runs from a checkout.
func repoRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to resolve runtime caller")
	}
	for dir := filepath.Dir(filename); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			return "", fmt.Errorf("go.mod not found from %s", filename)
		}
	}
}
