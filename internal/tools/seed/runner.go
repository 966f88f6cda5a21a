// Package seed populates portal storage with demo data described by Lua
// checklist scripts.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ashmont/clientdocs/internal/services/documents/attachments"
	"github.com/ashmont/clientdocs/internal/services/documents/domain"
	"github.com/ashmont/clientdocs/internal/services/documents/events"
	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	docsqlite "github.com/ashmont/clientdocs/internal/services/documents/storage/sqlite"
	"github.com/ashmont/clientdocs/internal/services/identity/magiclink"
	idservice "github.com/ashmont/clientdocs/internal/services/identity/service"
	idsqlite "github.com/ashmont/clientdocs/internal/services/identity/storage/sqlite"
)

// seedActor is the audit actor recorded when a checklist seeds no staff user.
const seedActor = "seed"

// Config holds seed runner configuration.
type Config struct {
	RepoRoot        string
	DocumentsDBPath string
	IdentityDBPath  string
	AttachmentsDir  string
	ScriptsDir      string
	Checklist       string
	Verbose         bool
}

// DefaultConfig returns configuration with common defaults. ScriptsDir is
// resolved relative to RepoRoot; the storage paths are relative to the
// working directory, matching the portal service.
func DefaultConfig() Config {
	return Config{
		DocumentsDBPath: filepath.Join("data", "documents.db"),
		IdentityDBPath:  filepath.Join("data", "identity.db"),
		AttachmentsDir:  filepath.Join("data", "attachments"),
		ScriptsDir:      filepath.Join("internal", "tools", "seed", "checklists"),
	}
}

func (c Config) scriptsPattern() string {
	pattern := "*.lua"
	if c.Checklist != "" {
		pattern = c.Checklist + ".lua"
	}
	dir := c.ScriptsDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.RepoRoot, dir)
	}
	return filepath.Join(dir, pattern)
}

// Run loads checklist scripts and seeds portal storage with their plans.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	checklists, err := LoadChecklists(cfg.scriptsPattern())
	if err != nil {
		return err
	}
	if len(checklists) == 0 {
		return fmt.Errorf("no checklists match %s", cfg.scriptsPattern())
	}

	for _, path := range []string{cfg.DocumentsDBPath, cfg.IdentityDBPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create seed storage dir: %w", err)
			}
		}
	}

	documentsStore, err := docsqlite.Open(ctx, cfg.DocumentsDBPath)
	if err != nil {
		return fmt.Errorf("open documents sqlite store: %w", err)
	}
	defer func() {
		if closeErr := documentsStore.Close(); closeErr != nil {
			fmt.Fprintf(errOut, "Error: close documents sqlite store: %v\n", closeErr)
		}
	}()

	identityStore, err := idsqlite.Open(ctx, cfg.IdentityDBPath)
	if err != nil {
		return fmt.Errorf("open identity sqlite store: %w", err)
	}
	defer func() {
		if closeErr := identityStore.Close(); closeErr != nil {
			fmt.Fprintf(errOut, "Error: close identity sqlite store: %v\n", closeErr)
		}
	}()

	blobs, err := attachments.NewStore(cfg.AttachmentsDir)
	if err != nil {
		return fmt.Errorf("open attachment blob store: %w", err)
	}

	documents := docservice.New(docservice.Config{
		Clients:     documentsStore,
		Requests:    documentsStore,
		Attachments: documentsStore,
		AuditLog:    documentsStore,
		Statistics:  documentsStore,
		Blobs:       blobs,
		Events:      events.NewBroadcaster(),
	})
	identity := idservice.New(idservice.Config{
		Staff:      identityStore,
		MagicLinks: identityStore,
		Sessions:   identityStore,
		Links:      magiclink.LoadConfigFromEnv(),
	})

	deps := seedDeps{staff: identity, clients: documents, requests: documents}
	for _, checklist := range checklists {
		if cfg.Verbose {
			fmt.Fprintf(errOut, "Running checklist: %s\n", checklist.Name)
		}
		stats, err := applyChecklist(ctx, deps, checklist, cfg.Verbose, errOut)
		if err != nil {
			return fmt.Errorf("checklist %q: %w", checklist.Name, err)
		}
		fmt.Fprintf(out, "Seeded %d staff, %d client(s), %d request(s) from %s\n",
			stats.Staff, stats.Clients, stats.Requests, checklist.Name)
	}
	fmt.Fprintln(out, "Seeding complete")
	return nil
}

// ListChecklists returns available checklist names.
func ListChecklists(cfg Config) ([]string, error) {
	checklists, err := LoadChecklists(cfg.scriptsPattern())
	if err != nil {
		return nil, err
	}
	names := make([]string, len(checklists))
	for i, checklist := range checklists {
		names[i] = checklist.Name
	}
	return names, nil
}

// applyStats counts the entities one checklist created.
type applyStats struct {
	Staff    int
	Clients  int
	Requests int
}

// applyChecklist executes steps in order. Requests are created by the most
// recently seeded staff account, or by the placeholder seed actor when the
// checklist declares none.
func applyChecklist(ctx context.Context, deps seedDeps, checklist *Checklist, verbose bool, errOut io.Writer) (applyStats, error) {
	if errOut == nil {
		errOut = io.Discard
	}

	var stats applyStats
	actorID := seedActor
	clientIDs := make(map[string]string)

	for _, step := range checklist.Steps {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		switch step.Kind {
		case stepKindStaff:
			name := stringArg(step.Args, "name")
			email := stringArg(step.Args, "email")
			staff, err := deps.staff.RegisterStaff(ctx, name, email)
			if err != nil {
				return stats, fmt.Errorf("register staff %q: %w", email, err)
			}
			actorID = staff.ID
			stats.Staff++
			if verbose {
				fmt.Fprintf(errOut, "  → staff %s (%s)\n", name, staff.ID)
			}
		case stepKindClient:
			input := domain.CreateClientInput{
				Name:   stringArg(step.Args, "name"),
				Email:  stringArg(step.Args, "email"),
				Locale: stringArg(step.Args, "locale"),
			}
			client, err := deps.clients.CreateClient(ctx, input, actorID)
			if err != nil {
				return stats, fmt.Errorf("create client %q: %w", input.Email, err)
			}
			clientIDs[normalizeEmailKey(input.Email)] = client.ID
			stats.Clients++
			if verbose {
				fmt.Fprintf(errOut, "  → client %s (%s)\n", input.Name, client.ID)
			}
		case stepKindRequest:
			email := stringArg(step.Args, "client")
			title := stringArg(step.Args, "title")
			clientID, ok := clientIDs[normalizeEmailKey(email)]
			if !ok {
				return stats, fmt.Errorf("request %q references unknown client %q", title, email)
			}
			request, err := deps.requests.CreateDocumentRequest(ctx, docservice.CreateDocumentRequestInput{
				ClientID:  clientID,
				Title:     title,
				CreatedBy: actorID,
			})
			if err != nil {
				return stats, fmt.Errorf("create request %q: %w", title, err)
			}
			if status := stringArg(step.Args, "status"); status != "" && status != string(domain.RequestStatusOpen) {
				if _, err := deps.requests.SetDocumentRequestStatus(ctx, request.ID, status, actorID); err != nil {
					return stats, fmt.Errorf("set request %q status: %w", title, err)
				}
			}
			stats.Requests++
			if verbose {
				fmt.Fprintf(errOut, "  → request %s (%s)\n", title, request.ID)
			}
		default:
			return stats, fmt.Errorf("unknown step kind %q", step.Kind)
		}
	}
	return stats, nil
}
