package portal

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashmont/clientdocs/internal/services/documents/attachments"
	"github.com/ashmont/clientdocs/internal/services/documents/events"
	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	docsqlite "github.com/ashmont/clientdocs/internal/services/documents/storage/sqlite"
	"github.com/ashmont/clientdocs/internal/services/identity/magiclink"
	idservice "github.com/ashmont/clientdocs/internal/services/identity/service"
	idsqlite "github.com/ashmont/clientdocs/internal/services/identity/storage/sqlite"
	"github.com/ashmont/clientdocs/internal/services/portal/access"
)

// RuntimeConfig controls portal startup and storage locations.
type RuntimeConfig struct {
	HTTPAddr            string
	DocumentsDBPath     string
	IdentityDBPath      string
	AttachmentsDir      string
	ReplayDBPath        string
	TrustForwardedProto bool
}

const (
	defaultHTTPAddr        = "localhost:8095"
	defaultDocumentsDBPath = "data/documents.db"
	defaultIdentityDBPath  = "data/identity.db"
	defaultAttachmentsDir  = "data/attachments"
	defaultReplayDBPath    = "data/replay.db"
)

// Run opens portal storage, wires the services, and serves HTTP until context
// cancellation.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if strings.TrimSpace(cfg.DocumentsDBPath) == "" {
		cfg.DocumentsDBPath = defaultDocumentsDBPath
	}
	if strings.TrimSpace(cfg.IdentityDBPath) == "" {
		cfg.IdentityDBPath = defaultIdentityDBPath
	}
	if strings.TrimSpace(cfg.AttachmentsDir) == "" {
		cfg.AttachmentsDir = defaultAttachmentsDir
	}
	if strings.TrimSpace(cfg.ReplayDBPath) == "" {
		cfg.ReplayDBPath = defaultReplayDBPath
	}

	for _, path := range []string{cfg.DocumentsDBPath, cfg.IdentityDBPath, cfg.ReplayDBPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create portal storage dir: %w", err)
			}
		}
	}

	documentsStore, err := docsqlite.Open(ctx, cfg.DocumentsDBPath)
	if err != nil {
		return fmt.Errorf("open documents sqlite store: %w", err)
	}
	defer func() {
		if closeErr := documentsStore.Close(); closeErr != nil {
			log.Printf("close documents sqlite store: %v", closeErr)
		}
	}()

	identityStore, err := idsqlite.Open(ctx, cfg.IdentityDBPath)
	if err != nil {
		return fmt.Errorf("open identity sqlite store: %w", err)
	}
	defer func() {
		if closeErr := identityStore.Close(); closeErr != nil {
			log.Printf("close identity sqlite store: %v", closeErr)
		}
	}()

	blobs, err := attachments.NewStore(cfg.AttachmentsDir)
	if err != nil {
		return fmt.Errorf("open attachment blob store: %w", err)
	}

	replay, err := access.OpenReplayStore(cfg.ReplayDBPath)
	if err != nil {
		return fmt.Errorf("open grant replay store: %w", err)
	}
	defer func() {
		if closeErr := replay.Close(); closeErr != nil {
			log.Printf("close grant replay store: %v", closeErr)
		}
	}()

	// Grant keys are optional at boot. Without them access-link minting and
	// redemption fail per-operation while staff sign-in keeps working.
	signer, err := access.LoadSignerConfigFromEnv()
	if err != nil {
		log.Printf("access grant signing disabled: %v", err)
	}
	verifier, err := access.LoadVerifierConfigFromEnv(nil)
	if err != nil {
		log.Printf("access grant redemption disabled: %v", err)
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

	server, err := NewServer(ctx, Config{
		HTTPAddr:            cfg.HTTPAddr,
		Documents:           documents,
		Identity:            identity,
		AccessSigner:        signer,
		AccessVerifier:      verifier,
		Replay:              replay,
		TrustForwardedProto: cfg.TrustForwardedProto,
	})
	if err != nil {
		return fmt.Errorf("init portal server: %w", err)
	}
	defer server.Close()

	log.Printf("portal listening on %s", server.Addr())
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve portal: %w", err)
	}
	return nil
}
