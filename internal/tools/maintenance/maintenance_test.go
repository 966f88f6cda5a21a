package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/ashmont/clientdocs/internal/services/documents/attachments"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.IdentityDBPath != "data/identity.db" {
		t.Fatalf("expected default identity db path, got %q", cfg.IdentityDBPath)
	}
	if cfg.ReplayDBPath != "data/replay.db" {
		t.Fatalf("expected default replay db path, got %q", cfg.ReplayDBPath)
	}
	if cfg.AttachmentsDir != "data/attachments" {
		t.Fatalf("expected default attachments dir, got %q", cfg.AttachmentsDir)
	}
	if cfg.Timeout != 10*time.Minute {
		t.Fatalf("expected 10m timeout, got %v", cfg.Timeout)
	}
	if cfg.VerifyWorkers != 4 {
		t.Fatalf("expected 4 verify workers, got %d", cfg.VerifyWorkers)
	}
	if cfg.PurgeExpired || cfg.VerifyAttachments || cfg.JSONOutput {
		t.Fatalf("expected operations off by default, got %+v", cfg)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
	args := []string{
		"-purge-expired",
		"-verify-attachments",
		"-verify-workers", "2",
		"-json",
		"-identity-db-path", "alt/identity.db",
		"-replay-db-path", "alt/replay.db",
		"-attachments-dir", "alt/blobs",
		"-timeout", "30s",
	}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.PurgeExpired || !cfg.VerifyAttachments || !cfg.JSONOutput {
		t.Fatalf("expected operations on, got %+v", cfg)
	}
	if cfg.VerifyWorkers != 2 {
		t.Fatalf("expected 2 verify workers, got %d", cfg.VerifyWorkers)
	}
	if cfg.IdentityDBPath != "alt/identity.db" || cfg.ReplayDBPath != "alt/replay.db" || cfg.AttachmentsDir != "alt/blobs" {
		t.Fatalf("expected flag path overrides, got %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.Timeout)
	}
}

func TestParseConfigReadsEnv(t *testing.T) {
	t.Setenv("CLIENTDOCS_IDENTITY_DB_PATH", "env/identity.db")
	t.Setenv("CLIENTDOCS_MAINTENANCE_TIMEOUT", "1m")

	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.IdentityDBPath != "env/identity.db" {
		t.Fatalf("expected env identity db path, got %q", cfg.IdentityDBPath)
	}
	if cfg.Timeout != time.Minute {
		t.Fatalf("expected 1m timeout, got %v", cfg.Timeout)
	}

	fs = flag.NewFlagSet("maintenance", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-identity-db-path", "flag/identity.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.IdentityDBPath != "flag/identity.db" {
		t.Fatalf("expected flag to override env, got %q", cfg.IdentityDBPath)
	}
}

func TestRunRequiresOperation(t *testing.T) {
	err := Run(context.Background(), Config{}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "nothing to do") {
		t.Fatalf("expected nothing-to-do error, got %v", err)
	}
}

func TestRunRejectsNegativeWorkers(t *testing.T) {
	cfg := Config{VerifyAttachments: true, VerifyWorkers: -1}
	err := Run(context.Background(), cfg, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "verify-workers") {
		t.Fatalf("expected worker count error, got %v", err)
	}
}

func TestRunWithDepsPurgesAndClosesStores(t *testing.T) {
	identity := &fakeIdentityPurger{links: 3, sessions: 7}
	grants := &fakeGrantPurger{purged: 2}
	var out bytes.Buffer

	cfg := Config{PurgeExpired: true}
	if err := runWithDeps(context.Background(), cfg, identity, grants, nil, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Purged 3 expired magic links, 7 expired sessions, 2 consumed grant ids") {
		t.Fatalf("expected purge summary, got %q", out.String())
	}
	if !identity.closed {
		t.Fatal("expected identity store closed")
	}
	if !grants.closed {
		t.Fatal("expected grant replay store closed")
	}
	if identity.lastPurgeAt.IsZero() {
		t.Fatal("expected purge cutoff passed to store")
	}
}

func TestRunWithDepsVerifiesCleanAttachments(t *testing.T) {
	blobs := &fakeBlobVerifier{}
	var out bytes.Buffer

	cfg := Config{VerifyAttachments: true, VerifyWorkers: 3}
	if err := runWithDeps(context.Background(), cfg, nil, nil, blobs, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if blobs.gotWorkers != 3 {
		t.Fatalf("expected worker count forwarded, got %d", blobs.gotWorkers)
	}
	if !strings.Contains(out.String(), "found 0 issue(s)") {
		t.Fatalf("expected clean summary, got %q", out.String())
	}
}

func TestRunWithDepsReportsAttachmentIssues(t *testing.T) {
	blobs := &fakeBlobVerifier{issues: []attachments.Issue{
		{Name: "att-1.pdf", Detail: "sha256 mismatch"},
		{Name: "att-2.pdf", Detail: "invalid pdf structure"},
	}}
	var out, errOut bytes.Buffer

	cfg := Config{VerifyAttachments: true}
	err := runWithDeps(context.Background(), cfg, nil, nil, blobs, &out, &errOut)
	if err == nil || !strings.Contains(err.Error(), "2 issue(s)") {
		t.Fatalf("expected issue count error, got %v", err)
	}
	if !strings.Contains(out.String(), "found 2 issue(s)") {
		t.Fatalf("expected issue summary, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "att-1.pdf: sha256 mismatch") {
		t.Fatalf("expected issue detail, got %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "att-2.pdf: invalid pdf structure") {
		t.Fatalf("expected issue detail, got %q", errOut.String())
	}
}

func TestRunWithDepsWritesJSONReport(t *testing.T) {
	identity := &fakeIdentityPurger{links: 1, sessions: 4}
	grants := &fakeGrantPurger{purged: 5}
	blobs := &fakeBlobVerifier{issues: []attachments.Issue{{Name: "att-9.pdf", Detail: "missing blob"}}}
	var out bytes.Buffer

	cfg := Config{PurgeExpired: true, VerifyAttachments: true, JSONOutput: true}
	err := runWithDeps(context.Background(), cfg, identity, grants, blobs, &out, nil)
	if err == nil {
		t.Fatal("expected issue error")
	}

	var report Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.PurgedMagicLinks != 1 || report.PurgedSessions != 4 || report.PurgedGrantIDs != 5 {
		t.Fatalf("unexpected purge counts: %+v", report)
	}
	if len(report.AttachmentIssues) != 1 || report.AttachmentIssues[0].Name != "att-9.pdf" {
		t.Fatalf("unexpected issues: %+v", report.AttachmentIssues)
	}
}

func TestRunWithDepsPurgeErrorStillClosesStores(t *testing.T) {
	identity := &fakeIdentityPurger{sessionErr: errors.New("db locked")}
	grants := &fakeGrantPurger{}

	cfg := Config{PurgeExpired: true}
	err := runWithDeps(context.Background(), cfg, identity, grants, nil, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "purge expired sessions") {
		t.Fatalf("expected wrapped session purge error, got %v", err)
	}
	if !identity.closed || !grants.closed {
		t.Fatal("expected stores closed after failure")
	}
}

func TestRunWithDepsReportsCloseFailures(t *testing.T) {
	identity := &fakeIdentityPurger{closeErr: errors.New("fsync failed")}
	grants := &fakeGrantPurger{}
	var errOut bytes.Buffer

	cfg := Config{PurgeExpired: true}
	if err := runWithDeps(context.Background(), cfg, identity, grants, nil, nil, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(errOut.String(), "Error: close identity store: fsync failed") {
		t.Fatalf("expected close failure reported, got %q", errOut.String())
	}
}
