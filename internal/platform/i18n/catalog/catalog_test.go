package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected base locale %s", BaseLocale)
	}
	if !bundle.HasLocale("pt-BR") {
		t.Fatalf("expected locale pt-BR")
	}

	if got := len(bundle.LocaleMessages("en-US")); got == 0 {
		t.Fatalf("expected en-US messages")
	}
	if got := len(bundle.NamespaceMessages("en-US", "core")); got == 0 {
		t.Fatalf("expected en-US core namespace messages")
	}
}

func TestLoadEmbeddedLocalesCoverBaseKeys(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	base := bundle.LocaleMessages(BaseLocale)
	for _, locale := range bundle.Locales() {
		if locale == BaseLocale {
			continue
		}
		translated := bundle.LocaleMessages(locale)
		for key := range base {
			if _, ok := translated[key]; !ok {
				t.Errorf("locale %s is missing key %q", locale, key)
			}
		}
		for key := range translated {
			if _, ok := base[key]; !ok {
				t.Errorf("locale %s defines key %q absent from %s", locale, key, BaseLocale)
			}
		}
	}
}

func TestNamespacesListsLocaleNamespaces(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	namespaces := bundle.Namespaces(BaseLocale)
	if len(namespaces) == 0 {
		t.Fatal("expected namespaces for base locale")
	}
	for i := 1; i < len(namespaces); i++ {
		if namespaces[i-1] >= namespaces[i] {
			t.Fatalf("namespaces not sorted: %v", namespaces)
		}
	}
	found := false
	for _, namespace := range namespaces {
		if namespace == "portal" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected portal namespace, got %v", namespaces)
	}
	if got := bundle.Namespaces("xx-XX"); got != nil {
		t.Fatalf("expected nil namespaces for unknown locale, got %v", got)
	}
}

func TestLoadFromFSRejectsCoreKeyOutsideCoreNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/portal.yaml"), `locale: "en-US"
namespace: "portal"
messages:
  "core.bad": "nope"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  "core.good": "ok"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsDuplicateKeysAcrossNamespaces(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  "a.key": "a"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/portal.yaml"), `locale: "en-US"
namespace: "portal"
messages:
  "a.key": "b"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRejectsUnquotedEntries(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  core.bare: value
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected parse error for unquoted entry")
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	resolved, messages := bundle.NamespaceMessagesWithFallback("fr-FR", "errors")
	if resolved != "en-US" {
		t.Fatalf("resolved locale = %q, want en-US", resolved)
	}
	if len(messages) == 0 {
		t.Fatal("expected fallback errors namespace messages")
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  "core.app.name": "ClientDocs"
  "core.only.base": "base only"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/core.yaml"), `locale: "pt-BR"
namespace: "core"
messages:
  "core.app.name": "ClientDocs"
`)

	bundle, err := LoadFromFS(os.DirFS(tempDir))
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	got, ok := bundle.Message("pt-BR", "core.only.base")
	if !ok || got != "base only" {
		t.Fatalf("message = %q, %v; want base fallback", got, ok)
	}
	if _, ok := bundle.Message("pt-BR", "core.missing"); ok {
		t.Fatal("expected miss for undefined key")
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
