//go:build integration
// +build integration

package integration

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const (
	documentsStoragePkg = "github.com/ashmont/clientdocs/internal/services/documents/storage"
	identityStoragePkg  = "github.com/ashmont/clientdocs/internal/services/identity/storage"
)

// storageWriteMethods lists the store mutations that only the services may
// invoke. Reads and retention deletes stay callable from tools.
var storageWriteMethods = map[string]bool{
	"PutClient":         true,
	"PutRequest":        true,
	"PutAttachment":     true,
	"AppendAuditEvent":  true,
	"PutStaffUser":      true,
	"PutMagicLink":      true,
	"MarkMagicLinkUsed": true,
	"PutSession":        true,
	"RevokeSession":     true,
}

// TestStorageWritesGoThroughServices fails when code outside the documents and
// identity services calls a write method on a storage interface implementation.
// A direct store write skips validation and leaves no audit event, so every
// mutation has to enter through a service operation.
func TestStorageWritesGoThroughServices(t *testing.T) {
	repoRoot := integrationRepoRoot(t)

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedDeps,
		Dir:   repoRoot,
		Tests: false,
	}
	pkgs, err := packages.Load(cfg, storageWriteGuardrailPatterns()...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatal("packages loaded with errors")
	}

	storeInterfaces := guardedStoreInterfaces(t, pkgs)

	var violations []string
	for _, pkg := range pkgs {
		if isStorageWriteGuardrailIgnoredPackage(pkg.PkgPath) {
			continue
		}
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				sel, ok := call.Fun.(*ast.SelectorExpr)
				if !ok || !storageWriteMethods[sel.Sel.Name] {
					return true
				}
				recv := pkg.TypesInfo.TypeOf(sel.X)
				if recv == nil || !implementsAnyStore(recv, storeInterfaces) {
					return true
				}
				pos := pkg.Fset.Position(call.Pos())
				violations = append(violations, fmt.Sprintf(
					"%s:%d: %s calls %s.%s directly; route the write through the documents or identity service",
					relToRepoRoot(repoRoot, pos.Filename), pos.Line,
					enclosingFunctionName(file, call.Pos()),
					receiverTypeName(recv), sel.Sel.Name,
				))
				return true
			})
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("found %d direct storage write(s):\n%s", len(violations), strings.Join(violations, "\n"))
	}
}

// TestStorageWriteGuardrailScopes keeps the guardrail pointed at every tree
// that talks to storage. Narrowing the scan silently disables the check.
func TestStorageWriteGuardrailScopes(t *testing.T) {
	patterns := storageWriteGuardrailPatterns()
	want := []string{
		"./internal/services/...",
		"./internal/tools/...",
		"./internal/cmd/...",
	}
	for _, pattern := range want {
		found := false
		for _, p := range patterns {
			if p == pattern {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("guardrail no longer scans %s", pattern)
		}
	}
}

func TestStorageWriteGuardrailIgnoresAuthorizedPackages(t *testing.T) {
	cases := []struct {
		pkgPath string
		want    bool
	}{
		{"github.com/ashmont/clientdocs/internal/services/documents/service", true},
		{"github.com/ashmont/clientdocs/internal/services/documents/audit", true},
		{"github.com/ashmont/clientdocs/internal/services/documents/storage/sqlite", true},
		{"github.com/ashmont/clientdocs/internal/services/identity/service", true},
		{"github.com/ashmont/clientdocs/internal/services/identity/storage/sqlite", true},
		{"github.com/ashmont/clientdocs/internal/services/portal/modules/requests", false},
		{"github.com/ashmont/clientdocs/internal/tools/maintenance", false},
		{"github.com/ashmont/clientdocs/internal/cmd/seed", false},
	}
	for _, tc := range cases {
		if got := isStorageWriteGuardrailIgnoredPackage(tc.pkgPath); got != tc.want {
			t.Fatalf("isStorageWriteGuardrailIgnoredPackage(%q) = %v, want %v", tc.pkgPath, got, tc.want)
		}
	}
}

func storageWriteGuardrailPatterns() []string {
	return []string{
		"./internal/services/...",
		"./internal/tools/...",
		"./internal/cmd/...",
	}
}

// The services and their storage packages are the authorized writers. The
// audit package appends audit events on behalf of the documents service.
func isStorageWriteGuardrailIgnoredPackage(pkgPath string) bool {
	authorized := []string{
		"/internal/services/documents/service",
		"/internal/services/documents/audit",
		"/internal/services/documents/storage",
		"/internal/services/identity/service",
		"/internal/services/identity/storage",
	}
	for _, fragment := range authorized {
		if strings.Contains(pkgPath, fragment) {
			return true
		}
	}
	return false
}

func guardedStoreInterfaces(t *testing.T, pkgs []*packages.Package) []*types.Interface {
	t.Helper()
	specs := []struct {
		pkgPath string
		name    string
	}{
		{documentsStoragePkg, "ClientStore"},
		{documentsStoragePkg, "RequestStore"},
		{documentsStoragePkg, "AttachmentStore"},
		{documentsStoragePkg, "AuditStore"},
		{identityStoragePkg, "StaffStore"},
		{identityStoragePkg, "MagicLinkStore"},
		{identityStoragePkg, "SessionStore"},
	}
	interfaces := make([]*types.Interface, 0, len(specs))
	for _, spec := range specs {
		interfaces = append(interfaces, lookupInterface(t, pkgs, spec.pkgPath, spec.name))
	}
	return interfaces
}

func lookupInterface(t *testing.T, pkgs []*packages.Package, pkgPath, name string) *types.Interface {
	t.Helper()
	for _, pkg := range pkgs {
		if pkg.PkgPath != pkgPath {
			continue
		}
		obj := pkg.Types.Scope().Lookup(name)
		if obj == nil {
			t.Fatalf("interface %s not found in %s", name, pkgPath)
		}
		iface, ok := obj.Type().Underlying().(*types.Interface)
		if !ok {
			t.Fatalf("%s.%s is not an interface", pkgPath, name)
		}
		return iface
	}
	t.Fatalf("package %s not loaded", pkgPath)
	return nil
}

func implementsAnyStore(typ types.Type, interfaces []*types.Interface) bool {
	for _, iface := range interfaces {
		if types.Implements(typ, iface) || types.Implements(types.NewPointer(typ), iface) {
			return true
		}
	}
	return false
}

func enclosingFunctionName(file *ast.File, pos token.Pos) string {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || pos < fn.Pos() || pos > fn.End() {
			continue
		}
		return fn.Name.Name
	}
	return "package scope"
}

func receiverTypeName(typ types.Type) string {
	if ptr, ok := typ.(*types.Pointer); ok {
		typ = ptr.Elem()
	}
	if named, ok := typ.(*types.Named); ok {
		return named.Obj().Name()
	}
	return typ.String()
}

func relToRepoRoot(repoRoot, path string) string {
	rel, err := filepath.Rel(repoRoot, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func integrationRepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found above working directory")
		}
		dir = parent
	}
}
