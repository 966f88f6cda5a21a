// Package i18n renders localized user-facing messages for portal error codes.
//
// Message templates come from the "errors" namespace of the embedded locale
// catalogs, keyed by error code. Templates may reference error metadata with
// text/template syntax, e.g. {{.from}}.
package i18n

import (
	"bytes"
	"maps"
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/ashmont/clientdocs/internal/platform/i18n/catalog"
)

// Code is a machine-readable error code. It mirrors errors.Code as a plain
// string so this package stays import-cycle free.
type Code = string

// Catalog maps error codes to message templates for one locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// catalogs caches built and registered catalogs by locale (*Catalog values).
var catalogs sync.Map

// GetCatalog returns the catalog for the given locale, falling back to the
// base locale when the locale has no errors namespace. Repeated calls for
// the same resolved locale return the same catalog.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}

	if cached, ok := catalogs.Load(requested); ok {
		return cached.(*Catalog)
	}

	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, "errors")
	cached, _ := catalogs.LoadOrStore(resolved, NewCatalog(resolved, messages))
	return cached.(*Catalog)
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template for code with the given metadata.
// Missing codes fall back to the code itself; templates that fail to parse
// or execute fall back to the raw template text.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	raw, ok := c.messages[code]
	if !ok {
		return code
	}
	if rendered, ok := renderTemplate(raw, metadata); ok {
		return rendered
	}
	return raw
}

func renderTemplate(raw string, metadata map[string]string) (string, bool) {
	t, err := template.New("errmsg").Parse(raw)
	if err != nil {
		return "", false
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var out bytes.Buffer
	if err := t.Execute(&out, metadata); err != nil {
		return "", false
	}
	return out.String(), true
}

// NewCatalog creates a catalog with the given locale and message templates.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cloned := maps.Clone(messages)
	if cloned == nil {
		cloned = map[Code]string{}
	}
	return &Catalog{locale: locale, messages: cloned}
}

// RegisterCatalog installs a catalog for a locale, replacing any cached one.
// Tests use it to supply canned messages.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogs.Store(locale, cat)
}
