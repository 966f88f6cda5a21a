// Package catalog loads the portal's embedded message catalogs and registers
// them with golang.org/x/text/message.
//
// Catalog files live under locales/<locale>/<namespace>.yaml and use a strict
// quoted subset of YAML: every key and value is a Go-quoted string parsed with
// strconv.Unquote. Keys prefixed with "core." are reserved for the core
// namespace so shared chrome text cannot drift into feature catalogs.
package catalog

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the canonical source locale. Every key must exist here.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embeddedCatalogFS embed.FS

var defaultBundle = func() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(fmt.Errorf("load embedded catalogs: %w", err))
	}
	if err := bundle.Register(); err != nil {
		panic(fmt.Errorf("register embedded catalogs: %w", err))
	}
	return bundle
}()

// Bundle contains all loaded locale catalogs.
type Bundle struct {
	locales map[string]*localeCatalog
}

type localeCatalog struct {
	namespaces map[string]map[string]string
	messages   map[string]string
}

type catalogFile struct {
	locale    string
	namespace string
	messages  map[string]string
}

// Default returns the process-wide embedded catalog bundle.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalog files compiled into this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS loads catalog files from locales/*/*.yaml in the provided
// filesystem.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	slices.Sort(paths)

	bundle := &Bundle{locales: map[string]*localeCatalog{}}
	for _, filePath := range paths {
		if err := bundle.loadFile(catalogFS, filePath); err != nil {
			return nil, err
		}
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

func (b *Bundle) loadFile(catalogFS fs.FS, filePath string) error {
	data, err := fs.ReadFile(catalogFS, filePath)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", filePath, err)
	}
	file, err := parseCatalogFile(data)
	if err != nil {
		return fmt.Errorf("parse catalog %s: %w", filePath, err)
	}

	wantLocale := path.Base(path.Dir(filePath))
	wantNamespace := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	if file.locale != wantLocale {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", filePath, file.locale, wantLocale)
	}
	if file.namespace != wantNamespace {
		return fmt.Errorf("catalog %s: namespace %q must match filename namespace %q", filePath, file.namespace, wantNamespace)
	}

	locale := b.locales[file.locale]
	if locale == nil {
		locale = &localeCatalog{
			namespaces: map[string]map[string]string{},
			messages:   map[string]string{},
		}
		b.locales[file.locale] = locale
	}
	if _, exists := locale.namespaces[file.namespace]; exists {
		return fmt.Errorf("catalog %s: namespace %q already defined for locale %q", filePath, file.namespace, file.locale)
	}
	for key, value := range file.messages {
		if strings.HasPrefix(key, "core.") && file.namespace != "core" {
			return fmt.Errorf("catalog %s: key %q must be defined in core namespace", filePath, key)
		}
		if _, exists := locale.messages[key]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", filePath, key, file.locale)
		}
		locale.messages[key] = value
	}
	locale.namespaces[file.namespace] = maps.Clone(file.messages)
	return nil
}

func parseCatalogFile(data []byte) (catalogFile, error) {
	out := catalogFile{messages: map[string]string{}}
	inMessages := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if inMessages {
			key, value, err := parseMessageEntry(line)
			if err != nil {
				return catalogFile{}, fmt.Errorf("parse message entry %q: %w", line, err)
			}
			if _, exists := out.messages[key]; exists {
				return catalogFile{}, fmt.Errorf("duplicate key %q", key)
			}
			out.messages[key] = value
			continue
		}

		field, rest, found := strings.Cut(line, ":")
		if !found {
			return catalogFile{}, fmt.Errorf("unexpected line %q", line)
		}
		switch field {
		case "locale":
			value, err := decodeQuoted(rest)
			if err != nil {
				return catalogFile{}, fmt.Errorf("parse locale: %w", err)
			}
			out.locale = value
		case "namespace":
			value, err := decodeQuoted(rest)
			if err != nil {
				return catalogFile{}, fmt.Errorf("parse namespace: %w", err)
			}
			out.namespace = value
		case "messages":
			if strings.TrimSpace(rest) != "" {
				return catalogFile{}, fmt.Errorf("unexpected line %q", line)
			}
			inMessages = true
		default:
			return catalogFile{}, fmt.Errorf("unexpected line %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return catalogFile{}, fmt.Errorf("scan catalog: %w", err)
	}

	if out.locale == "" {
		return catalogFile{}, fmt.Errorf("missing locale")
	}
	if out.namespace == "" {
		return catalogFile{}, fmt.Errorf("missing namespace")
	}
	if len(out.messages) == 0 {
		return catalogFile{}, fmt.Errorf("missing messages")
	}
	return out, nil
}

func parseMessageEntry(line string) (string, string, error) {
	keyToken, err := strconv.QuotedPrefix(line)
	if err != nil {
		return "", "", fmt.Errorf("expected quoted key")
	}
	key, err := strconv.Unquote(keyToken)
	if err != nil {
		return "", "", fmt.Errorf("unquote key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("blank key")
	}

	rest, found := strings.CutPrefix(strings.TrimSpace(line[len(keyToken):]), ":")
	if !found {
		return "", "", fmt.Errorf("missing ':' separator")
	}
	value, err := decodeQuoted(rest)
	if err != nil {
		return "", "", fmt.Errorf("unquote value: %w", err)
	}
	return key, value, nil
}

func decodeQuoted(raw string) (string, error) {
	return strconv.Unquote(strings.TrimSpace(raw))
}

func (b *Bundle) catalogFor(locale string) *localeCatalog {
	if b == nil {
		return nil
	}
	return b.locales[strings.TrimSpace(locale)]
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	return b.catalogFor(locale) != nil
}

// Locales returns all loaded locale identifiers, sorted.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.locales))
}

// Namespaces returns the namespaces defined for one locale, sorted.
func (b *Bundle) Namespaces(locale string) []string {
	catalog := b.catalogFor(locale)
	if catalog == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(catalog.namespaces))
}

// LocaleMessages returns a copy of every message for one locale.
func (b *Bundle) LocaleMessages(locale string) map[string]string {
	catalog := b.catalogFor(locale)
	if catalog == nil {
		return map[string]string{}
	}
	return maps.Clone(catalog.messages)
}

// Message returns one message value with base-locale fallback.
func (b *Bundle) Message(locale string, key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	locale = strings.TrimSpace(locale)
	if catalog := b.catalogFor(locale); catalog != nil {
		if value, ok := catalog.messages[key]; ok {
			return value, true
		}
	}
	if locale != BaseLocale {
		if catalog := b.catalogFor(BaseLocale); catalog != nil {
			value, ok := catalog.messages[key]
			return value, ok
		}
	}
	return "", false
}

// NamespaceMessages returns a copy of one namespace's messages for a locale.
func (b *Bundle) NamespaceMessages(locale string, namespace string) map[string]string {
	catalog := b.catalogFor(locale)
	if catalog == nil {
		return map[string]string{}
	}
	messages, ok := catalog.namespaces[strings.TrimSpace(namespace)]
	if !ok {
		return map[string]string{}
	}
	return maps.Clone(messages)
}

// NamespaceMessagesWithFallback returns namespace messages and the locale
// that satisfied the lookup, falling back to the base locale.
func (b *Bundle) NamespaceMessagesWithFallback(locale string, namespace string) (string, map[string]string) {
	locale = strings.TrimSpace(locale)
	namespace = strings.TrimSpace(namespace)
	if messages := b.NamespaceMessages(locale, namespace); len(messages) > 0 {
		return locale, messages
	}
	return BaseLocale, b.NamespaceMessages(BaseLocale, namespace)
}

// Register registers every catalog message with x/text/message so that
// message.NewPrinter resolves translations. Messages registered under a
// regional tag are also registered under its bare base language.
func (b *Bundle) Register() error {
	if b == nil {
		return nil
	}
	for _, locale := range b.Locales() {
		tags, err := registrationTags(locale)
		if err != nil {
			return err
		}
		messages := b.LocaleMessages(locale)
		for _, key := range slices.Sorted(maps.Keys(messages)) {
			for _, tag := range tags {
				if err := message.SetString(tag, key, messages[key]); err != nil {
					return fmt.Errorf("register %s message %q: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

// registrationTags resolves a locale to the tags its messages register under:
// the locale's own tag plus the bare base language when they differ.
func registrationTags(locale string) ([]language.Tag, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale tag %q: %w", locale, err)
	}
	tags := []language.Tag{tag}
	if base, _ := tag.Base(); base.String() != "" && base.String() != "und" {
		if baseTag, err := language.Parse(base.String()); err == nil && baseTag != tag {
			tags = append(tags, baseTag)
		}
	}
	return tags, nil
}
