// Package main reports translation coverage for the portal catalogs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ashmont/clientdocs/internal/platform/config"
	i18ncatalog "github.com/ashmont/clientdocs/internal/platform/i18n/catalog"
)

type report struct {
	BaseLocale string         `json:"base_locale"`
	Locales    []localeStatus `json:"locales"`
}

// coverage holds the translation counters shared by locale and namespace rows.
type coverage struct {
	BaseKeys   int     `json:"base_keys"`
	Translated int     `json:"translated"`
	Missing    int     `json:"missing"`
	Extra      int     `json:"extra"`
	Completion float64 `json:"completion"`
}

type localeStatus struct {
	Locale string `json:"locale"`
	coverage
	Namespaces  []namespaceStatus `json:"namespaces"`
	MissingKeys []string          `json:"missing_keys"`
	ExtraKeys   []string          `json:"extra_keys"`
}

type namespaceStatus struct {
	Namespace string `json:"namespace"`
	coverage
}

func main() {
	var baseLocale string
	var markdownOut string
	var jsonOut string

	flag.StringVar(&baseLocale, "base-locale", i18ncatalog.BaseLocale, "base locale used as translation source of truth")
	flag.StringVar(&markdownOut, "out", "", "write a markdown report to this path")
	flag.StringVar(&jsonOut, "json-out", "", "write a json report to this path")
	flag.Parse()

	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		config.Exitf("Error: load catalogs: %v", err)
	}
	if !bundle.HasLocale(baseLocale) {
		config.Exitf("Error: base locale %q is missing from catalogs", baseLocale)
	}

	rep := buildReport(bundle, baseLocale)
	printSummary(os.Stdout, rep)

	if jsonOut != "" {
		if err := writeJSON(jsonOut, rep); err != nil {
			config.Exitf("Error: %v", err)
		}
	}
	if markdownOut != "" {
		if err := writeReportFile(markdownOut, renderMarkdown(rep)); err != nil {
			config.Exitf("Error: %v", err)
		}
	}
}

func buildReport(bundle *i18ncatalog.Bundle, baseLocale string) report {
	baseMessages := bundle.LocaleMessages(baseLocale)

	locales := bundle.Locales()
	statuses := make([]localeStatus, 0, len(locales))
	for _, locale := range locales {
		statuses = append(statuses, localeReport(bundle, baseLocale, locale, baseMessages))
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Locale < statuses[j].Locale
	})

	return report{BaseLocale: baseLocale, Locales: statuses}
}

func localeReport(bundle *i18ncatalog.Bundle, baseLocale, locale string, baseMessages map[string]string) localeStatus {
	localeMessages := bundle.LocaleMessages(locale)
	missing := keysOnlyIn(baseMessages, localeMessages)
	extra := keysOnlyIn(localeMessages, baseMessages)
	translated := len(baseMessages) - len(missing)

	namespaces := namespaceUnion(bundle, baseLocale, locale)
	namespaceStatuses := make([]namespaceStatus, 0, len(namespaces))
	for _, namespace := range namespaces {
		baseNS := bundle.NamespaceMessages(baseLocale, namespace)
		localeNS := bundle.NamespaceMessages(locale, namespace)
		nsMissing := keysOnlyIn(baseNS, localeNS)
		nsTranslated := len(baseNS) - len(nsMissing)
		namespaceStatuses = append(namespaceStatuses, namespaceStatus{
			Namespace: namespace,
			coverage: coverage{
				BaseKeys:   len(baseNS),
				Translated: nsTranslated,
				Missing:    len(nsMissing),
				Extra:      len(keysOnlyIn(localeNS, baseNS)),
				Completion: percent(nsTranslated, len(baseNS)),
			},
		})
	}

	return localeStatus{
		Locale: locale,
		coverage: coverage{
			BaseKeys:   len(baseMessages),
			Translated: translated,
			Missing:    len(missing),
			Extra:      len(extra),
			Completion: percent(translated, len(baseMessages)),
		},
		Namespaces:  namespaceStatuses,
		MissingKeys: missing,
		ExtraKeys:   extra,
	}
}

func printSummary(out io.Writer, rep report) {
	fmt.Fprintf(out, "Base locale: %s\n", rep.BaseLocale)
	for _, locale := range rep.Locales {
		fmt.Fprintf(out, "%s: %d/%d translated (%.1f%%), %d missing, %d extra\n",
			locale.Locale, locale.Translated, locale.BaseKeys, locale.Completion, locale.Missing, locale.Extra)
	}
}

const statusTableHeader = "| --- | ---: | ---: | ---: | ---: | ---: |\n"

func statusRow(label string, c coverage) string {
	return fmt.Sprintf("| `%s` | %d | %d | %d | %d | %.1f%% |\n",
		label, c.BaseKeys, c.Translated, c.Missing, c.Extra, c.Completion)
}

func renderMarkdown(rep report) string {
	var b strings.Builder
	b.WriteString("# Translation status\n\n")
	b.WriteString("Generated by `go run ./internal/tools/i18nstatus`.\n\n")
	fmt.Fprintf(&b, "Base locale: `%s`.\n\n", rep.BaseLocale)

	b.WriteString("| Locale | Base Keys | Translated | Missing | Extra | Completion |\n")
	b.WriteString(statusTableHeader)
	for _, locale := range rep.Locales {
		b.WriteString(statusRow(locale.Locale, locale.coverage))
	}

	for _, locale := range rep.Locales {
		fmt.Fprintf(&b, "\n## Locale: `%s`\n\n", locale.Locale)
		b.WriteString("| Namespace | Base Keys | Translated | Missing | Extra | Completion |\n")
		b.WriteString(statusTableHeader)
		for _, ns := range locale.Namespaces {
			b.WriteString(statusRow(ns.Namespace, ns.coverage))
		}
		appendKeyList(&b, "Missing Keys", locale.MissingKeys)
		appendKeyList(&b, "Extra Keys", locale.ExtraKeys)
	}
	return b.String()
}

func appendKeyList(b *strings.Builder, heading string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", heading)
	for _, key := range keys {
		fmt.Fprintf(b, "- `%s`\n", key)
	}
}

func writeJSON(path string, rep report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeReportFile(path, string(data)+"\n")
}

func writeReportFile(path string, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// keysOnlyIn returns the keys of a that b lacks, sorted.
func keysOnlyIn(a map[string]string, b map[string]string) []string {
	out := make([]string, 0)
	for key := range a {
		if _, ok := b[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func namespaceUnion(bundle *i18ncatalog.Bundle, a, b string) []string {
	seen := map[string]struct{}{}
	for _, namespace := range bundle.Namespaces(a) {
		seen[namespace] = struct{}{}
	}
	for _, namespace := range bundle.Namespaces(b) {
		seen[namespace] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for namespace := range seen {
		out = append(out, namespace)
	}
	sort.Strings(out)
	return out
}

func percent(numerator int, denominator int) float64 {
	if denominator == 0 {
		return 100
	}
	return math.Round(float64(numerator)/float64(denominator)*1000) / 10
}
