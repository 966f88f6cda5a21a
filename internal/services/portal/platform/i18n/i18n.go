// Package i18n resolves display language for portal requests and localizes
// text and errors for rendering.
//
// Language precedence: lang query param, then the preference cookie, then
// Accept-Language, then the portal default. A query-param selection is
// persisted to the cookie so it sticks across navigation.
package i18n

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	errsi18n "github.com/ashmont/clientdocs/internal/platform/errors/i18n"
	platformi18n "github.com/ashmont/clientdocs/internal/platform/i18n"
	_ "github.com/ashmont/clientdocs/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "cd_lang"
)

// Localizer exposes translated formatting used by portal templates and
// handlers.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// LanguageOption represents a supported language choice in UI surfaces.
type LanguageOption struct {
	Tag    string
	Label  string
	Active bool
}

// Supported returns the portal's supported language tags.
func Supported() []language.Tag {
	return platformi18n.SupportedTags()
}

// Default returns the portal's default language tag.
func Default() language.Tag {
	return platformi18n.DefaultTag()
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ResolveTag determines the best language tag for the request. The bool
// reports whether the selection came from the query param and should be
// persisted as a cookie.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}

	if langValue := strings.TrimSpace(r.URL.Query().Get(LangParam)); langValue != "" {
		if tag, ok := platformi18n.ParseTag(langValue); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := platformi18n.ParseTag(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			return platformi18n.MatchTags(tags), false
		}
	}

	return Default(), false
}

// ResolvePreferredTag resolves request language with an authenticated
// preference first, falling back to ResolveTag.
func ResolvePreferredTag(r *http.Request, resolveLanguage func(*http.Request) string) language.Tag {
	if resolveLanguage != nil {
		if tag, ok := platformi18n.ParseTag(strings.TrimSpace(resolveLanguage(r))); ok {
			return tag
		}
	}
	tag, _ := ResolveTag(r)
	return tag
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// EnsureLanguageCookie syncs the language cookie to the resolved tag.
func EnsureLanguageCookie(w http.ResponseWriter, r *http.Request, tag language.Tag) {
	if w == nil {
		return
	}
	expected := strings.TrimSpace(tag.String())
	if expected == "" {
		return
	}
	if r != nil {
		if cookie, err := r.Cookie(LangCookieName); err == nil {
			if strings.TrimSpace(cookie.Value) == expected {
				return
			}
		}
	}
	SetLanguageCookie(w, tag)
}

// ResolveLocalizer resolves a localized printer and language string for a
// request, persisting the language cookie as a side effect.
func ResolveLocalizer(w http.ResponseWriter, r *http.Request, resolveLanguage func(*http.Request) string) (*message.Printer, string) {
	tag := ResolvePreferredTag(r, resolveLanguage)
	EnsureLanguageCookie(w, r, tag)
	return Printer(tag), tag.String()
}

// NormalizeTag coerces unknown tags to the default supported language.
func NormalizeTag(value string) language.Tag {
	if tag, ok := platformi18n.ParseTag(value); ok {
		return tag
	}
	return platformi18n.DefaultTag()
}

// BuildLanguageOptions returns supported language options with the active
// selection marked.
func BuildLanguageOptions(supported []language.Tag, activeLang string, labelForTag func(tag language.Tag) string) []LanguageOption {
	options := make([]LanguageOption, 0, len(supported))
	activeTag := NormalizeTag(activeLang)
	for _, tag := range supported {
		label := tag.String()
		if labelForTag != nil {
			if resolved := strings.TrimSpace(labelForTag(tag)); resolved != "" {
				label = resolved
			}
		}
		options = append(options, LanguageOption{
			Tag:    tag.String(),
			Label:  label,
			Active: tag == activeTag,
		})
	}
	return options
}

// LanguageURL returns the current URL with the language param updated.
func LanguageURL(path string, rawQuery string, tag string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set(LangParam, tag)
	return (&url.URL{Path: path, RawQuery: query.Encode()}).String()
}

// LanguageKeyLabel maps a language tag to its core catalog label key.
func LanguageKeyLabel(tag language.Tag) string {
	switch tag {
	case language.BrazilianPortuguese:
		return "core.language.pt_br"
	case language.AmericanEnglish:
		return "core.language.en_us"
	default:
		return tag.String()
	}
}

// LocalizeError returns the localized user-facing message for an error in
// the given language. Domain error codes resolve through the errors catalog;
// anything unrecognized localizes as the unknown-error message.
func LocalizeError(lang string, err error) string {
	if err == nil {
		return ""
	}
	code := apperrors.CodeOf(err)
	return errsi18n.GetCatalog(lang).Format(string(code), apperrors.MetadataOf(err))
}
