package templates

import (
	"golang.org/x/text/language"

	webi18n "github.com/ashmont/clientdocs/internal/services/portal/platform/i18n"
)

// LanguageOptions lists the portal's language choices labeled in the
// viewer's active locale.
func LanguageOptions(activeLang string, loc Localizer) []webi18n.LanguageOption {
	return webi18n.BuildLanguageOptions(webi18n.Supported(), activeLang, func(tag language.Tag) string {
		return T(loc, webi18n.LanguageKeyLabel(tag))
	})
}

// LanguageSwitchURL returns the current location with the language
// parameter replaced, so switching locales keeps the viewer in place.
func LanguageSwitchURL(path, rawQuery, tag string) string {
	return webi18n.LanguageURL(path, rawQuery, tag)
}
