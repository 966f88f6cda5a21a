// Package i18n defines the portal's supported display languages and tag
// matching rules. Message catalogs live in the nested catalog package.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

var supportedTags = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supportedTags)

// SupportedTags returns the display languages the portal ships catalogs for.
func SupportedTags() []language.Tag {
	out := make([]language.Tag, len(supportedTags))
	copy(out, supportedTags)
	return out
}

// DefaultTag returns the fallback display language.
func DefaultTag() language.Tag {
	return supportedTags[0]
}

// ParseTag parses a language value and reports whether it resolves to a
// supported tag. Base-language values such as "pt" resolve to their regional
// catalog tag.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultTag(), false
	}
	parsed, err := language.Parse(value)
	if err != nil {
		return DefaultTag(), false
	}
	_, index, confidence := matcher.Match(parsed)
	if confidence < language.High {
		return DefaultTag(), false
	}
	return supportedTags[index], true
}

// MatchTags picks the best supported tag for an ordered preference list,
// falling back to the default language when nothing matches.
func MatchTags(tags []language.Tag) language.Tag {
	if len(tags) == 0 {
		return DefaultTag()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultTag()
	}
	return supportedTags[index]
}
