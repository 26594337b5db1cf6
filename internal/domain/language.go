// Package domain contains core domain types for the house assistant.
package domain

import "strings"

// Language is a language code understood by the intent matcher.
type Language string

const (
	English Language = "en"
	French  Language = "fr"
	Arabic  Language = "ar"
)

// DefaultLanguage is used whenever detection cannot settle on a supported language.
const DefaultLanguage = English

// Languages lists every supported language in tag-suffix lookup order.
var Languages = []Language{English, French, Arabic}

// Suffix returns the tag suffix carried by intents of this language, e.g. "_en".
func (l Language) Suffix() string {
	return "_" + string(l)
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	switch l {
	case English, French, Arabic:
		return true
	}
	return false
}

// LanguageOfTag returns the language whose suffix terminates tag.
func LanguageOfTag(tag string) (Language, bool) {
	for _, l := range Languages {
		if strings.HasSuffix(tag, l.Suffix()) {
			return l, true
		}
	}
	return "", false
}
