package translate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/DoyleJ11/board-sync/internal/board"
)

const (
	DefaultLanguage   = "Polish"
	maxLanguageLength = 24
)

// ResolveLanguage clamps the requested language and expands BCP 47 tags
// such as "pl" or "nb-NO" to English names the model reads unambiguously.
// Anything that is not a known tag is passed through as written.
func ResolveLanguage(raw string) string {
	lang := board.CollapseText(raw, maxLanguageLength)
	if lang == "" {
		return DefaultLanguage
	}
	if len(lang) > 3 && !strings.ContainsAny(lang, "-_") {
		return lang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return lang
}
