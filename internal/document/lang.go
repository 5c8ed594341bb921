package document

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang maps a locale identifier to an html lang value: the "_ALL" suffix is
// dropped and underscores become hyphens, so en_US becomes en-US and en_ALL
// becomes en. Tags are not rewritten to their canonical form.
func Lang(locale string) string {
	value := strings.TrimSpace(locale)
	value = strings.TrimSuffix(value, "_ALL")
	return strings.ReplaceAll(value, "_", "-")
}

// ValidLang reports whether the lang value of locale is a well-formed BCP 47
// tag.
func ValidLang(locale string) bool {
	value := Lang(locale)
	if value == "" {
		return false
	}
	_, err := language.Parse(value)
	return err == nil
}
