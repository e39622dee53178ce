package profiles

import (
	"strings"
	"unicode"
)

// Initials returns up to two uppercase letters for the avatar fallback, taken
// from the first and last words of the first non-empty name.
func Initials(names ...string) string {
	for _, name := range names {
		words := strings.FieldsFunc(name, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(words) == 0 {
			continue
		}
		first := []rune(words[0])[0]
		if len(words) == 1 {
			return strings.ToUpper(string(first))
		}
		last := []rune(words[len(words)-1])[0]
		return strings.ToUpper(string([]rune{first, last}))
	}
	return ""
}
