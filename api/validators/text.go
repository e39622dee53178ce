package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanText drops control characters, trims the result and cuts it to at
// most maxRunes runes. maxRunes <= 0 disables the cut.
func CleanText(input string, maxRunes int) string {
	cleaned := strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return -1
		}
		return r
	}, input))
	if maxRunes <= 0 || utf8.RuneCountInString(cleaned) <= maxRunes {
		return cleaned
	}
	runes := []rune(cleaned)
	return strings.TrimSpace(string(runes[:maxRunes]))
}
