package ads

import (
	"strings"
	"unicode"

	nanoid "github.com/jaevor/go-nanoid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	fallbackSlug     = "anuncio"
	maxSlugLength    = 80
	slugSuffixLength = 6
	slugAlphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Slugify lowercases title, folds accents, turns every run of other
// characters into a single dash and trims dashes at both ends.
func Slugify(title string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// suffixGenerator returns short lowercase ids appended on slug collisions.
func suffixGenerator() (func() string, error) {
	return nanoid.CustomASCII(slugAlphabet, slugSuffixLength)
}
