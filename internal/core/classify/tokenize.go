package classify

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases the input and strips diacritics by NFD
// decomposition plus combining-mark removal.
func Normalize(value string) string {
	lowered := strings.ToLower(value)
	stripped, _, err := transform.String(diacriticStripper, lowered)
	if err != nil {
		return lowered
	}
	return stripped
}

// Tokenize returns the normalized form of a file name and its token set:
// maximal runs of [a-z0-9] in the normalized text.
func Tokenize(name string) (string, map[string]struct{}) {
	normalized := Normalize(name)
	tokens := make(map[string]struct{})
	for _, tok := range tokenPattern.FindAllString(normalized, -1) {
		tokens[tok] = struct{}{}
	}
	return normalized, tokens
}

func hasToken(tokens map[string]struct{}, tok string) bool {
	_, ok := tokens[tok]
	return ok
}
