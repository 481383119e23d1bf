package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "i": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "my": {}, "of": {}, "on": {}, "or": {}, "our": {}, "so": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "we": {}, "with": {},
	"de": {}, "el": {}, "la": {}, "los": {}, "las": {}, "en": {}, "y": {}, "que": {},
	"un": {}, "una": {}, "por": {}, "con": {}, "del": {}, "se": {},
}

// Tokenize lowercases text, strips accents and splits it into words, dropping
// stopwords and single characters.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)

	// transformers keep state, so one is built per call
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, lower)
	if err != nil {
		folded = lower
	}

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
