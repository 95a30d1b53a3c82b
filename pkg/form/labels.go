package form

import (
	"strings"
	"unicode"
)

// acronyms are written in capitals wherever they appear as a word of a key.
var acronyms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"cta":  "CTA",
	"seo":  "SEO",
	"html": "HTML",
}

// DefaultLabeler turns a component pattern attribute key into a sentence-case
// prompt label: "definedOptionsId" reads "Defined options ID" and
// "cta_link" reads "CTA link".
func DefaultLabeler(key string) string {
	words := keyWords(key)
	for i, word := range words {
		lower := strings.ToLower(word)
		switch {
		case acronyms[lower] != "":
			words[i] = acronyms[lower]
		case i == 0:
			words[i] = strings.ToUpper(lower[:1]) + lower[1:]
		default:
			words[i] = lower
		}
	}
	return strings.Join(words, " ")
}

// keyWords splits key on separators and on camelCase or digit boundaries.
func keyWords(key string) []string {
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(key)
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if i > 0 && len(current) > 0 && wordBoundary(runes[i-1], r) {
			flush()
		}
		current = append(current, r)
	}
	flush()
	return words
}

func wordBoundary(prev, r rune) bool {
	return (unicode.IsLower(prev) && unicode.IsUpper(r)) ||
		(unicode.IsLetter(prev) && unicode.IsDigit(r)) ||
		(unicode.IsDigit(prev) && unicode.IsLetter(r))
}
