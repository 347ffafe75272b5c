package search

import (
	"strings"
	"unicode"
)

// normalizeText lower-cases s, keeps letters and digits, folds every run of
// whitespace into one space and drops anything else. The result holds at most
// maxBioTerms words.
func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)

	b := strings.Builder{}
	b.Grow(len(s))
	lastWasSpace := false

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			lastWasSpace = false
			continue
		}
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			if b.Len() == 0 || lastWasSpace {
				continue
			}
			b.WriteByte(' ')
			lastWasSpace = true
		}
	}

	words := strings.Fields(b.String())
	if len(words) > maxBioTerms {
		words = words[:maxBioTerms]
	}
	return strings.Join(words, " ")
}

// normalizeKeyword is the exact-match form stored for keyword fields.
func normalizeKeyword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
