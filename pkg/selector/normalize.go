package selector

import (
	"strings"
	"unicode"
)

// NormalizeText lowercases the text, strips punctuation to whitespace,
// and collapses runs of whitespace to single spaces. Token matching is
// defined over this normalized form so "S/N:" and "s n" compare equal.
func NormalizeText(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// ContainsToken reports whether a normalized token appears in the
// normalized text as a case-insensitive substring.
func ContainsToken(normalizedText, token string) bool {
	return strings.Contains(normalizedText, NormalizeText(token))
}
