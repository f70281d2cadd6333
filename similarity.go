package main

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// normalizeAnswer strips everything that is neither an ASCII word character
// nor a Hebrew letter, then lowercases. Both submissions and the true
// answer go through this before comparison.
func normalizeAnswer(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case unicode.Is(unicode.Hebrew, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tooSimilar reports whether a submitted answer gives away the truth.
// Exact normalized equality always matches; containment in either
// direction matches once the truth is long enough for containment to mean
// anything. No edit distance, so creative misspellings get through.
func tooSimilar(submission, truth string) bool {
	sub := normalizeAnswer(submission)
	tru := normalizeAnswer(truth)

	if sub == "" || tru == "" {
		return false
	}
	if sub == tru {
		return true
	}
	if utf8.RuneCountInString(tru) > 2 && (strings.Contains(sub, tru) || strings.Contains(tru, sub)) {
		return true
	}

	return false
}
