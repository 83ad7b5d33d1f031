// Package filter decides which document fragments are sent for translation.
package filter

import (
	"strings"
	"unicode"
)

const (
	hangulFirst = '가'
	hangulLast  = '힣'
)

var numericNoise = strings.NewReplacer(".", "", ",", "", " ", "")

// IsTranslatable reports whether text should be translated. Figures such as
// "1,234.5" are skipped; otherwise the text must contain at least one Hangul
// syllable.
func IsTranslatable(text string) bool {
	if isNumeric(numericNoise.Replace(strings.TrimSpace(text))) {
		return false
	}
	for _, r := range text {
		if IsHangulSyllable(r) {
			return true
		}
	}
	return false
}

// IsHangulSyllable reports whether r is in U+AC00..U+D7A3
func IsHangulSyllable(r rune) bool {
	return r >= hangulFirst && r <= hangulLast
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
