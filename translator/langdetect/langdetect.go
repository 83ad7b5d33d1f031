// Package langdetect guesses the language of document text.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// Texts with fewer letters than this are not classified.
const minLetters = 6

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Detect returns the lowercase ISO 639-1 code of the language of text, or ""
// when the text is too short or no candidate language fits.
func Detect(text string) string {
	sample := strings.TrimSpace(text)
	if letters(sample) < minLetters {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}

// Dominant returns the language detected for the largest share of letters
// across texts, or "" if none could be classified.
func Dominant(texts []string) string {
	weights := make(map[string]int)
	best, bestWeight := "", 0
	for _, text := range texts {
		code := Detect(text)
		if code == "" {
			continue
		}
		weights[code] += letters(text)
		if weights[code] > bestWeight {
			best, bestWeight = code, weights[code]
		}
	}
	return best
}

func letters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// Candidates are Korean sources and the supported target languages.
func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.Korean,
				lingua.English,
				lingua.Chinese,
				lingua.Japanese,
				lingua.Vietnamese,
				lingua.Thai,
				lingua.Indonesian,
			).
			Build()
	})
	return detector
}
