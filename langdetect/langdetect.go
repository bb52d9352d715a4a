// Package langdetect identifies the language of short transcript text.
// It backs the language-match gate for transcription providers that do not
// report a detected language themselves.
package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var (
	once     sync.Once
	detector lingua.LanguageDetector
)

// Detect returns the ISO 639-1 code and English name of the language of
// text, or empty strings when detection is inconclusive. The detector is
// built lazily on first use; model loading is not free.
func Detect(text string) (code, name string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	once.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})

	language, ok := detector.DetectLanguageOf(text)
	if !ok {
		return "", ""
	}
	return strings.ToLower(language.IsoCode639_1().String()), language.String()
}
