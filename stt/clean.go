package stt

import (
	"regexp"
	"strings"
)

var (
	// regexBracketed matches decoder annotations that are not speech:
	// [BLANK_AUDIO], [Music], and inline timestamps like
	// [00:00:00.000 --> 00:00:04.000].
	regexBracketed = regexp.MustCompile(`\[[^\]]*\]`)
	regexSpaces    = regexp.MustCompile(`\s{2,}`)
)

// cleanTranscript strips non-speech decoder artifacts and normalizes
// whitespace. A chunk that was only artifacts comes back empty.
func cleanTranscript(text string) string {
	text = regexBracketed.ReplaceAllString(text, "")
	text = regexSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
