// Package translate provides pluggable text translators: the free Google
// web endpoint, LLM-backed translation, and a caching decorator.
package translate

import "context"

// Translator converts text between languages.
type Translator interface {
	// Name identifies the translator in logs and status output.
	Name() string

	// Translate renders text into the target language. An empty source
	// means detect.
	Translate(ctx context.Context, text, source, target string) (string, error)
}
