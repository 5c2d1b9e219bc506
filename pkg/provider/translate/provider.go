// Package translate defines the Provider interface for text translation
// backends.
//
// Translation is per segment: one call takes one piece of transcript text and
// returns its rendering in the target language. The dubbing pipeline owns the
// failure policy; a provider simply reports errors, including an empty reply
// ([ErrEmptyTranslation]).
package translate

import (
	"context"
	"errors"
)

// ErrEmptyTranslation is returned when a backend answers with no text.
var ErrEmptyTranslation = errors.New("translate: empty translation")

// Request is one translation call.
type Request struct {
	// Text is the source text. It is never empty.
	Text string

	// SourceLanguage and TargetLanguage are language codes such as "en" or
	// "fr". An empty SourceLanguage lets the backend detect it.
	SourceLanguage string
	TargetLanguage string
}

// Provider is the abstraction over any translation backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Translate returns req.Text in req.TargetLanguage.
	Translate(ctx context.Context, req Request) (string, error)
}
