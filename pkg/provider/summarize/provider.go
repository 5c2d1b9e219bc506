// Package summarize defines the Provider interface for transcript
// summarization backends.
package summarize

import (
	"context"
	"errors"
)

// ErrEmptySummary is returned when a backend answers with no text.
var ErrEmptySummary = errors.New("summarize: empty summary")

// Request is one summarization call.
type Request struct {
	// Text is the full transcript text. It is never empty.
	Text string

	// Language is the language code the summary is written in. Empty keeps
	// the language of Text.
	Language string

	// MinWords and MaxWords bound the summary length. Zero means unbounded.
	MinWords int
	MaxWords int
}

// Provider is the abstraction over any summarization backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Summarize returns a summary of req.Text within the requested length.
	Summarize(ctx context.Context, req Request) (string, error)
}
