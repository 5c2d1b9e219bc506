// Package mock provides a test double for the stt.Transcriber interface.
//
// Example:
//
//	tr := &mock.Transcriber{Segments: []timeline.RawSegment{{Start: 0, End: 1, Text: "hi"}}}
//	segs, _ := tr.Transcribe(ctx, clip)
package mock

import (
	"context"
	"sync"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/stt"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

// TranscribeCall records a single invocation of Transcriber.Transcribe.
type TranscribeCall struct {
	// Clip is the audio passed to Transcribe.
	Clip audio.Clip
}

// Transcriber is a mock implementation of stt.Transcriber.
type Transcriber struct {
	mu sync.Mutex

	// Segments is returned by Transcribe.
	Segments []timeline.RawSegment

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Calls records every call to Transcribe.
	Calls []TranscribeCall
}

// Transcribe records the call and returns a copy of Segments, Err.
func (t *Transcriber) Transcribe(_ context.Context, clip audio.Clip) ([]timeline.RawSegment, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls = append(t.Calls, TranscribeCall{Clip: clip})
	if t.Err != nil {
		return nil, t.Err
	}
	out := make([]timeline.RawSegment, len(t.Segments))
	copy(out, t.Segments)
	return out, nil
}

// CallCount returns the number of Transcribe calls. Thread-safe.
func (t *Transcriber) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Calls)
}

// Reset clears all recorded calls. Thread-safe.
func (t *Transcriber) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls = nil
}

var _ stt.Transcriber = (*Transcriber)(nil)
