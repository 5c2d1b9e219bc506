// Package stt defines the Transcriber interface for batch Speech-to-Text
// backends.
//
// A Transcriber turns a whole recording into timed segments. Segments come
// back as [timeline.RawSegment] values so they can be handed straight to
// [timeline.Build]; non-vocal passages are expected as bracketed markers such
// as "[music]", which is what whisper emits for them.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"strings"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

// Transcriber is the abstraction over any batch STT backend.
type Transcriber interface {
	// Transcribe recognises speech in clip and returns its segments ordered
	// by start time. Times are seconds from the start of clip. Implementations
	// resample clip as needed.
	Transcribe(ctx context.Context, clip audio.Clip) ([]timeline.RawSegment, error)
}

// Normalize makes backend output acceptable to [timeline.Build]: texts are
// trimmed, empty segments dropped, bounds clamped to [0, total] and each start
// pushed past the previous end so segments never overlap. Segments that end
// up with no duration are dropped. The input is not modified.
func Normalize(segs []timeline.RawSegment, total float64) []timeline.RawSegment {
	out := make([]timeline.RawSegment, 0, len(segs))
	prevEnd := 0.0
	for _, s := range segs {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" {
			continue
		}
		s.Start = max(s.Start, prevEnd, 0)
		if total > 0 {
			s.End = min(s.End, total)
		}
		if s.End <= s.Start {
			continue
		}
		out = append(out, s)
		prevEnd = s.End
	}
	return out
}
