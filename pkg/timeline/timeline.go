// Package timeline models the structure of a source recording as an ordered,
// validated list of time-stamped speech and non-speech segments.
//
// A [Timeline] is built once per dubbing run from the raw segment list the
// transcription collaborator produces ([Build]) and is immutable afterwards.
// It is the single source of truth for slot boundaries: the resynchronization
// engine renders exactly one clip per segment and places it at the segment's
// start.
package timeline

import "strings"

// Kind classifies a segment.
type Kind int

const (
	// Speech segments are replaced by synthesized speech.
	Speech Kind = iota

	// NonSpeech segments (music, applause, silence) keep the original audio.
	NonSpeech
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case Speech:
		return "speech"
	case NonSpeech:
		return "non_speech"
	default:
		return "unknown"
	}
}

// RawSegment is one entry of the transcription collaborator's output, before
// validation and merging. Times are in seconds.
type RawSegment struct {
	Start float64
	End   float64

	// Text is the transcribed text. Text wrapped in brackets (e.g. "[music]")
	// marks a non-speech segment.
	Text string

	// Translated is the translated text, if translation already ran. Empty
	// means "not translated yet".
	Translated string
}

// Segment is a validated timeline entry covering the half-open interval
// [Start, End) in seconds.
type Segment struct {
	Start float64
	End   float64
	Kind  Kind

	// Text is the original text, or the bracketed marker for NonSpeech.
	Text string

	// Translated is the translated text; empty when not available.
	Translated string
}

// Duration returns End - Start in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// SpeechText returns the text to synthesize: the translation when present,
// otherwise the original text.
func (s Segment) SpeechText() string {
	if s.Translated != "" {
		return s.Translated
	}
	return s.Text
}

// Slot is the [Start, End) interval a segment occupies in the output track.
type Slot struct {
	Start float64
	End   float64
}

// IsMarker reports whether text consists only of bracketed non-vocal
// annotations such as "[music]" or "[music] [applause]". Text with any words
// outside the brackets, like "[laughs] hello", is speech.
func IsMarker(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	for t != "" {
		if t[0] != '[' {
			return false
		}
		end := strings.IndexByte(t, ']')
		if end < 0 || strings.IndexByte(t[1:end], '[') >= 0 {
			return false
		}
		t = strings.TrimSpace(t[end+1:])
	}
	return true
}

// Timeline is an ordered, non-overlapping list of segments plus the total
// duration of the source recording. Gaps between segments are allowed.
type Timeline struct {
	segments []Segment
	total    float64
}

// Len returns the number of segments.
func (t *Timeline) Len() int { return len(t.segments) }

// TotalDuration returns the source recording's duration in seconds,
// independent of segment coverage.
func (t *Timeline) TotalDuration() float64 { return t.total }

// Segment returns the i-th segment.
func (t *Timeline) Segment(i int) Segment { return t.segments[i] }

// Segments returns a copy of the segment list.
func (t *Timeline) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Slots returns the (start, end) pairs actually used after merging, in order.
func (t *Timeline) Slots() []Slot {
	out := make([]Slot, len(t.segments))
	for i, s := range t.segments {
		out[i] = Slot{Start: s.Start, End: s.End}
	}
	return out
}

// Raw converts the timeline back into raw segments. Feeding the result to
// [Build] with the same options yields an identical timeline.
func (t *Timeline) Raw() []RawSegment {
	out := make([]RawSegment, len(t.segments))
	for i, s := range t.segments {
		out[i] = RawSegment{Start: s.Start, End: s.End, Text: s.Text, Translated: s.Translated}
	}
	return out
}

// WithTranslations returns a copy of t whose Speech segments carry the given
// translations. translations is indexed like the segment list; empty entries
// leave the segment untouched. NonSpeech segments are never translated.
func (t *Timeline) WithTranslations(translations []string) *Timeline {
	out := &Timeline{segments: t.Segments(), total: t.total}
	for i := range out.segments {
		if i >= len(translations) || translations[i] == "" || out.segments[i].Kind != Speech {
			continue
		}
		out.segments[i].Translated = translations[i]
	}
	return out
}
