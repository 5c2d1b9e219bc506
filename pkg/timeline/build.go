package timeline

import (
	"fmt"
	"strings"
)

// DefaultMinDuration is the merge threshold in seconds. Segments shorter than
// this are folded into their predecessor.
const DefaultMinDuration = 0.1

// MergePolicy selects how often the short-segment merge pass runs.
type MergePolicy string

const (
	// MergeOnce applies a single left-to-right pass.
	MergeOnce MergePolicy = "once"

	// MergeCascade repeats the pass until no segment is shorter than the
	// minimum duration.
	MergeCascade MergePolicy = "cascade"
)

// IsValid reports whether p is a recognised merge policy.
func (p MergePolicy) IsValid() bool {
	return p == MergeOnce || p == MergeCascade
}

// InvalidTimelineError reports a malformed raw segment list. It is fatal: the
// upstream segmentation has to be fixed.
type InvalidTimelineError struct {
	// Index is the offending raw segment, or -1 for list-level problems.
	Index  int
	Reason string
}

func (e *InvalidTimelineError) Error() string {
	if e.Index < 0 {
		return "timeline: invalid: " + e.Reason
	}
	return fmt.Sprintf("timeline: invalid segment %d: %s", e.Index, e.Reason)
}

// Option configures [Build].
type Option func(*buildConfig)

type buildConfig struct {
	minDuration float64
	policy      MergePolicy
}

// WithMinDuration sets the merge threshold in seconds. Zero disables merging.
func WithMinDuration(sec float64) Option {
	return func(c *buildConfig) {
		if sec >= 0 {
			c.minDuration = sec
		}
	}
}

// WithMergePolicy selects the merge policy. Unknown values are ignored.
func WithMergePolicy(p MergePolicy) Option {
	return func(c *buildConfig) {
		if p.IsValid() {
			c.policy = p
		}
	}
}

// boundsEpsilon absorbs float noise in segment end times reported against the
// container duration.
const boundsEpsilon = 1e-6

// Build validates raw and returns the normalized [Timeline].
//
// Validation rejects unsorted or overlapping segments, empty intervals,
// segments outside [0, totalDuration] and Speech segments without text. A
// segment is NonSpeech iff its text is a bracketed marker.
//
// Segments shorter than the minimum duration are then merged into the
// preceding segment: its end is extended to the short segment's end and the
// texts are joined with a single space. A short segment with no predecessor
// is dropped. When a Speech fragment is merged into a NonSpeech predecessor
// the marker text is kept, since that interval replays original audio.
func Build(raw []RawSegment, totalDuration float64, opts ...Option) (*Timeline, error) {
	cfg := buildConfig{minDuration: DefaultMinDuration, policy: MergeOnce}
	for _, o := range opts {
		o(&cfg)
	}

	if totalDuration <= 0 {
		return nil, &InvalidTimelineError{Index: -1, Reason: fmt.Sprintf("total duration %.3fs must be positive", totalDuration)}
	}

	segs := make([]Segment, 0, len(raw))
	for i, r := range raw {
		if r.Start < 0 {
			return nil, &InvalidTimelineError{Index: i, Reason: fmt.Sprintf("start %.3f is negative", r.Start)}
		}
		if r.End <= r.Start {
			return nil, &InvalidTimelineError{Index: i, Reason: fmt.Sprintf("end %.3f is not after start %.3f", r.End, r.Start)}
		}
		if r.Start >= totalDuration {
			return nil, &InvalidTimelineError{Index: i, Reason: fmt.Sprintf("start %.3f is not before total duration %.3f", r.Start, totalDuration)}
		}
		if r.End > totalDuration+boundsEpsilon {
			return nil, &InvalidTimelineError{Index: i, Reason: fmt.Sprintf("end %.3f exceeds total duration %.3f", r.End, totalDuration)}
		}
		if i > 0 {
			prev := raw[i-1]
			if r.Start <= prev.Start {
				return nil, &InvalidTimelineError{Index: i, Reason: fmt.Sprintf("start %.3f is not after previous start %.3f", r.Start, prev.Start)}
			}
			if r.Start < prev.End {
				return nil, &InvalidTimelineError{Index: i, Reason: fmt.Sprintf("overlaps previous segment ending at %.3f", prev.End)}
			}
		}

		text := strings.TrimSpace(r.Text)
		kind := Speech
		if IsMarker(text) {
			kind = NonSpeech
		}
		if kind == Speech && text == "" {
			return nil, &InvalidTimelineError{Index: i, Reason: "speech segment has empty text"}
		}
		translated := ""
		if kind == Speech {
			translated = strings.TrimSpace(r.Translated)
		}
		segs = append(segs, Segment{
			Start:      r.Start,
			End:        min(r.End, totalDuration),
			Kind:       kind,
			Text:       text,
			Translated: translated,
		})
	}

	if cfg.minDuration > 0 {
		segs = mergeShort(segs, cfg.minDuration)
		if cfg.policy == MergeCascade {
			for hasShort(segs, cfg.minDuration) {
				next := mergeShort(segs, cfg.minDuration)
				if len(next) == len(segs) {
					break
				}
				segs = next
			}
		}
	}

	return &Timeline{segments: segs, total: totalDuration}, nil
}

// mergeShort runs one left-to-right merge pass.
func mergeShort(segs []Segment, minDur float64) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if s.Duration() >= minDur {
			out = append(out, s)
			continue
		}
		if len(out) == 0 {
			continue
		}
		prev := &out[len(out)-1]
		prev.End = s.End
		if prev.Kind == NonSpeech && s.Kind == Speech {
			continue
		}
		// Keep translations aligned with the text: once either side is
		// translated, untranslated parts fall back to their original text.
		if s.Kind == Speech && (prev.Translated != "" || s.Translated != "") {
			prev.Translated = joinText(prev.SpeechText(), s.SpeechText())
		}
		prev.Text = joinText(prev.Text, s.Text)
	}
	return out
}

func hasShort(segs []Segment, minDur float64) bool {
	for _, s := range segs {
		if s.Duration() < minDur {
			return true
		}
	}
	return false
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
