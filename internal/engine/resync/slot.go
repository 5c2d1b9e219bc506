package resync

import (
	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

// Outcome names how a slot was filled.
type Outcome string

const (
	// OutcomeVerbatim: the clip already had the slot's length, or the slot
	// replays original audio.
	OutcomeVerbatim Outcome = "verbatim"

	// OutcomeTruncated: the clip was too long to speed up and was cut.
	OutcomeTruncated Outcome = "truncated"

	// OutcomePadded: the clip was too short to slow down and was followed by
	// silence.
	OutcomePadded Outcome = "padded"

	// OutcomeStretched: the clip was time-scaled to the slot length.
	OutcomeStretched Outcome = "stretched"

	// OutcomeSilence: no replacement audio was available.
	OutcomeSilence Outcome = "silence"
)

// Report describes how one segment was rendered.
type Report struct {
	Index int
	Kind  timeline.Kind
	Slot  timeline.Slot

	Outcome Outcome

	// SpeedFactor is source length / slot length for Speech segments, before
	// correction. Zero for NonSpeech segments and empty sources.
	SpeedFactor float64

	// SourceSamples and SlotSamples are the lengths before and after fitting.
	SourceSamples int
	SlotSamples   int

	// Err is the recoverable error that degraded this slot, if any.
	Err error
}

// SlotRenderer fits one clip to one slot. It holds no mutable state and is
// safe for concurrent use.
type SlotRenderer struct {
	cfg Config
}

// NewSlotRenderer returns a renderer for cfg. Zero fields take their defaults.
func NewSlotRenderer(cfg Config) *SlotRenderer {
	return &SlotRenderer{cfg: cfg.withDefaults()}
}

// RenderSpeech fits the replacement clip src into a slot of slotLen samples.
//
// With speed factor f = len(src)/slotLen:
//   - f > MaxSpeed: src is cut to the slot and faded out at the cut over
//     min(TrimFadeMaxMs, TrimFadeRatio*slot);
//   - f < MinSpeed: src keeps its natural speed and is followed by silence,
//     with a fade-out on the speech tail and a fade-in on the pad;
//   - otherwise src is time-scaled to exactly slotLen with pitch preserved.
//
// The result is then faded in unless first and faded out unless last. When
// speed adjustment is disabled the middle branch never runs: clips are cut or
// padded as above.
//
// An empty src yields a silent clip of slotLen samples together with an
// [*EmptySourceAudioError]; callers that keep going can use the clip as is.
func (r *SlotRenderer) RenderSpeech(src audio.Clip, slotLen int, first, last bool) (audio.Clip, Report, error) {
	rate := r.cfg.SampleRate
	slotLen = max(slotLen, 0)
	rep := Report{Kind: timeline.Speech, SlotSamples: slotLen}

	src = src.Resample(rate)
	if src.Len() == 0 {
		rep.Outcome = OutcomeSilence
		err := &EmptySourceAudioError{Index: -1}
		rep.Err = err
		return audio.NewSilence(slotLen, rate), rep, err
	}
	rep.SourceSamples = src.Len()
	if slotLen == 0 {
		rep.Outcome = OutcomeTruncated
		return audio.Clip{SampleRate: rate}, rep, nil
	}

	rep.SpeedFactor = float64(src.Len()) / float64(slotLen)

	var out []int16
	switch {
	case src.Len() == slotLen:
		out = src.Clone().Samples
		rep.Outcome = OutcomeVerbatim
	case rep.SpeedFactor > r.cfg.MaxSpeed || (r.cfg.NoSpeedAdjust && src.Len() > slotLen):
		out = r.truncate(src.Samples, slotLen)
		rep.Outcome = OutcomeTruncated
	case rep.SpeedFactor < r.cfg.MinSpeed || r.cfg.NoSpeedAdjust:
		out = r.pad(src.Samples, slotLen)
		rep.Outcome = OutcomePadded
	default:
		out = audio.TimeStretch(src.Samples, slotLen, rate)
		rep.Outcome = OutcomeStretched
	}

	r.edgeFades(out, first, last)
	return audio.Clip{Samples: out, SampleRate: rate}, rep, nil
}

// RenderNonSpeech returns the original audio in [from, to) verbatim. Samples
// past the end of original are silent.
func (r *SlotRenderer) RenderNonSpeech(original audio.Clip, from, to int) audio.Clip {
	return original.Resample(r.cfg.SampleRate).Slice(from, to)
}

// renderPartial places a clip that is known to fall short of its slot, such
// as the tail of an exhausted stream, without time-scaling it.
func (r *SlotRenderer) renderPartial(src audio.Clip, slotLen int, first, last bool) (audio.Clip, Report) {
	rate := r.cfg.SampleRate
	src = src.Resample(rate)
	rep := Report{Kind: timeline.Speech, SlotSamples: slotLen, SourceSamples: src.Len()}
	if slotLen > 0 {
		rep.SpeedFactor = float64(src.Len()) / float64(slotLen)
	}
	if src.Len() == 0 {
		rep.Outcome = OutcomeSilence
		return audio.NewSilence(slotLen, rate), rep
	}
	out := r.pad(src.Samples, slotLen)
	rep.Outcome = OutcomePadded
	r.edgeFades(out, first, last)
	return audio.Clip{Samples: out, SampleRate: rate}, rep
}

func (r *SlotRenderer) truncate(s []int16, slotLen int) []int16 {
	out := make([]int16, slotLen)
	copy(out, s)
	fade := min(
		audio.MsToSamples(r.cfg.TrimFadeMaxMs, r.cfg.SampleRate),
		int(r.cfg.TrimFadeRatio*float64(slotLen)+0.5),
	)
	audio.FadeOut(out, fade)
	return out
}

// pad returns s followed by silence up to slotLen. s longer than the slot is
// cut without a dedicated fade.
func (r *SlotRenderer) pad(s []int16, slotLen int) []int16 {
	out := make([]int16, slotLen)
	n := copy(out, s)
	fade := r.fadeLen()
	audio.FadeOut(out[:n], fade)
	audio.FadeIn(out[n:], fade)
	return out
}

func (r *SlotRenderer) edgeFades(s []int16, first, last bool) {
	fade := r.fadeLen()
	if !first {
		audio.FadeIn(s, fade)
	}
	if !last {
		audio.FadeOut(s, fade)
	}
}

func (r *SlotRenderer) fadeLen() int {
	return audio.MsToSamples(r.cfg.FadeMs, r.cfg.SampleRate)
}
