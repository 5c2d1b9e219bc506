// Package audio defines the in-memory audio buffer shared by every stage of the
// dubbing pipeline, together with the sample-level DSP the resynchronization
// engine relies on: PCM conversion, resampling, fades and pitch-preserving
// time stretching.
//
// All buffers are mono, signed 16-bit samples. The pipeline runs at a fixed
// [SampleRate]; clips arriving at other rates are converted with
// [Clip.Resample] before they reach the engine.
package audio

import "time"

// SampleRate is the fixed pipeline sample rate in Hz.
const SampleRate = 16000

// Clip is an owned mono PCM buffer. The zero value is an empty clip.
type Clip struct {
	// Samples holds signed 16-bit mono samples.
	Samples []int16

	// SampleRate in Hz. Zero is treated as [SampleRate].
	SampleRate int
}

// NewSilence returns a zero-filled clip of n samples at rate.
func NewSilence(n, rate int) Clip {
	if n < 0 {
		n = 0
	}
	return Clip{Samples: make([]int16, n), SampleRate: rate}
}

// Rate returns the clip's sample rate, defaulting to [SampleRate].
func (c Clip) Rate() int {
	if c.SampleRate <= 0 {
		return SampleRate
	}
	return c.SampleRate
}

// Len returns the number of samples.
func (c Clip) Len() int { return len(c.Samples) }

// Duration returns the intrinsic duration of the clip.
func (c Clip) Duration() time.Duration {
	return time.Duration(int64(len(c.Samples)) * int64(time.Second) / int64(c.Rate()))
}

// Seconds returns the intrinsic duration in seconds.
func (c Clip) Seconds() float64 {
	return float64(len(c.Samples)) / float64(c.Rate())
}

// Slice returns a copy of samples [from, to), clamped to the clip bounds.
// Positions past the end of the clip are filled with silence so the result
// always holds exactly to-from samples (or none if to <= from).
func (c Clip) Slice(from, to int) Clip {
	if to <= from {
		return Clip{SampleRate: c.Rate()}
	}
	out := make([]int16, to-from)
	if from < len(c.Samples) {
		lo := max(from, 0)
		hi := min(to, len(c.Samples))
		if hi > lo {
			copy(out[lo-from:], c.Samples[lo:hi])
		}
	}
	return Clip{Samples: out, SampleRate: c.Rate()}
}

// Clone returns a deep copy of c.
func (c Clip) Clone() Clip {
	out := make([]int16, len(c.Samples))
	copy(out, c.Samples)
	return Clip{Samples: out, SampleRate: c.SampleRate}
}

// Resample returns c converted to rate using linear interpolation. If the rate
// already matches, c is returned unchanged.
func (c Clip) Resample(rate int) Clip {
	if rate <= 0 || c.Rate() == rate {
		return c
	}
	return Clip{
		Samples:    BytesToSamples(ResampleMono16(SamplesToBytes(c.Samples), c.Rate(), rate)),
		SampleRate: rate,
	}
}

// SampleIndex converts a time in seconds to the nearest sample index at rate.
func SampleIndex(seconds float64, rate int) int {
	v := seconds * float64(rate)
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// MsToSamples converts a duration in milliseconds to a sample count at rate.
func MsToSamples(ms float64, rate int) int {
	return SampleIndex(ms/1000, rate)
}
