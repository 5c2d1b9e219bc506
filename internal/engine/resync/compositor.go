package resync

import "github.com/cyprienbrisset/video-translate-to-text/pkg/audio"

// Compositor sums rendered clips into a silent track of fixed length.
// Overlapping samples add, and the sum saturates to int16 only when the
// track is read, so a clip placed alone is reproduced bit for bit.
//
// A Compositor is owned by one run and is not safe for concurrent use.
type Compositor struct {
	rate    int
	acc     []int32
	covered []bool
}

// NewCompositor returns a silent track of totalSamples at sampleRate.
func NewCompositor(totalSamples, sampleRate int) *Compositor {
	totalSamples = max(totalSamples, 0)
	if sampleRate <= 0 {
		sampleRate = audio.SampleRate
	}
	return &Compositor{
		rate:    sampleRate,
		acc:     make([]int32, totalSamples),
		covered: make([]bool, totalSamples),
	}
}

// Len returns the track length in samples.
func (c *Compositor) Len() int { return len(c.acc) }

// Overlay adds clip into the track starting at offset. A clip overhanging the
// track end by one sample, a rounding artefact, is clipped; anything further
// out is a [*CompositionError].
func (c *Compositor) Overlay(offset int, clip audio.Clip) error {
	n := clip.Len()
	if offset < 0 || offset > len(c.acc) {
		return &CompositionError{Offset: offset, Length: n, TrackLen: len(c.acc), Reason: "offset outside track"}
	}
	if clip.Rate() != c.rate {
		return &CompositionError{Offset: offset, Length: n, TrackLen: len(c.acc), Reason: "sample rate mismatch"}
	}
	if over := offset + n - len(c.acc); over > 1 {
		return &CompositionError{Offset: offset, Length: n, TrackLen: len(c.acc), Reason: "clip overruns track"}
	}
	for i, s := range clip.Samples {
		j := offset + i
		if j >= len(c.acc) {
			break
		}
		c.acc[j] += int32(s)
		c.covered[j] = true
	}
	return nil
}

// FillGaps copies original into every sample no overlay has touched.
func (c *Compositor) FillGaps(original audio.Clip) {
	src := original.Samples
	for i := range c.acc {
		if c.covered[i] || i >= len(src) {
			continue
		}
		c.acc[i] = int32(src[i])
	}
}

// Track returns the composed track, saturated to int16.
func (c *Compositor) Track() audio.Clip {
	out := make([]int16, len(c.acc))
	for i, v := range c.acc {
		out[i] = audio.ClampInt16(v)
	}
	return audio.Clip{Samples: out, SampleRate: c.rate}
}
