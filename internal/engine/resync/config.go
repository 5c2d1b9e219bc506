package resync

import (
	"runtime"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
)

// GapPolicy selects what fills output time no segment covers.
type GapPolicy string

const (
	// GapSilence leaves uncovered time silent.
	GapSilence GapPolicy = "silence"

	// GapOriginal replays the original audio in uncovered time.
	GapOriginal GapPolicy = "original"
)

// IsValid reports whether p is a recognised gap policy.
func (p GapPolicy) IsValid() bool {
	return p == GapSilence || p == GapOriginal
}

// Defaults applied to zero-valued [Config] fields.
const (
	DefaultMinSpeed      = 0.8
	DefaultMaxSpeed      = 1.2
	DefaultFadeMs        = 100
	DefaultTrimFadeMaxMs = 200
	DefaultTrimFadeRatio = 0.1
)

// Config holds the engine's tuning knobs. The zero value is usable: every
// zero field takes its default.
type Config struct {
	// SampleRate of the output track. Default: [audio.SampleRate].
	SampleRate int

	// MinSpeed and MaxSpeed bound the time-scaling window.
	MinSpeed float64
	MaxSpeed float64

	// FadeMs is the edge fade applied to every Speech clip and to the seam
	// of padded clips.
	FadeMs float64

	// TrimFadeMaxMs and TrimFadeRatio size the fade-out at a truncation cut:
	// the shorter of TrimFadeMaxMs and TrimFadeRatio of the slot.
	TrimFadeMaxMs float64
	TrimFadeRatio float64

	// NoSpeedAdjust disables time-scaling; clips are only cut or padded.
	NoSpeedAdjust bool

	// GapPolicy fills uncovered time. Default: [GapSilence].
	GapPolicy GapPolicy

	// Workers bounds the slot rendering pool. Default: GOMAXPROCS.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = audio.SampleRate
	}
	if c.MinSpeed <= 0 {
		c.MinSpeed = DefaultMinSpeed
	}
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = DefaultMaxSpeed
	}
	if c.FadeMs <= 0 {
		c.FadeMs = DefaultFadeMs
	}
	if c.TrimFadeMaxMs <= 0 {
		c.TrimFadeMaxMs = DefaultTrimFadeMaxMs
	}
	if c.TrimFadeRatio <= 0 {
		c.TrimFadeRatio = DefaultTrimFadeRatio
	}
	if !c.GapPolicy.IsValid() {
		c.GapPolicy = GapSilence
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}
