package audio_test

import (
	"testing"
	"time"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
)

func TestNewSilence(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"positive", 320, 320},
		{"zero", 0, 0},
		{"negative clamps", -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := audio.NewSilence(tt.n, audio.SampleRate)
			if c.Len() != tt.want {
				t.Fatalf("Len() = %d, want %d", c.Len(), tt.want)
			}
			for i, s := range c.Samples {
				if s != 0 {
					t.Fatalf("sample %d = %d, want 0", i, s)
				}
			}
		})
	}
}

func TestClip_RateDefaults(t *testing.T) {
	if got := (audio.Clip{}).Rate(); got != audio.SampleRate {
		t.Errorf("zero clip Rate() = %d, want %d", got, audio.SampleRate)
	}
	if got := (audio.Clip{SampleRate: 24000}).Rate(); got != 24000 {
		t.Errorf("Rate() = %d, want 24000", got)
	}
}

func TestClip_Duration(t *testing.T) {
	c := audio.NewSilence(audio.SampleRate*3/2, audio.SampleRate)
	if got := c.Duration(); got != 1500*time.Millisecond {
		t.Errorf("Duration() = %v, want 1.5s", got)
	}
	if got := c.Seconds(); got != 1.5 {
		t.Errorf("Seconds() = %v, want 1.5", got)
	}
}

func TestClip_CloneIsIndependent(t *testing.T) {
	orig := audio.Clip{Samples: []int16{1, 2, 3}, SampleRate: audio.SampleRate}
	cp := orig.Clone()
	cp.Samples[0] = 99
	if orig.Samples[0] != 1 {
		t.Errorf("Clone shares backing array with original")
	}
	if cp.SampleRate != orig.SampleRate {
		t.Errorf("Clone SampleRate = %d, want %d", cp.SampleRate, orig.SampleRate)
	}
}

func TestMsToSamples(t *testing.T) {
	tests := []struct {
		ms   float64
		rate int
		want int
	}{
		{100, 16000, 1600},
		{200, 16000, 3200},
		{0, 16000, 0},
		{10, 44100, 441},
	}
	for _, tt := range tests {
		if got := audio.MsToSamples(tt.ms, tt.rate); got != tt.want {
			t.Errorf("MsToSamples(%v, %d) = %d, want %d", tt.ms, tt.rate, got, tt.want)
		}
	}
}
