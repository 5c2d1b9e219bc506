package resync_test

import (
	"errors"
	"testing"

	"github.com/cyprienbrisset/video-translate-to-text/internal/engine/resync"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
)

func clipOf(s ...int16) audio.Clip {
	return audio.Clip{Samples: s, SampleRate: audio.SampleRate}
}

func TestCompositor_OverlaySums(t *testing.T) {
	c := resync.NewCompositor(6, audio.SampleRate)
	if err := c.Overlay(0, clipOf(100, 100, 100)); err != nil {
		t.Fatalf("Overlay: %v", err)
	}
	if err := c.Overlay(2, clipOf(50, 50, 50)); err != nil {
		t.Fatalf("Overlay: %v", err)
	}
	want := []int16{100, 100, 150, 50, 50, 0}
	got := c.Track()
	if got.Len() != len(want) {
		t.Fatalf("len = %d, want %d", got.Len(), len(want))
	}
	for i := range want {
		if got.Samples[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, got.Samples[i], want[i])
		}
	}
}

func TestCompositor_Saturates(t *testing.T) {
	c := resync.NewCompositor(2, audio.SampleRate)
	_ = c.Overlay(0, clipOf(30000, -30000))
	_ = c.Overlay(0, clipOf(30000, -30000))
	got := c.Track().Samples
	if got[0] != 32767 || got[1] != -32768 {
		t.Fatalf("got %v, want [32767 -32768]", got)
	}
}

func TestCompositor_Errors(t *testing.T) {
	tests := []struct {
		name    string
		offset  int
		clip    audio.Clip
		wantErr bool
	}{
		{"fits", 2, clipOf(1, 2, 3), false},
		{"one sample overhang is clipped", 3, clipOf(1, 2, 3), false},
		{"overruns track", 4, clipOf(1, 2, 3), true},
		{"negative offset", -1, clipOf(1), true},
		{"offset past end", 6, clipOf(1), true},
		{"rate mismatch", 0, audio.Clip{Samples: []int16{1}, SampleRate: 8000}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := resync.NewCompositor(5, audio.SampleRate)
			err := c.Overlay(tt.offset, tt.clip)
			var ce *resync.CompositionError
			if tt.wantErr != errors.As(err, &ce) {
				t.Fatalf("Overlay error = %v, wantErr %v", err, tt.wantErr)
			}
			if c.Track().Len() != 5 {
				t.Errorf("track length changed to %d", c.Track().Len())
			}
		})
	}
}

func TestCompositor_FillGaps(t *testing.T) {
	c := resync.NewCompositor(5, audio.SampleRate)
	_ = c.Overlay(1, clipOf(0, 0))
	c.FillGaps(clipOf(9, 9, 9, 9))
	want := []int16{9, 0, 0, 9, 0}
	got := c.Track().Samples
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], want[i])
		}
	}
}
