package tts_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts/mock"
)

func TestCollect(t *testing.T) {
	ch := make(chan []byte, 3)
	ch <- audio.SamplesToBytes([]int16{1, 2})
	ch <- []byte{3} // split sample
	ch <- []byte{0}
	close(ch)

	clip, err := tts.Collect(context.Background(), ch, audio.SampleRate)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []int16{1, 2, 3}
	if clip.Len() != len(want) {
		t.Fatalf("len = %d, want %d", clip.Len(), len(want))
	}
	for i := range want {
		if clip.Samples[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, clip.Samples[i], want[i])
		}
	}
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := make(chan []byte)
	if _, err := tts.Collect(ctx, ch, audio.SampleRate); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	close(ch)
}

func TestSynthesize(t *testing.T) {
	p := &mock.Provider{SynthesizeChunks: [][]byte{audio.SamplesToBytes(make([]int16, 1600))}}
	voice := tts.VoiceProfile{ID: "v1"}
	long := strings.Repeat("word ", 30) + "end."

	clip, err := tts.Synthesize(context.Background(), p, voice, "Bonjour.", long)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if clip.Len() != 1600 || clip.SampleRate != audio.SampleRate {
		t.Fatalf("clip = %d samples at %d Hz", clip.Len(), clip.SampleRate)
	}

	calls := p.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].Voice.ID != "v1" {
		t.Errorf("voice = %q, want v1", calls[0].Voice.ID)
	}
	frags := calls[0].Fragments
	if len(frags) < 3 || frags[0] != "Bonjour." {
		t.Fatalf("fragments = %q, want Bonjour. followed by the split long text", frags)
	}
	for _, f := range frags {
		if len(f) > tts.MaxFragmentLen {
			t.Errorf("fragment of %d bytes exceeds limit: %q", len(f), f)
		}
	}
}

func TestSynthesize_StartError(t *testing.T) {
	p := &mock.Provider{SynthesizeErr: errors.New("quota")}
	if _, err := tts.Synthesize(context.Background(), p, tts.VoiceProfile{}, "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{"fits", "Hello there.", 100, []string{"Hello there."}},
		{"empty", "   ", 100, nil},
		{"sentence boundary", "One two. Three four.", 12, []string{"One two.", "Three four."}},
		{"clause boundary", "One two, three four", 12, []string{"One two,", "three four"}},
		{"whitespace", "alpha beta gamma", 11, []string{"alpha beta", "gamma"}},
		{"hard cut", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"keeps runes whole", "ééé", 3, []string{"é", "é", "é"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tts.SplitText(tt.text, tt.maxLen)
			if len(got) != len(tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("fragment %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
