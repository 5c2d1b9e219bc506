// Package tts defines the Provider interface for text-to-speech backends and
// the helpers that turn a provider's streamed PCM into an [audio.Clip].
//
// Providers stream raw 16-bit little-endian mono PCM at [audio.SampleRate].
// The dubbing pipeline uses them in two ways: one stream per Speech segment,
// or one stream for the whole translated script that the resynchronization
// engine later slices with its cursor.
package tts

import (
	"context"
	"fmt"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
)

// Provider is the abstraction over any TTS backend.
//
// Implementations must be safe for concurrent use: segments are synthesized
// in parallel.
type Provider interface {
	// SynthesizeStream consumes text fragments from text and returns a channel
	// of raw PCM chunks at [audio.SampleRate]. The audio channel is closed when
	// all text has been synthesised or ctx is cancelled. The caller must drain
	// it.
	//
	// A non-nil error means the stream could not be started. Failures during
	// synthesis close the audio channel early.
	SynthesizeStream(ctx context.Context, text <-chan string, voice VoiceProfile) (<-chan []byte, error)

	// ListVoices returns the voices the provider currently offers.
	ListVoices(ctx context.Context) ([]VoiceProfile, error)
}

// Collect reads audioCh to completion and returns its PCM as a clip at rate.
// If ctx ends first the rest of the stream is drained in the background and
// ctx.Err() is returned.
func Collect(ctx context.Context, audioCh <-chan []byte, rate int) (audio.Clip, error) {
	var pcm []byte
	for {
		select {
		case chunk, ok := <-audioCh:
			if !ok {
				return audio.Clip{Samples: audio.BytesToSamples(pcm), SampleRate: rate}, nil
			}
			pcm = append(pcm, chunk...)
		case <-ctx.Done():
			go audio.Drain(audioCh)
			return audio.Clip{}, ctx.Err()
		}
	}
}

// Synthesize renders texts as one utterance with p. Each text is split into
// provider-sized fragments with [SplitText] before it is sent.
func Synthesize(ctx context.Context, p Provider, voice VoiceProfile, texts ...string) (audio.Clip, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	textCh := make(chan string)
	audioCh, err := p.SynthesizeStream(ctx, textCh, voice)
	if err != nil {
		close(textCh)
		return audio.Clip{}, fmt.Errorf("tts: start stream: %w", err)
	}

	go func() {
		defer close(textCh)
		for _, t := range texts {
			for _, frag := range SplitText(t, MaxFragmentLen) {
				select {
				case textCh <- frag:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	clip, err := Collect(ctx, audioCh, audio.SampleRate)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("tts: collect: %w", err)
	}
	return clip, nil
}
