package resilience

import (
	"context"
	"errors"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts"
)

// ErrNoAudio is returned by [TTSFallback.Synthesize] when a backend finished
// its stream without producing any samples.
var ErrNoAudio = errors.New("provider returned no audio")

type ttsBackend struct {
	name string
	tts.Provider
}

// voiceFor returns voice if it belongs to this backend. Voices from another
// backend are meaningless here, so the backend's default voice is used.
func (b ttsBackend) voiceFor(voice tts.VoiceProfile) tts.VoiceProfile {
	if voice.Provider == "" || voice.Provider == b.name {
		return voice
	}
	return tts.VoiceProfile{Language: voice.Language}
}

// TTSFallback implements [tts.Provider] with failover across several TTS
// backends, each behind its own circuit breaker.
type TTSFallback struct {
	group *FallbackGroup[ttsBackend]
}

var _ tts.Provider = (*TTSFallback)(nil)

// NewTTSFallback creates a [TTSFallback] with primary as the preferred backend.
// Names should match [tts.VoiceProfile.Provider] values so that a voice
// chosen for one backend is not sent to another.
func NewTTSFallback(primary tts.Provider, primaryName string, cfg FallbackConfig) *TTSFallback {
	if cfg.Kind == "" {
		cfg.Kind = "tts"
	}
	return &TTSFallback{group: NewFallbackGroup(ttsBackend{primaryName, primary}, primaryName, cfg)}
}

// AddFallback registers an additional TTS backend.
func (f *TTSFallback) AddFallback(name string, provider tts.Provider) {
	f.group.AddFallback(name, ttsBackend{name, provider})
}

// SynthesizeStream starts a stream on the first healthy backend. Only stream
// setup is covered by failover; a stream that dies midway is not retried,
// since its text has already been consumed. Use [TTSFallback.Synthesize] for
// whole-utterance failover.
func (f *TTSFallback) SynthesizeStream(ctx context.Context, text <-chan string, voice tts.VoiceProfile) (<-chan []byte, error) {
	return Do(ctx, f.group, func(ctx context.Context, b ttsBackend) (<-chan []byte, error) {
		return b.SynthesizeStream(ctx, text, b.voiceFor(voice))
	})
}

// Synthesize renders texts as one clip with [tts.Synthesize], moving to the
// next backend when a backend fails or produces no audio.
func (f *TTSFallback) Synthesize(ctx context.Context, voice tts.VoiceProfile, texts ...string) (audio.Clip, error) {
	return Do(ctx, f.group, func(ctx context.Context, b ttsBackend) (audio.Clip, error) {
		clip, err := tts.Synthesize(ctx, b.Provider, b.voiceFor(voice), texts...)
		if err == nil && clip.Len() == 0 {
			return clip, ErrNoAudio
		}
		return clip, err
	})
}

// ListVoices returns the voices of the first healthy backend.
func (f *TTSFallback) ListVoices(ctx context.Context) ([]tts.VoiceProfile, error) {
	return Do(ctx, f.group, func(ctx context.Context, b ttsBackend) ([]tts.VoiceProfile, error) {
		return b.ListVoices(ctx)
	})
}

// Ready reports whether any TTS backend still accepts calls.
func (f *TTSFallback) Ready() error { return f.group.Ready() }
