package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/cyprienbrisset/video-translate-to-text/internal/config"
	"github.com/cyprienbrisset/video-translate-to-text/internal/health"
	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
	"github.com/cyprienbrisset/video-translate-to-text/internal/resilience"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/stt"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/stt/deepgram"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/stt/whisper"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/summarize"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/translate"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/translate/anyllm"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts/elevenlabs"
	oaitts "github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts/openai"
)

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := config.OptString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.NewServer(entry.BaseURL, opts...)
	})

	reg.RegisterSTT("whisper-native", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = config.OptString(entry.Options, "model_path")
		}
		var opts []whisper.NativeOption
		if lang := config.OptString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithNativeLanguage(lang))
		}
		if threads := config.OptInt(entry.Options, "threads"); threads > 0 {
			opts = append(opts, whisper.WithNativeThreads(uint(threads)))
		}
		return whisper.NewNative(modelPath, opts...)
	})

	reg.RegisterSTT("deepgram", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if lang := config.OptString(entry.Options, "language"); lang != "" {
			opts = append(opts, deepgram.WithLanguage(lang))
		}
		if entry.BaseURL != "" {
			opts = append(opts, deepgram.WithEndpoint(entry.BaseURL))
		}
		return deepgram.New(entry.APIKey, opts...)
	})

	// ── Translate ─────────────────────────────────────────────────────────────
	// Every any-llm backend shares the same pattern: optional APIKey and
	// optional BaseURL. Local servers such as ollama only need the URL.
	for _, name := range anyllm.Names() {
		reg.RegisterTranslate(name, func(entry config.ProviderEntry) (translate.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(name, entry.Model, opts...)
		})
	}

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})

	reg.RegisterTTS("openai", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []oaitts.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaitts.WithBaseURL(entry.BaseURL))
		}
		return oaitts.New(entry.APIKey, entry.Model, opts...)
	})
}

// providers is the set of instantiated collaborators for one command.
type providers struct {
	STT       stt.Transcriber
	Translate translate.Provider
	TTS       tts.Provider

	// Checks report, per stage with a fallback group, whether any backend
	// still accepts calls.
	Checks []health.Checker

	closers []io.Closer
}

// Close releases providers that hold native resources.
func (p *providers) Close() {
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			slog.Warn("provider close error", "err", err)
		}
	}
}

func (p *providers) track(v any) {
	if c, ok := v.(io.Closer); ok {
		p.closers = append(p.closers, c)
	}
}

// buildProviders instantiates every configured provider. Stages with
// fallbacks are wrapped in the matching resilience group. Unconfigured stages
// stay nil.
func buildProviders(cfg *config.Config, reg *config.Registry, metrics *observe.Metrics) (*providers, error) {
	ps := &providers{}
	fbCfg := resilience.FallbackConfig{Metrics: metrics}
	pc := cfg.Providers

	if name := pc.STT.Name; name != "" {
		primary, err := reg.CreateSTT(pc.STT)
		if err != nil {
			ps.Close()
			return nil, fmt.Errorf("create stt provider %q: %w", name, err)
		}
		ps.track(primary)
		ps.STT = primary
		if len(pc.STTFallbacks) > 0 {
			group := resilience.NewTranscriberFallback(primary, name, fbCfg)
			for _, fb := range pc.STTFallbacks {
				p, err := reg.CreateSTT(fb)
				if err != nil {
					ps.Close()
					return nil, fmt.Errorf("create stt fallback %q: %w", fb.Name, err)
				}
				ps.track(p)
				group.AddFallback(fb.Name, p)
			}
			ps.STT = group
			ps.Checks = append(ps.Checks, health.ReadierCheck("stt", group))
		}
		slog.Info("provider created", "kind", "stt", "name", name, "fallbacks", len(pc.STTFallbacks))
	}

	if name := pc.Translate.Name; name != "" {
		primary, err := reg.CreateTranslate(pc.Translate)
		if err != nil {
			ps.Close()
			return nil, fmt.Errorf("create translate provider %q: %w", name, err)
		}
		ps.Translate = primary
		if len(pc.TranslateFallbacks) > 0 {
			group := resilience.NewTranslateFallback(primary, name, fbCfg)
			for _, fb := range pc.TranslateFallbacks {
				p, err := reg.CreateTranslate(fb)
				if err != nil {
					ps.Close()
					return nil, fmt.Errorf("create translate fallback %q: %w", fb.Name, err)
				}
				group.AddFallback(fb.Name, p)
			}
			ps.Translate = group
			ps.Checks = append(ps.Checks, health.ReadierCheck("translate", group))
		}
		slog.Info("provider created", "kind", "translate", "name", name, "fallbacks", len(pc.TranslateFallbacks))
	}

	if name := pc.TTS.Name; name != "" {
		primary, err := reg.CreateTTS(pc.TTS)
		if err != nil {
			ps.Close()
			return nil, fmt.Errorf("create tts provider %q: %w", name, err)
		}
		// The fallback group is used even without fallbacks for its
		// whole-clip Synthesize and empty-audio detection.
		group := resilience.NewTTSFallback(primary, name, fbCfg)
		for _, fb := range pc.TTSFallbacks {
			p, err := reg.CreateTTS(fb)
			if err != nil {
				ps.Close()
				return nil, fmt.Errorf("create tts fallback %q: %w", fb.Name, err)
			}
			group.AddFallback(fb.Name, p)
		}
		ps.TTS = group
		ps.Checks = append(ps.Checks, health.ReadierCheck("tts", group))
		slog.Info("provider created", "kind", "tts", "name", name, "fallbacks", len(pc.TTSFallbacks))
	}

	return ps, nil
}

// buildSummarizer creates the summary backend from the translate registry.
// The provider must also implement [summarize.Provider].
func buildSummarizer(cfg *config.Config, reg *config.Registry) (summarize.Provider, error) {
	entry := cfg.Providers.SummarizeEntry()
	if entry.Name == "" {
		return nil, errors.New("providers.summarize is not configured (nor providers.translate)")
	}
	p, err := reg.CreateTranslate(entry)
	if err != nil {
		return nil, fmt.Errorf("create summarize provider %q: %w", entry.Name, err)
	}
	s, ok := p.(summarize.Provider)
	if !ok {
		return nil, fmt.Errorf("provider %q cannot summarize", entry.Name)
	}
	return s, nil
}

// voiceProfile returns the voice to request from the primary TTS provider.
func voiceProfile(cfg *config.Config) tts.VoiceProfile {
	return tts.VoiceProfile{
		ID:       cfg.Dubbing.VoiceID,
		Provider: cfg.Providers.TTS.Name,
		Language: cfg.Dubbing.TargetLanguage,
	}
}
