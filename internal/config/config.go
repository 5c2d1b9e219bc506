// Package config provides the configuration schema, loader, and provider
// registry for the dubber.
package config

import (
	"github.com/cyprienbrisset/video-translate-to-text/internal/engine/resync"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// TTSMode selects how translated text is synthesized.
type TTSMode string

const (
	// TTSPerSegment synthesizes one clip per Speech segment.
	TTSPerSegment TTSMode = "per_segment"

	// TTSContinuous synthesizes the whole script as one stream, which the
	// engine slices per segment.
	TTSContinuous TTSMode = "continuous"
)

// IsValid reports whether m is a recognised TTS mode.
func (m TTSMode) IsValid() bool {
	return m == TTSPerSegment || m == TTSContinuous
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	LogLevel  LogLevel        `yaml:"log_level"`
	Engine    EngineConfig    `yaml:"engine"`
	Dubbing   DubbingConfig   `yaml:"dubbing"`
	Providers ProvidersConfig `yaml:"providers"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EngineConfig tunes timeline building and slot rendering. Zero values take
// the engine defaults.
type EngineConfig struct {
	// MinSegmentDuration is the merge threshold in seconds. Default: 0.1.
	MinSegmentDuration float64 `yaml:"min_segment_duration"`

	// MergePolicy is "once" or "cascade". Default: once.
	MergePolicy timeline.MergePolicy `yaml:"merge_policy"`

	// MinSpeed and MaxSpeed bound the time-scaling window. Defaults: 0.8, 1.2.
	MinSpeed float64 `yaml:"min_speed"`
	MaxSpeed float64 `yaml:"max_speed"`

	// FadeMs is the slot edge and pad seam fade. Default: 100.
	FadeMs float64 `yaml:"fade_ms"`

	// TrimFadeMaxMs and TrimFadeRatio size the fade at a truncation cut:
	// min(TrimFadeMaxMs, TrimFadeRatio * slot). Defaults: 200, 0.1.
	TrimFadeMaxMs float64 `yaml:"trim_fade_max_ms"`
	TrimFadeRatio float64 `yaml:"trim_fade_ratio"`

	// GapPolicy is "silence" or "original". Default: silence.
	GapPolicy resync.GapPolicy `yaml:"gap_policy"`

	// AdjustSpeed enables time-scaling. When false, clips are only cut or
	// padded. Default: true.
	AdjustSpeed *bool `yaml:"adjust_speed"`

	// Workers is the slot rendering pool size. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// SpeedAdjustment reports whether time-scaling is enabled.
func (e EngineConfig) SpeedAdjustment() bool {
	return e.AdjustSpeed == nil || *e.AdjustSpeed
}

// Resync returns the engine configuration. Zero fields are left for the
// engine to default.
func (e EngineConfig) Resync() resync.Config {
	return resync.Config{
		MinSpeed:      e.MinSpeed,
		MaxSpeed:      e.MaxSpeed,
		FadeMs:        e.FadeMs,
		TrimFadeMaxMs: e.TrimFadeMaxMs,
		TrimFadeRatio: e.TrimFadeRatio,
		NoSpeedAdjust: !e.SpeedAdjustment(),
		GapPolicy:     e.GapPolicy,
		Workers:       e.Workers,
	}
}

// TimelineOptions returns the [timeline.Build] options for e.
func (e EngineConfig) TimelineOptions() []timeline.Option {
	var opts []timeline.Option
	if e.MinSegmentDuration > 0 {
		opts = append(opts, timeline.WithMinDuration(e.MinSegmentDuration))
	}
	if e.MergePolicy != "" {
		opts = append(opts, timeline.WithMergePolicy(e.MergePolicy))
	}
	return opts
}

// DubbingConfig describes the translation job.
type DubbingConfig struct {
	// SourceLanguage is the spoken language of the input. Empty lets the
	// providers detect it.
	SourceLanguage string `yaml:"source_language"`

	// TargetLanguage is the dubbing language (e.g., "fr").
	TargetLanguage string `yaml:"target_language"`

	// TTSMode is "per_segment" or "continuous". Default: per_segment.
	TTSMode TTSMode `yaml:"tts_mode"`

	// VoiceID is the voice of the primary TTS provider. Empty selects the
	// provider default.
	VoiceID string `yaml:"voice_id"`

	// Concurrency bounds parallel translation and synthesis requests.
	// 0 means 4.
	Concurrency int `yaml:"concurrency"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each entry selects a named provider registered in the
// [Registry]; fallbacks are tried in order when the primary fails.
type ProvidersConfig struct {
	STT          ProviderEntry   `yaml:"stt"`
	STTFallbacks []ProviderEntry `yaml:"stt_fallbacks"`

	Translate          ProviderEntry   `yaml:"translate"`
	TranslateFallbacks []ProviderEntry `yaml:"translate_fallbacks"`

	TTS          ProviderEntry   `yaml:"tts"`
	TTSFallbacks []ProviderEntry `yaml:"tts_fallbacks"`

	// Summarize selects the LLM used for transcript summaries. It is built
	// from the translate registry and defaults to the Translate entry.
	Summarize ProviderEntry `yaml:"summarize"`
}

// SummarizeEntry returns the entry used for summaries: Summarize when named,
// else Translate.
func (p ProvidersConfig) SummarizeEntry() ProviderEntry {
	if p.Summarize.Name != "" {
		return p.Summarize
	}
	return p.Translate
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai",
	// "elevenlabs").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g.,
	// "gpt-4o-mini", "eleven_flash_v2_5", or a whisper model path).
	Model string `yaml:"model"`

	// Options holds provider-specific values not covered by the standard
	// fields above.
	Options map[string]any `yaml:"options"`
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	// MetricsAddr, when set, serves Prometheus /metrics on this address for
	// the duration of a run (e.g., ":9464").
	MetricsAddr string `yaml:"metrics_addr"`
}
