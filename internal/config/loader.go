package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt":       {"whisper", "whisper-native", "deepgram"},
	"translate": {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"tts":       {"elevenlabs", "openai"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// An empty document yields the zero config.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// Engine
	e := cfg.Engine
	if e.MinSegmentDuration < 0 {
		errs = append(errs, fmt.Errorf("engine.min_segment_duration %.3f must not be negative", e.MinSegmentDuration))
	}
	if e.MergePolicy != "" && !e.MergePolicy.IsValid() {
		errs = append(errs, fmt.Errorf("engine.merge_policy %q is invalid; valid values: once, cascade", e.MergePolicy))
	}
	if e.MinSpeed < 0 || e.MinSpeed > 1 {
		errs = append(errs, fmt.Errorf("engine.min_speed %.2f is out of range (0, 1]", e.MinSpeed))
	}
	if e.MaxSpeed != 0 && e.MaxSpeed < 1 {
		errs = append(errs, fmt.Errorf("engine.max_speed %.2f must be at least 1", e.MaxSpeed))
	}
	if e.FadeMs < 0 {
		errs = append(errs, fmt.Errorf("engine.fade_ms %.1f must not be negative", e.FadeMs))
	}
	if e.TrimFadeMaxMs < 0 {
		errs = append(errs, fmt.Errorf("engine.trim_fade_max_ms %.1f must not be negative", e.TrimFadeMaxMs))
	}
	if e.TrimFadeRatio < 0 || e.TrimFadeRatio > 1 {
		errs = append(errs, fmt.Errorf("engine.trim_fade_ratio %.2f is out of range [0, 1]", e.TrimFadeRatio))
	}
	if e.GapPolicy != "" && !e.GapPolicy.IsValid() {
		errs = append(errs, fmt.Errorf("engine.gap_policy %q is invalid; valid values: silence, original", e.GapPolicy))
	}
	if e.Workers < 0 {
		errs = append(errs, fmt.Errorf("engine.workers %d must not be negative", e.Workers))
	}

	// Dubbing
	d := cfg.Dubbing
	if d.TTSMode != "" && !d.TTSMode.IsValid() {
		errs = append(errs, fmt.Errorf("dubbing.tts_mode %q is invalid; valid values: per_segment, continuous", d.TTSMode))
	}
	if d.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("dubbing.concurrency %d must not be negative", d.Concurrency))
	}
	if cfg.Providers.Translate.Name != "" && d.TargetLanguage == "" {
		errs = append(errs, errors.New("dubbing.target_language is required when providers.translate is configured"))
	}

	// Providers
	p := cfg.Providers
	errs = append(errs, validateEntries("stt", p.STT, p.STTFallbacks)...)
	errs = append(errs, validateEntries("translate", p.Translate, p.TranslateFallbacks)...)
	errs = append(errs, validateEntries("tts", p.TTS, p.TTSFallbacks)...)
	validateProviderName("translate", p.Summarize.Name)

	return errors.Join(errs...)
}

// validateEntries checks a primary entry and its fallbacks. Fallbacks need a
// name and a primary; unknown names only warn.
func validateEntries(kind string, primary ProviderEntry, fallbacks []ProviderEntry) []error {
	var errs []error
	validateProviderName(kind, primary.Name)
	if primary.Name == "" && len(fallbacks) > 0 {
		errs = append(errs, fmt.Errorf("providers.%s_fallbacks requires providers.%s", kind, kind))
	}
	for i, fb := range fallbacks {
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("providers.%s_fallbacks[%d].name is required", kind, i))
			continue
		}
		validateProviderName(kind, fb.Name)
	}
	return errs
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
