// Package dub wires the collaborators of a dubbing run around the
// resynchronization engine.
//
// A [Pipeline] takes the original recording and its timed transcript, and:
//
//  1. builds the [timeline.Timeline] over the recording's full duration;
//  2. translates every untranslated Speech segment, keeping the original
//     text for any part whose translation fails;
//  3. synthesizes the spoken text, either one clip per segment
//     ([ModePerSegment]) or one continuous stream for the whole script
//     ([ModeContinuous]);
//  4. hands everything to the [resync.Engine], which fits the speech back onto
//     the original slots.
//
// Transcription is a separate step ([Pipeline.Transcribe]) so callers can
// reuse a transcript document instead of re-running speech-to-text.
package dub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cyprienbrisset/video-translate-to-text/internal/engine/resync"
	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/stt"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/translate"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

// Mode selects how translated text is synthesized.
type Mode string

const (
	// ModePerSegment synthesizes one clip per Speech segment.
	ModePerSegment Mode = "per_segment"

	// ModeContinuous synthesizes every Speech segment as one stream that the
	// engine slices with its cursor.
	ModeContinuous Mode = "continuous"
)

const (
	defaultConcurrency       = 4
	defaultTranslateAttempts = 3
)

// ErrNoTranscriber is returned by [Pipeline.Transcribe] when no transcriber
// was configured.
var ErrNoTranscriber = errors.New("dub: no transcriber configured")

// Deps holds the collaborators of a pipeline. TTS is required; the others are
// optional.
type Deps struct {
	// Transcriber is used by [Pipeline.Transcribe].
	Transcriber stt.Transcriber

	// Translator, when nil, leaves segments untranslated: segments that
	// already carry a translation use it, the rest are spoken as transcribed.
	Translator translate.Provider

	TTS tts.Provider

	// Engine defaults to resync.New with the zero config.
	Engine *resync.Engine

	Metrics *observe.Metrics
	Logger  *slog.Logger
}

// Config tunes a pipeline.
type Config struct {
	SourceLanguage string
	TargetLanguage string

	Voice tts.VoiceProfile

	// Mode defaults to [ModePerSegment].
	Mode Mode

	// Concurrency bounds parallel translation and synthesis requests.
	// Default: 4.
	Concurrency int

	// TranslateAttempts is how many times one text part is sent to the
	// translator before the original part is kept. Default: 3.
	TranslateAttempts int

	// TimelineOptions are passed to [timeline.Build].
	TimelineOptions []timeline.Option
}

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModePerSegment
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.TranslateAttempts <= 0 {
		c.TranslateAttempts = defaultTranslateAttempts
	}
	return c
}

// Pipeline runs dubbing jobs. It is safe for concurrent use.
type Pipeline struct {
	deps    Deps
	cfg     Config
	metrics *observe.Metrics
}

// New returns a pipeline for deps and cfg.
func New(deps Deps, cfg Config) *Pipeline {
	if deps.Engine == nil {
		deps.Engine = resync.New(resync.Config{}, resync.WithMetrics(deps.Metrics))
	}
	m := deps.Metrics
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return &Pipeline{deps: deps, cfg: cfg.withDefaults(), metrics: m}
}

func (p *Pipeline) logger(ctx context.Context) *slog.Logger {
	if p.deps.Logger != nil {
		return p.deps.Logger
	}
	return observe.Logger(ctx)
}

// Transcribe runs speech-to-text over original and returns the raw segment
// list, ready for [Pipeline.Run].
func (p *Pipeline) Transcribe(ctx context.Context, original audio.Clip) ([]timeline.RawSegment, error) {
	if p.deps.Transcriber == nil {
		return nil, ErrNoTranscriber
	}
	ctx, span := observe.StartSpan(ctx, "dub.Transcribe", trace.WithAttributes(
		attribute.Float64("duration", original.Seconds()),
	))
	defer span.End()

	start := time.Now()
	segs, err := p.deps.Transcriber.Transcribe(ctx, original)
	p.metrics.STTDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("dub: transcribe: %w", err)
	}
	p.logger(ctx).Info("dub: transcribed",
		"segments", len(segs),
		"elapsed", time.Since(start),
	)
	return segs, nil
}

// Run dubs original using the transcript raw. The returned track has exactly
// the original's length.
//
// Per-segment translation and synthesis failures degrade single slots and
// are reported in the result. Invalid timelines, a failed continuous stream,
// composition errors and cancellation fail the run.
func (p *Pipeline) Run(ctx context.Context, original audio.Clip, raw []timeline.RawSegment) (*resync.Result, error) {
	if p.deps.TTS == nil {
		return nil, errors.New("dub: no TTS provider configured")
	}
	ctx, span := observe.StartSpan(ctx, "dub.Run", trace.WithAttributes(
		attribute.Int("raw_segments", len(raw)),
		attribute.String("mode", string(p.cfg.Mode)),
		attribute.String("target_language", p.cfg.TargetLanguage),
	))
	defer span.End()

	res, err := p.run(ctx, original, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, original audio.Clip, raw []timeline.RawSegment) (*resync.Result, error) {
	log := p.logger(ctx)

	tl, err := timeline.Build(raw, original.Seconds(), p.cfg.TimelineOptions...)
	if err != nil {
		return nil, fmt.Errorf("dub: build timeline: %w", err)
	}
	log.Info("dub: timeline built",
		"raw_segments", len(raw),
		"segments", tl.Len(),
		"total_duration", tl.TotalDuration(),
	)

	if p.deps.Translator != nil {
		translations, err := p.translateAll(ctx, tl)
		if err != nil {
			return nil, err
		}
		tl = tl.WithTranslations(translations)
	}

	in := resync.Input{Timeline: tl, Original: original}
	switch p.cfg.Mode {
	case ModeContinuous:
		stream, err := p.synthesizeStream(ctx, tl)
		if err != nil {
			return nil, err
		}
		in.Stream = &stream
	default:
		clips, err := p.synthesizeClips(ctx, tl)
		if err != nil {
			return nil, err
		}
		in.Clips = clips
	}

	res, err := p.deps.Engine.Run(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("dub: resync: %w", err)
	}
	if degraded := res.Degraded(); len(degraded) > 0 {
		log.Warn("dub: some slots were degraded", "count", len(degraded))
	}
	return res, nil
}
