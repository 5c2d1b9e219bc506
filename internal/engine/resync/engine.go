// Package resync fits independently synthesized speech back onto the timing of
// a source recording.
//
// An [Engine] run takes a [timeline.Timeline], the original audio and the
// replacement speech (one clip per Speech segment, or one continuous stream
// sliced with a [Cursor]) and produces a track of exactly the source's length
// in which every segment occupies its original slot:
//
//  1. Sources are materialised sequentially. In stream mode the cursor hands
//     out consecutive, non-overlapping slices.
//  2. Slots are rendered in parallel by a [SlotRenderer]. NonSpeech slots
//     replay the original audio; Speech slots are cut, padded or time-scaled.
//  3. A [Compositor] overlays every slot at its start offset.
//
// Per-segment failures never abort a run: the slot falls back to silence and
// the degradation is logged and reported. Only a [*CompositionError] or a
// cancelled context fails the run.
package resync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

// Input is everything one run consumes.
type Input struct {
	Timeline *timeline.Timeline

	// Original is the source recording. NonSpeech slots and, with
	// [GapOriginal], uncovered time are copied from it.
	Original audio.Clip

	// Clips holds one replacement clip per segment, indexed like the
	// timeline. Entries for NonSpeech segments are ignored. A missing or
	// empty entry renders its slot silent. Ignored when Stream is set.
	Clips []audio.Clip

	// Stream, when non-nil, is one continuous synthesis of every Speech
	// segment in order. Each Speech segment takes the next slot-length slice.
	Stream *audio.Clip
}

// Result is the output of a run.
type Result struct {
	// Track has exactly round(TotalDuration * SampleRate) samples.
	Track audio.Clip

	// Slots are the segment intervals actually used, after merging.
	Slots []timeline.Slot

	// Reports describe every segment's rendering, indexed like Slots.
	Reports []Report
}

// Degraded returns the reports whose slot fell back to silence or lost part of
// its audio.
func (r *Result) Degraded() []Report {
	var out []Report
	for _, rep := range r.Reports {
		if rep.Err != nil {
			out = append(out, rep)
		}
	}
	return out
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger used for per-segment warnings. Default:
// [observe.Logger] of the run context.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the metrics sink. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine runs the resynchronization. It holds no per-run state and is safe
// for concurrent use; every [Engine.Run] owns its buffers and cursor.
type Engine struct {
	cfg      Config
	renderer *SlotRenderer
	log      *slog.Logger
	metrics  *observe.Metrics
}

// New returns an Engine for cfg. Zero config fields take their defaults.
func New(cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{cfg: cfg, renderer: NewSlotRenderer(cfg)}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// slotJob is one segment's rendering input.
type slotJob struct {
	seg      timeline.Segment
	from, to int
	src      audio.Clip
	partial  bool
	err      error
}

// Run renders and composes in. See the package documentation for the stages.
func (e *Engine) Run(ctx context.Context, in Input) (*Result, error) {
	if in.Timeline == nil {
		return nil, errors.New("resync: nil timeline")
	}
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "resync.Run", trace.WithAttributes(
		attribute.Int("segments", in.Timeline.Len()),
		attribute.Float64("total_duration", in.Timeline.TotalDuration()),
		attribute.Bool("stream", in.Stream != nil),
	))
	defer span.End()

	log := e.log
	if log == nil {
		log = observe.Logger(ctx)
	}

	rate := e.cfg.SampleRate
	total := audio.SampleIndex(in.Timeline.TotalDuration(), rate)
	original := in.Original.Resample(rate)

	jobs := e.materialise(ctx, in, rate, total, log)

	rendered, reports, err := e.render(ctx, jobs, original, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	track, err := e.compose(ctx, jobs, rendered, original, total)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	e.metrics.ComposeDuration.Record(ctx, time.Since(start).Seconds())
	log.Debug("resync: track composed",
		"segments", len(jobs),
		"samples", track.Len(),
		"elapsed", time.Since(start),
	)

	return &Result{
		Track:   track,
		Slots:   in.Timeline.Slots(),
		Reports: reports,
	}, nil
}

// materialise computes slot bounds and assigns each Speech segment its source
// clip. It runs sequentially because the stream cursor threads state across
// segments.
func (e *Engine) materialise(ctx context.Context, in Input, rate, total int, log *slog.Logger) []slotJob {
	segs := in.Timeline.Segments()
	jobs := make([]slotJob, len(segs))

	var (
		cursor *Cursor
		stream audio.Clip
	)
	if in.Stream != nil {
		stream = in.Stream.Resample(rate)
		cursor = NewCursor(stream.Len())
	}

	for i, seg := range segs {
		from := min(audio.SampleIndex(seg.Start, rate), total)
		to := min(audio.SampleIndex(seg.End, rate), total)
		jobs[i] = slotJob{seg: seg, from: from, to: to}
		if seg.Kind != timeline.Speech {
			continue
		}

		if cursor == nil {
			if i < len(in.Clips) {
				jobs[i].src = in.Clips[i]
			}
			continue
		}

		sp, err := cursor.Next(to - from)
		jobs[i].src = stream.Slice(sp.Offset, sp.End())
		if err != nil {
			jobs[i].partial = true
			jobs[i].err = fmt.Errorf("segment %d: %w", i, err)
			e.metrics.CursorExhausted.Add(ctx, 1)
			log.Warn("resync: synthesis stream exhausted, padding slot with silence",
				"segment", i,
				"start", seg.Start,
				"end", seg.End,
				"err", err,
			)
		}
	}
	return jobs
}

// render fits every slot on a bounded worker pool. Results are indexed by
// segment, so completion order does not matter.
func (e *Engine) render(ctx context.Context, jobs []slotJob, original audio.Clip, log *slog.Logger) ([]audio.Clip, []Report, error) {
	ctx, span := observe.StartSpan(ctx, "resync.render")
	defer span.End()

	rendered := make([]audio.Clip, len(jobs))
	reports := make([]Report, len(jobs))
	last := len(jobs) - 1

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.cfg.Workers)
	for i := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			t0 := time.Now()
			clip, rep := e.renderOne(i, jobs[i], original, i == 0, i == last)
			rep.Index = i
			rep.Slot = timeline.Slot{Start: jobs[i].seg.Start, End: jobs[i].seg.End}
			rendered[i], reports[i] = clip, rep

			e.metrics.SlotRenderDuration.Record(egCtx, time.Since(t0).Seconds())
			e.metrics.RecordSlot(egCtx, rep.Kind.String(), string(rep.Outcome))
			if rep.Kind == timeline.Speech && rep.SpeedFactor > 0 {
				e.metrics.SlotSpeedFactor.Record(egCtx, rep.SpeedFactor,
					metric.WithAttributes(attribute.String("outcome", string(rep.Outcome))))
			}

			var empty *EmptySourceAudioError
			if errors.As(rep.Err, &empty) {
				log.Warn("resync: no replacement audio, slot left silent",
					"segment", i,
					"start", jobs[i].seg.Start,
					"end", jobs[i].seg.End,
				)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, fmt.Errorf("resync: render: %w", err)
	}
	return rendered, reports, nil
}

func (e *Engine) renderOne(i int, job slotJob, original audio.Clip, first, last bool) (audio.Clip, Report) {
	slotLen := job.to - job.from
	if job.seg.Kind == timeline.NonSpeech {
		return e.renderer.RenderNonSpeech(original, job.from, job.to), Report{
			Kind:          timeline.NonSpeech,
			Outcome:       OutcomeVerbatim,
			SourceSamples: slotLen,
			SlotSamples:   slotLen,
		}
	}

	if job.partial {
		clip, rep := e.renderer.renderPartial(job.src, slotLen, first, last)
		rep.Err = job.err
		return clip, rep
	}

	clip, rep, err := e.renderer.RenderSpeech(job.src, slotLen, first, last)
	var empty *EmptySourceAudioError
	if errors.As(err, &empty) {
		empty.Index = i
	}
	return clip, rep
}

func (e *Engine) compose(ctx context.Context, jobs []slotJob, rendered []audio.Clip, original audio.Clip, total int) (audio.Clip, error) {
	_, span := observe.StartSpan(ctx, "resync.compose")
	defer span.End()

	comp := NewCompositor(total, e.cfg.SampleRate)
	for i, job := range jobs {
		if err := comp.Overlay(job.from, rendered[i]); err != nil {
			return audio.Clip{}, fmt.Errorf("segment %d: %w", i, err)
		}
	}
	if e.cfg.GapPolicy == GapOriginal {
		comp.FillGaps(original)
	}
	return comp.Track(), nil
}
