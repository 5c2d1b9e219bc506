package dub

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

// clipSynthesizer is implemented by providers that fail over on whole clips,
// such as resilience.TTSFallback.
type clipSynthesizer interface {
	Synthesize(ctx context.Context, voice tts.VoiceProfile, texts ...string) (audio.Clip, error)
}

func (p *Pipeline) synthesize(ctx context.Context, texts ...string) (audio.Clip, error) {
	start := time.Now()
	defer func() {
		p.metrics.TTSDuration.Record(ctx, time.Since(start).Seconds())
	}()
	if cs, ok := p.deps.TTS.(clipSynthesizer); ok {
		return cs.Synthesize(ctx, p.cfg.Voice, texts...)
	}
	return tts.Synthesize(ctx, p.deps.TTS, p.cfg.Voice, texts...)
}

// synthesizeClips renders one clip per Speech segment. A failed segment is
// left empty; the engine renders its slot silent and reports it.
func (p *Pipeline) synthesizeClips(ctx context.Context, tl *timeline.Timeline) ([]audio.Clip, error) {
	segs := tl.Segments()
	clips := make([]audio.Clip, len(segs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.Concurrency)
	for i, seg := range segs {
		if seg.Kind != timeline.Speech {
			continue
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			clip, err := p.synthesize(egCtx, seg.SpeechText())
			if err != nil {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				p.logger(egCtx).Warn("dub: synthesis failed, slot will be silent",
					"segment", i,
					"start", seg.Start,
					"end", seg.End,
					"err", err,
				)
				return nil
			}
			clips[i] = clip
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("dub: synthesize: %w", err)
	}
	return clips, nil
}

// synthesizeStream renders every Speech segment, in order, as one utterance.
func (p *Pipeline) synthesizeStream(ctx context.Context, tl *timeline.Timeline) (audio.Clip, error) {
	var texts []string
	for _, seg := range tl.Segments() {
		if seg.Kind == timeline.Speech {
			texts = append(texts, seg.SpeechText())
		}
	}
	if len(texts) == 0 {
		return audio.Clip{SampleRate: audio.SampleRate}, nil
	}
	clip, err := p.synthesize(ctx, texts...)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("dub: synthesize stream: %w", err)
	}
	p.logger(ctx).Info("dub: continuous stream synthesized",
		"segments", len(texts),
		"samples", clip.Len(),
		"seconds", clip.Seconds(),
	)
	return clip, nil
}
