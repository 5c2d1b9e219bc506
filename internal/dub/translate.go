package dub

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/translate"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

// translateAll returns one translation per segment, indexed like the
// timeline. NonSpeech and already translated segments get "".
func (p *Pipeline) translateAll(ctx context.Context, tl *timeline.Timeline) ([]string, error) {
	segs := tl.Segments()
	out := make([]string, len(segs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.Concurrency)
	for i, seg := range segs {
		if seg.Kind != timeline.Speech || seg.Translated != "" {
			continue
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			start := time.Now()
			out[i] = p.translateText(egCtx, i, seg.Text)
			p.metrics.TranslateDuration.Record(egCtx, time.Since(start).Seconds())
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// translateText splits text into provider-sized parts, translates each and
// joins the results with spaces. A part that cannot be translated keeps its
// original text.
func (p *Pipeline) translateText(ctx context.Context, index int, text string) string {
	parts := tts.SplitText(text, tts.MaxFragmentLen)
	done := make([]string, 0, len(parts))
	for n, part := range parts {
		tr, err := p.translatePart(ctx, part)
		if err != nil {
			p.logger(ctx).Warn("dub: translation failed, keeping original text",
				"segment", index,
				"part", n,
				"parts", len(parts),
				"err", err,
			)
			tr = part
		}
		done = append(done, tr)
	}
	return strings.Join(done, " ")
}

func (p *Pipeline) translatePart(ctx context.Context, part string) (string, error) {
	req := translate.Request{
		Text:           part,
		SourceLanguage: p.cfg.SourceLanguage,
		TargetLanguage: p.cfg.TargetLanguage,
	}
	var lastErr error
	for range p.cfg.TranslateAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := p.deps.Translator.Translate(ctx, req)
		if err == nil && strings.TrimSpace(out) == "" {
			err = translate.ErrEmptyTranslation
		}
		if err == nil {
			return strings.TrimSpace(out), nil
		}
		lastErr = err
	}
	return "", lastErr
}
