// Package summary condenses a transcript into short, medium and long
// summaries with a [summarize.Provider].
//
// The three lengths are requested concurrently. A summary is all or nothing:
// if any length fails, [Generator.Generate] returns the first error.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/cyprienbrisset/video-translate-to-text/internal/observe"
	"github.com/cyprienbrisset/video-translate-to-text/internal/transcript"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/summarize"
)

// Length names one summary size.
type Length string

const (
	Short  Length = "short"
	Medium Length = "medium"
	Long   Length = "long"
)

// Lengths lists every length in ascending order.
var Lengths = []Length{Short, Medium, Long}

// Words returns the word range requested for l.
func (l Length) Words() (minWords, maxWords int) {
	switch l {
	case Short:
		return 50, 100
	case Medium:
		return 100, 200
	case Long:
		return 300, 500
	default:
		return 0, 0
	}
}

// ErrEmptyText is returned when there is nothing to summarize.
var ErrEmptyText = errors.New("summary: transcript has no text")

// Option configures a [Generator].
type Option func(*Generator)

// WithLanguage sets the language the summaries are written in. Default: the
// language of the transcript.
func WithLanguage(lang string) Option {
	return func(g *Generator) { g.language = lang }
}

// WithMetrics sets the metrics sink. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// Generator produces transcript summaries.
type Generator struct {
	p        summarize.Provider
	language string
	metrics  *observe.Metrics
}

// New returns a Generator backed by p.
func New(p summarize.Provider, opts ...Option) *Generator {
	g := &Generator{p: p}
	for _, o := range opts {
		o(g)
	}
	if g.metrics == nil {
		g.metrics = observe.DefaultMetrics()
	}
	return g
}

// Generate summarizes text at every length.
func (g *Generator) Generate(ctx context.Context, text string) (*transcript.Summaries, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	ctx, span := observe.StartSpan(ctx, "summary.Generate",
		trace.WithAttributes(attribute.Int("chars", len(text))))
	defer span.End()

	results := make([]string, len(Lengths))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, l := range Lengths {
		eg.Go(func() error {
			s, err := g.one(egCtx, text, l)
			if err != nil {
				return fmt.Errorf("summary: %s: %w", l, err)
			}
			results[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	sums := &transcript.Summaries{Short: results[0], Medium: results[1], Long: results[2]}
	observe.Logger(ctx).Debug("summary: generated",
		"short_words", len(strings.Fields(sums.Short)),
		"medium_words", len(strings.Fields(sums.Medium)),
		"long_words", len(strings.Fields(sums.Long)),
	)
	return sums, nil
}

func (g *Generator) one(ctx context.Context, text string, l Length) (string, error) {
	minWords, maxWords := l.Words()
	start := time.Now()
	s, err := g.p.Summarize(ctx, summarize.Request{
		Text:     text,
		Language: g.language,
		MinWords: minWords,
		MaxWords: maxWords,
	})
	g.metrics.SummarizeDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("length", string(l))))
	return s, err
}

// Document summarizes doc and stores the result on it.
func (g *Generator) Document(ctx context.Context, doc *transcript.Document) error {
	if g.language == "" {
		g = &Generator{p: g.p, language: doc.Language, metrics: g.metrics}
	}
	sums, err := g.Generate(ctx, doc.FullText())
	if err != nil {
		return err
	}
	doc.Summaries = sums
	return nil
}
