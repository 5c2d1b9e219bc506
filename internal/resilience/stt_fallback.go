package resilience

import (
	"context"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/stt"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

// TranscriberFallback implements [stt.Transcriber] with failover across
// several transcription backends.
type TranscriberFallback struct {
	group *FallbackGroup[stt.Transcriber]
}

var _ stt.Transcriber = (*TranscriberFallback)(nil)

// NewTranscriberFallback creates a [TranscriberFallback] with primary as the
// preferred backend.
func NewTranscriberFallback(primary stt.Transcriber, primaryName string, cfg FallbackConfig) *TranscriberFallback {
	if cfg.Kind == "" {
		cfg.Kind = "stt"
	}
	return &TranscriberFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional transcription backend.
func (f *TranscriberFallback) AddFallback(name string, t stt.Transcriber) {
	f.group.AddFallback(name, t)
}

// Transcribe implements stt.Transcriber.
func (f *TranscriberFallback) Transcribe(ctx context.Context, clip audio.Clip) ([]timeline.RawSegment, error) {
	return Do(ctx, f.group, func(ctx context.Context, t stt.Transcriber) ([]timeline.RawSegment, error) {
		return t.Transcribe(ctx, clip)
	})
}

// Ready reports whether any transcriber still accepts calls.
func (f *TranscriberFallback) Ready() error { return f.group.Ready() }
