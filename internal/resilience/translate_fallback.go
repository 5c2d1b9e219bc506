package resilience

import (
	"context"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/translate"
)

// TranslateFallback implements [translate.Provider] with failover across
// several translation backends.
type TranslateFallback struct {
	group *FallbackGroup[translate.Provider]
}

var _ translate.Provider = (*TranslateFallback)(nil)

// NewTranslateFallback creates a [TranslateFallback] with primary as the
// preferred backend.
func NewTranslateFallback(primary translate.Provider, primaryName string, cfg FallbackConfig) *TranslateFallback {
	if cfg.Kind == "" {
		cfg.Kind = "translate"
	}
	return &TranslateFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional translation backend.
func (f *TranslateFallback) AddFallback(name string, provider translate.Provider) {
	f.group.AddFallback(name, provider)
}

// Translate implements translate.Provider.
func (f *TranslateFallback) Translate(ctx context.Context, req translate.Request) (string, error) {
	return Do(ctx, f.group, func(ctx context.Context, p translate.Provider) (string, error) {
		return p.Translate(ctx, req)
	})
}

// Ready reports whether any translation backend still accepts calls.
func (f *TranslateFallback) Ready() error { return f.group.Ready() }
