// Package mock provides a test double for the summarize.Provider interface.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/summarize"
)

// Provider is a mock implementation of summarize.Provider. With no fields set
// it returns "summary <min>-<max>".
type Provider struct {
	mu sync.Mutex

	// SummarizeFunc, when set, computes the reply and overrides Err.
	SummarizeFunc func(req summarize.Request) (string, error)

	// Err, if non-nil, is returned as the error from Summarize.
	Err error

	// SummarizeCalls records every request in call order.
	SummarizeCalls []summarize.Request
}

// Summarize records the call and returns the configured reply.
func (p *Provider) Summarize(_ context.Context, req summarize.Request) (string, error) {
	p.mu.Lock()
	p.SummarizeCalls = append(p.SummarizeCalls, req)
	fn, err := p.SummarizeFunc, p.Err
	p.mu.Unlock()

	switch {
	case fn != nil:
		return fn(req)
	case err != nil:
		return "", err
	default:
		return fmt.Sprintf("summary %d-%d", req.MinWords, req.MaxWords), nil
	}
}

// Calls returns a snapshot of the recorded requests.
func (p *Provider) Calls() []summarize.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]summarize.Request, len(p.SummarizeCalls))
	copy(out, p.SummarizeCalls)
	return out
}

var _ summarize.Provider = (*Provider)(nil)
