// Package mock provides a test double for the translate.Provider interface.
//
// Example:
//
//	p := &mock.Provider{TranslateFunc: func(r translate.Request) (string, error) {
//	    return strings.ToUpper(r.Text), nil
//	}}
package mock

import (
	"context"
	"sync"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/translate"
)

// Provider is a mock implementation of translate.Provider. With no fields set
// it returns the request text unchanged.
type Provider struct {
	mu sync.Mutex

	// TranslateFunc, when set, computes the reply and overrides Result and Err.
	TranslateFunc func(req translate.Request) (string, error)

	// Result is returned when non-empty.
	Result string

	// Err, if non-nil, is returned as the error from Translate.
	Err error

	// TranslateCalls records every request in call order.
	TranslateCalls []translate.Request
}

// Translate records the call and returns the configured reply.
func (p *Provider) Translate(_ context.Context, req translate.Request) (string, error) {
	p.mu.Lock()
	p.TranslateCalls = append(p.TranslateCalls, req)
	fn, result, err := p.TranslateFunc, p.Result, p.Err
	p.mu.Unlock()

	switch {
	case fn != nil:
		return fn(req)
	case err != nil:
		return "", err
	case result != "":
		return result, nil
	default:
		return req.Text, nil
	}
}

// Calls returns a snapshot of the recorded requests.
func (p *Provider) Calls() []translate.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]translate.Request, len(p.TranslateCalls))
	copy(out, p.TranslateCalls)
	return out
}

// Reset clears all recorded calls.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranslateCalls = nil
}

var _ translate.Provider = (*Provider)(nil)
