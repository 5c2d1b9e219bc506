// Package mock provides a test double for the tts.Provider interface.
//
// Provider emits a fixed sequence of PCM chunks for every stream and records
// the text it was fed, so tests can check both what was synthesized and how
// it was fragmented.
//
//	p := &mock.Provider{SynthesizeChunks: [][]byte{pcm}}
//	clip, _ := tts.Synthesize(ctx, p, voice, "Bonjour.")
package mock

import (
	"context"
	"sync"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/tts"
)

// SynthesizeStreamCall records a single invocation of SynthesizeStream.
type SynthesizeStreamCall struct {
	Voice tts.VoiceProfile

	// Fragments is every text fragment read from the input channel. It is
	// complete once the returned audio channel has been closed.
	Fragments []string
}

// Provider is a mock implementation of tts.Provider.
type Provider struct {
	mu sync.Mutex

	// SynthesizeChunks is emitted on every stream after the text channel
	// closes.
	SynthesizeChunks [][]byte

	// SynthesizeFunc, when set, computes the chunks from the fragments and
	// overrides SynthesizeChunks.
	SynthesizeFunc func(fragments []string) [][]byte

	// SynthesizeErr, if non-nil, is returned from SynthesizeStream.
	SynthesizeErr error

	// ListVoicesResult and ListVoicesErr are returned by ListVoices.
	ListVoicesResult []tts.VoiceProfile
	ListVoicesErr    error

	// SynthesizeStreamCalls records every call to SynthesizeStream in order.
	SynthesizeStreamCalls []SynthesizeStreamCall

	// ListVoicesCalls counts calls to ListVoices.
	ListVoicesCalls int
}

// SynthesizeStream records the call, reads text until it closes and then
// emits the configured chunks.
func (p *Provider) SynthesizeStream(ctx context.Context, text <-chan string, voice tts.VoiceProfile) (<-chan []byte, error) {
	p.mu.Lock()
	if p.SynthesizeErr != nil {
		err := p.SynthesizeErr
		p.SynthesizeStreamCalls = append(p.SynthesizeStreamCalls, SynthesizeStreamCall{Voice: voice})
		p.mu.Unlock()
		return nil, err
	}
	idx := len(p.SynthesizeStreamCalls)
	p.SynthesizeStreamCalls = append(p.SynthesizeStreamCalls, SynthesizeStreamCall{Voice: voice})
	chunks := make([][]byte, len(p.SynthesizeChunks))
	copy(chunks, p.SynthesizeChunks)
	fn := p.SynthesizeFunc
	p.mu.Unlock()

	ch := make(chan []byte, 1)
	go func() {
		defer close(ch)
		var frags []string
	read:
		for {
			select {
			case t, ok := <-text:
				if !ok {
					break read
				}
				frags = append(frags, t)
			case <-ctx.Done():
				go func() {
					for range text {
					}
				}()
				return
			}
		}
		p.mu.Lock()
		p.SynthesizeStreamCalls[idx].Fragments = frags
		p.mu.Unlock()

		if fn != nil {
			chunks = fn(frags)
		}
		for _, c := range chunks {
			select {
			case <-ctx.Done():
				return
			case ch <- c:
			}
		}
	}()
	return ch, nil
}

// ListVoices records the call and returns ListVoicesResult, ListVoicesErr.
func (p *Provider) ListVoices(_ context.Context) ([]tts.VoiceProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListVoicesCalls++
	return p.ListVoicesResult, p.ListVoicesErr
}

// Calls returns a snapshot of the recorded SynthesizeStream calls.
func (p *Provider) Calls() []SynthesizeStreamCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SynthesizeStreamCall, len(p.SynthesizeStreamCalls))
	copy(out, p.SynthesizeStreamCalls)
	return out
}

// Reset clears all recorded calls.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SynthesizeStreamCalls = nil
	p.ListVoicesCalls = 0
}

var _ tts.Provider = (*Provider)(nil)
