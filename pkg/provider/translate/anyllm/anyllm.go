// Package anyllm provides an LLM-backed translation and summarization provider built on
// github.com/mozilla-ai/any-llm-go, a unified multi-provider interface that
// supports OpenAI, Anthropic, Gemini, Ollama, DeepSeek, Mistral, Groq, and more.
//
// Usage:
//
//	p, err := anyllm.New("openai", "gpt-4o-mini", anyllmlib.WithAPIKey("sk-..."))
//	fr, err := p.Translate(ctx, translate.Request{Text: "Hello", TargetLanguage: "fr"})
package anyllm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/summarize"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/translate"
)

// defaultTemperature keeps translations close to literal.
const defaultTemperature = 0.2

var (
	_ translate.Provider = (*Provider)(nil)
	_ summarize.Provider = (*Provider)(nil)
)

// completeFunc sends one chat completion and returns the first choice's text.
type completeFunc func(ctx context.Context, params anyllmlib.CompletionParams) (string, error)

// Provider implements translate.Provider and summarize.Provider by prompting a
// chat model.
type Provider struct {
	complete    completeFunc
	model       string
	temperature float64
}

// New creates a new Provider backed by the given LLM provider name.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama", "deepseek",
// "mistral", "groq", "llamacpp", "llamafile".
//
// opts are any-llm-go configuration options (e.g., anyllmlib.WithAPIKey,
// anyllmlib.WithBaseURL). Without an API key option the backend falls back to
// its environment variable (e.g., OPENAI_API_KEY).
func New(providerName, model string, opts ...anyllmlib.Option) (*Provider, error) {
	if providerName == "" {
		return nil, errors.New("anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, errors.New("anyllm: model must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}

	complete := func(ctx context.Context, params anyllmlib.CompletionParams) (string, error) {
		resp, err := backend.Completion(ctx, params)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("empty choices in response")
		}
		return resp.Choices[0].Message.ContentString(), nil
	}
	return &Provider{complete: complete, model: model, temperature: defaultTemperature}, nil
}

// Names lists the supported backend names.
func Names() []string {
	return []string{"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile"}
}

// createBackend creates the underlying any-llm-go provider for the given provider name.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: %s", providerName, strings.Join(Names(), ", "))
	}
}

// Translate implements translate.Provider.
func (p *Provider) Translate(ctx context.Context, req translate.Request) (string, error) {
	out, err := p.complete(ctx, p.buildParams(req))
	if err != nil {
		return "", fmt.Errorf("anyllm: completion: %w", err)
	}
	out = cleanReply(out)
	if out == "" {
		return "", translate.ErrEmptyTranslation
	}
	return out, nil
}

// buildParams turns req into a two-message chat: instructions, then the text.
func (p *Provider) buildParams(req translate.Request) anyllmlib.CompletionParams {
	temp := p.temperature
	return anyllmlib.CompletionParams{
		Model: p.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: systemPrompt(req.SourceLanguage, req.TargetLanguage)},
			{Role: "user", Content: req.Text},
		},
		Temperature: &temp,
	}
}

// Summarize implements summarize.Provider.
func (p *Provider) Summarize(ctx context.Context, req summarize.Request) (string, error) {
	temp := p.temperature
	out, err := p.complete(ctx, anyllmlib.CompletionParams{
		Model: p.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: summaryPrompt(req)},
			{Role: "user", Content: req.Text},
		},
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("anyllm: completion: %w", err)
	}
	out = cleanReply(out)
	if out == "" {
		return "", summarize.ErrEmptySummary
	}
	return out, nil
}

func summaryPrompt(req summarize.Request) string {
	var b strings.Builder
	b.WriteString("You summarize video transcripts. ")
	switch {
	case req.MinWords > 0 && req.MaxWords > 0:
		fmt.Fprintf(&b, "Write between %d and %d words. ", req.MinWords, req.MaxWords)
	case req.MaxWords > 0:
		fmt.Fprintf(&b, "Write at most %d words. ", req.MaxWords)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, "Write in %q. ", req.Language)
	}
	b.WriteString("Ignore bracketed annotations such as [music]. ")
	b.WriteString("Reply with the summary only, without a title or commentary.")
	return b.String()
}

func systemPrompt(source, target string) string {
	from := "the source language"
	if source != "" {
		from = fmt.Sprintf("%q", source)
	}
	return fmt.Sprintf(
		"You translate transcript lines for video dubbing from %s to %q. "+
			"The translation is spoken over the original timing, so keep it about as long as the source. "+
			"Keep bracketed annotations such as [music] unchanged. "+
			"Reply with the translation only, without quotes or commentary.",
		from, target)
}

// cleanReply strips whitespace and one pair of wrapping quotes models
// sometimes add.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range [][2]string{{`"`, `"`}, {"«", "»"}, {"“", "”"}} {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			return strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}
	return s
}
