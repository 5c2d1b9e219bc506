// Package whisper provides whisper.cpp-backed batch transcription.
//
// Two transcribers are available. [Server] talks to a running whisper-server
// binary over its REST API (POST /inference) and asks for verbose JSON so the
// reply carries per-segment timestamps. [Native] links whisper.cpp through its
// CGO bindings and runs inference in process.
//
// Usage:
//
//	t, err := whisper.NewServer("http://localhost:8080", whisper.WithLanguage("en"))
//	segs, err := t.Transcribe(ctx, clip)
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/stt"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

const (
	defaultLanguage = "en"

	// sampleRate is the only rate whisper.cpp accepts.
	sampleRate = 16000
)

var _ stt.Transcriber = (*Server)(nil)

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithModel sets the model identifier forwarded to whisper-server (e.g.,
// "base.en", "small"). When empty the server uses whichever model it was
// started with, which is the default.
func WithModel(model string) Option {
	return func(s *Server) { s.model = model }
}

// WithLanguage sets the language code sent to whisper-server (e.g., "en",
// "de", "fr"). Defaults to "en"; "auto" lets the server detect it.
func WithLanguage(lang string) Option {
	return func(s *Server) { s.language = lang }
}

// WithHTTPClient replaces the HTTP client. The default has a 10 minute
// timeout since a whole recording is sent in one request.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) { s.httpClient = c }
}

// Server implements stt.Transcriber against a whisper-server HTTP endpoint.
type Server struct {
	serverURL  string
	model      string
	language   string
	httpClient *http.Client
}

// NewServer creates a Server for the whisper-server at serverURL (e.g.,
// "http://localhost:8080"). serverURL must be non-empty.
func NewServer(serverURL string, opts ...Option) (*Server, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	s := &Server{
		serverURL:  strings.TrimRight(serverURL, "/"),
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// inferenceResponse is the verbose_json reply of whisper-server.
type inferenceResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads clip as a 16 kHz WAV file and returns the server's
// segments. Segment bounds are clamped to the clip's duration.
func (s *Server) Transcribe(ctx context.Context, clip audio.Clip) ([]timeline.RawSegment, error) {
	clip = clip.Resample(sampleRate)
	wav := encodeWAV(clip.Samples, sampleRate)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return nil, fmt.Errorf("whisper: write wav data: %w", err)
	}

	fields := [][2]string{
		{"response_format", "verbose_json"},
		{"language", s.language},
		{"model", s.model},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("whisper: write %s field: %w", f[0], err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/inference", &body)
	if err != nil {
		return nil, fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("whisper: read response body: %w", err)
	}

	var result inferenceResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("whisper: parse JSON response: %w", err)
	}

	segs := make([]timeline.RawSegment, 0, len(result.Segments))
	for _, seg := range result.Segments {
		segs = append(segs, timeline.RawSegment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	return stt.Normalize(segs, clip.Seconds()), nil
}
