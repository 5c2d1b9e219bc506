package deepgram_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/provider/stt/deepgram"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

func TestNew_EmptyAPIKey_ReturnsError(t *testing.T) {
	if _, err := deepgram.New(""); err == nil {
		t.Fatal("expected error for empty API key, got nil")
	}
}

func TestTranscribe_Utterances(t *testing.T) {
	var (
		gotQuery url.Values
		gotAuth  string
		gotBytes int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		gotBytes = len(data)
		io.WriteString(w, `{"results": {"utterances": [
			{"start": 0.2, "end": 1.1, "transcript": "Hello there."},
			{"start": 1.0, "end": 9.0, "transcript": "General Kenobi."}
		]}}`)
	}))
	defer srv.Close()

	p, err := deepgram.New("secret",
		deepgram.WithEndpoint(srv.URL),
		deepgram.WithModel("nova-2"),
		deepgram.WithLanguage("de"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	clip := audio.NewSilence(2*24000, 24000)
	segs, err := p.Transcribe(context.Background(), clip)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	want := []timeline.RawSegment{
		{Start: 0.2, End: 1.1, Text: "Hello there."},
		{Start: 1.1, End: 2, Text: "General Kenobi."},
	}
	if !reflect.DeepEqual(segs, want) {
		t.Fatalf("segments = %+v\nwant %+v", segs, want)
	}
	if gotAuth != "Token secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBytes != clip.Len()*2 {
		t.Errorf("uploaded %d bytes, want %d", gotBytes, clip.Len()*2)
	}
	wantQuery := map[string]string{
		"model":       "nova-2",
		"language":    "de",
		"utterances":  "true",
		"encoding":    "linear16",
		"sample_rate": "24000",
		"channels":    "1",
	}
	for k, v := range wantQuery {
		if got := gotQuery.Get(k); got != v {
			t.Errorf("query %s = %q, want %q", k, got, v)
		}
	}
}

func TestTranscribe_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"err_msg":"invalid credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, err := deepgram.New("bad", deepgram.WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Transcribe(context.Background(), audio.NewSilence(160, 16000)); err == nil {
		t.Fatal("expected error for HTTP 401, got nil")
	}
}
