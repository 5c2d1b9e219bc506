// Package transcript reads and writes the JSON transcript documents exchanged
// between the transcription, translation and dubbing stages.
//
// A document looks like:
//
//	{
//	  "language": "en",
//	  "text": "Hello there. [music] Goodbye.",
//	  "segments": [
//	    {"start": 0.0, "end": 1.4, "text": "Hello there.", "text_translated": "Bonjour."},
//	    {"start": 1.4, "end": 3.0, "text": "[music]"}
//	  ],
//	  "summaries": {"short": "...", "medium": "...", "long": "..."}
//	}
//
// Older documents store the source text as text_original; it is read as a
// fallback for text.
package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

// Segment is one timed transcript entry.
type Segment struct {
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Text           string  `json:"text"`
	TextOriginal   string  `json:"text_original,omitempty"`
	TextTranslated string  `json:"text_translated,omitempty"`
}

// SourceText returns Text, or TextOriginal when Text is empty.
func (s Segment) SourceText() string {
	if s.Text != "" {
		return s.Text
	}
	return s.TextOriginal
}

// SpokenText returns the text to synthesize: the translation when present,
// else the source text.
func (s Segment) SpokenText() string {
	if t := strings.TrimSpace(s.TextTranslated); t != "" {
		return s.TextTranslated
	}
	return s.SourceText()
}

// Summaries holds transcript summaries at three lengths.
type Summaries struct {
	Short  string `json:"short"`
	Medium string `json:"medium"`
	Long   string `json:"long"`
}

// Document is a full transcript.
type Document struct {
	Language  string     `json:"language,omitempty"`
	Text      string     `json:"text,omitempty"`
	Segments  []Segment  `json:"segments"`
	Summaries *Summaries `json:"summaries,omitempty"`
}

// FromRaw builds a document from timeline input segments. Text is the
// space-joined source text of every segment.
func FromRaw(language string, raw []timeline.RawSegment) *Document {
	doc := &Document{Language: language, Segments: make([]Segment, len(raw))}
	texts := make([]string, 0, len(raw))
	for i, r := range raw {
		doc.Segments[i] = Segment{
			Start:          r.Start,
			End:            r.End,
			Text:           r.Text,
			TextTranslated: r.Translated,
		}
		if t := strings.TrimSpace(r.Text); t != "" {
			texts = append(texts, t)
		}
	}
	doc.Text = strings.Join(texts, " ")
	return doc
}

// RawSegments converts the document to timeline input. The source text is
// kept in Text; the translation, if any, in Translated.
func (d *Document) RawSegments() []timeline.RawSegment {
	out := make([]timeline.RawSegment, len(d.Segments))
	for i, s := range d.Segments {
		out[i] = timeline.RawSegment{
			Start:      s.Start,
			End:        s.End,
			Text:       s.SourceText(),
			Translated: s.TextTranslated,
		}
	}
	return out
}

// FullText returns Text, or the space-joined source text of every non-marker
// segment when Text is empty.
func (d *Document) FullText() string {
	if t := strings.TrimSpace(d.Text); t != "" {
		return t
	}
	texts := make([]string, 0, len(d.Segments))
	for _, s := range d.Segments {
		t := strings.TrimSpace(s.SourceText())
		if t == "" || timeline.IsMarker(t) {
			continue
		}
		texts = append(texts, t)
	}
	return strings.Join(texts, " ")
}

// End returns the end time of the last segment, or 0 for an empty document.
func (d *Document) End() float64 {
	if len(d.Segments) == 0 {
		return 0
	}
	return d.Segments[len(d.Segments)-1].End
}

// Decode reads a document from r.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("transcript: decode: %w", err)
	}
	return &doc, nil
}

// Load reads the document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: open %q: %w", path, err)
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w (file %q)", err, path)
	}
	return doc, nil
}

// Encode writes doc to w as indented JSON with non-ASCII text left as is.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("transcript: encode: %w", err)
	}
	return nil
}

// Save writes doc to path, creating parent directories as needed. The file is
// written to a temporary sibling first and renamed into place.
func Save(path string, doc *Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("transcript: create dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("transcript: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("transcript: rename %q: %w", path, err)
	}
	return nil
}
