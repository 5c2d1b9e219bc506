package timeline_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/timeline"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestIsMarker(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"[music]", true},
		{"  [applause] ", true},
		{"[]", true},
		{"hello", false},
		{"[music] hello", false},
		{"hello [laugh]", false},
		{"[music] [applause]", true},
		{"[laughs] hello [applause]", false},
		{"[laughs] hello", false},
		{"[[nested]]", false},
		{"[music] ]", false},
		{"[", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := timeline.IsMarker(tt.text); got != tt.want {
			t.Errorf("IsMarker(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestBuild_ClassifiesSegments(t *testing.T) {
	tl, err := timeline.Build([]timeline.RawSegment{
		{Start: 0, End: 2, Text: "[music]"},
		{Start: 2, End: 5, Text: " hello ", Translated: "bonjour"},
		{Start: 5, End: 6, Text: "[applause]", Translated: "ignored"},
	}, 6)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tl.Len())
	}
	want := []timeline.Segment{
		{Start: 0, End: 2, Kind: timeline.NonSpeech, Text: "[music]"},
		{Start: 2, End: 5, Kind: timeline.Speech, Text: "hello", Translated: "bonjour"},
		{Start: 5, End: 6, Kind: timeline.NonSpeech, Text: "[applause]"},
	}
	if got := tl.Segments(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Segments = %+v\nwant %+v", got, want)
	}
	if tl.TotalDuration() != 6 {
		t.Errorf("TotalDuration = %v, want 6", tl.TotalDuration())
	}
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		raw   []timeline.RawSegment
		total float64
		index int
	}{
		{
			name:  "unsorted",
			raw:   []timeline.RawSegment{{Start: 2, End: 3, Text: "b"}, {Start: 1, End: 1.5, Text: "a"}},
			total: 5,
			index: 1,
		},
		{
			name:  "overlap",
			raw:   []timeline.RawSegment{{Start: 0, End: 2, Text: "a"}, {Start: 1.5, End: 3, Text: "b"}},
			total: 5,
			index: 1,
		},
		{
			name:  "empty speech text",
			raw:   []timeline.RawSegment{{Start: 0, End: 2, Text: "   "}},
			total: 5,
			index: 0,
		},
		{
			name:  "end before start",
			raw:   []timeline.RawSegment{{Start: 2, End: 2, Text: "a"}},
			total: 5,
			index: 0,
		},
		{
			name:  "past total duration",
			raw:   []timeline.RawSegment{{Start: 4, End: 6, Text: "a"}},
			total: 5,
			index: 0,
		},
		{
			name:  "starts at total duration",
			raw:   []timeline.RawSegment{{Start: 0, End: 1, Text: "a"}, {Start: 5, End: 5.0000005, Text: "x"}},
			total: 5,
			index: 1,
		},
		{
			name:  "negative start",
			raw:   []timeline.RawSegment{{Start: -1, End: 1, Text: "a"}},
			total: 5,
			index: 0,
		},
		{
			name:  "zero total",
			raw:   nil,
			total: 0,
			index: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := timeline.Build(tt.raw, tt.total, timeline.WithMinDuration(0))
			var ite *timeline.InvalidTimelineError
			if !errors.As(err, &ite) {
				t.Fatalf("expected InvalidTimelineError, got %v", err)
			}
			if ite.Index != tt.index {
				t.Errorf("Index = %d, want %d", ite.Index, tt.index)
			}
		})
	}
}

func TestBuild_GapsAllowed(t *testing.T) {
	tl, err := timeline.Build([]timeline.RawSegment{
		{Start: 0.5, End: 1, Text: "a"},
		{Start: 3, End: 4, Text: "b"},
	}, 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tl.Len())
	}
}

func TestBuild_MergesShortSegmentIntoPredecessor(t *testing.T) {
	raw := []timeline.RawSegment{
		{Start: 0, End: 1, Text: "hello"},
		{Start: 1, End: 1.05, Text: "uh"},
		{Start: 1.05, End: 2, Text: "world"},
	}
	tl, err := timeline.Build(raw, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Len() != len(raw)-1 {
		t.Fatalf("Len = %d, want %d", tl.Len(), len(raw)-1)
	}
	first := tl.Segment(0)
	if !approx(first.End, 1.05) {
		t.Errorf("predecessor end = %v, want 1.05", first.End)
	}
	if first.Text != "hello uh" {
		t.Errorf("predecessor text = %q, want %q", first.Text, "hello uh")
	}
	if tl.Segment(1).Text != "world" {
		t.Errorf("second text = %q, want world", tl.Segment(1).Text)
	}
}

func TestBuild_DropsLeadingShortSegment(t *testing.T) {
	tl, err := timeline.Build([]timeline.RawSegment{
		{Start: 0, End: 0.05, Text: "uh"},
		{Start: 0.05, End: 1, Text: "hello"},
	}, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Len() != 1 || tl.Segment(0).Text != "hello" {
		t.Fatalf("segments = %+v, want only hello", tl.Segments())
	}
}

func TestBuild_CascadeOfShortSegments(t *testing.T) {
	raw := []timeline.RawSegment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 1.05, Text: "b"},
		{Start: 1.05, End: 1.1, Text: "c"},
		{Start: 1.1, End: 1.15, Text: "d"},
		{Start: 1.15, End: 2, Text: "e"},
	}
	for _, policy := range []timeline.MergePolicy{timeline.MergeOnce, timeline.MergeCascade} {
		t.Run(string(policy), func(t *testing.T) {
			tl, err := timeline.Build(raw, 2, timeline.WithMergePolicy(policy))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if tl.Len() != 2 {
				t.Fatalf("Len = %d, want 2", tl.Len())
			}
			if got := tl.Segment(0); got.Text != "a b c d" || !approx(got.End, 1.15) {
				t.Errorf("merged = %+v, want text %q end 1.15", got, "a b c d")
			}
		})
	}
}

func TestBuild_SpeechFragmentIntoNonSpeechKeepsMarker(t *testing.T) {
	tl, err := timeline.Build([]timeline.RawSegment{
		{Start: 0, End: 2, Text: "[music]"},
		{Start: 2, End: 2.05, Text: "oh"},
		{Start: 2.05, End: 3, Text: "hello"},
	}, 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := tl.Segment(0)
	if got.Kind != timeline.NonSpeech || got.Text != "[music]" || !approx(got.End, 2.05) {
		t.Fatalf("merged = %+v, want NonSpeech [music] ending at 2.05", got)
	}
}

func TestBuild_MergeKeepsTranslationsAligned(t *testing.T) {
	tl, err := timeline.Build([]timeline.RawSegment{
		{Start: 0, End: 1, Text: "hello", Translated: "bonjour"},
		{Start: 1, End: 1.05, Text: "uh"},
	}, 1.05)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := tl.Segment(0).Translated; got != "bonjour uh" {
		t.Fatalf("Translated = %q, want %q", got, "bonjour uh")
	}
}

func TestBuild_MergeDisabled(t *testing.T) {
	tl, err := timeline.Build([]timeline.RawSegment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 1.01, Text: "b"},
	}, 2, timeline.WithMinDuration(0))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tl.Len())
	}
}

func TestBuild_Idempotent(t *testing.T) {
	inputs := []struct {
		name  string
		raw   []timeline.RawSegment
		total float64
	}{
		{
			name: "mixed",
			raw: []timeline.RawSegment{
				{Start: 0, End: 0.03, Text: "x"},
				{Start: 0.03, End: 1, Text: "[music]"},
				{Start: 1, End: 1.02, Text: "a"},
				{Start: 1.02, End: 2, Text: "hello", Translated: "bonjour"},
				{Start: 2, End: 2.04, Text: "[cough]"},
				{Start: 2.5, End: 2.55, Text: "b"},
				{Start: 2.55, End: 4, Text: "world"},
			},
			total: 4,
		},
		{
			name: "marker merged into bracket-led speech",
			raw: []timeline.RawSegment{
				{Start: 0, End: 2, Text: "[laughs] hello"},
				{Start: 2, End: 2.05, Text: "[applause]"},
				{Start: 3, End: 4, Text: "bye"},
			},
			total: 4,
		},
		{
			name: "markers merged together",
			raw: []timeline.RawSegment{
				{Start: 0, End: 1, Text: "[music]"},
				{Start: 1, End: 1.05, Text: "[applause]"},
				{Start: 1.05, End: 2, Text: "hi"},
			},
			total: 2,
		},
	}
	for _, in := range inputs {
		for _, policy := range []timeline.MergePolicy{timeline.MergeOnce, timeline.MergeCascade} {
			t.Run(in.name+"/"+string(policy), func(t *testing.T) {
				first, err := timeline.Build(in.raw, in.total, timeline.WithMergePolicy(policy))
				if err != nil {
					t.Fatalf("Build: %v", err)
				}
				second, err := timeline.Build(first.Raw(), in.total, timeline.WithMergePolicy(policy))
				if err != nil {
					t.Fatalf("rebuild: %v", err)
				}
				if !reflect.DeepEqual(first.Segments(), second.Segments()) {
					t.Fatalf("rebuild changed timeline:\nfirst  %+v\nsecond %+v", first.Segments(), second.Segments())
				}
			})
		}
	}
}

func TestBuild_MarkerMergedIntoSpeechStaysSpeech(t *testing.T) {
	tl, err := timeline.Build([]timeline.RawSegment{
		{Start: 0, End: 2, Text: "[laughs] hello"},
		{Start: 2, End: 2.05, Text: "[applause]"},
		{Start: 3, End: 4, Text: "bye"},
	}, 4)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tl.Len())
	}
	got := tl.Segment(0)
	if got.Kind != timeline.Speech {
		t.Errorf("Kind = %v, want speech", got.Kind)
	}
	if got.Text != "[laughs] hello [applause]" {
		t.Errorf("Text = %q", got.Text)
	}
	if !approx(got.End, 2.05) {
		t.Errorf("End = %v, want 2.05", got.End)
	}
}

func TestWithTranslations(t *testing.T) {
	tl, err := timeline.Build([]timeline.RawSegment{
		{Start: 0, End: 1, Text: "[music]"},
		{Start: 1, End: 2, Text: "hello"},
	}, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tr := tl.WithTranslations([]string{"[musique]", "bonjour"})
	if tr.Segment(0).Translated != "" {
		t.Errorf("NonSpeech segment was translated: %q", tr.Segment(0).Translated)
	}
	if tr.Segment(1).SpeechText() != "bonjour" {
		t.Errorf("SpeechText = %q, want bonjour", tr.Segment(1).SpeechText())
	}
	if tl.Segment(1).Translated != "" {
		t.Error("WithTranslations mutated the receiver")
	}
}
