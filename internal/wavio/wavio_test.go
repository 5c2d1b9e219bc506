package wavio_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/cyprienbrisset/video-translate-to-text/internal/wavio"
	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
)

func ramp(n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16((i%200)*100 - 10000)
	}
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// pcmWAV builds a canonical PCM WAV file by hand. Each frame holds one value
// per channel, written at bits precision (16 or 24) from an int16 level.
func pcmWAV(rate, channels, bits int, frames [][]int16) []byte {
	width := bits / 8
	var data bytes.Buffer
	for _, frame := range frames {
		for _, v := range frame {
			x := int32(v) << (bits - 16)
			for i := range width {
				data.WriteByte(byte(x >> (8 * i)))
			}
		}
	}

	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	binary.Write(&b, le, uint32(36+data.Len()))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, le, uint32(16))
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint16(channels))
	binary.Write(&b, le, uint32(rate))
	binary.Write(&b, le, uint32(rate*channels*width))
	binary.Write(&b, le, uint16(channels*width))
	binary.Write(&b, le, uint16(bits))
	b.WriteString("data")
	binary.Write(&b, le, uint32(data.Len()))
	b.Write(data.Bytes())
	return b.Bytes()
}

func TestDecode_FullScale(t *testing.T) {
	t.Parallel()
	levels := []int16{10000, -10000, 0, 1, -1, 32767, -32768, 12345}

	tests := []struct {
		name     string
		channels int
		bits     int
	}{
		{"mono 16-bit", 1, 16},
		{"stereo 16-bit", 2, 16},
		{"mono 24-bit", 1, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frames := make([][]int16, len(levels))
			for i, v := range levels {
				frame := make([]int16, tt.channels)
				for c := range frame {
					frame[c] = v
				}
				frames[i] = frame
			}

			out, err := wavio.Decode(bytes.NewReader(pcmWAV(audio.SampleRate, tt.channels, tt.bits, frames)), audio.SampleRate)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if out.Len() != len(levels) {
				t.Fatalf("len = %d, want %d", out.Len(), len(levels))
			}
			for i, want := range levels {
				if out.Samples[i] != want {
					t.Errorf("sample %d = %d, want %d", i, out.Samples[i], want)
				}
			}
		})
	}
}

func TestDecode_StereoAveragesChannels(t *testing.T) {
	t.Parallel()
	frames := [][]int16{{8000, 0}, {-6000, 2000}, {32767, 32767}}
	out, err := wavio.Decode(bytes.NewReader(pcmWAV(audio.SampleRate, 2, 16, frames)), audio.SampleRate)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []int16{4000, -2000, 32767}
	for i := range want {
		if out.Samples[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, out.Samples[i], want[i])
		}
	}
}

func TestEncode_WritesExactSamples(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "exact.wav")
	in := []int16{10000, -10000, 0, 1, -1, 32767, 12345}
	if err := wavio.Write(path, audio.Clip{Samples: in, SampleRate: audio.SampleRate}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	pcm := data[len(data)-2*len(in):]
	for i, want := range in {
		if got := int16(binary.LittleEndian.Uint16(pcm[2*i:])); got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestWriteRead_NativeRate(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "clip.wav")
	in := audio.Clip{Samples: ramp(1600), SampleRate: audio.SampleRate}

	if err := wavio.Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := wavio.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out.Rate() != audio.SampleRate {
		t.Errorf("rate = %d, want %d", out.Rate(), audio.SampleRate)
	}
	if out.Len() != in.Len() {
		t.Fatalf("len = %d, want %d", out.Len(), in.Len())
	}
	for i := range in.Samples {
		if d := abs(int(out.Samples[i]) - int(in.Samples[i])); d > 2 {
			t.Fatalf("sample %d = %d, want %d (±2)", i, out.Samples[i], in.Samples[i])
		}
	}
}

func TestDecode_Resamples(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "48k.wav")
	in := audio.Clip{Samples: make([]int16, 48000), SampleRate: 48000}
	if err := wavio.Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out, err := wavio.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out.Rate() != audio.SampleRate {
		t.Errorf("rate = %d, want %d", out.Rate(), audio.SampleRate)
	}
	// One second of audio, allowing for resampler edge frames.
	if d := abs(out.Len() - audio.SampleRate); d > 16 {
		t.Errorf("len = %d, want about %d", out.Len(), audio.SampleRate)
	}
}

func TestDecode_KeepRate(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "24k.wav")
	if err := wavio.Write(path, audio.Clip{Samples: ramp(240), SampleRate: 24000}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	buf.Write(data)

	out, err := wavio.Decode(&buf, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Rate() != 24000 || out.Len() != 240 {
		t.Errorf("got rate %d len %d, want 24000/240", out.Rate(), out.Len())
	}
}

func TestDecode_StereoDownmix(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	left, right := 0.5, -0.25
	frames := 800
	src := beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if frames == 0 {
			return 0, false
		}
		n := min(len(buf), frames)
		for i := range n {
			buf[i] = [2]float64{left, right}
		}
		frames -= n
		return n, true
	})
	format := beep.Format{SampleRate: beep.SampleRate(audio.SampleRate), NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, src, format); err != nil {
		t.Fatalf("wav.Encode: %v", err)
	}
	f.Close()

	out, err := wavio.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out.Len() != 800 {
		t.Fatalf("len = %d, want 800", out.Len())
	}
	want := int((left + right) / 2 * 32768)
	for i, s := range out.Samples {
		if d := abs(int(s) - want); d > 2 {
			t.Fatalf("sample %d = %d, want %d (±2)", i, s, want)
		}
	}
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.wav")
	if err := os.WriteFile(garbage, []byte("not a wav file at all"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.wav")},
		{"garbage", garbage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := wavio.Read(tt.path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestWrite_BadPath(t *testing.T) {
	t.Parallel()
	err := wavio.Write(filepath.Join(t.TempDir(), "no", "such", "dir.wav"), audio.NewSilence(10, audio.SampleRate))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
