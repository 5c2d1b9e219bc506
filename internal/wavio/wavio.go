// Package wavio reads and writes WAV files as mono [audio.Clip] values.
//
// Decoding accepts any channel count and PCM precision that
// github.com/gopxl/beep/wav understands. Channels are averaged down to mono
// and the stream is resampled to the requested rate. Encoding always writes
// 16-bit mono PCM at the clip's own rate.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/cyprienbrisset/video-translate-to-text/pkg/audio"
)

// resampleQuality is the beep resampler quality (1 to 64). 4 is beep's
// recommended default for offline work.
const resampleQuality = 4

// streamBlock is the number of frames pulled from a streamer at a time.
const streamBlock = 4096

// Read decodes the WAV file at path and returns it as mono PCM at
// [audio.SampleRate].
func Read(path string) (audio.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("wavio: open %q: %w", path, err)
	}
	defer f.Close()

	clip, err := Decode(f, audio.SampleRate)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("%w (file %q)", err, path)
	}
	return clip, nil
}

// Decode reads a WAV stream from r and returns it as mono PCM at rate. A rate
// of 0 keeps the file's own sample rate.
func Decode(r io.Reader, rate int) (audio.Clip, error) {
	stream, format, err := wav.Decode(r)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("wavio: decode: %w", err)
	}
	defer stream.Close()

	var src beep.Streamer = stream
	outRate := int(format.SampleRate)
	if rate > 0 && rate != outRate {
		src = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(rate), stream)
		outRate = rate
	}

	samples, err := drain(src, decodeScale(format.Precision))
	if err != nil {
		return audio.Clip{}, fmt.Errorf("wavio: decode: %w", err)
	}
	return audio.Clip{Samples: samples, SampleRate: outRate}, nil
}

// Write encodes clip to path as 16-bit mono WAV, replacing any existing file.
func Write(path string, clip audio.Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: create %q: %w", path, err)
	}
	if err := Encode(f, clip); err != nil {
		f.Close()
		return fmt.Errorf("%w (file %q)", err, path)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("wavio: close %q: %w", path, err)
	}
	return nil
}

// Encode writes clip to w as 16-bit mono WAV. The header is patched after the
// data is written, hence the [io.WriteSeeker].
func Encode(w io.WriteSeeker, clip audio.Clip) error {
	format := beep.Format{
		SampleRate:  beep.SampleRate(clip.Rate()),
		NumChannels: 1,
		Precision:   2,
	}
	if err := wav.Encode(w, clipStreamer(clip.Samples), format); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}
	return nil
}

// decodeScale maps the float frames of the beep WAV decoder back to int16
// range. The decoder divides signed 16 and 24-bit PCM by 2^bits-1, so those
// frames span only [-0.5, 0.5]. 8-bit frames span [-1, 1].
func decodeScale(precision int) float64 {
	switch precision {
	case 2:
		return 1<<16 - 1
	case 3:
		return (1<<24 - 1) / float64(1<<8)
	default:
		return 1 << 15
	}
}

// clipStreamer plays samples once on both channels. The encoder multiplies by
// 32767 and truncates toward zero, so each value carries half a step away
// from zero to land back on the original sample.
func clipStreamer(samples []int16) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := 0
		for n < len(buf) && pos < len(samples) {
			v := float64(samples[pos])
			switch {
			case v > 0:
				v += 0.5
			case v < 0:
				v -= 0.5
			}
			v /= 1<<15 - 1
			buf[n] = [2]float64{v, v}
			n++
			pos++
		}
		return n, true
	})
}

// drain reads s to the end and downmixes every frame to one int16 sample,
// multiplying by scale.
func drain(s beep.Streamer, scale float64) ([]int16, error) {
	var out []int16
	buf := make([][2]float64, streamBlock)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, toInt16((frame[0] + frame[1]) / 2 * scale))
		}
		if !ok {
			break
		}
	}
	if e, ok := s.(interface{ Err() error }); ok {
		if err := e.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	return out, nil
}

func toInt16(v float64) int16 {
	return int16(math.Max(-32768, math.Min(32767, math.Round(v))))
}
