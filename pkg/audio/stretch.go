package audio

import "math"

// stretchFrameMs is the WSOLA analysis window. 30 ms spans at least one pitch
// period for adult speech.
const stretchFrameMs = 30

// TimeStretch time-scales s to exactly outLen samples without changing its
// pitch, using waveform-similarity overlap-add (WSOLA). rate is the sample
// rate of s and sets the analysis window size.
//
// Inputs too short to hold two analysis windows fall back to linear
// interpolation, which does shift pitch but only over a few milliseconds.
func TimeStretch(s []int16, outLen, rate int) []int16 {
	if outLen <= 0 {
		return nil
	}
	if len(s) == 0 {
		return make([]int16, outLen)
	}
	if len(s) == outLen {
		out := make([]int16, outLen)
		copy(out, s)
		return out
	}
	if rate <= 0 {
		rate = SampleRate
	}

	win := max(rate*stretchFrameMs/1000, 16)
	hop := win / 2
	tol := hop / 2
	if len(s) < 2*win || outLen < 2*win {
		return linearStretch(s, outLen)
	}

	x := make([]float64, len(s))
	for i, v := range s {
		x[i] = float64(v)
	}
	window := hann(win)
	alpha := float64(len(s)) / float64(outLen)
	lastStart := len(x) - win

	acc := make([]float64, outLen+win)
	norm := make([]float64, outLen+win)

	prev := 0
	for outPos := 0; outPos < outLen; outPos += hop {
		pos := 0
		if outPos > 0 {
			ideal := int(math.Round(float64(outPos) * alpha))
			pos = bestMatch(x, prev+hop, ideal, tol, win, lastStart)
		}
		for i := range win {
			acc[outPos+i] += x[pos+i] * window[i]
			norm[outPos+i] += window[i]
		}
		prev = pos
	}

	out := make([]int16, outLen)
	for i := range out {
		if norm[i] > 1e-3 {
			out[i] = clampFloat(acc[i] / norm[i])
		}
	}
	return out
}

// bestMatch returns the analysis start position within ±tol of ideal whose
// window best correlates with the natural continuation of the previous frame
// (starting at natural). Positions are clamped to [0, lastStart].
func bestMatch(x []float64, natural, ideal, tol, win, lastStart int) int {
	lo := max(ideal-tol, 0)
	hi := min(ideal+tol, lastStart)
	if lo > hi {
		return min(max(ideal, 0), lastStart)
	}
	if natural > lastStart {
		return min(max(ideal, lo), hi)
	}

	best := min(max(ideal, lo), hi)
	bestScore := math.Inf(-1)
	for c := lo; c <= hi; c++ {
		var dot, energy float64
		for i := 0; i < win; i += 2 {
			v := x[c+i]
			dot += v * x[natural+i]
			energy += v * v
		}
		score := dot
		if energy > 0 {
			score = dot / math.Sqrt(energy)
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// hann returns a periodic Hann window of length n. Windows spaced n/2 apart
// sum to one.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// linearStretch resizes s to outLen samples by linear interpolation.
func linearStretch(s []int16, outLen int) []int16 {
	out := make([]int16, outLen)
	if len(s) == 1 || outLen == 1 {
		for i := range out {
			out[i] = s[0]
		}
		return out
	}
	ratio := float64(len(s)-1) / float64(outLen-1)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(s)-1 {
			out[i] = s[len(s)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = clampFloat(float64(s[idx])*(1-frac) + float64(s[idx+1])*frac)
	}
	return out
}
