package audio

// FadeIn applies a linear gain ramp from silence to unity over the first n
// samples of s, in place. n is clamped to len(s).
func FadeIn(s []int16, n int) {
	n = min(n, len(s))
	if n <= 0 {
		return
	}
	for i := range n {
		s[i] = clampFloat(float64(s[i]) * float64(i) / float64(n))
	}
}

// FadeOut applies a linear gain ramp from unity to silence over the last n
// samples of s, in place. The final sample is always silent. n is clamped to
// len(s).
func FadeOut(s []int16, n int) {
	n = min(n, len(s))
	if n <= 0 {
		return
	}
	start := len(s) - n
	for i := range n {
		s[start+i] = clampFloat(float64(s[start+i]) * float64(n-1-i) / float64(n))
	}
}
