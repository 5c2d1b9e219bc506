package audio

// Drain reads from ch until the channel is closed, discarding all values.
// Use this to prevent goroutine leaks when a producer's stream is abandoned
// (e.g. a TTS audio channel after the caller's context was cancelled).
func Drain[T any](ch <-chan T) {
	for range ch {
	}
}
