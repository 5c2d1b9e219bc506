package resync

import "fmt"

// CursorExhaustedError reports that a continuous synthesis stream ran out
// before a segment's slice was complete. It is recoverable: the available
// part is used and the remainder of the slot is silent.
type CursorExhaustedError struct {
	// Requested is the number of samples the segment needed.
	Requested int

	// Available is the number of samples that were left in the stream.
	Available int
}

func (e *CursorExhaustedError) Error() string {
	return fmt.Sprintf("resync: stream exhausted: requested %d samples, %d available", e.Requested, e.Available)
}

// EmptySourceAudioError reports a Speech segment whose replacement clip is
// empty or missing. It is recoverable: the segment is rendered as silence for
// its full slot.
type EmptySourceAudioError struct {
	// Index is the segment index, or -1 when the renderer was called outside
	// an engine run.
	Index int
}

func (e *EmptySourceAudioError) Error() string {
	if e.Index < 0 {
		return "resync: empty source audio"
	}
	return fmt.Sprintf("resync: segment %d: empty source audio", e.Index)
}

// CompositionError reports a clip that cannot be placed on the output track.
// Given a valid timeline it never occurs; when it does the run is aborted.
type CompositionError struct {
	Offset   int
	Length   int
	TrackLen int
	Reason   string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("resync: composition: clip [%d, %d) on track of %d samples: %s",
		e.Offset, e.Offset+e.Length, e.TrackLen, e.Reason)
}
