package resync

// Span is a contiguous sample range [Offset, Offset+Length) of a continuous
// synthesis stream.
type Span struct {
	Offset int
	Length int
}

// End returns Offset + Length.
func (s Span) End() int { return s.Offset + s.Length }

// Cursor tracks how much of a continuous synthesis stream has been handed out
// so consecutive Speech segments draw non-overlapping slices. A Cursor belongs
// to a single run and is not safe for concurrent use.
type Cursor struct {
	total int
	pos   int
}

// NewCursor returns a cursor at the start of a stream of streamLen samples.
func NewCursor(streamLen int) *Cursor {
	return &Cursor{total: max(streamLen, 0)}
}

// Next returns the next need samples and advances the cursor by need.
//
// If fewer than need samples remain, Next returns the remaining part (possibly
// empty) together with a [*CursorExhaustedError]; the cursor is then parked at
// the end of the stream.
func (c *Cursor) Next(need int) (Span, error) {
	if need <= 0 {
		return Span{Offset: c.pos}, nil
	}
	avail := c.total - c.pos
	if need <= avail {
		sp := Span{Offset: c.pos, Length: need}
		c.pos += need
		return sp, nil
	}
	sp := Span{Offset: c.pos, Length: avail}
	c.pos = c.total
	return sp, &CursorExhaustedError{Requested: need, Available: avail}
}

// Remaining returns the number of samples not yet handed out.
func (c *Cursor) Remaining() int { return c.total - c.pos }

// Offset returns the current read position.
func (c *Cursor) Offset() int { return c.pos }
