// Package xfile implements an importer for the DirectX .X scene format.
// Both the text and binary physical encodings are supported, including the
// MSZIP-compressed variants, and both feed the same template-driven parser.
package xfile

// cursor is a position-tracked, bounds-checked reader over a byte buffer.
// It is the common substrate for both physical encodings; line/column are
// only meaningful in text mode.
type cursor struct {
	buf  []byte
	off  int
	line int
	col  int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf, line: 1, col: 1}
}

// remaining returns the number of unread bytes.
func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

// peek returns the next byte without consuming it.
func (c *cursor) peek() (byte, bool) {
	if c.off >= len(c.buf) {
		return 0, false
	}
	return c.buf[c.off], true
}

// peekAt returns the byte n positions ahead of the read position.
func (c *cursor) peekAt(n int) (byte, bool) {
	if c.off+n >= len(c.buf) {
		return 0, false
	}
	return c.buf[c.off+n], true
}

// next consumes and returns the next byte.
func (c *cursor) next() (byte, bool) {
	b, ok := c.peek()
	if !ok {
		return 0, false
	}
	c.advanceByte(b)
	return b, true
}

// advance consumes n bytes, failing with ErrTruncated past the buffer end.
func (c *cursor) advance(n int) error {
	if c.remaining() < n {
		c.off = len(c.buf)
		return ErrTruncated
	}
	for i := 0; i < n; i++ {
		c.advanceByte(c.buf[c.off])
	}
	return nil
}

// readExact consumes and returns exactly n bytes.
func (c *cursor) readExact(n int) ([]byte, error) {
	if c.remaining() < n {
		c.off = len(c.buf)
		return nil, ErrTruncated
	}
	start := c.off
	if err := c.advance(n); err != nil {
		return nil, err
	}
	return c.buf[start : start+n], nil
}

func (c *cursor) advanceByte(b byte) {
	c.off++
	if b == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
}
