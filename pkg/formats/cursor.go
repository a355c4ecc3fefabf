package formats

import (
	"encoding/binary"
	"errors"
	"math"
)

// errShortBuffer is returned by cursor reads that would cross the buffer end.
var errShortBuffer = errors.New("read past end of buffer")

// cursor is a bounds-checked read position over an immutable byte buffer.
// All reads are little-endian. The cursor never mutates the buffer and a
// failed read leaves the position unchanged.
type cursor struct {
	data []byte
	pos  int
}

// remaining returns the number of unread bytes.
func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

// seek moves the read position to an absolute offset. Offsets are clamped
// to the buffer bounds.
func (c *cursor) seek(off int) {
	if off < 0 {
		off = 0
	}
	if off > len(c.data) {
		off = len(c.data)
	}
	c.pos = off
}

// skip advances the read position by n bytes.
func (c *cursor) skip(n int) error {
	if c.remaining() < n {
		return errShortBuffer
	}
	c.pos += n
	return nil
}

// readBytes returns the next n bytes without copying.
func (c *cursor) readBytes(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, errShortBuffer
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) readByte() (byte, error) {
	if c.remaining() < 1 {
		return 0, errShortBuffer
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) readU16() (uint16, error) {
	b, err := c.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) readU32() (uint32, error) {
	b, err := c.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) readF32() (float32, error) {
	v, err := c.readU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// asciiz reads a zero-terminated string bounded by the absolute offset end.
// When no terminator is found before end the bytes up to end are returned
// and terminated is false; the caller decides whether that is worth a log
// entry. The terminator itself is consumed when present.
func (c *cursor) asciiz(end int) (s string, terminated bool) {
	if end > len(c.data) {
		end = len(c.data)
	}
	start := c.pos
	for c.pos < end {
		if c.data[c.pos] == 0 {
			s = string(c.data[start:c.pos])
			c.pos++
			return s, true
		}
		c.pos++
	}
	return string(c.data[start:c.pos]), false
}
