// Package cpu holds the pieces of the 8086 decoder that are pure bit
// arithmetic: the byte-stream cursor, the ModR/M split, the FLAGS bit
// constants, and the fixed effective-address formula table from the
// Intel reference.
package cpu

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrShortRead is the sticky error a Cursor sets once a read runs past
// the end of the stream. It never clears; every read after it returns
// the zero value.
var ErrShortRead = errors.New("short read: stream ended mid-instruction")

// Cursor reads little-endian scalars out of a byte slice it does not
// own or mutate, tracking position and a sticky error.
type Cursor struct {
	data []byte
	pos  int
	err  error
}

// NewCursor wraps data for sequential reads starting at offset 0.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// HasBytes reports whether at least one more byte can be read.
func (c *Cursor) HasBytes() bool {
	return c.err == nil && c.pos < len(c.data)
}

// Pos returns the current read offset into the wrapped slice.
func (c *Cursor) Pos() int { return c.pos }

// Err returns the sticky short-read error, or nil.
func (c *Cursor) Err() error { return c.err }

func (c *Cursor) fail() {
	if c.err == nil {
		c.err = ErrShortRead
	}
}

// ReadU8 reads one unsigned byte.
func (c *Cursor) ReadU8() uint8 {
	if c.err != nil || c.pos+1 > len(c.data) {
		c.fail()
		return 0
	}
	v := c.data[c.pos]
	c.pos++
	return v
}

// ReadI8 reads one signed byte.
func (c *Cursor) ReadI8() int8 {
	return int8(c.ReadU8())
}

// ReadU16 reads a little-endian unsigned word.
func (c *Cursor) ReadU16() uint16 {
	if c.err != nil || c.pos+2 > len(c.data) {
		c.fail()
		return 0
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v
}

// ReadI16 reads a little-endian signed word.
func (c *Cursor) ReadI16() int16 {
	return int16(c.ReadU16())
}

// PeekU8 returns the next byte without advancing, or (0, false) at EOF.
func (c *Cursor) PeekU8() (uint8, bool) {
	if c.err != nil || c.pos >= len(c.data) {
		return 0, false
	}
	return c.data[c.pos], true
}
