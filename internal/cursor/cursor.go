// Package cursor provides a bounds-checked read cursor over encoded bytes.
//
// Every accessor checks the remaining length before touching the slice and reports a
// short read with a false result, so decoders never index past their input.
package cursor

import "encoding/binary"

// Cursor reads forward through a byte slice.
type Cursor struct {
	data []byte
	pos  int
}

// New returns a cursor positioned at the start of data.
func New(data []byte) Cursor {
	return Cursor{data: data}
}

// Pos returns the number of bytes consumed.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	return len(c.data) - c.pos
}

// Rest returns the unread bytes without consuming them.
func (c *Cursor) Rest() []byte {
	return c.data[c.pos:]
}

// Byte consumes one byte.
func (c *Cursor) Byte() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}
	b := c.data[c.pos]
	c.pos++

	return b, true
}

// Bytes consumes n bytes and returns them as a subslice of the input.
func (c *Cursor) Bytes(n int) ([]byte, bool) {
	if n < 0 || n > c.Len() {
		return nil, false
	}
	b := c.data[c.pos : c.pos+n : c.pos+n]
	c.pos += n

	return b, true
}

// Skip consumes n bytes.
func (c *Cursor) Skip(n int) bool {
	if n < 0 || n > c.Len() {
		return false
	}
	c.pos += n

	return true
}

// Uvarint consumes an unsigned LEB128 varint. Truncated or overlong encodings fail.
func (c *Cursor) Uvarint() (uint64, bool) {
	v, n := binary.Uvarint(c.data[c.pos:])
	if n <= 0 {
		return 0, false
	}
	c.pos += n

	return v, true
}

// ZigZag consumes a zig-zag encoded varint.
func (c *Cursor) ZigZag() (int64, bool) {
	u, ok := c.Uvarint()
	if !ok {
		return 0, false
	}

	return ZigZagDecode(u), true
}

// Uint32LE consumes a little-endian uint32.
func (c *Cursor) Uint32LE() (uint32, bool) {
	b, ok := c.Bytes(4)
	if !ok {
		return 0, false
	}

	return binary.LittleEndian.Uint32(b), true
}

// ZigZagEncode maps signed integers to unsigned so small magnitudes stay small.
func ZigZagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63) //nolint:gosec
}

// ZigZagDecode is the inverse of ZigZagEncode.
func ZigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1) //nolint:gosec
}

// AppendZigZag appends v as a zig-zag varint.
func AppendZigZag(dst []byte, v int64) []byte {
	return binary.AppendUvarint(dst, ZigZagEncode(v))
}
