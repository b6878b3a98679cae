package bitpack

// Reader consumes a least-significant-bit-first bit stream from a byte slice.
//
// It keeps up to 64 bits in an accumulator and refills byte by byte while it holds
// 56 bits or fewer. It never reads beyond len(data); running out of input is reported
// through return values, not panics.
type Reader struct {
	data []byte
	pos  int
	acc  uint64
	bits uint
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Reset makes the reader start over on data.
func (r *Reader) Reset(data []byte) {
	r.data = data
	r.pos = 0
	r.acc = 0
	r.bits = 0
}

func (r *Reader) refill() {
	for r.bits <= 56 && r.pos < len(r.data) {
		r.acc |= uint64(r.data[r.pos]) << r.bits
		r.pos++
		r.bits += 8
	}
}

// ReadBit returns the next bit, or -1 when the stream is exhausted.
func (r *Reader) ReadBit() int {
	if r.bits == 0 {
		r.refill()
		if r.bits == 0 {
			return -1
		}
	}
	b := int(r.acc & 1)
	r.acc >>= 1
	r.bits--

	return b
}

// ReadBits reads n bits, 0 <= n <= 32. It returns false, consuming nothing, if fewer
// than n bits remain.
func (r *Reader) ReadBits(n int) (uint32, bool) {
	if n <= 0 {
		return 0, true
	}
	if r.bits < uint(n) {
		r.refill()
		if r.bits < uint(n) {
			return 0, false
		}
	}
	v := uint32(r.acc & (uint64(1)<<n - 1))
	r.acc >>= uint(n)
	r.bits -= uint(n)

	return v, true
}

// ReadBits64 reads n bits, 0 <= n <= 64, as two 32-bit parts.
func (r *Reader) ReadBits64(n int) (uint64, bool) {
	if n <= 32 {
		v, ok := r.ReadBits(n)
		return uint64(v), ok
	}
	if r.Remaining() < n {
		return 0, false
	}
	lo, _ := r.ReadBits(32)
	hi, _ := r.ReadBits(n - 32)

	return uint64(hi)<<32 | uint64(lo), true
}

// PeekBits returns up to n bits (n <= 32) without consuming them, together with the
// number of valid bits returned. Bits beyond the end of input read as zero.
func (r *Reader) PeekBits(n int) (uint32, int) {
	if r.bits < uint(n) {
		r.refill()
	}
	avail := min(n, int(r.bits))

	return uint32(r.acc & (uint64(1)<<n - 1)), avail
}

// SkipBits discards n bits. It returns false if fewer than n bits remain.
func (r *Reader) SkipBits(n int) bool {
	for n > 32 {
		if _, ok := r.ReadBits(32); !ok {
			return false
		}
		n -= 32
	}
	_, ok := r.ReadBits(n)

	return ok
}

// AlignByte discards bits up to the next byte boundary.
func (r *Reader) AlignByte() {
	drop := r.bits % 8
	r.acc >>= drop
	r.bits -= drop
}

// ReadBytes aligns to a byte boundary and returns the next n bytes, or false if the
// input is too short.
func (r *Reader) ReadBytes(n int) ([]byte, bool) {
	r.AlignByte()
	// Hand buffered whole bytes back to the slice so the result can alias data.
	start := r.pos - int(r.bits/8)
	if n < 0 || start+n > len(r.data) {
		return nil, false
	}
	r.pos = start + n
	r.acc = 0
	r.bits = 0

	return r.data[start:r.pos], true
}

// Offset returns the byte offset of the next unread bit's byte, counting a partially
// consumed byte as consumed.
func (r *Reader) Offset() int {
	return r.pos - int(r.bits/8)
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return (len(r.data)-r.pos)*8 + int(r.bits)
}
