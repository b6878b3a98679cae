package bitpack

// Writer appends a least-significant-bit-first bit stream to a byte slice.
//
// Bits are staged in a 64-bit accumulator and spilled 32 bits at a time, so a single
// write never overflows it. Flush must be called before Bytes is considered complete.
type Writer struct {
	buf  []byte
	acc  uint64
	bits uint
}

// NewWriter returns a Writer that appends to dst.
func NewWriter(dst []byte) *Writer {
	return &Writer{buf: dst}
}

// Reset discards pending bits and makes the writer append to dst.
func (w *Writer) Reset(dst []byte) {
	w.buf = dst
	w.acc = 0
	w.bits = 0
}

// WriteBit writes the low bit of b.
func (w *Writer) WriteBit(b uint) {
	w.acc |= uint64(b&1) << w.bits
	w.bits++
	w.spill()
}

// WriteBits writes the low n bits of v, 0 <= n <= 32.
func (w *Writer) WriteBits(v uint32, n int) {
	if n <= 0 {
		return
	}
	w.acc |= (uint64(v) & (uint64(1)<<n - 1)) << w.bits
	w.bits += uint(n)
	w.spill()
}

// WriteBits64 writes the low n bits of v, 0 <= n <= 64, as two 32-bit parts.
func (w *Writer) WriteBits64(v uint64, n int) {
	if n <= 32 {
		w.WriteBits(uint32(v), n)
		return
	}
	w.WriteBits(uint32(v), 32)
	w.WriteBits(uint32(v>>32), n-32)
}

func (w *Writer) spill() {
	if w.bits >= 32 {
		w.buf = append(w.buf, byte(w.acc), byte(w.acc>>8), byte(w.acc>>16), byte(w.acc>>24))
		w.acc >>= 32
		w.bits -= 32
	}
}

// AlignByte pads the stream with zero bits up to the next byte boundary.
func (w *Writer) AlignByte() {
	if r := w.bits % 8; r != 0 {
		w.bits += 8 - r
	}
	for w.bits >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.bits -= 8
	}
}

// WriteBytes aligns to a byte boundary and appends p verbatim.
func (w *Writer) WriteBytes(p []byte) {
	w.AlignByte()
	w.buf = append(w.buf, p...)
}

// Flush writes any staged bits, zero-padding the final partial byte.
func (w *Writer) Flush() {
	w.AlignByte()
}

// Bytes returns the bytes written so far, excluding bits not yet flushed.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of complete bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// BitLen returns the total number of bits written, including staged bits.
func (w *Writer) BitLen() int {
	return len(w.buf)*8 + int(w.bits)
}
