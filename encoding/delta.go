package encoding

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/arloliu/colcodec/bitpack"
	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/internal/cursor"
	"github.com/arloliu/colcodec/internal/pool"
	"github.com/arloliu/colcodec/simd"
)

const (
	deltaBlockSize          = 128
	deltaMiniBlocks         = 4
	deltaValuesPerMiniBlock = deltaBlockSize / deltaMiniBlocks

	// deltaMaxBlockSize bounds the block size accepted from a stream header.
	deltaMaxBlockSize = 1 << 16
)

// DeltaInteger is the set of value types handled by the delta binary-packed codec.
type DeltaInteger interface {
	int32 | int64
}

// DeltaEncoder writes the DELTA_BINARY_PACKED encoding.
//
// Layout:
//
//	header: uvarint(block size=128) uvarint(mini-blocks=4) uvarint(total) zigzag(first value)
//	block:  zigzag(min delta) width[4] residuals...
//
// Each block holds up to 128 deltas split into 4 mini-blocks of 32. A mini-block stores
// delta-minDelta residuals bit-packed at the width of its largest residual; the final
// mini-block of the stream is zero-padded to 32 values and mini-blocks with no values
// are left out.
//
// Widths above 32 only occur for int64. Those residuals are bit-packed LSB-first as a
// continuous 64-bit stream, exactly like the narrower widths, and are not byte-packed:
// a 40-bit mini-block of 32 values occupies 160 bytes.
//
// Deltas wrap in the value type's width, so any input sequence, including one spanning
// the full range of the type, round-trips exactly.
//
// The header carries the total count, so the stream is assembled by Flush. Writing after
// Flush panics; call Reset to start a new stream.
type DeltaEncoder[T DeltaInteger] struct {
	mask uint64

	body *pool.ByteBuffer
	out  *pool.ByteBuffer

	first T
	prev  T
	count int

	deltas    [deltaBlockSize]T
	n         int
	residuals [deltaValuesPerMiniBlock]uint64
	packed    [deltaValuesPerMiniBlock]uint32

	flushed bool
}

// DeltaInt32Encoder encodes int32 values with deltas computed modulo 2^32.
type DeltaInt32Encoder = DeltaEncoder[int32]

// DeltaInt64Encoder encodes int64 values with deltas computed modulo 2^64.
type DeltaInt64Encoder = DeltaEncoder[int64]

var (
	_ ColumnarEncoder[int32] = (*DeltaInt32Encoder)(nil)
	_ ColumnarEncoder[int64] = (*DeltaInt64Encoder)(nil)
)

// NewDeltaInt32Encoder creates a delta encoder for int32 values.
func NewDeltaInt32Encoder() *DeltaInt32Encoder {
	return newDeltaEncoder[int32](32)
}

// NewDeltaInt64Encoder creates a delta encoder for int64 values.
func NewDeltaInt64Encoder() *DeltaInt64Encoder {
	return newDeltaEncoder[int64](64)
}

func newDeltaEncoder[T DeltaInteger](width int) *DeltaEncoder[T] {
	return &DeltaEncoder[T]{
		mask: uint64(math.MaxUint64) >> (64 - width),
		body: pool.GetPageBuffer(),
		out:  pool.GetPageBuffer(),
	}
}

// Write appends a single value.
func (e *DeltaEncoder[T]) Write(v T) {
	if e.flushed {
		panic("encoding: delta encoder written after Flush")
	}

	if e.count == 0 {
		e.first = v
		e.prev = v
		e.count = 1

		return
	}

	e.deltas[e.n] = v - e.prev
	e.prev = v
	e.n++
	e.count++
	if e.n == deltaBlockSize {
		e.flushBlock()
	}
}

// WriteSlice appends values.
func (e *DeltaEncoder[T]) WriteSlice(values []T) {
	if len(values) == 0 {
		return
	}
	if e.count == 0 {
		e.Write(values[0])
		values = values[1:]
	}
	if e.flushed {
		panic("encoding: delta encoder written after Flush")
	}

	prev := e.prev
	for len(values) > 0 {
		k := min(deltaBlockSize-e.n, len(values))
		block := e.deltas[e.n : e.n+k]
		for i, v := range values[:k] {
			block[i] = v - prev
			prev = v
		}
		e.n += k
		e.count += k
		values = values[k:]
		if e.n == deltaBlockSize {
			e.flushBlock()
		}
	}
	e.prev = prev
}

func (e *DeltaEncoder[T]) flushBlock() {
	deltas := e.deltas[:e.n]
	minDelta := deltas[0]
	for _, d := range deltas[1:] {
		if d < minDelta {
			minDelta = d
		}
	}

	e.body.B = binary.AppendUvarint(e.body.B, cursor.ZigZagEncode(int64(minDelta)))
	widthPos := e.body.Len()
	clear(e.body.Extend(deltaMiniBlocks))

	for m := 0; m < deltaMiniBlocks; m++ {
		start := m * deltaValuesPerMiniBlock
		if start >= len(deltas) {
			break
		}
		end := min(start+deltaValuesPerMiniBlock, len(deltas))

		var acc uint64
		for i, d := range deltas[start:end] {
			r := uint64(d-minDelta) & e.mask //nolint:gosec
			e.residuals[i] = r
			acc |= r
		}
		clear(e.residuals[end-start:])

		width := bits.Len64(acc)
		e.body.B[widthPos+m] = byte(width)
		if width == 0 {
			continue
		}

		if width <= bitpack.MaxWidth {
			for i, r := range e.residuals {
				e.packed[i] = uint32(r)
			}
			dst := e.body.Extend(deltaValuesPerMiniBlock * width / 8)
			for g := 0; g < deltaValuesPerMiniBlock; g += 8 {
				bitpack.Pack8(dst[g/8*width:], (*[8]uint32)(e.packed[g:g+8]), width)
			}

			continue
		}

		w := bitpack.NewWriter(e.body.B)
		for _, r := range e.residuals {
			w.WriteBits64(r, width)
		}
		w.Flush()
		e.body.B = w.Bytes()
	}

	e.n = 0
}

// Flush writes the remaining partial block and assembles header and blocks. After Flush
// Bytes returns the complete stream.
func (e *DeltaEncoder[T]) Flush() {
	if e.flushed {
		return
	}
	if e.n > 0 {
		e.flushBlock()
	}

	e.out.Reset()
	e.out.B = binary.AppendUvarint(e.out.B, deltaBlockSize)
	e.out.B = binary.AppendUvarint(e.out.B, deltaMiniBlocks)
	e.out.B = binary.AppendUvarint(e.out.B, uint64(e.count)) //nolint:gosec
	e.out.B = cursor.AppendZigZag(e.out.B, int64(e.first))
	e.out.MustWrite(e.body.Bytes())
	e.flushed = true
}

// Bytes returns the encoded stream. It is empty until Flush is called.
func (e *DeltaEncoder[T]) Bytes() []byte {
	return e.out.Bytes()
}

// Len returns the number of values written.
func (e *DeltaEncoder[T]) Len() int {
	return e.count
}

// Size returns the size of the assembled stream, or of the finished blocks before Flush.
func (e *DeltaEncoder[T]) Size() int {
	if e.flushed {
		return e.out.Len()
	}

	return e.body.Len()
}

// Reset discards all state so a new stream can be written.
func (e *DeltaEncoder[T]) Reset() {
	e.body.Reset()
	e.out.Reset()
	e.first = 0
	e.prev = 0
	e.count = 0
	e.n = 0
	e.flushed = false
}

// Finish returns the buffers to the pool. The encoder must not be used afterwards.
func (e *DeltaEncoder[T]) Finish() {
	if e.body != nil {
		pool.PutPageBuffer(e.body)
		pool.PutPageBuffer(e.out)
		e.body = nil
		e.out = nil
	}
}

// DeltaDecoder reads a DELTA_BINARY_PACKED stream.
//
// The header is validated on construction. Values are reconstructed one mini-block at a
// time with the dispatch prefix-sum kernel. Once Total values have been produced the
// stream has ended; further reads return nothing and are not errors.
type DeltaDecoder[T DeltaInteger] struct {
	c         cursor.Cursor
	bits      int
	prefixSum func([]T, T)

	miniBlocks int
	perMini    int
	total      int
	produced   int
	deltasLeft int

	first        T
	pendingFirst bool
	prev         T

	minDelta   T
	widths     []byte
	miniIdx    int
	blockReady bool

	buf     []T
	bufPos  int
	scratch []uint32

	err error
}

// DeltaInt32Decoder decodes streams written by DeltaInt32Encoder.
type DeltaInt32Decoder = DeltaDecoder[int32]

// DeltaInt64Decoder decodes streams written by DeltaInt64Encoder.
type DeltaInt64Decoder = DeltaDecoder[int64]

// NewDeltaInt32Decoder parses the stream header in data.
func NewDeltaInt32Decoder(data []byte) (*DeltaInt32Decoder, error) {
	return newDeltaDecoder(data, 32, simd.PrefixSumInt32)
}

// NewDeltaInt64Decoder parses the stream header in data.
func NewDeltaInt64Decoder(data []byte) (*DeltaInt64Decoder, error) {
	return newDeltaDecoder(data, 64, simd.PrefixSumInt64)
}

func newDeltaDecoder[T DeltaInteger](data []byte, width int, prefixSum func([]T, T)) (*DeltaDecoder[T], error) {
	const op = "delta.decode"

	d := &DeltaDecoder[T]{c: cursor.New(data), bits: width, prefixSum: prefixSum}

	blockSize, ok := d.c.Uvarint()
	if !ok {
		return nil, errs.Malformed(op, "truncated block size")
	}
	miniBlocks, ok := d.c.Uvarint()
	if !ok {
		return nil, errs.Malformed(op, "truncated mini-block count")
	}
	total, ok := d.c.Uvarint()
	if !ok {
		return nil, errs.Malformed(op, "truncated value count")
	}
	first, ok := d.c.ZigZag()
	if !ok {
		return nil, errs.Malformed(op, "truncated first value")
	}

	if blockSize == 0 || blockSize%128 != 0 || blockSize > deltaMaxBlockSize {
		return nil, errs.Malformed(op, "block size %d is not a positive multiple of 128", blockSize)
	}
	if miniBlocks == 0 || blockSize%miniBlocks != 0 || (blockSize/miniBlocks)%32 != 0 {
		return nil, errs.Malformed(op, "%d mini-blocks do not split a block of %d into multiples of 32", miniBlocks, blockSize)
	}
	if total > math.MaxInt32 {
		return nil, errs.Malformed(op, "value count %d is too large", total)
	}

	d.miniBlocks = int(miniBlocks)
	d.perMini = int(blockSize / miniBlocks)
	d.total = int(total)
	if d.total > 0 {
		d.first = T(first)
		d.pendingFirst = true
		d.deltasLeft = d.total - 1
	}
	d.widths = make([]byte, d.miniBlocks)

	return d, nil
}

// Total returns the number of values declared by the header.
func (d *DeltaDecoder[T]) Total() int {
	return d.total
}

// Remaining returns the number of values not yet produced.
func (d *DeltaDecoder[T]) Remaining() int {
	return d.total - d.produced
}

// Offset returns the number of input bytes consumed so far. After all values have been
// read it is the length of the encoded stream.
func (d *DeltaDecoder[T]) Offset() int {
	return d.c.Pos()
}

// Err returns the first decoding error encountered.
func (d *DeltaDecoder[T]) Err() error {
	return d.err
}

func (d *DeltaDecoder[T]) loadMiniBlock() bool {
	const op = "delta.decode"

	if d.err != nil || d.deltasLeft == 0 {
		return false
	}

	if !d.blockReady || d.miniIdx == d.miniBlocks {
		md, ok := d.c.ZigZag()
		if !ok {
			d.err = errs.Malformed(op, "truncated block header at offset %d", d.c.Pos())
			return false
		}
		w, ok := d.c.Bytes(d.miniBlocks)
		if !ok {
			d.err = errs.Malformed(op, "truncated mini-block widths at offset %d", d.c.Pos())
			return false
		}
		copy(d.widths, w)
		d.minDelta = T(md)
		d.miniIdx = 0
		d.blockReady = true
	}

	width := int(d.widths[d.miniIdx])
	d.miniIdx++
	if width > d.bits {
		d.err = errs.Malformed(op, "mini-block width %d exceeds %d bits", width, d.bits)
		return false
	}

	count := min(d.perMini, d.deltasLeft)
	need := bitpack.PackedSize(count, width)
	if d.c.Len() < need {
		d.err = errs.Malformed(op, "mini-block needs %d bytes, %d remain", need, d.c.Len())
		return false
	}
	raw, _ := d.c.Bytes(min(d.perMini*width/8, d.c.Len()))

	if cap(d.buf) < d.perMini {
		d.buf = make([]T, d.perMini)
		d.scratch = make([]uint32, d.perMini)
	}
	out := d.buf[:count]

	switch {
	case width == 0:
		for i := range out {
			out[i] = d.minDelta
		}
	case width <= bitpack.MaxWidth:
		if _, err := bitpack.Unpack(d.scratch[:count], raw, width); err != nil {
			d.err = errs.Wrap(errs.KindOf(err), op, err)
			return false
		}
		for i, r := range d.scratch[:count] {
			out[i] = d.minDelta + T(r)
		}
	default:
		r := bitpack.NewReader(raw)
		for i := range out {
			v, ok := r.ReadBits64(width)
			if !ok {
				d.err = errs.Malformed(op, "mini-block truncated after %d of %d values", i, count)
				return false
			}
			out[i] = d.minDelta + T(v) //nolint:gosec
		}
	}

	d.prefixSum(out, d.prev)
	d.prev = out[count-1]
	d.buf = d.buf[:count]
	d.bufPos = 0
	d.deltasLeft -= count

	return true
}

// Next returns the next value, or false once the stream has ended or failed.
func (d *DeltaDecoder[T]) Next() (T, bool) {
	if d.pendingFirst {
		d.pendingFirst = false
		d.prev = d.first
		d.produced++

		return d.first, true
	}
	if d.bufPos == len(d.buf) && !d.loadMiniBlock() {
		return 0, false
	}
	v := d.buf[d.bufPos]
	d.bufPos++
	d.produced++

	return v, true
}

// GetBatch fills dst and returns the number of values produced.
func (d *DeltaDecoder[T]) GetBatch(dst []T) int {
	n := 0
	if len(dst) > 0 && d.pendingFirst {
		dst[0], _ = d.Next()
		n = 1
	}

	for n < len(dst) {
		if d.bufPos == len(d.buf) && !d.loadMiniBlock() {
			break
		}
		k := copy(dst[n:], d.buf[d.bufPos:])
		d.bufPos += k
		d.produced += k
		n += k
	}

	return n
}

// Skip advances past up to n values and returns how many were skipped.
func (d *DeltaDecoder[T]) Skip(n int) int {
	skipped := 0
	if n > 0 && d.pendingFirst {
		_, _ = d.Next()
		skipped = 1
	}

	for skipped < n {
		if d.bufPos == len(d.buf) && !d.loadMiniBlock() {
			break
		}
		k := min(len(d.buf)-d.bufPos, n-skipped)
		d.bufPos += k
		d.produced += k
		skipped += k
	}

	return skipped
}

// Decode fills dst with up to len(dst) values and returns the count, or the decoding
// error that stopped it.
func (d *DeltaDecoder[T]) Decode(dst []T) (int, error) {
	n := d.GetBatch(dst)
	return n, d.err
}

// EncodeDeltaInt32 appends the delta binary-packed encoding of values to dst.
func EncodeDeltaInt32(dst []byte, values []int32) []byte {
	return encodeDelta(dst, NewDeltaInt32Encoder(), values)
}

// EncodeDeltaInt64 appends the delta binary-packed encoding of values to dst.
func EncodeDeltaInt64(dst []byte, values []int64) []byte {
	return encodeDelta(dst, NewDeltaInt64Encoder(), values)
}

func encodeDelta[T DeltaInteger](dst []byte, enc *DeltaEncoder[T], values []T) []byte {
	defer enc.Finish()

	enc.WriteSlice(values)
	enc.Flush()

	return append(dst, enc.Bytes()...)
}

// DecodeDeltaInt32 decodes src into dst. It returns the number of values produced,
// which is min(len(dst), total), and the number of bytes consumed.
func DecodeDeltaInt32(dst []int32, src []byte) (int, int, error) {
	dec, err := NewDeltaInt32Decoder(src)
	if err != nil {
		return 0, 0, err
	}

	return decodeDelta(dec, dst)
}

// DecodeDeltaInt64 is the int64 form of DecodeDeltaInt32.
func DecodeDeltaInt64(dst []int64, src []byte) (int, int, error) {
	dec, err := NewDeltaInt64Decoder(src)
	if err != nil {
		return 0, 0, err
	}

	return decodeDelta(dec, dst)
}

func decodeDelta[T DeltaInteger](dec *DeltaDecoder[T], dst []T) (int, int, error) {
	n, err := dec.Decode(dst)

	return n, dec.Offset(), err
}
