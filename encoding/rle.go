package encoding

import (
	"encoding/binary"
	"math"

	"github.com/arloliu/colcodec/bitpack"
	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/internal/cursor"
	"github.com/arloliu/colcodec/internal/options"
	"github.com/arloliu/colcodec/internal/pool"
	"github.com/arloliu/colcodec/simd"
)

const (
	// rleMinRepeat is the run length at which equal values become a repeat run.
	rleMinRepeat = 8
	// rleMaxLiteralGroups keeps a packed-run header within a single varint byte.
	rleMaxLiteralGroups = 63
	// rleMaxRunLength bounds decoded run counts so a hostile header cannot overflow int.
	rleMaxRunLength = math.MaxInt32
)

// RLEEncoder writes the RLE/bit-packing hybrid encoding used for definition and
// repetition levels, dictionary indices and RLE booleans.
//
// The stream is a sequence of runs, each introduced by a uvarint header whose low bit
// selects the kind:
//
//	header = count<<1       repeat run: count copies of one value stored in ceil(width/8) bytes
//	header = groups<<1 | 1  packed run: groups*8 values bit-packed at width
//
// Values are buffered in groups of 8. A group made entirely of one value that keeps
// repeating turns into a repeat run; anything else accumulates into a packed run of up
// to 63 groups. Flush pads the trailing partial group with zeros.
type RLEEncoder struct {
	width     int
	byteWidth int
	mask      uint32
	buf       *pool.ByteBuffer

	buffered    [8]uint32
	numBuffered int

	current     uint32
	repeatCount int

	literalCount     int
	literalHeaderPos int

	count int
}

var _ ColumnarEncoder[uint32] = (*RLEEncoder)(nil)

type rleEncoderConfig struct {
	initialCapacity int
}

// RLEEncoderOption configures an RLEEncoder.
type RLEEncoderOption = options.Option[*rleEncoderConfig]

// WithRLEInitialCapacity pre-sizes the output buffer.
func WithRLEInitialCapacity(n int) RLEEncoderOption {
	return options.New(func(c *rleEncoderConfig) error {
		if n < 0 {
			return errs.InvalidArgument("rle.encoder", "negative initial capacity %d", n)
		}
		c.initialCapacity = n

		return nil
	})
}

// NewRLEEncoder creates an encoder for values of the given bit width (0..32).
func NewRLEEncoder(width int, opts ...RLEEncoderOption) (*RLEEncoder, error) {
	if width < 0 || width > bitpack.MaxWidth {
		return nil, errs.InvalidArgument("rle.encoder", "bit width %d outside 0..%d", width, bitpack.MaxWidth)
	}
	cfg := &rleEncoderConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	buf := pool.GetPageBuffer()
	buf.Grow(cfg.initialCapacity)

	return &RLEEncoder{
		width:            width,
		byteWidth:        (width + 7) / 8,
		mask:             uint32(uint64(1)<<width - 1),
		buf:              buf,
		literalHeaderPos: -1,
	}, nil
}

// Write appends one value, truncated to the encoder's bit width.
func (e *RLEEncoder) Write(value uint32) {
	e.count++
	e.put(value & e.mask)
}

// WriteSlice appends values, truncated to the encoder's bit width.
//
// Long repeats are consumed in bulk with the dispatch run-length kernel once a repeat
// run is established.
func (e *RLEEncoder) WriteSlice(values []uint32) {
	e.count += len(values)
	for i := 0; i < len(values); {
		v := values[i] & e.mask
		if e.repeatCount >= rleMinRepeat && v == e.current {
			n := simd.RunLengthUint32(values, i)
			e.repeatCount += n
			i += n

			continue
		}
		e.put(v)
		i++
	}
}

func (e *RLEEncoder) put(value uint32) {
	if value == e.current {
		e.repeatCount++
		if e.repeatCount > rleMinRepeat {
			return
		}
	} else {
		if e.repeatCount >= rleMinRepeat {
			e.flushRepeatedRun()
		}
		e.repeatCount = 1
		e.current = value
	}

	e.buffered[e.numBuffered] = value
	e.numBuffered++
	if e.numBuffered == 8 {
		e.flushBufferedValues()
	}
}

func (e *RLEEncoder) flushBufferedValues() {
	if e.repeatCount >= rleMinRepeat {
		// The whole group belongs to the repeat run now in progress.
		e.numBuffered = 0
		if e.literalCount != 0 {
			e.flushLiteralRun(true)
		}

		return
	}

	e.literalCount += e.numBuffered
	e.flushLiteralRun(e.literalCount/8 >= rleMaxLiteralGroups)
	e.repeatCount = 0
}

func (e *RLEEncoder) flushLiteralRun(updateHeader bool) {
	if e.literalHeaderPos < 0 {
		e.literalHeaderPos = e.buf.Len()
		_ = e.buf.WriteByte(0)
	}

	if e.numBuffered > 0 {
		clear(e.buffered[e.numBuffered:])
		bitpack.Pack8(e.buf.Extend(e.width), &e.buffered, e.width)
		e.numBuffered = 0
	}

	if updateHeader {
		groups := (e.literalCount + 7) / 8
		e.buf.B[e.literalHeaderPos] = byte(groups<<1 | 1)
		e.literalHeaderPos = -1
		e.literalCount = 0
	}
}

func (e *RLEEncoder) flushRepeatedRun() {
	e.buf.B = binary.AppendUvarint(e.buf.B, uint64(e.repeatCount)<<1) //nolint:gosec
	v := e.current
	for i := 0; i < e.byteWidth; i++ {
		_ = e.buf.WriteByte(byte(v))
		v >>= 8
	}
	e.numBuffered = 0
	e.repeatCount = 0
}

// Flush terminates the current run so Bytes holds a complete stream. A trailing
// partial group is zero-padded. Writing may continue afterwards with fresh runs.
func (e *RLEEncoder) Flush() {
	if e.literalCount == 0 && e.repeatCount == 0 && e.numBuffered == 0 {
		return
	}

	allRepeat := e.literalCount == 0 && (e.repeatCount == e.numBuffered || e.numBuffered == 0)
	if e.repeatCount > 0 && allRepeat {
		e.flushRepeatedRun()
	} else {
		if e.numBuffered > 0 {
			e.literalCount += 8
		}
		e.flushLiteralRun(true)
		e.repeatCount = 0
	}
	e.current = 0
}

// Bytes returns the encoded stream. Call Flush first to include pending values.
func (e *RLEEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of values written.
func (e *RLEEncoder) Len() int {
	return e.count
}

// Size returns the number of encoded bytes produced so far.
func (e *RLEEncoder) Size() int {
	return e.buf.Len()
}

// Reset discards all output and pending state, keeping the bit width.
func (e *RLEEncoder) Reset() {
	e.buf.Reset()
	e.numBuffered = 0
	e.current = 0
	e.repeatCount = 0
	e.literalCount = 0
	e.literalHeaderPos = -1
	e.count = 0
}

// Finish returns the output buffer to the pool. The encoder must not be used afterwards.
func (e *RLEEncoder) Finish() {
	if e.buf != nil {
		pool.PutPageBuffer(e.buf)
		e.buf = nil
	}
}

// RLEDecoder reads an RLE/bit-packing hybrid stream.
//
// Zero-length runs are skipped. Running out of input ends the stream; a truncated
// header, value or packed run is reported by Err.
type RLEDecoder struct {
	c         cursor.Cursor
	width     int
	byteWidth int
	mask      uint32

	repeatLeft  int
	repeatValue uint32

	literalLeft int
	literal     []byte
	group       [8]uint32
	groupPos    int

	err error
}

// NewRLEDecoder creates a decoder over data for values of the given bit width.
func NewRLEDecoder(data []byte, width int) (*RLEDecoder, error) {
	if width < 0 || width > bitpack.MaxWidth {
		return nil, errs.InvalidArgument("rle.decoder", "bit width %d outside 0..%d", width, bitpack.MaxWidth)
	}

	return &RLEDecoder{
		c:         cursor.New(data),
		width:     width,
		byteWidth: (width + 7) / 8,
		mask:      uint32(uint64(1)<<width - 1),
		groupPos:  8,
	}, nil
}

// Err returns the first decoding error encountered, if any.
func (d *RLEDecoder) Err() error {
	return d.err
}

// Offset returns the number of input bytes consumed by the runs read so far.
func (d *RLEDecoder) Offset() int {
	return d.c.Pos()
}

func (d *RLEDecoder) nextRun() bool {
	if d.err != nil {
		return false
	}

	for d.c.Len() > 0 {
		header, ok := d.c.Uvarint()
		if !ok {
			d.err = errs.Malformed("rle.decode", "truncated run header at offset %d", d.c.Pos())
			return false
		}

		count := header >> 1
		if header&1 == 0 {
			raw, ok := d.c.Bytes(d.byteWidth)
			if !ok {
				d.err = errs.Malformed("rle.decode", "truncated repeat value at offset %d", d.c.Pos())
				return false
			}
			if count == 0 {
				continue
			}
			if count > rleMaxRunLength {
				d.err = errs.Malformed("rle.decode", "repeat run of %d values is too long", count)
				return false
			}
			var v uint32
			for i := len(raw) - 1; i >= 0; i-- {
				v = v<<8 | uint32(raw[i])
			}
			d.repeatValue = v & d.mask
			d.repeatLeft = int(count)

			return true
		}

		if count == 0 {
			continue
		}
		if count > rleMaxRunLength/8 {
			d.err = errs.Malformed("rle.decode", "packed run of %d groups is too long", count)
			return false
		}
		groups := int(count)
		lit, ok := d.c.Bytes(groups * d.width)
		if !ok {
			d.err = errs.Malformed("rle.decode", "packed run needs %d bytes, %d remain", groups*d.width, d.c.Len())
			return false
		}
		d.literal = lit
		d.literalLeft = groups * 8
		d.groupPos = 8

		return true
	}

	return false
}

func (d *RLEDecoder) loadGroup() {
	bitpack.Unpack8(&d.group, d.literal, d.width)
	d.literal = d.literal[d.width:]
	d.groupPos = 0
}

// unpackGroups widens len(dst) values of width bits from src and returns the bytes
// consumed. Byte-aligned widths go through the dispatch widening kernel.
func unpackGroups(dst []uint32, src []byte, width int) (int, error) {
	switch {
	case width == 0:
		clear(dst)
		return 0, nil
	case width%8 == 0:
		return len(dst) * width / 8, simd.UnpackBytes(dst, src, width)
	default:
		return bitpack.Unpack(dst, src, width)
	}
}

// Get returns the next value, or false at end of stream or on error.
func (d *RLEDecoder) Get() (uint32, bool) {
	for {
		if d.repeatLeft > 0 {
			d.repeatLeft--
			return d.repeatValue, true
		}
		if d.literalLeft > 0 {
			if d.groupPos == 8 {
				d.loadGroup()
			}
			v := d.group[d.groupPos]
			d.groupPos++
			d.literalLeft--

			return v, true
		}
		if !d.nextRun() {
			return 0, false
		}
	}
}

// GetBatch fills dst and returns the number of values produced, which is less than
// len(dst) only at end of stream or on error.
//
// Whole groups of packed runs are unpacked straight into dst; byte-aligned widths go
// through the dispatch widening kernel.
func (d *RLEDecoder) GetBatch(dst []uint32) int {
	n := 0
	for n < len(dst) {
		if d.repeatLeft > 0 {
			k := min(d.repeatLeft, len(dst)-n)
			out := dst[n : n+k]
			for i := range out {
				out[i] = d.repeatValue
			}
			d.repeatLeft -= k
			n += k

			continue
		}

		if d.literalLeft > 0 {
			// Drain a partially consumed group first.
			for d.groupPos < 8 && n < len(dst) {
				dst[n] = d.group[d.groupPos]
				d.groupPos++
				d.literalLeft--
				n++
			}
			if n == len(dst) || d.literalLeft == 0 {
				continue
			}

			whole := min(d.literalLeft, len(dst)-n) &^ 7
			if whole > 0 {
				nbytes := whole / 8 * d.width
				if _, err := unpackGroups(dst[n:n+whole], d.literal[:nbytes], d.width); err != nil {
					d.err = err
					return n
				}
				d.literal = d.literal[nbytes:]
				d.literalLeft -= whole
				n += whole

				continue
			}

			d.loadGroup()

			continue
		}

		if !d.nextRun() {
			break
		}
	}

	return n
}

// Skip advances past up to n values without materializing them and returns the
// number skipped. Skipping inside a repeat run or over whole packed groups is O(1).
func (d *RLEDecoder) Skip(n int) int {
	skipped := 0
	for skipped < n {
		if d.repeatLeft > 0 {
			k := min(d.repeatLeft, n-skipped)
			d.repeatLeft -= k
			skipped += k

			continue
		}

		if d.literalLeft > 0 {
			if d.groupPos < 8 {
				k := min(8-d.groupPos, n-skipped)
				d.groupPos += k
				d.literalLeft -= k
				skipped += k

				continue
			}

			groups := min(d.literalLeft, n-skipped) / 8
			if groups > 0 {
				d.literal = d.literal[groups*d.width:]
				d.literalLeft -= groups * 8
				skipped += groups * 8

				continue
			}

			d.loadGroup()

			continue
		}

		if !d.nextRun() {
			break
		}
	}

	return skipped
}

// EncodeRLE appends the RLE-hybrid encoding of values at width to dst.
func EncodeRLE(dst []byte, values []uint32, width int) ([]byte, error) {
	enc, err := NewRLEEncoder(width)
	if err != nil {
		return dst, err
	}
	defer enc.Finish()

	enc.WriteSlice(values)
	enc.Flush()

	return append(dst, enc.Bytes()...), nil
}

// DecodeRLE decodes up to len(dst) values and returns how many were produced.
func DecodeRLE(dst []uint32, src []byte, width int) (int, error) {
	dec, err := NewRLEDecoder(src, width)
	if err != nil {
		return 0, err
	}
	n := dec.GetBatch(dst)

	return n, dec.Err()
}
