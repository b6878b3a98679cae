package encoding

import (
	"encoding/binary"
	"math"

	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/internal/pool"
	"github.com/arloliu/colcodec/simd"
)

// MaxLevelWidth is the widest bit width accepted for definition and repetition levels.
const MaxLevelWidth = 16

// levelChunk is the number of values widened through scratch space at a time.
const levelChunk = 512

// EncodeLevels appends the RLE-hybrid encoding of levels at width to dst.
// Negative levels and levels that do not fit in width bits are rejected.
func EncodeLevels(dst []byte, levels []int16, width int) ([]byte, error) {
	const op = "levels.encode"

	if width < 0 || width > MaxLevelWidth {
		return dst, errs.InvalidArgument(op, "level width %d outside 0..%d", width, MaxLevelWidth)
	}

	limit := int32(1)<<width - 1
	for i, l := range levels {
		if l < 0 || int32(l) > limit {
			return dst, errs.InvalidArgument(op, "level %d at index %d does not fit in %d bits", l, i, width)
		}
	}

	enc, err := NewRLEEncoder(width)
	if err != nil {
		return dst, err
	}
	defer enc.Finish()

	scratch, release := pool.Uint32s.Get(min(len(levels), levelChunk))
	defer release()

	for len(levels) > 0 {
		k := min(len(levels), len(scratch))
		for i, l := range levels[:k] {
			scratch[i] = uint32(l) //nolint:gosec
		}
		enc.WriteSlice(scratch[:k])
		levels = levels[k:]
	}
	enc.Flush()

	return append(dst, enc.Bytes()...), nil
}

// DecodeLevels decodes up to len(dst) levels of the given width from src and returns
// the number produced. Running out of input before dst is full is not an error.
//
// This is the hot path for definition and repetition levels: run headers are parsed
// inline, repeat runs are filled with the dispatch fill kernel and packed runs are
// widened in chunks and narrowed with the dispatch narrowing kernel.
func DecodeLevels(dst []int16, src []byte, width int) (int, error) {
	const op = "levels.decode"

	if width < 0 || width > MaxLevelWidth {
		return 0, errs.InvalidArgument(op, "level width %d outside 0..%d", width, MaxLevelWidth)
	}

	byteWidth := (width + 7) / 8
	mask := uint32(1)<<width - 1
	var scratch [levelChunk]uint32

	pos, n := 0, 0
	for n < len(dst) && pos < len(src) {
		// Inline uvarint parse of the run header.
		var header uint64
		var shift uint
		for {
			if pos >= len(src) {
				return n, errs.Malformed(op, "truncated run header")
			}
			b := src[pos]
			pos++
			if shift == 63 && b > 1 {
				return n, errs.Malformed(op, "run header overflows 64 bits")
			}
			header |= uint64(b&0x7f) << shift
			if b < 0x80 {
				break
			}
			shift += 7
		}

		count := header >> 1
		if header&1 == 0 {
			if len(src)-pos < byteWidth {
				return n, errs.Malformed(op, "truncated repeat value")
			}
			var v uint32
			for i := byteWidth - 1; i >= 0; i-- {
				v = v<<8 | uint32(src[pos+i])
			}
			v &= mask
			pos += byteWidth
			if count == 0 {
				continue
			}

			k := int(min(count, uint64(len(dst)-n))) //nolint:gosec
			simd.FillInt16(dst[n:n+k], int16(v))     //nolint:gosec
			n += k

			continue
		}

		if count == 0 {
			continue
		}
		if count > math.MaxInt32/8 {
			return n, errs.Malformed(op, "packed run of %d groups is too long", count)
		}
		values := int(count) * 8
		nbytes := int(count) * width
		if len(src)-pos < nbytes {
			return n, errs.Malformed(op, "packed run needs %d bytes, %d remain", nbytes, len(src)-pos)
		}
		lit := src[pos : pos+nbytes]
		pos += nbytes

		values = min(values, len(dst)-n)
		for values > 0 {
			k := min(values, levelChunk)
			chunk := scratch[:k]
			used, err := unpackGroups(chunk, lit, width)
			if err != nil {
				return n, err
			}
			lit = lit[used:]
			n += simd.NarrowUint32ToInt16(dst[n:n+k], chunk)
			values -= k
		}
	}

	return n, nil
}

// EncodeLevelsPrefixed appends a 4-byte little-endian length followed by the
// RLE-hybrid encoding of levels, the layout used by v1 data pages.
func EncodeLevelsPrefixed(dst []byte, levels []int16, width int) ([]byte, error) {
	start := len(dst)
	dst = append(dst, 0, 0, 0, 0)

	out, err := EncodeLevels(dst, levels, width)
	if err != nil {
		return dst[:start], err
	}
	binary.LittleEndian.PutUint32(out[start:], uint32(len(out)-start-4)) //nolint:gosec

	return out, nil
}

// DecodeLevelsPrefixed decodes a length-prefixed level stream and returns the number of
// levels produced and the number of bytes consumed, prefix included.
func DecodeLevelsPrefixed(dst []int16, src []byte, width int) (int, int, error) {
	const op = "levels.decode_prefixed"

	if len(src) < 4 {
		return 0, 0, errs.Malformed(op, "missing length prefix")
	}
	size := binary.LittleEndian.Uint32(src)
	if uint64(size) > uint64(len(src)-4) {
		return 0, 0, errs.Malformed(op, "declared length %d exceeds %d remaining bytes", size, len(src)-4)
	}

	n, err := DecodeLevels(dst, src[4:4+size], width)

	return n, 4 + int(size), err
}

// EncodeBooleansRLE appends the RLE boolean encoding of values to dst: a 4-byte
// little-endian length followed by an RLE-hybrid stream of width 1.
func EncodeBooleansRLE(dst []byte, values []bool) []byte {
	start := len(dst)
	dst = append(dst, 0, 0, 0, 0)

	enc, _ := NewRLEEncoder(1)
	defer enc.Finish()

	for _, v := range values {
		if v {
			enc.Write(1)
		} else {
			enc.Write(0)
		}
	}
	enc.Flush()

	dst = append(dst, enc.Bytes()...)
	binary.LittleEndian.PutUint32(dst[start:], uint32(len(dst)-start-4)) //nolint:gosec

	return dst
}

// DecodeBooleansRLE decodes up to len(dst) booleans and returns the count produced and
// the bytes consumed.
func DecodeBooleansRLE(dst []bool, src []byte) (int, int, error) {
	const op = "boolean.decode_rle"

	if len(src) < 4 {
		return 0, 0, errs.Malformed(op, "missing length prefix")
	}
	size := binary.LittleEndian.Uint32(src)
	if uint64(size) > uint64(len(src)-4) {
		return 0, 0, errs.Malformed(op, "declared length %d exceeds %d remaining bytes", size, len(src)-4)
	}

	dec, _ := NewRLEDecoder(src[4:4+size], 1)
	n := 0
	for n < len(dst) {
		v, ok := dec.Get()
		if !ok {
			break
		}
		dst[n] = v != 0
		n++
	}

	return n, 4 + int(size), dec.Err()
}
