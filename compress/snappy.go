package compress

import (
	"encoding/binary"

	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/format"
	"github.com/arloliu/colcodec/internal/pool"
)

const (
	snappyTagLiteral = 0x00
	snappyTagCopy1   = 0x01
	snappyTagCopy2   = 0x02
	snappyTagCopy4   = 0x03

	snappyHashLog = 14

	// Input is compressed in independent 64KiB blocks so every offset fits a copy-2 tag.
	snappyBlockSize = 1 << 16

	// snappyInputMargin keeps the match finder's 8-byte loads inside the block.
	snappyInputMargin = 16 - 1

	// Blocks shorter than this are emitted as a single literal.
	snappyMinNonLiteralBlockSize = 1 + 1 + snappyInputMargin

	snappyMaxDecodedLen = 1<<32 - 1
)

// SnappyCompressBound returns the largest output SnappyCompressBlock can produce for
// n input bytes.
func SnappyCompressBound(n int) int {
	return 32 + n + n/6
}

func snappyHash(v uint32) uint32 {
	return (v * 0x1e35a7bd) >> (32 - snappyHashLog)
}

// SnappyCompressBlock compresses src into dst in the Snappy block format and returns
// the number of bytes written.
//
// dst must hold SnappyCompressBound(len(src)) bytes, otherwise the call fails with
// errs.ErrCapacity before writing anything.
func SnappyCompressBlock(dst, src []byte) (int, error) {
	const op = "compress.SnappyCompressBlock"

	if bound := SnappyCompressBound(len(src)); len(dst) < bound {
		return 0, errs.Capacity(op, "need %d bytes, have %d", bound, len(dst))
	}
	if uint64(len(src)) > snappyMaxDecodedLen {
		return 0, errs.Capacity(op, "input of %d bytes exceeds the format limit", len(src))
	}

	d := binary.PutUvarint(dst, uint64(len(src)))

	var table []int32
	for len(src) > 0 {
		block := src
		if len(block) > snappyBlockSize {
			block = block[:snappyBlockSize]
		}
		src = src[len(block):]

		if len(block) < snappyMinNonLiteralBlockSize {
			d += snappyEmitLiteral(dst[d:], block)
			continue
		}
		if table == nil {
			var release func()
			table, release = pool.Int32s.Get(1 << snappyHashLog)
			defer release()
		}
		clear(table)
		d += snappyEncodeBlock(dst[d:], block, table)
	}

	return d, nil
}

// snappyEncodeBlock compresses one block of at least snappyMinNonLiteralBlockSize bytes.
// Candidates come from a table of the most recent position per 4-byte hash; the gap
// between lookups widens by one byte for every 32 misses.
func snappyEncodeBlock(dst, src []byte, table []int32) int {
	sLimit := len(src) - snappyInputMargin
	d, nextEmit := 0, 0
	s := 1
	nextHash := snappyHash(load32(src, s))

search:
	for {
		skip := 32
		nextS := s
		candidate := 0
		for {
			s = nextS
			step := skip >> 5
			nextS = s + step
			skip += step
			if nextS > sLimit {
				break search
			}
			candidate = int(table[nextHash])
			table[nextHash] = int32(s)
			nextHash = snappyHash(load32(src, nextS))
			if load32(src, s) == load32(src, candidate) {
				break
			}
		}

		d += snappyEmitLiteral(dst[d:], src[nextEmit:s])

		// Emit copies back to back while the byte after each copy starts another match.
		for {
			base := s
			s += 4 + matchLen(src[s+4:], src[candidate+4:])
			d += snappyEmitCopy(dst[d:], base-candidate, s-base)
			nextEmit = s
			if s >= sLimit {
				break search
			}

			x := binary.LittleEndian.Uint64(src[s-1:])
			table[snappyHash(uint32(x))] = int32(s - 1)
			currHash := snappyHash(uint32(x >> 8))
			candidate = int(table[currHash])
			table[currHash] = int32(s)
			if uint32(x>>8) != load32(src, candidate) {
				nextHash = snappyHash(uint32(x >> 16))
				s++

				break
			}
		}
	}

	if nextEmit < len(src) {
		d += snappyEmitLiteral(dst[d:], src[nextEmit:])
	}

	return d
}

func snappyEmitLiteral(dst, lit []byte) int {
	i := 0
	n := uint32(len(lit) - 1)
	switch {
	case n < 60:
		dst[0] = uint8(n)<<2 | snappyTagLiteral
		i = 1
	case n < 1<<8:
		dst[0] = 60<<2 | snappyTagLiteral
		dst[1] = uint8(n)
		i = 2
	case n < 1<<16:
		dst[0] = 61<<2 | snappyTagLiteral
		dst[1] = uint8(n)
		dst[2] = uint8(n >> 8)
		i = 3
	case n < 1<<24:
		dst[0] = 62<<2 | snappyTagLiteral
		dst[1] = uint8(n)
		dst[2] = uint8(n >> 8)
		dst[3] = uint8(n >> 16)
		i = 4
	default:
		dst[0] = 63<<2 | snappyTagLiteral
		binary.LittleEndian.PutUint32(dst[1:], n)
		i = 5
	}

	return i + copy(dst[i:], lit)
}

// snappyEmitCopy writes the shortest tag sequence for a copy of length bytes at offset.
func snappyEmitCopy(dst []byte, offset, length int) int {
	i := 0
	if offset >= 1<<16 {
		for length > 0 {
			n := min(length, 64)
			dst[i] = uint8(n-1)<<2 | snappyTagCopy4
			binary.LittleEndian.PutUint32(dst[i+1:], uint32(offset))
			i += 5
			length -= n
		}

		return i
	}

	// Leave at least 4 bytes for the last tag, so a copy-1 remains possible.
	for length >= 68 {
		i += snappyPutCopy2(dst[i:], offset, 64)
		length -= 64
	}
	if length > 64 {
		i += snappyPutCopy2(dst[i:], offset, 60)
		length -= 60
	}
	if length >= 12 || offset >= 2048 {
		return i + snappyPutCopy2(dst[i:], offset, length)
	}
	dst[i] = uint8(offset>>8)<<5 | uint8(length-4)<<2 | snappyTagCopy1
	dst[i+1] = uint8(offset)

	return i + 2
}

func snappyPutCopy2(dst []byte, offset, length int) int {
	dst[0] = uint8(length-1)<<2 | snappyTagCopy2
	dst[1] = uint8(offset)
	dst[2] = uint8(offset >> 8)

	return 3
}

// SnappyDecodedLen returns the uncompressed length recorded in a Snappy block header.
func SnappyDecodedLen(src []byte) (int, error) {
	n, _, err := snappyDecodedLen(src)
	return n, err
}

func snappyDecodedLen(src []byte) (int, int, error) {
	const op = "compress.SnappyDecodedLen"

	v, n := binary.Uvarint(src)
	if n <= 0 {
		return 0, 0, errs.Malformed(op, "invalid length header")
	}
	if v > snappyMaxDecodedLen || uint64(int(v)) != v {
		return 0, 0, errs.Malformed(op, "decoded length %d too large", v)
	}

	return int(v), n, nil
}

// SnappyDecompressBlock decodes a Snappy block into dst and returns the decoded length.
//
// The declared length must fit dst (errs.ErrCapacity otherwise) and must be produced
// exactly. Copies with offset 0 or reaching before the start of the output, tags
// running past the input and output overruns all fail with errs.ErrMalformed.
func SnappyDecompressBlock(dst, src []byte) (int, error) {
	const op = "compress.SnappyDecompressBlock"

	dLen, s, err := snappyDecodedLen(src)
	if err != nil {
		return 0, err
	}
	if dLen > len(dst) {
		return 0, errs.Capacity(op, "decoded length %d exceeds destination of %d bytes", dLen, len(dst))
	}
	dst = dst[:dLen]

	d := 0
	for s < len(src) {
		tag := src[s]
		var length, offset int

		switch tag & 0x03 {
		case snappyTagLiteral:
			x := uint32(tag >> 2)
			switch {
			case x < 60:
				s++
			case x == 60:
				s += 2
				if s > len(src) {
					return 0, errs.Malformed(op, "truncated literal length")
				}
				x = uint32(src[s-1])
			case x == 61:
				s += 3
				if s > len(src) {
					return 0, errs.Malformed(op, "truncated literal length")
				}
				x = uint32(src[s-2]) | uint32(src[s-1])<<8
			case x == 62:
				s += 4
				if s > len(src) {
					return 0, errs.Malformed(op, "truncated literal length")
				}
				x = uint32(src[s-3]) | uint32(src[s-2])<<8 | uint32(src[s-1])<<16
			default:
				s += 5
				if s > len(src) {
					return 0, errs.Malformed(op, "truncated literal length")
				}
				x = binary.LittleEndian.Uint32(src[s-4:])
			}
			length = int(x) + 1
			if length <= 0 || length > len(src)-s {
				return 0, errs.Malformed(op, "literal of %d bytes exceeds input at offset %d", length, s)
			}
			if length > len(dst)-d {
				return 0, errs.Malformed(op, "literal of %d bytes exceeds declared length", length)
			}
			d += copy(dst[d:], src[s:s+length])
			s += length

			continue

		case snappyTagCopy1:
			s += 2
			if s > len(src) {
				return 0, errs.Malformed(op, "truncated copy-1 tag")
			}
			length = 4 + int(tag>>2)&0x7
			offset = int(tag&0xe0)<<3 | int(src[s-1])

		case snappyTagCopy2:
			s += 3
			if s > len(src) {
				return 0, errs.Malformed(op, "truncated copy-2 tag")
			}
			length = 1 + int(tag>>2)
			offset = int(binary.LittleEndian.Uint16(src[s-2:]))

		default:
			s += 5
			if s > len(src) {
				return 0, errs.Malformed(op, "truncated copy-4 tag")
			}
			length = 1 + int(tag>>2)
			offset = int(binary.LittleEndian.Uint32(src[s-4:]))
		}

		if offset <= 0 || offset > d {
			return 0, errs.Malformed(op, "copy offset %d invalid at output offset %d", offset, d)
		}
		if length > len(dst)-d {
			return 0, errs.Malformed(op, "copy of %d bytes exceeds declared length", length)
		}
		copyBackref(dst, d, offset, length)
		d += length
	}

	if d != dLen {
		return 0, errs.Malformed(op, "decoded %d bytes, header declares %d", d, dLen)
	}

	return d, nil
}

// SnappyCompressor is the Codec for Snappy pages.
type SnappyCompressor struct {
	cfg codecConfig
}

var _ Codec = (*SnappyCompressor)(nil)

// NewSnappyCompressor creates a Snappy codec. Snappy has no levels; WithLevel is accepted
// and ignored.
func NewSnappyCompressor(opts ...CodecOption) (SnappyCompressor, error) {
	cfg, err := newCodecConfig(0, opts...)
	if err != nil {
		return SnappyCompressor{}, err
	}

	return SnappyCompressor{cfg: cfg}, nil
}

func (c SnappyCompressor) Type() format.CompressionType {
	return format.CompressionSnappy
}

func (c SnappyCompressor) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, SnappyCompressBound(len(data)))
	n, err := SnappyCompressBlock(dst, data)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress sizes the output from the block header. A positive expectedSize must
// agree with it.
func (c SnappyCompressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	const op = "compress.SnappyCompressor.Decompress"

	n, err := SnappyDecodedLen(data)
	if err != nil {
		return nil, err
	}
	if expectedSize > 0 && n != expectedSize {
		return nil, errs.Malformed(op, "header declares %d bytes, expected %d", n, expectedSize)
	}
	if expectedSize <= 0 && n > c.cfg.maxDecodedSize {
		return nil, errs.Malformed(op, "header declares %d bytes, limit is %d", n, c.cfg.maxDecodedSize)
	}

	dst := make([]byte, n)
	if _, err := SnappyDecompressBlock(dst, data); err != nil {
		return nil, err
	}

	return dst, nil
}
