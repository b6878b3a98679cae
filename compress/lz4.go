package compress

import (
	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/format"
	"github.com/arloliu/colcodec/internal/pool"
)

const (
	lz4MinMatch     = 4
	lz4LastLiterals = 5     // the block always ends with at least 5 literal bytes
	lz4MFLimit      = 12    // no match may start in the last 12 bytes
	lz4MaxOffset    = 65535 // offsets are stored in 16 bits
	lz4RunMask      = 15

	lz4FastHashLog    = 12
	lz4FastSkip       = 6
	lz4HighHashLog    = 16
	lz4HighSkip       = 8
	lz4DefaultLevel   = 1
	lz4HighLevelStart = 2
)

// LZ4CompressBound returns the largest block LZ4CompressBlock can produce for n input bytes.
func LZ4CompressBound(n int) int {
	return n + n/255 + 16
}

func lz4Hash(v uint32, hashLog int) uint32 {
	return (v * 2654435761) >> (32 - hashLog)
}

// lz4Table is a direct-mapped match table of positions+1, zero meaning empty.
// With ways == 2 every bucket keeps its two most recent positions.
type lz4Table struct {
	slots   []int32
	hashLog int
	ways    int
}

func (t *lz4Table) insert(h uint32, pos int) {
	b := int(h) * t.ways
	if t.ways == 2 {
		t.slots[b+1] = t.slots[b]
	}
	t.slots[b] = int32(pos + 1)
}

// find returns the best candidate in the bucket for the 4-byte sequence seq at ip,
// together with its match length. It returns -1 when no candidate matches.
func (t *lz4Table) find(src []byte, h uint32, ip int, seq uint32, matchLimit int) (int, int) {
	best, bestLen := -1, 0
	b := int(h) * t.ways
	for w := range t.ways {
		ref := int(t.slots[b+w]) - 1
		if ref < 0 || ip-ref > lz4MaxOffset || load32(src, ref) != seq {
			continue
		}
		n := lz4MinMatch + matchLen(src[ip+lz4MinMatch:matchLimit], src[ref+lz4MinMatch:])
		if n > bestLen {
			best, bestLen = ref, n
		}
	}

	return best, bestLen
}

// LZ4CompressBlock compresses src into dst as a single LZ4 block and returns the
// number of bytes written.
//
// Level 1 (and anything lower) uses a 4K-entry table with fast skipping over
// incompressible input. Higher levels use a 64K-entry table that keeps two candidates
// per bucket and accelerates skipping more slowly. The only possible error is
// errs.ErrCapacity; a dst of LZ4CompressBound(len(src)) bytes always suffices.
//
// Empty input compresses to the single token byte 0.
func LZ4CompressBlock(dst, src []byte, level int) (int, error) {
	const op = "compress.LZ4CompressBlock"

	if len(src) == 0 {
		if len(dst) < 1 {
			return 0, errs.Capacity(op, "need 1 byte, have 0")
		}
		dst[0] = 0

		return 1, nil
	}
	if len(src) <= lz4MFLimit {
		return lz4EmitLastLiterals(dst, 0, src, op)
	}

	table := lz4Table{hashLog: lz4FastHashLog, ways: 1}
	skip := lz4FastSkip
	if level >= lz4HighLevelStart {
		table.hashLog, table.ways = lz4HighHashLog, 2
		skip = lz4HighSkip
	}
	slots, release := pool.Int32s.Get(table.ways << table.hashLog)
	defer release()
	clear(slots)
	table.slots = slots

	mfLimit := len(src) - lz4MFLimit
	matchLimit := len(src) - lz4LastLiterals
	d, anchor, ip := 0, 0, 0
	var err error

	for ip <= mfLimit {
		seq := load32(src, ip)
		h := lz4Hash(seq, table.hashLog)
		ref, n := table.find(src, h, ip, seq, matchLimit)
		table.insert(h, ip)
		if ref < 0 {
			ip += 1 + (ip-anchor)>>skip
			continue
		}

		// Extend the match backwards over literals that also match.
		for ip > anchor && ref > 0 && src[ip-1] == src[ref-1] {
			ip--
			ref--
			n++
		}

		d, err = lz4EmitSequence(dst, d, src[anchor:ip], ip-ref, n, op)
		if err != nil {
			return 0, err
		}
		ip += n
		anchor = ip

		if ip <= mfLimit {
			table.insert(lz4Hash(load32(src, ip-2), table.hashLog), ip-2)
		}
	}

	return lz4EmitLastLiterals(dst, d, src[anchor:], op)
}

func lz4PutLength(dst []byte, d, n int) int {
	for n >= 255 {
		dst[d] = 255
		d++
		n -= 255
	}
	dst[d] = byte(n)

	return d + 1
}

func lz4EmitSequence(dst []byte, d int, literals []byte, offset, matchLen int, op string) (int, error) {
	litLen := len(literals)
	ml := matchLen - lz4MinMatch
	need := 1 + litLen/255 + 1 + litLen + 2 + ml/255 + 1
	if d+need > len(dst) {
		return 0, errs.Capacity(op, "need %d bytes at offset %d, have %d", need, d, len(dst))
	}

	tokenPos := d
	d++
	var token byte
	if litLen >= lz4RunMask {
		token = lz4RunMask << 4
		d = lz4PutLength(dst, d, litLen-lz4RunMask)
	} else {
		token = byte(litLen) << 4
	}
	d += copy(dst[d:], literals)

	dst[d] = byte(offset)
	dst[d+1] = byte(offset >> 8)
	d += 2

	if ml >= lz4RunMask {
		token |= lz4RunMask
		d = lz4PutLength(dst, d, ml-lz4RunMask)
	} else {
		token |= byte(ml)
	}
	dst[tokenPos] = token

	return d, nil
}

func lz4EmitLastLiterals(dst []byte, d int, literals []byte, op string) (int, error) {
	n := len(literals)
	need := 1 + n/255 + 1 + n
	if d+need > len(dst) {
		return 0, errs.Capacity(op, "need %d bytes at offset %d, have %d", need, d, len(dst))
	}

	if n >= lz4RunMask {
		dst[d] = lz4RunMask << 4
		d = lz4PutLength(dst, d+1, n-lz4RunMask)
	} else {
		dst[d] = byte(n) << 4
		d++
	}
	d += copy(dst[d:], literals)

	return d, nil
}

// lz4ReadLength continues an extended length starting at n. It returns false when
// the input ends inside the length.
func lz4ReadLength(src []byte, s, n int) (int, int, bool) {
	for {
		if s >= len(src) {
			return 0, s, false
		}
		b := src[s]
		s++
		n += int(b)
		if b != 255 {
			return n, s, true
		}
	}
}

// LZ4DecompressBlock decodes one LZ4 block from src into dst and returns the number of
// bytes produced.
//
// Every literal and match length is checked against the remaining input and output
// before copying. A block that needs more room than dst provides fails with
// errs.ErrCapacity; every other inconsistency, including a zero offset or an offset
// reaching before the start of the output, fails with errs.ErrMalformed.
func LZ4DecompressBlock(dst, src []byte) (int, error) {
	const op = "compress.LZ4DecompressBlock"

	s, d := 0, 0
	var ok bool
	for s < len(src) {
		token := src[s]
		s++

		litLen := int(token >> 4)
		if litLen == lz4RunMask {
			if litLen, s, ok = lz4ReadLength(src, s, litLen); !ok {
				return 0, errs.Malformed(op, "truncated literal length")
			}
		}
		if litLen > len(src)-s {
			return 0, errs.Malformed(op, "literal run of %d bytes exceeds input at offset %d", litLen, s)
		}
		if litLen > len(dst)-d {
			return 0, errs.Capacity(op, "literal run of %d bytes exceeds output at offset %d", litLen, d)
		}
		d += copy(dst[d:], src[s:s+litLen])
		s += litLen

		if s == len(src) {
			break
		}

		if len(src)-s < 2 {
			return 0, errs.Malformed(op, "truncated match offset")
		}
		offset := int(src[s]) | int(src[s+1])<<8
		s += 2
		if offset == 0 || offset > d {
			return 0, errs.Malformed(op, "match offset %d invalid at output offset %d", offset, d)
		}

		n := int(token&lz4RunMask) + lz4MinMatch
		if token&lz4RunMask == lz4RunMask {
			if n, s, ok = lz4ReadLength(src, s, n); !ok {
				return 0, errs.Malformed(op, "truncated match length")
			}
		}
		if n > len(dst)-d {
			return 0, errs.Capacity(op, "match of %d bytes exceeds output at offset %d", n, d)
		}
		copyBackref(dst, d, offset, n)
		d += n
	}

	return d, nil
}

// LZ4Compressor is the Codec for bare LZ4 blocks (LZ4_RAW pages).
type LZ4Compressor struct {
	cfg codecConfig
}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 block codec.
func NewLZ4Compressor(opts ...CodecOption) (LZ4Compressor, error) {
	cfg, err := newCodecConfig(lz4DefaultLevel, opts...)
	if err != nil {
		return LZ4Compressor{}, err
	}

	return LZ4Compressor{cfg: cfg}, nil
}

func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4Raw
}

// Compress compresses data into a newly allocated LZ4 block.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, LZ4CompressBound(len(data)))
	n, err := LZ4CompressBlock(dst, data, c.cfg.level)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decodes an LZ4 block. LZ4 blocks do not record their decoded size, so
// without expectedSize the output buffer grows until the block fits.
func (c LZ4Compressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	return decompressBlock("compress.LZ4Compressor.Decompress", data, expectedSize, c.cfg.maxDecodedSize, LZ4DecompressBlock)
}
