package compress

import (
	"github.com/arloliu/colcodec/bitpack"
	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/format"
	"github.com/arloliu/colcodec/internal/pool"
)

const (
	deflateWindowSize    = 1 << 15
	deflateWindowMask    = deflateWindowSize - 1
	deflateHashBits      = 15
	deflateMinMatch      = 3
	deflateMaxMatch      = 258
	deflateMaxStored     = 65535
	deflateDefaultLevel  = 6
	deflateMaxLevel      = 9
	deflateNumLitLens    = 286
	deflateMinLitLenCode = 257

	// A minimum length match further back than this costs more than three literals.
	deflateTooFar = 4096

	matchFlag = 1 << 31
)

// deflateLevels sets the hash chain depth and the length that ends a search early.
var deflateLevels = [deflateMaxLevel + 1]struct{ chain, nice int }{
	{0, 0},
	{4, 8},
	{8, 16},
	{16, 32},
	{32, 32},
	{64, 64},
	{128, 128},
	{256, 258},
	{1024, 258},
	{4096, 258},
}

// DeflateCompressBound returns the largest raw DEFLATE stream DeflateCompressBlock can
// produce for n input bytes.
func DeflateCompressBound(n int) int {
	return n + n>>12 + n>>14 + n>>25 + 13
}

// lz token: a literal byte, or matchFlag | (length-3)<<16 | (distance-1).
func matchToken(length, distance int) uint32 {
	return matchFlag | uint32(length-deflateMinMatch)<<16 | uint32(distance-1)
}

func deflateHash(b []byte, i int) uint32 {
	v := uint32(b[i]) | uint32(b[i+1])<<8 | uint32(b[i+2])<<16
	return (v * 0x9E3779B1) >> (32 - deflateHashBits)
}

// deflateTokens runs greedy LZ77 over src with hash chains. head holds the most recent
// position+1 per hash and prev links each position to the previous one with the same
// hash, so a chain only walks strictly older positions.
func deflateTokens(tokens []uint32, src []byte, chain, nice int, head, prev []int32) []uint32 {
	clear(head)

	insert := func(i int) {
		h := deflateHash(src, i)
		prev[i&deflateWindowMask] = head[h]
		head[h] = int32(i + 1)
	}

	for i := 0; i < len(src); {
		if len(src)-i < deflateMinMatch {
			tokens = append(tokens, uint32(src[i]))
			i++

			continue
		}

		limit := min(len(src), i+deflateMaxMatch)
		bestLen, bestDist := 0, 0
		cand := int(head[deflateHash(src, i)]) - 1
		for depth := chain; cand >= 0 && i-cand <= deflateWindowSize && depth > 0; depth-- {
			if src[cand+bestLen] == src[i+bestLen] || bestLen == 0 {
				if n := matchLen(src[i:limit], src[cand:]); n > bestLen {
					bestLen, bestDist = n, i-cand
					if n >= nice || i+n == limit {
						break
					}
				}
			}
			cand = int(prev[cand&deflateWindowMask]) - 1
		}
		insert(i)

		if bestLen == deflateMinMatch && bestDist > deflateTooFar {
			bestLen = 0
		}
		if bestLen < deflateMinMatch {
			tokens = append(tokens, uint32(src[i]))
			i++

			continue
		}

		tokens = append(tokens, matchToken(bestLen, bestDist))
		end := i + bestLen
		for i++; i < end; i++ {
			if len(src)-i >= deflateMinMatch {
				insert(i)
			}
		}
	}

	return tokens
}

// deflateBlockPlan holds the symbol statistics and the dynamic code of one block.
type deflateBlockPlan struct {
	litFreq   [deflateNumLitLens]uint32
	distFreq  [numDistSymbols]uint32
	extraBits int

	litLens  [deflateNumLitLens]uint8
	distLens [numDistSymbols]uint8
	hlit     int
	hdist    int

	clTokens []uint16 // code-length symbol | repeat value<<5
	clFreq   [numCodeLenSymbols]uint32
	clLens   [numCodeLenSymbols]uint8
	hclen    int
}

func (p *deflateBlockPlan) count(tokens []uint32) {
	for _, t := range tokens {
		if t&matchFlag == 0 {
			p.litFreq[t]++
			continue
		}
		length := int(t>>16&0xff) + deflateMinMatch
		distance := int(t&0xffff) + 1
		lc, dc := lengthCode(length), distCode(distance)
		p.litFreq[deflateMinLitLenCode+lc]++
		p.distFreq[dc]++
		p.extraBits += int(lengthExtra[lc]) + int(distExtra[dc])
	}
	p.litFreq[endOfBlock]++
}

// fixedBits returns the bit size of the block body under the fixed code.
func (p *deflateBlockPlan) fixedBits(t *fixedTables) int {
	n := 3 + p.extraBits
	for s, f := range p.litFreq {
		n += int(f) * int(t.litLens[s])
	}
	for _, f := range p.distFreq {
		n += int(f) * 5
	}

	return n
}

// buildDynamic derives the dynamic code and returns the block size in bits,
// header included.
func (p *deflateBlockPlan) buildDynamic() int {
	huffmanLengths(p.litLens[:], p.litFreq[:], maxCodeBits)
	huffmanLengths(p.distLens[:], p.distFreq[:], maxCodeBits)

	p.hlit = deflateNumLitLens
	for p.hlit > deflateMinLitLenCode && p.litLens[p.hlit-1] == 0 {
		p.hlit--
	}
	p.hdist = numDistSymbols
	for p.hdist > 1 && p.distLens[p.hdist-1] == 0 {
		p.hdist--
	}

	p.clTokens = p.clTokens[:0]
	p.clTokens = appendCodeLengthTokens(p.clTokens, p.litLens[:p.hlit], p.distLens[:p.hdist])
	p.clFreq = [numCodeLenSymbols]uint32{}
	clExtra := 0
	for _, t := range p.clTokens {
		sym := t & 31
		p.clFreq[sym]++
		clExtra += int(codeLenExtraBits(int(sym)))
	}
	huffmanLengths(p.clLens[:], p.clFreq[:], maxCodeLenBits)

	p.hclen = numCodeLenSymbols
	for p.hclen > 4 && p.clLens[codeLenOrder[p.hclen-1]] == 0 {
		p.hclen--
	}

	n := 3 + 5 + 5 + 4 + 3*p.hclen + clExtra + p.extraBits
	for s, f := range p.clFreq {
		n += int(f) * int(p.clLens[s])
	}
	for s, f := range p.litFreq {
		n += int(f) * int(p.litLens[s])
	}
	for s, f := range p.distFreq {
		n += int(f) * int(p.distLens[s])
	}

	return n
}

func codeLenExtraBits(sym int) uint8 {
	switch sym {
	case 16:
		return 2
	case 17:
		return 3
	case 18:
		return 7
	default:
		return 0
	}
}

// appendCodeLengthTokens run-length codes the concatenated literal/length and distance
// code lengths with symbols 16 (repeat previous), 17 and 18 (zero runs).
func appendCodeLengthTokens(dst []uint16, litLens, distLens []uint8) []uint16 {
	all := make([]uint8, 0, len(litLens)+len(distLens))
	all = append(all, litLens...)
	all = append(all, distLens...)

	for i := 0; i < len(all); {
		l := all[i]
		run := 1
		for i+run < len(all) && all[i+run] == l {
			run++
		}
		i += run

		if l == 0 {
			for run >= 11 {
				r := min(run, 138)
				dst = append(dst, 18|uint16(r-11)<<5)
				run -= r
			}
			if run >= 3 {
				dst = append(dst, 17|uint16(run-3)<<5)
				run = 0
			}
			for ; run > 0; run-- {
				dst = append(dst, 0)
			}

			continue
		}

		dst = append(dst, uint16(l))
		run--
		for run >= 3 {
			r := min(run, 6)
			dst = append(dst, 16|uint16(r-3)<<5)
			run -= r
		}
		for ; run > 0; run-- {
			dst = append(dst, uint16(l))
		}
	}

	return dst
}

func storedSize(n int) int {
	blocks := max(1, (n+deflateMaxStored-1)/deflateMaxStored)
	return n + 5*blocks
}

func writeStored(w *bitpack.Writer, src []byte) {
	for {
		chunk := src[:min(len(src), deflateMaxStored)]
		src = src[len(chunk):]
		final := uint32(0)
		if len(src) == 0 {
			final = 1
		}
		w.WriteBits(final, 3) // BFINAL, BTYPE=00
		w.AlignByte()
		n := uint16(len(chunk))
		w.WriteBytes([]byte{byte(n), byte(n >> 8), ^byte(n), ^byte(n >> 8)})
		w.WriteBytes(chunk)
		if len(src) == 0 {
			return
		}
	}
}

func writeTokens(w *bitpack.Writer, tokens []uint32, lit, dist []huffCode) {
	for _, t := range tokens {
		if t&matchFlag == 0 {
			c := lit[t]
			w.WriteBits(uint32(c.code), int(c.len))

			continue
		}
		length := int(t>>16&0xff) + deflateMinMatch
		distance := int(t&0xffff) + 1

		lc := lengthCode(length)
		c := lit[deflateMinLitLenCode+lc]
		w.WriteBits(uint32(c.code), int(c.len))
		w.WriteBits(uint32(length-int(lengthBase[lc])), int(lengthExtra[lc]))

		dc := distCode(distance)
		c = dist[dc]
		w.WriteBits(uint32(c.code), int(c.len))
		w.WriteBits(uint32(distance-int(distBase[dc])), int(distExtra[dc]))
	}
	c := lit[endOfBlock]
	w.WriteBits(uint32(c.code), int(c.len))
}

func (p *deflateBlockPlan) writeDynamic(w *bitpack.Writer, tokens []uint32) {
	w.WriteBits(1|2<<1, 3) // BFINAL, BTYPE=10
	w.WriteBits(uint32(p.hlit-deflateMinLitLenCode), 5)
	w.WriteBits(uint32(p.hdist-1), 5)
	w.WriteBits(uint32(p.hclen-4), 4)
	for _, sym := range codeLenOrder[:p.hclen] {
		w.WriteBits(uint32(p.clLens[sym]), 3)
	}

	var clCodes [numCodeLenSymbols]huffCode
	canonicalCodes(clCodes[:], p.clLens[:])
	for _, t := range p.clTokens {
		sym := t & 31
		c := clCodes[sym]
		w.WriteBits(uint32(c.code), int(c.len))
		w.WriteBits(uint32(t>>5), int(codeLenExtraBits(int(sym))))
	}

	var litCodes [deflateNumLitLens]huffCode
	var distCodes [numDistSymbols]huffCode
	canonicalCodes(litCodes[:], p.litLens[:])
	canonicalCodes(distCodes[:], p.distLens[:])
	writeTokens(w, tokens, litCodes[:], distCodes[:])
}

var deflateBuffers = pool.NewByteBufferPool(pool.PageBufferDefaultSize, pool.PageBufferMaxThreshold)

// DeflateCompressBlock compresses src into dst as a raw DEFLATE stream (RFC 1951) and
// returns the number of bytes written.
//
// Level 0 stores the input. Levels 1-9 run a hash-chain match finder whose chain depth
// grows with the level, then emit one final block coded with whichever of the stored,
// fixed-Huffman and dynamic-Huffman representations is smallest. Stored output longer
// than 65535 bytes is split over several stored blocks. Negative levels select level 6
// and levels above 9 are treated as 9.
//
// The only possible error is errs.ErrCapacity; DeflateCompressBound(len(src)) bytes
// always suffice.
func DeflateCompressBlock(dst, src []byte, level int) (int, error) {
	const op = "compress.DeflateCompressBlock"

	if level < 0 {
		level = deflateDefaultLevel
	}
	level = min(level, deflateMaxLevel)

	buf := deflateBuffers.Get()
	defer deflateBuffers.Put(buf)
	w := bitpack.NewWriter(buf.B[:0])

	if level == 0 || len(src) < deflateMinMatch {
		writeStored(w, src)
	} else {
		deflateCompressed(w, src, level)
	}
	w.Flush()

	out := w.Bytes()
	buf.B = out
	if len(out) > len(dst) {
		return 0, errs.Capacity(op, "need %d bytes, have %d", len(out), len(dst))
	}

	return copy(dst, out), nil
}

func deflateCompressed(w *bitpack.Writer, src []byte, level int) {
	head, releaseHead := pool.Int32s.Get(1 << deflateHashBits)
	defer releaseHead()
	prev, releasePrev := pool.Int32s.Get(deflateWindowSize)
	defer releasePrev()
	scratch, releaseTokens := pool.Uint32s.Get(len(src))
	defer releaseTokens()

	cfg := deflateLevels[level]
	tokens := deflateTokens(scratch[:0], src, cfg.chain, cfg.nice, head, prev)

	plan := &deflateBlockPlan{}
	plan.count(tokens)
	ft := getFixedTables()
	fixedBits := plan.fixedBits(ft)
	dynamicBits := plan.buildDynamic()
	storedBits := storedSize(len(src)) * 8

	switch {
	case storedBits <= fixedBits && storedBits <= dynamicBits:
		writeStored(w, src)
	case fixedBits <= dynamicBits:
		w.WriteBits(1|1<<1, 3) // BFINAL, BTYPE=01
		writeTokens(w, tokens, ft.litCodes[:], ft.distCode[:])
	default:
		plan.writeDynamic(w, tokens)
	}
}

// DeflateCompressor is the Codec for raw DEFLATE pages.
type DeflateCompressor struct {
	cfg codecConfig
}

var _ Codec = (*DeflateCompressor)(nil)

// NewDeflateCompressor creates a raw DEFLATE codec, level 6 unless WithLevel says otherwise.
func NewDeflateCompressor(opts ...CodecOption) (DeflateCompressor, error) {
	cfg, err := newCodecConfig(deflateDefaultLevel, opts...)
	if err != nil {
		return DeflateCompressor{}, err
	}

	return DeflateCompressor{cfg: cfg}, nil
}

func (c DeflateCompressor) Type() format.CompressionType {
	return format.CompressionDeflate
}

func (c DeflateCompressor) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, DeflateCompressBound(len(data)))
	n, err := DeflateCompressBlock(dst, data, c.cfg.level)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

func (c DeflateCompressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	return decompressBlock("compress.DeflateCompressor.Decompress", data, expectedSize, c.cfg.maxDecodedSize, DeflateDecompressBlock)
}
