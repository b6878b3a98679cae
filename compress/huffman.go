package compress

import (
	"cmp"
	"math/bits"
	"slices"
	"sync"

	"github.com/arloliu/colcodec/bitpack"
	"github.com/arloliu/colcodec/errs"
)

const (
	maxCodeBits       = 15  // longest literal/length or distance code
	maxCodeLenBits    = 7   // longest code-length code
	numLitLenSymbols  = 288 // 286 used, 2 reserved but present in the fixed code
	numDistSymbols    = 30
	numCodeLenSymbols = 19
	huffmanFastBits   = 9
	endOfBlock        = 256
)

var (
	lengthBase = [29]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtra = [29]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	distBase = [30]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	}
	distExtra = [30]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}

	// codeLenOrder is the transmission order of code-length code lengths.
	codeLenOrder = [numCodeLenSymbols]uint8{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}
)

// lengthCode maps a match length in [3, 258] to its index into lengthBase.
func lengthCode(length int) int {
	if length == 258 {
		return 28
	}
	d := length - 3
	if d < 8 {
		return d
	}
	nb := bits.Len(uint(d)) - 1

	return 4*(nb-1) + (d>>(nb-2))&3
}

// distCode maps a distance in [1, 32768] to its index into distBase.
func distCode(distance int) int {
	d := distance - 1
	if d < 4 {
		return d
	}
	nb := bits.Len(uint(d)) - 1

	return 2*nb + (d>>(nb-1))&1
}

// huffCode is a code ready for an LSB-first bit writer: the canonical code bit-reversed.
type huffCode struct {
	code uint16
	len  uint8
}

// canonicalCodes assigns canonical codes to lengths (RFC 1951 section 3.2.2).
func canonicalCodes(codes []huffCode, lengths []uint8) {
	var count [maxCodeBits + 1]uint16
	for _, l := range lengths {
		count[l]++
	}
	count[0] = 0

	var next [maxCodeBits + 1]uint16
	code := uint16(0)
	for b := 1; b <= maxCodeBits; b++ {
		code = (code + count[b-1]) << 1
		next[b] = code
	}

	for s, l := range lengths {
		if l == 0 {
			codes[s] = huffCode{}
			continue
		}
		codes[s] = huffCode{code: bits.Reverse16(next[l]) >> (16 - l), len: l}
		next[l]++
	}
}

// huffmanLengths computes length-limited Huffman code lengths for freq into lengths.
//
// The tree is built with the two-queue method over the frequency-sorted leaves. Codes
// longer than maxBits are clamped and the Kraft sum is then repaired by lengthening the
// deepest shorter codes, keeping the longest codes on the least frequent symbols. At
// least two symbols always receive a code so every decoder sees a complete tree.
func huffmanLengths(lengths []uint8, freq []uint32, maxBits int) {
	clear(lengths)

	type leaf struct {
		sym  int
		freq uint32
	}
	leaves := make([]leaf, 0, len(freq))
	for s, f := range freq {
		if f > 0 {
			leaves = append(leaves, leaf{sym: s, freq: f})
		}
	}
	for s := 0; len(leaves) < 2 && s < len(freq); s++ {
		if freq[s] == 0 {
			leaves = append(leaves, leaf{sym: s, freq: 1})
		}
	}
	if len(leaves) < 2 {
		if len(leaves) == 1 {
			lengths[leaves[0].sym] = 1
		}
		return
	}
	slices.SortStableFunc(leaves, func(a, b leaf) int { return cmp.Compare(a.freq, b.freq) })

	n := len(leaves)
	weight := make([]uint64, 2*n-1)
	parent := make([]int32, 2*n-1)
	for i, l := range leaves {
		weight[i] = uint64(l.freq)
	}

	nextLeaf, nextNode, end := 0, n, n
	pick := func() int {
		if nextLeaf < n && (nextNode >= end || weight[nextLeaf] <= weight[nextNode]) {
			nextLeaf++
			return nextLeaf - 1
		}
		nextNode++

		return nextNode - 1
	}
	for end < 2*n-1 {
		a, b := pick(), pick()
		weight[end] = weight[a] + weight[b]
		parent[a], parent[b] = int32(end), int32(end)
		end++
	}

	// Parents always have larger indices, so one descending pass yields every depth.
	depth := make([]int, 2*n-1)
	var count [maxCodeBits + 1]int
	for i := 2*n - 3; i >= 0; i-- {
		depth[i] = depth[parent[i]] + 1
		if i < n {
			count[min(depth[i], maxBits)]++
		}
	}

	total := 0
	for l := 1; l <= maxBits; l++ {
		total += count[l] << (maxBits - l)
	}
	for total > 1<<maxBits {
		count[maxBits]--
		for l := maxBits - 1; l > 0; l-- {
			if count[l] > 0 {
				count[l]--
				count[l+1] += 2

				break
			}
		}
		total--
	}

	i := 0
	for l := maxBits; l >= 1; l-- {
		for c := count[l]; c > 0; c-- {
			lengths[leaves[i].sym] = uint8(l)
			i++
		}
	}
}

// huffmanDecoder decodes one canonical Huffman code from an LSB-first bit stream.
//
// Codes of up to huffmanFastBits bits resolve with a single table lookup; longer codes
// fall back to a bit-by-bit walk over the per-length counts.
type huffmanDecoder struct {
	count  [maxCodeBits + 1]uint16
	symbol [numLitLenSymbols]uint16
	fast   [1 << huffmanFastBits]uint16 // symbol<<4 | length, 0 when absent
	empty  bool
}

// init builds the decoder for lengths. Over-subscribed sets are rejected, as are
// incomplete ones except a single one-bit code. An all-zero set is accepted; decoding
// from it fails.
func (h *huffmanDecoder) init(lengths []uint8) error {
	const op = "compress.huffmanDecoder"

	h.count = [maxCodeBits + 1]uint16{}
	for _, l := range lengths {
		h.count[l]++
	}
	h.fast = [1 << huffmanFastBits]uint16{}
	h.empty = int(h.count[0]) == len(lengths)
	if h.empty {
		return nil
	}

	left := 1
	for l := 1; l <= maxCodeBits; l++ {
		left <<= 1
		left -= int(h.count[l])
		if left < 0 {
			return errs.Malformed(op, "over-subscribed code lengths")
		}
	}
	if left > 0 && (int(h.count[0]) != len(lengths)-1 || h.count[1] != 1) {
		return errs.Malformed(op, "incomplete code lengths")
	}

	var offs [maxCodeBits + 2]uint16
	for l := 1; l <= maxCodeBits; l++ {
		offs[l+1] = offs[l] + h.count[l]
	}
	for s, l := range lengths {
		if l != 0 {
			h.symbol[offs[l]] = uint16(s)
			offs[l]++
		}
	}

	var codes [numLitLenSymbols]huffCode
	canonicalCodes(codes[:len(lengths)], lengths)
	for s, c := range codes[:len(lengths)] {
		if c.len == 0 || c.len > huffmanFastBits {
			continue
		}
		entry := uint16(s)<<4 | uint16(c.len)
		for i := int(c.code); i < len(h.fast); i += 1 << c.len {
			h.fast[i] = entry
		}
	}

	return nil
}

func (h *huffmanDecoder) decode(r *bitpack.Reader) (int, error) {
	const op = "compress.huffmanDecoder"

	if h.empty {
		return 0, errs.Malformed(op, "symbol read from an empty code")
	}

	v, avail := r.PeekBits(huffmanFastBits)
	if e := h.fast[v]; e != 0 && int(e&15) <= avail {
		r.SkipBits(int(e & 15))
		return int(e >> 4), nil
	}

	code, first, index := 0, 0, 0
	for l := 1; l <= maxCodeBits; l++ {
		b := r.ReadBit()
		if b < 0 {
			return 0, errs.Malformed(op, "truncated Huffman code")
		}
		code |= b
		count := int(h.count[l])
		if code-count < first {
			return int(h.symbol[index+code-first]), nil
		}
		index += count
		first += count
		first <<= 1
		code <<= 1
	}

	return 0, errs.Malformed(op, "invalid Huffman code")
}

// fixedTables holds the fixed literal/length and distance codes of RFC 1951 section
// 3.2.6, built once on first use.
type fixedTables struct {
	litLens  [numLitLenSymbols]uint8
	litCodes [numLitLenSymbols]huffCode
	distCode [numDistSymbols]huffCode
	litDec   huffmanDecoder
	distDec  huffmanDecoder
}

var (
	fixedOnce sync.Once
	fixed     *fixedTables
)

func getFixedTables() *fixedTables {
	fixedOnce.Do(func() {
		t := &fixedTables{}
		for s := range t.litLens {
			switch {
			case s < 144:
				t.litLens[s] = 8
			case s < 256:
				t.litLens[s] = 9
			case s < 280:
				t.litLens[s] = 7
			default:
				t.litLens[s] = 8
			}
		}
		canonicalCodes(t.litCodes[:], t.litLens[:])

		// The fixed distance code has 32 five-bit codes; 30 and 31 never occur.
		var distLens [32]uint8
		for i := range distLens {
			distLens[i] = 5
		}
		var distCodes [32]huffCode
		canonicalCodes(distCodes[:], distLens[:])
		copy(t.distCode[:], distCodes[:])

		if err := t.litDec.init(t.litLens[:]); err != nil {
			panic(err)
		}
		if err := t.distDec.init(distLens[:]); err != nil {
			panic(err)
		}
		fixed = t
	})

	return fixed
}
