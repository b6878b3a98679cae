package compress

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/colcodec/bitpack"
	"github.com/arloliu/colcodec/errs"
)

func deflateRoundTrip(t *testing.T, src []byte, level int) []byte {
	t.Helper()

	dst := make([]byte, DeflateCompressBound(len(src)))
	n, err := DeflateCompressBlock(dst, src, level)
	require.NoError(t, err)

	out := make([]byte, len(src))
	m, err := DeflateDecompressBlock(out, dst[:n])
	require.NoError(t, err)
	require.Equal(t, len(src), m)
	require.True(t, bytes.Equal(src, out))

	return dst[:n]
}

func blockType(stream []byte) byte {
	return stream[0] >> 1 & 3
}

// === DEFLATE Table Tests ===

func TestDeflate_LengthAndDistanceCodes(t *testing.T) {
	for length := 3; length <= 258; length++ {
		c := lengthCode(length)
		require.GreaterOrEqual(t, length, int(lengthBase[c]), "length %d", length)
		if length == 258 {
			require.Equal(t, 28, c)
			continue
		}
		require.Less(t, length, int(lengthBase[c])+1<<lengthExtra[c], "length %d", length)
	}

	for distance := 1; distance <= deflateWindowSize; distance++ {
		c := distCode(distance)
		require.GreaterOrEqual(t, distance, int(distBase[c]), "distance %d", distance)
		require.Less(t, distance, int(distBase[c])+1<<distExtra[c], "distance %d", distance)
	}
}

func TestHuffmanLengths_LimitAndKraft(t *testing.T) {
	// Fibonacci frequencies produce the deepest possible unrestricted tree.
	freq := make([]uint32, 30)
	a, b := uint32(1), uint32(1)
	for i := range freq {
		freq[i] = a
		a, b = b, a+b
	}

	for _, maxBits := range []int{7, 15} {
		lengths := make([]uint8, len(freq))
		huffmanLengths(lengths, freq, maxBits)

		kraft := 0
		for s, l := range lengths {
			require.NotZero(t, l, "symbol %d", s)
			require.LessOrEqual(t, int(l), maxBits)
			kraft += 1 << (maxBits - int(l))
		}
		require.Equal(t, 1<<maxBits, kraft, "code must be complete")

		for s := 1; s < len(freq); s++ {
			require.LessOrEqual(t, lengths[s], lengths[s-1], "more frequent symbols get shorter codes")
		}
	}
}

func TestHuffmanLengths_FewSymbols(t *testing.T) {
	lengths := make([]uint8, 30)
	huffmanLengths(lengths, make([]uint32, 30), 15)
	require.Equal(t, uint8(1), lengths[0])
	require.Equal(t, uint8(1), lengths[1])

	freq := make([]uint32, 30)
	freq[7] = 10
	huffmanLengths(lengths, freq, 15)
	require.Equal(t, uint8(1), lengths[7])
	require.Equal(t, uint8(1), lengths[0])
}

func TestHuffmanDecoder_RejectsBadLengths(t *testing.T) {
	var h huffmanDecoder
	require.ErrorIs(t, h.init([]uint8{1, 1, 1}), errs.ErrMalformed, "over-subscribed")
	require.ErrorIs(t, h.init([]uint8{2, 2, 2}), errs.ErrMalformed, "incomplete")
	require.NoError(t, h.init([]uint8{0, 1, 0}), "a single one-bit code is allowed")
	require.NoError(t, h.init([]uint8{0, 0, 0}))
}

// === DEFLATE Block Tests ===

func TestDeflate_RoundTrip(t *testing.T) {
	for _, level := range []int{0, 1, 6, 9} {
		for _, size := range roundTripSizes {
			for name, src := range testCorpus(size) {
				t.Run(fmt.Sprintf("L%d/%s/%d", level, name, size), func(t *testing.T) {
					deflateRoundTrip(t, src, level)
				})
			}
		}
	}
}

func TestDeflate_ChoosesBlockType(t *testing.T) {
	stored := deflateRoundTrip(t, testCorpus(1000)["random"], 6)
	require.Equal(t, byte(0), blockType(stored))

	levelZero := deflateRoundTrip(t, []byte("abcabcabcabc"), 0)
	require.Equal(t, byte(0), blockType(levelZero))

	fixed := deflateRoundTrip(t, []byte("abcabcabcabc"), 6)
	require.Equal(t, byte(1), blockType(fixed))
	require.Less(t, len(fixed), 12)

	rng := rand.New(rand.NewPCG(7, 7))
	skewed := make([]byte, 100_000)
	for i := range skewed {
		skewed[i] = "ACGT"[rng.IntN(4)]
	}
	dynamic := deflateRoundTrip(t, skewed, 6)
	require.Equal(t, byte(2), blockType(dynamic))
	require.Less(t, len(dynamic), 60_000)
}

func TestDeflate_StoredSplitsLargeInput(t *testing.T) {
	src := testCorpus(200_000)["random"]
	stream := deflateRoundTrip(t, src, 0)
	require.Equal(t, storedSize(len(src)), len(stream))
	require.LessOrEqual(t, len(stream), DeflateCompressBound(len(src)))
}

func TestDeflate_InteropWithReference(t *testing.T) {
	for _, size := range []int{0, 1, 100, 4096, 70_000} {
		for name, src := range testCorpus(size) {
			t.Run(fmt.Sprintf("%s/%d", name, size), func(t *testing.T) {
				for _, level := range []int{0, 1, 9} {
					ours := deflateRoundTrip(t, src, level)
					out, err := io.ReadAll(flate.NewReader(bytes.NewReader(ours)))
					require.NoError(t, err)
					require.True(t, bytes.Equal(src, out))
				}

				for _, level := range []int{flate.NoCompression, flate.BestSpeed, flate.DefaultCompression, flate.BestCompression, flate.HuffmanOnly} {
					var buf bytes.Buffer
					w, err := flate.NewWriter(&buf, level)
					require.NoError(t, err)
					_, err = w.Write(src)
					require.NoError(t, err)
					require.NoError(t, w.Close())

					out := make([]byte, len(src))
					n, err := DeflateDecompressBlock(out, buf.Bytes())
					require.NoError(t, err, "level %d", level)
					require.Equal(t, len(src), n)
					require.True(t, bytes.Equal(src, out))
				}
			})
		}
	}
}

func TestDeflate_Capacity(t *testing.T) {
	src := testCorpus(5000)["random"]
	_, err := DeflateCompressBlock(make([]byte, 100), src, 6)
	require.ErrorIs(t, err, errs.ErrCapacity)

	for _, level := range []int{0, 6} {
		stream := deflateRoundTrip(t, testCorpus(5000)["text"], level)
		_, err = DeflateDecompressBlock(make([]byte, 4999), stream)
		require.ErrorIs(t, err, errs.ErrCapacity)
	}
}

func TestDeflate_TruncatedStreamsFail(t *testing.T) {
	for _, level := range []int{0, 1, 9} {
		stream := deflateRoundTrip(t, testCorpus(3000)["text"], level)
		for _, cut := range []int{0, 1, len(stream) / 2, len(stream) - 1} {
			_, err := DeflateDecompressBlock(make([]byte, 3000), stream[:cut])
			require.ErrorIs(t, err, errs.ErrMalformed, "level %d cut %d", level, cut)
		}
	}
}

func TestDeflate_Malformed(t *testing.T) {
	ft := getFixedTables()

	// Fixed block whose first symbol is a length 3 match at distance 1.
	w := bitpack.NewWriter(nil)
	w.WriteBits(1|1<<1, 3)
	c := ft.litCodes[257]
	w.WriteBits(uint32(c.code), int(c.len))
	d := ft.distCode[0]
	w.WriteBits(uint32(d.code), int(d.len))
	c = ft.litCodes[endOfBlock]
	w.WriteBits(uint32(c.code), int(c.len))
	w.Flush()

	cases := map[string][]byte{
		"reserved block type":   {0x07},
		"stored length":         {0x01, 0x05, 0x00, 0x00, 0x00},
		"stored beyond input":   {0x01, 0x05, 0x00, 0xfa, 0xff, 'a'},
		"distance before start": w.Bytes(),
		"too many length codes": {0xfd, 0xff, 0xff},
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DeflateDecompressBlock(make([]byte, 64), src)
			require.ErrorIs(t, err, errs.ErrMalformed)
		})
	}
}

func TestDeflate_MultipleBlocks(t *testing.T) {
	// A non-final stored block holding "ab" followed by a final stored block holding "c".
	src := []byte{0x00, 0x02, 0x00, 0xfd, 0xff, 'a', 'b', 0x01, 0x01, 0x00, 0xfe, 0xff, 'c'}
	out := make([]byte, 3)
	n, err := DeflateDecompressBlock(out, src)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("abc"), out)
}

func BenchmarkDeflateCompressBlock(b *testing.B) {
	src := testCorpus(64 << 10)["text"]
	dst := make([]byte, DeflateCompressBound(len(src)))
	b.SetBytes(int64(len(src)))
	for b.Loop() {
		_, _ = DeflateCompressBlock(dst, src, 6)
	}
}

func BenchmarkDeflateDecompressBlock(b *testing.B) {
	src := testCorpus(64 << 10)["text"]
	stream := make([]byte, DeflateCompressBound(len(src)))
	n, _ := DeflateCompressBlock(stream, src, 6)
	out := make([]byte, len(src))
	b.SetBytes(int64(len(src)))
	for b.Loop() {
		_, _ = DeflateDecompressBlock(out, stream[:n])
	}
}
