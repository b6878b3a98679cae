package compress

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/colcodec/errs"
)

func lz4RoundTrip(t *testing.T, src []byte, level int) []byte {
	t.Helper()

	dst := make([]byte, LZ4CompressBound(len(src)))
	n, err := LZ4CompressBlock(dst, src, level)
	require.NoError(t, err)
	require.LessOrEqual(t, n, LZ4CompressBound(len(src)))

	out := make([]byte, len(src))
	m, err := LZ4DecompressBlock(out, dst[:n])
	require.NoError(t, err)
	require.Equal(t, len(src), m)
	require.True(t, bytes.Equal(src, out[:m]))

	return dst[:n]
}

// === LZ4 Block Tests ===

func TestLZ4_HelloIsOneLiteralRun(t *testing.T) {
	block := lz4RoundTrip(t, []byte("Hello"), 1)
	require.Equal(t, []byte{0x50, 'H', 'e', 'l', 'l', 'o'}, block)
}

func TestLZ4_EmptyInput(t *testing.T) {
	block := lz4RoundTrip(t, nil, 1)
	require.Equal(t, []byte{0x00}, block)
}

func TestLZ4_RoundTrip(t *testing.T) {
	for _, level := range []int{1, 9} {
		for _, size := range roundTripSizes {
			for name, src := range testCorpus(size) {
				t.Run(fmt.Sprintf("L%d/%s/%d", level, name, size), func(t *testing.T) {
					lz4RoundTrip(t, src, level)
				})
			}
		}
	}
}

func TestLZ4_CompressesRepetitiveInput(t *testing.T) {
	src := bytes.Repeat([]byte("Hi!!"), 1000)
	block := lz4RoundTrip(t, src, 1)
	require.Less(t, len(block), 64)

	zeros := make([]byte, 100_000)
	block = lz4RoundTrip(t, zeros, 2)
	require.Less(t, len(block), 1000)
}

func TestLZ4_InteropWithReference(t *testing.T) {
	for _, size := range []int{13, 100, 4096, 65536, 100_000} {
		for name, src := range testCorpus(size) {
			t.Run(fmt.Sprintf("%s/%d", name, size), func(t *testing.T) {
				for _, level := range []int{1, 5} {
					ours := make([]byte, LZ4CompressBound(len(src)))
					n, err := LZ4CompressBlock(ours, src, level)
					require.NoError(t, err)

					out := make([]byte, len(src))
					m, err := lz4.UncompressBlock(ours[:n], out)
					require.NoError(t, err)
					require.Equal(t, src, out[:m])
				}

				var c lz4.Compressor
				theirs := make([]byte, lz4.CompressBlockBound(len(src)))
				n, err := c.CompressBlock(src, theirs)
				require.NoError(t, err)
				if n == 0 {
					// The reference reports incompressible input by writing nothing.
					return
				}

				out := make([]byte, len(src))
				m, err := LZ4DecompressBlock(out, theirs[:n])
				require.NoError(t, err)
				require.Equal(t, src, out[:m])
			})
		}
	}
}

func TestLZ4_Capacity(t *testing.T) {
	_, err := LZ4CompressBlock(nil, nil, 1)
	require.ErrorIs(t, err, errs.ErrCapacity)

	_, err = LZ4CompressBlock(make([]byte, 3), []byte("Hello"), 1)
	require.ErrorIs(t, err, errs.ErrCapacity)

	src := testCorpus(10_000)["random"]
	_, err = LZ4CompressBlock(make([]byte, len(src)/2), src, 1)
	require.ErrorIs(t, err, errs.ErrCapacity)

	block := lz4RoundTrip(t, []byte("Hello"), 1)
	_, err = LZ4DecompressBlock(make([]byte, 3), block)
	require.ErrorIs(t, err, errs.ErrCapacity)

	block = lz4RoundTrip(t, make([]byte, 1000), 1)
	_, err = LZ4DecompressBlock(make([]byte, 999), block)
	require.ErrorIs(t, err, errs.ErrCapacity)
}

func TestLZ4_Malformed(t *testing.T) {
	cases := map[string][]byte{
		"offset before output":   {0x00, 0x01, 0x00},
		"zero offset":            {0x10, 'a', 0x00, 0x00},
		"truncated length":       {0xF0},
		"literal exceeds input":  {0x50, 'a'},
		"truncated offset":       {0x10, 'a', 0x01},
		"truncated match length": {0x1F, 'a', 0x01, 0x00},
		"offset too far":         {0x20, 'a', 'b', 0x03, 0x00},
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LZ4DecompressBlock(make([]byte, 1024), src)
			require.ErrorIs(t, err, errs.ErrMalformed)
		})
	}
}

func TestLZ4_OverlappingMatch(t *testing.T) {
	// One literal 'a', then a 20 byte match at offset 1.
	block := []byte{0x1F, 'a', 0x01, 0x00, 0x01}
	out := make([]byte, 21)
	n, err := LZ4DecompressBlock(out, block)
	require.NoError(t, err)
	require.Equal(t, 21, n)
	require.Equal(t, bytes.Repeat([]byte{'a'}, 21), out)
}

func BenchmarkLZ4CompressBlock(b *testing.B) {
	src := testCorpus(64 << 10)["text"]
	dst := make([]byte, LZ4CompressBound(len(src)))
	b.SetBytes(int64(len(src)))
	for b.Loop() {
		_, _ = LZ4CompressBlock(dst, src, 1)
	}
}

func BenchmarkLZ4DecompressBlock(b *testing.B) {
	src := testCorpus(64 << 10)["text"]
	block := make([]byte, LZ4CompressBound(len(src)))
	n, _ := LZ4CompressBlock(block, src, 1)
	out := make([]byte, len(src))
	b.SetBytes(int64(len(src)))
	for b.Loop() {
		_, _ = LZ4DecompressBlock(out, block[:n])
	}
}
