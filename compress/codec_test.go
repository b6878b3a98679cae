package compress

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/format"
)

func TestCodecs_RoundTrip(t *testing.T) {
	for _, ct := range format.CompressionTypes() {
		for _, level := range []int{DefaultLevel, 1, 9} {
			codec, err := CreateCodec(ct, level)
			require.NoError(t, err)
			require.Equal(t, ct, codec.Type())

			for _, size := range []int{0, 1, 17, 1000, 65537} {
				for name, src := range testCorpus(size) {
					t.Run(fmt.Sprintf("%s/L%d/%s/%d", ct, level, name, size), func(t *testing.T) {
						compressed, err := codec.Compress(src)
						require.NoError(t, err)
						require.LessOrEqual(t, len(compressed), CompressBound(ct, len(src)))

						out, err := codec.Decompress(compressed, len(src))
						require.NoError(t, err)
						require.True(t, bytes.Equal(src, out))

						out, err = codec.Decompress(compressed, 0)
						require.NoError(t, err)
						require.True(t, bytes.Equal(src, out))
					})
				}
			}
		}
	}
}

func TestCodecs_ExpectedSizeMismatch(t *testing.T) {
	src := testCorpus(5000)["text"]

	for _, ct := range format.CompressionTypes() {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(src)
			require.NoError(t, err)

			_, err = codec.Decompress(compressed, len(src)+1)
			require.Error(t, err)
			require.True(t, errs.KindOf(err) == errs.KindMalformed || errs.KindOf(err) == errs.KindCapacity, err)

			_, err = codec.Decompress(compressed, len(src)-1)
			require.Error(t, err)
			require.True(t, errs.KindOf(err) == errs.KindMalformed || errs.KindOf(err) == errs.KindCapacity, err)
		})
	}
}

func TestCodecs_AdaptiveGrowth(t *testing.T) {
	// Highly compressible input forces several doublings from the initial guess.
	src := make([]byte, 1<<20)
	for _, ct := range []format.CompressionType{format.CompressionLZ4Raw, format.CompressionDeflate} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(src)
		require.NoError(t, err)
		require.Less(t, len(compressed)*4, len(src))

		out, err := codec.Decompress(compressed, 0)
		require.NoError(t, err)
		require.Equal(t, src, out)
	}
}

func TestCodecs_MaxDecodedSize(t *testing.T) {
	src := make([]byte, 100_000)

	for _, ct := range format.CompressionTypes() {
		if ct == format.CompressionNone {
			continue
		}
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(ct, DefaultLevel, WithMaxDecodedSize(10_000))
			require.NoError(t, err)

			compressed, err := codec.Compress(src)
			require.NoError(t, err)

			_, err = codec.Decompress(compressed, 0)
			require.Error(t, err)

			// An explicit size is not subject to the limit.
			out, err := codec.Decompress(compressed, len(src))
			require.NoError(t, err)
			require.Len(t, out, len(src))
		})
	}
}

func TestCodecOptions(t *testing.T) {
	_, err := CreateCodec(format.CompressionLZ4Raw, DefaultLevel, WithMaxDecodedSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = NewSnappyCompressor(WithMaxDecodedSize(-1))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	cfg, err := newCodecConfig(6, WithLevel(DefaultLevel))
	require.NoError(t, err)
	require.Equal(t, 6, cfg.level)
	require.Equal(t, DefaultMaxDecodedSize, cfg.maxDecodedSize)

	cfg, err = newCodecConfig(6, WithLevel(2), WithMaxDecodedSize(512))
	require.NoError(t, err)
	require.Equal(t, 2, cfg.level)
	require.Equal(t, 512, cfg.maxDecodedSize)
}

func TestCreateCodec_UnknownType(t *testing.T) {
	for _, ct := range []format.CompressionType{3, 4, 5, 10, 255} {
		_, err := CreateCodec(ct, DefaultLevel)
		require.ErrorIs(t, err, errs.ErrInvalidArgument)

		_, err = GetCodec(ct)
		require.ErrorIs(t, err, errs.ErrInvalidArgument)

		require.Equal(t, -1, CompressBound(ct, 100))
	}
}

func TestGetCodec_Shared(t *testing.T) {
	for _, ct := range format.CompressionTypes() {
		a, err := GetCodec(ct)
		require.NoError(t, err)
		b, err := GetCodec(ct)
		require.NoError(t, err)
		require.Equal(t, a, b)
		require.Equal(t, ct, a.Type())
	}
}

func TestCompressBound(t *testing.T) {
	require.Equal(t, 100, CompressBound(format.CompressionNone, 100))
	require.Equal(t, LZ4CompressBound(100), CompressBound(format.CompressionLZ4Raw, 100))
	require.Equal(t, SnappyCompressBound(100), CompressBound(format.CompressionSnappy, 100))
	require.Equal(t, DeflateCompressBound(100), CompressBound(format.CompressionDeflate, 100))
	require.Equal(t, DeflateCompressBound(100)+18, CompressBound(format.CompressionGzip, 100))
	require.Equal(t, ZstdCompressBound(100), CompressBound(format.CompressionZstd, 100))
	require.Equal(t, S2CompressBound(100), CompressBound(format.CompressionS2, 100))

	for _, ct := range format.CompressionTypes() {
		for _, n := range []int{0, 1, 1000, 1 << 20} {
			require.GreaterOrEqual(t, CompressBound(ct, n), n, "%s(%d)", ct, n)
		}
	}
}

func TestNoOpCompressor(t *testing.T) {
	codec := NewNoOpCompressor()
	src := []byte("as is")

	out, err := codec.Compress(src)
	require.NoError(t, err)
	require.Same(t, &src[0], &out[0])

	out, err = codec.Decompress(src, 0)
	require.NoError(t, err)
	require.Equal(t, src, out)

	_, err = codec.Decompress(src, 4)
	require.ErrorIs(t, err, errs.ErrMalformed)
}

func TestCodecs_Concurrent(t *testing.T) {
	inputs := make([][]byte, 8)
	for i := range inputs {
		inputs[i] = testCorpus(10_000 + i*1000)["semi"]
	}

	for _, ct := range format.CompressionTypes() {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		var wg sync.WaitGroup
		failures := make(chan string, len(inputs)*20)
		for g := 0; g < len(inputs); g++ {
			wg.Add(1)
			go func(src []byte) {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					compressed, err := codec.Compress(src)
					if err != nil {
						failures <- err.Error()
						return
					}
					out, err := codec.Decompress(compressed, len(src))
					if err != nil || !bytes.Equal(src, out) {
						failures <- fmt.Sprintf("%s: round trip failed: %v", ct, err)
						return
					}
				}
			}(inputs[g])
		}
		wg.Wait()
		close(failures)

		for f := range failures {
			t.Error(f)
		}
	}
}

func TestCompressionStats(t *testing.T) {
	stats := CompressionStats{
		Algorithm:      format.CompressionZstd,
		OriginalSize:   1000,
		CompressedSize: 250,
	}
	require.InDelta(t, 0.25, stats.CompressionRatio(), 1e-9)
	require.InDelta(t, 75.0, stats.SpaceSavings(), 1e-9)

	empty := CompressionStats{}
	require.Zero(t, empty.CompressionRatio())
	require.InDelta(t, 100.0, empty.SpaceSavings(), 1e-9)
}
