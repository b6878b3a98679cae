package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/colcodec/compress"
	"github.com/arloliu/colcodec/format"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func writeInput(t *testing.T) (string, []byte) {
	t.Helper()

	data := []byte(strings.Repeat("colcodec command line round trip\n", 2000))
	path := filepath.Join(t.TempDir(), "input.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path, data
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info")
	require.NoError(t, err)
	require.Contains(t, out, "Dispatch:")
	require.Contains(t, out, "Vector width:")
}

func TestCompressDecompress(t *testing.T) {
	input, data := writeInput(t)
	dir := t.TempDir()

	for _, codec := range []string{"lz4", "snappy", "deflate", "gzip", "zstd", "s2", "none"} {
		t.Run(codec, func(t *testing.T) {
			packed := filepath.Join(dir, codec+".bin")
			unpacked := filepath.Join(dir, codec+".out")

			_, err := run(t, "compress", "--codec", codec, "--level", "1", input, packed)
			require.NoError(t, err)
			_, err = run(t, "decompress", "--codec", codec, "--size", "0", packed, unpacked)
			require.NoError(t, err)

			got, err := os.ReadFile(unpacked)
			require.NoError(t, err)
			require.Equal(t, data, got)
		})
	}
}

func TestCompress_ParallelGzip(t *testing.T) {
	input, data := writeInput(t)
	packed := filepath.Join(t.TempDir(), "input.gz")

	_, err := run(t, "compress", "--codec", "gzip", "--parallel", input, packed)
	require.NoError(t, err)

	block, err := os.ReadFile(packed)
	require.NoError(t, err)
	out := make([]byte, len(data))
	n, err := compress.GzipDecompress(out, block)
	require.NoError(t, err)
	require.Equal(t, data, out[:n])
}

func TestCompress_CodecFromEnvironment(t *testing.T) {
	t.Setenv("COLCODEC_CODEC", "snappy")
	input, data := writeInput(t)
	packed := filepath.Join(t.TempDir(), "input.sz")

	out, err := run(t, "compress", input, packed)
	require.NoError(t, err)
	require.Contains(t, out, format.CompressionSnappy.String())

	block, err := os.ReadFile(packed)
	require.NoError(t, err)
	n, err := compress.SnappyDecodedLen(block)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
}

func TestCompress_UnknownCodec(t *testing.T) {
	input, _ := writeInput(t)

	_, err := run(t, "compress", "--codec", "brotli", input, filepath.Join(t.TempDir(), "x"))
	require.ErrorContains(t, err, "unknown codec")
}

func TestDecompress_CorruptInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.lz4")
	require.NoError(t, os.WriteFile(path, []byte{0xf0, 0x01}, 0o644))

	_, err := run(t, "decompress", "--codec", "lz4", path, filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	input, _ := writeInput(t)

	out, err := run(t, "verify", input)
	require.NoError(t, err)
	require.NotContains(t, out, "FAIL")
	for _, ct := range format.CompressionTypes() {
		require.Contains(t, out, ct.String())
	}
}

func TestVerifyAll_EmptyInput(t *testing.T) {
	for _, r := range verifyAll(nil) {
		require.NoError(t, r.roundTrip, r.codec.String())
		require.NoError(t, r.reference, r.codec.String())
	}
}

func TestBench(t *testing.T) {
	input, _ := writeInput(t)

	out, err := run(t, "bench", "--iterations", "2", "--codecs", "lz4,deflate", "--metrics", input)
	require.NoError(t, err)
	require.Contains(t, out, "LZ4Raw")
	require.Contains(t, out, "Deflate")
	require.NotContains(t, out, "Snappy")
	require.Contains(t, out, `colcodec_codec_calls_total{codec=LZ4Raw,op=compress,status=ok} 2`)

	_, err = run(t, "bench", "--iterations", "0", input)
	require.Error(t, err)
}
