// Package colcodec encodes and compresses column values for a columnar file format.
//
// The package covers the value-level half of page production. A container layer
// (row groups, page headers, footers) hands it typed values and gets encoded,
// compressed bytes back, or the reverse:
//
//	levels, _ := colcodec.EncodeLevels(defLevels, 1)
//	values := colcodec.EncodeDeltaInt64(timestamps)
//	page, _ := colcodec.Compress(format.CompressionZstd, values, colcodec.DefaultLevel)
//
//	raw, _ := colcodec.Decompress(format.CompressionZstd, page, len(values))
//	timestamps, _ = colcodec.DecodeDeltaInt64(raw, count)
//
// # Package Structure
//
// The functions here are allocating wrappers for the most common calls. The
// sub-packages expose the buffer-reusing forms and the rest of the codecs:
//
//   - bitpack: fixed-width bit packing and bit streams
//   - encoding: RLE/bit-packing hybrid, delta binary packing, byte stream split, plain,
//     dictionary and delta byte array encodings
//   - compress: LZ4, Snappy, DEFLATE and gzip block compressors, plus zstd and S2
//   - simd: run-time selected kernels for the hot loops
//   - metrics: Prometheus instrumentation for codecs
package colcodec

import (
	"go.uber.org/zap"

	"github.com/arloliu/colcodec/compress"
	"github.com/arloliu/colcodec/encoding"
	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/format"
	"github.com/arloliu/colcodec/internal/logger"
	"github.com/arloliu/colcodec/simd"
)

// DefaultLevel selects the default level of a compressor.
const DefaultLevel = compress.DefaultLevel

// EncodeLevels encodes definition or repetition levels at width bits with the RLE-hybrid
// codec.
func EncodeLevels(levels []int16, width int) ([]byte, error) {
	return encoding.EncodeLevels(nil, levels, width)
}

// DecodeLevels decodes at most maxValues levels of width bits. The result is shorter
// when data runs out first.
func DecodeLevels(data []byte, width, maxValues int) ([]int16, error) {
	if maxValues < 0 {
		return nil, errs.InvalidArgument("colcodec.DecodeLevels", "negative value count %d", maxValues)
	}

	dst := make([]int16, maxValues)
	n, err := encoding.DecodeLevels(dst, data, width)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// EncodeDeltaInt32 encodes values with the delta binary-packed codec.
func EncodeDeltaInt32(values []int32) []byte {
	return encoding.EncodeDeltaInt32(nil, values)
}

// EncodeDeltaInt64 encodes values with the delta binary-packed codec.
func EncodeDeltaInt64(values []int64) []byte {
	return encoding.EncodeDeltaInt64(nil, values)
}

// DecodeDeltaInt32 decodes exactly count values from a delta binary-packed stream.
func DecodeDeltaInt32(data []byte, count int) ([]int32, error) {
	return decodeDelta(data, count, encoding.DecodeDeltaInt32)
}

// DecodeDeltaInt64 decodes exactly count values from a delta binary-packed stream.
func DecodeDeltaInt64(data []byte, count int) ([]int64, error) {
	return decodeDelta(data, count, encoding.DecodeDeltaInt64)
}

func decodeDelta[T int32 | int64](data []byte, count int, decode func([]T, []byte) (int, int, error)) ([]T, error) {
	const op = "colcodec.DecodeDelta"

	if count < 0 {
		return nil, errs.InvalidArgument(op, "negative value count %d", count)
	}

	dst := make([]T, count)
	n, _, err := decode(dst, data)
	if err != nil {
		return nil, err
	}
	if n != count {
		return nil, errs.Malformed(op, "stream holds %d values, want %d", n, count)
	}

	return dst, nil
}

// EncodeStreamSplitFloat32 encodes values with the byte stream split codec. The result
// is exactly 4*len(values) bytes.
func EncodeStreamSplitFloat32(values []float32) []byte {
	return encoding.EncodeByteStreamSplitFloat32(nil, values)
}

// EncodeStreamSplitFloat64 encodes values with the byte stream split codec. The result
// is exactly 8*len(values) bytes.
func EncodeStreamSplitFloat64(values []float64) []byte {
	return encoding.EncodeByteStreamSplitFloat64(nil, values)
}

// DecodeStreamSplitFloat32 decodes count values; data must hold exactly 4*count bytes.
func DecodeStreamSplitFloat32(data []byte, count int) ([]float32, error) {
	if err := checkStreamSplit(data, count, 4); err != nil {
		return nil, err
	}

	dst := make([]float32, count)
	if _, err := encoding.DecodeByteStreamSplitFloat32(dst, data); err != nil {
		return nil, err
	}

	return dst, nil
}

// DecodeStreamSplitFloat64 decodes count values; data must hold exactly 8*count bytes.
func DecodeStreamSplitFloat64(data []byte, count int) ([]float64, error) {
	if err := checkStreamSplit(data, count, 8); err != nil {
		return nil, err
	}

	dst := make([]float64, count)
	if _, err := encoding.DecodeByteStreamSplitFloat64(dst, data); err != nil {
		return nil, err
	}

	return dst, nil
}

func checkStreamSplit(data []byte, count, size int) error {
	const op = "colcodec.DecodeStreamSplit"

	if count < 0 {
		return errs.InvalidArgument(op, "negative value count %d", count)
	}
	if len(data) != count*size {
		return errs.Malformed(op, "%d bytes for %d values of %d bytes", len(data), count, size)
	}

	return nil
}

// Compress compresses data with the codec of compressionType at level. DefaultLevel
// uses the shared default codec.
func Compress(compressionType format.CompressionType, data []byte, level int) ([]byte, error) {
	codec, err := codecFor(compressionType, level)
	if err != nil {
		return nil, err
	}

	return codec.Compress(data)
}

// Decompress reverses Compress. A positive expectedSize must match the decoded size
// exactly; otherwise the codec sizes its output itself.
func Decompress(compressionType format.CompressionType, data []byte, expectedSize int) ([]byte, error) {
	codec, err := compress.GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	return codec.Decompress(data, expectedSize)
}

func codecFor(compressionType format.CompressionType, level int) (compress.Codec, error) {
	if level == DefaultLevel {
		return compress.GetCodec(compressionType)
	}

	return compress.CreateCodec(compressionType, level)
}

// CompressBound returns the worst-case compressed size of n bytes, or -1 for an unknown
// compression type.
func CompressBound(compressionType format.CompressionType, n int) int {
	return compress.CompressBound(compressionType, n)
}

// CPUInfo describes the kernels selected for this process. It is meant for diagnostics;
// results never depend on it.
type CPUInfo struct {
	Level       string
	Arch        string
	VectorBytes int
	Features    simd.CPUFeatures
}

// GetCPUInfo reports the dispatch level chosen at first use.
func GetCPUInfo() CPUInfo {
	features := simd.Features()

	return CPUInfo{
		Level:       simd.CurrentLevel().String(),
		Arch:        features.Arch,
		VectorBytes: simd.VectorBytes(),
		Features:    features,
	}
}

// SetLogger installs l as the logger for every colcodec package. A nil l silences
// logging again.
func SetLogger(l *zap.Logger) {
	logger.Set(l)
}
