package encoding

import (
	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/simd"
)

// EncodeByteStreamSplitFloat32 appends the BYTE_STREAM_SPLIT encoding of values to dst.
//
// For N values of S bytes the output is S streams of N bytes: output[b*N+i] holds byte b
// (little-endian) of values[i]. Grouping equal-significance bytes helps a downstream
// compressor on floating-point data.
func EncodeByteStreamSplitFloat32(dst []byte, values []float32) []byte {
	return simd.AppendByteSplitFloat32(growBuffer(dst, len(values)*4), values)
}

// DecodeByteStreamSplitFloat32 decodes len(src)/4 values into dst and returns the count.
func DecodeByteStreamSplitFloat32(dst []float32, src []byte) (int, error) {
	if len(src)%4 != 0 {
		return 0, errs.Malformed("byte_stream_split.decode", "%d bytes is not a multiple of 4", len(src))
	}
	n := len(src) / 4
	if len(dst) < n {
		return 0, errs.Capacity("byte_stream_split.decode", "need %d values, have %d", n, len(dst))
	}
	if err := simd.ByteSplitDecodeFloat32(dst[:n], src); err != nil {
		return 0, err
	}

	return n, nil
}

// EncodeByteStreamSplitFloat64 appends the BYTE_STREAM_SPLIT encoding of values to dst.
func EncodeByteStreamSplitFloat64(dst []byte, values []float64) []byte {
	return simd.AppendByteSplitFloat64(growBuffer(dst, len(values)*8), values)
}

// DecodeByteStreamSplitFloat64 decodes len(src)/8 values into dst and returns the count.
func DecodeByteStreamSplitFloat64(dst []float64, src []byte) (int, error) {
	if len(src)%8 != 0 {
		return 0, errs.Malformed("byte_stream_split.decode", "%d bytes is not a multiple of 8", len(src))
	}
	n := len(src) / 8
	if len(dst) < n {
		return 0, errs.Capacity("byte_stream_split.decode", "need %d values, have %d", n, len(dst))
	}
	if err := simd.ByteSplitDecodeFloat64(dst[:n], src); err != nil {
		return 0, err
	}

	return n, nil
}

// EncodeByteStreamSplit transposes fixed-width values of size bytes each, laid out
// back to back in src, and appends the result to dst. It serves INT32, INT64 and
// FIXED_LEN_BYTE_ARRAY columns.
func EncodeByteStreamSplit(dst, src []byte, size int) ([]byte, error) {
	if size <= 0 {
		return dst, errs.InvalidArgument("byte_stream_split.encode", "value size %d must be positive", size)
	}
	if len(src)%size != 0 {
		return dst, errs.InvalidArgument("byte_stream_split.encode", "%d bytes is not a multiple of %d", len(src), size)
	}

	n := len(src) / size
	start := len(dst)
	dst = growBuffer(dst, len(src))
	dst = dst[:start+len(src)]
	out := dst[start:]
	for b := 0; b < size; b++ {
		stream := out[b*n : (b+1)*n]
		for i := range stream {
			stream[i] = src[i*size+b]
		}
	}

	return dst, nil
}

// DecodeByteStreamSplit is the inverse of EncodeByteStreamSplit. It writes len(src)
// bytes to dst and returns the number of values decoded.
func DecodeByteStreamSplit(dst, src []byte, size int) (int, error) {
	if size <= 0 {
		return 0, errs.InvalidArgument("byte_stream_split.decode", "value size %d must be positive", size)
	}
	if len(src)%size != 0 {
		return 0, errs.Malformed("byte_stream_split.decode", "%d bytes is not a multiple of %d", len(src), size)
	}
	if len(dst) < len(src) {
		return 0, errs.Capacity("byte_stream_split.decode", "need %d bytes, have %d", len(src), len(dst))
	}

	n := len(src) / size
	for b := 0; b < size; b++ {
		stream := src[b*n : (b+1)*n]
		for i, v := range stream {
			dst[i*size+b] = v
		}
	}

	return n, nil
}
