package simd

import (
	"slices"

	"github.com/arloliu/colcodec/errs"
)

// PrefixSumInt32 replaces values with their inclusive running sum starting from initial:
// values[i] = initial + values[0] + ... + values[i], with two's-complement wraparound.
func PrefixSumInt32(values []int32, initial int32) {
	table().prefixSumInt32(values, initial)
}

// PrefixSumInt64 is the 64-bit form of PrefixSumInt32.
func PrefixSumInt64(values []int64, initial int64) {
	table().prefixSumInt64(values, initial)
}

func checkGather(op string, dstLen, n int) error {
	if dstLen < n {
		return errs.Capacity(op, "need %d values, have %d", n, dstLen)
	}

	return nil
}

// GatherInt32 sets dst[i] = dict[indices[i]]. Any index outside dict is reported as
// malformed input; dst may then hold a partial result.
func GatherInt32(dst, dict []int32, indices []uint32) error {
	if err := checkGather("simd.gather", len(dst), len(indices)); err != nil {
		return err
	}
	if !table().gatherInt32(dst, dict, indices) {
		return errs.Malformed("simd.gather", "dictionary index out of range (dictionary size %d)", len(dict))
	}

	return nil
}

// GatherInt64 sets dst[i] = dict[indices[i]].
func GatherInt64(dst, dict []int64, indices []uint32) error {
	if err := checkGather("simd.gather", len(dst), len(indices)); err != nil {
		return err
	}
	if !table().gatherInt64(dst, dict, indices) {
		return errs.Malformed("simd.gather", "dictionary index out of range (dictionary size %d)", len(dict))
	}

	return nil
}

// GatherFloat32 sets dst[i] = dict[indices[i]].
func GatherFloat32(dst, dict []float32, indices []uint32) error {
	if err := checkGather("simd.gather", len(dst), len(indices)); err != nil {
		return err
	}
	if !table().gatherFloat32(dst, dict, indices) {
		return errs.Malformed("simd.gather", "dictionary index out of range (dictionary size %d)", len(dict))
	}

	return nil
}

// GatherFloat64 sets dst[i] = dict[indices[i]].
func GatherFloat64(dst, dict []float64, indices []uint32) error {
	if err := checkGather("simd.gather", len(dst), len(indices)); err != nil {
		return err
	}
	if !table().gatherFloat64(dst, dict, indices) {
		return errs.Malformed("simd.gather", "dictionary index out of range (dictionary size %d)", len(dict))
	}

	return nil
}

// ByteSplitEncodeFloat32 writes byte b of src[i] to dst[b*len(src)+i].
// dst must hold at least 4*len(src) bytes.
func ByteSplitEncodeFloat32(dst []byte, src []float32) error {
	if need := 4 * len(src); len(dst) < need {
		return errs.Capacity("simd.byte_split_encode", "need %d bytes, have %d", need, len(dst))
	}
	table().byteSplitEncodeFloat32(dst, src)

	return nil
}

// AppendByteSplitFloat32 appends the 4*len(src) byte-split bytes of src to dst.
func AppendByteSplitFloat32(dst []byte, src []float32) []byte {
	start := len(dst)
	dst = slices.Grow(dst, 4*len(src))[:start+4*len(src)]
	table().byteSplitEncodeFloat32(dst[start:], src)

	return dst
}

// ByteSplitDecodeFloat32 is the inverse of ByteSplitEncodeFloat32 for len(dst) values.
func ByteSplitDecodeFloat32(dst []float32, src []byte) error {
	if need := 4 * len(dst); len(src) < need {
		return errs.Malformed("simd.byte_split_decode", "need %d bytes, have %d", need, len(src))
	}
	table().byteSplitDecodeFloat32(dst, src)

	return nil
}

// ByteSplitEncodeFloat64 writes byte b of src[i] to dst[b*len(src)+i].
// dst must hold at least 8*len(src) bytes.
func ByteSplitEncodeFloat64(dst []byte, src []float64) error {
	if need := 8 * len(src); len(dst) < need {
		return errs.Capacity("simd.byte_split_encode", "need %d bytes, have %d", need, len(dst))
	}
	table().byteSplitEncodeFloat64(dst, src)

	return nil
}

// AppendByteSplitFloat64 appends the 8*len(src) byte-split bytes of src to dst.
func AppendByteSplitFloat64(dst []byte, src []float64) []byte {
	start := len(dst)
	dst = slices.Grow(dst, 8*len(src))[:start+8*len(src)]
	table().byteSplitEncodeFloat64(dst[start:], src)

	return dst
}

// ByteSplitDecodeFloat64 is the inverse of ByteSplitEncodeFloat64 for len(dst) values.
func ByteSplitDecodeFloat64(dst []float64, src []byte) error {
	if need := 8 * len(dst); len(src) < need {
		return errs.Malformed("simd.byte_split_decode", "need %d bytes, have %d", need, len(src))
	}
	table().byteSplitDecodeFloat64(dst, src)

	return nil
}

// PackBools packs src into ceil(len(src)/8) bytes, LSB first. Unused high bits of the
// last byte are zero.
func PackBools(dst []byte, src []bool) error {
	if need := (len(src) + 7) / 8; len(dst) < need {
		return errs.Capacity("simd.pack_bools", "need %d bytes, have %d", need, len(dst))
	}
	table().packBools(dst, src)

	return nil
}

// AppendPackedBools appends src packed LSB first to dst.
func AppendPackedBools(dst []byte, src []bool) []byte {
	start := len(dst)
	size := (len(src) + 7) / 8
	dst = slices.Grow(dst, size)[:start+size]
	table().packBools(dst[start:], src)

	return dst
}

// UnpackBools fills dst from bits packed LSB first.
func UnpackBools(dst []bool, src []byte) error {
	if need := (len(dst) + 7) / 8; len(src) < need {
		return errs.Malformed("simd.unpack_bools", "need %d bytes, have %d", need, len(src))
	}
	table().unpackBools(dst, src)

	return nil
}

// RunLengthUint32 returns how many consecutive values starting at start equal
// values[start]. It returns 0 when start is out of range.
func RunLengthUint32(values []uint32, start int) int {
	return table().runLengthUint32(values, start)
}

// FillInt16 sets every element of dst to v.
func FillInt16(dst []int16, v int16) {
	table().fillInt16(dst, v)
}

// NarrowUint32ToInt16 truncates min(len(dst), len(src)) values to 16 bits and returns
// the count converted.
func NarrowUint32ToInt16(dst []int16, src []uint32) int {
	n := min(len(dst), len(src))
	table().narrowUint32ToInt16(dst[:n], src[:n])

	return n
}

// UnpackBytes widens len(dst) little-endian values of a byte-aligned bit width
// (8, 16, 24 or 32) from src.
func UnpackBytes(dst []uint32, src []byte, width int) error {
	switch width {
	case 8, 16, 24, 32:
	default:
		return errs.InvalidArgument("simd.unpack_bytes", "width %d is not byte aligned", width)
	}
	if need := len(dst) * width / 8; len(src) < need {
		return errs.Malformed("simd.unpack_bytes", "need %d bytes, have %d", need, len(src))
	}
	table().unpackBytes(dst, src, width)

	return nil
}

// CRC32C updates crc with data using the Castagnoli polynomial, with the same
// conventions as crc32.Update.
func CRC32C(crc uint32, data []byte) uint32 {
	return table().crc32c(crc, data)
}
