package encoding

import (
	"encoding/binary"

	"github.com/arloliu/colcodec/endian"
	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/simd"
)

// Int96 is the legacy 96-bit physical type, stored as three little-endian 32-bit words.
type Int96 [3]uint32

// EncodePlainBooleans appends values bit-packed LSB first, one bit per value.
func EncodePlainBooleans(dst []byte, values []bool) []byte {
	return simd.AppendPackedBools(growBuffer(dst, (len(values)+7)/8), values)
}

// DecodePlainBooleans decodes len(dst) booleans from src.
func DecodePlainBooleans(dst []bool, src []byte) error {
	if err := simd.UnpackBools(dst, src); err != nil {
		return errs.Wrap(errs.KindMalformed, "plain.decode_booleans", err)
	}

	return nil
}

// EncodePlainInt32 appends values as little-endian 4-byte words.
func EncodePlainInt32(dst []byte, values []int32) []byte {
	return endian.AppendUint32s(growBuffer(dst, len(values)*4), values)
}

// EncodePlainInt64 appends values as little-endian 8-byte words.
func EncodePlainInt64(dst []byte, values []int64) []byte {
	return endian.AppendUint64s(growBuffer(dst, len(values)*8), values)
}

// EncodePlainFloat appends IEEE 754 single-precision values.
func EncodePlainFloat(dst []byte, values []float32) []byte {
	return endian.AppendUint32s(growBuffer(dst, len(values)*4), values)
}

// EncodePlainDouble appends IEEE 754 double-precision values.
func EncodePlainDouble(dst []byte, values []float64) []byte {
	return endian.AppendUint64s(growBuffer(dst, len(values)*8), values)
}

// EncodePlainInt96 appends values as 12-byte little-endian triples.
func EncodePlainInt96(dst []byte, values []Int96) []byte {
	dst = growBuffer(dst, len(values)*12)
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, v[0])
		dst = binary.LittleEndian.AppendUint32(dst, v[1])
		dst = binary.LittleEndian.AppendUint32(dst, v[2])
	}

	return dst
}

func plainCount(op string, srcLen, size, dstLen int) (int, error) {
	if srcLen%size != 0 {
		return 0, errs.Malformed(op, "%d bytes is not a multiple of %d", srcLen, size)
	}
	n := srcLen / size
	if dstLen < n {
		return 0, errs.Capacity(op, "need %d values, have %d", n, dstLen)
	}

	return n, nil
}

// DecodePlainInt32 decodes len(src)/4 values into dst and returns the count.
func DecodePlainInt32(dst []int32, src []byte) (int, error) {
	if _, err := plainCount("plain.decode_int32", len(src), 4, len(dst)); err != nil {
		return 0, err
	}

	return endian.Uint32s(dst, src), nil
}

// DecodePlainInt64 decodes len(src)/8 values into dst and returns the count.
func DecodePlainInt64(dst []int64, src []byte) (int, error) {
	if _, err := plainCount("plain.decode_int64", len(src), 8, len(dst)); err != nil {
		return 0, err
	}

	return endian.Uint64s(dst, src), nil
}

// DecodePlainFloat decodes len(src)/4 values into dst and returns the count.
func DecodePlainFloat(dst []float32, src []byte) (int, error) {
	if _, err := plainCount("plain.decode_float", len(src), 4, len(dst)); err != nil {
		return 0, err
	}

	return endian.Uint32s(dst, src), nil
}

// DecodePlainDouble decodes len(src)/8 values into dst and returns the count.
func DecodePlainDouble(dst []float64, src []byte) (int, error) {
	if _, err := plainCount("plain.decode_double", len(src), 8, len(dst)); err != nil {
		return 0, err
	}

	return endian.Uint64s(dst, src), nil
}

// DecodePlainInt96 decodes len(src)/12 values into dst and returns the count.
func DecodePlainInt96(dst []Int96, src []byte) (int, error) {
	n, err := plainCount("plain.decode_int96", len(src), 12, len(dst))
	if err != nil {
		return 0, err
	}
	for i := range dst[:n] {
		b := src[i*12:]
		dst[i] = Int96{
			binary.LittleEndian.Uint32(b),
			binary.LittleEndian.Uint32(b[4:]),
			binary.LittleEndian.Uint32(b[8:]),
		}
	}

	return n, nil
}

// EncodePlainByteArrays appends each value as a 4-byte little-endian length followed
// by its bytes.
func EncodePlainByteArrays(dst []byte, values [][]byte) []byte {
	total := 0
	for _, v := range values {
		total += 4 + len(v)
	}
	dst = growBuffer(dst, total)
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v))) //nolint:gosec
		dst = append(dst, v...)
	}

	return dst
}

// DecodePlainByteArrays decodes up to len(dst) length-prefixed values. The decoded
// slices alias src. It returns the number of values and the bytes consumed.
func DecodePlainByteArrays(dst [][]byte, src []byte) (int, int, error) {
	const op = "plain.decode_byte_arrays"

	pos := 0
	for i := range dst {
		if pos == len(src) {
			return i, pos, nil
		}
		if len(src)-pos < 4 {
			return i, pos, errs.Malformed(op, "truncated length at offset %d", pos)
		}
		size := binary.LittleEndian.Uint32(src[pos:])
		pos += 4
		if uint64(size) > uint64(len(src)-pos) {
			return i, pos - 4, errs.Malformed(op, "value %d declares %d bytes, %d remain", i, size, len(src)-pos)
		}
		end := pos + int(size)
		dst[i] = src[pos:end:end]
		pos = end
	}

	return len(dst), pos, nil
}

// EncodePlainFixedLenByteArrays appends values of exactly size bytes each with no
// length prefix.
func EncodePlainFixedLenByteArrays(dst []byte, values [][]byte, size int) ([]byte, error) {
	if size <= 0 {
		return dst, errs.InvalidArgument("plain.encode_flba", "value size %d must be positive", size)
	}
	for i, v := range values {
		if len(v) != size {
			return dst, errs.InvalidArgument("plain.encode_flba", "value %d has %d bytes, want %d", i, len(v), size)
		}
	}

	dst = growBuffer(dst, len(values)*size)
	for _, v := range values {
		dst = append(dst, v...)
	}

	return dst, nil
}

// DecodePlainFixedLenByteArrays splits src into values of size bytes. The decoded
// slices alias src.
func DecodePlainFixedLenByteArrays(dst [][]byte, src []byte, size int) (int, error) {
	if size <= 0 {
		return 0, errs.InvalidArgument("plain.decode_flba", "value size %d must be positive", size)
	}
	n, err := plainCount("plain.decode_flba", len(src), size, len(dst))
	if err != nil {
		return 0, err
	}
	for i := range dst[:n] {
		dst[i] = src[i*size : (i+1)*size : (i+1)*size]
	}

	return n, nil
}
