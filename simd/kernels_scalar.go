package simd

import (
	"encoding/binary"
	"hash/crc32"
	"math"
)

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

func prefixSumInt32Scalar(values []int32, initial int32) {
	acc := initial
	for i := range values {
		acc += values[i]
		values[i] = acc
	}
}

func prefixSumInt64Scalar(values []int64, initial int64) {
	acc := initial
	for i := range values {
		acc += values[i]
		values[i] = acc
	}
}

func gatherScalar[T any](dst, dict []T, indices []uint32) bool {
	n := uint32(len(dict))
	for i, ix := range indices {
		if ix >= n {
			return false
		}
		dst[i] = dict[ix]
	}

	return true
}

func byteSplitEncodeFloat32Scalar(dst []byte, src []float32) {
	n := len(src)
	for i, f := range src {
		u := math.Float32bits(f)
		dst[i] = byte(u)
		dst[n+i] = byte(u >> 8)
		dst[2*n+i] = byte(u >> 16)
		dst[3*n+i] = byte(u >> 24)
	}
}

func byteSplitDecodeFloat32Scalar(dst []float32, src []byte) {
	n := len(dst)
	for i := range dst {
		u := uint32(src[i]) |
			uint32(src[n+i])<<8 |
			uint32(src[2*n+i])<<16 |
			uint32(src[3*n+i])<<24
		dst[i] = math.Float32frombits(u)
	}
}

func byteSplitEncodeFloat64Scalar(dst []byte, src []float64) {
	n := len(src)
	for i, f := range src {
		u := math.Float64bits(f)
		for b := 0; b < 8; b++ {
			dst[b*n+i] = byte(u >> (8 * b))
		}
	}
}

func byteSplitDecodeFloat64Scalar(dst []float64, src []byte) {
	n := len(dst)
	for i := range dst {
		var u uint64
		for b := 0; b < 8; b++ {
			u |= uint64(src[b*n+i]) << (8 * b)
		}
		dst[i] = math.Float64frombits(u)
	}
}

func packBoolsScalar(dst []byte, src []bool) {
	for i := 0; i < len(src); i += 8 {
		var b byte
		for j := 0; j < 8 && i+j < len(src); j++ {
			if src[i+j] {
				b |= 1 << j
			}
		}
		dst[i/8] = b
	}
}

func unpackBoolsScalar(dst []bool, src []byte) {
	for i := range dst {
		dst[i] = src[i/8]>>(i%8)&1 != 0
	}
}

func runLengthUint32Scalar(values []uint32, start int) int {
	if start < 0 || start >= len(values) {
		return 0
	}
	v := values[start]
	i := start + 1
	for i < len(values) && values[i] == v {
		i++
	}

	return i - start
}

func fillInt16Scalar(dst []int16, v int16) {
	for i := range dst {
		dst[i] = v
	}
}

func narrowUint32ToInt16Scalar(dst []int16, src []uint32) {
	for i, v := range src {
		dst[i] = int16(v) //nolint:gosec
	}
}

func unpackBytesScalar(dst []uint32, src []byte, width int) {
	switch width {
	case 8:
		for i := range dst {
			dst[i] = uint32(src[i])
		}
	case 16:
		for i := range dst {
			dst[i] = uint32(binary.LittleEndian.Uint16(src[2*i:]))
		}
	case 24:
		for i := range dst {
			p := src[3*i:]
			dst[i] = uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16
		}
	case 32:
		for i := range dst {
			dst[i] = binary.LittleEndian.Uint32(src[4*i:])
		}
	}
}

// crc32cScalar is a byte-at-a-time table loop with the same pre/post conditioning as
// crc32.Update.
func crc32cScalar(crc uint32, data []byte) uint32 {
	crc = ^crc
	for _, b := range data {
		crc = castagnoliTable[byte(crc)^b] ^ (crc >> 8)
	}

	return ^crc
}
