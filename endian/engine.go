// Package endian provides bulk little-endian conversions for fixed-width column values.
//
// All on-disk formats handled by colcodec are little-endian. On little-endian hosts the
// bulk helpers reinterpret the value slice as bytes and copy it in one step; on
// big-endian hosts they fall back to per-value conversion through encoding/binary.
//
//	buf = endian.AppendUint64s(buf, values)
//	n := endian.Uint64s(dst, buf)
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

var nativeLittle = CheckEndianness() == binary.LittleEndian

// CheckEndianness reports the host byte order.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return nativeLittle
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

type fixed interface {
	~uint32 | ~int32 | ~uint64 | ~int64 | ~float32 | ~float64
}

func asBytes[T fixed](values []T) []byte {
	if len(values) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(values[0]))

	return unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*size)
}

// AppendUint32s appends values to dst as little-endian 4-byte words.
func AppendUint32s[T ~uint32 | ~int32 | ~float32](dst []byte, values []T) []byte {
	if nativeLittle {
		return append(dst, asBytes(values)...)
	}
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, *(*uint32)(unsafe.Pointer(&v)))
	}

	return dst
}

// AppendUint64s appends values to dst as little-endian 8-byte words.
func AppendUint64s[T ~uint64 | ~int64 | ~float64](dst []byte, values []T) []byte {
	if nativeLittle {
		return append(dst, asBytes(values)...)
	}
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint64(dst, *(*uint64)(unsafe.Pointer(&v)))
	}

	return dst
}

// Uint32s fills dst from little-endian 4-byte words in src and returns the number of
// values converted, min(len(dst), len(src)/4).
func Uint32s[T ~uint32 | ~int32 | ~float32](dst []T, src []byte) int {
	n := min(len(dst), len(src)/4)
	if nativeLittle {
		return copy(asBytes(dst[:n]), src[:n*4]) / 4
	}
	for i := range dst[:n] {
		w := binary.LittleEndian.Uint32(src[i*4:])
		dst[i] = *(*T)(unsafe.Pointer(&w))
	}

	return n
}

// Uint64s fills dst from little-endian 8-byte words in src and returns the number of
// values converted, min(len(dst), len(src)/8).
func Uint64s[T ~uint64 | ~int64 | ~float64](dst []T, src []byte) int {
	n := min(len(dst), len(src)/8)
	if nativeLittle {
		return copy(asBytes(dst[:n]), src[:n*8]) / 8
	}
	for i := range dst[:n] {
		w := binary.LittleEndian.Uint64(src[i*8:])
		dst[i] = *(*T)(unsafe.Pointer(&w))
	}

	return n
}
