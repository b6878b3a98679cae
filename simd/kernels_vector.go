package simd

import (
	"encoding/binary"
	"hash/crc32"
	"math"
	"unsafe"
)

// spreadBits maps a byte to 8 bytes holding its bits, bit i in byte i.
var spreadBits = func() (t [256]uint64) {
	for b := range t {
		var v uint64
		for i := 0; i < 8; i++ {
			v |= uint64(b>>i&1) << (8 * i)
		}
		t[b] = v
	}

	return t
}()

func prefixSumInt32Vector(values []int32, initial int32) {
	acc := initial
	i := 0
	for ; i+8 <= len(values); i += 8 {
		v := values[i : i+8 : i+8]
		// Local inclusive scan of the block, then add the running carry.
		s0 := v[0]
		s1 := s0 + v[1]
		s2 := s1 + v[2]
		s3 := s2 + v[3]
		s4 := s3 + v[4]
		s5 := s4 + v[5]
		s6 := s5 + v[6]
		s7 := s6 + v[7]
		v[0] = acc + s0
		v[1] = acc + s1
		v[2] = acc + s2
		v[3] = acc + s3
		v[4] = acc + s4
		v[5] = acc + s5
		v[6] = acc + s6
		v[7] = acc + s7
		acc = v[7]
	}
	for ; i < len(values); i++ {
		acc += values[i]
		values[i] = acc
	}
}

func prefixSumInt64Vector(values []int64, initial int64) {
	acc := initial
	i := 0
	for ; i+8 <= len(values); i += 8 {
		v := values[i : i+8 : i+8]
		s0 := v[0]
		s1 := s0 + v[1]
		s2 := s1 + v[2]
		s3 := s2 + v[3]
		s4 := s3 + v[4]
		s5 := s4 + v[5]
		s6 := s5 + v[6]
		s7 := s6 + v[7]
		v[0] = acc + s0
		v[1] = acc + s1
		v[2] = acc + s2
		v[3] = acc + s3
		v[4] = acc + s4
		v[5] = acc + s5
		v[6] = acc + s6
		v[7] = acc + s7
		acc = v[7]
	}
	for ; i < len(values); i++ {
		acc += values[i]
		values[i] = acc
	}
}

func maxIndex(indices []uint32) uint32 {
	var m0, m1, m2, m3 uint32
	i := 0
	for ; i+4 <= len(indices); i += 4 {
		ix := indices[i : i+4 : i+4]
		m0 = max(m0, ix[0])
		m1 = max(m1, ix[1])
		m2 = max(m2, ix[2])
		m3 = max(m3, ix[3])
	}
	for ; i < len(indices); i++ {
		m0 = max(m0, indices[i])
	}

	return max(m0, m1, m2, m3)
}

// gatherVector validates all indices up front, then copies without per-element checks
// in the hot loop.
func gatherVector[T any](dst, dict []T, indices []uint32) bool {
	if len(indices) == 0 {
		return true
	}
	if maxIndex(indices) >= uint32(len(dict)) {
		return false
	}

	dst = dst[:len(indices)]
	i := 0
	for ; i+8 <= len(indices); i += 8 {
		ix := indices[i : i+8 : i+8]
		d := dst[i : i+8 : i+8]
		d[0] = dict[ix[0]]
		d[1] = dict[ix[1]]
		d[2] = dict[ix[2]]
		d[3] = dict[ix[3]]
		d[4] = dict[ix[4]]
		d[5] = dict[ix[5]]
		d[6] = dict[ix[6]]
		d[7] = dict[ix[7]]
	}
	for ; i < len(indices); i++ {
		dst[i] = dict[indices[i]]
	}

	return true
}

// transpose4x4 transposes a 4x4 byte matrix held as 4 little-endian rows.
func transpose4x4(r0, r1, r2, r3 uint32) (uint32, uint32, uint32, uint32) {
	t := ((r0 >> 16) ^ r2) & 0x0000FFFF
	r2 ^= t
	r0 ^= t << 16
	t = ((r1 >> 16) ^ r3) & 0x0000FFFF
	r3 ^= t
	r1 ^= t << 16

	t = ((r0 >> 8) ^ r1) & 0x00FF00FF
	r1 ^= t
	r0 ^= t << 8
	t = ((r2 >> 8) ^ r3) & 0x00FF00FF
	r3 ^= t
	r2 ^= t << 8

	return r0, r1, r2, r3
}

// transpose8x8 transposes an 8x8 byte matrix held as 8 little-endian rows, swapping
// 4x4, then 2x2, then 1x1 blocks across the diagonal.
func transpose8x8(m *[8]uint64) {
	for i := 0; i < 4; i++ {
		t := ((m[i] >> 32) ^ m[i+4]) & 0x00000000FFFFFFFF
		m[i+4] ^= t
		m[i] ^= t << 32
	}
	for _, i := range [4]int{0, 1, 4, 5} {
		t := ((m[i] >> 16) ^ m[i+2]) & 0x0000FFFF0000FFFF
		m[i+2] ^= t
		m[i] ^= t << 16
	}
	for _, i := range [4]int{0, 2, 4, 6} {
		t := ((m[i] >> 8) ^ m[i+1]) & 0x00FF00FF00FF00FF
		m[i+1] ^= t
		m[i] ^= t << 8
	}
}

func byteSplitEncodeFloat32Vector(dst []byte, src []float32) {
	n := len(src)
	i := 0
	for ; i+8 <= n; i += 8 {
		v := src[i : i+8 : i+8]
		a0, a1, a2, a3 := transpose4x4(
			math.Float32bits(v[0]), math.Float32bits(v[1]),
			math.Float32bits(v[2]), math.Float32bits(v[3]))
		b0, b1, b2, b3 := transpose4x4(
			math.Float32bits(v[4]), math.Float32bits(v[5]),
			math.Float32bits(v[6]), math.Float32bits(v[7]))
		binary.LittleEndian.PutUint64(dst[i:], uint64(a0)|uint64(b0)<<32)
		binary.LittleEndian.PutUint64(dst[n+i:], uint64(a1)|uint64(b1)<<32)
		binary.LittleEndian.PutUint64(dst[2*n+i:], uint64(a2)|uint64(b2)<<32)
		binary.LittleEndian.PutUint64(dst[3*n+i:], uint64(a3)|uint64(b3)<<32)
	}
	for ; i < n; i++ {
		u := math.Float32bits(src[i])
		dst[i] = byte(u)
		dst[n+i] = byte(u >> 8)
		dst[2*n+i] = byte(u >> 16)
		dst[3*n+i] = byte(u >> 24)
	}
}

func byteSplitDecodeFloat32Vector(dst []float32, src []byte) {
	n := len(dst)
	i := 0
	for ; i+8 <= n; i += 8 {
		s0 := binary.LittleEndian.Uint64(src[i:])
		s1 := binary.LittleEndian.Uint64(src[n+i:])
		s2 := binary.LittleEndian.Uint64(src[2*n+i:])
		s3 := binary.LittleEndian.Uint64(src[3*n+i:])
		a0, a1, a2, a3 := transpose4x4(uint32(s0), uint32(s1), uint32(s2), uint32(s3))
		b0, b1, b2, b3 := transpose4x4(uint32(s0>>32), uint32(s1>>32), uint32(s2>>32), uint32(s3>>32))
		d := dst[i : i+8 : i+8]
		d[0] = math.Float32frombits(a0)
		d[1] = math.Float32frombits(a1)
		d[2] = math.Float32frombits(a2)
		d[3] = math.Float32frombits(a3)
		d[4] = math.Float32frombits(b0)
		d[5] = math.Float32frombits(b1)
		d[6] = math.Float32frombits(b2)
		d[7] = math.Float32frombits(b3)
	}
	for ; i < n; i++ {
		u := uint32(src[i]) |
			uint32(src[n+i])<<8 |
			uint32(src[2*n+i])<<16 |
			uint32(src[3*n+i])<<24
		dst[i] = math.Float32frombits(u)
	}
}

func byteSplitEncodeFloat64Vector(dst []byte, src []float64) {
	n := len(src)
	i := 0
	var m [8]uint64
	for ; i+8 <= n; i += 8 {
		v := src[i : i+8 : i+8]
		for j := range m {
			m[j] = math.Float64bits(v[j])
		}
		transpose8x8(&m)
		for b := range m {
			binary.LittleEndian.PutUint64(dst[b*n+i:], m[b])
		}
	}
	for ; i < n; i++ {
		u := math.Float64bits(src[i])
		for b := 0; b < 8; b++ {
			dst[b*n+i] = byte(u >> (8 * b))
		}
	}
}

func byteSplitDecodeFloat64Vector(dst []float64, src []byte) {
	n := len(dst)
	i := 0
	var m [8]uint64
	for ; i+8 <= n; i += 8 {
		for b := range m {
			m[b] = binary.LittleEndian.Uint64(src[b*n+i:])
		}
		transpose8x8(&m)
		d := dst[i : i+8 : i+8]
		for j := range m {
			d[j] = math.Float64frombits(m[j])
		}
	}
	for ; i < n; i++ {
		var u uint64
		for b := 0; b < 8; b++ {
			u |= uint64(src[b*n+i]) << (8 * b)
		}
		dst[i] = math.Float64frombits(u)
	}
}

// boolBytes views a bool slice as its underlying 0/1 bytes.
func boolBytes(b []bool) []byte {
	if len(b) == 0 {
		return nil
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(b))), len(b))
}

func packBoolsVector(dst []byte, src []bool) {
	raw := boolBytes(src)
	i := 0
	for ; i+8 <= len(raw); i += 8 {
		// Each byte is 0 or 1; the multiply moves bit 8k to bit 56+k without carries.
		x := binary.LittleEndian.Uint64(raw[i:])
		dst[i/8] = byte((x * 0x0102040810204080) >> 56)
	}
	if i < len(raw) {
		var b byte
		for j := 0; i+j < len(raw); j++ {
			b |= raw[i+j] << j
		}
		dst[i/8] = b
	}
}

func unpackBoolsVector(dst []bool, src []byte) {
	raw := boolBytes(dst)
	i := 0
	for ; i+8 <= len(raw); i += 8 {
		binary.LittleEndian.PutUint64(raw[i:], spreadBits[src[i/8]])
	}
	for ; i < len(raw); i++ {
		raw[i] = src[i/8] >> (i % 8) & 1
	}
}

func runLengthUint32Vector(values []uint32, start int) int {
	if start < 0 || start >= len(values) {
		return 0
	}
	v := values[start]
	i := start + 1
	for ; i+8 <= len(values); i += 8 {
		b := values[i : i+8 : i+8]
		if (b[0]^v)|(b[1]^v)|(b[2]^v)|(b[3]^v)|(b[4]^v)|(b[5]^v)|(b[6]^v)|(b[7]^v) != 0 {
			break
		}
	}
	for i < len(values) && values[i] == v {
		i++
	}

	return i - start
}

func fillInt16Vector(dst []int16, v int16) {
	if len(dst) == 0 {
		return
	}
	dst[0] = v
	for n := 1; n < len(dst); n *= 2 {
		copy(dst[n:], dst[:n])
	}
}

func narrowUint32ToInt16Vector(dst []int16, src []uint32) {
	dst = dst[:len(src)]
	i := 0
	for ; i+8 <= len(src); i += 8 {
		s := src[i : i+8 : i+8]
		d := dst[i : i+8 : i+8]
		d[0] = int16(s[0]) //nolint:gosec
		d[1] = int16(s[1]) //nolint:gosec
		d[2] = int16(s[2]) //nolint:gosec
		d[3] = int16(s[3]) //nolint:gosec
		d[4] = int16(s[4]) //nolint:gosec
		d[5] = int16(s[5]) //nolint:gosec
		d[6] = int16(s[6]) //nolint:gosec
		d[7] = int16(s[7]) //nolint:gosec
	}
	for ; i < len(src); i++ {
		dst[i] = int16(src[i]) //nolint:gosec
	}
}

func unpackBytesVector(dst []uint32, src []byte, width int) {
	n := len(dst)
	i := 0
	switch width {
	case 8:
		for ; i+8 <= n; i += 8 {
			x := binary.LittleEndian.Uint64(src[i:])
			d := dst[i : i+8 : i+8]
			d[0] = uint32(x & 0xFF)
			d[1] = uint32(x >> 8 & 0xFF)
			d[2] = uint32(x >> 16 & 0xFF)
			d[3] = uint32(x >> 24 & 0xFF)
			d[4] = uint32(x >> 32 & 0xFF)
			d[5] = uint32(x >> 40 & 0xFF)
			d[6] = uint32(x >> 48 & 0xFF)
			d[7] = uint32(x >> 56)
		}
	case 16:
		for ; i+4 <= n; i += 4 {
			x := binary.LittleEndian.Uint64(src[2*i:])
			d := dst[i : i+4 : i+4]
			d[0] = uint32(x & 0xFFFF)
			d[1] = uint32(x >> 16 & 0xFFFF)
			d[2] = uint32(x >> 32 & 0xFFFF)
			d[3] = uint32(x >> 48)
		}
	case 32:
		for ; i+2 <= n; i += 2 {
			x := binary.LittleEndian.Uint64(src[4*i:])
			dst[i] = uint32(x)
			dst[i+1] = uint32(x >> 32)
		}
	}
	unpackBytesScalar(dst[i:], src[i*width/8:], width)
}

// crc32cHardware defers to hash/crc32, which uses the SSE4.2 CRC32 instruction on amd64
// and the CRC32C instructions on arm64.
func crc32cHardware(crc uint32, data []byte) uint32 {
	return crc32.Update(crc, castagnoliTable, data)
}
