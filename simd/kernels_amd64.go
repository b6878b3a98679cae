//go:build amd64 && !noasm

package simd

import "math"

//go:generate go run -tags avogen ../internal/avo -out kernels_amd64.s -pkg simd

// selectLevel walks the tiers from widest to narrowest.
func selectLevel(f CPUFeatures) Level {
	switch {
	case f.AVX2 && f.SSE42:
		return LevelAVX2
	case f.SSE42:
		return LevelSSE42
	default:
		return LevelPortable
	}
}

// supportedLevels lists every level this build can run on a CPU with f, narrowest first.
func supportedLevels(f CPUFeatures) []Level {
	levels := []Level{LevelScalar, LevelPortable}
	if f.SSE42 {
		levels = append(levels, LevelSSE42)
		if f.AVX2 {
			levels = append(levels, LevelAVX2)
		}
	}

	return levels
}

// archKernels installs the assembly kernels for the x86-64 levels. LevelAVX2 keeps the
// SSE byte transposes and 24-bit widening: their shuffles stay within 128-bit lanes,
// so the 256-bit forms would only add cross-lane fixups.
func archKernels(k *kernels) {
	if k.level < LevelSSE42 {
		return
	}

	k.prefixSumInt32 = prefixSumInt32SSE2
	k.prefixSumInt64 = prefixSumInt64SSE2
	k.byteSplitEncodeFloat32 = byteSplitEncodeFloat32SSE
	k.byteSplitDecodeFloat32 = byteSplitDecodeFloat32SSE
	k.byteSplitEncodeFloat64 = byteSplitEncodeFloat64SSE
	k.byteSplitDecodeFloat64 = byteSplitDecodeFloat64SSE
	k.unpackBytes = unpackBytesSSE

	if k.level >= LevelAVX2 {
		k.prefixSumInt32 = prefixSumInt32AVX2
		k.prefixSumInt64 = prefixSumInt64AVX2
		k.unpackBytes = unpackBytesAVX2
	}
}

// Assembly entry points provided by kernels_amd64.s.

//go:noescape
func prefixSumInt32SSE2(values []int32, initial int32)

//go:noescape
func prefixSumInt64SSE2(values []int64, initial int64)

//go:noescape
func prefixSumInt32AVX2(values []int32, initial int32)

//go:noescape
func prefixSumInt64AVX2(values []int64, initial int64)

// The byte split kernels handle n values, a multiple of 16 (float32) or 8 (float64),
// with byte planes stride bytes apart.

//go:noescape
func byteSplitEncode32SSSE3(dst *byte, src *float32, n, stride int)

//go:noescape
func byteSplitDecode32SSSE3(dst *float32, src *byte, n, stride int)

//go:noescape
func byteSplitEncode64SSSE3(dst *byte, src *float64, n, stride int)

//go:noescape
func byteSplitDecode64SSSE3(dst *float64, src *byte, n, stride int)

// The widening kernels handle n values, a positive multiple of 4 (SSE) or 8 (AVX2).

//go:noescape
func unpack8SSE41(dst *uint32, src *byte, n int)

//go:noescape
func unpack16SSE41(dst *uint32, src *byte, n int)

//go:noescape
func unpack24SSSE3(dst *uint32, src *byte, n int)

//go:noescape
func unpack8AVX2(dst *uint32, src *byte, n int)

//go:noescape
func unpack16AVX2(dst *uint32, src *byte, n int)

func byteSplitEncodeFloat32SSE(dst []byte, src []float32) {
	n := len(src) &^ 15
	if n > 0 {
		byteSplitEncode32SSSE3(&dst[0], &src[0], n, len(src))
	}
	stride := len(src)
	for i := n; i < len(src); i++ {
		u := math.Float32bits(src[i])
		dst[i] = byte(u)
		dst[stride+i] = byte(u >> 8)
		dst[2*stride+i] = byte(u >> 16)
		dst[3*stride+i] = byte(u >> 24)
	}
}

func byteSplitDecodeFloat32SSE(dst []float32, src []byte) {
	n := len(dst) &^ 15
	if n > 0 {
		byteSplitDecode32SSSE3(&dst[0], &src[0], n, len(dst))
	}
	stride := len(dst)
	for i := n; i < len(dst); i++ {
		u := uint32(src[i]) |
			uint32(src[stride+i])<<8 |
			uint32(src[2*stride+i])<<16 |
			uint32(src[3*stride+i])<<24
		dst[i] = math.Float32frombits(u)
	}
}

func byteSplitEncodeFloat64SSE(dst []byte, src []float64) {
	n := len(src) &^ 7
	if n > 0 {
		byteSplitEncode64SSSE3(&dst[0], &src[0], n, len(src))
	}
	stride := len(src)
	for i := n; i < len(src); i++ {
		u := math.Float64bits(src[i])
		for b := 0; b < 8; b++ {
			dst[b*stride+i] = byte(u >> (8 * b))
		}
	}
}

func byteSplitDecodeFloat64SSE(dst []float64, src []byte) {
	n := len(dst) &^ 7
	if n > 0 {
		byteSplitDecode64SSSE3(&dst[0], &src[0], n, len(dst))
	}
	stride := len(dst)
	for i := n; i < len(dst); i++ {
		var u uint64
		for b := 0; b < 8; b++ {
			u |= uint64(src[b*stride+i]) << (8 * b)
		}
		dst[i] = math.Float64frombits(u)
	}
}

func unpackBytesSSE(dst []uint32, src []byte, width int) {
	n := 0
	switch width {
	case 8:
		if n = len(dst) &^ 3; n > 0 {
			unpack8SSE41(&dst[0], &src[0], n)
		}
	case 16:
		if n = len(dst) &^ 3; n > 0 {
			unpack16SSE41(&dst[0], &src[0], n)
		}
	case 24:
		// Each group of 4 loads 16 bytes to use 12, so stop while the load stays in src.
		if len(src) >= 16 {
			n = min(len(dst)/4, (len(src)-16)/12+1) * 4
		}
		if n > 0 {
			unpack24SSSE3(&dst[0], &src[0], n)
		}
	}
	unpackBytesVector(dst[n:], src[n*width/8:], width)
}

func unpackBytesAVX2(dst []uint32, src []byte, width int) {
	n := 0
	switch width {
	case 8:
		if n = len(dst) &^ 7; n > 0 {
			unpack8AVX2(&dst[0], &src[0], n)
		}
	case 16:
		if n = len(dst) &^ 7; n > 0 {
			unpack16AVX2(&dst[0], &src[0], n)
		}
	}
	unpackBytesSSE(dst[n:], src[n*width/8:], width)
}
