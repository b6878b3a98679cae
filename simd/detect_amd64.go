//go:build amd64

package simd

import "golang.org/x/sys/cpu"

func detectFeatures() CPUFeatures {
	return CPUFeatures{
		Arch: "amd64",
		// The 128-bit kernels use SSSE3 shuffles and SSE4.1 widening loads; every SSE4.2
		// CPU has both, but check rather than assume.
		SSE42:  cpu.X86.HasSSE42 && cpu.X86.HasSSE41 && cpu.X86.HasSSSE3,
		AVX2:   cpu.X86.HasAVX2,
		AVX512: cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW,
		CRC32:  cpu.X86.HasSSE42,
	}
}
