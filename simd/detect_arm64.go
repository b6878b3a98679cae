//go:build arm64

package simd

import "golang.org/x/sys/cpu"

func detectFeatures() CPUFeatures {
	return CPUFeatures{
		Arch: "arm64",
		// ASIMD is architecturally mandatory on arm64.
		NEON:  cpu.ARM64.HasASIMD,
		SVE:   cpu.ARM64.HasSVE,
		CRC32: cpu.ARM64.HasCRC32,
	}
}
