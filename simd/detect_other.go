//go:build !amd64 && !arm64

package simd

import "runtime"

func detectFeatures() CPUFeatures {
	return CPUFeatures{Arch: runtime.GOARCH}
}
