//go:build !amd64 || noasm

package simd

func selectLevel(CPUFeatures) Level {
	return LevelPortable
}

func supportedLevels(CPUFeatures) []Level {
	return []Level{LevelScalar, LevelPortable}
}

func archKernels(*kernels) {}
