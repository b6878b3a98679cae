// Package simd selects the fastest available kernel for the hot loops of the codecs.
//
// On first use the package inspects the CPU once, picks a dispatch Level and publishes an
// immutable table of kernels. Every exported operation calls through that table, so
// callers never choose an implementation themselves. Racing first callers all block on
// the same initialization and then observe the fully built table.
//
// Kernels come in three families:
//   - scalar: plain reference loops
//   - portable: Go written for wide execution, with 8-lane unrolled blocks, SWAR
//     byte-matrix transposes and multiply-gather bit packing
//   - assembly: amd64 SSE and AVX2 kernels generated with avo (see internal/avo)
//
// A level starts from the portable table and replaces the entries its instruction set
// accelerates. Every family produces bit-identical results for every valid input.
//
// AVX-512 CPUs run the AVX2 table and arm64 CPUs, with or without SVE, run the portable
// table: there are no kernels for those instruction sets, so they are not separate
// levels. Building with the noasm tag drops the assembly and leaves the portable table.
//
// Setting COLCODEC_NO_SIMD=1 forces the scalar table, which is useful when bisecting a
// suspected kernel bug.
package simd

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arloliu/colcodec/internal/logger"
)

// NoSimdEnvVar is the environment variable that forces scalar kernels.
const NoSimdEnvVar = "COLCODEC_NO_SIMD"

// Level identifies the instruction-set tier the dispatch table was built for.
type Level int

const (
	// LevelScalar uses the reference kernels. It is only selected by COLCODEC_NO_SIMD.
	LevelScalar Level = iota
	// LevelPortable uses the wide pure-Go kernels. It is the level on every CPU without
	// an assembly tier, including arm64.
	LevelPortable
	// LevelSSE42 adds the x86-64 128-bit assembly kernels (SSSE3, SSE4.1) and the
	// SSE4.2 CRC32C instruction.
	LevelSSE42
	// LevelAVX2 adds the x86-64 256-bit assembly kernels on top of LevelSSE42.
	// AVX-512 CPUs run this level.
	LevelAVX2
)

func (l Level) String() string {
	switch l {
	case LevelScalar:
		return "scalar"
	case LevelPortable:
		return "portable"
	case LevelSSE42:
		return "sse4.2"
	case LevelAVX2:
		return "avx2"
	default:
		return "unknown"
	}
}

// VectorBytes returns the register width in bytes the level's widest kernels use.
func (l Level) VectorBytes() int {
	switch l {
	case LevelSSE42:
		return 16
	case LevelAVX2:
		return 32
	default:
		return 8
	}
}

// CPUFeatures is the subset of CPU capabilities the dispatcher looks at. AVX512, NEON
// and SVE are reported for diagnostics only.
type CPUFeatures struct {
	Arch   string
	SSE42  bool
	AVX2   bool
	AVX512 bool
	NEON   bool
	SVE    bool
	CRC32  bool
}

// kernels is one fully populated dispatch table. It is never mutated after publication.
type kernels struct {
	level    Level
	features CPUFeatures

	prefixSumInt32 func(values []int32, initial int32)
	prefixSumInt64 func(values []int64, initial int64)

	gatherInt32   func(dst, dict []int32, indices []uint32) bool
	gatherInt64   func(dst, dict []int64, indices []uint32) bool
	gatherFloat32 func(dst, dict []float32, indices []uint32) bool
	gatherFloat64 func(dst, dict []float64, indices []uint32) bool

	byteSplitEncodeFloat32 func(dst []byte, src []float32)
	byteSplitDecodeFloat32 func(dst []float32, src []byte)
	byteSplitEncodeFloat64 func(dst []byte, src []float64)
	byteSplitDecodeFloat64 func(dst []float64, src []byte)

	packBools   func(dst []byte, src []bool)
	unpackBools func(dst []bool, src []byte)

	runLengthUint32     func(values []uint32, start int) int
	fillInt16           func(dst []int16, v int16)
	narrowUint32ToInt16 func(dst []int16, src []uint32)
	unpackBytes         func(dst []uint32, src []byte, width int)

	crc32c func(crc uint32, data []byte) uint32
}

func scalarKernels(features CPUFeatures) *kernels {
	return &kernels{
		level:    LevelScalar,
		features: features,

		prefixSumInt32: prefixSumInt32Scalar,
		prefixSumInt64: prefixSumInt64Scalar,

		gatherInt32:   gatherScalar[int32],
		gatherInt64:   gatherScalar[int64],
		gatherFloat32: gatherScalar[float32],
		gatherFloat64: gatherScalar[float64],

		byteSplitEncodeFloat32: byteSplitEncodeFloat32Scalar,
		byteSplitDecodeFloat32: byteSplitDecodeFloat32Scalar,
		byteSplitEncodeFloat64: byteSplitEncodeFloat64Scalar,
		byteSplitDecodeFloat64: byteSplitDecodeFloat64Scalar,

		packBools:   packBoolsScalar,
		unpackBools: unpackBoolsScalar,

		runLengthUint32:     runLengthUint32Scalar,
		fillInt16:           fillInt16Scalar,
		narrowUint32ToInt16: narrowUint32ToInt16Scalar,
		unpackBytes:         unpackBytesScalar,

		crc32c: crc32cScalar,
	}
}

func portableKernels(level Level, features CPUFeatures) *kernels {
	k := &kernels{
		level:    level,
		features: features,

		prefixSumInt32: prefixSumInt32Vector,
		prefixSumInt64: prefixSumInt64Vector,

		gatherInt32:   gatherVector[int32],
		gatherInt64:   gatherVector[int64],
		gatherFloat32: gatherVector[float32],
		gatherFloat64: gatherVector[float64],

		byteSplitEncodeFloat32: byteSplitEncodeFloat32Vector,
		byteSplitDecodeFloat32: byteSplitDecodeFloat32Vector,
		byteSplitEncodeFloat64: byteSplitEncodeFloat64Vector,
		byteSplitDecodeFloat64: byteSplitDecodeFloat64Vector,

		packBools:   packBoolsVector,
		unpackBools: unpackBoolsVector,

		runLengthUint32:     runLengthUint32Vector,
		fillInt16:           fillInt16Vector,
		narrowUint32ToInt16: narrowUint32ToInt16Vector,
		unpackBytes:         unpackBytesVector,

		crc32c: crc32cScalar,
	}
	if features.CRC32 {
		k.crc32c = crc32cHardware
	}

	return k
}

// newKernels builds the table for level. The caller must only ask for a level that
// supportedLevels reports for features.
func newKernels(level Level, features CPUFeatures) *kernels {
	if level == LevelScalar {
		return scalarKernels(features)
	}

	k := portableKernels(level, features)
	archKernels(k)

	return k
}

var (
	active   atomic.Pointer[kernels]
	initOnce sync.Once
)

// Init builds and publishes the dispatch table. It is safe to call from many goroutines
// and only the first call does any work; calling it is optional since every operation
// initializes lazily.
func Init() {
	initOnce.Do(func() {
		features := detectFeatures()
		level := selectLevel(features)
		forced := false
		if NoSimdEnv() {
			level = LevelScalar
			forced = true
		}

		active.Store(newKernels(level, features))

		logger.Named("simd").Debug("dispatch table ready",
			zap.Stringer("level", level),
			zap.String("arch", features.Arch),
			zap.Bool("forced_scalar", forced),
			zap.Bool("hw_crc32c", features.CRC32 && level != LevelScalar),
		)
	})
}

func table() *kernels {
	if k := active.Load(); k != nil {
		return k
	}
	Init()

	return active.Load()
}

// CurrentLevel returns the level of the published dispatch table.
func CurrentLevel() Level {
	return table().level
}

// Features returns the CPU capabilities detected at initialization.
func Features() CPUFeatures {
	return table().features
}

// VectorBytes returns the register width in bytes of the active level.
func VectorBytes() int {
	return table().level.VectorBytes()
}

// NoSimdEnv reports whether COLCODEC_NO_SIMD requests scalar kernels.
func NoSimdEnv() bool {
	val := os.Getenv(NoSimdEnvVar)
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}

	return true
}
