package simd

import (
	"sync"
	"testing"

	"github.com/arloliu/colcodec/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "scalar", LevelScalar.String())
	assert.Equal(t, "portable", LevelPortable.String())
	assert.Equal(t, "sse4.2", LevelSSE42.String())
	assert.Equal(t, "avx2", LevelAVX2.String())
	assert.Equal(t, "unknown", Level(42).String())
	assert.Equal(t, 32, LevelAVX2.VectorBytes())
	assert.Equal(t, 16, LevelSSE42.VectorBytes())
	assert.Equal(t, 8, LevelPortable.VectorBytes())
	assert.Equal(t, 8, LevelScalar.VectorBytes())
}

func TestSelectLevel_ARM64RunsPortable(t *testing.T) {
	f := CPUFeatures{Arch: "arm64", NEON: true, SVE: true, CRC32: true}
	assert.Equal(t, LevelPortable, selectLevel(f))
	assert.Equal(t, []Level{LevelScalar, LevelPortable}, supportedLevels(f))
}

func TestInit_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	levels := make([]Level, 32)
	for i := range levels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Init()
			levels[i] = CurrentLevel()
		}()
	}
	wg.Wait()

	for _, l := range levels {
		require.Equal(t, levels[0], l)
	}
	require.NotNil(t, active.Load())
	assert.NotEmpty(t, Features().Arch)
	assert.Equal(t, CurrentLevel().VectorBytes(), VectorBytes())
}

func TestNoSimdEnv(t *testing.T) {
	t.Setenv(NoSimdEnvVar, "")
	assert.False(t, NoSimdEnv())
	t.Setenv(NoSimdEnvVar, "1")
	assert.True(t, NoSimdEnv())
	t.Setenv(NoSimdEnvVar, "false")
	assert.False(t, NoSimdEnv())
	t.Setenv(NoSimdEnvVar, "yes please")
	assert.True(t, NoSimdEnv())
}

func TestPrefixSum(t *testing.T) {
	v := []int32{1, 2, 3, 4}
	PrefixSumInt32(v, 10)
	assert.Equal(t, []int32{11, 13, 16, 20}, v)

	w := []int64{-1, -1, 5}
	PrefixSumInt64(w, 0)
	assert.Equal(t, []int64{-1, -2, 3}, w)
}

func TestGather_Errors(t *testing.T) {
	dict := []float64{1.5, 2.5}

	out := make([]float64, 3)
	require.NoError(t, GatherFloat64(out, dict, []uint32{1, 0, 1}))
	assert.Equal(t, []float64{2.5, 1.5, 2.5}, out)

	err := GatherFloat64(out, dict, []uint32{2})
	require.ErrorIs(t, err, errs.ErrMalformed)

	err = GatherInt32(make([]int32, 1), []int32{1}, []uint32{0, 0})
	require.ErrorIs(t, err, errs.ErrCapacity)

	require.NoError(t, GatherInt64(nil, nil, nil))
	require.ErrorIs(t, GatherFloat32(make([]float32, 1), nil, []uint32{0}), errs.ErrMalformed)
}

func TestByteSplit_Errors(t *testing.T) {
	require.ErrorIs(t, ByteSplitEncodeFloat32(make([]byte, 7), make([]float32, 2)), errs.ErrCapacity)
	require.ErrorIs(t, ByteSplitDecodeFloat32(make([]float32, 2), make([]byte, 7)), errs.ErrMalformed)
	require.ErrorIs(t, ByteSplitEncodeFloat64(make([]byte, 15), make([]float64, 2)), errs.ErrCapacity)
	require.ErrorIs(t, ByteSplitDecodeFloat64(make([]float64, 2), make([]byte, 15)), errs.ErrMalformed)

	src := []float64{1, -2, 3.25}
	buf := make([]byte, 24)
	require.NoError(t, ByteSplitEncodeFloat64(buf, src))
	got := make([]float64, 3)
	require.NoError(t, ByteSplitDecodeFloat64(got, buf))
	assert.Equal(t, src, got)
}

func TestAppendByteSplit(t *testing.T) {
	f32 := []float32{1.5, -2, 3.25, 0, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	want32 := make([]byte, 4*len(f32))
	require.NoError(t, ByteSplitEncodeFloat32(want32, f32))

	prefix := []byte{0xEE, 0xFF}
	got := AppendByteSplitFloat32(prefix, f32)
	assert.Equal(t, prefix, got[:2])
	assert.Equal(t, want32, got[2:])

	f64 := []float64{1.5, -2, 3.25, 0, 7, 8, 9, 10, 11}
	want64 := make([]byte, 8*len(f64))
	require.NoError(t, ByteSplitEncodeFloat64(want64, f64))
	got = AppendByteSplitFloat64(make([]byte, 1, 4), f64)
	assert.Len(t, got, 1+len(want64))
	assert.Equal(t, want64, got[1:])

	assert.Empty(t, AppendByteSplitFloat32(nil, nil))
}

func TestAppendPackedBools(t *testing.T) {
	src := []bool{true, false, true, true, false, false, false, false, true}
	got := AppendPackedBools([]byte{0x7F}, src)
	assert.Equal(t, []byte{0x7F, 0x0D, 0x01}, got)
	assert.Equal(t, []byte{}, AppendPackedBools([]byte{}, nil))
}

func TestBools(t *testing.T) {
	src := []bool{true, false, true, true, false, false, false, false, true}
	packed := make([]byte, 2)
	require.NoError(t, PackBools(packed, src))
	assert.Equal(t, []byte{0x0D, 0x01}, packed)

	got := make([]bool, len(src))
	require.NoError(t, UnpackBools(got, packed))
	assert.Equal(t, src, got)

	require.ErrorIs(t, PackBools(make([]byte, 1), src), errs.ErrCapacity)
	require.ErrorIs(t, UnpackBools(got, packed[:1]), errs.ErrMalformed)
}

func TestRunLengthFillNarrow(t *testing.T) {
	assert.Equal(t, 3, RunLengthUint32([]uint32{4, 4, 4, 5}, 0))
	assert.Equal(t, 1, RunLengthUint32([]uint32{4, 4, 4, 5}, 3))
	assert.Equal(t, 0, RunLengthUint32(nil, 0))

	d := make([]int16, 5)
	FillInt16(d, 3)
	assert.Equal(t, []int16{3, 3, 3, 3, 3}, d)

	n := NarrowUint32ToInt16(d[:2], []uint32{1, 2, 3})
	assert.Equal(t, 2, n)
	assert.Equal(t, []int16{1, 2, 3, 3, 3}, d)
}

func TestUnpackBytes(t *testing.T) {
	dst := make([]uint32, 2)
	require.NoError(t, UnpackBytes(dst, []byte{1, 2, 3, 4, 5, 6}, 24))
	assert.Equal(t, []uint32{0x030201, 0x060504}, dst)

	require.ErrorIs(t, UnpackBytes(dst, nil, 12), errs.ErrInvalidArgument)
	require.ErrorIs(t, UnpackBytes(dst, []byte{1, 2, 3}, 16), errs.ErrMalformed)
}

func TestCRC32C(t *testing.T) {
	assert.Equal(t, uint32(0xE3069283), CRC32C(0, []byte("123456789")))

	part := CRC32C(0, []byte("12345"))
	assert.Equal(t, uint32(0xE3069283), CRC32C(part, []byte("6789")))
}
