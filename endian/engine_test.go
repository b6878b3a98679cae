package endian

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	require := require.New(t)

	var testValue uint16 = 0x0102
	testBytes := (*[2]byte)(unsafe.Pointer(&testValue))

	switch testBytes[0] {
	case 0x01:
		require.Equal(binary.BigEndian, CheckEndianness())
		require.False(IsNativeLittleEndian())
	case 0x02:
		require.Equal(binary.LittleEndian, CheckEndianness())
		require.True(IsNativeLittleEndian())
	default:
		require.Failf("Unexpected byte value", "got: %v", testBytes[0])
	}
}

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, engine.AppendUint32(nil, 0x01020304))
}

func TestAppendUint32s(t *testing.T) {
	out := AppendUint32s([]byte{0xAA}, []int32{1, -1})
	require.Equal(t, []byte{0xAA, 1, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}, out)

	floats := AppendUint32s(nil, []float32{1.0})
	require.Equal(t, math.Float32bits(1.0), binary.LittleEndian.Uint32(floats))

	require.Empty(t, AppendUint32s[uint32](nil, nil))
}

func TestAppendUint64s(t *testing.T) {
	out := AppendUint64s(nil, []uint64{0x0102030405060708})
	require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, out)
}

func TestRoundTrip(t *testing.T) {
	i64 := []int64{math.MinInt64, -1, 0, 1, math.MaxInt64}
	buf := AppendUint64s(nil, i64)
	got := make([]int64, len(i64))
	require.Equal(t, len(i64), Uint64s(got, buf))
	require.Equal(t, i64, got)

	f64 := []float64{math.Inf(-1), -0.5, 0, 3.25, math.MaxFloat64}
	buf = AppendUint64s(nil, f64)
	gotF := make([]float64, len(f64))
	require.Equal(t, len(f64), Uint64s(gotF, buf))
	require.Equal(t, f64, gotF)

	f32 := []float32{-2.5, 0, 1e10}
	buf = AppendUint32s(nil, f32)
	gotF32 := make([]float32, len(f32))
	require.Equal(t, len(f32), Uint32s(gotF32, buf))
	require.Equal(t, f32, gotF32)
}

func TestShortInput(t *testing.T) {
	dst := make([]uint32, 4)
	require.Equal(t, 1, Uint32s(dst, []byte{1, 0, 0, 0, 9, 9}))
	require.Equal(t, uint32(1), dst[0])

	dst64 := make([]uint64, 1)
	require.Equal(t, 0, Uint64s(dst64, []byte{1, 2, 3}))
}
