package bitpack

import (
	"math/rand/v2"
	"testing"

	"github.com/arloliu/colcodec/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack8_Width4(t *testing.T) {
	values := [8]uint32{0, 1, 2, 3, 4, 5, 6, 7}
	dst := make([]byte, 4)

	Pack8(dst, &values, 4)
	require.Equal(t, []byte{0x10, 0x32, 0x54, 0x76}, dst)

	var got [8]uint32
	Unpack8(&got, dst, 4)
	assert.Equal(t, values, got)
}

func TestPack8_RoundTripAllWidths(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for width := 0; width <= MaxWidth; width++ {
		for iter := 0; iter < 64; iter++ {
			var values [8]uint32
			for i := range values {
				values[i] = rng.Uint32()
			}

			buf := make([]byte, width)
			Pack8(buf, &values, width)

			var got [8]uint32
			Unpack8(&got, buf, width)

			mask := uint32(uint64(1)<<width - 1)
			for i := range values {
				require.Equal(t, values[i]&mask, got[i], "width=%d index=%d", width, i)
			}
		}
	}
}

func TestPack8_WidthZero(t *testing.T) {
	values := [8]uint32{1, 2, 3, 4, 5, 6, 7, 8}
	Pack8(nil, &values, 0)

	got := [8]uint32{9, 9, 9, 9, 9, 9, 9, 9}
	Unpack8(&got, nil, 0)
	assert.Equal(t, [8]uint32{}, got)
}

func TestPack8_MaxValues(t *testing.T) {
	for width := 1; width <= MaxWidth; width++ {
		var values [8]uint32
		for i := range values {
			values[i] = ^uint32(0)
		}
		buf := make([]byte, width)
		Pack8(buf, &values, width)
		for _, b := range buf {
			require.Equal(t, byte(0xFF), b, "width=%d", width)
		}
	}
}

func TestPackUnpack_Bulk(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	counts := []int{0, 1, 7, 8, 9, 15, 16, 17, 100, 1001}

	for width := 0; width <= MaxWidth; width++ {
		for _, count := range counts {
			values := make([]uint32, count)
			mask := uint32(uint64(1)<<width - 1)
			for i := range values {
				values[i] = rng.Uint32() & mask
			}

			dst := make([]byte, PackedSize(count, width))
			n, err := Pack(dst, values, width)
			require.NoError(t, err)
			require.Equal(t, PackedSize(count, width), n, "width=%d count=%d", width, count)

			got := make([]uint32, count)
			m, err := Unpack(got, dst, width)
			require.NoError(t, err)
			require.Equal(t, n, m)
			require.Equal(t, values, got, "width=%d count=%d", width, count)
		}
	}
}

func TestPack_TailIsZeroPadded(t *testing.T) {
	dst := []byte{0xFF, 0xFF}
	n, err := Pack(dst, []uint32{1, 1, 1}, 3)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	// 001 001 001 -> bits 0..8 = 0b0_0100_1001
	assert.Equal(t, []byte{0x49, 0x00}, dst)
}

func TestPack_Errors(t *testing.T) {
	_, err := Pack(make([]byte, 64), []uint32{1}, 33)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = Pack(make([]byte, 1), make([]uint32, 8), 4)
	require.ErrorIs(t, err, errs.ErrCapacity)

	_, err = Unpack(make([]uint32, 8), make([]byte, 3), 4)
	require.ErrorIs(t, err, errs.ErrMalformed)

	_, err = Unpack(make([]uint32, 8), nil, -1)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 0, Width32(0))
	assert.Equal(t, 1, Width32(1))
	assert.Equal(t, 3, Width32(7))
	assert.Equal(t, 4, Width32(8))
	assert.Equal(t, 32, Width32(^uint32(0)))
	assert.Equal(t, 64, Width64(^uint64(0)))
	assert.Equal(t, 33, Width64(1<<32))
}

func BenchmarkUnpack(b *testing.B) {
	values := make([]uint32, 4096)
	for i := range values {
		values[i] = uint32(i) & 0x1FFF
	}
	buf := make([]byte, PackedSize(len(values), 13))
	_, _ = Pack(buf, values, 13)
	out := make([]uint32, len(values))

	b.SetBytes(int64(len(values) * 4))
	for b.Loop() {
		_, _ = Unpack(out, buf, 13)
	}
}
