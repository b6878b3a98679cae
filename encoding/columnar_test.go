package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrowBuffer_SufficientCapacity(t *testing.T) {
	buf := make([]byte, 10, 100)
	result := growBuffer(buf, 50)

	require.Equal(t, &buf[0], &result[0], "should return same buffer")
	require.Equal(t, 10, len(result))
	require.Equal(t, 100, cap(result))

	result = growBuffer(buf, 0)
	require.Equal(t, &buf[0], &result[0], "zero bytes never reallocates")
}

func TestGrowBuffer_SmallBufferGrowsByDefault(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	result := growBuffer(buf, 50)

	require.Equal(t, buf, result, "data should be preserved")
	require.GreaterOrEqual(t, cap(result), len(buf)+256)
}

func TestGrowBuffer_LargeBufferGrowsByQuarter(t *testing.T) {
	buf := make([]byte, 8000, 8000)
	result := growBuffer(buf, 100)

	require.Equal(t, 8000, len(result))
	require.Equal(t, 8000+2000, cap(result))
}

func TestGrowBuffer_GrowsByRequiredBytes(t *testing.T) {
	buf := make([]byte, 4000, 5000)
	result := growBuffer(buf, 2000)

	require.Equal(t, 4000, len(result))
	require.GreaterOrEqual(t, cap(result)-len(result), 2000)

	result = growBuffer(nil, 1000)
	require.Empty(t, result)
	require.GreaterOrEqual(t, cap(result), 1000)
}

func BenchmarkGrowBuffer_NoGrowth(b *testing.B) {
	buf := make([]byte, 10, 1000)
	for b.Loop() {
		_ = growBuffer(buf, 100)
	}
}
