package encoding

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/colcodec/errs"
)

func TestIndexWidth(t *testing.T) {
	cases := map[int]int{0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 256: 8, 257: 9}
	for n, want := range cases {
		require.Equal(t, want, IndexWidth(n), "n=%d", n)
	}
}

func TestDictionary_Int64(t *testing.T) {
	d := NewInt64Dictionary()
	values := []int64{7, 7, 3, 7, math.MinInt64, 3, 3, 3, 3, 3, 3, 3, 3, 3}
	d.PutSlice(values)

	require.Equal(t, 3, d.Len())
	require.Equal(t, []int64{7, 3, math.MinInt64}, d.Values())
	require.Equal(t, []uint32{0, 0, 1, 0, 2, 1, 1, 1, 1, 1, 1, 1, 1, 1}, d.Indices())

	dictPage := d.AppendDictionaryPage(nil)
	dict := make([]int64, d.Len())
	_, err := DecodePlainInt64(dict, dictPage)
	require.NoError(t, err)

	data, err := d.AppendIndices(nil)
	require.NoError(t, err)
	require.Equal(t, byte(2), data[0], "index width")

	got := make([]int64, len(values))
	n, err := DecodeDictionaryInt64(got, dict, data)
	require.NoError(t, err)
	require.Equal(t, len(values), n)
	require.Equal(t, values, got)
}

func TestDictionary_Int32AndFloats(t *testing.T) {
	i32 := NewInt32Dictionary()
	i32.PutSlice([]int32{-1, 1, -1})
	require.Equal(t, []uint32{0, 1, 0}, i32.Indices())

	data, err := i32.AppendIndices(nil)
	require.NoError(t, err)
	got32 := make([]int32, 3)
	n, err := DecodeDictionaryInt32(got32, i32.Values(), data)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []int32{-1, 1, -1}, got32)

	f := NewFloatDictionary()
	negZero := float32(math.Copysign(0, -1))
	f.PutSlice([]float32{0, negZero, 0, 1.5})
	require.Equal(t, 3, f.Len(), "+0 and -0 are distinct entries")

	d := NewDoubleDictionary()
	nan := math.NaN()
	d.PutSlice([]float64{nan, 2, nan})
	require.Equal(t, 2, d.Len(), "NaN is deduplicated by bit pattern")

	data, err = d.AppendIndices(nil)
	require.NoError(t, err)
	gotF := make([]float64, 3)
	n, err = DecodeDictionaryDouble(gotF, d.Values(), data)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.True(t, math.IsNaN(gotF[0]))
	require.Equal(t, 2.0, gotF[1])

	fdata, err := f.AppendIndices(nil)
	require.NoError(t, err)
	gotF32 := make([]float32, 4)
	n, err = DecodeDictionaryFloat(gotF32, f.Values(), fdata)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, math.Float32bits(negZero), math.Float32bits(gotF32[1]))
}

func TestDictionary_Reset(t *testing.T) {
	d := NewInt32Dictionary()
	d.PutSlice([]int32{1, 2, 3})
	d.Reset()
	require.Equal(t, 0, d.Len())
	require.Empty(t, d.Indices())
	require.Equal(t, uint32(0), d.Put(3))
}

func TestByteArrayDictionary(t *testing.T) {
	d := NewByteArrayDictionary()
	values := make([][]byte, 0, 1000)
	for i := range 1000 {
		values = append(values, []byte(fmt.Sprintf("host-%03d", i%37)))
	}

	buf := make([]byte, 0, 16)
	for _, v := range values {
		// Reuse one buffer to make sure the dictionary copies.
		buf = append(buf[:0], v...)
		d.Put(buf)
	}
	require.Equal(t, 37, d.Len())
	require.False(t, d.HasCollision())
	require.Equal(t, []byte("host-005"), d.Value(5))

	dictPage := d.AppendDictionaryPage(nil)
	dict := make([][]byte, d.Len())
	n, _, err := DecodePlainByteArrays(dict, dictPage)
	require.NoError(t, err)
	require.Equal(t, 37, n)

	data, err := d.AppendIndices(nil)
	require.NoError(t, err)
	got := make([][]byte, len(values))
	n, err = DecodeDictionaryByteArrays(got, dict, data)
	require.NoError(t, err)
	require.Equal(t, len(values), n)
	require.Equal(t, values, got)

	d.Reset()
	require.Equal(t, 0, d.Len())
	require.Equal(t, uint32(0), d.Put([]byte("x")))
}

func TestDictionaryIndices_Errors(t *testing.T) {
	_, err := EncodeDictionaryIndices(nil, []uint32{1}, 33)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = DecodeDictionaryIndices(make([]uint32, 1), nil)
	require.ErrorIs(t, err, errs.ErrMalformed)

	_, err = DecodeDictionaryIndices(make([]uint32, 1), []byte{40, 0x02, 0x00})
	require.ErrorIs(t, err, errs.ErrMalformed)

	n, err := DecodeDictionaryIndices(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestDecodeDictionary_IndexOutOfRange(t *testing.T) {
	data, err := EncodeDictionaryIndices(nil, []uint32{0, 1, 5}, 3)
	require.NoError(t, err)

	_, err = DecodeDictionaryInt32(make([]int32, 3), []int32{10, 20}, data)
	require.ErrorIs(t, err, errs.ErrMalformed)

	_, err = DecodeDictionaryByteArrays(make([][]byte, 3), [][]byte{[]byte("a"), []byte("b")}, data)
	require.ErrorIs(t, err, errs.ErrMalformed)
}
