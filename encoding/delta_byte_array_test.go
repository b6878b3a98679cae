package encoding

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/colcodec/errs"
)

func sampleByteArrays(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte(fmt.Sprintf("https://example.com/api/v1/items/%05d?page=%d", i*3, i%4))
	}

	return out
}

// === Delta Length Byte Array Tests ===

func TestDeltaLengthByteArray_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 2, 129, 1000} {
		values := sampleByteArrays(n)
		if n > 1 {
			values[1] = []byte{}
		}
		data := EncodeDeltaLengthByteArray(nil, values)

		got := make([][]byte, n)
		m, consumed, err := DecodeDeltaLengthByteArray(got, data)
		require.NoError(t, err)
		require.Equal(t, n, m)
		require.Equal(t, len(data), consumed)
		require.Equal(t, values, got)
	}
}

func TestDeltaLengthByteArray_Layout(t *testing.T) {
	values := [][]byte{[]byte("Hello"), []byte("World"), []byte("Foobar"), []byte("ABCDEF")}
	data := EncodeDeltaLengthByteArray(nil, values)

	lengths := make([]int32, 4)
	n, consumed, err := DecodeDeltaInt32(lengths, data)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []int32{5, 5, 6, 6}, lengths)
	require.Equal(t, []byte("HelloWorldFoobarABCDEF"), data[consumed:])
}

func TestDeltaLengthByteArray_ShortDestination(t *testing.T) {
	values := sampleByteArrays(300)
	data := EncodeDeltaLengthByteArray(nil, values)

	got := make([][]byte, 10)
	n, _, err := DecodeDeltaLengthByteArray(got, data)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.Equal(t, values[:10], got)
}

func TestDeltaLengthByteArray_Malformed(t *testing.T) {
	values := sampleByteArrays(5)
	data := EncodeDeltaLengthByteArray(nil, values)

	got := make([][]byte, 5)
	_, _, err := DecodeDeltaLengthByteArray(got, data[:len(data)-3])
	require.ErrorIs(t, err, errs.ErrMalformed)

	negative := EncodeDeltaInt32(nil, []int32{3, -2})
	_, _, err = DecodeDeltaLengthByteArray(got, append(negative, "abc"...))
	require.ErrorIs(t, err, errs.ErrMalformed)

	_, _, err = DecodeDeltaLengthByteArray(got, []byte{0x80})
	require.ErrorIs(t, err, errs.ErrMalformed)
}

// === Delta Byte Array Tests ===

func TestDeltaByteArray_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 2, 200} {
		values := sampleByteArrays(n)
		data := EncodeDeltaByteArray(nil, values)

		got := make([][]byte, n)
		m, consumed, err := DecodeDeltaByteArray(got, data)
		require.NoError(t, err)
		require.Equal(t, n, m)
		require.Equal(t, len(data), consumed)
		require.Equal(t, values, got)
	}
}

func TestDeltaByteArray_SharesPrefixes(t *testing.T) {
	values := [][]byte{[]byte("axis"), []byte("axle"), []byte("babble"), []byte("babyhood")}
	data := EncodeDeltaByteArray(nil, values)

	prefixes := make([]int32, 4)
	_, consumed, err := DecodeDeltaInt32(prefixes, data)
	require.NoError(t, err)
	require.Equal(t, []int32{0, 2, 0, 3}, prefixes)

	suffixes := make([][]byte, 4)
	_, _, err = DecodeDeltaLengthByteArray(suffixes, data[consumed:])
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("axis"), []byte("le"), []byte("babble"), []byte("yhood")}, suffixes)

	got := make([][]byte, 4)
	n, _, err := DecodeDeltaByteArray(got, data)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, values, got)
}

func TestDeltaByteArray_OutputDoesNotAliasInput(t *testing.T) {
	values := [][]byte{[]byte("same"), []byte("same")}
	data := EncodeDeltaByteArray(nil, values)

	got := make([][]byte, 2)
	_, _, err := DecodeDeltaByteArray(got, data)
	require.NoError(t, err)

	clear(data)
	require.Equal(t, values, got)
}

func TestDeltaByteArray_Malformed(t *testing.T) {
	// Second value claims a 9 byte prefix of a 1 byte predecessor.
	data := EncodeDeltaInt32(nil, []int32{0, 9})
	data = EncodeDeltaLengthByteArray(data, [][]byte{[]byte("a"), []byte("b")})

	got := make([][]byte, 2)
	_, _, err := DecodeDeltaByteArray(got, data)
	require.ErrorIs(t, err, errs.ErrMalformed)

	// Two prefix lengths but only one suffix.
	data = EncodeDeltaInt32(nil, []int32{0, 0})
	data = EncodeDeltaLengthByteArray(data, [][]byte{[]byte("a")})
	_, _, err = DecodeDeltaByteArray(got, data)
	require.ErrorIs(t, err, errs.ErrMalformed)
}
