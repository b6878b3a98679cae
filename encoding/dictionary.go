package encoding

import (
	"bytes"
	"math"
	"math/bits"

	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/internal/collision"
	"github.com/arloliu/colcodec/internal/hash"
	"github.com/arloliu/colcodec/internal/pool"
	"github.com/arloliu/colcodec/simd"
)

// DictionaryValue is the set of fixed-width types with a numeric dictionary builder.
type DictionaryValue interface {
	int32 | int64 | float32 | float64
}

// Dictionary builds a dictionary of distinct fixed-width values and the index of each
// value written.
//
// Floating-point values are keyed by bit pattern, so NaN payloads, +0 and -0 are kept
// apart and every value round-trips bit for bit.
type Dictionary[T DictionaryValue] struct {
	lookup  map[uint64]uint32
	values  []T
	indices []uint32
	key     func(T) uint64
	plain   func([]byte, []T) []byte
}

// NewInt32Dictionary creates a dictionary builder for int32 values.
func NewInt32Dictionary() *Dictionary[int32] {
	return newDictionary(func(v int32) uint64 { return uint64(uint32(v)) }, EncodePlainInt32) //nolint:gosec
}

// NewInt64Dictionary creates a dictionary builder for int64 values.
func NewInt64Dictionary() *Dictionary[int64] {
	return newDictionary(func(v int64) uint64 { return uint64(v) }, EncodePlainInt64) //nolint:gosec
}

// NewFloatDictionary creates a dictionary builder for float32 values.
func NewFloatDictionary() *Dictionary[float32] {
	return newDictionary(func(v float32) uint64 { return uint64(math.Float32bits(v)) }, EncodePlainFloat)
}

// NewDoubleDictionary creates a dictionary builder for float64 values.
func NewDoubleDictionary() *Dictionary[float64] {
	return newDictionary(math.Float64bits, EncodePlainDouble)
}

func newDictionary[T DictionaryValue](key func(T) uint64, plain func([]byte, []T) []byte) *Dictionary[T] {
	return &Dictionary[T]{
		lookup: make(map[uint64]uint32),
		key:    key,
		plain:  plain,
	}
}

// Put records v and returns its dictionary index.
func (d *Dictionary[T]) Put(v T) uint32 {
	k := d.key(v)
	idx, ok := d.lookup[k]
	if !ok {
		idx = uint32(len(d.values)) //nolint:gosec
		d.lookup[k] = idx
		d.values = append(d.values, v)
	}
	d.indices = append(d.indices, idx)

	return idx
}

// PutSlice records every value in values.
func (d *Dictionary[T]) PutSlice(values []T) {
	for _, v := range values {
		d.Put(v)
	}
}

// Len returns the number of distinct values.
func (d *Dictionary[T]) Len() int {
	return len(d.values)
}

// Values returns the distinct values in index order.
func (d *Dictionary[T]) Values() []T {
	return d.values
}

// Indices returns the index of every value recorded.
func (d *Dictionary[T]) Indices() []uint32 {
	return d.indices
}

// AppendDictionaryPage appends the PLAIN encoding of the distinct values.
func (d *Dictionary[T]) AppendDictionaryPage(dst []byte) []byte {
	return d.plain(dst, d.values)
}

// AppendIndices appends the RLE_DICTIONARY encoding of the recorded indices.
func (d *Dictionary[T]) AppendIndices(dst []byte) ([]byte, error) {
	return EncodeDictionaryIndices(dst, d.indices, IndexWidth(len(d.values)))
}

// Reset empties the dictionary.
func (d *Dictionary[T]) Reset() {
	clear(d.lookup)
	d.values = d.values[:0]
	d.indices = d.indices[:0]
}

// ByteArrayDictionary builds a dictionary of distinct byte strings.
//
// Entries are located by their xxHash64; colliding hashes fall back to comparing
// bytes. Added values are copied, so callers may reuse their buffers.
type ByteArrayDictionary struct {
	tracker *collision.Tracker
	data    []byte
	offsets []int
	indices []uint32
}

// NewByteArrayDictionary creates an empty byte array dictionary builder.
func NewByteArrayDictionary() *ByteArrayDictionary {
	return &ByteArrayDictionary{
		tracker: collision.NewTracker(),
		offsets: []int{0},
	}
}

// Put records v and returns its dictionary index.
func (d *ByteArrayDictionary) Put(v []byte) uint32 {
	h := hash.Bytes(v)
	idx, ok := d.tracker.Find(h, func(i int) bool { return bytes.Equal(d.Value(i), v) })
	if !ok {
		idx = d.tracker.Add(h)
		d.data = append(d.data, v...)
		d.offsets = append(d.offsets, len(d.data))
	}
	d.indices = append(d.indices, uint32(idx)) //nolint:gosec

	return uint32(idx) //nolint:gosec
}

// PutSlice records every value in values.
func (d *ByteArrayDictionary) PutSlice(values [][]byte) {
	for _, v := range values {
		d.Put(v)
	}
}

// Len returns the number of distinct values.
func (d *ByteArrayDictionary) Len() int {
	return len(d.offsets) - 1
}

// Value returns the distinct value at index i.
func (d *ByteArrayDictionary) Value(i int) []byte {
	return d.data[d.offsets[i]:d.offsets[i+1]:d.offsets[i+1]]
}

// Values returns the distinct values in index order, aliasing the builder's storage.
func (d *ByteArrayDictionary) Values() [][]byte {
	out := make([][]byte, d.Len())
	for i := range out {
		out[i] = d.Value(i)
	}

	return out
}

// Indices returns the index of every value recorded.
func (d *ByteArrayDictionary) Indices() []uint32 {
	return d.indices
}

// HasCollision reports whether two distinct values produced the same hash.
func (d *ByteArrayDictionary) HasCollision() bool {
	return d.tracker.HasCollision()
}

// AppendDictionaryPage appends the PLAIN encoding of the distinct values.
func (d *ByteArrayDictionary) AppendDictionaryPage(dst []byte) []byte {
	return EncodePlainByteArrays(dst, d.Values())
}

// AppendIndices appends the RLE_DICTIONARY encoding of the recorded indices.
func (d *ByteArrayDictionary) AppendIndices(dst []byte) ([]byte, error) {
	return EncodeDictionaryIndices(dst, d.indices, IndexWidth(d.Len()))
}

// Reset empties the dictionary.
func (d *ByteArrayDictionary) Reset() {
	d.tracker.Reset()
	d.data = d.data[:0]
	d.offsets = d.offsets[:1]
	d.indices = d.indices[:0]
}

// IndexWidth returns the bit width needed for indices into a dictionary of n entries.
func IndexWidth(n int) int {
	if n <= 1 {
		return 0
	}

	return bits.Len(uint(n - 1))
}

// EncodeDictionaryIndices appends a one-byte bit width followed by the RLE-hybrid
// encoding of indices.
func EncodeDictionaryIndices(dst []byte, indices []uint32, width int) ([]byte, error) {
	if width < 0 || width > 32 {
		return dst, errs.InvalidArgument("dictionary.encode_indices", "bit width %d outside 0..32", width)
	}

	return EncodeRLE(append(dst, byte(width)), indices, width)
}

// DecodeDictionaryIndices decodes up to len(dst) indices and returns the count.
func DecodeDictionaryIndices(dst []uint32, src []byte) (int, error) {
	const op = "dictionary.decode_indices"

	if len(src) == 0 {
		if len(dst) == 0 {
			return 0, nil
		}
		return 0, errs.Malformed(op, "missing bit width")
	}
	width := int(src[0])
	if width > 32 {
		return 0, errs.Malformed(op, "bit width %d exceeds 32", width)
	}

	return DecodeRLE(dst, src[1:], width)
}

func decodeDictionary[T any](op string, dst, dict []T, src []byte, gather func(dst, dict []T, indices []uint32) error) (int, error) {
	indices, release := pool.Uint32s.Get(len(dst))
	defer release()

	n, err := DecodeDictionaryIndices(indices, src)
	if err != nil {
		return 0, err
	}
	if err := gather(dst, dict, indices[:n]); err != nil {
		return 0, errs.Wrap(errs.KindOf(err), op, err)
	}

	return n, nil
}

// DecodeDictionaryInt32 decodes indices from src and gathers the referenced dictionary
// entries into dst. An index outside dict is a malformed-input error.
func DecodeDictionaryInt32(dst, dict []int32, src []byte) (int, error) {
	return decodeDictionary("dictionary.decode_int32", dst, dict, src, simd.GatherInt32)
}

// DecodeDictionaryInt64 is the int64 form of DecodeDictionaryInt32.
func DecodeDictionaryInt64(dst, dict []int64, src []byte) (int, error) {
	return decodeDictionary("dictionary.decode_int64", dst, dict, src, simd.GatherInt64)
}

// DecodeDictionaryFloat is the float32 form of DecodeDictionaryInt32.
func DecodeDictionaryFloat(dst, dict []float32, src []byte) (int, error) {
	return decodeDictionary("dictionary.decode_float", dst, dict, src, simd.GatherFloat32)
}

// DecodeDictionaryDouble is the float64 form of DecodeDictionaryInt32.
func DecodeDictionaryDouble(dst, dict []float64, src []byte) (int, error) {
	return decodeDictionary("dictionary.decode_double", dst, dict, src, simd.GatherFloat64)
}

// DecodeDictionaryByteArrays is the byte array form of DecodeDictionaryInt32. The
// decoded slices alias dict.
func DecodeDictionaryByteArrays(dst, dict [][]byte, src []byte) (int, error) {
	return decodeDictionary("dictionary.decode_byte_arrays", dst, dict, src, gatherByteArrays)
}

func gatherByteArrays(dst, dict [][]byte, indices []uint32) error {
	for i, ix := range indices {
		if int(ix) >= len(dict) {
			return errs.Malformed("dictionary.gather", "index %d at position %d outside dictionary of %d", ix, i, len(dict))
		}
		dst[i] = dict[ix]
	}

	return nil
}
