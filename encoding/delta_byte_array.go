package encoding

import (
	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/internal/pool"
)

// EncodeDeltaLengthByteArray appends the DELTA_LENGTH_BYTE_ARRAY encoding of values:
// the delta binary-packed lengths followed by all value bytes concatenated.
func EncodeDeltaLengthByteArray(dst []byte, values [][]byte) []byte {
	enc := NewDeltaInt32Encoder()
	defer enc.Finish()

	total := 0
	for _, v := range values {
		enc.Write(int32(len(v))) //nolint:gosec
		total += len(v)
	}
	enc.Flush()

	dst = growBuffer(dst, enc.Size()+total)
	dst = append(dst, enc.Bytes()...)
	for _, v := range values {
		dst = append(dst, v...)
	}

	return dst
}

// DecodeDeltaLengthByteArray decodes up to len(dst) values. The decoded slices alias
// src. It returns the number of values and the bytes consumed.
func DecodeDeltaLengthByteArray(dst [][]byte, src []byte) (int, int, error) {
	const op = "delta_length_byte_array.decode"

	dec, err := NewDeltaInt32Decoder(src)
	if err != nil {
		return 0, 0, err
	}

	n := min(dec.Total(), len(dst))
	lengths, release := pool.Int32s.Get(n)
	defer release()

	if got := dec.GetBatch(lengths); got < n {
		if dec.Err() != nil {
			return 0, 0, dec.Err()
		}
		return 0, 0, errs.Malformed(op, "decoded %d of %d lengths", got, n)
	}
	// The value bytes start after the last length block.
	dec.Skip(dec.Remaining())
	if dec.Err() != nil {
		return 0, 0, dec.Err()
	}

	pos := dec.Offset()
	for i, l := range lengths {
		if l < 0 || int(l) > len(src)-pos {
			return i, pos, errs.Malformed(op, "value %d declares %d bytes, %d remain", i, l, len(src)-pos)
		}
		end := pos + int(l)
		dst[i] = src[pos:end:end]
		pos = end
	}

	return n, pos, nil
}

// EncodeDeltaByteArray appends the DELTA_BYTE_ARRAY encoding of values: the delta
// binary-packed lengths of the prefix each value shares with its predecessor, followed
// by the remaining suffixes in DELTA_LENGTH_BYTE_ARRAY form.
func EncodeDeltaByteArray(dst []byte, values [][]byte) []byte {
	enc := NewDeltaInt32Encoder()
	defer enc.Finish()

	suffixes := make([][]byte, len(values))
	var prev []byte
	for i, v := range values {
		p := commonPrefix(prev, v)
		enc.Write(int32(p)) //nolint:gosec
		suffixes[i] = v[p:]
		prev = v
	}
	enc.Flush()

	dst = append(dst, enc.Bytes()...)

	return EncodeDeltaLengthByteArray(dst, suffixes)
}

func commonPrefix(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}

	return n
}

// DecodeDeltaByteArray decodes up to len(dst) values and returns the count and bytes
// consumed. Each decoded value is a fresh slice; none alias src.
func DecodeDeltaByteArray(dst [][]byte, src []byte) (int, int, error) {
	const op = "delta_byte_array.decode"

	dec, err := NewDeltaInt32Decoder(src)
	if err != nil {
		return 0, 0, err
	}

	n := min(dec.Total(), len(dst))
	prefixes, release := pool.Int32s.Get(n)
	defer release()

	if got := dec.GetBatch(prefixes); got < n {
		if dec.Err() != nil {
			return 0, 0, dec.Err()
		}
		return 0, 0, errs.Malformed(op, "decoded %d of %d prefix lengths", got, n)
	}
	dec.Skip(dec.Remaining())
	if dec.Err() != nil {
		return 0, 0, dec.Err()
	}
	prefixTotal := dec.Total()
	start := dec.Offset()

	suffixes := make([][]byte, n)
	got, consumed, err := DecodeDeltaLengthByteArray(suffixes, src[start:])
	if err != nil {
		return 0, 0, err
	}
	if got < n {
		return 0, 0, errs.Malformed(op, "%d prefix lengths but only %d suffixes", prefixTotal, got)
	}

	size := 0
	prevLen := 0
	for i, p := range prefixes {
		if p < 0 || int(p) > prevLen {
			return 0, 0, errs.Malformed(op, "value %d reuses %d bytes of a %d byte predecessor", i, p, prevLen)
		}
		prevLen = int(p) + len(suffixes[i])
		size += prevLen
	}

	backing := make([]byte, 0, size)
	var prev []byte
	for i, p := range prefixes {
		begin := len(backing)
		backing = append(backing, prev[:p]...)
		backing = append(backing, suffixes[i]...)
		dst[i] = backing[begin:len(backing):len(backing)]
		prev = dst[i]
	}

	return n, start + consumed, nil
}
