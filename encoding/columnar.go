package encoding

// ColumnarEncoder is implemented by the streaming encoders in this package.
type ColumnarEncoder[T comparable] interface {
	// Bytes returns the encoded byte slice.
	// The returned slice is valid until the next call to Write, WriteSlice, Flush or Reset.
	// The caller should not modify the returned slice.
	//
	// Encoders that buffer values internally (RLE, delta) only include them after Flush.
	Bytes() []byte

	// Len returns the number of values written.
	Len() int

	// Size returns the number of encoded bytes produced so far.
	Size() int

	// Reset discards the encoded output and pending values so the encoder can start a
	// new stream with the same parameters.
	Reset()

	// Finish returns buffer resources to the pool.
	//
	// After calling Finish(), the encoder is no longer usable. Copy the result of Bytes
	// before calling it:
	//
	//	enc, _ := NewRLEEncoder(3)
	//	defer enc.Finish()
	//
	//	enc.WriteSlice(levels)
	//	enc.Flush()
	//	page = append(page, enc.Bytes()...)
	Finish()

	// Write appends a single value.
	Write(data T)

	// WriteSlice appends a slice of values.
	//
	// This method is optimized for bulk writes. For single writes, use Write.
	WriteSlice(values []T)
}

// BatchDecoder is implemented by the streaming decoders in this package.
type BatchDecoder[T any] interface {
	// GetBatch fills dst and returns how many values were produced. A short count
	// means the stream ended or failed; Err tells the two apart.
	GetBatch(dst []T) int

	// Skip advances past up to n values and returns how many were skipped.
	Skip(n int) int

	// Err returns the first error encountered while decoding.
	Err() error
}

var (
	_ BatchDecoder[uint32] = (*RLEDecoder)(nil)
	_ BatchDecoder[int32]  = (*DeltaInt32Decoder)(nil)
	_ BatchDecoder[int64]  = (*DeltaInt64Decoder)(nil)
)

// growBuffer makes room for requiredBytes more bytes in buf.
//
// Small buffers grow by 256 bytes; buffers past 4KiB grow by a quarter of their
// capacity, or by requiredBytes if that is larger.
func growBuffer(buf []byte, requiredBytes int) []byte {
	available := cap(buf) - len(buf)
	if available >= requiredBytes {
		return buf
	}

	growBy := 256
	if cap(buf) > 4096 {
		growBy = cap(buf) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(buf), len(buf)+growBy)
	copy(newBuf, buf)

	return newBuf
}
