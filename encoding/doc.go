// Package encoding implements the column value encodings of the columnar file format.
//
// Every codec here is synchronous and works on caller-owned buffers: encoders append to
// a destination slice or a pooled buffer, decoders read from a byte slice and fill a
// caller-provided destination. No codec retains references to its inputs after a call
// returns, except where a decoder documents that its output aliases the source.
//
// # Encodings
//
// RLE/bit-packing hybrid (RLEEncoder, RLEDecoder, EncodeLevels, DecodeLevels):
//
//	run    := header payload
//	header := uvarint(count<<1)        repeat run, payload = value in ceil(width/8) LE bytes
//	        | uvarint(groups<<1 | 1)   packed run, payload = groups*width bytes
//
// Used for definition and repetition levels, dictionary indices and RLE booleans.
// Levels take a dedicated path (DecodeLevels) that parses headers inline and fills
// and narrows through the simd package.
//
// Delta binary-packed (DeltaInt32Encoder, DeltaInt64Encoder and their decoders):
//
//	header := uvarint(128) uvarint(4) uvarint(total) zigzag(first)
//	block  := zigzag(minDelta) width[4] miniblock...
//
// Deltas and residuals use two's-complement wraparound in the value type, so the full
// int32 and int64 ranges round-trip. Running values are rebuilt with the dispatch
// prefix-sum kernels.
//
// Byte stream split (EncodeByteStreamSplitFloat32 and friends):
//
//	values:  [a0 a1 a2 a3] [b0 b1 b2 b3] [c0 c1 c2 c3]
//	streams: [a0 b0 c0] [a1 b1 c1] [a2 b2 c2] [a3 b3 c3]
//
// Plain (EncodePlainInt32, EncodePlainByteArrays, ...): little-endian fixed-width values,
// bit-packed booleans, 4-byte length-prefixed byte arrays and unprefixed fixed-length
// byte arrays.
//
// Dictionary (Dictionary, ByteArrayDictionary, DecodeDictionaryInt32, ...): distinct
// values go to a PLAIN dictionary page; the data page holds a one-byte index width
// followed by RLE-hybrid indices. Decoding gathers through the simd package and rejects
// indices outside the dictionary.
//
// Delta length byte array and delta byte array: lengths (and shared prefix lengths) as
// delta binary-packed int32 streams followed by the concatenated bytes.
//
// # Streaming Interfaces
//
// The stateful encoders implement ColumnarEncoder[T] and the stateful decoders
// implement BatchDecoder[T]:
//
//	enc, _ := encoding.NewRLEEncoder(3)
//	defer enc.Finish()
//
//	enc.WriteSlice(levels)
//	enc.Flush()
//	page = append(page, enc.Bytes()...)
//
//	dec, _ := encoding.NewRLEDecoder(page, 3)
//	n := dec.GetBatch(out)
//	if err := dec.Err(); err != nil {
//	    return err
//	}
//
// Most callers only need the one-shot helpers: EncodeRLE, EncodeDeltaInt64,
// DecodeDeltaInt64 and so on.
//
// # Errors
//
// Failures carry an errs.Kind: errs.ErrInvalidArgument for unusable parameters (a bit
// width outside 0..32, a level that does not fit its width), errs.ErrCapacity when a
// destination is too small, and errs.ErrMalformed for anything wrong with encoded
// input. Running out of input at a run boundary ends a stream and is not an error.
//
// # Thread Safety
//
// Encoders and decoders are not thread-safe. Use one per goroutine. The one-shot
// functions are safe to call concurrently on disjoint buffers.
package encoding
