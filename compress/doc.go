// Package compress provides the block compressors applied to encoded column pages.
//
// Compression is the second stage of page production: an encoding from the encoding
// package exploits the structure of the values, then a general-purpose compressor from
// this package squeezes the encoded bytes.
//
// # Block Functions
//
// LZ4, Snappy and DEFLATE are implemented in this package and exposed as block
// functions that write into a caller-sized buffer:
//
//	dst := make([]byte, compress.LZ4CompressBound(len(page)))
//	n, err := compress.LZ4CompressBlock(dst, page, 1)
//	...
//	out := make([]byte, len(page))
//	m, err := compress.LZ4DecompressBlock(out, dst[:n])
//
// The output formats are the public block formats, not frame formats:
//   - LZ4: the LZ4 block format (token, literals, 16-bit offset, match length)
//   - Snappy: a varint decoded length followed by literal and copy tags
//   - DEFLATE: a raw RFC 1951 stream of stored, fixed-Huffman or dynamic-Huffman blocks
//
// GzipCompress and GzipDecompress wrap a DEFLATE stream in an RFC 1952 member, which
// is what a GZIP page holds.
//
// # Codecs
//
// Every compression type of format.CompressionTypes has a Codec:
//
//	codec, err := compress.CreateCodec(format.CompressionSnappy, compress.DefaultLevel)
//	compressed, err := codec.Compress(page)
//	original, err := codec.Decompress(compressed, len(page))
//
// Zstd and S2 come from klauspost/compress. Building with the gozstd tag switches Zstd
// to the cgo libzstd binding from valyala/gozstd.
//
// The codec set is closed: CreateCodec and GetCodec know every type and there is no
// registration API.
//
// # Levels
//
//   - LZ4: 1 is the fast single-table matcher, 2 and above the two-table matcher
//   - DEFLATE and gzip: 0 stores, 1-9 trade speed for ratio, default 6
//   - Zstd: the usual zstd levels, default 3
//   - S2: 1 default, 2 better, 3 best
//   - Snappy and None have no levels
//
// # Errors
//
// Compressors fail only when the destination is too small (errs.ErrCapacity); the
// CompressBound functions give sizes that always suffice. Decoders report any
// inconsistency in their input as errs.ErrMalformed and never read or write outside
// the buffers they are given. LZ4, DEFLATE and gzip decoders report a destination too
// small for a valid stream as errs.ErrCapacity, which Codec.Decompress uses to grow its
// buffer when the decoded size is unknown.
//
// # Thread Safety
//
// All functions and codecs are safe for concurrent use. Match tables, hash chains and
// zstd encoders are taken from pools for the duration of one call and never shared.
package compress
