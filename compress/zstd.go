package compress

import "github.com/arloliu/colcodec/format"

const zstdDefaultLevel = 3

// ZstdCompressor is the Codec for ZSTD pages.
//
// The default build uses the pure Go klauspost/compress implementation. Building with
// the gozstd tag switches to the cgo libzstd binding; both produce standard frames and
// decode each other's output.
type ZstdCompressor struct {
	cfg codecConfig
}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec, level 3 unless WithLevel says otherwise.
//
// Example:
//
//	codec, err := NewZstdCompressor(WithLevel(9))
//	if err != nil {
//		return err
//	}
//	compressed, err := codec.Compress(page)
func NewZstdCompressor(opts ...CodecOption) (ZstdCompressor, error) {
	cfg, err := newCodecConfig(zstdDefaultLevel, opts...)
	if err != nil {
		return ZstdCompressor{}, err
	}

	return ZstdCompressor{cfg: cfg}, nil
}

func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}

// ZstdCompressBound mirrors ZSTD_COMPRESSBOUND.
func ZstdCompressBound(n int) int {
	const smallLimit = 128 << 10

	margin := 0
	if n < smallLimit {
		margin = (smallLimit - n) >> 11
	}

	return n + n>>8 + margin
}
