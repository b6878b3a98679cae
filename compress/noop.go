package compress

import (
	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/format"
)

// NoOpCompressor stores pages uncompressed.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates the uncompressed codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress returns data itself, without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself. A positive expectedSize must equal len(data).
func (c NoOpCompressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	if expectedSize > 0 && len(data) != expectedSize {
		return nil, errs.Malformed("compress.NoOpCompressor.Decompress", "have %d bytes, expected %d", len(data), expectedSize)
	}

	return data, nil
}
