package compress

import (
	"github.com/klauspost/compress/s2"

	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/format"
)

const (
	s2DefaultLevel = 1
	s2BetterLevel  = 2
	s2BestLevel    = 3
)

// S2Compressor is the Codec for S2 blocks, the Snappy extension from klauspost/compress.
// Level 1 is the default encoder, 2 the better encoder and 3 or more the best encoder.
type S2Compressor struct {
	cfg codecConfig
}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 codec.
func NewS2Compressor(opts ...CodecOption) (S2Compressor, error) {
	cfg, err := newCodecConfig(s2DefaultLevel, opts...)
	if err != nil {
		return S2Compressor{}, err
	}

	return S2Compressor{cfg: cfg}, nil
}

func (c S2Compressor) Type() format.CompressionType {
	return format.CompressionS2
}

// S2CompressBound returns the largest S2 block for n bytes, or -1 when n is too large
// for the format.
func S2CompressBound(n int) int {
	return s2.MaxEncodedLen(n)
}

func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	switch {
	case c.cfg.level >= s2BestLevel:
		return s2.EncodeBest(nil, data), nil
	case c.cfg.level == s2BetterLevel:
		return s2.EncodeBetter(nil, data), nil
	default:
		return s2.Encode(nil, data), nil
	}
}

// Decompress decodes an S2 block, sized from its header.
func (c S2Compressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	const op = "compress.S2Compressor.Decompress"

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, errs.Wrap(errs.KindMalformed, op, err)
	}
	if expectedSize > 0 && n != expectedSize {
		return nil, errs.Malformed(op, "header declares %d bytes, expected %d", n, expectedSize)
	}
	if expectedSize <= 0 && n > c.cfg.maxDecodedSize {
		return nil, errs.Malformed(op, "header declares %d bytes, limit is %d", n, c.cfg.maxDecodedSize)
	}

	out, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, errs.Wrap(errs.KindMalformed, op, err)
	}

	return out, nil
}
