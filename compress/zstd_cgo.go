//go:build gozstd

package compress

import (
	"github.com/valyala/gozstd"

	"github.com/arloliu/colcodec/errs"
)

// Compress compresses data into a single zstd frame using libzstd.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	level := c.cfg.level
	if level <= 0 {
		level = zstdDefaultLevel
	}

	return gozstd.CompressLevel(make([]byte, 0, ZstdCompressBound(len(data))), data, level), nil
}

// Decompress decodes zstd frames using libzstd.
func (c ZstdCompressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	const op = "compress.ZstdCompressor.Decompress"

	var dst []byte
	if expectedSize > 0 {
		dst = make([]byte, 0, expectedSize)
	}
	out, err := gozstd.Decompress(dst, data)
	if err != nil {
		return nil, errs.Wrap(errs.KindMalformed, op, err)
	}
	if expectedSize > 0 && len(out) != expectedSize {
		return nil, errs.Malformed(op, "decoded %d bytes, expected %d", len(out), expectedSize)
	}
	if expectedSize <= 0 && len(out) > c.cfg.maxDecodedSize {
		return nil, errs.Malformed(op, "decoded %d bytes, limit is %d", len(out), c.cfg.maxDecodedSize)
	}

	return out, nil
}
