//go:build !gozstd

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/colcodec/errs"
)

// zstdDecoderPool pools zstd decoders; a warmed-up decoder decodes without allocating.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPools holds one encoder pool per klauspost speed tier, indexed by
// zstd.EncoderLevel.
var zstdEncoderPools [zstd.SpeedBestCompression + 1]sync.Pool

func init() {
	for i := range zstdEncoderPools {
		level := zstd.EncoderLevel(i)
		zstdEncoderPools[i].New = func() any {
			encoder, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(level),
				zstd.WithEncoderCRC(false),
				zstd.WithEncoderConcurrency(1),
			)
			if err != nil {
				panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
			}

			return encoder
		}
	}
}

func zstdEncoderLevel(level int) zstd.EncoderLevel {
	if level <= 0 {
		level = zstdDefaultLevel
	}

	return zstd.EncoderLevelFromZstd(level)
}

// Compress compresses data into a single zstd frame.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	p := &zstdEncoderPools[zstdEncoderLevel(c.cfg.level)]
	encoder, _ := p.Get().(*zstd.Encoder)
	defer p.Put(encoder)

	return encoder.EncodeAll(data, make([]byte, 0, ZstdCompressBound(len(data)))), nil
}

// Decompress decodes zstd frames. With expectedSize the output is allocated once;
// otherwise the frame header's content size, when present, sizes it.
func (c ZstdCompressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	const op = "compress.ZstdCompressor.Decompress"

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	var dst []byte
	if expectedSize > 0 {
		dst = make([]byte, 0, expectedSize)
	}
	out, err := decoder.DecodeAll(data, dst)
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
