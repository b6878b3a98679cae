package compress

import (
	"errors"

	"go.uber.org/zap"

	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/format"
	"github.com/arloliu/colcodec/internal/logger"
	"github.com/arloliu/colcodec/internal/options"
)

// Compressor compresses a whole page payload.
type Compressor interface {
	// Compress compresses data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller (the no-op codec
	//     returns data itself)
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
type Decompressor interface {
	// Decompress decodes data produced by the matching Compressor.
	//
	// When expectedSize is positive the output is allocated once with exactly that
	// size and a result of any other length is an errs.ErrMalformed error. When it is
	// zero or negative the codec sizes the output itself: from the stream header where
	// the format records it, otherwise by growing a buffer until the block fits.
	Decompress(data []byte, expectedSize int) ([]byte, error)
}

// Codec combines both directions of one compression type.
//
// Thread Safety: every built-in Codec is a value type without mutable state and is
// safe for concurrent use. Match tables and other scratch are acquired per call.
type Codec interface {
	Compressor
	Decompressor

	// Type returns the compression type the codec implements.
	Type() format.CompressionType
}

const (
	// DefaultMaxDecodedSize caps adaptive output growth when the decoded size is unknown.
	DefaultMaxDecodedSize = 128 * 1024 * 1024

	// DefaultLevel asks a codec for its own default level.
	DefaultLevel = -1
)

type codecConfig struct {
	level          int
	maxDecodedSize int
}

// CodecOption configures a codec constructor.
type CodecOption = options.Option[*codecConfig]

// WithLevel sets the compression level. DefaultLevel keeps the codec default; the
// valid range is codec specific and out-of-range values are clamped by the codec.
func WithLevel(level int) CodecOption {
	return options.NoError(func(c *codecConfig) {
		if level != DefaultLevel {
			c.level = level
		}
	})
}

// WithMaxDecodedSize bounds the output buffer used when Decompress is called without
// an expected size.
func WithMaxDecodedSize(n int) CodecOption {
	return options.New(func(c *codecConfig) error {
		if n <= 0 {
			return errs.InvalidArgument("compress.WithMaxDecodedSize", "size must be positive, got %d", n)
		}
		c.maxDecodedSize = n

		return nil
	})
}

func newCodecConfig(defaultLevel int, opts ...CodecOption) (codecConfig, error) {
	cfg := &codecConfig{level: defaultLevel, maxDecodedSize: DefaultMaxDecodedSize}
	if err := options.Apply(cfg, opts...); err != nil {
		return codecConfig{}, err
	}

	return *cfg, nil
}

type blockDecoder func(dst, src []byte) (int, error)

// decompressBlock runs a block decoder that cannot tell its output size up front.
//
// With a known size it decodes once into an exact buffer. Otherwise it starts at four
// times the input and doubles on errs.ErrCapacity until maxSize is reached.
func decompressBlock(op string, data []byte, expectedSize, maxSize int, decode blockDecoder) ([]byte, error) {
	if expectedSize > 0 {
		dst := make([]byte, expectedSize)
		n, err := decode(dst, data)
		if err != nil {
			return nil, err
		}
		if n != expectedSize {
			return nil, errs.Malformed(op, "decoded %d bytes, expected %d", n, expectedSize)
		}

		return dst, nil
	}

	size := max(len(data)*4, 64)
	for {
		size = min(size, maxSize)
		dst := make([]byte, size)
		n, err := decode(dst, data)
		if err == nil {
			return dst[:n], nil
		}
		if !errors.Is(err, errs.ErrCapacity) || size >= maxSize {
			return nil, err
		}
		size *= 2
		logger.Named("compress").Debug("growing decode buffer",
			zap.String("op", op), zap.Int("size", size), zap.Int("input", len(data)))
	}
}

// CompressionStats describes one compression call, for monitoring and benchmarks.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of input data before compression
	OriginalSize int64

	// CompressedSize is the size of data after compression
	CompressedSize int64

	// CompressionTimeNs is the time taken to compress the data
	CompressionTimeNs int64

	// DecompressionTimeNs is the time taken to decompress the data (if applicable)
	DecompressionTimeNs int64
}

// CompressionRatio returns compressed size / original size, or 0 for empty input.
//
// Values less than 1.0 indicate successful compression.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec creates a Codec for compressionType at the given level. DefaultLevel
// selects the codec default.
//
// Parameters:
//   - compressionType: one of the types listed by format.CompressionTypes
//   - level: compression level, ignored by codecs without levels
//
// Returns:
//   - Codec: codec instance for the specified type
//   - error: errs.ErrInvalidArgument for an unknown type
func CreateCodec(compressionType format.CompressionType, level int, opts ...CodecOption) (Codec, error) {
	opts = append([]CodecOption{WithLevel(level)}, opts...)

	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionSnappy:
		return NewSnappyCompressor(opts...)
	case format.CompressionGzip:
		return NewGzipCompressor(opts...)
	case format.CompressionZstd:
		return NewZstdCompressor(opts...)
	case format.CompressionLZ4Raw:
		return NewLZ4Compressor(opts...)
	case format.CompressionDeflate:
		return NewDeflateCompressor(opts...)
	case format.CompressionS2:
		return NewS2Compressor(opts...)
	default:
		return nil, errs.InvalidArgument("compress.CreateCodec", "unsupported compression type %d", uint8(compressionType))
	}
}

var builtinCodecs = func() map[format.CompressionType]Codec {
	m := make(map[format.CompressionType]Codec, len(format.CompressionTypes()))
	for _, t := range format.CompressionTypes() {
		c, err := CreateCodec(t, DefaultLevel)
		if err != nil {
			panic(err)
		}
		m[t] = c
	}

	return m
}()

// GetCodec returns the shared default-level Codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, errs.InvalidArgument("compress.GetCodec", "unsupported compression type %d", uint8(compressionType))
}

// CompressBound returns an upper bound of the compressed size of n bytes under
// compressionType, or -1 for an unknown type.
func CompressBound(compressionType format.CompressionType, n int) int {
	switch compressionType {
	case format.CompressionNone:
		return n
	case format.CompressionSnappy:
		return SnappyCompressBound(n)
	case format.CompressionGzip:
		return GzipCompressBound(n)
	case format.CompressionZstd:
		return ZstdCompressBound(n)
	case format.CompressionLZ4Raw:
		return LZ4CompressBound(n)
	case format.CompressionDeflate:
		return DeflateCompressBound(n)
	case format.CompressionS2:
		return S2CompressBound(n)
	default:
		return -1
	}
}
