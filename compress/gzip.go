package compress

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/arloliu/colcodec/errs"
	"github.com/arloliu/colcodec/format"
)

const (
	gzipID1          = 0x1f
	gzipID2          = 0x8b
	gzipCMDeflate    = 8
	gzipHeaderSize   = 10
	gzipTrailerSize  = 8
	gzipOSUnknown    = 255
	gzipFlagHCRC     = 1 << 1
	gzipFlagExtra    = 1 << 2
	gzipFlagName     = 1 << 3
	gzipFlagComment  = 1 << 4
	gzipFlagReserved = 0xe0
)

// GzipCompressBound returns the largest gzip member GzipCompress can produce for n bytes.
func GzipCompressBound(n int) int {
	return DeflateCompressBound(n) + gzipHeaderSize + gzipTrailerSize
}

// GzipCompress writes src into dst as a single gzip member (RFC 1952): a minimal
// header, a raw DEFLATE stream at level, then the CRC-32 and size trailer.
func GzipCompress(dst, src []byte, level int) (int, error) {
	const op = "compress.GzipCompress"

	if len(dst) < gzipHeaderSize+gzipTrailerSize {
		return 0, errs.Capacity(op, "need at least %d bytes, have %d", gzipHeaderSize+gzipTrailerSize, len(dst))
	}

	var xfl byte
	switch {
	case level >= deflateMaxLevel:
		xfl = 2
	case level == 1:
		xfl = 4
	}
	copy(dst, []byte{gzipID1, gzipID2, gzipCMDeflate, 0, 0, 0, 0, 0, xfl, gzipOSUnknown})

	n, err := DeflateCompressBlock(dst[gzipHeaderSize:len(dst)-gzipTrailerSize], src, level)
	if err != nil {
		return 0, errs.Wrap(errs.KindCapacity, op, err)
	}
	d := gzipHeaderSize + n
	binary.LittleEndian.PutUint32(dst[d:], crc32.ChecksumIEEE(src))
	binary.LittleEndian.PutUint32(dst[d+4:], uint32(len(src)))

	return d + gzipTrailerSize, nil
}

// GzipDecompress decodes one or more concatenated gzip members from src into dst and
// returns the number of bytes produced. Each member's CRC-32 and size are verified.
func GzipDecompress(dst, src []byte) (int, error) {
	const op = "compress.GzipDecompress"

	if len(src) == 0 {
		return 0, errs.Malformed(op, "empty input")
	}

	d := 0
	for len(src) > 0 {
		hdr, err := gzipHeaderLen(src)
		if err != nil {
			return 0, err
		}

		n, consumed, err := inflate(dst[d:], src[hdr:])
		if err != nil {
			return 0, err
		}
		s := hdr + consumed
		if len(src)-s < gzipTrailerSize {
			return 0, errs.Malformed(op, "truncated trailer")
		}

		out := dst[d : d+n]
		if sum := binary.LittleEndian.Uint32(src[s:]); sum != crc32.ChecksumIEEE(out) {
			return 0, errs.Malformed(op, "checksum mismatch")
		}
		if size := binary.LittleEndian.Uint32(src[s+4:]); size != uint32(n) {
			return 0, errs.Malformed(op, "trailer size %d, decoded %d", size, n)
		}

		d += n
		src = src[s+gzipTrailerSize:]
	}

	return d, nil
}

// gzipHeaderLen validates a member header and returns its length.
func gzipHeaderLen(src []byte) (int, error) {
	const op = "compress.GzipDecompress"

	if len(src) < gzipHeaderSize {
		return 0, errs.Malformed(op, "truncated header")
	}
	if src[0] != gzipID1 || src[1] != gzipID2 {
		return 0, errs.Malformed(op, "bad magic %#x %#x", src[0], src[1])
	}
	if src[2] != gzipCMDeflate {
		return 0, errs.Malformed(op, "unsupported compression method %d", src[2])
	}
	flags := src[3]
	if flags&gzipFlagReserved != 0 {
		return 0, errs.Malformed(op, "reserved flags set: %#x", flags)
	}

	s := gzipHeaderSize
	if flags&gzipFlagExtra != 0 {
		if len(src)-s < 2 {
			return 0, errs.Malformed(op, "truncated extra field")
		}
		xlen := int(binary.LittleEndian.Uint16(src[s:]))
		s += 2
		if len(src)-s < xlen {
			return 0, errs.Malformed(op, "truncated extra field")
		}
		s += xlen
	}
	for _, f := range []byte{gzipFlagName, gzipFlagComment} {
		if flags&f == 0 {
			continue
		}
		for {
			if s >= len(src) {
				return 0, errs.Malformed(op, "unterminated header string")
			}
			s++
			if src[s-1] == 0 {
				break
			}
		}
	}
	if flags&gzipFlagHCRC != 0 {
		if len(src)-s < 2 {
			return 0, errs.Malformed(op, "truncated header checksum")
		}
		if uint16(crc32.ChecksumIEEE(src[:s])) != binary.LittleEndian.Uint16(src[s:]) {
			return 0, errs.Malformed(op, "header checksum mismatch")
		}
		s += 2
	}

	return s, nil
}

// GzipCompressor is the Codec for GZIP pages.
type GzipCompressor struct {
	cfg codecConfig
}

var _ Codec = (*GzipCompressor)(nil)

// NewGzipCompressor creates a gzip codec, level 6 unless WithLevel says otherwise.
func NewGzipCompressor(opts ...CodecOption) (GzipCompressor, error) {
	cfg, err := newCodecConfig(deflateDefaultLevel, opts...)
	if err != nil {
		return GzipCompressor{}, err
	}

	return GzipCompressor{cfg: cfg}, nil
}

func (c GzipCompressor) Type() format.CompressionType {
	return format.CompressionGzip
}

func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, GzipCompressBound(len(data)))
	n, err := GzipCompress(dst, data, c.cfg.level)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decodes gzip members. Without expectedSize the output starts at the size
// recorded in the last member's trailer, which is exact for single-member input below
// 4GiB.
func (c GzipCompressor) Decompress(data []byte, expectedSize int) ([]byte, error) {
	const op = "compress.GzipCompressor.Decompress"

	if expectedSize <= 0 && len(data) >= gzipHeaderSize+gzipTrailerSize {
		if hint := int(binary.LittleEndian.Uint32(data[len(data)-4:])); hint > 0 && hint <= c.cfg.maxDecodedSize {
			dst := make([]byte, hint)
			if n, err := GzipDecompress(dst, data); err == nil {
				return dst[:n], nil
			}
		}
	}

	return decompressBlock(op, data, expectedSize, c.cfg.maxDecodedSize, GzipDecompress)
}
