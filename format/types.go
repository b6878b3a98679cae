// Package format defines the identifiers for column encodings and page compression codecs.
//
// The numeric values match the Apache Parquet thrift enums so the container layer can
// store them directly.
package format

type (
	EncodingType    uint8
	CompressionType uint8
)

const (
	EncodingPlain                EncodingType = 0 // EncodingPlain stores values back to back.
	EncodingPlainDictionary      EncodingType = 2 // EncodingPlainDictionary is the legacy dictionary encoding.
	EncodingRLE                  EncodingType = 3 // EncodingRLE is the RLE/bit-packing hybrid.
	EncodingBitPacked            EncodingType = 4 // EncodingBitPacked is the deprecated bit-packed level encoding.
	EncodingDeltaBinaryPacked    EncodingType = 5 // EncodingDeltaBinaryPacked is the delta binary-packed integer encoding.
	EncodingDeltaLengthByteArray EncodingType = 6 // EncodingDeltaLengthByteArray stores delta-encoded lengths then bytes.
	EncodingDeltaByteArray       EncodingType = 7 // EncodingDeltaByteArray is incremental (front-coded) byte array encoding.
	EncodingRLEDictionary        EncodingType = 8 // EncodingRLEDictionary stores RLE-hybrid dictionary indices.
	EncodingByteStreamSplit      EncodingType = 9 // EncodingByteStreamSplit transposes value bytes into streams.

	CompressionNone    CompressionType = 0 // CompressionNone represents no compression.
	CompressionSnappy  CompressionType = 1 // CompressionSnappy represents Snappy block compression.
	CompressionGzip    CompressionType = 2 // CompressionGzip represents a gzip member around a DEFLATE stream.
	CompressionZstd    CompressionType = 6 // CompressionZstd represents Zstandard compression.
	CompressionLZ4Raw  CompressionType = 7 // CompressionLZ4Raw represents a bare LZ4 block.
	CompressionDeflate CompressionType = 8 // CompressionDeflate represents a raw DEFLATE stream.
	CompressionS2      CompressionType = 9 // CompressionS2 represents S2 block compression.
)

func (e EncodingType) String() string {
	switch e {
	case EncodingPlain:
		return "Plain"
	case EncodingPlainDictionary:
		return "PlainDictionary"
	case EncodingRLE:
		return "RLE"
	case EncodingBitPacked:
		return "BitPacked"
	case EncodingDeltaBinaryPacked:
		return "DeltaBinaryPacked"
	case EncodingDeltaLengthByteArray:
		return "DeltaLengthByteArray"
	case EncodingDeltaByteArray:
		return "DeltaByteArray"
	case EncodingRLEDictionary:
		return "RLEDictionary"
	case EncodingByteStreamSplit:
		return "ByteStreamSplit"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionSnappy:
		return "Snappy"
	case CompressionGzip:
		return "Gzip"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZ4Raw:
		return "LZ4Raw"
	case CompressionDeflate:
		return "Deflate"
	case CompressionS2:
		return "S2"
	default:
		return "Unknown"
	}
}

// ParseCompression maps a case-sensitive codec name, as printed by String, back to its type.
func ParseCompression(name string) (CompressionType, bool) {
	for _, c := range CompressionTypes() {
		if c.String() == name {
			return c, true
		}
	}

	switch name {
	case "none", "uncompressed":
		return CompressionNone, true
	case "snappy":
		return CompressionSnappy, true
	case "gzip":
		return CompressionGzip, true
	case "zstd":
		return CompressionZstd, true
	case "lz4", "lz4raw", "lz4_raw":
		return CompressionLZ4Raw, true
	case "deflate":
		return CompressionDeflate, true
	case "s2":
		return CompressionS2, true
	}

	return 0, false
}

// CompressionTypes lists every built-in compression type.
func CompressionTypes() []CompressionType {
	return []CompressionType{
		CompressionNone,
		CompressionSnappy,
		CompressionGzip,
		CompressionZstd,
		CompressionLZ4Raw,
		CompressionDeflate,
		CompressionS2,
	}
}
