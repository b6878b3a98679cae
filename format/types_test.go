package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodingTypeString(t *testing.T) {
	assert.Equal(t, "RLE", EncodingRLE.String())
	assert.Equal(t, "DeltaBinaryPacked", EncodingDeltaBinaryPacked.String())
	assert.Equal(t, "ByteStreamSplit", EncodingByteStreamSplit.String())
	assert.Equal(t, "Unknown", EncodingType(200).String())
}

func TestParseCompression(t *testing.T) {
	for _, c := range CompressionTypes() {
		got, ok := ParseCompression(c.String())
		require.True(t, ok, c.String())
		assert.Equal(t, c, got)
	}

	got, ok := ParseCompression("lz4")
	require.True(t, ok)
	assert.Equal(t, CompressionLZ4Raw, got)

	_, ok = ParseCompression("brotli")
	assert.False(t, ok)
	assert.Equal(t, "Unknown", CompressionType(99).String())
}
