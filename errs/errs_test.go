package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		sentinel error
	}{
		{"capacity", Capacity("lz4.compress", "need %d bytes, have %d", 10, 4), KindCapacity, ErrCapacity},
		{"malformed", Malformed("snappy.decode", "bad tag"), KindMalformed, ErrMalformed},
		{"argument", InvalidArgument("bitpack.pack", "width %d out of range", 33), KindInvalidArgument, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.ErrorIs(t, tt.err, tt.sentinel)

			for _, other := range []error{ErrCapacity, ErrMalformed, ErrInvalidArgument} {
				if other != tt.sentinel {
					assert.NotErrorIs(t, tt.err, other)
				}
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Malformed("rle.decode", "run length %d exceeds input", 42)
	assert.Equal(t, "rle.decode: run length 42 exceeds input", err.Error())

	bare := &Error{Kind: KindCapacity, Op: "deflate.compress"}
	assert.Equal(t, "deflate.compress: capacity", bare.Error())
}

func TestWrap(t *testing.T) {
	require.NoError(t, Wrap(KindMalformed, "op", nil))

	err := Wrap(KindMalformed, "gzip.decompress", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, ErrMalformed)

	outer := fmt.Errorf("page 3: %w", err)
	assert.Equal(t, KindMalformed, KindOf(outer))
	assert.ErrorIs(t, outer, ErrMalformed)
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, "unknown", KindUnknown.String())
}
