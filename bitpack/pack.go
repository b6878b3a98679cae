// Package bitpack packs unsigned integers at arbitrary bit widths.
//
// Values are laid out least-significant-bit first: the first value occupies the low
// bits of the first byte, and a value that does not fit in the current byte continues
// in the low bits of the next one. A group of 8 values at width w therefore occupies
// exactly w bytes, which is the unit the RLE-hybrid and delta codecs are built on.
//
// The package also provides a streaming Reader and Writer over the same bit order.
package bitpack

import (
	"encoding/binary"
	"math/bits"

	"github.com/arloliu/colcodec/errs"
)

const (
	// MaxWidth is the widest bit width accepted by the 32-bit pack functions.
	MaxWidth = 32
	// GroupSize is the number of values in a packed group.
	GroupSize = 8
)

// Pack8 packs 8 values at the given width into dst[:width].
//
// Values are truncated to width bits. Width 0 writes nothing. The caller guarantees
// 0 <= width <= 32 and len(dst) >= width.
func Pack8(dst []byte, values *[8]uint32, width int) {
	switch width {
	case 0:
		return
	case 8:
		_ = dst[7]
		for i, v := range values {
			dst[i] = byte(v)
		}

		return
	case 16:
		_ = dst[15]
		for i, v := range values {
			binary.LittleEndian.PutUint16(dst[2*i:], uint16(v))
		}

		return
	case 32:
		_ = dst[31]
		for i, v := range values {
			binary.LittleEndian.PutUint32(dst[4*i:], v)
		}

		return
	}

	_ = dst[width-1]
	mask := uint64(1)<<width - 1
	var acc uint64
	n, out := 0, 0
	for _, v := range values {
		acc |= (uint64(v) & mask) << n
		n += width
		for n >= 8 {
			dst[out] = byte(acc)
			out++
			acc >>= 8
			n -= 8
		}
	}
}

// Unpack8 unpacks 8 values of the given width from src[:width].
//
// Width 0 yields 8 zeros. The caller guarantees 0 <= width <= 32 and len(src) >= width.
func Unpack8(dst *[8]uint32, src []byte, width int) {
	switch width {
	case 0:
		*dst = [8]uint32{}
		return
	case 8:
		_ = src[7]
		for i := range dst {
			dst[i] = uint32(src[i])
		}

		return
	case 16:
		_ = src[15]
		for i := range dst {
			dst[i] = uint32(binary.LittleEndian.Uint16(src[2*i:]))
		}

		return
	case 32:
		_ = src[31]
		for i := range dst {
			dst[i] = binary.LittleEndian.Uint32(src[4*i:])
		}

		return
	}

	_ = src[width-1]
	mask := uint64(1)<<width - 1
	var acc uint64
	n, in := 0, 0
	for i := range dst {
		for n < width {
			acc |= uint64(src[in]) << n
			in++
			n += 8
		}
		dst[i] = uint32(acc & mask)
		acc >>= width
		n -= width
	}
}

// PackedSize returns the number of bytes count values occupy at width bits.
func PackedSize(count, width int) int {
	return (count*width + 7) / 8
}

// Width32 returns the number of bits needed to represent v.
func Width32(v uint32) int {
	return bits.Len32(v)
}

// Width64 returns the number of bits needed to represent v.
func Width64(v uint64) int {
	return bits.Len64(v)
}

// Pack packs values at width into dst and returns the number of bytes written.
//
// len(values) need not be a multiple of 8: the final partial group is padded with
// zeros and only PackedSize(tail, width) bytes are written for it, so the result
// always equals PackedSize(len(values), width).
func Pack(dst []byte, values []uint32, width int) (int, error) {
	if width < 0 || width > MaxWidth {
		return 0, errs.InvalidArgument("bitpack.pack", "bit width %d outside 0..%d", width, MaxWidth)
	}
	size := PackedSize(len(values), width)
	if len(dst) < size {
		return 0, errs.Capacity("bitpack.pack", "need %d bytes, have %d", size, len(dst))
	}
	if width == 0 {
		return 0, nil
	}

	full := len(values) &^ 7
	out := 0
	for i := 0; i < full; i += 8 {
		Pack8(dst[out:], (*[8]uint32)(values[i:i+8]), width)
		out += width
	}

	if tail := len(values) - full; tail > 0 {
		var group [8]uint32
		var buf [MaxWidth]byte
		copy(group[:], values[full:])
		Pack8(buf[:], &group, width)
		out += copy(dst[out:], buf[:PackedSize(tail, width)])
	}

	return out, nil
}

// Unpack fills dst with len(dst) values of the given width read from src and returns
// the number of bytes consumed, which is PackedSize(len(dst), width).
func Unpack(dst []uint32, src []byte, width int) (int, error) {
	if width < 0 || width > MaxWidth {
		return 0, errs.InvalidArgument("bitpack.unpack", "bit width %d outside 0..%d", width, MaxWidth)
	}
	size := PackedSize(len(dst), width)
	if len(src) < size {
		return 0, errs.Malformed("bitpack.unpack", "need %d bytes, have %d", size, len(src))
	}
	if width == 0 {
		clear(dst)
		return 0, nil
	}

	full := len(dst) &^ 7
	in := 0
	for i := 0; i < full; i += 8 {
		Unpack8((*[8]uint32)(dst[i:i+8]), src[in:], width)
		in += width
	}

	if tail := len(dst) - full; tail > 0 {
		var group [8]uint32
		var buf [MaxWidth]byte
		n := copy(buf[:], src[in:size])
		Unpack8(&group, buf[:], width)
		copy(dst[full:], group[:tail])
		in += n
	}

	return in, nil
}
