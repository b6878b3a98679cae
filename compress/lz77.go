package compress

import (
	"encoding/binary"
	"math/bits"
)

// load32 reads four little-endian bytes at i. The caller guarantees i+4 <= len(b).
func load32(b []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(b[i : i+4])
}

// matchLen returns the length of the common prefix of a and b, bounded by len(a).
// b must be at least as long as a.
func matchLen(a, b []byte) int {
	n := 0
	for len(a)-n >= 8 {
		x := binary.LittleEndian.Uint64(a[n:]) ^ binary.LittleEndian.Uint64(b[n:])
		if x != 0 {
			return n + bits.TrailingZeros64(x)>>3
		}
		n += 8
	}
	for n < len(a) && a[n] == b[n] {
		n++
	}

	return n
}

// copyBackref appends n bytes starting offset bytes behind position d of dst.
// Overlapping references (offset < n) repeat the pattern, so the copied region
// doubles on every pass instead of moving one byte at a time.
//
// The caller has validated 0 < offset <= d and d+n <= len(dst).
func copyBackref(dst []byte, d, offset, n int) {
	src := d - offset
	if offset >= n {
		copy(dst[d:d+n], dst[src:src+n])
		return
	}
	end := d + n
	for d < end {
		d += copy(dst[d:end], dst[src:d])
	}
}
