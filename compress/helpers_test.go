package compress

import (
	"bytes"
	"math/rand/v2"
)

// testCorpus returns named inputs of length n covering the shapes block compressors
// care about.
func testCorpus(n int) map[string][]byte {
	rng := rand.New(rand.NewPCG(uint64(n), 0x5eed))

	random := make([]byte, n)
	for i := range random {
		random[i] = byte(rng.Uint32())
	}

	text := make([]byte, 0, n+64)
	words := [][]byte{[]byte("column "), []byte("page "), []byte("dictionary "), []byte("level "), []byte("0123 ")}
	for len(text) < n {
		text = append(text, words[rng.IntN(len(words))]...)
	}

	semi := make([]byte, n)
	for i := range semi {
		if i%100 < 50 {
			semi[i] = byte(i % 256)
		} else {
			semi[i] = byte(rng.IntN(4))
		}
	}

	return map[string][]byte{
		"zeros":  make([]byte, n),
		"equal":  bytes.Repeat([]byte{0xA5}, n),
		"random": random,
		"text":   text[:n],
		"semi":   semi,
	}
}

// roundTripSizes spans empty input to beyond the 64KiB block and window sizes.
var roundTripSizes = []int{0, 1, 2, 3, 4, 5, 12, 13, 14, 15, 16, 17, 31, 64, 255, 256, 1000, 4096, 65535, 65536, 65537, 100_000}
