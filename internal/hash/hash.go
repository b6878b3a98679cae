// Package hash wraps xxHash64 for dictionary keys and content fingerprints.
package hash

import "github.com/cespare/xxhash/v2"

// Bytes computes the xxHash64 of b.
func Bytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// String computes the xxHash64 of s without copying it.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Fingerprint accumulates an xxHash64 over a sequence of writes.
type Fingerprint struct {
	d *xxhash.Digest
}

// NewFingerprint returns an empty Fingerprint.
func NewFingerprint() Fingerprint {
	return Fingerprint{d: xxhash.New()}
}

// Write adds p to the fingerprint. It never fails.
func (f Fingerprint) Write(p []byte) (int, error) {
	return f.d.Write(p)
}

// Sum64 returns the fingerprint of everything written so far.
func (f Fingerprint) Sum64() uint64 {
	return f.d.Sum64()
}
