// Command colcodec inspects, runs and benchmarks the colcodec compressors from the shell.
//
// Usage:
//
//	colcodec info
//	colcodec compress --codec zstd --level 9 page.bin page.zst
//	colcodec decompress --codec zstd --size 1048576 page.zst page.bin
//	colcodec verify page.bin
//	colcodec bench --iterations 20 --codecs lz4,snappy,deflate page.bin
//
// Every flag can also be set through a COLCODEC_ environment variable, for example
// COLCODEC_CODEC=snappy or COLCODEC_LOG_LEVEL=debug.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
