//go:build avogen

// Command avo generates the amd64 kernels of package simd.
//
//	cd simd && go generate
//
// Kernels use fixed registers so the generated file only changes with this program.
package main

import (
	. "github.com/mmcloughlin/avo/build"
)

func main() {
	Package("github.com/arloliu/colcodec/simd")
	ConstraintExpr("amd64")
	ConstraintExpr("!noasm")

	genPrefixSumInt32SSE2()
	genPrefixSumInt64SSE2()
	genPrefixSumInt32AVX2()
	genPrefixSumInt64AVX2()

	genByteSplit32()
	genByteSplit64()

	genUnpackSSE()
	genUnpackAVX2()

	Generate()
}
