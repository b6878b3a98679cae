//go:build avogen

package main

import (
	. "github.com/mmcloughlin/avo/build"
	op "github.com/mmcloughlin/avo/operand"
	. "github.com/mmcloughlin/avo/reg"
)

// The widening kernels zero-extend byte-aligned little-endian values to uint32. The
// caller passes a positive multiple of the vector width in n and guarantees that every
// load stays inside src.

type widenStep struct {
	name    string
	doc     string
	widen   func(mem op.Op, x Register)
	in, out int
	lanes   int
	avx     bool
}

func genWiden(s widenStep) {
	TEXT(s.name, NOSPLIT, "func(dst *uint32, src *byte, n int)")
	Doc(s.doc)
	Load(Param("dst"), RDI)
	Load(Param("src"), RSI)
	Load(Param("n"), RCX)

	loop := s.name + "_loop"
	Label(loop)
	if s.avx {
		s.widen(op.Mem{Base: RSI}, Y1)
		VMOVDQU(Y1, op.Mem{Base: RDI})
	} else {
		s.widen(op.Mem{Base: RSI}, X1)
		MOVOU(X1, op.Mem{Base: RDI})
	}
	ADDQ(op.Imm(uint64(s.in)), RSI)
	ADDQ(op.Imm(uint64(s.out)), RDI)
	SUBQ(op.Imm(uint64(s.lanes)), RCX)
	JG(op.LabelRef(loop))

	if s.avx {
		VZEROUPPER()
	}
	RET()
}

func genUnpackSSE() {
	genWiden(widenStep{
		name: "unpack8SSE41",
		doc:  "unpack8SSE41 widens n bytes to uint32.",
		widen: func(mem op.Op, x Register) {
			PMOVZXBD(mem, x)
		},
		in: 4, out: 16, lanes: 4,
	})
	genWiden(widenStep{
		name: "unpack16SSE41",
		doc:  "unpack16SSE41 widens n little-endian uint16 values to uint32.",
		widen: func(mem op.Op, x Register) {
			PMOVZXWD(mem, x)
		},
		in: 8, out: 16, lanes: 4,
	})

	// Dword k takes bytes 3k..3k+2; 0x80 zeroes the high byte.
	shuffle := GLOBL("unpack24Shuffle", RODATA|NOPTR)
	DATA(0, op.U64(0x8005040380020100))
	DATA(8, op.U64(0x800b0a0980080706))

	TEXT("unpack24SSSE3", NOSPLIT, "func(dst *uint32, src *byte, n int)")
	Doc("unpack24SSSE3 widens n little-endian 24-bit values to uint32.",
		"Each group of 4 reads 16 bytes of src.")
	Load(Param("dst"), RDI)
	Load(Param("src"), RSI)
	Load(Param("n"), RCX)
	MOVOU(shuffle, X0)

	Label("unpack24SSSE3_loop")
	MOVOU(op.Mem{Base: RSI}, X1)
	PSHUFB(X0, X1)
	MOVOU(X1, op.Mem{Base: RDI})
	ADDQ(op.Imm(12), RSI)
	ADDQ(op.Imm(16), RDI)
	SUBQ(op.Imm(4), RCX)
	JG(op.LabelRef("unpack24SSSE3_loop"))
	RET()
}

func genUnpackAVX2() {
	genWiden(widenStep{
		name: "unpack8AVX2",
		doc:  "unpack8AVX2 widens n bytes to uint32.",
		widen: func(mem op.Op, x Register) {
			VPMOVZXBD(mem, x)
		},
		in: 8, out: 32, lanes: 8, avx: true,
	})
	genWiden(widenStep{
		name: "unpack16AVX2",
		doc:  "unpack16AVX2 widens n little-endian uint16 values to uint32.",
		widen: func(mem op.Op, x Register) {
			VPMOVZXWD(mem, x)
		},
		in: 16, out: 32, lanes: 8, avx: true,
	})
}
