//go:build avogen

package main

import (
	. "github.com/mmcloughlin/avo/build"
	op "github.com/mmcloughlin/avo/operand"
	. "github.com/mmcloughlin/avo/reg"
)

// Byte stream split is a byte-matrix transpose: values are rows, byte planes are
// columns. Both kernels transpose in registers with one PSHUFB per register followed
// by an unpack network; the networks are involutions, so decoding runs the same steps
// with plane loads and value stores.
//
// float32: 16 values (4 registers of 4 values). PSHUFB groups each register's bytes
// by significance, then a 4x4 dword transpose gathers one plane per register.
//
// float64: 8 values (4 registers of 2 values). PSHUFB pairs equal bytes of the two
// values into words, PUNPCK{L,H}WL and PUNPCK{L,H}LQ then leave two 8-byte planes in
// each register.

// transpose4x4L transposes the dwords of X1..X4. Rows come back in X2, X5, X4, X1.
func transpose4x4L() {
	MOVO(X1, X5)
	PUNPCKLLQ(X2, X5)
	PUNPCKHLQ(X2, X1)
	MOVO(X3, X6)
	PUNPCKLLQ(X4, X6)
	PUNPCKHLQ(X4, X3)
	MOVO(X5, X2)
	PUNPCKLQDQ(X6, X2)
	PUNPCKHQDQ(X6, X5)
	MOVO(X1, X4)
	PUNPCKLQDQ(X3, X4)
	PUNPCKHQDQ(X3, X1)
}

// transpose8x8B transposes the 8x8 byte matrix held as row pairs in X1..X4 after the
// pairing shuffle. Row pairs come back in X2, X5, X4, X1.
func transpose8x8B() {
	MOVO(X1, X5)
	PUNPCKLWL(X2, X5)
	PUNPCKHWL(X2, X1)
	MOVO(X3, X6)
	PUNPCKLWL(X4, X6)
	PUNPCKHWL(X4, X3)
	MOVO(X5, X2)
	PUNPCKLLQ(X6, X2)
	PUNPCKHLQ(X6, X5)
	MOVO(X1, X4)
	PUNPCKLLQ(X3, X4)
	PUNPCKHLQ(X3, X1)
}

func loadSplitArgs(dst, src string) {
	Load(Param(dst), RDI)
	Load(Param(src), RSI)
	Load(Param("n"), RCX)
	Load(Param("stride"), RDX)
}

func genByteSplit32() {
	// Output byte 4b+i takes input byte 4i+b.
	shuffle := GLOBL("byteSplit32Shuffle", RODATA|NOPTR)
	DATA(0, op.U64(0x0d0905010c080400))
	DATA(8, op.U64(0x0f0b07030e0a0602))

	TEXT("byteSplitEncode32SSSE3", NOSPLIT, "func(dst *byte, src *float32, n, stride int)")
	Doc("byteSplitEncode32SSSE3 splits n float32 values into 4 byte planes stride bytes apart.")
	loadSplitArgs("dst", "src")
	MOVOU(shuffle, X0)
	LEAQ(op.Mem{Base: RDI, Index: RDX, Scale: 1}, R8)
	LEAQ(op.Mem{Base: R8, Index: RDX, Scale: 1}, R9)
	LEAQ(op.Mem{Base: R9, Index: RDX, Scale: 1}, R10)
	XORQ(RBX, RBX)

	Label("split32_enc_loop")
	CMPQ(RBX, RCX)
	JAE(op.LabelRef("split32_enc_done"))
	MOVOU(op.Mem{Base: RSI}, X1)
	MOVOU(op.Mem{Base: RSI, Disp: 16}, X2)
	MOVOU(op.Mem{Base: RSI, Disp: 32}, X3)
	MOVOU(op.Mem{Base: RSI, Disp: 48}, X4)
	PSHUFB(X0, X1)
	PSHUFB(X0, X2)
	PSHUFB(X0, X3)
	PSHUFB(X0, X4)
	transpose4x4L()
	MOVOU(X2, op.Mem{Base: RDI, Index: RBX, Scale: 1})
	MOVOU(X5, op.Mem{Base: R8, Index: RBX, Scale: 1})
	MOVOU(X4, op.Mem{Base: R9, Index: RBX, Scale: 1})
	MOVOU(X1, op.Mem{Base: R10, Index: RBX, Scale: 1})
	ADDQ(op.Imm(64), RSI)
	ADDQ(op.Imm(16), RBX)
	JMP(op.LabelRef("split32_enc_loop"))

	Label("split32_enc_done")
	RET()

	TEXT("byteSplitDecode32SSSE3", NOSPLIT, "func(dst *float32, src *byte, n, stride int)")
	Doc("byteSplitDecode32SSSE3 joins n float32 values from 4 byte planes stride bytes apart.")
	loadSplitArgs("dst", "src")
	MOVOU(shuffle, X0)
	LEAQ(op.Mem{Base: RSI, Index: RDX, Scale: 1}, R8)
	LEAQ(op.Mem{Base: R8, Index: RDX, Scale: 1}, R9)
	LEAQ(op.Mem{Base: R9, Index: RDX, Scale: 1}, R10)
	XORQ(RBX, RBX)

	Label("split32_dec_loop")
	CMPQ(RBX, RCX)
	JAE(op.LabelRef("split32_dec_done"))
	MOVOU(op.Mem{Base: RSI, Index: RBX, Scale: 1}, X1)
	MOVOU(op.Mem{Base: R8, Index: RBX, Scale: 1}, X2)
	MOVOU(op.Mem{Base: R9, Index: RBX, Scale: 1}, X3)
	MOVOU(op.Mem{Base: R10, Index: RBX, Scale: 1}, X4)
	transpose4x4L()
	PSHUFB(X0, X2)
	PSHUFB(X0, X5)
	PSHUFB(X0, X4)
	PSHUFB(X0, X1)
	MOVOU(X2, op.Mem{Base: RDI})
	MOVOU(X5, op.Mem{Base: RDI, Disp: 16})
	MOVOU(X4, op.Mem{Base: RDI, Disp: 32})
	MOVOU(X1, op.Mem{Base: RDI, Disp: 48})
	ADDQ(op.Imm(64), RDI)
	ADDQ(op.Imm(16), RBX)
	JMP(op.LabelRef("split32_dec_loop"))

	Label("split32_dec_done")
	RET()
}

func genByteSplit64() {
	// Output byte 2b+v takes byte b of value v.
	shuffle := GLOBL("byteSplit64Shuffle", RODATA|NOPTR)
	DATA(0, op.U64(0x0b030a0209010800))
	DATA(8, op.U64(0x0f070e060d050c04))

	TEXT("byteSplitEncode64SSSE3", NOSPLIT, "func(dst *byte, src *float64, n, stride int)")
	Doc("byteSplitEncode64SSSE3 splits n float64 values into 8 byte planes stride bytes apart.")
	loadSplitArgs("dst", "src")
	MOVOU(shuffle, X0)
	XORQ(RBX, RBX)

	Label("split64_enc_loop")
	CMPQ(RBX, RCX)
	JAE(op.LabelRef("split64_enc_done"))
	MOVOU(op.Mem{Base: RSI}, X1)
	MOVOU(op.Mem{Base: RSI, Disp: 16}, X2)
	MOVOU(op.Mem{Base: RSI, Disp: 32}, X3)
	MOVOU(op.Mem{Base: RSI, Disp: 48}, X4)
	PSHUFB(X0, X1)
	PSHUFB(X0, X2)
	PSHUFB(X0, X3)
	PSHUFB(X0, X4)
	transpose8x8B()
	LEAQ(op.Mem{Base: RDI, Index: RBX, Scale: 1}, RAX)
	for i, x := range []VecPhysical{X2, X5, X4, X1} {
		if i > 0 {
			ADDQ(RDX, RAX)
		}
		MOVQ(x, op.Mem{Base: RAX})
		ADDQ(RDX, RAX)
		MOVHPS(x, op.Mem{Base: RAX})
	}
	ADDQ(op.Imm(64), RSI)
	ADDQ(op.Imm(8), RBX)
	JMP(op.LabelRef("split64_enc_loop"))

	Label("split64_enc_done")
	RET()

	TEXT("byteSplitDecode64SSSE3", NOSPLIT, "func(dst *float64, src *byte, n, stride int)")
	Doc("byteSplitDecode64SSSE3 joins n float64 values from 8 byte planes stride bytes apart.")
	loadSplitArgs("dst", "src")
	MOVOU(shuffle, X0)
	XORQ(RBX, RBX)

	Label("split64_dec_loop")
	CMPQ(RBX, RCX)
	JAE(op.LabelRef("split64_dec_done"))
	LEAQ(op.Mem{Base: RSI, Index: RBX, Scale: 1}, RAX)
	for i, x := range []VecPhysical{X1, X2, X3, X4} {
		if i > 0 {
			ADDQ(RDX, RAX)
		}
		MOVQ(op.Mem{Base: RAX}, x)
		ADDQ(RDX, RAX)
		MOVHPS(op.Mem{Base: RAX}, x)
	}
	PSHUFB(X0, X1)
	PSHUFB(X0, X2)
	PSHUFB(X0, X3)
	PSHUFB(X0, X4)
	transpose8x8B()
	MOVOU(X2, op.Mem{Base: RDI})
	MOVOU(X5, op.Mem{Base: RDI, Disp: 16})
	MOVOU(X4, op.Mem{Base: RDI, Disp: 32})
	MOVOU(X1, op.Mem{Base: RDI, Disp: 48})
	ADDQ(op.Imm(64), RDI)
	ADDQ(op.Imm(8), RBX)
	JMP(op.LabelRef("split64_dec_loop"))

	Label("split64_dec_done")
	RET()
}
