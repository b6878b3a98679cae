//go:build avogen

package main

import (
	. "github.com/mmcloughlin/avo/build"
	op "github.com/mmcloughlin/avo/operand"
	. "github.com/mmcloughlin/avo/reg"
)

// The prefix sums use the shift-and-add scan: shifting a register left by one and two
// lanes and adding gives the inclusive scan of the register, then the carry from the
// previous register is added and the new last lane is broadcast as the next carry.
// Remaining values fall through to a scalar loop.

// scalarTail emits the scalar remainder loop for a running sum held in acc.
func scalarTail(prefix string, size int, acc Register) {
	add, mov := ADDL, MOVL
	if size == 8 {
		add, mov = ADDQ, MOVQ
	}

	TESTQ(RCX, RCX)
	JZ(op.LabelRef(prefix + "_done"))

	Label(prefix + "_tail")
	add(op.Mem{Base: RAX}, acc)
	mov(acc, op.Mem{Base: RAX})
	ADDQ(op.Imm(uint64(size)), RAX)
	DECQ(RCX)
	JNZ(op.LabelRef(prefix + "_tail"))

	Label(prefix + "_done")
	RET()
}

func genPrefixSumInt32SSE2() {
	TEXT("prefixSumInt32SSE2", NOSPLIT, "func(values []int32, initial int32)")
	Doc("prefixSumInt32SSE2 replaces values with their inclusive running sum from initial.")

	Load(Param("values").Base(), RAX)
	Load(Param("values").Len(), RCX)
	Load(Param("initial"), EDX)
	MOVQ(RDX, X0)
	PSHUFD(op.Imm(0x00), X0, X0)

	Label("prefix32_sse_loop")
	CMPQ(RCX, op.Imm(4))
	JB(op.LabelRef("prefix32_sse_scalar"))
	MOVOU(op.Mem{Base: RAX}, X1)
	MOVO(X1, X2)
	PSLLDQ(op.Imm(4), X2)
	PADDL(X2, X1)
	MOVO(X1, X2)
	PSLLDQ(op.Imm(8), X2)
	PADDL(X2, X1)
	PADDL(X0, X1)
	MOVOU(X1, op.Mem{Base: RAX})
	PSHUFD(op.Imm(0xff), X1, X0)
	ADDQ(op.Imm(16), RAX)
	SUBQ(op.Imm(4), RCX)
	JMP(op.LabelRef("prefix32_sse_loop"))

	Label("prefix32_sse_scalar")
	MOVQ(X0, RDX)
	scalarTail("prefix32_sse", 4, EDX)
}

func genPrefixSumInt64SSE2() {
	TEXT("prefixSumInt64SSE2", NOSPLIT, "func(values []int64, initial int64)")
	Doc("prefixSumInt64SSE2 replaces values with their inclusive running sum from initial.")

	Load(Param("values").Base(), RAX)
	Load(Param("values").Len(), RCX)
	Load(Param("initial"), RDX)
	MOVQ(RDX, X0)
	PUNPCKLQDQ(X0, X0)

	Label("prefix64_sse_loop")
	CMPQ(RCX, op.Imm(2))
	JB(op.LabelRef("prefix64_sse_scalar"))
	MOVOU(op.Mem{Base: RAX}, X1)
	MOVO(X1, X2)
	PSLLDQ(op.Imm(8), X2)
	PADDQ(X2, X1)
	PADDQ(X0, X1)
	MOVOU(X1, op.Mem{Base: RAX})
	PSHUFD(op.Imm(0xee), X1, X0)
	ADDQ(op.Imm(16), RAX)
	SUBQ(op.Imm(2), RCX)
	JMP(op.LabelRef("prefix64_sse_loop"))

	Label("prefix64_sse_scalar")
	MOVQ(X0, RDX)
	scalarTail("prefix64_sse", 8, RDX)
}

// The AVX2 scans work per 128-bit lane, so the low lane's total is moved into the high
// lane with VPERM2I128 (imm 0x08: zero low, low-to-high) before adding the carry.

func genPrefixSumInt32AVX2() {
	TEXT("prefixSumInt32AVX2", NOSPLIT, "func(values []int32, initial int32)")
	Doc("prefixSumInt32AVX2 replaces values with their inclusive running sum from initial.")

	Load(Param("values").Base(), RAX)
	Load(Param("values").Len(), RCX)
	Load(Param("initial"), EDX)
	MOVQ(RDX, X0)
	VPBROADCASTD(X0, Y0)

	Label("prefix32_avx2_loop")
	CMPQ(RCX, op.Imm(8))
	JB(op.LabelRef("prefix32_avx2_scalar"))
	VMOVDQU(op.Mem{Base: RAX}, Y1)
	VPSLLDQ(op.Imm(4), Y1, Y2)
	VPADDD(Y2, Y1, Y1)
	VPSLLDQ(op.Imm(8), Y1, Y2)
	VPADDD(Y2, Y1, Y1)
	VPSHUFD(op.Imm(0xff), Y1, Y2)
	VPERM2I128(op.Imm(0x08), Y2, Y2, Y2)
	VPADDD(Y2, Y1, Y1)
	VPADDD(Y0, Y1, Y1)
	VMOVDQU(Y1, op.Mem{Base: RAX})
	VPSHUFD(op.Imm(0xff), Y1, Y2)
	VPERM2I128(op.Imm(0x11), Y2, Y2, Y0)
	ADDQ(op.Imm(32), RAX)
	SUBQ(op.Imm(8), RCX)
	JMP(op.LabelRef("prefix32_avx2_loop"))

	Label("prefix32_avx2_scalar")
	VZEROUPPER()
	MOVQ(X0, RDX)
	scalarTail("prefix32_avx2", 4, EDX)
}

func genPrefixSumInt64AVX2() {
	TEXT("prefixSumInt64AVX2", NOSPLIT, "func(values []int64, initial int64)")
	Doc("prefixSumInt64AVX2 replaces values with their inclusive running sum from initial.")

	Load(Param("values").Base(), RAX)
	Load(Param("values").Len(), RCX)
	Load(Param("initial"), RDX)
	MOVQ(RDX, X0)
	VPBROADCASTQ(X0, Y0)

	Label("prefix64_avx2_loop")
	CMPQ(RCX, op.Imm(4))
	JB(op.LabelRef("prefix64_avx2_scalar"))
	VMOVDQU(op.Mem{Base: RAX}, Y1)
	VPSLLDQ(op.Imm(8), Y1, Y2)
	VPADDQ(Y2, Y1, Y1)
	VPSHUFD(op.Imm(0xee), Y1, Y2)
	VPERM2I128(op.Imm(0x08), Y2, Y2, Y2)
	VPADDQ(Y2, Y1, Y1)
	VPADDQ(Y0, Y1, Y1)
	VMOVDQU(Y1, op.Mem{Base: RAX})
	VPERMQ(op.Imm(0xff), Y1, Y0)
	ADDQ(op.Imm(32), RAX)
	SUBQ(op.Imm(4), RCX)
	JMP(op.LabelRef("prefix64_avx2_loop"))

	Label("prefix64_avx2_scalar")
	VZEROUPPER()
	MOVQ(X0, RDX)
	scalarTail("prefix64_avx2", 8, RDX)
}
