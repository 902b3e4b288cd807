/*
 * RSP64 - Scalar unit: fetch, decode and the R4000 integer subset.
 *
 * Copyright 2025, RSP64 Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package rsp

import (
	"fmt"
	"log/slog"

	"github.com/openrcp/rsp64/emu/spmem"
)

// Build the dispatch tables. Reserved encodings resolve to resOp: the
// RSP treats them as NOP rather than faulting.
func (r *RSP) createTables() {
	for i := range r.opTable {
		r.opTable[i] = (*RSP).resOp
	}
	for i := range r.spTable {
		r.spTable[i] = (*RSP).resOp
	}
	for i := range r.riTable {
		r.riTable[i] = (*RSP).resOp
	}

	r.opTable[opSpecial] = (*RSP).opSpecialDispatch
	r.opTable[opRegimm] = (*RSP).opRegimmDispatch
	r.opTable[opJ] = (*RSP).opJump
	r.opTable[opJAL] = (*RSP).opJumpLink
	r.opTable[opBEQ] = (*RSP).opBranchEq
	r.opTable[opBNE] = (*RSP).opBranchNe
	r.opTable[opBLEZ] = (*RSP).opBranchLez
	r.opTable[opBGTZ] = (*RSP).opBranchGtz
	r.opTable[opADDI] = (*RSP).opAddImm
	r.opTable[opADDIU] = (*RSP).opAddImm
	r.opTable[opSLTI] = (*RSP).opSetLtImm
	r.opTable[opSLTIU] = (*RSP).opSetLtImmU
	r.opTable[opANDI] = (*RSP).opAndImm
	r.opTable[opORI] = (*RSP).opOrImm
	r.opTable[opXORI] = (*RSP).opXorImm
	r.opTable[opLUI] = (*RSP).opLoadUpper
	r.opTable[opCOP0] = (*RSP).opCop0
	r.opTable[opCOP2] = (*RSP).opCop2
	r.opTable[opLB] = (*RSP).opLoadByte
	r.opTable[opLH] = (*RSP).opLoadHalf
	r.opTable[opLW] = (*RSP).opLoadWord
	r.opTable[opLBU] = (*RSP).opLoadByteU
	r.opTable[opLHU] = (*RSP).opLoadHalfU
	r.opTable[opSB] = (*RSP).opStoreByte
	r.opTable[opSH] = (*RSP).opStoreHalf
	r.opTable[opSW] = (*RSP).opStoreWord
	r.opTable[opLWC2] = (*RSP).opVecLoad
	r.opTable[opSWC2] = (*RSP).opVecStore

	r.spTable[fnSLL] = (*RSP).opShiftLeft
	r.spTable[fnSRL] = (*RSP).opShiftRight
	r.spTable[fnSRA] = (*RSP).opShiftRightArith
	r.spTable[fnSLLV] = (*RSP).opShiftLeftVar
	r.spTable[fnSRLV] = (*RSP).opShiftRightVar
	r.spTable[fnSRAV] = (*RSP).opShiftRightArithVar
	r.spTable[fnJR] = (*RSP).opJumpReg
	r.spTable[fnJALR] = (*RSP).opJumpLinkReg
	r.spTable[fnBREAK] = (*RSP).opBreak
	r.spTable[fnADD] = (*RSP).opAdd
	r.spTable[fnADDU] = (*RSP).opAdd
	r.spTable[fnSUB] = (*RSP).opSub
	r.spTable[fnSUBU] = (*RSP).opSub
	r.spTable[fnAND] = (*RSP).opAnd
	r.spTable[fnOR] = (*RSP).opOr
	r.spTable[fnXOR] = (*RSP).opXor
	r.spTable[fnNOR] = (*RSP).opNor
	r.spTable[fnSLT] = (*RSP).opSetLt
	r.spTable[fnSLTU] = (*RSP).opSetLtU

	r.riTable[riBLTZ] = (*RSP).opBranchLtz
	r.riTable[riBGEZ] = (*RSP).opBranchGez
	r.riTable[riBLTZAL] = (*RSP).opBranchLtzLink
	r.riTable[riBGEZAL] = (*RSP).opBranchGezLink

	r.createVecTables()
}

// Step fetches and executes one instruction. The program counter pair
// advances before execution, so a branch written by the handler lands in
// nextPC and takes effect after the delay slot instruction runs.
func (r *RSP) Step() {
	inst := r.imem.Word(r.pc &^ 3)
	if r.trace {
		slog.Debug("exec", "pc", fmt.Sprintf("%03x", r.pc), "inst", fmt.Sprintf("%08x", inst))
	}
	r.pc = r.nextPC
	r.nextPC = (r.nextPC + 4) & spmem.AddrMask
	r.steps++

	r.opTable[opcode(inst)](r, inst)
	r.sr[0] = 0
}

// setSR writes a scalar register. Register zero stays zero.
func (r *RSP) setSR(num int, value uint32) {
	if num != 0 {
		r.sr[num] = value
	}
}

// Reserved encoding. The hardware executes these as NOP.
func (r *RSP) resOp(uint32) {}

func (r *RSP) opSpecialDispatch(inst uint32) {
	r.spTable[fnField(inst)](r, inst)
}

func (r *RSP) opRegimmDispatch(inst uint32) {
	r.riTable[rtField(inst)](r, inst)
}

/* Jumps and branches. The delay slot instruction sits at r.pc when a
   handler runs; the branch target replaces nextPC. */

func (r *RSP) branchTo(target uint32) {
	r.nextPC = target & spmem.AddrMask &^ 3
}

// Branch target of a conditional branch: delay slot address plus offset.
func (r *RSP) branchRel(inst uint32) {
	r.branchTo(r.pc + uint32(simm16(inst)<<2))
}

func (r *RSP) opJump(inst uint32) {
	r.branchTo(target26(inst) << 2)
}

func (r *RSP) opJumpLink(inst uint32) {
	r.setSR(31, r.nextPC)
	r.branchTo(target26(inst) << 2)
}

func (r *RSP) opJumpReg(inst uint32) {
	r.branchTo(r.sr[rsField(inst)])
}

func (r *RSP) opJumpLinkReg(inst uint32) {
	target := r.sr[rsField(inst)]
	r.setSR(rdField(inst), r.nextPC)
	r.branchTo(target)
}

func (r *RSP) opBranchEq(inst uint32) {
	if r.sr[rsField(inst)] == r.sr[rtField(inst)] {
		r.branchRel(inst)
	}
}

func (r *RSP) opBranchNe(inst uint32) {
	if r.sr[rsField(inst)] != r.sr[rtField(inst)] {
		r.branchRel(inst)
	}
}

func (r *RSP) opBranchLez(inst uint32) {
	if int32(r.sr[rsField(inst)]) <= 0 {
		r.branchRel(inst)
	}
}

func (r *RSP) opBranchGtz(inst uint32) {
	if int32(r.sr[rsField(inst)]) > 0 {
		r.branchRel(inst)
	}
}

func (r *RSP) opBranchLtz(inst uint32) {
	if int32(r.sr[rsField(inst)]) < 0 {
		r.branchRel(inst)
	}
}

func (r *RSP) opBranchGez(inst uint32) {
	if int32(r.sr[rsField(inst)]) >= 0 {
		r.branchRel(inst)
	}
}

func (r *RSP) opBranchLtzLink(inst uint32) {
	taken := int32(r.sr[rsField(inst)]) < 0
	r.setSR(31, r.nextPC)
	if taken {
		r.branchRel(inst)
	}
}

func (r *RSP) opBranchGezLink(inst uint32) {
	taken := int32(r.sr[rsField(inst)]) >= 0
	r.setSR(31, r.nextPC)
	if taken {
		r.branchRel(inst)
	}
}

// BREAK halts the processor. No delay slot.
func (r *RSP) opBreak(uint32) {
	status := r.cr[crStatus]
	*status |= StatusBroke | StatusHalt
	if *status&StatusIntrBreak != 0 {
		if r.host.MIIntr != nil {
			*r.host.MIIntr |= 1
		}
		if r.host.CheckInterrupts != nil {
			r.host.CheckInterrupts()
		}
	}
	r.running = false
}

/* ALU. The RSP has no overflow traps: ADD/SUB/ADDI behave exactly like
   their unsigned forms. */

func (r *RSP) opAdd(inst uint32) {
	r.setSR(rdField(inst), r.sr[rsField(inst)]+r.sr[rtField(inst)])
}

func (r *RSP) opSub(inst uint32) {
	r.setSR(rdField(inst), r.sr[rsField(inst)]-r.sr[rtField(inst)])
}

func (r *RSP) opAnd(inst uint32) {
	r.setSR(rdField(inst), r.sr[rsField(inst)]&r.sr[rtField(inst)])
}

func (r *RSP) opOr(inst uint32) {
	r.setSR(rdField(inst), r.sr[rsField(inst)]|r.sr[rtField(inst)])
}

func (r *RSP) opXor(inst uint32) {
	r.setSR(rdField(inst), r.sr[rsField(inst)]^r.sr[rtField(inst)])
}

func (r *RSP) opNor(inst uint32) {
	r.setSR(rdField(inst), ^(r.sr[rsField(inst)] | r.sr[rtField(inst)]))
}

func (r *RSP) opSetLt(inst uint32) {
	var v uint32
	if int32(r.sr[rsField(inst)]) < int32(r.sr[rtField(inst)]) {
		v = 1
	}
	r.setSR(rdField(inst), v)
}

func (r *RSP) opSetLtU(inst uint32) {
	var v uint32
	if r.sr[rsField(inst)] < r.sr[rtField(inst)] {
		v = 1
	}
	r.setSR(rdField(inst), v)
}

func (r *RSP) opAddImm(inst uint32) {
	r.setSR(rtField(inst), r.sr[rsField(inst)]+uint32(simm16(inst)))
}

func (r *RSP) opSetLtImm(inst uint32) {
	var v uint32
	if int32(r.sr[rsField(inst)]) < simm16(inst) {
		v = 1
	}
	r.setSR(rtField(inst), v)
}

func (r *RSP) opSetLtImmU(inst uint32) {
	var v uint32
	if r.sr[rsField(inst)] < uint32(simm16(inst)) {
		v = 1
	}
	r.setSR(rtField(inst), v)
}

func (r *RSP) opAndImm(inst uint32) {
	r.setSR(rtField(inst), r.sr[rsField(inst)]&imm16(inst))
}

func (r *RSP) opOrImm(inst uint32) {
	r.setSR(rtField(inst), r.sr[rsField(inst)]|imm16(inst))
}

func (r *RSP) opXorImm(inst uint32) {
	r.setSR(rtField(inst), r.sr[rsField(inst)]^imm16(inst))
}

func (r *RSP) opLoadUpper(inst uint32) {
	r.setSR(rtField(inst), imm16(inst)<<16)
}

/* Shifts. Amounts mask to five bits. */

func (r *RSP) opShiftLeft(inst uint32) {
	r.setSR(rdField(inst), r.sr[rtField(inst)]<<saField(inst))
}

func (r *RSP) opShiftRight(inst uint32) {
	r.setSR(rdField(inst), r.sr[rtField(inst)]>>saField(inst))
}

func (r *RSP) opShiftRightArith(inst uint32) {
	r.setSR(rdField(inst), uint32(int32(r.sr[rtField(inst)])>>saField(inst)))
}

func (r *RSP) opShiftLeftVar(inst uint32) {
	r.setSR(rdField(inst), r.sr[rtField(inst)]<<(r.sr[rsField(inst)]&0x1f))
}

func (r *RSP) opShiftRightVar(inst uint32) {
	r.setSR(rdField(inst), r.sr[rtField(inst)]>>(r.sr[rsField(inst)]&0x1f))
}

func (r *RSP) opShiftRightArithVar(inst uint32) {
	r.setSR(rdField(inst), uint32(int32(r.sr[rtField(inst)])>>(r.sr[rsField(inst)]&0x1f)))
}

/* Loads and stores. Effective addresses wrap inside DMEM; unaligned
   halfword and word accesses are assembled byte-wise, which is exactly
   what the ULW/USW helpers on the original hardware interpreter did. */

func (r *RSP) effAddr(inst uint32) uint32 {
	return (r.sr[rsField(inst)] + uint32(simm16(inst))) & spmem.AddrMask
}

func (r *RSP) opLoadByte(inst uint32) {
	r.setSR(rtField(inst), uint32(int32(int8(r.dmem.Byte(r.effAddr(inst))))))
}

func (r *RSP) opLoadByteU(inst uint32) {
	r.setSR(rtField(inst), uint32(r.dmem.Byte(r.effAddr(inst))))
}

func (r *RSP) opLoadHalf(inst uint32) {
	r.setSR(rtField(inst), uint32(int32(int16(r.dmem.Half(r.effAddr(inst))))))
}

func (r *RSP) opLoadHalfU(inst uint32) {
	r.setSR(rtField(inst), uint32(r.dmem.Half(r.effAddr(inst))))
}

func (r *RSP) opLoadWord(inst uint32) {
	r.setSR(rtField(inst), r.dmem.Word(r.effAddr(inst)))
}

func (r *RSP) opStoreByte(inst uint32) {
	r.dmem.SetByte(r.effAddr(inst), uint8(r.sr[rtField(inst)]))
}

func (r *RSP) opStoreHalf(inst uint32) {
	r.dmem.SetHalf(r.effAddr(inst), uint16(r.sr[rtField(inst)]))
}

func (r *RSP) opStoreWord(inst uint32) {
	r.dmem.SetWord(r.effAddr(inst), r.sr[rtField(inst)])
}

/* Coprocessor 0: the RCP control registers. */

func (r *RSP) opCop0(inst uint32) {
	switch rsField(inst) {
	case 0x00:
		r.mfc0(rtField(inst), rdField(inst))
	case 0x04:
		r.mtc0(rtField(inst), rdField(inst))
	}
}

func (r *RSP) mfc0(rt, rd int) {
	rd &= 0xf
	switch rd {
	case crSemaphore:
		// Reading the semaphore takes it: the old value comes back
		// and the register reads 1 until something writes it.
		r.setSR(rt, *r.cr[crSemaphore])
		*r.cr[crSemaphore] = 1
	case crStatus:
		r.setSR(rt, *r.cr[crStatus])
		// Spinning on SP_STATUS with the host locked out would hang
		// forever; count consecutive reads and yield when the
		// microcode is clearly waiting for outside help.
		r.mfc0Count[rt]++
		if r.mfc0Count[rt] >= r.mfTimeout {
			r.mfc0Count[rt] = 0
			r.running = false
		}
	default:
		r.setSR(rt, *r.cr[rd])
	}
}

func (r *RSP) mtc0(rt, rd int) {
	value := r.sr[rt]
	switch rd & 0xf {
	case crMemAddr:
		*r.cr[crMemAddr] = value & 0x1fff
	case crDRAMAddr:
		*r.cr[crDRAMAddr] = value & spmem.MaxDRAMMask
	case crRdLen:
		*r.cr[crRdLen] = value
		r.dmaRead()
	case crWrLen:
		*r.cr[crWrLen] = value
		r.dmaWrite()
	case crStatus:
		r.writeStatus(value)
	case crDMAFull, crDMABusy:
		// Read-only; DMA completes inside the MTC0 that started it.
	case crSemaphore:
		*r.cr[crSemaphore] = 0
	default:
		*r.cr[rd&0xf] = value
	}
}

// writeStatus applies the bit-set/bit-clear pairs of an SP_STATUS write.
// Halting or raising an interrupt hands control back to the host.
func (r *RSP) writeStatus(value uint32) {
	status := r.cr[crStatus]
	if value&(1<<0) != 0 {
		*status &^= StatusHalt
	}
	if value&(1<<1) != 0 {
		*status |= StatusHalt
		r.running = false
	}
	if value&(1<<2) != 0 {
		*status &^= StatusBroke
	}
	if value&(1<<3) != 0 && r.host.MIIntr != nil {
		*r.host.MIIntr &^= 1
	}
	if value&(1<<4) != 0 {
		if r.host.MIIntr != nil {
			*r.host.MIIntr |= 1
		}
		r.running = false
	}
	if value&(1<<5) != 0 {
		*status &^= StatusSStep
	}
	if value&(1<<6) != 0 {
		*status |= StatusSStep
	}
	if value&(1<<7) != 0 {
		*status &^= StatusIntrBreak
	}
	if value&(1<<8) != 0 {
		*status |= StatusIntrBreak
	}
	for sig := 0; sig < 8; sig++ {
		if value&(1<<(9+2*sig)) != 0 {
			*status &^= StatusSig0 << sig
		}
		if value&(1<<(10+2*sig)) != 0 {
			*status |= StatusSig0 << sig
		}
	}
}

/* Coprocessor 2 moves and the vector dispatch. */

func (r *RSP) opCop2(inst uint32) {
	if inst&(1<<25) != 0 {
		vd := saField(inst)
		vs := rdField(inst)
		vt := rtField(inst)
		r.vecTable[fnField(inst)](r, vd, vs, vt, elemField(inst))
		return
	}
	switch rsField(inst) {
	case 0x00:
		r.mfc2(rtField(inst), rdField(inst), lsElem(inst))
	case 0x02:
		r.cfc2(rtField(inst), rdField(inst))
	case 0x04:
		r.mtc2(rtField(inst), rdField(inst), lsElem(inst))
	case 0x06:
		r.ctc2(rtField(inst), rdField(inst))
	}
}

func (r *RSP) opVecLoad(inst uint32) {
	r.lwc2Table[rdField(inst)](r, rtField(inst), lsElem(inst), lsOffset(inst), r.sr[rsField(inst)])
}

func (r *RSP) opVecStore(inst uint32) {
	r.swc2Table[rdField(inst)](r, rtField(inst), lsElem(inst), lsOffset(inst), r.sr[rsField(inst)])
}
