/*
 * RSP64 - RSP interpreter definitions.
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
	"github.com/openrcp/rsp64/emu/spmem"
)

// Host holds everything the embedding emulator hands the RSP at startup.
// All pointers are borrowed; the engine never frees or reallocates them.
type Host struct {
	DRAM []byte                // Main memory, host word order.
	DMEM *[spmem.BankSize]byte // On-chip data memory.
	IMEM *[spmem.BankSize]byte // On-chip instruction memory.

	SPRegs  *[8]uint32 // SP_MEM_ADDR .. SP_SEMAPHORE
	DPCRegs *[8]uint32 // DPC_START .. DPC_TMEM
	SPPC    *uint32    // SP program counter register.
	MIIntr  *uint32    // MI interrupt register.

	ProcessDList   func() // HLE graphics task handler.
	ProcessAList   func() // HLE audio task handler.
	ProcessRdpList func() // LLE display list handler.
	ShowCFB        func() // Framebuffer refresh for HVQM tasks.

	CheckInterrupts func() // Raise pending interrupts on the host CPU.
}

// RSP is one signal processor instance. All mutable state lives here;
// SR, VR and the accumulator persist across tasks and are never cleared
// between runs.
type RSP struct {
	host Host
	dmem spmem.Bank
	imem spmem.Bank
	dram spmem.DRAM

	// Mirrors of the sixteen RCP control registers reachable from
	// MFC0/MTC0, in coprocessor register order.
	cr [16]*uint32

	// Scalar unit.
	sr     [32]uint32 // General registers, sr[0] pinned to zero.
	pc     uint32     // Address of the next instruction to fetch (the delay slot while a handler runs).
	nextPC uint32     // Address of the one after it (branch target once taken).

	// Vector unit.
	vr  [32][8]int16 // Vector register file, lane 0 is the high lane.
	acc [8]int64     // 48-bit accumulators, kept sign extended.

	// Vector flag registers, one bool per lane. Packed on demand by
	// the VCO/VCC/VCE accessors.
	vcoCarry [8]bool // VCO low half: carry / borrow out.
	vcoNe    [8]bool // VCO high half: not-equal.
	vccComp  [8]bool // VCC low half: compare result.
	vccClip  [8]bool // VCC high half: clip result.
	vce      [8]bool // Compare extension, VCH/VCL/VCR only.

	// Divide unit.
	divIn     int32 // High half staged by VRCPH/VRSQH.
	divOut    int32 // Last computed reciprocal.
	divInFlag bool  // divIn holds a staged high half.

	running   bool
	steps     uint32
	mfc0Count [32]int16 // Consecutive SP_STATUS reads per target register.
	mfTimeout int16     // Reads tolerated before yielding to the host.

	conf      [32]byte // Raw configuration block.
	confPath  string   // Where the block came from, for RomClosed.
	warnedLLE bool
	trace     bool

	opTable   [64]func(*RSP, uint32)
	spTable   [64]func(*RSP, uint32)
	riTable   [32]func(*RSP, uint32)
	vecTable  [64]func(*RSP, int, int, int, int)
	lwc2Table [32]func(*RSP, int, int, int32, uint32)
	swc2Table [32]func(*RSP, int, int, int32, uint32)
}

const (
	// SP_STATUS read bits.
	StatusHalt      uint32 = 1 << 0
	StatusBroke     uint32 = 1 << 1
	StatusDMABusy   uint32 = 1 << 2
	StatusDMAFull   uint32 = 1 << 3
	StatusIOFull    uint32 = 1 << 4
	StatusSStep     uint32 = 1 << 5
	StatusIntrBreak uint32 = 1 << 6
	StatusSig0      uint32 = 1 << 7
	StatusSig1      uint32 = 1 << 8
	StatusSig2      uint32 = 1 << 9
	StatusSig3      uint32 = 1 << 10
	StatusSig4      uint32 = 1 << 11
	StatusSig5      uint32 = 1 << 12
	StatusSig6      uint32 = 1 << 13
	StatusSig7      uint32 = 1 << 14

	// Coprocessor 0 register numbers.
	crMemAddr   = 0x0 // SP_MEM_ADDR
	crDRAMAddr  = 0x1 // SP_DRAM_ADDR
	crRdLen     = 0x2 // SP_RD_LEN
	crWrLen     = 0x3 // SP_WR_LEN
	crStatus    = 0x4 // SP_STATUS
	crDMAFull   = 0x5 // SP_DMA_FULL
	crDMABusy   = 0x6 // SP_DMA_BUSY
	crSemaphore = 0x7 // SP_SEMAPHORE
	crDPStart   = 0x8 // DPC_START
	crDPEnd     = 0x9 // DPC_END
	crDPCurrent = 0xa // DPC_CURRENT
	crDPStatus  = 0xb // DPC_STATUS
	crDPClock   = 0xc // DPC_CLOCK
	crDPBufBusy = 0xd // DPC_BUFBUSY
	crDPPipe    = 0xe // DPC_PIPEBUSY
	crDPTMem    = 0xf // DPC_TMEM

	dpcStatusFreeze uint32 = 1 << 1

	// Task types at DMEM[0xFC0].
	taskGfx   uint32 = 1
	taskAudio uint32 = 2
	taskVideo uint32 = 3
	taskJpeg  uint32 = 4
	taskNull  uint32 = 5
	taskHVQ   uint32 = 6
	taskHVQM  uint32 = 7
	taskBoot  uint32 = 0x8bc43b5d // CIC boot code handed to the RSP.

	taskTypeAddr  uint32 = 0xfc0
	taskDListAddr uint32 = 0xff0

	// Reads of SP_STATUS tolerated in a spin loop before control goes
	// back to the host. Drops to the lower value after the first trip.
	mfStatusTimeout      int16 = 32767
	mfStatusTimeoutShort int16 = 16

	// Reset value of the SP program counter as the host maps it.
	resetPC uint32 = 0x04001000
)

// Primary opcode numbers.
const (
	opSpecial = 0x00
	opRegimm  = 0x01
	opJ       = 0x02
	opJAL     = 0x03
	opBEQ     = 0x04
	opBNE     = 0x05
	opBLEZ    = 0x06
	opBGTZ    = 0x07
	opADDI    = 0x08
	opADDIU   = 0x09
	opSLTI    = 0x0a
	opSLTIU   = 0x0b
	opANDI    = 0x0c
	opORI     = 0x0d
	opXORI    = 0x0e
	opLUI     = 0x0f
	opCOP0    = 0x10
	opCOP2    = 0x12
	opLB      = 0x20
	opLH      = 0x21
	opLW      = 0x23
	opLBU     = 0x24
	opLHU     = 0x25
	opSB      = 0x28
	opSH      = 0x29
	opSW      = 0x2b
	opLWC2    = 0x32
	opSWC2    = 0x3a
)

// SPECIAL function numbers.
const (
	fnSLL   = 0x00
	fnSRL   = 0x02
	fnSRA   = 0x03
	fnSLLV  = 0x04
	fnSRLV  = 0x06
	fnSRAV  = 0x07
	fnJR    = 0x08
	fnJALR  = 0x09
	fnBREAK = 0x0d
	fnADD   = 0x20
	fnADDU  = 0x21
	fnSUB   = 0x22
	fnSUBU  = 0x23
	fnAND   = 0x24
	fnOR    = 0x25
	fnXOR   = 0x26
	fnNOR   = 0x27
	fnSLT   = 0x2a
	fnSLTU  = 0x2b
)

// REGIMM rt numbers.
const (
	riBLTZ   = 0x00
	riBGEZ   = 0x01
	riBLTZAL = 0x10
	riBGEZAL = 0x11
)

// COP2 vector function numbers.
const (
	vfVMULF = 0x00
	vfVMULU = 0x01
	vfVMUDL = 0x04
	vfVMUDM = 0x05
	vfVMUDN = 0x06
	vfVMUDH = 0x07
	vfVMACF = 0x08
	vfVMACU = 0x09
	vfVMADL = 0x0c
	vfVMADM = 0x0d
	vfVMADN = 0x0e
	vfVMADH = 0x0f
	vfVADD  = 0x10
	vfVSUB  = 0x11
	vfVABS  = 0x13
	vfVADDC = 0x14
	vfVSUBC = 0x15
	vfVSAR  = 0x1d
	vfVLT   = 0x20
	vfVEQ   = 0x21
	vfVNE   = 0x22
	vfVGE   = 0x23
	vfVCL   = 0x24
	vfVCH   = 0x25
	vfVCR   = 0x26
	vfVMRG  = 0x27
	vfVAND  = 0x28
	vfVNAND = 0x29
	vfVOR   = 0x2a
	vfVNOR  = 0x2b
	vfVXOR  = 0x2c
	vfVXNOR = 0x2d
	vfVRCP  = 0x30
	vfVRCPL = 0x31
	vfVRCPH = 0x32
	vfVMOV  = 0x33
	vfVRSQ  = 0x34
	vfVRSQL = 0x35
	vfVRSQH = 0x36
	vfVNOP  = 0x37
)

// LWC2/SWC2 minor opcode numbers (the rd field).
const (
	lsBV = 0x00
	lsSV = 0x01
	lsLV = 0x02
	lsDV = 0x03
	lsQV = 0x04
	lsRV = 0x05
	lsPV = 0x06
	lsUV = 0x07
	lsHV = 0x08
	lsFV = 0x09
	lsWV = 0x0a
	lsTV = 0x0b
)

// Instruction field accessors, standard MIPS encoding.
func opcode(inst uint32) uint32   { return inst >> 26 }
func rsField(inst uint32) int     { return int(inst >> 21 & 0x1f) }
func rtField(inst uint32) int     { return int(inst >> 16 & 0x1f) }
func rdField(inst uint32) int     { return int(inst >> 11 & 0x1f) }
func saField(inst uint32) int     { return int(inst >> 6 & 0x1f) }
func fnField(inst uint32) int     { return int(inst & 0x3f) }
func imm16(inst uint32) uint32    { return inst & 0xffff }
func simm16(inst uint32) int32    { return int32(int16(inst)) }
func target26(inst uint32) uint32 { return inst & 0x03ffffff }

// Element selector of a COP2 computational op.
func elemField(inst uint32) int { return int(inst >> 21 & 0xf) }

// Element and signed 7-bit offset of an LWC2/SWC2 op.
func lsElem(inst uint32) int { return int(inst >> 7 & 0xf) }
func lsOffset(inst uint32) int32 {
	off := int32(inst & 0x7f)
	if off&0x40 != 0 {
		off -= 0x80
	}
	return off
}
