/*
 * RSP64 - RSP instruction disassembler.
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

package disassemble

import "fmt"

// Operand layouts.
const (
	tyNone = iota
	tyRegRegReg   // rd, rs, rt
	tyRegRegImm   // rt, rs, imm
	tyRegImm      // rt, imm
	tyShift       // rd, rt, sa
	tyShiftVar    // rd, rt, rs
	tyBranch2     // rs, rt, offset
	tyBranch1     // rs, offset
	tyJump        // target
	tyJumpReg     // rs
	tyMem         // rt, offset(base)
	tyCop0Move    // rt, cr
	tyCop2Move    // rt, vd[e]
	tyVector      // vd, vs, vt[e]
	tyVectorLane  // vd[de], vt[e]
	tyVecMem      // vt[e], offset(base)
)

type opcode struct {
	name string
	ty   int
}

var primary = map[uint32]opcode{
	0x02: {"J", tyJump},
	0x03: {"JAL", tyJump},
	0x04: {"BEQ", tyBranch2},
	0x05: {"BNE", tyBranch2},
	0x06: {"BLEZ", tyBranch1},
	0x07: {"BGTZ", tyBranch1},
	0x08: {"ADDI", tyRegRegImm},
	0x09: {"ADDIU", tyRegRegImm},
	0x0a: {"SLTI", tyRegRegImm},
	0x0b: {"SLTIU", tyRegRegImm},
	0x0c: {"ANDI", tyRegRegImm},
	0x0d: {"ORI", tyRegRegImm},
	0x0e: {"XORI", tyRegRegImm},
	0x0f: {"LUI", tyRegImm},
	0x20: {"LB", tyMem},
	0x21: {"LH", tyMem},
	0x23: {"LW", tyMem},
	0x24: {"LBU", tyMem},
	0x25: {"LHU", tyMem},
	0x28: {"SB", tyMem},
	0x29: {"SH", tyMem},
	0x2b: {"SW", tyMem},
}

var special = map[uint32]opcode{
	0x00: {"SLL", tyShift},
	0x02: {"SRL", tyShift},
	0x03: {"SRA", tyShift},
	0x04: {"SLLV", tyShiftVar},
	0x06: {"SRLV", tyShiftVar},
	0x07: {"SRAV", tyShiftVar},
	0x08: {"JR", tyJumpReg},
	0x09: {"JALR", tyJumpReg},
	0x0d: {"BREAK", tyNone},
	0x20: {"ADD", tyRegRegReg},
	0x21: {"ADDU", tyRegRegReg},
	0x22: {"SUB", tyRegRegReg},
	0x23: {"SUBU", tyRegRegReg},
	0x24: {"AND", tyRegRegReg},
	0x25: {"OR", tyRegRegReg},
	0x26: {"XOR", tyRegRegReg},
	0x27: {"NOR", tyRegRegReg},
	0x2a: {"SLT", tyRegRegReg},
	0x2b: {"SLTU", tyRegRegReg},
}

var regimm = map[uint32]string{
	0x00: "BLTZ",
	0x01: "BGEZ",
	0x10: "BLTZAL",
	0x11: "BGEZAL",
}

var vector = map[uint32]opcode{
	0x00: {"VMULF", tyVector},
	0x01: {"VMULU", tyVector},
	0x04: {"VMUDL", tyVector},
	0x05: {"VMUDM", tyVector},
	0x06: {"VMUDN", tyVector},
	0x07: {"VMUDH", tyVector},
	0x08: {"VMACF", tyVector},
	0x09: {"VMACU", tyVector},
	0x0c: {"VMADL", tyVector},
	0x0d: {"VMADM", tyVector},
	0x0e: {"VMADN", tyVector},
	0x0f: {"VMADH", tyVector},
	0x10: {"VADD", tyVector},
	0x11: {"VSUB", tyVector},
	0x13: {"VABS", tyVector},
	0x14: {"VADDC", tyVector},
	0x15: {"VSUBC", tyVector},
	0x1d: {"VSAR", tyVector},
	0x20: {"VLT", tyVector},
	0x21: {"VEQ", tyVector},
	0x22: {"VNE", tyVector},
	0x23: {"VGE", tyVector},
	0x24: {"VCL", tyVector},
	0x25: {"VCH", tyVector},
	0x26: {"VCR", tyVector},
	0x27: {"VMRG", tyVector},
	0x28: {"VAND", tyVector},
	0x29: {"VNAND", tyVector},
	0x2a: {"VOR", tyVector},
	0x2b: {"VNOR", tyVector},
	0x2c: {"VXOR", tyVector},
	0x2d: {"VXNOR", tyVector},
	0x30: {"VRCP", tyVectorLane},
	0x31: {"VRCPL", tyVectorLane},
	0x32: {"VRCPH", tyVectorLane},
	0x33: {"VMOV", tyVectorLane},
	0x34: {"VRSQ", tyVectorLane},
	0x35: {"VRSQL", tyVectorLane},
	0x36: {"VRSQH", tyVectorLane},
	0x37: {"VNOP", tyNone},
}

var vecLoad = map[uint32]string{
	0x00: "LBV", 0x01: "LSV", 0x02: "LLV", 0x03: "LDV",
	0x04: "LQV", 0x05: "LRV", 0x06: "LPV", 0x07: "LUV",
	0x08: "LHV", 0x09: "LFV", 0x0b: "LTV",
}

var vecStore = map[uint32]string{
	0x00: "SBV", 0x01: "SSV", 0x02: "SLV", 0x03: "SDV",
	0x04: "SQV", 0x05: "SRV", 0x06: "SPV", 0x07: "SUV",
	0x08: "SHV", 0x09: "SFV", 0x0a: "SWV", 0x0b: "STV",
}

var cop0Names = [16]string{
	"SP_MEM_ADDR", "SP_DRAM_ADDR", "SP_RD_LEN", "SP_WR_LEN",
	"SP_STATUS", "SP_DMA_FULL", "SP_DMA_BUSY", "SP_SEMAPHORE",
	"DPC_START", "DPC_END", "DPC_CURRENT", "DPC_STATUS",
	"DPC_CLOCK", "DPC_BUFBUSY", "DPC_PIPEBUSY", "DPC_TMEM",
}

// Disassemble renders one instruction word as RSP assembly. Reserved
// encodings come back as NOP, which is what the hardware executes.
func Disassemble(inst uint32) string {
	if inst == 0 {
		return "NOP"
	}

	op := inst >> 26
	rs := inst >> 21 & 0x1f
	rt := inst >> 16 & 0x1f
	rd := inst >> 11 & 0x1f
	sa := inst >> 6 & 0x1f
	fn := inst & 0x3f
	imm := int32(int16(inst))
	e := inst >> 7 & 0xf

	switch op {
	case 0x00:
		o, ok := special[fn]
		if !ok {
			return "NOP"
		}
		return formatScalar(o, rs, rt, rd, sa, imm)
	case 0x01:
		name, ok := regimm[rt]
		if !ok {
			return "NOP"
		}
		return fmt.Sprintf("%s $%d, %d", name, rs, imm)
	case 0x10:
		switch rs {
		case 0x00:
			return fmt.Sprintf("MFC0 $%d, %s", rt, cop0Names[rd&0xf])
		case 0x04:
			return fmt.Sprintf("MTC0 $%d, %s", rt, cop0Names[rd&0xf])
		}
		return "NOP"
	case 0x12:
		return disCop2(inst, rs, rt, rd, sa, e)
	case 0x32:
		name, ok := vecLoad[rd]
		if !ok {
			return "NOP"
		}
		return fmt.Sprintf("%s $v%d[%d], %d($%d)", name, rt, e, signed7(inst), rs)
	case 0x3a:
		name, ok := vecStore[rd]
		if !ok {
			return "NOP"
		}
		return fmt.Sprintf("%s $v%d[%d], %d($%d)", name, rt, e, signed7(inst), rs)
	}

	o, ok := primary[op]
	if !ok {
		return "NOP"
	}
	return formatPrimary(o, inst, rs, rt, imm)
}

func signed7(inst uint32) int32 {
	off := int32(inst & 0x7f)
	if off&0x40 != 0 {
		off -= 0x80
	}
	return off
}

func formatScalar(o opcode, rs, rt, rd, sa uint32, _ int32) string {
	switch o.ty {
	case tyRegRegReg:
		return fmt.Sprintf("%s $%d, $%d, $%d", o.name, rd, rs, rt)
	case tyShift:
		return fmt.Sprintf("%s $%d, $%d, %d", o.name, rd, rt, sa)
	case tyShiftVar:
		return fmt.Sprintf("%s $%d, $%d, $%d", o.name, rd, rt, rs)
	case tyJumpReg:
		return fmt.Sprintf("%s $%d", o.name, rs)
	default:
		return o.name
	}
}

func formatPrimary(o opcode, inst, rs, rt uint32, imm int32) string {
	switch o.ty {
	case tyJump:
		return fmt.Sprintf("%s 0x%03x", o.name, inst&0x03ffffff<<2&0xfff)
	case tyBranch2:
		return fmt.Sprintf("%s $%d, $%d, %d", o.name, rs, rt, imm)
	case tyBranch1:
		return fmt.Sprintf("%s $%d, %d", o.name, rs, imm)
	case tyRegRegImm:
		return fmt.Sprintf("%s $%d, $%d, %d", o.name, rt, rs, imm)
	case tyRegImm:
		return fmt.Sprintf("%s $%d, 0x%04x", o.name, rt, uint16(imm))
	case tyMem:
		return fmt.Sprintf("%s $%d, %d($%d)", o.name, rt, imm, rs)
	default:
		return o.name
	}
}

func disCop2(inst, rs, rt, rd, sa, e uint32) string {
	if inst&(1<<25) != 0 {
		o, ok := vector[inst&0x3f]
		if !ok {
			return "NOP"
		}
		switch o.ty {
		case tyVector:
			return fmt.Sprintf("%s $v%d, $v%d, $v%d[%d]", o.name, sa, rd, rt, inst>>21&0xf)
		case tyVectorLane:
			return fmt.Sprintf("%s $v%d[%d], $v%d[%d]", o.name, sa, rd&7, rt, inst>>21&0xf)
		default:
			return o.name
		}
	}
	switch rs {
	case 0x00:
		return fmt.Sprintf("MFC2 $%d, $v%d[%d]", rt, rd, e)
	case 0x02:
		return fmt.Sprintf("CFC2 $%d, $c%d", rt, rd&3)
	case 0x04:
		return fmt.Sprintf("MTC2 $%d, $v%d[%d]", rt, rd, e)
	case 0x06:
		return fmt.Sprintf("CTC2 $%d, $c%d", rt, rd&3)
	}
	return "NOP"
}
