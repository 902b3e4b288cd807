/*
 * RSP64 - State access for the monitor and the embedding host.
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

import "github.com/openrcp/rsp64/emu/spmem"

// PC returns the address of the next instruction to execute.
func (r *RSP) PC() uint32 {
	return r.pc
}

// SetPC repositions execution. The pipeline restarts, so the delay slot
// of any pending branch is forgotten.
func (r *RSP) SetPC(pc uint32) {
	r.pc = pc & spmem.AddrMask &^ 3
	r.nextPC = (r.pc + 4) & spmem.AddrMask
	if r.host.SPPC != nil {
		*r.host.SPPC = r.pc
	}
}

// Reg returns one scalar register.
func (r *RSP) Reg(num int) uint32 {
	return r.sr[num&0x1f]
}

// SetReg writes one scalar register; register zero stays zero.
func (r *RSP) SetReg(num int, value uint32) {
	r.setSR(num&0x1f, value)
}

// Vec returns one vector register.
func (r *RSP) Vec(num int) [8]int16 {
	return r.vr[num&0x1f]
}

// SetVec writes one vector register.
func (r *RSP) SetVec(num int, value [8]int16) {
	r.vr[num&0x1f] = value
}

// Accum returns the 48-bit accumulator of one lane, sign extended.
func (r *RSP) Accum(lane int) int64 {
	return r.acc[lane&7]
}

// DMEM returns the data memory view.
func (r *RSP) DMEM() spmem.Bank {
	return r.dmem
}

// IMEM returns the instruction memory view.
func (r *RSP) IMEM() spmem.Bank {
	return r.imem
}

// Status returns the current SP_STATUS word.
func (r *RSP) Status() uint32 {
	if r.cr[crStatus] == nil {
		return 0
	}
	return *r.cr[crStatus]
}
