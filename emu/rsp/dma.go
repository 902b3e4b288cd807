/*
 * RSP64 - DMA engine between SP memory and RDRAM.
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

/*
   A length register encodes one transfer as length | count<<12 | skip<<20.
   The engine moves count+1 rows of length+1 bytes, with skip bytes between
   rows on the RDRAM side only. Row lengths round up to a multiple of 8,
   and both starting addresses are 8-byte aligned, matching the hardware's
   64-bit bus. Transfers complete synchronously inside the MTC0 that
   kicked them off, so the busy bits drop before microcode can see them.
*/

type dmaRequest struct {
	bank    spmem.Bank // IMEM or DMEM
	memOff  uint32
	dramOff uint32
	length  uint32 // Rounded bytes per row.
	count   uint32 // Rows.
	skip    uint32 // RDRAM-side gap between rows.
}

func (r *RSP) dmaSetup(lenReg uint32) dmaRequest {
	var req dmaRequest

	memAddr := *r.cr[crMemAddr]
	req.bank = r.dmem
	if memAddr&0x1000 != 0 {
		req.bank = r.imem
	}
	req.memOff = memAddr & spmem.AddrMask &^ 7
	req.dramOff = *r.cr[crDRAMAddr] & r.dram.MaxAddr() &^ 7
	req.length = (lenReg&0xfff | 7) + 1
	req.count = (lenReg >> 12 & 0xff) + 1
	req.skip = lenReg >> 20 & 0xfff
	return req
}

// dmaRead moves RDRAM into SP memory (SP_DMA_READ).
func (r *RSP) dmaRead() {
	if !r.dram.Valid() {
		r.dmaDone()
		return
	}
	req := r.dmaSetup(*r.cr[crRdLen])
	mem, dram := req.memOff, req.dramOff
	for row := uint32(0); row < req.count; row++ {
		for i := uint32(0); i < req.length; i++ {
			req.bank.SetByte(mem, r.dram.Byte(dram))
			mem++
			dram++
		}
		dram += req.skip
	}
	r.dmaDone()
}

// dmaWrite moves SP memory into RDRAM (SP_DMA_WRITE).
func (r *RSP) dmaWrite() {
	if !r.dram.Valid() {
		r.dmaDone()
		return
	}
	req := r.dmaSetup(*r.cr[crWrLen])
	mem, dram := req.memOff, req.dramOff
	for row := uint32(0); row < req.count; row++ {
		for i := uint32(0); i < req.length; i++ {
			r.dram.SetByte(dram, req.bank.Byte(mem))
			mem++
			dram++
		}
		dram += req.skip
	}
	r.dmaDone()
}

func (r *RSP) dmaDone() {
	*r.cr[crDMABusy] = 0
	*r.cr[crStatus] &^= StatusDMABusy
}
