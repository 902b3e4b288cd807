/*
 * RSP64 - Vector loads and stores (LWC2/SWC2).
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
   The element field is the starting byte inside the vector register;
   bytes wrap modulo 16 in the register and modulo 4096 in DMEM, so no
   combination of element and address can fault. The offset scales by a
   per-opcode stride before it reaches the effective address.
*/

func (r *RSP) createLoadStoreTables() {
	for i := range r.lwc2Table {
		r.lwc2Table[i] = (*RSP).lswNop
		r.swc2Table[i] = (*RSP).lswNop
	}
	r.lwc2Table[lsBV] = (*RSP).loadByteVec
	r.lwc2Table[lsSV] = (*RSP).loadShortVec
	r.lwc2Table[lsLV] = (*RSP).loadLongVec
	r.lwc2Table[lsDV] = (*RSP).loadDoubleVec
	r.lwc2Table[lsQV] = (*RSP).loadQuadVec
	r.lwc2Table[lsRV] = (*RSP).loadRestVec
	r.lwc2Table[lsPV] = (*RSP).loadPackedVec
	r.lwc2Table[lsUV] = (*RSP).loadUnsignedPackedVec
	r.lwc2Table[lsHV] = (*RSP).loadHalfPackedVec
	r.lwc2Table[lsFV] = (*RSP).loadFourthVec
	r.lwc2Table[lsTV] = (*RSP).loadTransposeVec

	r.swc2Table[lsBV] = (*RSP).storeByteVec
	r.swc2Table[lsSV] = (*RSP).storeShortVec
	r.swc2Table[lsLV] = (*RSP).storeLongVec
	r.swc2Table[lsDV] = (*RSP).storeDoubleVec
	r.swc2Table[lsQV] = (*RSP).storeQuadVec
	r.swc2Table[lsRV] = (*RSP).storeRestVec
	r.swc2Table[lsPV] = (*RSP).storePackedVec
	r.swc2Table[lsUV] = (*RSP).storeUnsignedPackedVec
	r.swc2Table[lsHV] = (*RSP).storeHalfPackedVec
	r.swc2Table[lsFV] = (*RSP).storeFourthVec
	r.swc2Table[lsWV] = (*RSP).storeWrappedVec
	r.swc2Table[lsTV] = (*RSP).storeTransposeVec
}

// Reserved minor opcode: no transfer.
func (r *RSP) lswNop(int, int, int32, uint32) {}

func lswAddr(base uint32, offset int32, stride int32) uint32 {
	return uint32(int32(base)+offset*stride) & spmem.AddrMask
}

/* Group I: 1, 2, 4 and 8 byte transfers starting at byte e. */

func (r *RSP) loadGroupI(vt, e int, addr uint32, count int) {
	for i := 0; i < count; i++ {
		r.setVRByte(vt, (e+i)&0xf, r.dmem.Byte(addr+uint32(i)))
	}
}

func (r *RSP) storeGroupI(vt, e int, addr uint32, count int) {
	for i := 0; i < count; i++ {
		r.dmem.SetByte(addr+uint32(i), r.vrByte(vt, (e+i)&0xf))
	}
}

func (r *RSP) loadByteVec(vt, e int, offset int32, base uint32) {
	r.loadGroupI(vt, e, lswAddr(base, offset, 1), 1)
}

func (r *RSP) loadShortVec(vt, e int, offset int32, base uint32) {
	r.loadGroupI(vt, e, lswAddr(base, offset, 2), 2)
}

func (r *RSP) loadLongVec(vt, e int, offset int32, base uint32) {
	r.loadGroupI(vt, e, lswAddr(base, offset, 4), 4)
}

func (r *RSP) loadDoubleVec(vt, e int, offset int32, base uint32) {
	r.loadGroupI(vt, e, lswAddr(base, offset, 8), 8)
}

func (r *RSP) storeByteVec(vt, e int, offset int32, base uint32) {
	r.storeGroupI(vt, e, lswAddr(base, offset, 1), 1)
}

func (r *RSP) storeShortVec(vt, e int, offset int32, base uint32) {
	r.storeGroupI(vt, e, lswAddr(base, offset, 2), 2)
}

func (r *RSP) storeLongVec(vt, e int, offset int32, base uint32) {
	r.storeGroupI(vt, e, lswAddr(base, offset, 4), 4)
}

func (r *RSP) storeDoubleVec(vt, e int, offset int32, base uint32) {
	r.storeGroupI(vt, e, lswAddr(base, offset, 8), 8)
}

/* Group II: packed bytes, one per lane, scaled into the high bits. */

func (r *RSP) loadPacked(vt, e int, addr uint32, shift uint) {
	index := int(addr&7) - e
	addr &^= 7
	for i := 0; i < 8; i++ {
		b := r.dmem.Byte(addr + uint32((index+i)&0xf))
		r.vr[vt][i] = int16(uint16(b) << shift)
	}
}

func (r *RSP) loadPackedVec(vt, e int, offset int32, base uint32) {
	r.loadPacked(vt, e, lswAddr(base, offset, 8), 8)
}

func (r *RSP) loadUnsignedPackedVec(vt, e int, offset int32, base uint32) {
	r.loadPacked(vt, e, lswAddr(base, offset, 8), 7)
}

// storePacked writes one byte per lane. Lanes past the low half of the
// rotated element range cross over to the other packing shift, which is
// how SPV and SUV mirror each other on hardware.
func (r *RSP) storePacked(vt, e int, addr uint32, shift uint) {
	for i := 0; i < 8; i++ {
		el := e + i
		var b uint8
		if el&0xf < 8 {
			b = uint8(uint16(r.vr[vt][el&7]) >> shift)
		} else {
			b = uint8(uint16(r.vr[vt][el&7]) >> (15 - shift))
		}
		r.dmem.SetByte(addr+uint32(i), b)
	}
}

func (r *RSP) storePackedVec(vt, e int, offset int32, base uint32) {
	r.storePacked(vt, e, lswAddr(base, offset, 8), 8)
}

func (r *RSP) storeUnsignedPackedVec(vt, e int, offset int32, base uint32) {
	r.storePacked(vt, e, lswAddr(base, offset, 8), 7)
}

/* Group III: every other byte across a 16-byte span. */

func (r *RSP) loadHalfPackedVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	index := int(addr&7) - e
	addr &^= 7
	for i := 0; i < 8; i++ {
		b := r.dmem.Byte(addr + uint32((index+i*2)&0xf))
		r.vr[vt][i] = int16(uint16(b) << 7)
	}
}

func (r *RSP) storeHalfPackedVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	index := addr & 7
	addr &^= 7
	for i := 0; i < 8; i++ {
		b := e + i*2
		v := r.vrByte(vt, b&0xf)<<1 | r.vrByte(vt, (b+1)&0xf)>>7
		r.dmem.SetByte(addr+(index+uint32(i)*2)&0xf, v)
	}
}

// Fourth-vector forms: four lanes at stride four. Documented, unused by
// shipped microcode, kept for completeness.
func (r *RSP) loadFourthVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	index := int(addr&7) - e
	addr &^= 7
	start := e >> 1
	for i := start; i < start+4; i++ {
		b := r.dmem.Byte(addr + uint32((index+i*4)&0xf))
		r.vr[vt][i&7] = int16(uint16(b) << 7)
	}
}

func (r *RSP) storeFourthVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	index := addr & 7
	addr &^= 7
	start := e >> 1
	for i := 0; i < 4; i++ {
		v := uint8(uint16(r.vr[vt][(start+i)&7]) >> 7)
		r.dmem.SetByte(addr+(index+uint32(i)*4)&0xf, v)
	}
}

/* Group IV: quadword transfers bounded by the 16-byte line. */

// loadQuadVec fills from the effective address up to the next line
// boundary; the rest of the register keeps its old bytes.
func (r *RSP) loadQuadVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	count := 16 - int(addr&15)
	for i := 0; i < count && e+i < 16; i++ {
		r.setVRByte(vt, e+i, r.dmem.Byte(addr+uint32(i)))
	}
}

// loadRestVec fills the tail of the register from the previous line
// boundary up to the effective address.
func (r *RSP) loadRestVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	count := int(addr & 15)
	addr &^= 15
	for i := 0; i < count; i++ {
		r.setVRByte(vt, (16-count+i+e)&0xf, r.dmem.Byte(addr+uint32(i)))
	}
}

func (r *RSP) storeQuadVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	count := 16 - int(addr&15)
	for i := 0; i < count; i++ {
		r.dmem.SetByte(addr+uint32(i), r.vrByte(vt, (e+i)&0xf))
	}
}

func (r *RSP) storeRestVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	count := int(addr & 15)
	addr &^= 15
	for i := 0; i < count; i++ {
		r.dmem.SetByte(addr+uint32(i), r.vrByte(vt, (16-count+i+e)&0xf))
	}
}

/* Group V: transposed transfers across eight registers. */

// loadTransposeVec distributes eight halfwords diagonally across the
// register group, the load half of the matrix transpose idiom.
func (r *RSP) loadTransposeVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	begin := addr &^ 7
	addr = begin + (uint32(e)+(addr&8))&0xf
	vtBase := vt &^ 7
	vtOff := e >> 1
	for i := 0; i < 8; i++ {
		hi := r.dmem.Byte(addr)
		addr++
		if addr == begin+16 {
			addr = begin
		}
		lo := r.dmem.Byte(addr)
		addr++
		if addr == begin+16 {
			addr = begin
		}
		r.vr[vtBase+vtOff][i] = int16(uint16(hi)<<8 | uint16(lo))
		vtOff = (vtOff + 1) & 7
	}
}

func (r *RSP) storeTransposeVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	begin := addr &^ 7
	addr = begin + (addr & 8)
	vtBase := vt &^ 7
	element := 8 - (e >> 1)
	for i := 0; i < 8; i++ {
		lane := r.vr[vtBase+i][(element+i)&7]
		r.dmem.SetByte(addr, uint8(uint16(lane)>>8))
		addr++
		if addr == begin+16 {
			addr = begin
		}
		r.dmem.SetByte(addr, uint8(lane))
		addr++
		if addr == begin+16 {
			addr = begin
		}
	}
}

// storeWrappedVec stores all sixteen bytes rotated by the element,
// wrapping inside the 8-byte aligned line.
func (r *RSP) storeWrappedVec(vt, e int, offset int32, base uint32) {
	addr := lswAddr(base, offset, 16)
	index := addr & 7
	addr &^= 7
	for i := 0; i < 16; i++ {
		r.dmem.SetByte(addr+(index+uint32(i))&0xf, r.vrByte(vt, (e+i)&0xf))
	}
}
