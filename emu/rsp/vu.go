/*
 * RSP64 - Vector unit: flags, accumulator and the single-cycle ops.
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

// Broadcast patterns for the four-bit element selector: identity,
// quarters, halves, then a single lane to every lane. Precomputed once
// instead of re-deriving masks per lane per instruction.
var elemMap [16][8]int

func init() {
	for e := 0; e < 16; e++ {
		for i := 0; i < 8; i++ {
			switch {
			case e < 2:
				elemMap[e][i] = i
			case e < 4:
				elemMap[e][i] = e&1 + i&0xe
			case e < 8:
				elemMap[e][i] = e&3 + i&0xc
			default:
				elemMap[e][i] = e & 7
			}
		}
	}
}

// vecSource applies the element selector to VT.
func (r *RSP) vecSource(vt, e int) [8]int16 {
	var st [8]int16
	src := &r.vr[vt]
	for i, lane := range elemMap[e] {
		st[i] = src[lane]
	}
	return st
}

// Byte view of a vector register. Byte 0 is the high byte of lane 0,
// which is how microcode sees the register in memory.
func (r *RSP) vrByte(v, b int) uint8 {
	lane := r.vr[v][b>>1&7]
	if b&1 == 0 {
		return uint8(uint16(lane) >> 8)
	}
	return uint8(lane)
}

func (r *RSP) setVRByte(v, b int, value uint8) {
	lane := uint16(r.vr[v][b>>1&7])
	if b&1 == 0 {
		lane = lane&0x00ff | uint16(value)<<8
	} else {
		lane = lane&0xff00 | uint16(value)
	}
	r.vr[v][b>>1&7] = int16(lane)
}

/* Accumulator. One int64 per lane, always sign extended from bit 47.
   The H/M/L slices are pure views. */

func (r *RSP) accSet(i int, value int64) {
	r.acc[i] = value << 16 >> 16
}

func (r *RSP) accSetLow(i int, value int16) {
	r.acc[i] = r.acc[i]&^0xffff | int64(uint16(value))
}

func accHigh(a int64) int16 { return int16(a >> 32) }
func accMid(a int64) int16  { return int16(a >> 16) }
func accLow(a int64) int16  { return int16(a) }

// clampSigned saturates the upper 32 accumulator bits to a signed
// 16-bit result.
func clampSigned(a int64) int16 {
	hi, mid := accHigh(a), accMid(a)
	if hi < 0 {
		if hi != -1 || mid >= 0 {
			return -0x8000
		}
		return mid
	}
	if hi != 0 || mid < 0 {
		return 0x7fff
	}
	return mid
}

// clampUnsigned saturates the same bits to 0..0xFFFF, reading out the
// middle slice.
func clampUnsigned(a int64) int16 {
	hi, mid := accHigh(a), accMid(a)
	if hi < 0 {
		return 0
	}
	if hi != 0 || mid < 0 {
		return -1
	}
	return mid
}

// clampLow saturates to the low slice: out-of-range accumulators pin to
// 0x0000 below and 0xFFFF above.
func clampLow(a int64) int16 {
	hi, mid := accHigh(a), accMid(a)
	if hi < 0 {
		if hi != -1 || mid >= 0 {
			return 0
		}
		return accLow(a)
	}
	if hi != 0 || mid < 0 {
		return -1
	}
	return accLow(a)
}

/* Flag registers, packed on demand. */

func packFlags(low, high [8]bool) uint16 {
	var v uint16
	for i := 0; i < 8; i++ {
		if low[i] {
			v |= 1 << i
		}
		if high[i] {
			v |= 1 << (i + 8)
		}
	}
	return v
}

func unpackFlags(v uint16, low, high *[8]bool) {
	for i := 0; i < 8; i++ {
		low[i] = v&(1<<i) != 0
		high[i] = v&(1<<(i+8)) != 0
	}
}

// VCO returns carry/borrow in the low byte, not-equal in the high byte.
func (r *RSP) VCO() uint16 {
	return packFlags(r.vcoCarry, r.vcoNe)
}

// VCC returns compare in the low byte, clip in the high byte.
func (r *RSP) VCC() uint16 {
	return packFlags(r.vccComp, r.vccClip)
}

// VCE returns the eight compare-extension bits.
func (r *RSP) VCE() uint8 {
	var v uint8
	for i := 0; i < 8; i++ {
		if r.vce[i] {
			v |= 1 << i
		}
	}
	return v
}

func (r *RSP) SetVCO(v uint16) {
	unpackFlags(v, &r.vcoCarry, &r.vcoNe)
}

func (r *RSP) SetVCC(v uint16) {
	unpackFlags(v, &r.vccComp, &r.vccClip)
}

func (r *RSP) SetVCE(v uint8) {
	for i := 0; i < 8; i++ {
		r.vce[i] = v&(1<<i) != 0
	}
}

func (r *RSP) clearVCO() {
	r.vcoCarry = [8]bool{}
	r.vcoNe = [8]bool{}
}

func (r *RSP) clearVCE() {
	r.vce = [8]bool{}
}

/* COP2 moves. */

// mfc2 reads a 16-bit slice of a vector register starting at byte e.
func (r *RSP) mfc2(rt, vs, e int) {
	v := uint16(r.vrByte(vs, e&0xf))<<8 | uint16(r.vrByte(vs, (e+1)&0xf))
	r.setSR(rt, uint32(int32(int16(v))))
}

// mtc2 writes the low 16 bits of a scalar register at byte e.
func (r *RSP) mtc2(rt, vd, e int) {
	r.setVRByte(vd, e&0xf, uint8(r.sr[rt]>>8))
	r.setVRByte(vd, (e+1)&0xf, uint8(r.sr[rt]))
}

func (r *RSP) cfc2(rt, rd int) {
	switch rd & 3 {
	case 0:
		r.setSR(rt, uint32(int32(int16(r.VCO()))))
	case 1:
		r.setSR(rt, uint32(int32(int16(r.VCC()))))
	default:
		r.setSR(rt, uint32(r.VCE()))
	}
}

func (r *RSP) ctc2(rt, rd int) {
	v := r.sr[rt]
	switch rd & 3 {
	case 0:
		r.SetVCO(uint16(v))
	case 1:
		r.SetVCC(uint16(v))
	default:
		r.SetVCE(uint8(v))
	}
}

// Vector dispatch table. Reserved functions stay NOP.
func (r *RSP) createVecTables() {
	for i := range r.vecTable {
		r.vecTable[i] = (*RSP).vecNop
	}
	r.vecTable[vfVMULF] = (*RSP).vmulf
	r.vecTable[vfVMULU] = (*RSP).vmulu
	r.vecTable[vfVMUDL] = (*RSP).vmudl
	r.vecTable[vfVMUDM] = (*RSP).vmudm
	r.vecTable[vfVMUDN] = (*RSP).vmudn
	r.vecTable[vfVMUDH] = (*RSP).vmudh
	r.vecTable[vfVMACF] = (*RSP).vmacf
	r.vecTable[vfVMACU] = (*RSP).vmacu
	r.vecTable[vfVMADL] = (*RSP).vmadl
	r.vecTable[vfVMADM] = (*RSP).vmadm
	r.vecTable[vfVMADN] = (*RSP).vmadn
	r.vecTable[vfVMADH] = (*RSP).vmadh
	r.vecTable[vfVADD] = (*RSP).vadd
	r.vecTable[vfVSUB] = (*RSP).vsub
	r.vecTable[vfVABS] = (*RSP).vabs
	r.vecTable[vfVADDC] = (*RSP).vaddc
	r.vecTable[vfVSUBC] = (*RSP).vsubc
	r.vecTable[vfVSAR] = (*RSP).vsar
	r.vecTable[vfVLT] = (*RSP).vlt
	r.vecTable[vfVEQ] = (*RSP).veq
	r.vecTable[vfVNE] = (*RSP).vne
	r.vecTable[vfVGE] = (*RSP).vge
	r.vecTable[vfVCL] = (*RSP).vcl
	r.vecTable[vfVCH] = (*RSP).vch
	r.vecTable[vfVCR] = (*RSP).vcr
	r.vecTable[vfVMRG] = (*RSP).vmrg
	r.vecTable[vfVAND] = (*RSP).vand
	r.vecTable[vfVNAND] = (*RSP).vnand
	r.vecTable[vfVOR] = (*RSP).vor
	r.vecTable[vfVNOR] = (*RSP).vnor
	r.vecTable[vfVXOR] = (*RSP).vxor
	r.vecTable[vfVXNOR] = (*RSP).vxnor
	r.vecTable[vfVRCP] = (*RSP).vrcp
	r.vecTable[vfVRCPL] = (*RSP).vrcpl
	r.vecTable[vfVRCPH] = (*RSP).vrcph
	r.vecTable[vfVMOV] = (*RSP).vmov
	r.vecTable[vfVRSQ] = (*RSP).vrsq
	r.vecTable[vfVRSQL] = (*RSP).vrsql
	r.vecTable[vfVRSQH] = (*RSP).vrsqh
	r.vecTable[vfVNOP] = (*RSP).vecNop

	r.createLoadStoreTables()
}

func (r *RSP) vecNop(int, int, int, int) {}

/* Add and subtract with carry. */

// vaddc writes the raw 16-bit sums and records the carry out of each
// lane in VCO. The not-equal half clears.
func (r *RSP) vaddc(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		sum := uint32(uint16(r.vr[vs][i])) + uint32(uint16(st[i]))
		r.accSetLow(i, int16(sum))
		r.vr[vd][i] = int16(sum)
		r.vcoCarry[i] = sum>>16 != 0
		r.vcoNe[i] = false
	}
}

// vsubc records borrow and inequality of the unsigned operands in VCO.
func (r *RSP) vsubc(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		s, t := uint16(r.vr[vs][i]), uint16(st[i])
		diff := s - t
		r.accSetLow(i, int16(diff))
		r.vr[vd][i] = int16(diff)
		r.vcoCarry[i] = s < t
		r.vcoNe[i] = s != t
	}
}

// vadd consumes the VCO carry, clamps the 17-bit sum and clears the
// carry state.
func (r *RSP) vadd(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		carry := int32(0)
		if r.vcoCarry[i] {
			carry = 1
		}
		sum := int32(r.vr[vs][i]) + int32(st[i]) + carry
		r.accSetLow(i, int16(sum))
		r.vr[vd][i] = clamp32(sum)
	}
	r.clearVCO()
	r.clearVCE()
}

func (r *RSP) vsub(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		borrow := int32(0)
		if r.vcoCarry[i] {
			borrow = 1
		}
		diff := int32(r.vr[vs][i]) - int32(st[i]) - borrow
		r.accSetLow(i, int16(diff))
		r.vr[vd][i] = clamp32(diff)
	}
	r.clearVCO()
	r.clearVCE()
}

// clamp32 saturates a 17-bit intermediate to 16 bits.
func clamp32(v int32) int16 {
	if v < -0x8000 {
		return -0x8000
	}
	if v > 0x7fff {
		return 0x7fff
	}
	return int16(v)
}

// vabs applies the sign of VS to VT. Negating 0x8000 saturates in the
// destination but the raw wrap stays in the accumulator.
func (r *RSP) vabs(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		var result int16
		switch {
		case r.vr[vs][i] < 0:
			if st[i] == -0x8000 {
				r.accSetLow(i, -0x8000)
				r.vr[vd][i] = 0x7fff
				continue
			}
			result = -st[i]
		case r.vr[vs][i] > 0:
			result = st[i]
		default:
			result = 0
		}
		r.accSetLow(i, result)
		r.vr[vd][i] = result
	}
}

// vsar reads one accumulator slice; every other selector yields zeros.
func (r *RSP) vsar(vd, vs, vt, e int) {
	for i := 0; i < 8; i++ {
		switch e {
		case 8:
			r.vr[vd][i] = accHigh(r.acc[i])
		case 9:
			r.vr[vd][i] = accMid(r.acc[i])
		case 10:
			r.vr[vd][i] = accLow(r.acc[i])
		default:
			r.vr[vd][i] = 0
		}
	}
}

/* Bitwise ops. */

func (r *RSP) vand(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		v := r.vr[vs][i] & st[i]
		r.accSetLow(i, v)
		r.vr[vd][i] = v
	}
}

func (r *RSP) vnand(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		v := ^(r.vr[vs][i] & st[i])
		r.accSetLow(i, v)
		r.vr[vd][i] = v
	}
}

func (r *RSP) vor(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		v := r.vr[vs][i] | st[i]
		r.accSetLow(i, v)
		r.vr[vd][i] = v
	}
}

func (r *RSP) vnor(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		v := ^(r.vr[vs][i] | st[i])
		r.accSetLow(i, v)
		r.vr[vd][i] = v
	}
}

func (r *RSP) vxor(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		v := r.vr[vs][i] ^ st[i]
		r.accSetLow(i, v)
		r.vr[vd][i] = v
	}
}

func (r *RSP) vxnor(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		v := ^(r.vr[vs][i] ^ st[i])
		r.accSetLow(i, v)
		r.vr[vd][i] = v
	}
}

/* Select compares. Each writes its winner per lane into ACC_L and the
   destination, then drops the carry state. */

func (r *RSP) vlt(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		s, t := r.vr[vs][i], st[i]
		comp := s < t || (s == t && r.vcoCarry[i] && r.vcoNe[i])
		r.vccComp[i] = comp
		r.vccClip[i] = false
		winner := t
		if comp {
			winner = s
		}
		r.accSetLow(i, winner)
		r.vr[vd][i] = winner
	}
	r.clearVCO()
	r.clearVCE()
}

func (r *RSP) veq(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		s, t := r.vr[vs][i], st[i]
		r.vccComp[i] = s == t && !r.vcoNe[i]
		r.vccClip[i] = false
		r.accSetLow(i, t)
		r.vr[vd][i] = t
	}
	r.clearVCO()
	r.clearVCE()
}

func (r *RSP) vne(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		s, t := r.vr[vs][i], st[i]
		r.vccComp[i] = s != t || r.vcoNe[i]
		r.vccClip[i] = false
		r.accSetLow(i, s)
		r.vr[vd][i] = s
	}
	r.clearVCO()
	r.clearVCE()
}

func (r *RSP) vge(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		s, t := r.vr[vs][i], st[i]
		comp := s > t || (s == t && !(r.vcoCarry[i] && r.vcoNe[i]))
		r.vccComp[i] = comp
		r.vccClip[i] = false
		winner := t
		if comp {
			winner = s
		}
		r.accSetLow(i, winner)
		r.vr[vd][i] = winner
	}
	r.clearVCO()
	r.clearVCE()
}

// vmrg picks VS or VT per lane on the last compare result.
func (r *RSP) vmrg(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		v := st[i]
		if r.vccComp[i] {
			v = r.vr[vs][i]
		}
		r.accSetLow(i, v)
		r.vr[vd][i] = v
	}
	r.clearVCO()
	r.clearVCE()
}

/* Clip compares used by triangle setup. VCH seeds the flag state, VCL
   refines it against the low halves, VCR is the one's-complement form. */

func (r *RSP) vch(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		s, t := r.vr[vs][i], st[i]
		if s^t < 0 {
			sum := int32(s) + int32(t)
			le := sum <= 0
			r.vccComp[i] = le
			r.vccClip[i] = t < 0
			r.vcoCarry[i] = true
			r.vcoNe[i] = sum != 0 && s != ^t
			r.vce[i] = sum == -1
			winner := s
			if le {
				winner = -t
			}
			r.accSetLow(i, winner)
			r.vr[vd][i] = winner
		} else {
			diff := int32(s) - int32(t)
			ge := diff >= 0
			r.vccComp[i] = t < 0
			r.vccClip[i] = ge
			r.vcoCarry[i] = false
			r.vcoNe[i] = diff != 0 && s != ^t
			r.vce[i] = false
			winner := s
			if ge {
				winner = t
			}
			r.accSetLow(i, winner)
			r.vr[vd][i] = winner
		}
	}
}

func (r *RSP) vcl(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		s, t := uint16(r.vr[vs][i]), uint16(st[i])
		if r.vcoCarry[i] {
			if !r.vcoNe[i] {
				sum := uint32(s) + uint32(t)
				carry := sum>>16 != 0
				nonzero := sum&0xffff != 0
				if r.vce[i] {
					r.vccComp[i] = !nonzero || !carry
				} else {
					r.vccComp[i] = !nonzero && !carry
				}
			}
			winner := int16(s)
			if r.vccComp[i] {
				winner = -int16(t)
			}
			r.accSetLow(i, winner)
			r.vr[vd][i] = winner
		} else {
			if !r.vcoNe[i] {
				r.vccClip[i] = s >= t
			}
			winner := int16(s)
			if r.vccClip[i] {
				winner = int16(t)
			}
			r.accSetLow(i, winner)
			r.vr[vd][i] = winner
		}
	}
	r.clearVCO()
	r.clearVCE()
}

func (r *RSP) vcr(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		s, t := r.vr[vs][i], st[i]
		if s^t < 0 {
			le := int32(s)+int32(t)+1 <= 0
			r.vccComp[i] = le
			r.vccClip[i] = t < 0
			winner := s
			if le {
				winner = ^t
			}
			r.accSetLow(i, winner)
			r.vr[vd][i] = winner
		} else {
			ge := int32(s)-int32(t) >= 0
			r.vccComp[i] = t < 0
			r.vccClip[i] = ge
			winner := s
			if ge {
				winner = t
			}
			r.accSetLow(i, winner)
			r.vr[vd][i] = winner
		}
	}
	r.clearVCO()
	r.clearVCE()
}
