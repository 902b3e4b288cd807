/*
 * RSP64 - Vector multiply and multiply-accumulate family.
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

/*
   Naming follows the hardware: MUD loads the accumulator, MAD/MAC
   adds to it. The suffix gives the operand treatment: L is unsigned
   times unsigned scaled down, M is signed times unsigned, N is unsigned
   times signed, H is signed times signed scaled up. VMULF/VMULU are the
   signed fraction forms with the rounding bias. Products are computed
   wide and folded into the 48-bit accumulator, so the high slice picks
   up the sign extension for free.
*/

func (r *RSP) vmulf(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		a := int64(r.vr[vs][i])*int64(st[i])*2 + 0x8000
		r.accSet(i, a)
		r.vr[vd][i] = clampSigned(r.acc[i])
	}
}

func (r *RSP) vmulu(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		a := int64(r.vr[vs][i])*int64(st[i])*2 + 0x8000
		r.accSet(i, a)
		r.vr[vd][i] = clampUnsigned(r.acc[i])
	}
}

func (r *RSP) vmudl(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		a := int64(uint64(uint16(r.vr[vs][i])) * uint64(uint16(st[i])) >> 16)
		r.accSet(i, a)
		r.vr[vd][i] = accLow(r.acc[i])
	}
}

func (r *RSP) vmudm(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		a := int64(r.vr[vs][i]) * int64(uint16(st[i]))
		r.accSet(i, a)
		r.vr[vd][i] = accMid(r.acc[i])
	}
}

func (r *RSP) vmudn(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		a := int64(uint16(r.vr[vs][i])) * int64(st[i])
		r.accSet(i, a)
		r.vr[vd][i] = accLow(r.acc[i])
	}
}

func (r *RSP) vmudh(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		a := int64(r.vr[vs][i]) * int64(st[i]) << 16
		r.accSet(i, a)
		r.vr[vd][i] = clampSigned(r.acc[i])
	}
}

func (r *RSP) vmacf(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		r.accSet(i, r.acc[i]+int64(r.vr[vs][i])*int64(st[i])*2)
		r.vr[vd][i] = clampSigned(r.acc[i])
	}
}

func (r *RSP) vmacu(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		r.accSet(i, r.acc[i]+int64(r.vr[vs][i])*int64(st[i])*2)
		r.vr[vd][i] = clampUnsigned(r.acc[i])
	}
}

func (r *RSP) vmadl(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		p := int64(uint64(uint16(r.vr[vs][i])) * uint64(uint16(st[i])) >> 16)
		r.accSet(i, r.acc[i]+p)
		r.vr[vd][i] = clampLow(r.acc[i])
	}
}

func (r *RSP) vmadm(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		r.accSet(i, r.acc[i]+int64(r.vr[vs][i])*int64(uint16(st[i])))
		r.vr[vd][i] = clampSigned(r.acc[i])
	}
}

func (r *RSP) vmadn(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		r.accSet(i, r.acc[i]+int64(uint16(r.vr[vs][i]))*int64(st[i]))
		r.vr[vd][i] = clampLow(r.acc[i])
	}
}

func (r *RSP) vmadh(vd, vs, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		r.accSet(i, r.acc[i]+int64(r.vr[vs][i])*int64(st[i])<<16)
		r.vr[vd][i] = clampSigned(r.acc[i])
	}
}
