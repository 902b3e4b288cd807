/*
 * RSP64 - Vector divide unit: reciprocal and inverse square root.
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

import "math/bits"

// The hardware looks reciprocals up in a 512-entry ROM and rebuilds the
// magnitude from the leading-zero count of the input. The tables below
// reproduce the ROM contents from their closed forms instead of carrying
// a kilobyte of literals.
var (
	rcpROM [512]uint16
	rsqROM [512]uint16
)

func init() {
	for i := uint64(0); i < 512; i++ {
		rcpROM[i] = uint16(((1<<34)/(i+512) + 1) >> 8)

		a := (i + 512) >> (i & 1)
		b := uint64(1) << 17
		// Largest b with b^2 * a < 2^44.
		for a*(b+1)*(b+1) < 1<<44 {
			b++
		}
		rsqROM[i] = uint16(b >> 1)
	}
	// The first reciprocal entry saturates: the true fraction is 2.0,
	// one past what sixteen bits hold.
	rcpROM[0] = 0xffff
}

// divide computes the 32-bit reciprocal or inverse square root of a
// 32-bit input. Zero and the most negative 16-bit input have fixed
// results on the hardware.
func divide(input int32, sqrt bool) int32 {
	mask := input >> 31
	data := input ^ mask
	if input > -0x8000 {
		data -= mask
	}
	if data == 0 {
		return 0x7fffffff
	}
	if uint32(input) == 0xffff8000 {
		var v uint32 = 0xffff0000
		return int32(v)
	}

	shift := bits.LeadingZeros32(uint32(data))
	var result int32
	if !sqrt {
		index := uint64(data) << shift & 0x7fc00000 >> 22
		result = int32(rcpROM[index])
		result = (0x10000 | result) << 14
		result >>= 31 - shift
	} else {
		index := uint64(data)<<shift>>24&0x1fe | uint64(shift&1)
		result = int32(rsqROM[index])
		result = (0x10000 | result) << 14
		result >>= (31 - shift) >> 1
	}
	return result ^ mask
}

// divInput builds the divide operand for the L-form ops: a staged high
// half pairs with the current lane, otherwise the lane sign extends.
func (r *RSP) divInput(lane int16) int32 {
	if r.divInFlag {
		return r.divIn | int32(uint16(lane))
	}
	return int32(lane)
}

// writeDivResult stores the selected VT vector into ACC_L and the result
// lane into the destination, the common tail of every divide op.
func (r *RSP) writeDivResult(vd, de, vt, e int, result int32) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		r.accSetLow(i, st[i])
	}
	r.vr[vd][de&7] = int16(result)
	r.divOut = result
}

func (r *RSP) vrcp(vd, de, vt, e int) {
	input := int32(r.vr[vt][e&7])
	result := divide(input, false)
	r.divInFlag = false
	r.writeDivResult(vd, de, vt, e, result)
}

func (r *RSP) vrcpl(vd, de, vt, e int) {
	input := r.divInput(r.vr[vt][e&7])
	result := divide(input, false)
	r.divInFlag = false
	r.writeDivResult(vd, de, vt, e, result)
}

func (r *RSP) vrsq(vd, de, vt, e int) {
	input := int32(r.vr[vt][e&7])
	result := divide(input, true)
	r.divInFlag = false
	r.writeDivResult(vd, de, vt, e, result)
}

func (r *RSP) vrsql(vd, de, vt, e int) {
	input := r.divInput(r.vr[vt][e&7])
	result := divide(input, true)
	r.divInFlag = false
	r.writeDivResult(vd, de, vt, e, result)
}

// vrcph stages the high half of the next divide input and returns the
// high half of the previous result.
func (r *RSP) vrcph(vd, de, vt, e int) {
	r.divIn = int32(r.vr[vt][e&7]) << 16
	r.divInFlag = true
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		r.accSetLow(i, st[i])
	}
	r.vr[vd][de&7] = int16(r.divOut >> 16)
}

func (r *RSP) vrsqh(vd, de, vt, e int) {
	r.vrcph(vd, de, vt, e)
}

// vmov copies a single selected lane.
func (r *RSP) vmov(vd, de, vt, e int) {
	st := r.vecSource(vt, e)
	for i := 0; i < 8; i++ {
		r.accSetLow(i, st[i])
	}
	r.vr[vd][de&7] = st[de&7]
}
