/*
 * RSP64 vector unit test cases.
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

import "testing"

func splat(v int16) [8]int16 {
	return [8]int16{v, v, v, v, v, v, v, v}
}

// Every accumulator lane must stay sign extended from bit 47.
func checkAccExtension(t *testing.T, r *RSP) {
	t.Helper()
	for i, a := range r.acc {
		if a<<16>>16 != a {
			t.Errorf("acc lane %d not sign extended: %012x", i, uint64(a)&0xffffffffffff)
		}
	}
}

func checkFlagsClear(t *testing.T, r *RSP) {
	t.Helper()
	if r.VCO() != 0 {
		t.Errorf("VCO not cleared: %04x", r.VCO())
	}
	if r.VCE() != 0 {
		t.Errorf("VCE not cleared: %02x", r.VCE())
	}
}

func TestVectorMulfClamp(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = splat(0x7fff)
	r.vr[2] = splat(0x7fff)
	r.vmulf(3, 1, 2, 0)
	for i := 0; i < 8; i++ {
		if r.vr[3][i] != 0x7ffe {
			t.Errorf("lane %d got %04x want 7ffe", i, uint16(r.vr[3][i]))
		}
		if accMid(r.acc[i]) != 0x7ffe {
			t.Errorf("acc mid lane %d got %04x", i, uint16(accMid(r.acc[i])))
		}
	}
	checkAccExtension(t, r)
}

func TestVectorMulfNegativeSaturation(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = splat(-0x8000)
	r.vr[2] = splat(-0x8000)
	r.vmulf(3, 1, 2, 0)
	for i := 0; i < 8; i++ {
		if r.vr[3][i] != 0x7fff {
			t.Errorf("lane %d got %04x want 7fff", i, uint16(r.vr[3][i]))
		}
	}
	r.vmulu(4, 1, 2, 0)
	if uint16(r.vr[4][0]) != 0xffff {
		t.Errorf("VMULU got %04x want ffff", uint16(r.vr[4][0]))
	}
}

func TestVectorMudh(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = splat(-0x8000)
	r.vr[2] = splat(-0x8000)
	r.vmudh(3, 1, 2, 0)
	for i := 0; i < 8; i++ {
		if r.acc[i] != 0x400000000000 {
			t.Errorf("acc lane %d got %012x", i, uint64(r.acc[i]))
		}
		if r.vr[3][i] != 0x7fff {
			t.Errorf("lane %d got %04x want 7fff", i, uint16(r.vr[3][i]))
		}
	}
	checkAccExtension(t, r)
}

func TestVectorMudFamily(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = splat(0x0100)  // signed 256
	r.vr[2] = splat(-0x0001) // unsigned 0xFFFF

	r.vmudl(3, 1, 2, 0) // (0x100 * 0xFFFF) >> 16 = 0xFF
	if r.vr[3][0] != 0xff || r.acc[0] != 0xff {
		t.Errorf("VMUDL got %04x acc %x", uint16(r.vr[3][0]), r.acc[0])
	}

	r.vmudm(3, 1, 2, 0) // 256 * 0xFFFF = 0xFFFF00, mid = 0xFF
	if r.vr[3][0] != 0xff || r.acc[0] != 0xffff00 {
		t.Errorf("VMUDM got %04x acc %x", uint16(r.vr[3][0]), r.acc[0])
	}

	r.vmudn(3, 1, 2, 0) // 0x100 * -1 = -256, low slice out
	if uint16(r.vr[3][0]) != 0xff00 {
		t.Errorf("VMUDN got %04x", uint16(r.vr[3][0]))
	}
	if r.acc[0] != -256 {
		t.Errorf("VMUDN acc got %x", r.acc[0])
	}
	checkAccExtension(t, r)
}

func TestVectorMacAccumulates(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = splat(0x1000)
	r.vr[2] = splat(0x0010)
	r.vmudh(3, 1, 2, 0) // acc = 0x10000 << 16
	r.vmacf(3, 1, 2, 0) // acc += 0x10000 * 2
	want := int64(0x10000)<<16 + 0x20000
	if r.acc[0] != want {
		t.Errorf("acc got %x want %x", r.acc[0], want)
	}
	checkAccExtension(t, r)
}

func TestVectorMadlUnsignedClamp(t *testing.T) {
	r, _ := newTest()
	// Drive the accumulator negative, then check the low clamp pins to 0.
	r.vr[1] = splat(-0x8000)
	r.vr[2] = splat(0x7fff)
	r.vmudh(3, 1, 2, 0)
	r.vmadl(3, 1, 2, 0)
	if uint16(r.vr[3][0]) != 0 {
		t.Errorf("VMADL clamp got %04x want 0", uint16(r.vr[3][0]))
	}
}

// Carry chain: VADDC posts the carry, VADD consumes it.
func TestVectorCarryChain(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = splat(-1) // 0xFFFF
	r.vr[2] = [8]int16{1, 0, 0, 0, 0, 0, 0, 0}
	r.vaddc(3, 1, 2, 0)
	if r.vr[3][0] != 0 {
		t.Errorf("VADDC lane 0 got %04x", uint16(r.vr[3][0]))
	}
	if r.VCO() != 0x0001 {
		t.Errorf("VCO got %04x want 0001", r.VCO())
	}

	var zero [8]int16
	r.vr[5] = zero
	r.vadd(4, 3, 5, 0)
	if r.vr[4][0] != 1 {
		t.Errorf("carry not propagated, lane 0 = %04x", uint16(r.vr[4][0]))
	}
	if uint16(r.vr[4][1]) != 0xffff {
		t.Errorf("lane 1 got %04x", uint16(r.vr[4][1]))
	}
	checkFlagsClear(t, r)
}

func TestVectorAddIdentity(t *testing.T) {
	r, _ := newTest()
	src := [8]int16{5, -7, 0x7fff, -0x8000, 100, -100, 1, 0}
	r.vr[1] = src
	var zero [8]int16
	r.vr[2] = zero
	r.vadd(3, 1, 2, 0)
	for i := 0; i < 8; i++ {
		if r.vr[3][i] != src[i] {
			t.Errorf("lane %d got %04x want %04x", i, uint16(r.vr[3][i]), uint16(src[i]))
		}
		if accLow(r.acc[i]) != src[i] {
			t.Errorf("acc low lane %d got %04x", i, uint16(accLow(r.acc[i])))
		}
	}
}

func TestVectorAddSaturates(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = splat(0x7fff)
	r.vr[2] = splat(1)
	r.vadd(3, 1, 2, 0)
	if r.vr[3][0] != 0x7fff {
		t.Errorf("VADD clamp got %04x", uint16(r.vr[3][0]))
	}
	if accLow(r.acc[0]) != -0x8000 {
		t.Errorf("acc keeps the wrap, got %04x", uint16(accLow(r.acc[0])))
	}

	r.vr[1] = splat(-0x8000)
	r.vr[2] = splat(1)
	r.vsub(3, 1, 2, 0) // -0x8000 - 1 saturates
	if r.vr[3][0] != -0x8000 {
		t.Errorf("VSUB clamp got %04x", uint16(r.vr[3][0]))
	}
	if accLow(r.acc[0]) != 0x7fff {
		t.Errorf("VSUB acc keeps the wrap, got %04x", uint16(accLow(r.acc[0])))
	}
}

func TestVectorSubcBorrowFlags(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = [8]int16{0, 1, 2, 2, 0, 0, 0, 0}
	r.vr[2] = [8]int16{1, 1, 1, 2, 0, 0, 0, 0}
	r.vsubc(3, 1, 2, 0)
	// Borrow on lane 0, inequality on lanes 0 and 2.
	if r.VCO() != 0x0500|0x0001 {
		t.Errorf("VCO got %04x want 0501", r.VCO())
	}
	if uint16(r.vr[3][0]) != 0xffff || r.vr[3][2] != 1 {
		t.Errorf("difference lanes wrong: %04x %04x", uint16(r.vr[3][0]), uint16(r.vr[3][2]))
	}
}

// Element 8 broadcasts lane 0 of VT everywhere.
func TestVectorBroadcast(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = [8]int16{10, 20, 30, 40, 50, 60, 70, 80}
	r.vr[2] = [8]int16{7, 1, 2, 3, 4, 5, 6, 8}
	r.vadd(3, 1, 2, 8)
	want := [8]int16{17, 27, 37, 47, 57, 67, 77, 87}
	if r.vr[3] != want {
		t.Errorf("broadcast add got %v want %v", r.vr[3], want)
	}

	// Half broadcast: e=4 picks lanes 0 and 4 for their quads.
	r.vadd(3, 1, 2, 4)
	want = [8]int16{17, 27, 37, 47, 54, 64, 74, 84}
	if r.vr[3] != want {
		t.Errorf("half broadcast got %v want %v", r.vr[3], want)
	}

	// Quarter broadcast: e=3 picks the odd lane of each pair.
	r.vadd(3, 1, 2, 3)
	want = [8]int16{11, 21, 33, 43, 55, 65, 78, 88}
	if r.vr[3] != want {
		t.Errorf("quarter broadcast got %v want %v", r.vr[3], want)
	}
}

func TestVectorAbs(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = [8]int16{-1, 1, 0, -1, -1, 1, 0, -5}
	r.vr[2] = [8]int16{5, 5, 5, -5, -0x8000, -0x8000, -0x8000, 7}
	r.vabs(3, 1, 2, 0)
	want := [8]int16{-5, 5, 0, 5, 0x7fff, -0x8000, 0, -7}
	if r.vr[3] != want {
		t.Errorf("VABS got %v want %v", r.vr[3], want)
	}
	// The saturated lane keeps the raw wrap in the accumulator.
	if accLow(r.acc[4]) != -0x8000 {
		t.Errorf("acc low lane 4 got %04x want 8000", uint16(accLow(r.acc[4])))
	}
}

func TestVectorSar(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = splat(0x0100)
	r.vr[2] = splat(0x0300)
	r.vmudh(3, 1, 2, 0) // acc = 0x30000 << 16 per lane
	r.vsar(4, 0, 0, 8)  // high
	r.vsar(5, 0, 0, 9)  // mid
	r.vsar(6, 0, 0, 10) // low
	r.vsar(7, 0, 0, 0)  // anything else reads zero
	if r.vr[4][0] != 3 || r.vr[5][0] != 0 || r.vr[6][0] != 0 {
		t.Errorf("VSAR slices got %04x %04x %04x",
			uint16(r.vr[4][0]), uint16(r.vr[5][0]), uint16(r.vr[6][0]))
	}
	if r.vr[7][0] != 0 {
		t.Errorf("VSAR e=0 got %04x want 0", uint16(r.vr[7][0]))
	}
}

func TestVectorLogicalLaws(t *testing.T) {
	r, _ := newTest()
	src := [8]int16{0x1234, -0x1234, 0, -1, 0x7fff, -0x8000, 0x00ff, -0x0100}
	var zero [8]int16
	r.vr[1] = src
	r.vr[2] = zero

	// VNOR(VNOR(x, 0), 0) == x
	r.vnor(3, 1, 2, 0)
	r.vnor(4, 3, 2, 0)
	if r.vr[4] != src {
		t.Errorf("double VNOR got %v want %v", r.vr[4], src)
	}

	// VXOR(x, x) == 0
	r.vxor(5, 1, 1, 0)
	if r.vr[5] != zero {
		t.Errorf("self VXOR got %v", r.vr[5])
	}

	r.vand(6, 1, 1, 0)
	if r.vr[6] != src {
		t.Errorf("self VAND got %v", r.vr[6])
	}
	r.vnand(7, 1, 1, 0)
	r.vxnor(8, 1, 1, 0)
	for i := 0; i < 8; i++ {
		if r.vr[7][i] != ^src[i] {
			t.Errorf("VNAND lane %d got %04x", i, uint16(r.vr[7][i]))
		}
		if uint16(r.vr[8][i]) != 0xffff {
			t.Errorf("self VXNOR lane %d got %04x", i, uint16(r.vr[8][i]))
		}
	}
}

func TestVectorCompares(t *testing.T) {
	r, _ := newTest()
	r.SetVCO(0xffff)
	r.SetVCE(0xff)
	r.vr[1] = [8]int16{1, 5, 3, -1, 0, 0, 7, 7}
	r.vr[2] = [8]int16{2, 4, 3, 1, 0, -2, 7, 8}

	r.vlt(3, 1, 2, 0)
	// With carry and not-equal set everywhere, equal lanes count as less.
	if r.VCC() != 0x00dd {
		t.Errorf("VLT VCC got %04x want 00dd", r.VCC())
	}
	for i := 0; i < 8; i++ {
		min := r.vr[1][i]
		if r.vr[2][i] < min {
			min = r.vr[2][i]
		}
		if r.vr[3][i] != min {
			t.Errorf("VLT lane %d got %04x want %04x", i, uint16(r.vr[3][i]), uint16(min))
		}
	}
	checkFlagsClear(t, r)

	r.veq(3, 1, 2, 0)
	if r.VCC() != 0x0054 {
		t.Errorf("VEQ VCC got %04x want 0054", r.VCC())
	}
	checkFlagsClear(t, r)

	r.vne(3, 1, 2, 0)
	if r.VCC() != 0x00ab {
		t.Errorf("VNE VCC got %04x want 00ab", r.VCC())
	}
	checkFlagsClear(t, r)

	r.vge(3, 1, 2, 0)
	if r.VCC() != 0x0076 {
		t.Errorf("VGE VCC got %04x want 0076", r.VCC())
	}
	checkFlagsClear(t, r)
}

func TestVectorMerge(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = splat(0x1111)
	r.vr[2] = splat(0x2222)
	r.SetVCC(0x00a5)
	r.SetVCO(0x1234)
	r.vmrg(3, 1, 2, 0)
	want := [8]int16{0x1111, 0x2222, 0x1111, 0x2222, 0x2222, 0x1111, 0x2222, 0x1111}
	if r.vr[3] != want {
		t.Errorf("VMRG got %v want %v", r.vr[3], want)
	}
	checkFlagsClear(t, r)
}

func TestVectorClipHigh(t *testing.T) {
	r, _ := newTest()
	r.vr[1] = [8]int16{-3, 3, 5, -5, 0, 0, 0, 0}
	r.vr[2] = [8]int16{2, 2, -2, -2, 1, 1, 1, 1}
	r.vch(3, 1, 2, 0)

	// Lane 0: signs differ, sum -1: result -t, le, vce.
	if r.vr[3][0] != -2 {
		t.Errorf("lane 0 got %04x want fffe", uint16(r.vr[3][0]))
	}
	if r.VCE()&1 == 0 {
		t.Errorf("VCE lane 0 not set")
	}
	if r.VCO()&1 == 0 {
		t.Errorf("VCO carry lane 0 not set")
	}
	// Lane 1: same signs, diff 1 >= 0: result t.
	if r.vr[3][1] != 2 {
		t.Errorf("lane 1 got %04x want 0002", uint16(r.vr[3][1]))
	}
	// Lane 2: signs differ, sum 3 > 0: result s.
	if r.vr[3][2] != 5 {
		t.Errorf("lane 2 got %04x want 0005", uint16(r.vr[3][2]))
	}
	// Lane 3: same signs, diff -3 < 0: result s.
	if r.vr[3][3] != -5 {
		t.Errorf("lane 3 got %04x want fffb", uint16(r.vr[3][3]))
	}
}

func TestVectorClipLowCrimp(t *testing.T) {
	r, _ := newTest()
	// Lane 0: carry without not-equal and a zero sum is an exact clip.
	// Lane 1: with the extension bit a wrapping sum also qualifies.
	// Lane 2: no carry refines the unsigned greater-equal side.
	r.clearVCO()
	r.clearVCE()
	r.vcoCarry[0] = true
	r.vcoCarry[1] = true
	r.vce[1] = true
	r.vr[1] = [8]int16{0, 3, 4, 0, 0, 0, 0, 0}
	r.vr[2] = [8]int16{0, -3, 3, 0, 0, 0, 0, 0}
	r.vcl(3, 1, 2, 0)
	if r.vr[3][0] != 0 || r.VCC()&1 == 0 {
		t.Errorf("VCL exact clip lane 0: vd %04x vcc %04x", uint16(r.vr[3][0]), r.VCC())
	}
	if r.vr[3][1] != 3 || r.VCC()&2 == 0 {
		t.Errorf("VCL extension lane 1: vd %04x vcc %04x", uint16(r.vr[3][1]), r.VCC())
	}
	// Lane 2: unsigned 4 >= 3, take t.
	if r.vr[3][2] != 3 {
		t.Errorf("VCL lane 2 got %04x want 3", uint16(r.vr[3][2]))
	}
	checkFlagsClear(t, r)

	r.vr[1] = [8]int16{-3, 3, 0, 0, 0, 0, 0, 0}
	r.vr[2] = [8]int16{2, -2, 0, 0, 0, 0, 0, 0}
	r.vcr(3, 1, 2, 0)
	// Lane 0: signs differ, s+t+1 = 0 <= 0: result ~t.
	if r.vr[3][0] != ^int16(2) {
		t.Errorf("VCR lane 0 got %04x", uint16(r.vr[3][0]))
	}
	checkFlagsClear(t, r)
}

func TestVectorMoves(t *testing.T) {
	r, env := newTest()
	r.vr[2] = [8]int16{0x0102, 0x0304, 0x0506, 0x0708, 0x090a, 0x0b0c, 0x0d0e, 0x0f10}

	// VMOV copies a single selected lane.
	r.vmov(4, 3, 2, 0)
	if r.vr[4][3] != 0x0708 {
		t.Errorf("VMOV got %04x", uint16(r.vr[4][3]))
	}

	// MFC2 at an odd element crosses a lane boundary.
	runProg(r, env, []uint32{
		uint32(opCOP2)<<26 | 0x00<<21 | 8<<16 | 2<<11 | 1<<7, // MFC2 $8, $v2[1]
		uint32(opCOP2)<<26 | 0x00<<21 | 9<<16 | 2<<11 | 15<<7, // MFC2 $9, $v2[15], wraps
		brkInst,
	})
	if r.sr[8] != 0x0203 {
		t.Errorf("MFC2 odd element got %08x", r.sr[8])
	}
	if r.sr[9] != 0x1001 {
		t.Errorf("MFC2 wrap got %08x", r.sr[9])
	}

	// MTC2 writes through the same byte view: bytes 4,5 are lane 2.
	r.sr[10] = 0xcafe
	r.mtc2(10, 5, 4)
	if uint16(r.vr[5][2]) != 0xcafe {
		t.Errorf("MTC2 got %04x", uint16(r.vr[5][2]))
	}

	// Control register moves round trip.
	r.sr[11] = 0x8421
	r.ctc2(11, 0)
	if r.VCO() != 0x8421 {
		t.Errorf("CTC2 VCO got %04x", r.VCO())
	}
	r.cfc2(12, 0)
	if r.sr[12] != 0xffff8421 {
		t.Errorf("CFC2 sign extension got %08x", r.sr[12])
	}
	r.ctc2(11, 2)
	if r.VCE() != 0x21 {
		t.Errorf("CTC2 VCE got %02x", r.VCE())
	}
}

// Dispatch through a real COP2 instruction word.
func TestVectorDecodeDispatch(t *testing.T) {
	r, env := newTest()
	r.vr[1] = splat(3)
	r.vr[2] = splat(4)
	runProg(r, env, []uint32{
		vecInst(vfVADD, 3, 1, 2, 0),
		vecInst(vfVMULF, 4, 1, 2, 0),
		vecInst(0x3f, 5, 1, 2, 0), // reserved, NOP
		brkInst,
	})
	if r.vr[3][0] != 7 {
		t.Errorf("decoded VADD got %04x", uint16(r.vr[3][0]))
	}
	if r.vr[4][0] != 0 {
		// 3*4*2 + 0x8000 -> mid slice 0
		t.Errorf("decoded VMULF got %04x", uint16(r.vr[4][0]))
	}
	if r.vr[5] != ([8]int16{}) {
		t.Errorf("reserved vector op wrote %v", r.vr[5])
	}
}
