/*
 * RSP64 on-chip memory test cases.
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

package spmem

import (
	"bytes"
	"testing"
)

func TestBankBigEndian(t *testing.T) {
	var buf [BankSize]byte
	bank := NewBank(&buf)

	bank.SetWord(0x10, 0x01020304)
	if buf[0x10] != 1 || buf[0x11] != 2 || buf[0x12] != 3 || buf[0x13] != 4 {
		t.Errorf("word bytes %v", buf[0x10:0x14])
	}
	if bank.Word(0x10) != 0x01020304 {
		t.Errorf("word read got %08x", bank.Word(0x10))
	}
	if bank.Half(0x11) != 0x0203 {
		t.Errorf("unaligned half got %04x", bank.Half(0x11))
	}

	bank.SetHalf(0x20, 0xbeef)
	if buf[0x20] != 0xbe || buf[0x21] != 0xef {
		t.Errorf("half bytes %02x %02x", buf[0x20], buf[0x21])
	}
}

func TestBankWraps(t *testing.T) {
	var buf [BankSize]byte
	bank := NewBank(&buf)

	bank.SetWord(0xffe, 0xa1b2c3d4)
	if buf[0xffe] != 0xa1 || buf[0xfff] != 0xb2 || buf[0] != 0xc3 || buf[1] != 0xd4 {
		t.Errorf("wrap bytes %02x %02x %02x %02x", buf[0xffe], buf[0xfff], buf[0], buf[1])
	}
	if bank.Word(0xffe) != 0xa1b2c3d4 {
		t.Errorf("wrap read got %08x", bank.Word(0xffe))
	}
	if bank.Byte(0x1fff) != buf[0xfff] {
		t.Errorf("address mask broken")
	}
}

func TestBankExportSwaps(t *testing.T) {
	var buf [BankSize]byte
	for i := range buf {
		buf[i] = byte(i)
	}
	bank := NewBank(&buf)

	var out bytes.Buffer
	if err := bank.Export(&out); err != nil {
		t.Fatalf("export: %v", err)
	}
	dump := out.Bytes()
	if len(dump) != BankSize {
		t.Fatalf("dump length %d", len(dump))
	}
	for i := 0; i < 8; i++ {
		if dump[i] != buf[i^3] {
			t.Errorf("dump byte %d got %02x want %02x", i, dump[i], buf[i^3])
		}
	}
}

func TestDRAMBounds(t *testing.T) {
	d := NewDRAM(make([]byte, 8*1024*1024))
	if d.MaxAddr() != 0x7fffff {
		t.Errorf("8 MiB mask got %06x", d.MaxAddr())
	}

	// Tiny buffers clamp up, huge ones clamp down.
	if got := NewDRAM(make([]byte, 1024)).MaxAddr(); got != MinDRAMMask {
		t.Errorf("small clamp got %06x", got)
	}
	if got := NewDRAM(make([]byte, 64*1024*1024)).MaxAddr(); got != MaxDRAMMask {
		t.Errorf("large clamp got %06x", got)
	}
	if NewDRAM(nil).Valid() {
		t.Errorf("nil buffer reported valid")
	}
}

func TestDRAMByteSwapRoundTrip(t *testing.T) {
	buf := make([]byte, 4*1024*1024)
	d := NewDRAM(buf)

	d.SetByte(0x1000, 0x5a)
	if buf[0x1003] != 0x5a {
		t.Errorf("host side byte at %06x", 0x1003)
	}
	if d.Byte(0x1000) != 0x5a {
		t.Errorf("round trip got %02x", d.Byte(0x1000))
	}
	// Out-of-mask addresses alias into the window.
	if d.Byte(0x1000|^d.MaxAddr()) != 0x5a {
		t.Errorf("masking broken")
	}
}

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want int
		err  bool
	}{
		{"8M", 8 * 1024 * 1024, false},
		{"4096K", 4 * 1024 * 1024, false},
		{"1024", 1024, false},
		{"12Q", 0, true},
		{"M8", 0, true},
	}
	for _, c := range cases {
		got, err := ParseSize(c.in)
		if (err != nil) != c.err {
			t.Errorf("%q error %v", c.in, err)
			continue
		}
		if !c.err && got != c.want {
			t.Errorf("%q got %d want %d", c.in, got, c.want)
		}
	}
}
