/*
 * RSP64 - Signal processor on-chip memory and the borrowed RDRAM view.
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
	"errors"
	"io"
	"unicode"
)

const (
	// Size of DMEM and IMEM in bytes.
	BankSize = 4096

	// Mask for a byte address inside a bank.
	AddrMask uint32 = 0x00000fff

	// RDRAM address bounds. The host tells us how much RDRAM exists;
	// whatever it says gets clamped into this range.
	MinDRAMMask uint32 = 0x001fffff // 2 MiB
	MaxDRAMMask uint32 = 0x00ffffff // 16 MiB
)

// Bank is one on-chip 4 KiB memory, byte addressed and big-endian as
// microcode sees it. The buffer belongs to the host; the bank is only a
// view. All accesses wrap at the 4 KiB boundary, matching the hardware,
// so an unaligned or end-of-bank access never faults.
type Bank struct {
	data *[BankSize]byte
}

// NewBank wraps a host-provided 4 KiB buffer.
func NewBank(buf *[BankSize]byte) Bank {
	return Bank{data: buf}
}

// Valid reports whether the bank has a buffer behind it.
func (b Bank) Valid() bool {
	return b.data != nil
}

// Raw returns the underlying buffer.
func (b Bank) Raw() *[BankSize]byte {
	return b.data
}

// Byte reads one byte.
func (b Bank) Byte(addr uint32) uint8 {
	return b.data[addr&AddrMask]
}

// SetByte writes one byte.
func (b Bank) SetByte(addr uint32, value uint8) {
	b.data[addr&AddrMask] = value
}

// Half reads a big-endian halfword byte by byte. Unaligned addresses are
// legal and wrap inside the bank.
func (b Bank) Half(addr uint32) uint16 {
	hi := b.data[addr&AddrMask]
	lo := b.data[(addr+1)&AddrMask]
	return uint16(hi)<<8 | uint16(lo)
}

// SetHalf writes a big-endian halfword byte by byte.
func (b Bank) SetHalf(addr uint32, value uint16) {
	b.data[addr&AddrMask] = uint8(value >> 8)
	b.data[(addr+1)&AddrMask] = uint8(value)
}

// Word reads a big-endian word byte by byte.
func (b Bank) Word(addr uint32) uint32 {
	var value uint32
	for i := uint32(0); i < 4; i++ {
		value = value<<8 | uint32(b.data[(addr+i)&AddrMask])
	}
	return value
}

// SetWord writes a big-endian word byte by byte.
func (b Bank) SetWord(addr uint32, value uint32) {
	for i := uint32(0); i < 4; i++ {
		b.data[(addr+i)&AddrMask] = uint8(value >> (8 * (3 - i)))
	}
}

// Export writes the bank contents with the host-side byte swap applied,
// the layout debuggers expect in rcpcache dumps.
func (b Bank) Export(w io.Writer) error {
	swapped := make([]byte, BankSize)
	for i := range swapped {
		swapped[i] = b.data[i^3]
	}
	_, err := w.Write(swapped)
	return err
}

// DRAM is the borrowed view of host main memory. The host stores RDRAM
// as 32-bit words in its native order; the view XORs the low address
// bits so the DMA engine sees the same big-endian bytes microcode would.
type DRAM struct {
	data    []byte
	maxAddr uint32
}

// NewDRAM wraps the host RDRAM buffer. The address bound is the largest
// power-of-two mask covered by the buffer, clamped into [2 MiB, 16 MiB].
// The original plugin probed this by catching segfaults; the buffer
// length is authoritative here.
func NewDRAM(buf []byte) DRAM {
	maxAddr := uint32(0)
	for uint64(maxAddr)<<1|1 < uint64(len(buf)) {
		maxAddr = maxAddr<<1 | 1
	}
	if maxAddr < MinDRAMMask {
		maxAddr = MinDRAMMask
	}
	if maxAddr > MaxDRAMMask {
		maxAddr = MaxDRAMMask
	}
	return DRAM{data: buf, maxAddr: maxAddr}
}

// Valid reports whether a host buffer is attached.
func (d DRAM) Valid() bool {
	return d.data != nil
}

// MaxAddr returns the RDRAM address mask.
func (d DRAM) MaxAddr() uint32 {
	return d.maxAddr
}

// Byte reads one byte in the big-endian view.
func (d DRAM) Byte(addr uint32) uint8 {
	addr = (addr & d.maxAddr) ^ 3
	if addr >= uint32(len(d.data)) {
		return 0
	}
	return d.data[addr]
}

// SetByte writes one byte in the big-endian view.
func (d DRAM) SetByte(addr uint32, value uint8) {
	addr = (addr & d.maxAddr) ^ 3
	if addr >= uint32(len(d.data)) {
		return
	}
	d.data[addr] = value
}

// ParseSize reads a memory size like "8M" or "4096K" from configuration.
func ParseSize(value string) (int, error) {
	size := 0
	multiplier := ' '
	for i, digit := range value {
		if !unicode.IsDigit(digit) {
			if i == len(value)-1 {
				multiplier = digit
				break
			}
			return 0, errors.New("memory size not a number: " + value)
		}
		size = size*10 + int(digit) - '0'
	}
	switch multiplier {
	case 'k', 'K':
		size *= 1024
	case 'm', 'M':
		size *= 1024 * 1024
	case ' ':
	default:
		return 0, errors.New("invalid size multiplier: " + string(multiplier))
	}
	return size, nil
}
