/*
 * RSP64 - Monitor command implementations.
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

package parser

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	dis "github.com/openrcp/rsp64/emu/disassemble"
	"github.com/openrcp/rsp64/emu/rsp"
	"github.com/openrcp/rsp64/emu/spmem"
)

func pickBank(core *rsp.RSP, which string) (spmem.Bank, error) {
	switch strings.ToLower(which) {
	case "d", "dmem":
		return core.DMEM(), nil
	case "i", "imem":
		return core.IMEM(), nil
	}
	return spmem.Bank{}, errors.New("bank must be d or i")
}

func cmdExamine(core *rsp.RSP, args []string) error {
	bank, err := pickBank(core, args[0])
	if err != nil {
		return err
	}
	addr, err := parseNum(args[1])
	if err != nil {
		return err
	}
	count := uint32(16)
	if len(args) > 2 {
		if count, err = parseNum(args[2]); err != nil {
			return err
		}
	}
	for i := uint32(0); i < count; i += 16 {
		fmt.Printf("%03x:", (addr+i)&spmem.AddrMask)
		for j := uint32(0); j < 16 && i+j < count; j++ {
			fmt.Printf(" %02x", bank.Byte(addr+i+j))
		}
		fmt.Println()
	}
	return nil
}

func cmdDeposit(core *rsp.RSP, args []string) error {
	bank, err := pickBank(core, args[0])
	if err != nil {
		return err
	}
	addr, err := parseNum(args[1])
	if err != nil {
		return err
	}
	for i, arg := range args[2:] {
		v, err := strconv.ParseUint(arg, 16, 8)
		if err != nil {
			return errors.New("bad byte: " + arg)
		}
		bank.SetByte(addr+uint32(i), uint8(v))
	}
	return nil
}

func cmdReg(core *rsp.RSP, args []string) error {
	if len(args) > 0 {
		num, err := parseNum(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("$%d = %08x\n", num&0x1f, core.Reg(int(num)))
		return nil
	}
	fmt.Printf("PC = %03x  STATUS = %08x\n", core.PC(), core.Status())
	for i := 0; i < 32; i += 4 {
		fmt.Printf("$%-2d %08x  $%-2d %08x  $%-2d %08x  $%-2d %08x\n",
			i, core.Reg(i), i+1, core.Reg(i+1), i+2, core.Reg(i+2), i+3, core.Reg(i+3))
	}
	return nil
}

func cmdVReg(core *rsp.RSP, args []string) error {
	first, last := 0, 31
	if len(args) > 0 {
		num, err := parseNum(args[0])
		if err != nil {
			return err
		}
		first, last = int(num&0x1f), int(num&0x1f)
	}
	for i := first; i <= last; i++ {
		v := core.Vec(i)
		fmt.Printf("$v%-2d", i)
		for _, lane := range v {
			fmt.Printf(" %04x", uint16(lane))
		}
		fmt.Println()
	}
	return nil
}

func cmdStep(core *rsp.RSP, args []string) error {
	count := uint32(1)
	if len(args) > 0 {
		var err error
		if count, err = parseNum(args[0]); err != nil {
			return err
		}
	}
	for i := uint32(0); i < count; i++ {
		pc := core.PC()
		inst := core.IMEM().Word(pc)
		fmt.Printf("%03x: %08x  %s\n", pc, inst, dis.Disassemble(inst))
		core.Step()
	}
	return nil
}

func cmdGo(core *rsp.RSP, args []string) error {
	cycles := uint32(0x10000)
	if len(args) > 0 {
		var err error
		if cycles, err = parseNum(args[0]); err != nil {
			return err
		}
	}
	done := core.DoCycles(cycles)
	fmt.Printf("ran %d steps, status %08x\n", core.Steps(), core.Status())
	if done == 0 {
		fmt.Println("processor is halted")
	}
	return nil
}

func cmdLoad(core *rsp.RSP, args []string) error {
	bank, err := pickBank(core, args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	if len(data) > spmem.BankSize {
		data = data[:spmem.BankSize]
	}
	for i, b := range data {
		bank.SetByte(uint32(i), b)
	}
	fmt.Printf("loaded %d bytes\n", len(data))
	return nil
}

func cmdDump(core *rsp.RSP, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	return core.DumpMemory(dir)
}

func cmdHelp(_ *rsp.RSP, _ []string) error {
	for _, cmd := range commands {
		fmt.Println("  " + cmd.help)
	}
	return nil
}
