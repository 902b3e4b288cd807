/*
 * RSP64 - Engine setup, task dispatch and the plugin surface.
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

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	config "github.com/openrcp/rsp64/config/configparser"
	"github.com/openrcp/rsp64/emu/spmem"
)

/*
   The Reality Signal Processor is the programmable half of the N64's
   Reality Co-Processor. It runs microcode "tasks" out of a pair of 4 KiB
   on-chip memories: IMEM holds the program, DMEM the data, and a DMA
   engine shuttles blocks between them and main RDRAM. The instruction
   set is a MIPS R4000 integer subset plus a COP2 vector unit working on
   eight 16-bit lanes with a 48-bit accumulator per lane.

   The host CPU starts a task by loading the memories, clearing HALT in
   SP_STATUS and letting DoCycles run the interpreter until the microcode
   executes BREAK or writes SP_STATUS itself. High-level task handoff to
   a graphics or audio plugin happens before any microcode runs, keyed on
   the task header the OS places at the top of DMEM.
*/

// New builds an engine around the host's buffers and callbacks.
// Registers, vector state and the accumulator start zeroed and persist
// across tasks from then on.
func New(host Host) *RSP {
	r := &RSP{host: host}
	r.createTables()
	r.mfTimeout = mfStatusTimeout

	if host.DMEM != nil && host.DMEM != host.IMEM {
		r.dmem = spmem.NewBank(host.DMEM)
		r.imem = spmem.NewBank(host.IMEM)
	}
	r.dram = spmem.NewDRAM(host.DRAM)

	if host.SPRegs != nil {
		for i := 0; i < 8; i++ {
			r.cr[i] = &host.SPRegs[i]
		}
	}
	if host.DPCRegs != nil {
		for i := 0; i < 8; i++ {
			r.cr[crDPStart+i] = &host.DPCRegs[i]
		}
	}
	if host.SPPC != nil {
		*host.SPPC = resetPC & spmem.AddrMask
	}

	if host.ProcessRdpList == nil {
		r.host.ProcessRdpList = r.noLLE
	}
	return r
}

// Warn-once stub for hosts that configured LLE without an RDP handler.
func (r *RSP) noLLE() {
	if r.warnedLLE {
		return
	}
	slog.Warn("RSP configured for LLE but no LLE graphics plugin is attached")
	r.warnedLLE = true
}

// SetTrace turns the per-instruction execution trace on or off.
func (r *RSP) SetTrace(on bool) {
	r.trace = on
}

// HLEGraphics reports whether graphics tasks are handed to the plugin.
func (r *RSP) HLEGraphics() bool {
	return r.conf[0] != 0
}

// HLEAudio reports whether audio tasks are handed to the plugin.
func (r *RSP) HLEAudio() bool {
	return r.conf[1] != 0
}

// SetHLE flips the high-level emulation flags in the config block.
func (r *RSP) SetHLE(gfx, aud bool) {
	r.conf[0], r.conf[1] = 0, 0
	if gfx {
		r.conf[0] = 1
	}
	if aud {
		r.conf[1] = 1
	}
}

// LoadConfig reads the 32-byte configuration block. A missing or short
// file is not an error; the block defaults to all zeros.
func (r *RSP) LoadConfig(path string) {
	r.confPath = path
	for i := range r.conf {
		r.conf[i] = 0
	}
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("failed to read config, using defaults", "path", path)
		return
	}
	defer f.Close()
	if _, err := io.ReadFull(f, r.conf[:]); err != nil {
		for i := range r.conf {
			r.conf[i] = 0
		}
		slog.Warn("short config read, using defaults", "path", path)
	}
}

// SaveConfig persists the 32-byte configuration block.
func (r *RSP) SaveConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rsp: save config: %w", err)
	}
	defer f.Close()
	_, err = f.Write(r.conf[:])
	return err
}

// RomClosed resets the SP program counter for the next ROM and writes
// the configuration block back where it was loaded from.
func (r *RSP) RomClosed() {
	if r.host.SPPC != nil {
		*r.host.SPPC = resetPC
	}
	if r.confPath != "" {
		if err := r.SaveConfig(r.confPath); err != nil {
			slog.Warn("failed to persist config", "err", err.Error())
		}
	}
}

// Shutdown drops the borrowed RDRAM reference.
func (r *RSP) Shutdown() {
	r.host.DRAM = nil
	r.dram = spmem.NewDRAM(nil)
}

// taskType reads the 4-byte big-endian task type from the OS task header.
func (r *RSP) taskType() uint32 {
	return r.dmem.Word(taskTypeAddr)
}

// DoCycles runs one task. The cycle argument is returned whenever the
// interpreter ran; a halted or broke processor, a task handed to an HLE
// plugin and a dropped null display list task return zero. This is
// the only entry point the host calls while a ROM is running.
func (r *RSP) DoCycles(cycles uint32) uint32 {
	if !r.dmem.Valid() || r.cr[crStatus] == nil {
		return 0
	}
	status := r.cr[crStatus]
	if *status&(StatusHalt|StatusBroke) != 0 {
		return 0
	}

	switch t := r.taskType(); t {
	case taskGfx:
		if !r.HLEGraphics() {
			break
		}
		if r.dmem.Word(taskDListAddr) == 0 {
			// Null display list pointer. Some titles queue these;
			// drop the task without running anything.
			return 0
		}
		if r.host.ProcessDList != nil {
			r.host.ProcessDList()
		}
		r.finishHLE(status)
		*r.cr[crDPStatus] &^= dpcStatusFreeze
		return 0
	case taskAudio:
		if !r.HLEAudio() {
			break
		}
		if r.host.ProcessAList != nil {
			r.host.ProcessAList()
		}
		r.finishHLE(status)
		return 0
	case taskHVQM:
		if r.host.ShowCFB != nil {
			// Force a framebuffer refresh in case the graphics
			// plugin skipped it.
			r.host.ShowCFB()
		}
	case taskVideo, taskJpeg, taskNull, taskHVQ, taskBoot:
		// Interpreted like any other microcode.
	default:
		slog.Debug("unknown task type", "type", fmt.Sprintf("%08x", t))
	}

	r.runTask()

	switch {
	case *status&StatusBroke != 0:
		// Normal exit, from executing BREAK.
		return cycles
	case r.host.MIIntr != nil && *r.host.MIIntr&1 != 0:
		// Interrupt requested by MTC0 to break the loop.
		if r.host.CheckInterrupts != nil {
			r.host.CheckInterrupts()
		}
	case *r.cr[crSemaphore] != 0:
		// Microcode still holds the semaphore; the host will clear it.
	default:
		// Spun out on the status watchdog, or halted itself through an
		// SP_STATUS write. Either way, wait fewer status reads from now on.
		r.mfTimeout = mfStatusTimeoutShort
	}
	*status &^= StatusHalt
	return cycles
}

// finishHLE marks a plugin-handled task complete the way microcode would.
func (r *RSP) finishHLE(status *uint32) {
	*status |= StatusSig2 | StatusBroke | StatusHalt
	if *status&StatusIntrBreak != 0 {
		if r.host.MIIntr != nil {
			*r.host.MIIntr |= 1
		}
		if r.host.CheckInterrupts != nil {
			r.host.CheckInterrupts()
		}
	}
}

// runTask interprets microcode until BREAK, an MTC0 that halts or
// interrupts, or the status watchdog fires.
func (r *RSP) runTask() {
	for i := range r.mfc0Count {
		r.mfc0Count[i] = 0
	}
	if r.host.SPPC != nil {
		r.pc = *r.host.SPPC & spmem.AddrMask &^ 3
	}
	r.nextPC = (r.pc + 4) & spmem.AddrMask
	r.running = true
	r.steps = 0

	for r.running {
		r.Step()
	}
	if r.host.SPPC != nil {
		*r.host.SPPC = r.pc
	}
}

// Steps returns the instruction count of the last task run.
func (r *RSP) Steps() uint32 {
	return r.steps
}

// DumpMemory writes the rcpcache debug snapshots of both banks into dir.
func (r *RSP) DumpMemory(dir string) error {
	if !r.dmem.Valid() {
		return fmt.Errorf("rsp: no memory attached")
	}
	banks := []struct {
		name string
		bank spmem.Bank
	}{
		{"rcpcache.dhex", r.dmem},
		{"rcpcache.ihex", r.imem},
	}
	for _, b := range banks {
		f, err := os.Create(dir + "/" + b.name)
		if err != nil {
			return fmt.Errorf("rsp: dump: %w", err)
		}
		err = b.bank.Export(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("rsp: dump: %w", err)
		}
	}
	return nil
}

// Register the HLE switches with the configuration parser.
func init() {
	config.RegisterSwitch("HLEGFX", func(string) error {
		defaultHLEGfx = true
		return nil
	})
	config.RegisterSwitch("HLEAUD", func(string) error {
		defaultHLEAud = true
		return nil
	})
}

var (
	defaultHLEGfx bool
	defaultHLEAud bool
)

// ApplyConfig copies the parsed configuration switches into the engine.
func (r *RSP) ApplyConfig() {
	r.SetHLE(defaultHLEGfx, defaultHLEAud)
}
