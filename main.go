/*
 * RSP64 - Main process: standalone microcode runner and monitor.
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

package main

import (
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/openrcp/rsp64/command/reader"
	config "github.com/openrcp/rsp64/config/configparser"
	"github.com/openrcp/rsp64/emu/rsp"
	"github.com/openrcp/rsp64/emu/spmem"
	"github.com/openrcp/rsp64/util/logger"
)

var dramSize = 8 * 1024 * 1024

func init() {
	config.RegisterOption("MEMSIZE", func(value string) error {
		size, err := spmem.ParseSize(value)
		if err != nil {
			return err
		}
		dramSize = size
		return nil
	})
}

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optIMEM := getopt.StringLong("imem", 'i', "", "IMEM image to load")
	optDMEM := getopt.StringLong("dmem", 'd', "", "DMEM image to load")
	optTrace := getopt.BoolLong("trace", 't', "Trace execution")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile io.Writer
	if *optLogFile != "" {
		if f, err := os.Create(*optLogFile); err == nil {
			logFile = f
		}
	}
	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)
	slog.SetDefault(slog.New(logger.NewHandler(logFile, &slog.HandlerOptions{Level: level}, *optTrace)))

	slog.Info("RSP64 started")
	if *optConfig != "" {
		if err := config.LoadConfigFile(*optConfig); err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}

	// Standalone operation owns its own copy of the RCP state the host
	// emulator would normally share with us.
	var dmem, imem [spmem.BankSize]byte
	var spRegs, dpcRegs [8]uint32
	var spPC, miIntr uint32

	core := rsp.New(rsp.Host{
		DRAM:    make([]byte, dramSize),
		DMEM:    &dmem,
		IMEM:    &imem,
		SPRegs:  &spRegs,
		DPCRegs: &dpcRegs,
		SPPC:    &spPC,
		MIIntr:  &miIntr,
	})
	core.ApplyConfig()
	core.SetTrace(*optTrace)

	loadImage(&imem, *optIMEM)
	loadImage(&dmem, *optDMEM)
	spPC = 0

	reader.ConsoleReader(core)
	slog.Info("RSP64 exiting")
}

func loadImage(bank *[spmem.BankSize]byte, path string) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("cannot load image", "path", path, "err", err.Error())
		os.Exit(1)
	}
	copy(bank[:], data)
	slog.Info("image loaded", "path", path, "bytes", len(data))
}
