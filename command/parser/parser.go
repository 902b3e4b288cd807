/*
 * RSP64 - Monitor command parser.
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
	"strconv"
	"strings"

	"github.com/openrcp/rsp64/emu/rsp"
)

type command struct {
	name    string
	minArgs int
	handler func(*rsp.RSP, []string) error
	help    string
}

var commands []command

func init() {
	commands = []command{
		{"examine", 2, cmdExamine, "examine <d|i> <addr> [count]"},
		{"deposit", 3, cmdDeposit, "deposit <d|i> <addr> <byte>..."},
		{"reg", 0, cmdReg, "reg [num]"},
		{"vreg", 0, cmdVReg, "vreg [num]"},
		{"step", 0, cmdStep, "step [count]"},
		{"go", 0, cmdGo, "go [cycles]"},
		{"load", 2, cmdLoad, "load <d|i> <file>"},
		{"dump", 0, cmdDump, "dump [dir]"},
		{"help", 0, cmdHelp, "help"},
		{"quit", 0, nil, "quit"},
	}
}

// ProcessCommand runs one monitor command line. The bool result asks
// the caller to exit.
func ProcessCommand(line string, core *rsp.RSP) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	for _, cmd := range commands {
		if !strings.HasPrefix(cmd.name, name) {
			continue
		}
		if cmd.handler == nil {
			return true, nil
		}
		if len(args) < cmd.minArgs {
			return false, errors.New("usage: " + cmd.help)
		}
		return false, cmd.handler(core, args)
	}
	return false, errors.New("unknown command: " + name)
}

// CompleteCmd offers command-name completion for the console reader.
func CompleteCmd(line string) []string {
	var matches []string
	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd.name, lower) {
			matches = append(matches, cmd.name+" ")
		}
	}
	return matches
}

func parseNum(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, errors.New("bad number: " + s)
	}
	return uint32(v), nil
}
