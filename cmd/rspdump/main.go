/*
 * RSP64 - rspdump: inspect SP memory images from the command line.
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
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dis "github.com/openrcp/rsp64/emu/disassemble"
	"github.com/openrcp/rsp64/emu/spmem"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rspdump",
		Short: "Inspect RSP memory images (rcpcache dumps or raw 4 KiB banks)",
	}

	var swapped bool

	hexCmd := &cobra.Command{
		Use:   "hex <file>",
		Short: "Hex dump an SP memory image",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := readImage(args[0], swapped)
			if err != nil {
				return err
			}
			for off := 0; off < len(data); off += 16 {
				fmt.Printf("%03x:", off)
				for i := 0; i < 16 && off+i < len(data); i++ {
					fmt.Printf(" %02x", data[off+i])
				}
				fmt.Println()
			}
			return nil
		},
	}

	disCmd := &cobra.Command{
		Use:   "dis <file>",
		Short: "Disassemble an IMEM image",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := readImage(args[0], swapped)
			if err != nil {
				return err
			}
			for off := 0; off+4 <= len(data); off += 4 {
				inst := binary.BigEndian.Uint32(data[off:])
				fmt.Printf("%03x: %08x  %s\n", off, inst, dis.Disassemble(inst))
			}
			return nil
		},
	}

	for _, cmd := range []*cobra.Command{hexCmd, disCmd} {
		cmd.Flags().BoolVarP(&swapped, "swapped", "s", false,
			"image uses the host-side byte order of rcpcache dumps")
		rootCmd.AddCommand(cmd)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readImage loads at most one bank worth of bytes, undoing the rcpcache
// byte swap when asked.
func readImage(path string, swapped bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) > spmem.BankSize {
		data = data[:spmem.BankSize]
	}
	if swapped {
		fixed := make([]byte, len(data)&^3)
		for i := range fixed {
			fixed[i] = data[i^3]
		}
		data = fixed
	}
	return data, nil
}
