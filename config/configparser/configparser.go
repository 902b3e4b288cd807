/*
 * RSP64 - Configuration file parser.
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

package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

/* Configuration file format:
 *
 * '#' starts a comment, rest of line is ignored.
 * <line> := <switch> | <option> <whitespace> <value>
 * <switch> ::= <string>
 * <option> ::= <string>
 * <value>  ::= rest of the line, trimmed
 *
 * Packages register the names they understand from init functions; a
 * name nobody registered is an error with its line number.
 */

const (
	typeSwitch = 1 + iota // Name alone enables a feature.
	typeOption            // Name takes one value.
)

type optionDef struct {
	apply func(string) error
	ty    int
}

var options = map[string]optionDef{}

var lineNumber int

// RegisterSwitch makes a bare name legal in the configuration file.
// Should be called from init functions.
func RegisterSwitch(name string, fn func(string) error) {
	options[strings.ToUpper(name)] = optionDef{apply: fn, ty: typeSwitch}
}

// RegisterOption makes a name-with-value legal in the configuration
// file. Should be called from init functions.
func RegisterOption(name string, fn func(string) error) {
	options[strings.ToUpper(name)] = optionDef{apply: fn, ty: typeOption}
}

// LoadConfigFile parses one configuration file, applying each line to
// the package that registered its keyword.
func LoadConfigFile(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	lineNumber = 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNumber++
		if err := parseLine(scanner.Text()); err != nil {
			return fmt.Errorf("config line %d: %w", lineNumber, err)
		}
	}
	return scanner.Err()
}

func parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	name, value := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		name, value = line[:i], strings.TrimSpace(line[i+1:])
	}

	def, ok := options[strings.ToUpper(name)]
	if !ok {
		return errors.New("unknown option: " + name)
	}
	switch def.ty {
	case typeSwitch:
		if value != "" {
			return errors.New(name + " takes no value")
		}
	case typeOption:
		if value == "" {
			return errors.New(name + " needs a value")
		}
	}
	return def.apply(value)
}
