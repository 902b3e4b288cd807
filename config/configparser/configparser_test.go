/*
 * RSP64 configuration parser test cases.
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
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rsp.cfg")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	var gotSwitch bool
	var gotValue string
	RegisterSwitch("TESTSW", func(string) error {
		gotSwitch = true
		return nil
	})
	RegisterOption("TESTOPT", func(value string) error {
		gotValue = value
		return nil
	})

	path := writeConfig(t, `
# comment line
testsw
TESTOPT 8M   # trailing comment
`)
	if err := LoadConfigFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !gotSwitch {
		t.Errorf("switch not applied")
	}
	if gotValue != "8M" {
		t.Errorf("option value %q", gotValue)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	RegisterSwitch("BARE", func(string) error { return nil })
	RegisterOption("VALUED", func(string) error { return nil })

	cases := []string{
		"nosuchthing",
		"BARE with a value",
		"VALUED",
	}
	for _, content := range cases {
		path := writeConfig(t, content)
		if err := LoadConfigFile(path); err == nil {
			t.Errorf("no error for %q", content)
		}
	}

	if err := LoadConfigFile("/does/not/exist.cfg"); err == nil {
		t.Errorf("no error for a missing file")
	}
}
