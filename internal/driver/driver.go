/*
Copyright © 2024 casm contributors

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public
License along with this program. If not, see
<http://www.gnu.org/licenses/>.
*/
// Package driver orchestrates one source file end to end: macro
// expansion, the first pass, data-symbol rebasing, the second pass,
// and output writing. It mirrors original_source/assembler.c's
// per-file pipeline and process_file.c's per-argument looping.
package driver

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"casm/internal/diag"
	"casm/internal/firstpass"
	"casm/internal/macro"
	"casm/internal/secondpass"
	"casm/internal/writer"
)

// Run processes each named source file (given without its ".as"
// extension), reporting diagnostics to stderr. It never stops early on
// one file's failure: every file in files is attempted, per spec.md
// §2 item 7.
func Run(files []string, debug bool) {
	for _, base := range files {
		processFile(base, debug)
	}
}

func processFile(base string, debug bool) {
	r := diag.New()

	diags, err := macro.Expand(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return
	}
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s.as:%d: %s\n", base, d.Line, d.Message)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "debug: %s.am written\n", base)
	}

	lines, err := readLines(base + ".am")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return
	}

	res := firstpass.Run(lines, r)
	secondpass.Run(lines, res, r)

	if r.Failed() {
		fmt.Fprintf(os.Stderr, "%s: %d error(s), no output written\n", base, r.Count())
		return
	}

	if err := writer.Write(base, res); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
	}
}

func readLines(path string) ([]firstpass.Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	base := strings.TrimSuffix(path, ".am")
	var lines []firstpass.Line
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256), 1024)
	n := 0
	for scanner.Scan() {
		n++
		lines = append(lines, firstpass.Line{File: base + ".as", Number: n, Content: scanner.Text()})
	}
	return lines, scanner.Err()
}
