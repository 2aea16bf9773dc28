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
// Package macro implements the assembler's pre-processor (spec.md
// §4.1): it reads a "<base>.as" file, recognizes "macr <id>" /
// "endmacr" blocks, stores their bodies in a hash-addressed table, and
// writes "<base>.am" with every invocation site textually replaced by
// the body.
//
// Grounded on original_source/macr.c (hash table of macro bodies, the
// isMacroOpen line state machine) and
// japanoise-tushie/src/assembler/preproc.go (same open-input/open-
// output/line-state-machine shape, same retrieval pack).
package macro

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxBodyLines bounds how many lines a single macro body may capture;
// exceeding it is a diagnostic, not a fatal error (spec.md §4.1).
const MaxBodyLines = 1000

// Diagnostic is one non-fatal problem observed while pre-processing,
// reported via the diagnostic stream but not stopping expansion.
type Diagnostic struct {
	Line    int
	Message string
}

type body struct {
	name  string
	lines []string
}

// table is the hash-addressed macro store. Go's map already gives us
// hashing and chaining; it stands in for the explicit bucket/chain
// structure of original_source/macr.c's HashTable.
type table map[string]*body

// Expand reads basePath+".as", replaces every macro invocation with its
// body, and writes the result to basePath+".am". It returns the
// diagnostics observed (oversized macro bodies) and an error only for
// the I/O failures spec.md §4.1 calls out: if the input cannot be
// opened or the output cannot be created, the file is skipped and the
// error is returned for the caller to report.
func Expand(basePath string) ([]Diagnostic, error) {
	in, err := os.Open(basePath + ".as")
	if err != nil {
		return nil, fmt.Errorf("cannot open %s.as: %w", basePath, err)
	}
	defer in.Close()

	out, err := os.Create(basePath + ".am")
	if err != nil {
		return nil, fmt.Errorf("cannot create %s.am: %w", basePath, err)
	}
	defer out.Close()

	return expand(in, out)
}

func expand(r io.Reader, w io.Writer) ([]Diagnostic, error) {
	macros := table{}
	var diags []Diagnostic

	var current *body
	lineNo := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256), 1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if current != nil {
			if isEndMacr(line) {
				current = nil
				continue
			}
			if len(current.lines) >= MaxBodyLines {
				diags = append(diags, Diagnostic{lineNo, fmt.Sprintf("macro %q exceeded maximum body size, dropping line", current.name)})
				continue
			}
			current.lines = append(current.lines, line)
			continue
		}

		if name, ok := isMacrStart(line); ok {
			b := &body{name: name}
			macros[name] = b
			current = b
			continue
		}

		if b, ok := lookupInvocation(macros, line); ok {
			for _, bl := range b.lines {
				if _, err := io.WriteString(w, bl+"\n"); err != nil {
					return diags, err
				}
			}
			continue
		}

		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return diags, err
		}
	}
	return diags, scanner.Err()
}

// isMacrStart reports whether line opens a macro definition ("macr
// <id>"), returning the identifier.
func isMacrStart(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) >= 2 && fields[0] == "macr" {
		return fields[1], true
	}
	return "", false
}

func isEndMacr(line string) bool {
	fields := strings.Fields(line)
	return len(fields) >= 1 && fields[0] == "endmacr"
}

// lookupInvocation reports whether line's leading token names a
// previously defined macro. Expansion is one level only: a body is
// never re-scanned for further invocations (spec.md §4.1).
func lookupInvocation(macros table, line string) (*body, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	b, ok := macros[fields[0]]
	return b, ok
}
