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
// Package diag is the assembler's diagnostic stream: every line-level
// error is reported through it in the exact format spec.md §6
// requires, while a per-file failure flag accumulates so processing of
// the current file can continue and surface further diagnostics.
//
// Grounded on original_source/utils.c's printf_line_error, which
// writes this exact "Error In %s:%ld: " prefix to stderr before the
// caller's message.
package diag

import (
	"fmt"
	"io"
	"os"
)

// Reporter accumulates a per-file failure flag while writing formatted
// diagnostics to its stream.
type Reporter struct {
	w      io.Writer
	failed bool
	count  int
}

// New returns a Reporter writing to os.Stderr.
func New() *Reporter {
	return &Reporter{w: os.Stderr}
}

// NewTo returns a Reporter writing to an arbitrary stream, for tests.
func NewTo(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Errorf reports a line-level error: "Error In <file>:<line>: <message>\n".
// It sets the failure flag but never stops the caller.
func (r *Reporter) Errorf(file string, line int, format string, args ...any) {
	fmt.Fprintf(r.w, "Error In %s:%d: %s\n", file, line, fmt.Sprintf(format, args...))
	r.failed = true
	r.count++
}

// Failed reports whether any error has been reported since the last
// Reset.
func (r *Reporter) Failed() bool {
	return r.failed
}

// Count returns the number of errors reported since the last Reset.
func (r *Reporter) Count() int {
	return r.count
}

// Reset clears the failure flag and count, for starting a fresh file.
func (r *Reporter) Reset() {
	r.failed = false
	r.count = 0
}
