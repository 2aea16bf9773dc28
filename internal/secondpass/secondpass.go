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
// Package secondpass implements the assembler's second pass (spec.md
// §4.3): it re-scans the pre-processed lines to promote ".entry"
// declarations into the symbol table and to patch every direct-
// addressing placeholder word the first pass left behind with the
// resolved symbol value.
//
// Grounded on original_source/second_pass.c (process_line_spass,
// build_data_word_direct) with one deliberate departure: spec.md §4.3
// assigns ARE=2 ("relocatable") to a resolved CODE/DATA reference,
// where the source uses ARE=4 for the same case — this package follows
// spec.md.
package secondpass

import (
	"strings"

	"casm/internal/diag"
	"casm/internal/encoding"
	"casm/internal/firstpass"
	"casm/internal/lexical"
	"casm/internal/symtab"
)

// Run patches res.CodeImage's placeholders in place and promotes every
// ".entry" line's symbol to an ENTRY entry. Errors are reported through
// r; the caller decides, based on r.Failed(), whether to still write
// output.
func Run(lines []firstpass.Line, res *firstpass.Result, r *diag.Reporter) {
	ic := firstpass.ICInit
	for _, ln := range lines {
		content := ln.Content
		i := lexical.SkipSpaces(content, 0)
		if i >= len(content) || content[i] == ';' {
			continue
		}

		labelResult, _, j := lexical.ExtractLabel(content, i, isReserved)
		if labelResult != lexical.NoLabel {
			i = j
		}
		i = lexical.SkipSpaces(content, i)
		if i >= len(content) {
			continue
		}

		head, rest := firstWord(content, i)

		if head == ".entry" {
			processEntry(ln, rest, res, r)
			continue
		}
		if encoding.IsDirective(head) {
			continue
		}

		mn, ok := encoding.LookupMnemonic(head)
		if !ok {
			continue
		}
		if ic-firstpass.ICInit >= len(res.CodeImage) {
			continue
		}
		slot := res.CodeImage[ic-firstpass.ICInit]
		if slot.IsPlaceholder() || slot.Code == nil {
			continue
		}
		length := slot.Length
		patchOperands(ln, mn, slot, ic, res, r)
		ic += length
	}

	if !r.Failed() {
		checkNoPlaceholders(lines, res, r)
	}
}

// checkNoPlaceholders enforces spec.md §8's invariant that every
// code-image slot is populated by the end of the second pass.
func checkNoPlaceholders(lines []firstpass.Line, res *firstpass.Result, r *diag.Reporter) {
	file := ""
	if len(lines) > 0 {
		file = lines[0].File
	}
	for i, w := range res.CodeImage {
		if w.IsPlaceholder() {
			r.Errorf(file, 0, "internal error: code-image slot at address %d was never patched", i+firstpass.ICInit)
		}
	}
}

func isReserved(name string) bool { return encoding.IsReservedWord(name) }

func firstWord(content string, i int) (string, string) {
	j := i
	for j < len(content) && !lexical.IsSpace(content[j]) {
		j++
	}
	return content[i:j], content[j:]
}

func processEntry(ln firstpass.Line, rest string, res *firstpass.Result, r *diag.Reporter) {
	fields := lexical.SplitFields(rest)
	if len(fields) == 0 {
		r.Errorf(ln.File, ln.Number, ".entry requires a symbol name")
		return
	}
	name := fields[0]
	entry, ok := res.Symbols.FindByKinds(name, symtab.Code, symtab.Data)
	if !ok {
		if _, isExt := res.Symbols.FindByKinds(name, symtab.External); isExt {
			r.Errorf(ln.File, ln.Number, "%s is declared external and cannot also be an entry", name)
			return
		}
		r.Errorf(ln.File, ln.Number, "undefined symbol in .entry: %s", name)
		return
	}
	res.Symbols.Define(name, entry.Value, symtab.EntryKind)
}

// patchOperands re-derives which operand words of this instruction are
// still direct-addressing placeholders and fills them in by resolving
// the corresponding label against the symbol table.
func patchOperands(ln firstpass.Line, mn encoding.Mnemonic, slot *encoding.MachineWord, ic int, res *firstpass.Result, r *diag.Reporter) {
	rest := operandText(ln.Content)
	operands := splitOperands(rest)
	if len(operands) != mn.OperandCount {
		return
	}

	wordIdx := ic - firstpass.ICInit + 1
	switch len(operands) {
	case 1:
		mode := lexical.ClassifyOperand(operands[0], isReserved)
		if mode == lexical.Direct {
			patchOne(ln, operands[0], wordIdx, res, r)
		}
	case 2:
		srcMode := lexical.ClassifyOperand(operands[0], isReserved)
		destMode := lexical.ClassifyOperand(operands[1], isReserved)
		if isRegisterLike(srcMode) && isRegisterLike(destMode) {
			// Shared register/register-indirect word: never a Direct
			// placeholder, nothing to patch.
			return
		}
		idx := wordIdx
		if srcMode == lexical.Direct {
			patchOne(ln, operands[0], idx, res, r)
		}
		if producesWord(srcMode) {
			idx++
		}
		if destMode == lexical.Direct {
			patchOne(ln, operands[1], idx, res, r)
		}
	}
}

func isRegisterLike(m lexical.AddressingMode) bool {
	return m == lexical.Register || m == lexical.Indirect
}

// producesWord reports whether a standalone (non-shared) operand in
// this addressing mode occupies its own extra word (spec.md §4.2): a
// plain Register operand is packed into the instruction's primary word
// instead and produces none.
func producesWord(m lexical.AddressingMode) bool {
	return m == lexical.Immediate || m == lexical.Direct || m == lexical.Indirect
}

func patchOne(ln firstpass.Line, label string, wordIdx int, res *firstpass.Result, r *diag.Reporter) {
	for len(res.CodeImage) <= wordIdx {
		res.CodeImage = append(res.CodeImage, nil)
	}
	if entry, ok := res.Symbols.FindByKinds(label, symtab.Code, symtab.Data); ok {
		res.CodeImage[wordIdx] = &encoding.MachineWord{Length: 0, Data: &encoding.DataWord{ARE: encoding.RERelocatable, Payload: entry.Value}}
		return
	}
	if _, ok := res.Symbols.FindByKinds(label, symtab.External); ok {
		res.CodeImage[wordIdx] = &encoding.MachineWord{Length: 0, Data: &encoding.DataWord{ARE: encoding.AREExternal, Payload: 0}}
		res.Symbols.Define(label, wordIdx+firstpass.ICInit, symtab.ExternalReference)
		return
	}
	r.Errorf(ln.File, ln.Number, "undefined symbol: %s", label)
}

// operandText returns the substring of content after the mnemonic
// (skipping any label and the mnemonic token itself).
func operandText(content string) string {
	i := lexical.SkipSpaces(content, 0)
	labelResult, _, j := lexical.ExtractLabel(content, i, isReserved)
	if labelResult != lexical.NoLabel {
		i = j
	}
	i = lexical.SkipSpaces(content, i)
	for i < len(content) && !lexical.IsSpace(content[i]) {
		i++
	}
	return content[i:]
}

func splitOperands(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
