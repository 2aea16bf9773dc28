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
// Package firstpass implements the assembler's first pass (spec.md
// §4.2): it drives the pre-processed ".am" file line by line,
// maintaining IC and DC, populating the symbol table with CODE/DATA/
// EXTERNAL symbols and filling the code and data images.
//
// Grounded on original_source/first_pass.c (process_line_fpass,
// process_code, build_extra_codeword_fpass) and the state-bag-plus-
// dispatch shape of asm/parser.go's parserContext.
package firstpass

import (
	"strconv"
	"strings"

	"casm/internal/diag"
	"casm/internal/encoding"
	"casm/internal/lexical"
	"casm/internal/symtab"
)

// ICInit and DCInit are the counters' starting values (spec.md Glossary).
const (
	ICInit = 100
	DCInit = 0
)

// MaxImageSlots is the static size of the code+data image arrays
// (spec.md §5); exceeding it is fatal for the file.
const MaxImageSlots = 1200

// Line is one source line, already macro-expanded (spec.md §3).
type Line struct {
	File    string
	Number  int
	Content string
}

// Result holds everything the first pass produces, to be carried into
// rebasing and the second pass.
type Result struct {
	ICF       int
	DCF       int
	CodeImage []*encoding.MachineWord // indexed by IC-ICInit
	DataImage []int
	Symbols   *symtab.Table
}

// Run executes the first pass over lines, reporting line-level errors
// through r. It always returns a Result (even when r.Failed() is true
// afterward) so that callers can still run the second pass for further
// diagnostics, per spec.md §5/§7.
func Run(lines []Line, r *diag.Reporter) *Result {
	res := &Result{Symbols: symtab.New()}
	ic := ICInit
	dc := DCInit

	for _, ln := range lines {
		ic, dc = processLine(ln, ic, dc, res, r)
		if ic-ICInit+dc > MaxImageSlots {
			r.Errorf(ln.File, ln.Number, "code and data image overflow (%d slots, limit %d)", ic-ICInit+dc, MaxImageSlots)
			break
		}
	}

	res.ICF = ic
	res.DCF = dc
	res.Symbols.AddValueToKind(symtab.Data, res.ICF)
	return res
}

func isReserved(name string) bool { return encoding.IsReservedWord(name) }

func processLine(ln Line, ic, dc int, res *Result, r *diag.Reporter) (int, int) {
	content := ln.Content
	i := lexical.SkipSpaces(content, 0)
	if i >= len(content) || content[i] == ';' {
		return ic, dc
	}

	labelResult, labelName, j := lexical.ExtractLabel(content, i, isReserved)
	if labelResult == lexical.InvalidLabel {
		r.Errorf(ln.File, ln.Number, "illegal label name: %s", labelName)
		return ic, dc
	}
	i = j

	i = lexical.SkipSpaces(content, i)
	if i >= len(content) {
		if labelResult == lexical.Label {
			r.Errorf(ln.File, ln.Number, "label %s with no following instruction", labelName)
		}
		return ic, dc
	}

	if labelResult == lexical.Label {
		if _, exists := res.Symbols.Lookup(labelName); exists {
			r.Errorf(ln.File, ln.Number, "symbol %s is already defined", labelName)
			return ic, dc
		}
	}

	head, rest := firstToken(content, i)

	if encoding.IsDirective(head) {
		return processDirective(ln, head, rest, labelResult, labelName, ic, dc, res, r)
	}
	return processInstruction(ln, head, rest, labelResult, labelName, ic, dc, res, r)
}

// firstToken returns the whitespace-delimited token starting at i and
// the remainder of the line after it (with leading whitespace kept, so
// callers can re-skip as needed).
func firstToken(content string, i int) (string, string) {
	j := i
	for j < len(content) && !lexical.IsSpace(content[j]) {
		j++
	}
	return content[i:j], content[j:]
}

func processDirective(ln Line, head, rest string, labelResult lexical.LabelResult, labelName string, ic, dc int, res *Result, r *diag.Reporter) (int, int) {
	switch head {
	case ".data":
		return processData(ln, rest, labelResult, labelName, ic, dc, res, r)
	case ".string":
		return processString(ln, rest, labelResult, labelName, ic, dc, res, r)
	case ".extern":
		processExtern(ln, rest, res, r)
		return ic, dc
	case ".entry":
		if labelResult == lexical.Label {
			r.Errorf(ln.File, ln.Number, "a label on an .entry line is not permitted")
		}
		return ic, dc
	default:
		r.Errorf(ln.File, ln.Number, "unknown directive: %s", head)
		return ic, dc
	}
}

func processData(ln Line, rest string, labelResult lexical.LabelResult, labelName string, ic, dc int, res *Result, r *diag.Reporter) (int, int) {
	values, ok := parseIntList(rest)
	if !ok {
		r.Errorf(ln.File, ln.Number, "malformed operand list for .data")
		return ic, dc
	}
	if len(values) == 0 {
		r.Errorf(ln.File, ln.Number, ".data requires at least one value")
		return ic, dc
	}
	if labelResult == lexical.Label {
		res.Symbols.Define(labelName, dc, symtab.Data)
	}
	for _, v := range values {
		res.DataImage = append(res.DataImage, encoding.MaskImmediate(v))
		dc++
	}
	return ic, dc
}

func processString(ln Line, rest string, labelResult lexical.LabelResult, labelName string, ic, dc int, res *Result, r *diag.Reporter) (int, int) {
	s, ok := parseQuotedString(rest)
	if !ok {
		r.Errorf(ln.File, ln.Number, "missing opening or closing quote in .string")
		return ic, dc
	}
	if labelResult == lexical.Label {
		res.Symbols.Define(labelName, dc, symtab.Data)
	}
	for _, ch := range []byte(s) {
		res.DataImage = append(res.DataImage, int(ch))
		dc++
	}
	res.DataImage = append(res.DataImage, 0)
	dc++
	return ic, dc
}

func processExtern(ln Line, rest string, res *Result, r *diag.Reporter) {
	fields := lexical.SplitFields(rest)
	if len(fields) == 0 {
		r.Errorf(ln.File, ln.Number, ".extern requires a symbol name")
		return
	}
	name := fields[0]
	if !lexical.IsValidLabelName(name, isReserved) {
		r.Errorf(ln.File, ln.Number, "invalid external label name: %s", name)
		return
	}
	res.Symbols.Define(name, 0, symtab.External)
}

// parseIntList parses a comma-separated list of signed integers,
// rejecting leading, trailing, or doubled commas (spec.md §4.2).
func parseIntList(s string) ([]int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, false
		}
		if !lexical.IsInt(p) {
			return nil, false
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// parseQuotedString extracts the content of a single double-quoted
// string literal.
func parseQuotedString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	return s[1 : len(s)-1], true
}

func processInstruction(ln Line, head, rest string, labelResult lexical.LabelResult, labelName string, ic, dc int, res *Result, r *diag.Reporter) (int, int) {
	mn, ok := encoding.LookupMnemonic(head)
	if !ok {
		r.Errorf(ln.File, ln.Number, "unrecognized instruction: %s", head)
		return ic, dc
	}

	operands, ok := parseOperands(rest)
	if !ok {
		r.Errorf(ln.File, ln.Number, "malformed operand list")
		return ic, dc
	}
	if len(operands) != mn.OperandCount {
		r.Errorf(ln.File, ln.Number, "%s requires %d operand(s), got %d", head, mn.OperandCount, len(operands))
		return ic, dc
	}

	var srcMode, destMode lexical.AddressingMode = lexical.NoAddress, lexical.NoAddress
	var srcOperand, destOperand string
	switch len(operands) {
	case 1:
		destOperand = operands[0]
		destMode = lexical.ClassifyOperand(destOperand, isReserved)
		if !mn.ValidDest(destMode) {
			r.Errorf(ln.File, ln.Number, "invalid addressing mode for operand of %s", head)
			return ic, dc
		}
	case 2:
		srcOperand, destOperand = operands[0], operands[1]
		srcMode = lexical.ClassifyOperand(srcOperand, isReserved)
		destMode = lexical.ClassifyOperand(destOperand, isReserved)
		if !mn.ValidSrc(srcMode) {
			r.Errorf(ln.File, ln.Number, "invalid addressing mode for source operand of %s", head)
			return ic, dc
		}
		if !mn.ValidDest(destMode) {
			r.Errorf(ln.File, ln.Number, "invalid addressing mode for destination operand of %s", head)
			return ic, dc
		}
	}

	if labelResult == lexical.Label {
		res.Symbols.Define(labelName, ic, symtab.Code)
	}

	word := &encoding.CodeWord{
		ARE:            encoding.AREAbsolute,
		Opcode:         mn.Opcode,
		Funct:          mn.Funct,
		SrcAddressing:  srcMode,
		DestAddressing: destMode,
	}
	// Only REGISTER_ADDR is baked into the code word itself;
	// REGISTER_INDIRECT_ADDR's register fields stay 0 here and are
	// emitted in an extra data word below (spec.md §4.2).
	if srcMode == lexical.Register {
		idx, _ := lexical.RegisterIndex(srcOperand)
		word.SrcRegister = idx
	}
	if destMode == lexical.Register {
		idx, _ := lexical.RegisterIndex(destOperand)
		word.DestRegister = idx
	}

	icBefore := ic
	res.CodeImage = appendAt(res.CodeImage, ic-ICInit, &encoding.MachineWord{Length: 1, Code: word})
	ic++

	switch len(operands) {
	case 0:
		// no extra words
	case 1:
		ic = appendOperandWord(res, ic, destMode, destOperand, false)
	case 2:
		if isRegisterLike(srcMode) && isRegisterLike(destMode) {
			srcIdx := registerIndexOf(srcMode, srcOperand)
			destIdx := registerIndexOf(destMode, destOperand)
			payload := (srcIdx << 3) | (destIdx << 6)
			res.CodeImage = appendAt(res.CodeImage, ic-ICInit, &encoding.MachineWord{Length: 0, Data: &encoding.DataWord{ARE: encoding.AREAbsolute, Payload: payload}})
			ic++
		} else {
			ic = appendOperandWord(res, ic, srcMode, srcOperand, true)
			ic = appendOperandWord(res, ic, destMode, destOperand, false)
		}
	}

	res.CodeImage[icBefore-ICInit].Length = ic - icBefore
	return ic, dc
}

func isRegisterLike(m lexical.AddressingMode) bool {
	return m == lexical.Register || m == lexical.Indirect
}

func registerIndexOf(mode lexical.AddressingMode, operand string) int {
	if mode == lexical.Indirect {
		idx, _ := lexical.RegisterIndex(operand[1:])
		return idx
	}
	idx, _ := lexical.RegisterIndex(operand)
	return idx
}

// appendOperandWord appends the extra word a single operand
// contributes when it is not sharing a word with another
// register-like operand (spec.md §4.2): an immediate value, a
// placeholder for a later direct-address patch, or — for a standalone
// REGISTER_INDIRECT_ADDR operand — its register index in the field
// matching its position (source vs destination). A plain REGISTER_ADDR
// operand contributes nothing here; it is already in the code word.
func appendOperandWord(res *Result, ic int, mode lexical.AddressingMode, operand string, isSrc bool) int {
	switch mode {
	case lexical.Immediate:
		v, _ := strconv.Atoi(operand[1:])
		res.CodeImage = appendAt(res.CodeImage, ic-ICInit, &encoding.MachineWord{Length: 0, Data: &encoding.DataWord{ARE: encoding.AREAbsolute, Payload: encoding.MaskImmediate(v)}})
		return ic + 1
	case lexical.Direct:
		res.CodeImage = appendAt(res.CodeImage, ic-ICInit, nil)
		return ic + 1
	case lexical.Indirect:
		idx, _ := lexical.RegisterIndex(operand[1:])
		var payload int
		if isSrc {
			payload = idx << 6
		} else {
			payload = idx << 3
		}
		res.CodeImage = appendAt(res.CodeImage, ic-ICInit, &encoding.MachineWord{Length: 0, Data: &encoding.DataWord{ARE: encoding.AREAbsolute, Payload: payload}})
		return ic + 1
	}
	return ic
}

// appendAt grows img as needed and sets img[idx] = w.
func appendAt(img []*encoding.MachineWord, idx int, w *encoding.MachineWord) []*encoding.MachineWord {
	for len(img) <= idx {
		img = append(img, nil)
	}
	img[idx] = w
	return img
}

// parseOperands parses a comma-separated operand list of 0-2 entries,
// rejecting leading, trailing, or doubled commas (spec.md §4.2,
// mirroring original_source/code.c's analyze_operands).
func parseOperands(s string) ([]string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	if strings.HasPrefix(s, ",") || strings.HasSuffix(s, ",") {
		return nil, false
	}
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return nil, false
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, false
		}
		out = append(out, p)
	}
	return out, true
}
