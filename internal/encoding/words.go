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
// Package encoding defines the machine word types of spec.md §3 — the
// bit-packed CodeWord, the variable-purpose DataWord, and the tagged
// MachineWord union — together with the per-opcode addressing-mode
// table and the bit-packing rules the output writer depends on.
//
// The source this dialect was distilled from (original_source/globals.h)
// expresses CodeWord/DataWord as C bit-fields; spec.md §9 directs a
// portable reimplementation with explicit shifts and masks, which is
// what PackCodeWord and PackDataWord below do.
package encoding

import "casm/internal/lexical"

// AddressingMode is the closed set of operand addressing modes
// (spec.md §3), encoded into 2 bits. It is lexical.AddressingMode under
// the hood so that the pure syntactic classifier in internal/lexical
// and the encoding tables here share one definition.
type AddressingMode = lexical.AddressingMode

const (
	Immediate = lexical.Immediate
	Direct    = lexical.Direct
	Indirect  = lexical.Indirect
	Register  = lexical.Register
	NoAddress = lexical.NoAddress
)

// ARE values (spec.md Glossary).
const (
	AREExternal   = 1
	RERelocatable = 2
	AREAbsolute   = 4
)

// CodeWord is the fixed 24-bit logical layout produced by the first
// pass for every assembled instruction (spec.md §3).
type CodeWord struct {
	ARE            int
	Funct          int
	DestRegister   int
	DestAddressing AddressingMode
	SrcRegister    int
	SrcAddressing  AddressingMode
	Opcode         int
}

// DataWord is the variable-purpose word for operand payloads and
// .data/.string values (spec.md §3).
type DataWord struct {
	ARE     int
	Payload int
}

// MachineWord is a discriminated union: a code variant (Length >= 1,
// Code populated) or a data/operand variant (Length == 0, Data
// populated). A code-image slot reserved for a direct-address patch
// from the second pass is a nil *MachineWord (see IsPlaceholder).
type MachineWord struct {
	Length int
	Code   *CodeWord
	Data   *DataWord
}

// IsPlaceholder reports whether w is a code-image slot the first pass
// reserved for a direct-addressing operand that the second pass has not
// yet patched (spec.md §4.2's "leave a placeholder slot (image entry is
// None)"). The first pass represents an unpatched slot as a nil entry
// in the code image, not a zero-value struct, so this is a nil check.
func (w *MachineWord) IsPlaceholder() bool {
	return w == nil
}

// Mnemonic describes one assembly instruction's encoding and the
// addressing modes it accepts per operand position (spec.md §4.2).
type Mnemonic struct {
	Name       string
	Opcode     int
	Funct      int
	OperandCount int
	SrcModes   []AddressingMode
	DestModes  []AddressingMode
}

func modes(ms ...AddressingMode) []AddressingMode { return ms }

// MnemonicTable is the per-opcode operand table of spec.md §4.2.
var MnemonicTable = []Mnemonic{
	{"mov", 0, 0, 2, modes(Immediate, Direct, Indirect, Register), modes(Direct, Indirect, Register)},
	{"cmp", 1, 0, 2, modes(Immediate, Direct, Indirect, Register), modes(Immediate, Direct, Indirect, Register)},
	{"add", 2, 1, 2, modes(Immediate, Direct, Indirect, Register), modes(Direct, Indirect, Register)},
	{"sub", 2, 2, 2, modes(Immediate, Direct, Indirect, Register), modes(Direct, Indirect, Register)},
	{"lea", 4, 0, 2, modes(Direct, Indirect), modes(Direct, Indirect, Register)},
	{"clr", 5, 1, 1, nil, modes(Direct, Indirect, Register)},
	{"not", 5, 2, 1, nil, modes(Direct, Indirect, Register)},
	{"inc", 5, 3, 1, nil, modes(Direct, Indirect, Register)},
	{"dec", 5, 4, 1, nil, modes(Direct, Indirect, Register)},
	{"jmp", 9, 1, 1, nil, modes(Direct, Indirect)},
	{"bne", 9, 2, 1, nil, modes(Direct, Indirect)},
	{"jsr", 9, 3, 1, nil, modes(Direct, Indirect)},
	{"red", 11, 0, 1, nil, modes(Direct, Indirect, Register)},
	{"prn", 12, 0, 1, nil, modes(Immediate, Direct, Indirect, Register)},
	{"rts", 14, 0, 0, nil, nil},
	{"stop", 15, 0, 0, nil, nil},
}

// LookupMnemonic returns the Mnemonic entry for name, if any.
func LookupMnemonic(name string) (Mnemonic, bool) {
	for _, m := range MnemonicTable {
		if m.Name == name {
			return m, true
		}
	}
	return Mnemonic{}, false
}

// ValidSrc reports whether mode is a permitted source addressing mode
// for m.
func (m Mnemonic) ValidSrc(mode AddressingMode) bool {
	return containsMode(m.SrcModes, mode)
}

// ValidDest reports whether mode is a permitted destination addressing
// mode for m.
func (m Mnemonic) ValidDest(mode AddressingMode) bool {
	return containsMode(m.DestModes, mode)
}

func containsMode(modes []AddressingMode, mode AddressingMode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Directives is the closed set of assembler directives (spec.md §4.2).
var Directives = map[string]bool{
	".data":   true,
	".string": true,
	".entry":  true,
	".extern": true,
}

// IsDirective reports whether token has the form of a directive (a
// leading '.'). It does not check token against Directives.
func IsDirective(token string) bool {
	return len(token) > 0 && token[0] == '.'
}

// PackCodeWord packs a CodeWord into the low 15 bits of the object
// file's logical word. The fields are ORed together at the shifts of
// original_source/writefiles.c: opcode<<10, src_addressing<<8,
// src_register<<6, dest_addressing<<3, funct<<3 and ARE at 0-2, so
// neighbouring fields overlap. dest_register goes into bits 3-5 only
// when funct is 0; a non-zero funct always wins that span. The result
// is masked to 15 bits.
func PackCodeWord(w CodeWord) uint32 {
	val := uint32(w.Opcode)<<10 |
		uint32(w.SrcAddressing)<<8 |
		uint32(w.SrcRegister)<<6 |
		uint32(w.DestAddressing)<<3 |
		uint32(w.Funct)<<3 |
		uint32(w.ARE)
	if w.Funct == 0 {
		val |= uint32(w.DestRegister) << 3
	}
	return val & 0x7FFF
}

// PackDataWord packs a DataWord's 12-bit two's-complement payload and
// 3-bit ARE into the low 15 bits of the object file's logical word.
func PackDataWord(w DataWord) uint32 {
	payload := uint32(w.Payload) & 0xFFF
	return (payload<<3 | uint32(w.ARE)) & 0x7FFF
}

// MaskImmediate truncates a signed operand value to 12 bits, two's
// complement, as the first pass does for IMMEDIATE_ADDR operands
// (spec.md §4.2).
func MaskImmediate(v int) int {
	return v & 0xFFF
}

// MaskWord truncates a signed value to the low 15 bits, two's
// complement. A plain .data/.string image value is written to the
// object file this way rather than through PackDataWord: it carries no
// ARE field of its own, matching original_source/writefiles.c's
// write_ob, which ORs KEEP_ONLY_15_LSB(data_img[i]) straight to the
// line with no ARE shift.
func MaskWord(v int) uint32 {
	return uint32(v) & 0x7FFF
}
