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
// Package writer emits the three output files the assembler produces
// for a successfully assembled source file: the object file (".ob")
// and, when non-empty, the externals file (".ext") and entries file
// (".ent").
//
// Grounded on original_source/writefiles.c's exact format strings and
// jfitz-virtual-processor/module/module.go's precedent of a dedicated
// writer type per output kind.
package writer

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"casm/internal/encoding"
	"casm/internal/firstpass"
	"casm/internal/symtab"
)

// Write emits basePath+".ob", and, if non-empty, basePath+".ext" and
// basePath+".ent".
func Write(basePath string, res *firstpass.Result) error {
	if err := writeObject(basePath+".ob", res); err != nil {
		return err
	}
	if externals := res.Symbols.FilterByKind(symtab.ExternalReference); len(externals) > 0 {
		if err := writeSymbolList(basePath+".ext", externals); err != nil {
			return err
		}
	}
	if entries := res.Symbols.FilterByKind(symtab.EntryKind); len(entries) > 0 {
		if err := writeSymbolList(basePath+".ent", entries); err != nil {
			return err
		}
	}
	return nil
}

func writeObject(path string, res *firstpass.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	codeSlots := res.ICF - firstpass.ICInit
	fmt.Fprintf(w, "%d %d\n", codeSlots, res.DCF)

	addr := firstpass.ICInit
	for _, word := range res.CodeImage {
		if err := writeWord(w, addr, word); err != nil {
			return err
		}
		addr++
	}
	for _, v := range res.DataImage {
		fmt.Fprintf(w, "%07d %06o\n", addr, encoding.MaskWord(v))
		addr++
	}
	return w.Flush()
}

func writeWord(w io.Writer, addr int, word *encoding.MachineWord) error {
	var packed uint32
	switch {
	case word == nil:
		packed = 0
	case word.Code != nil:
		packed = encoding.PackCodeWord(*word.Code)
	case word.Data != nil:
		packed = encoding.PackDataWord(*word.Data)
	}
	_, err := fmt.Fprintf(w, "%07d %06o\n", addr, packed)
	return err
}

func writeSymbolList(path string, entries []symtab.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		fmt.Fprintf(w, "%s %07d\n", e.Name, e.Value)
	}
	return w.Flush()
}
