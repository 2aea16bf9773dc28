package firstpass

import (
	"strings"
	"testing"

	"casm/internal/diag"
	"casm/internal/symtab"
)

func check(t *testing.T, a1 any, a2 any) {
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func makeLines(src string) []Line {
	var out []Line
	for i, l := range strings.Split(strings.TrimRight(src, "\n"), "\n") {
		out = append(out, Line{File: "t.as", Number: i + 1, Content: l})
	}
	return out
}

func TestSimpleInstruction(t *testing.T) {
	lines := makeLines("mov r1, r2\nstop\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := Run(lines, r)

	check(t, r.Failed(), false)
	check(t, res.ICF, ICInit+3)
	check(t, len(res.CodeImage), 3)
}

func TestLabelDefinition(t *testing.T) {
	lines := makeLines("LOOP: mov r1, r2\n\tjmp LOOP\n\tstop\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := Run(lines, r)

	check(t, r.Failed(), false)
	e, ok := res.Symbols.Lookup("LOOP")
	check(t, ok, true)
	check(t, e.Value, ICInit)
	check(t, e.Kind, symtab.Code)
}

func TestDataDirective(t *testing.T) {
	lines := makeLines("X: .data 1, 2, 3\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := Run(lines, r)

	check(t, r.Failed(), false)
	check(t, len(res.DataImage), 3)
	e, ok := res.Symbols.Lookup("X")
	check(t, ok, true)
	check(t, e.Kind, symtab.Data)
	check(t, e.Value, res.ICF)
}

func TestStringDirective(t *testing.T) {
	lines := makeLines(`S: .string "hi"` + "\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := Run(lines, r)

	check(t, r.Failed(), false)
	check(t, len(res.DataImage), 3)
	check(t, res.DataImage[0], int('h'))
	check(t, res.DataImage[1], int('i'))
	check(t, res.DataImage[2], 0)
}

func TestExternAndReservedClash(t *testing.T) {
	lines := makeLines(".extern FOO\nmov FOO, r1\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := Run(lines, r)

	check(t, r.Failed(), false)
	e, ok := res.Symbols.FindByKinds("FOO", symtab.External)
	check(t, ok, true)
	check(t, e.Value, 0)
}

func TestDuplicateSymbolIsError(t *testing.T) {
	lines := makeLines("A: mov r1, r2\nA: mov r1, r2\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	Run(lines, r)
	check(t, r.Failed(), true)
}

func TestInvalidAddressingModeIsError(t *testing.T) {
	lines := makeLines("mov r1, #5\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	Run(lines, r)
	check(t, r.Failed(), true)
}

func TestTwoRegisterOperandsShareOneWord(t *testing.T) {
	lines := makeLines("add r2, r5\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := Run(lines, r)

	check(t, r.Failed(), false)
	check(t, res.ICF, ICInit+2)
	check(t, len(res.CodeImage), 2)
	check(t, res.CodeImage[0].Length, 2)
	check(t, res.CodeImage[0].Code.SrcRegister, 2)
	check(t, res.CodeImage[0].Code.DestRegister, 5)

	shared := res.CodeImage[1]
	if shared == nil || shared.Data == nil {
		t.Fatalf("expected a shared data word at index 1, got %+v", shared)
	}
	check(t, shared.Data.Payload, (2<<3)|(5<<6))
}

func TestIndirectOperandAloneGetsOwnWord(t *testing.T) {
	lines := makeLines("clr *r3\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := Run(lines, r)

	check(t, r.Failed(), false)
	check(t, len(res.CodeImage), 2)
	check(t, res.CodeImage[0].Code.DestRegister, 0)

	extra := res.CodeImage[1]
	if extra == nil || extra.Data == nil {
		t.Fatalf("expected an extra data word at index 1, got %+v", extra)
	}
	check(t, extra.Data.Payload, 3<<3)
}

func TestIndirectPairedWithRegisterSharesWord(t *testing.T) {
	lines := makeLines("mov *r1, r2\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := Run(lines, r)

	check(t, r.Failed(), false)
	check(t, len(res.CodeImage), 2)
	check(t, res.CodeImage[0].Code.SrcRegister, 0)
	check(t, res.CodeImage[0].Code.DestRegister, 2)

	shared := res.CodeImage[1]
	if shared == nil || shared.Data == nil {
		t.Fatalf("expected a shared data word at index 1, got %+v", shared)
	}
	check(t, shared.Data.Payload, (1<<3)|(2<<6))
}
